package cli

import (
	"encoding/binary"
	"fmt"
)

const tagOrientation = 0x0112

// parseTIFFStartFromJPEG scans JPEG segments to find an APP1 Exif block and returns
// the offset in data where the TIFF header begins.
func parseTIFFStartFromJPEG(data []byte) (int, error) {
	if len(data) < 4 {
		return -1, fmt.Errorf("data too short")
	}
	i := 2 // skip SOI
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			i++
			continue
		}
		marker := data[i+1]
		if marker == 0xDA || marker == 0xD9 {
			break
		}
		segLen := int(data[i+2])<<8 | int(data[i+3])
		if marker == 0xE1 && segLen >= 8 && i+10 <= len(data) && string(data[i+4:i+10]) == "Exif\x00\x00" {
			return i + 10, nil
		}
		if segLen < 2 {
			i += 2
		} else {
			i += 2 + segLen
		}
	}
	return -1, fmt.Errorf("no exif segment")
}

// tiffOrder reads the byte order mark and magic of the TIFF header at start.
func tiffOrder(data []byte, start int) (binary.ByteOrder, error) {
	if start < 0 || start+8 > len(data) {
		return nil, fmt.Errorf("tiff header truncated")
	}
	var order binary.ByteOrder
	switch string(data[start : start+2]) {
	case "MM":
		order = binary.BigEndian
	case "II":
		order = binary.LittleEndian
	default:
		return nil, fmt.Errorf("unknown tiff byte order")
	}
	if order.Uint16(data[start+2:start+4]) != 0x002A {
		return nil, fmt.Errorf("invalid tiff magic")
	}
	return order, nil
}

// findOrientationEntry walks IFD0 of the TIFF structure at tiffStart and
// returns the absolute offset of the 12-byte Orientation entry.
func findOrientationEntry(data []byte, tiffStart int) (int, binary.ByteOrder, error) {
	order, err := tiffOrder(data, tiffStart)
	if err != nil {
		return -1, nil, err
	}
	off := int(order.Uint32(data[tiffStart+4 : tiffStart+8]))
	ifd := tiffStart + off
	if off <= 0 || ifd+2 > len(data) {
		return -1, nil, fmt.Errorf("ifd0 out of range")
	}
	n := int(order.Uint16(data[ifd : ifd+2]))
	for e := 0; e < n; e++ {
		ent := ifd + 2 + e*12
		if ent+12 > len(data) {
			break
		}
		if order.Uint16(data[ent:ent+2]) == tagOrientation {
			return ent, order, nil
		}
	}
	return -1, nil, fmt.Errorf("orientation tag not found")
}

// readOrientation returns the Orientation value (1..8) of the TIFF
// structure at tiffStart.
func readOrientation(data []byte, tiffStart int) (int, error) {
	ent, order, err := findOrientationEntry(data, tiffStart)
	if err != nil {
		return 0, err
	}
	// SHORT, count 1: value lives in the first two bytes of the value field
	if order.Uint16(data[ent+2:ent+4]) != 3 {
		return 0, fmt.Errorf("orientation has unexpected type %d", order.Uint16(data[ent+2:ent+4]))
	}
	v := int(order.Uint16(data[ent+8 : ent+10]))
	if v < 1 || v > 8 {
		return 0, fmt.Errorf("orientation %d out of range", v)
	}
	return v, nil
}

// extractJPEGOrientation returns the EXIF orientation (1..8) from JPEG bytes.
func extractJPEGOrientation(data []byte) (int, error) {
	tiffStart, err := parseTIFFStartFromJPEG(data)
	if err != nil {
		return 0, err
	}
	return readOrientation(data, tiffStart)
}

// resetExifOrientation returns a copy of an APP1 Exif payload with its
// Orientation tag set to 1. Payloads without the tag are returned as is.
func resetExifOrientation(payload []byte) []byte {
	const hdr = len("Exif\x00\x00")
	if len(payload) < hdr || string(payload[:hdr]) != "Exif\x00\x00" {
		return payload
	}
	ent, order, err := findOrientationEntry(payload, hdr)
	if err != nil {
		return payload
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	order.PutUint16(out[ent+8:ent+10], 1)
	return out
}
