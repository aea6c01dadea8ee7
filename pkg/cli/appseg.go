package cli

import (
	"bytes"
	"fmt"
)

// AppSegment is one JPEG APPn marker segment (0xE0..0xEF) without its
// length field.
type AppSegment struct {
	Marker  byte
	Payload []byte
}

// parseJPEGAppSegments returns the APPn segments that precede the first
// scan, in file order.
func parseJPEGAppSegments(data []byte) ([]AppSegment, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return nil, fmt.Errorf("not a jpeg")
	}
	var segs []AppSegment
	i := 2
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			return segs, fmt.Errorf("marker expected at offset %d", i)
		}
		marker := data[i+1]
		if marker == 0xFF { // fill byte
			i++
			continue
		}
		if marker == 0xDA || marker == 0xD9 {
			break
		}
		segLen := int(data[i+2])<<8 | int(data[i+3])
		if segLen < 2 || i+2+segLen > len(data) {
			return segs, fmt.Errorf("segment 0x%02X truncated", marker)
		}
		if marker >= 0xE0 && marker <= 0xEF {
			p := make([]byte, segLen-2)
			copy(p, data[i+4:i+2+segLen])
			segs = append(segs, AppSegment{Marker: marker, Payload: p})
		}
		i += 2 + segLen
	}
	return segs, nil
}

// insertAppSegmentsIntoJPEG writes segs right after the SOI marker of jpegBytes.
func insertAppSegmentsIntoJPEG(jpegBytes []byte, segs []AppSegment) ([]byte, error) {
	if len(jpegBytes) < 2 || jpegBytes[0] != 0xFF || jpegBytes[1] != 0xD8 {
		return nil, fmt.Errorf("not a jpeg")
	}
	if len(segs) == 0 {
		return jpegBytes, nil
	}
	var buf bytes.Buffer
	buf.Write(jpegBytes[:2])
	for _, s := range segs {
		if s.Marker < 0xE0 || s.Marker > 0xEF {
			return nil, fmt.Errorf("marker 0x%02X is not an APPn marker", s.Marker)
		}
		n := len(s.Payload) + 2
		if n > 0xFFFF {
			return nil, fmt.Errorf("APP%d payload too large: %d bytes", s.Marker-0xE0, len(s.Payload))
		}
		buf.Write([]byte{0xFF, s.Marker, byte(n >> 8), byte(n)})
		buf.Write(s.Payload)
	}
	buf.Write(jpegBytes[2:])
	return buf.Bytes(), nil
}
