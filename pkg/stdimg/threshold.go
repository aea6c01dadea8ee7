package stdimg

// Threshold binarizes g: samples at or above level become white, the rest
// black. level 0 disables binarization and returns a copy.
func Threshold(g *Gray, level int) *Gray {
	if level <= 0 {
		return g.Clone()
	}
	var lut [256]uint8
	for v := range lut {
		if v >= level {
			lut[v] = 255
		}
	}
	return applyLUT(g, &lut)
}
