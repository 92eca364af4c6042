package parallel

// Band is a half-open range of image rows [Y0, Y1).
type Band struct {
	Y0, Y1 int
}

// Rows returns the number of rows in the band.
func (b Band) Rows() int {
	return b.Y1 - b.Y0
}

// SplitRows divides height rows into at most parts contiguous bands of at
// least minRows rows each (the last band may be shorter only when height
// itself is). Band sizes differ by at most one row. The bands cover
// [0, height) in order.
//
// Returns nil for a non-positive height.
func SplitRows(height, parts, minRows int) []Band {
	if height <= 0 {
		return nil
	}
	if minRows < 1 {
		minRows = 1
	}
	parts = max(1, min(parts, height/minRows))

	bands := make([]Band, parts)
	base, extra := height/parts, height%parts
	y := 0
	for i := range bands {
		n := base
		if i < extra {
			n++
		}
		bands[i] = Band{Y0: y, Y1: y + n}
		y += n
	}
	return bands
}
