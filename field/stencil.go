package field

// Star holds the 4-neighborhood (plus center) of a cell. For staggered
// fields the center has no meaning and E/W/N/S are the four face values
// of the cell.
type Star struct {
	IJ, E, W, N, S float64
}

// Box holds the full 8-neighborhood (plus center) of a cell.
type Box struct {
	IJ, N, NW, W, SW, S, SE, E, NE float64
}

// IntStar is Star with values truncated to int, used for mask fields.
type IntStar struct {
	IJ, E, W, N, S int
}

// IntBox is Box with values truncated to int, used for mask fields.
type IntBox struct {
	IJ, N, NW, W, SW, S, SE, E, NE int
}
