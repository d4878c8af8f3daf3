package vision

import (
	"image"
	"math"
)

// Box is a bounding box in pixels: top-left corner plus width and height.
type Box struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// BoxFromCorners converts a [x1, y1, x2, y2] bounding box into a Box.
// Returns a zero Box for malformed input.
func BoxFromCorners(bbox []float64) Box {
	if len(bbox) != 4 {
		return Box{}
	}
	return Box{
		X: int(math.Round(bbox[0])),
		Y: int(math.Round(bbox[1])),
		W: int(math.Round(bbox[2] - bbox[0])),
		H: int(math.Round(bbox[3] - bbox[1])),
	}
}

// BoxFromRect converts an image.Rectangle into a Box.
func BoxFromRect(r image.Rectangle) Box {
	return Box{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

// Scale multiplies every coordinate by f, used to map boxes back to the original image.
func (b Box) Scale(f float64) Box {
	if f == 1 || f <= 0 {
		return b
	}
	return Box{
		X: int(math.Round(float64(b.X) * f)),
		Y: int(math.Round(float64(b.Y) * f)),
		W: int(math.Round(float64(b.W) * f)),
		H: int(math.Round(float64(b.H) * f)),
	}
}
