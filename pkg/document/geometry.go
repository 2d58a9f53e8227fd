package document

import (
	"errors"
	"math"
)

// ErrIncompleteBox is returned when a bounding box is requested from fewer than four points.
var ErrIncompleteBox = errors.New("bounding box requires 4 points")

// Point is a position normalized to the page width and height (0.0-1.0)
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundingBox is the quadrilateral an element occupies on its page.
// Points are ordered top-left, top-right, bottom-right, bottom-left.
type BoundingBox struct {
	points [4]Point
}

// NewBoundingBox builds a bounding box from exactly four corner points.
func NewBoundingBox(points []Point) (BoundingBox, error) {
	if len(points) < 4 {
		return BoundingBox{}, ErrIncompleteBox
	}
	var b BoundingBox
	copy(b.points[:], points[:4])
	return b, nil
}

// TopLeft returns the first corner
func (b BoundingBox) TopLeft() Point { return b.points[0] }

// TopRight returns the second corner
func (b BoundingBox) TopRight() Point { return b.points[1] }

// BottomRight returns the third corner
func (b BoundingBox) BottomRight() Point { return b.points[2] }

// BottomLeft returns the fourth corner
func (b BoundingBox) BottomLeft() Point { return b.points[3] }

// Width is the horizontal distance between the top-left and bottom-right corners
func (b BoundingBox) Width() float64 {
	return math.Abs(b.BottomRight().X - b.TopLeft().X)
}

// Height is the vertical distance between the top-left and bottom-right corners
func (b BoundingBox) Height() float64 {
	return math.Abs(b.BottomRight().Y - b.TopLeft().Y)
}

// Points returns the four corners in order.
func (b BoundingBox) Points() []Point {
	out := make([]Point, 4)
	copy(out, b.points[:])
	return out
}
