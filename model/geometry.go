package model

import "math"

// Epsilon is the tolerance used when checking that normalized geometry stays
// inside the unit square.
const Epsilon = 1e-6

// Point represents a 2D point
type Point struct {
	X, Y float64
}

// BBox represents a bounding box (rectangle).
//
// Raw boxes use PDF units with a bottom-left origin. Normalized boxes use
// fractions of the page size with a top-left origin, so Y grows downwards.
type BBox struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// NewBBox creates a bounding box from coordinates
func NewBBox(x, y, width, height float64) BBox {
	return BBox{X: x, Y: y, Width: width, Height: height}
}

// Right returns the right edge X coordinate
func (b BBox) Right() float64 {
	return b.X + b.Width
}

// Bottom returns the far Y edge (Y + Height).
func (b BBox) Bottom() float64 {
	return b.Y + b.Height
}

// Center returns the center point
func (b BBox) Center() Point {
	return Point{
		X: b.X + b.Width/2,
		Y: b.Y + b.Height/2,
	}
}

// Contains checks if a point is inside the bounding box
func (b BBox) Contains(p Point) bool {
	return p.X >= b.X && p.X <= b.Right() &&
		p.Y >= b.Y && p.Y <= b.Bottom()
}

// Intersects checks if two bounding boxes intersect
func (b BBox) Intersects(other BBox) bool {
	return !(b.Right() < other.X ||
		b.X > other.Right() ||
		b.Bottom() < other.Y ||
		b.Y > other.Bottom())
}

// Union returns the min/max envelope of two bounding boxes.
func (b BBox) Union(other BBox) BBox {
	x := math.Min(b.X, other.X)
	y := math.Min(b.Y, other.Y)
	right := math.Max(b.Right(), other.Right())
	bottom := math.Max(b.Bottom(), other.Bottom())

	return BBox{
		X:      x,
		Y:      y,
		Width:  right - x,
		Height: bottom - y,
	}
}

// Envelope returns the union of all boxes. It returns the zero box for an
// empty slice.
func Envelope(boxes ...BBox) BBox {
	if len(boxes) == 0 {
		return BBox{}
	}
	env := boxes[0]
	for _, b := range boxes[1:] {
		env = env.Union(b)
	}
	return env
}

// Area returns the area of the bounding box
func (b BBox) Area() float64 {
	return b.Width * b.Height
}

// IsValid returns true if the bounding box has positive, finite dimensions.
func (b BBox) IsValid() bool {
	for _, v := range []float64{b.X, b.Y, b.Width, b.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.Width > 0 && b.Height > 0
}

// InUnitSquare reports whether a normalized box lies inside [0,1]x[0,1]
// within Epsilon.
func (b BBox) InUnitSquare() bool {
	return b.X >= -Epsilon && b.Y >= -Epsilon &&
		b.Right() <= 1+Epsilon && b.Bottom() <= 1+Epsilon
}

// Normalize converts a raw PDF box (bottom-left origin, page units) into a
// normalized box (top-left origin, fractions of the page). The result is
// clamped into the unit square.
func (b BBox) Normalize(pageWidth, pageHeight float64) BBox {
	if pageWidth <= 0 || pageHeight <= 0 {
		return BBox{}
	}
	n := BBox{
		X:      b.X / pageWidth,
		Y:      1 - (b.Y+b.Height)/pageHeight,
		Width:  b.Width / pageWidth,
		Height: b.Height / pageHeight,
	}
	return n.Clamp()
}

// Clamp shrinks the box so it fits inside the unit square.
func (b BBox) Clamp() BBox {
	x0 := clamp01(b.X)
	y0 := clamp01(b.Y)
	x1 := clamp01(b.Right())
	y1 := clamp01(b.Bottom())
	return BBox{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Matrix represents a 2D affine transformation matrix
type Matrix [6]float64

// Transform applies the matrix transformation to a point
func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Scale creates a scaling matrix
func Scale(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// RenderMatrix returns the scale matrix that maps PDF points (1/72 inch) to
// pixels at the given resolution.
func RenderMatrix(dpi int) Matrix {
	s := float64(dpi) / 72
	return Scale(s, s)
}
