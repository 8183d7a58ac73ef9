package board

import (
	"time"
)

// Operation kinds.
const (
	OpDraw  = "draw"
	OpShape = "shape"
	OpText  = "text"
)

// Shape kinds accepted for OpShape.
const (
	ShapeRectangle = "rectangle"
	ShapeCircle    = "circle"
	ShapeLine      = "line"
	ShapeArrow     = "arrow"
	ShapeDiamond   = "diamond"
)

// Point 좌표
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Operation is one immutable drawing action: a freehand stroke, a shape or a
// text placement. The zero fields of the unused variant are omitted on the
// wire, matching what clients draw from.
type Operation struct {
	Type string `json:"type"`

	// Stroke fields
	Points    []Point `json:"points,omitempty"`
	Color     string  `json:"color,omitempty"`
	BrushSize float64 `json:"brushSize,omitempty"`
	Tool      string  `json:"tool,omitempty"`

	// Shape fields
	ShapeType string  `json:"shapeType,omitempty"`
	Width     float64 `json:"width,omitempty"`
	Height    float64 `json:"height,omitempty"`
	EndX      float64 `json:"endX,omitempty"`
	EndY      float64 `json:"endY,omitempty"`
	Filled    bool    `json:"filled,omitempty"`

	// Text fields
	Text       string  `json:"text,omitempty"`
	X          float64 `json:"x,omitempty"`
	Y          float64 `json:"y,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`

	UserID    int64     `json:"userId"`
	Username  string    `json:"username,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ValidShape reports whether s is one of the supported shape kinds.
func ValidShape(s string) bool {
	switch s {
	case ShapeRectangle, ShapeCircle, ShapeLine, ShapeArrow, ShapeDiamond:
		return true
	}
	return false
}
