package overlay

// Tool identifies the drawing tool that produced a stroke.
type Tool string

const (
	ToolPen         Tool = "pen"
	ToolHighlighter Tool = "highlighter"
	ToolEraser      Tool = "eraser"
)

// Valid reports whether the tool is part of the fixed catalog.
func (t Tool) Valid() bool {
	switch t {
	case ToolPen, ToolHighlighter, ToolEraser:
		return true
	}
	return false
}

// StampID identifies a symbolic mark from the fixed stamp catalog.
type StampID string

const (
	StampSegno   StampID = "segno"
	StampCoda    StampID = "coda"
	StampFermata StampID = "fermata"
	StampBreath  StampID = "breath"
	StampAccent  StampID = "accent"
	StampSharp   StampID = "sharp"
	StampFlat    StampID = "flat"
	StampNatural StampID = "natural"
)

// Valid reports whether the stamp is part of the fixed catalog.
func (s StampID) Valid() bool {
	switch s {
	case StampSegno, StampCoda, StampFermata, StampBreath,
		StampAccent, StampSharp, StampFlat, StampNatural:
		return true
	}
	return false
}

// Point is a 2D coordinate in page space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is one freehand mark. Strokes with fewer than two points are
// accidental taps and are never persisted.
type Stroke struct {
	Tool      Tool    `json:"tool"`
	Color     string  `json:"color"`
	LineWidth float64 `json:"lineWidth"`
	Points    []Point `json:"points"`
}

// Stamp is one placed symbolic mark.
type Stamp struct {
	ID    StampID `json:"stampId"`
	Color string  `json:"color"`
	At    Point   `json:"at"`
	Size  float64 `json:"size"`
}

// Item is one overlay record: exactly one of Stroke or Stamp is set.
type Item struct {
	Stroke *Stroke
	Stamp  *Stamp
}

// StrokeItem wraps a stroke as an overlay item.
func StrokeItem(s Stroke) Item { return Item{Stroke: &s} }

// StampItem wraps a stamp as an overlay item.
func StampItem(s Stamp) Item { return Item{Stamp: &s} }

// Overlay is the ordered annotation list for one page. Order is paint order.
type Overlay []Item

// Empty reports whether the overlay paints nothing. Strokes with fewer than
// two points are accidental taps that Encode discards, so an overlay holding
// only taps is empty too. Writers rely on this to keep the canonical empty
// state entry-absent rather than storing a zero-item payload. The nil overlay
// is the canonical empty value.
func (o Overlay) Empty() bool {
	for _, item := range o {
		if item.Stamp != nil {
			return false
		}
		if item.Stroke != nil && len(item.Stroke.Points) >= 2 {
			return false
		}
	}
	return true
}
