package overlay

import (
	"bytes"
	"encoding/json"
	"fmt"

	"scorepack/internal/pack"
)

// Wire kinds for overlay items.
const (
	kindStroke = "stroke"
	kindStamp  = "stamp"
)

type wireItem struct {
	Kind string `json:"kind"`

	// Stroke fields.
	Tool      Tool    `json:"tool,omitempty"`
	LineWidth float64 `json:"lineWidth,omitempty"`
	Points    []Point `json:"points,omitempty"`

	// Stamp fields.
	StampID StampID `json:"stampId,omitempty"`
	At      *Point  `json:"at,omitempty"`
	Size    float64 `json:"size,omitempty"`

	// Shared.
	Color string `json:"color,omitempty"`
}

type wirePayload struct {
	Items []wireItem `json:"items"`
}

// Encode serializes an overlay for storage. Strokes with fewer than two
// points are discarded. Items referencing tools or stamps outside the fixed
// catalogs are rejected with pack.ErrUnknownVariant so that invalid data is
// never written.
func Encode(o Overlay) ([]byte, error) {
	payload := wirePayload{Items: make([]wireItem, 0, len(o))}
	for i, item := range o {
		switch {
		case item.Stroke != nil:
			s := item.Stroke
			if !s.Tool.Valid() {
				return nil, fmt.Errorf("%w: item %d uses tool %q", pack.ErrUnknownVariant, i, s.Tool)
			}
			if len(s.Points) < 2 {
				continue
			}
			payload.Items = append(payload.Items, wireItem{
				Kind:      kindStroke,
				Tool:      s.Tool,
				Color:     s.Color,
				LineWidth: s.LineWidth,
				Points:    s.Points,
			})
		case item.Stamp != nil:
			s := item.Stamp
			if !s.ID.Valid() {
				return nil, fmt.Errorf("%w: item %d uses stamp %q", pack.ErrUnknownVariant, i, s.ID)
			}
			at := s.At
			payload.Items = append(payload.Items, wireItem{
				Kind:    kindStamp,
				StampID: s.ID,
				Color:   s.Color,
				At:      &at,
				Size:    s.Size,
			})
		default:
			return nil, fmt.Errorf("%w: item %d is neither stroke nor stamp", pack.ErrUnknownVariant, i)
		}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode overlay: %w", err)
	}
	return data, nil
}

// Decode deserializes an overlay payload. An empty payload and a payload
// holding an empty item list both yield the canonical empty overlay. Unknown
// kinds, tools, and stamps fail closed with pack.ErrUnknownVariant; callers
// may choose to skip and warn, the codec never guesses.
func Decode(data []byte) (Overlay, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var payload wirePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode overlay: %w", pack.ErrMalformed, err)
	}
	if len(payload.Items) == 0 {
		return nil, nil
	}
	out := make(Overlay, 0, len(payload.Items))
	for i, item := range payload.Items {
		switch item.Kind {
		case kindStroke:
			if !item.Tool.Valid() {
				return nil, fmt.Errorf("%w: item %d uses tool %q", pack.ErrUnknownVariant, i, item.Tool)
			}
			if len(item.Points) < 2 {
				return nil, fmt.Errorf("%w: item %d stroke has %d points", pack.ErrMalformed, i, len(item.Points))
			}
			out = append(out, StrokeItem(Stroke{
				Tool:      item.Tool,
				Color:     item.Color,
				LineWidth: item.LineWidth,
				Points:    item.Points,
			}))
		case kindStamp:
			if !item.StampID.Valid() {
				return nil, fmt.Errorf("%w: item %d uses stamp %q", pack.ErrUnknownVariant, i, item.StampID)
			}
			var at Point
			if item.At != nil {
				at = *item.At
			}
			out = append(out, StampItem(Stamp{
				ID:    item.StampID,
				Color: item.Color,
				At:    at,
				Size:  item.Size,
			}))
		default:
			return nil, fmt.Errorf("%w: item %d has kind %q", pack.ErrUnknownVariant, i, item.Kind)
		}
	}
	return out, nil
}
