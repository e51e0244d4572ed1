package zone

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Reserved top-level document keys.
const (
	keyWidth  = "width"
	keyHeight = "height"
)

// entry is the on-disk shape of one zone.
type entry struct {
	Center         [2]float64 `json:"center"`
	ID             string     `json:"id"`
	Size           int        `json:"size"`
	Tolerance      float64    `json:"tolerance"`
	LineAttachment string     `json:"line_attachment"`
}

// MarshalJSON writes the calibration document: "width", "height" and one
// object per zone keyed by the zone key.
func (s *Store) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(s.Zones)+2)
	doc[keyWidth] = s.Width
	doc[keyHeight] = s.Height
	for k, z := range s.Zones {
		doc[k] = entry{
			Center:         [2]float64{z.Center.X, z.Center.Y},
			ID:             z.AssignedID,
			Size:           z.Size,
			Tolerance:      z.Tolerance,
			LineAttachment: string(z.Line),
		}
	}
	return json.Marshal(doc)
}

// UnmarshalJSON replaces s with the decoded document. On error s is left
// unchanged. Top-level values that are not zone objects are ignored.
func (s *Store) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	out := NewStore(0, 0)
	for _, k := range []string{keyWidth, keyHeight} {
		v, ok := raw[k]
		if !ok {
			return &DocumentError{Key: k, Err: errors.New("missing")}
		}
		var n int
		if err := json.Unmarshal(v, &n); err != nil {
			return &DocumentError{Key: k, Err: err}
		}
		if k == keyWidth {
			out.Width = n
		} else {
			out.Height = n
		}
	}

	for k, v := range raw {
		if k == keyWidth || k == keyHeight {
			continue
		}
		z, ok, err := decodeEntry(k, v)
		if err != nil {
			return &DocumentError{Key: k, Err: err}
		}
		if ok {
			out.Zones[k] = z
		}
	}

	*s = *out
	return nil
}

// decodeEntry decodes a zone object. ok is false for values that are not
// zone objects at all.
func decodeEntry(key string, v json.RawMessage) (*Zone, bool, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(v, &fields); err != nil {
		return nil, false, nil
	}
	if _, ok := fields["center"]; !ok {
		return nil, false, nil
	}

	var e entry
	if err := json.Unmarshal(v, &e); err != nil {
		return nil, false, err
	}
	if e.Size < 0 {
		return nil, false, fmt.Errorf("negative size %d", e.Size)
	}
	if e.Tolerance <= 0 {
		return nil, false, ErrInvalidTolerance
	}
	line, err := ParseLine(e.LineAttachment)
	if err != nil {
		return nil, false, err
	}
	return &Zone{
		Key:        key,
		Center:     Point{X: e.Center[0], Y: e.Center[1]},
		Size:       e.Size,
		Tolerance:  e.Tolerance,
		AssignedID: e.ID,
		Line:       line,
	}, true, nil
}

// Encode returns the indented calibration document for s.
func Encode(s *Store) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses a calibration document into a new store.
func Decode(data []byte) (*Store, error) {
	s := NewStore(0, 0)
	if err := s.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return s, nil
}

// SaveFile writes the calibration document to path atomically.
func SaveFile(path string, s *Store) error {
	data, err := Encode(s)
	if err != nil {
		return fmt.Errorf("failed to encode calibration: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// LoadFile reads a calibration document from path.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read calibration: %w", err)
	}
	s, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse calibration %s: %w", path, err)
	}
	return s, nil
}
