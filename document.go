package cpn

import "fmt"

// TokenRecord is the external form of a token.
type TokenRecord struct {
	ID    string         `json:"id" yaml:"id"`
	Name  string         `json:"name,omitempty" yaml:"name,omitempty"`
	Color string         `json:"color" yaml:"color"`
	Data  map[string]any `json:"data" yaml:"data"`
}

// Document is the external form of a marking: token records keyed by place id.
type Document map[string][]TokenRecord

func EncodeToken(t *Token) TokenRecord {
	rec := TokenRecord{
		ID:    t.id,
		Color: t.color.String(),
		Data:  t.Data(),
	}
	if t.name != t.id {
		rec.Name = t.name
	}
	return rec
}

// EncodeMarking converts m into a Document. Places without tokens are left out.
func EncodeMarking(m Marking) Document {
	doc := make(Document, m.Len())
	for _, p := range m.Places() {
		tokens := m.Get(p).Tokens()
		records := make([]TokenRecord, len(tokens))
		for i, t := range tokens {
			records[i] = EncodeToken(t)
		}
		doc[p.id] = records
	}
	return doc
}

// DecodeToken rebuilds a token, looking its color up by label in colors. A
// record without an id gets a fresh one.
func DecodeToken(colors map[string]Color, rec TokenRecord) (*Token, error) {
	c, ok := colors[rec.Color]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColor, rec.Color)
	}
	return NewToken(
		WithTokenID(rec.ID),
		WithTokenName(rec.Name),
		WithColor(c),
		WithData(rec.Data),
	), nil
}

// DecodeMarking rebuilds a marking of net from doc.
func DecodeMarking(net *Net, colors map[string]Color, doc Document) (Marking, error) {
	var m Marking
	for id, records := range doc {
		p, ok := net.Place(id)
		if !ok {
			return Marking{}, fmt.Errorf("%w: %q", ErrUnknownPlace, id)
		}
		for _, rec := range records {
			t, err := DecodeToken(colors, rec)
			if err != nil {
				return Marking{}, fmt.Errorf("place %s: %w", id, err)
			}
			m = m.Add(p, t)
		}
	}
	return m, nil
}

// ColorTable indexes colors by label.
func ColorTable(colors ...Color) map[string]Color {
	table := make(map[string]Color, len(colors))
	for _, c := range colors {
		table[c.String()] = c
	}
	return table
}
