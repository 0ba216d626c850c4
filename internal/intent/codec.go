package intent

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// envelope is the wire form of an Intent: the variant's fields plus "kind".
type envelope struct {
	Kind Kind `json:"kind"`
}

// Marshal encodes in with a "kind" discriminator.
func Marshal(in Intent) ([]byte, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, errors.Wrap(err, "encoding intent")
	}
	kind, _ := json.Marshal(envelope{Kind: in.Kind()})
	// Splice {"kind":...} in front of the variant's own fields.
	if bytes.Equal(body, []byte("{}")) {
		return kind, nil
	}
	out := make([]byte, 0, len(kind)+len(body))
	out = append(out, kind[:len(kind)-1]...)
	out = append(out, ',')
	out = append(out, body[1:]...)
	return out, nil
}

// Decode parses the output of Marshal. Integral JSON numbers decode as
// int64, others as float64.
func Decode(data []byte) (Intent, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(err, "decoding intent")
	}

	var in Intent
	switch env.Kind {
	case KindQuery:
		in = &Query{}
	case KindAnalytics:
		in = &Analytics{}
	case KindInsert:
		in = &Insert{}
	case KindUpdate:
		in = &Update{}
	case KindDelete:
		in = &Delete{}
	default:
		return nil, errors.Errorf("unknown intent kind %q", env.Kind)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(in); err != nil {
		return nil, errors.Wrapf(err, "decoding %s intent", env.Kind)
	}
	normalize(in)
	return in, nil
}

func normalize(in Intent) {
	switch v := in.(type) {
	case *Query:
		normalizeCondition(v.Condition)
		if v.Pagination != nil {
			normalizeSlice(v.Pagination.SearchAfter)
		}
	case *Analytics:
		normalizeCondition(v.Condition)
	case *Insert:
		normalizeMap(v.Data)
	case *Update:
		normalizeCondition(v.Condition)
		normalizeMap(v.Updates)
	case *Delete:
		normalizeCondition(v.Condition)
	}
}

func normalizeCondition(c *Condition) {
	if c == nil {
		return
	}
	c.Value = normalizeValue(c.Value)
	normalizeSlice(c.Values)
	for _, ch := range c.Children {
		normalizeCondition(ch)
	}
}

func normalizeSlice(vs []any) {
	for i := range vs {
		vs[i] = normalizeValue(vs[i])
	}
}

func normalizeMap(m map[string]any) {
	for k, v := range m {
		m[k] = normalizeValue(v)
	}
}

func normalizeValue(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
