package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"vizkit/domain/core"
)

// Dataset is a sequence of records. A nil entry is a null top-level entry;
// a nil Dataset is not a dataset at all.
type Dataset []*Record

// Clone deep-copies the dataset; nil stays nil
func (d Dataset) Clone() Dataset {
	if d == nil {
		return nil
	}
	out := make(Dataset, len(d))
	for i, r := range d {
		out[i] = r.Clone()
	}
	return out
}

// Len counts entries including nil ones
func (d Dataset) Len() int {
	return len(d)
}

// IsEmpty reports whether there is no non-nil record
func (d Dataset) IsEmpty() bool {
	for _, r := range d {
		if r != nil {
			return false
		}
	}
	return true
}

// Fields returns the union of field names in first-seen order
func (d Dataset) Fields() []string {
	seen := make(map[string]bool)
	var fields []string
	for _, r := range d {
		for _, f := range r.Fields() {
			if !seen[f] {
				seen[f] = true
				fields = append(fields, f)
			}
		}
	}
	return fields
}

// NumericFields returns fields holding at least one well-formed number
func (d Dataset) NumericFields() []string {
	var out []string
	for _, f := range d.Fields() {
		for _, r := range d {
			if _, ok := r.Number(f); ok {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// Numbers returns the well-formed numbers of a field, in record order
func (d Dataset) Numbers(field string) []float64 {
	var out []float64
	for _, r := range d {
		if v, ok := r.Number(field); ok {
			out = append(out, v)
		}
	}
	return out
}

// Column returns one entry per record; missing or non-numeric values are NaN
func (d Dataset) Column(field string) []float64 {
	out := make([]float64, len(d))
	for i, r := range d {
		if v, ok := r.Number(field); ok {
			out[i] = v
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// Values returns one raw value per record; missing values are nil
func (d Dataset) Values(field string) []any {
	out := make([]any, len(d))
	for i, r := range d {
		out[i] = r.Value(field)
	}
	return out
}

// Equal compares two datasets record by record
func (d Dataset) Equal(o Dataset) bool {
	if len(d) != len(o) {
		return false
	}
	for i := range d {
		if !d[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Decode parses a JSON array of flat objects. Any other top-level JSON value
// is rejected as not a dataset; null array entries become nil records.
func Decode(r io.Reader) (Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeBytes(data)
}

// DecodeBytes is Decode over a byte slice
func DecodeBytes(data []byte) (Dataset, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array", core.ErrNotADataset)
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(trimmed, &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidInput, err)
	}

	out := make(Dataset, len(raws))
	for i, raw := range raws {
		if string(bytes.TrimSpace(raw)) == "null" {
			continue
		}
		rec := &Record{}
		if err := rec.UnmarshalJSON(raw); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", core.ErrInvalidInput, i, err)
		}
		out[i] = rec
	}
	return out, nil
}

// Encode writes the dataset as a JSON array
func (d Dataset) Encode(w io.Writer) error {
	return json.NewEncoder(w).Encode([]*Record(d))
}
