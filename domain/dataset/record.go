package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Record is an ordered mapping from field name to a scalar value.
// Field order is insertion order; re-setting a field keeps its position.
type Record struct {
	fields []string
	values map[string]any
}

// NewRecord builds a record from alternating field/value arguments.
// It panics when a key is not a string or a value is missing, since that is
// always a programming error at the call site.
func NewRecord(kv ...any) *Record {
	if len(kv)%2 != 0 {
		panic("dataset: NewRecord requires field/value pairs")
	}
	r := &Record{values: make(map[string]any, len(kv)/2)}
	for i := 0; i < len(kv); i += 2 {
		field, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("dataset: field name at position %d is %T, not string", i, kv[i]))
		}
		r.Set(field, kv[i+1])
	}
	return r
}

// FromMap builds a record from a map; fields are ordered by name
func FromMap(m map[string]any) *Record {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	r := &Record{values: make(map[string]any, len(m))}
	for _, k := range keys {
		r.Set(k, m[k])
	}
	return r
}

// Get returns the value for field and whether the field is present
func (r *Record) Get(field string) (any, bool) {
	if r == nil || r.values == nil {
		return nil, false
	}
	v, ok := r.values[field]
	return v, ok
}

// Value returns the value for field, or nil when absent
func (r *Record) Value(field string) any {
	v, _ := r.Get(field)
	return v
}

// Number returns the field as a well-formed number
func (r *Record) Number(field string) (float64, bool) {
	v, ok := r.Get(field)
	if !ok {
		return 0, false
	}
	return AsNumber(v)
}

// Has reports whether the field is present (a present field may hold nil)
func (r *Record) Has(field string) bool {
	_, ok := r.Get(field)
	return ok
}

// Set stores a normalized value and returns the record for chaining
func (r *Record) Set(field string, v any) *Record {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, exists := r.values[field]; !exists {
		r.fields = append(r.fields, field)
	}
	r.values[field] = Normalize(v)
	return r
}

// Delete removes a field
func (r *Record) Delete(field string) {
	if r == nil || r.values == nil {
		return
	}
	if _, exists := r.values[field]; !exists {
		return
	}
	delete(r.values, field)
	for i, f := range r.fields {
		if f == field {
			r.fields = append(r.fields[:i:i], r.fields[i+1:]...)
			break
		}
	}
}

// Fields returns the field names in order
func (r *Record) Fields() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.fields))
	copy(out, r.fields)
	return out
}

// Len returns the number of fields
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.fields)
}

// Clone returns a deep copy. Values are scalars so copying the map is enough.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := &Record{
		fields: make([]string, len(r.fields)),
		values: make(map[string]any, len(r.values)),
	}
	copy(c.fields, r.fields)
	for k, v := range r.values {
		c.values[k] = v
	}
	return c
}

// Equal compares field order and values
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == nil && o == nil
	}
	if len(r.fields) != len(o.fields) {
		return false
	}
	for i, f := range r.fields {
		if o.fields[i] != f {
			return false
		}
		if !Equal(r.values[f], o.values[f]) {
			return false
		}
	}
	return true
}

// ToMap returns an unordered copy of the record
func (r *Record) ToMap() map[string]any {
	m := make(map[string]any, r.Len())
	for _, f := range r.Fields() {
		m[f] = r.values[f]
	}
	return m
}

func (r *Record) String() string {
	if r == nil {
		return "<nil>"
	}
	parts := make([]string, 0, len(r.fields))
	for _, f := range r.fields {
		parts = append(parts, fmt.Sprintf("%s:%v", f, r.values[f]))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// MarshalJSON writes fields in order
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[f])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat JSON object keeping key order.
// Nested objects and arrays are kept as their raw JSON text.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record must be a JSON object")
	}

	*r = Record{values: make(map[string]any)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		field, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected key token %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("field %s: %w", field, err)
		}
		v, err := decodeScalar(raw)
		if err != nil {
			return fmt.Errorf("field %s: %w", field, err)
		}
		r.Set(field, v)
	}
	_, err = dec.Token()
	return err
}

func decodeScalar(raw json.RawMessage) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}
	switch trimmed[0] {
	case '{', '[':
		return string(trimmed), nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
