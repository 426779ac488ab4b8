package jsonschema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Properties is an insertion-ordered property map. Field order is meaningful
// in form definitions, so a plain map would scramble converter output.
type Properties struct {
	keys []string
	m    map[string]*Schema
}

// NewProperties returns an empty property set.
func NewProperties() *Properties {
	return &Properties{m: map[string]*Schema{}}
}

// Len reports the number of properties.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Get returns the schema registered under name.
func (p *Properties) Get(name string) (*Schema, bool) {
	if p == nil {
		return nil, false
	}
	s, ok := p.m[name]
	return s, ok
}

// Has reports whether name is present.
func (p *Properties) Has(name string) bool {
	_, ok := p.Get(name)
	return ok
}

// Set stores s under name, keeping the original position when name already
// exists.
func (p *Properties) Set(name string, s *Schema) {
	if _, ok := p.m[name]; !ok {
		p.keys = append(p.keys, name)
	}
	p.m[name] = s
}

// SetIfAbsent stores s under name unless the name is already taken and
// reports whether the value was stored. Duplicate property names resolve
// first-wins.
func (p *Properties) SetIfAbsent(name string, s *Schema) bool {
	if _, ok := p.m[name]; ok {
		return false
	}
	p.keys = append(p.keys, name)
	p.m[name] = s
	return true
}

// Keys returns the property names in insertion order.
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Range calls fn for each property in insertion order until fn returns
// false.
func (p *Properties) Range(fn func(name string, s *Schema) bool) {
	if p == nil {
		return
	}
	for _, k := range p.keys {
		if !fn(k, p.m[k]) {
			return
		}
	}
}

// MarshalJSON writes the properties as a JSON object in insertion order.
func (p *Properties) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(p.m[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object preserving the key order of the source
// document.
func (p *Properties) UnmarshalJSON(data []byte) error {
	p.keys = nil
	p.m = map[string]*Schema{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("jsonschema: properties must be an object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("jsonschema: invalid property key %v", tok)
		}
		var s Schema
		if err := dec.Decode(&s); err != nil {
			return err
		}
		p.Set(key, &s)
	}
	// closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
