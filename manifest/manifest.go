// Package manifest decodes Forman field manifests written in JSON or YAML
// into field lists. JSON decoding preserves numeric fidelity with UseNumber;
// YAML values are normalized to the JSON-like shapes the rest of the module
// works with.
package manifest

import (
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	forman "github.com/formanlab/forman"
)

// DecodeJSON reads one JSON manifest: a field array, a single field object,
// or a {fields: [...]} wrapper.
func DecodeJSON(r io.Reader) ([]forman.Field, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("manifest: invalid JSON: %w", err)
	}
	return Fields(doc)
}

// DecodeYAML reads a YAML manifest stream. Every document contributes its
// fields in stream order, so multi-document bundles concatenate.
func DecodeYAML(r io.Reader) ([]forman.Field, error) {
	dec := yaml.NewDecoder(r)
	var out []forman.Field
	n := 0
	for {
		var node any
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("manifest: invalid YAML: %w", err)
		}
		n++
		if node == nil {
			continue
		}
		fields, err := Fields(normalizeValue(node))
		if err != nil {
			return nil, fmt.Errorf("manifest: document %d: %w", n, err)
		}
		out = append(out, fields...)
	}
	return out, nil
}

// DecodeValue reads one JSON value document (the data under validation)
// with the same numeric fidelity as field manifests.
func DecodeValue(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("manifest: invalid JSON value: %w", err)
	}
	return doc, nil
}

// Fields coerces a decoded manifest value into a field list. Accepted
// shapes: a list of field objects, a single field object, and a wrapper
// object carrying the list under "fields" or "spec".
func Fields(v any) ([]forman.Field, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []forman.Field:
		return t, nil
	case []any:
		out := make([]forman.Field, 0, len(t))
		for i, it := range t {
			f, err := forman.AsField(it)
			if err != nil {
				return nil, fmt.Errorf("manifest: entry %d: %w", i, err)
			}
			out = append(out, *f)
		}
		return out, nil
	case map[string]any:
		if inner, ok := wrapperList(t); ok {
			return Fields(inner)
		}
		f, err := forman.AsField(t)
		if err != nil {
			return nil, err
		}
		return []forman.Field{*f}, nil
	default:
		return nil, fmt.Errorf("manifest: cannot read fields from %T", v)
	}
}

// wrapperList unwraps {fields: [...]} and {spec: [...]} documents. A map
// that also looks like a field itself (carries "type") is not unwrapped.
func wrapperList(m map[string]any) (any, bool) {
	if _, isField := m["type"]; isField {
		return nil, false
	}
	if v, ok := m["fields"]; ok {
		return v, true
	}
	if v, ok := m["spec"]; ok {
		return v, true
	}
	return nil, false
}

// normalizeValue converts YAML-decoded values (which may contain
// map[any]any) into JSON-like map[string]any recursively.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalizeValue(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = normalizeValue(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = normalizeValue(t[i])
		}
		return arr
	default:
		return v
	}
}
