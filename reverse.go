package forman

import (
	js "github.com/formanlab/forman/jsonschema"
)

// String formats that narrow back to a dedicated Forman type.
var reverseFormats = map[string]string{
	"email":     "email",
	"uri":       "url",
	"date":      "date",
	"time":      "time",
	"date-time": "timestamp",
}

// FromJSONSchema converts an object schema back into a field list. The
// mapping is intentionally lossy: domain routing, x-fetch, x-nested and
// x-search are not reconstructed; x-filter and x-path markers are.
func FromJSONSchema(s *js.Schema) ([]Field, error) {
	if s == nil {
		return nil, conversionErrf("", "cannot reverse a nil schema")
	}
	if typeName(s.Type) != "object" {
		return nil, conversionErrf("", "root schema must describe an object, got %v", s.Type)
	}
	f, err := fieldFromSchema("", s, false)
	if err != nil {
		return nil, err
	}
	fields, _ := f.Spec.([]Field)
	return fields, nil
}

// typeName resolves the type keyword to a single name; multi-type unions
// and absent types both report "".
func typeName(t any) string {
	switch v := t.(type) {
	case string:
		return v
	default:
		return ""
	}
}

func fieldFromSchema(name string, s *js.Schema, required bool) (Field, error) {
	f := Field{Name: name, Required: required, Label: s.Title, Help: s.Description}
	if s.Default != nil {
		f.Default = s.Default
	}

	// side markers first: they identify fields the plain keywords cannot
	if s.XFilter != nil {
		f.Type = "filter"
		f.Options = map[string]any{"logic": s.XFilter.Logic}
		return f, nil
	}
	if s.XComposite != "" {
		f.Type = s.XComposite
		return f, nil
	}
	if s.XPath != nil {
		f.Type = s.XPath.Type
		f.ShowRoot = s.XPath.ShowRoot
		f.SingleLevel = s.XPath.SingleLevel
		return f, nil
	}

	switch typeName(s.Type) {
	case "object":
		return reverseObject(f, s)
	case "array":
		return reverseArray(f, s)
	case "string":
		return reverseString(f, s)
	case "number":
		f.Type = "number"
		f.Validate = numericConstraints(s)
		return f, nil
	case "integer":
		f.Type = "integer"
		f.Validate = numericConstraints(s)
		return f, nil
	case "boolean":
		f.Type = "boolean"
		return f, nil
	}

	// untyped enum/oneOf schemas are selects over scalar values
	if len(s.Enum) > 0 {
		f.Type = "select"
		f.Options = append([]any(nil), s.Enum...)
		return f, nil
	}
	if opts, ok := constOptions(s.OneOf); ok {
		f.Type = "select"
		f.Options = opts
		return f, nil
	}
	f.Type = "any"
	return f, nil
}

func reverseObject(f Field, s *js.Schema) (Field, error) {
	if s.Properties == nil {
		f.Type = "dynamicCollection"
		return f, nil
	}
	f.Type = "collection"
	req := map[string]bool{}
	for _, r := range s.Required {
		req[r] = true
	}
	spec := make([]Field, 0, s.Properties.Len())
	var rangeErr error
	s.Properties.Range(func(name string, ps *js.Schema) bool {
		cf, err := fieldFromSchema(name, ps, req[name])
		if err != nil {
			rangeErr = err
			return false
		}
		spec = append(spec, cf)
		return true
	})
	if rangeErr != nil {
		return f, rangeErr
	}
	f.Spec = spec
	return f, nil
}

func reverseArray(f Field, s *js.Schema) (Field, error) {
	f.Type = "array"
	if s.MinItems != nil || s.MaxItems != nil {
		f.Validate = &Constraints{MinItems: s.MinItems, MaxItems: s.MaxItems}
	}
	items := s.Items
	if items == nil {
		return f, nil
	}
	if typeName(items.Type) == "object" && items.Properties != nil {
		// flatten object items into a child spec list
		inner, err := reverseObject(Field{}, items)
		if err != nil {
			return f, err
		}
		f.Spec = inner.Spec
		return f, nil
	}
	item, err := fieldFromSchema("", items, false)
	if err != nil {
		return f, err
	}
	f.Spec = item
	return f, nil
}

func reverseString(f Field, s *js.Schema) (Field, error) {
	if len(s.Enum) > 0 {
		f.Type = "select"
		f.Options = append([]any(nil), s.Enum...)
		return f, nil
	}
	if opts, ok := constOptions(s.OneOf); ok {
		f.Type = "select"
		f.Options = opts
		return f, nil
	}
	if t, ok := reverseFormats[s.Format]; ok {
		f.Type = t
	} else {
		f.Type = "text"
	}
	c := &Constraints{Pattern: s.Pattern}
	if s.MinLength != nil {
		v := float64(*s.MinLength)
		c.Min = &v
	}
	if s.MaxLength != nil {
		v := float64(*s.MaxLength)
		c.Max = &v
	}
	if c.Pattern != "" || c.Min != nil || c.Max != nil {
		f.Validate = c
	}
	return f, nil
}

func numericConstraints(s *js.Schema) *Constraints {
	if s.Minimum == nil && s.Maximum == nil {
		return nil
	}
	return &Constraints{Min: s.Minimum, Max: s.Maximum}
}

// constOptions recognizes a oneOf made purely of const entries and renders
// it as a literal option list.
func constOptions(oneOf []*js.Schema) ([]any, bool) {
	if len(oneOf) == 0 {
		return nil, false
	}
	out := make([]any, 0, len(oneOf))
	for _, e := range oneOf {
		if e == nil || e.Const == nil {
			return nil, false
		}
		m := map[string]any{"value": e.Const}
		if e.Title != "" {
			m["label"] = e.Title
		}
		out = append(out, m)
	}
	return out, true
}
