package forman

// Field is one entry of a Forman form definition. Options, Spec and Nested
// are duck-typed the way manifests write them (literal arrays, remote
// string references, extended wrappers); the normalizer resolves them into
// canonical views before conversion or validation.
type Field struct {
	Name     string `json:"name,omitempty"`
	Type     string `json:"type"`
	Label    string `json:"label,omitempty"`
	Help     string `json:"help,omitempty"`
	Required bool   `json:"required,omitempty"`
	Advanced bool   `json:"advanced,omitempty"`
	Default  any    `json:"default,omitempty"`

	// Select family
	Multiple bool  `json:"multiple,omitempty"`
	Grouped  bool  `json:"grouped,omitempty"`
	Mappable *bool `json:"mappable,omitempty"`
	Options  any   `json:"options,omitempty"`

	// Children and adjacent content
	Spec   any    `json:"spec,omitempty"`
	Nested any    `json:"nested,omitempty"`
	Domain string `json:"domain,omitempty"`

	// Domain root marker: this collection receives the named domain's
	// deferred fields.
	DomainRoot string `json:"x-domain-root,omitempty"`

	// Path semantics (file/folder)
	ShowRoot    bool `json:"showRoot,omitempty"`
	SingleLevel bool `json:"singleLevel,omitempty"`

	RPC      *RPC         `json:"rpc,omitempty"`
	Validate *Constraints `json:"validate,omitempty"`
}

// RPC describes a remote search affordance. Parameters is either a string
// reference or a field list.
type RPC struct {
	URL        string `json:"url"`
	Label      string `json:"label,omitempty"`
	Parameters any    `json:"parameters,omitempty"`
}

// Constraints is the validate bag of a field.
type Constraints struct {
	Pattern  string   `json:"pattern,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Enum     []any    `json:"enum,omitempty"`
	MinItems *int     `json:"minItems,omitempty"`
	MaxItems *int     `json:"maxItems,omitempty"`
}

// FieldOrRef is one entry of a spec list: either an inline field or a bare
// remote-string reference to fields defined elsewhere.
type FieldOrRef struct {
	Ref   string
	Field *Field
}

// AsField coerces a decoded manifest value into a Field. Accepted shapes:
// Field, *Field and map[string]any.
func AsField(v any) (*Field, error) {
	switch t := v.(type) {
	case *Field:
		return t, nil
	case Field:
		f := t
		return &f, nil
	case map[string]any:
		return mapToField(t)
	default:
		return nil, conversionErrf("", "invalid field definition of type %T", v)
	}
}

// AsFieldList coerces a spec-shaped value into its entries. Accepted
// shapes: nil, []Field, []*Field, []FieldOrRef, []any (mixing field maps
// and string references), plus a single field for one-element lists.
func AsFieldList(v any) ([]FieldOrRef, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []FieldOrRef:
		return t, nil
	case []Field:
		out := make([]FieldOrRef, len(t))
		for i := range t {
			f := t[i]
			out[i] = FieldOrRef{Field: &f}
		}
		return out, nil
	case []*Field:
		out := make([]FieldOrRef, len(t))
		for i, f := range t {
			out[i] = FieldOrRef{Field: f}
		}
		return out, nil
	case []any:
		out := make([]FieldOrRef, 0, len(t))
		for _, it := range t {
			if s, ok := it.(string); ok {
				out = append(out, FieldOrRef{Ref: s})
				continue
			}
			f, err := AsField(it)
			if err != nil {
				return nil, err
			}
			out = append(out, FieldOrRef{Field: f})
		}
		return out, nil
	default:
		f, err := AsField(v)
		if err != nil {
			return nil, err
		}
		return []FieldOrRef{{Field: f}}, nil
	}
}

// mapToField reads the known field keys out of a decoded JSON/YAML object.
// Unknown keys are ignored so manifests can carry annotations.
func mapToField(m map[string]any) (*Field, error) {
	f := &Field{}
	if s, ok := anyString(m["name"]); ok {
		f.Name = s
	}
	if s, ok := anyString(m["type"]); ok {
		f.Type = s
	}
	if s, ok := anyString(m["label"]); ok {
		f.Label = s
	}
	if s, ok := anyString(m["help"]); ok {
		f.Help = s
	}
	if s, ok := anyString(m["domain"]); ok {
		f.Domain = s
	}
	if s, ok := anyString(m["x-domain-root"]); ok {
		f.DomainRoot = s
	}
	f.Required = anyBool(m["required"])
	f.Advanced = anyBool(m["advanced"])
	f.Multiple = anyBool(m["multiple"])
	f.Grouped = anyBool(m["grouped"])
	f.ShowRoot = anyBool(m["showRoot"])
	f.SingleLevel = anyBool(m["singleLevel"])
	if v, ok := m["mappable"]; ok {
		b := anyBool(v)
		f.Mappable = &b
	}
	if v, ok := m["default"]; ok {
		f.Default = v
	}
	f.Options = m["options"]
	f.Spec = m["spec"]
	f.Nested = m["nested"]
	if rm, ok := m["rpc"].(map[string]any); ok {
		rpc := &RPC{Parameters: rm["parameters"]}
		rpc.URL, _ = anyString(rm["url"])
		rpc.Label, _ = anyString(rm["label"])
		f.RPC = rpc
	}
	if vm, ok := m["validate"].(map[string]any); ok {
		f.Validate = mapToConstraints(vm)
	}
	return f, nil
}

func mapToConstraints(m map[string]any) *Constraints {
	c := &Constraints{}
	c.Pattern, _ = anyString(m["pattern"])
	if n, ok := anyFloat(m["min"]); ok {
		c.Min = &n
	}
	if n, ok := anyFloat(m["max"]); ok {
		c.Max = &n
	}
	if e, ok := m["enum"].([]any); ok {
		c.Enum = e
	}
	if n, ok := anyInt(m["minItems"]); ok {
		c.MinItems = &n
	}
	if n, ok := anyInt(m["maxItems"]); ok {
		c.MaxItems = &n
	}
	return c
}
