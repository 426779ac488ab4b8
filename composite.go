package forman

// Composite is a macro field type expanded before normalization. Expansion
// is a pure rewrite: it returns a replacement field and never mutates its
// input, so the rest of the pipeline only ever sees table types.
type Composite interface {
	// Name is the type token this composite expands ("udtspec").
	Name() string
	// Expand rewrites the field into its expansion.
	Expand(f Field) (Field, error)
	// Key returns a stable fragment key for de-duplicating repeated
	// expansions into a shared definitions entry. "" inlines every use.
	Key(f Field) string
}

// CompositeSet holds registered composites keyed by the type token they
// expand.
type CompositeSet struct {
	m map[string]Composite
}

// NewCompositeSet returns an empty set.
func NewCompositeSet() *CompositeSet {
	return &CompositeSet{m: map[string]Composite{}}
}

// Register adds c, replacing any composite with the same name.
func (s *CompositeSet) Register(c Composite) {
	s.m[c.Name()] = c
}

// expand rewrites f when its base type names a registered composite.
// Expansions may themselves be composites; the chain is followed with a
// small depth guard against cycles. The returned key is the shared
// fragment key of the outermost expansion ("" when inlined).
func (s *CompositeSet) expand(f Field) (Field, string, error) {
	if s == nil {
		return f, "", nil
	}
	key := ""
	for depth := 0; ; depth++ {
		base, _ := splitType(f.Type)
		c, ok := s.m[base]
		if !ok {
			return f, key, nil
		}
		if depth >= 8 {
			return f, "", conversionErrf(f.Name, "composite expansion cycle at %q", f.Type)
		}
		if depth == 0 {
			if k := c.Key(f); k != "" {
				key = c.Name() + "." + k
			}
		}
		out, err := c.Expand(f)
		if err != nil {
			return f, "", err
		}
		f = out
	}
}

func (s *CompositeSet) has(typ string) bool {
	if s == nil {
		return false
	}
	base, _ := splitType(typ)
	_, ok := s.m[base]
	return ok
}

// funcComposite adapts plain functions into a Composite.
type funcComposite struct {
	name   string
	expand func(Field) (Field, error)
	key    func(Field) string
}

func (c funcComposite) Name() string { return c.name }

func (c funcComposite) Expand(f Field) (Field, error) { return c.expand(f) }

func (c funcComposite) Key(f Field) string {
	if c.key == nil {
		return ""
	}
	return c.key(f)
}

// NewComposite builds a Composite from functions. key may be nil for
// always-inline expansion.
func NewComposite(name string, expand func(Field) (Field, error), key func(Field) string) Composite {
	return funcComposite{name: name, expand: expand, key: key}
}

// UDTComposites returns the built-in composite set for the udt macro
// family. udttype expands to a selector over the workspace's user-defined
// types; udtspec expands to the field list describing one member of a type
// specification. Both carry stable keys so repeated uses share one
// definitions fragment.
func UDTComposites() *CompositeSet {
	s := NewCompositeSet()
	s.Register(NewComposite("udttype",
		func(f Field) (Field, error) {
			out := f
			out.Type = "select"
			if out.Options == nil {
				out.Options = "api://udts"
			}
			return out, nil
		},
		func(f Field) string {
			if f.Options != nil {
				return "" // custom source, inline
			}
			return "type"
		},
	))
	s.Register(NewComposite("udtspec",
		func(f Field) (Field, error) {
			out := f
			out.Type = "collection"
			out.Options = nil
			out.Spec = []Field{
				{Name: "name", Type: "text", Label: "Name", Required: true},
				{Name: "type", Type: "select", Label: "Type", Required: true, Options: []any{
					"text", "number", "boolean", "date", "array", "collection",
				}},
				{Name: "label", Type: "text", Label: "Label"},
				{Name: "required", Type: "boolean", Label: "Required"},
				{Name: "default", Type: "text", Label: "Default value"},
			}
			return out, nil
		},
		func(Field) string { return "member" },
	))
	return s
}
