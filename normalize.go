package forman

// normalField is the canonical view of a Field the converter and validator
// work from. The embedded Field is never mutated; resolved facts live in
// the extra members, which keeps normalization idempotent.
type normalField struct {
	Field
	Base    string // base family ("account" for "account:google")
	Variant string // prefix remainder ("google")
	K       Kind

	// Option source: exactly one of Groups/Store is set when the field has
	// options at all.
	Groups []optionGroup
	Store  string

	// Effective field-level nested content and its target domain. The
	// extended options wrapper wins over the field-level nested key when
	// both are present.
	NestedSrc    *nestedSource
	NestedDomain string
}

// optionGroup is a run of literal options. Label is empty for options that
// appear outside any named group.
type optionGroup struct {
	Label   string
	Options []optionItem
}

// optionItem is one resolved literal option.
type optionItem struct {
	Value    any
	Label    string
	HasLabel bool
	PathKind string // "file"/"folder" for path options; "" matches both
	Nested   *nestedSource
	Domain   string
	Raw      map[string]any
}

// nestedSource is resolved nested content: a remote reference or literal
// entries.
type nestedSource struct {
	Store  string
	Fields []FieldOrRef
}

func (n *nestedSource) remote() bool { return n != nil && n.Store != "" }

// normalizeField resolves a field's type and duck-typed members. Unknown
// base types are a conversion error; composite macros must be expanded
// before this point.
func normalizeField(f Field) (*normalField, error) {
	base, variant := splitType(f.Type)
	k, ok := classify(base)
	if !ok {
		return nil, conversionErrf(f.Name, "unknown field type %q", f.Type)
	}
	nf := &normalField{Field: f, Base: base, Variant: variant, K: k}

	var extNested any
	var extDomain string
	hasExtNested := false
	if k == KindSelect {
		switch t := f.Options.(type) {
		case nil:
		case string:
			nf.Store = t
		case []any:
			groups, err := parseOptionItems(t)
			if err != nil {
				return nil, err
			}
			nf.Groups = groups
		case map[string]any:
			// extended wrapper: {store, nested?, domain?}
			switch s := t["store"].(type) {
			case string:
				nf.Store = s
			case []any:
				groups, err := parseOptionItems(s)
				if err != nil {
					return nil, err
				}
				nf.Groups = groups
			case nil:
			default:
				return nil, conversionErrf(f.Name, "invalid options store of type %T", s)
			}
			if v, ok := t["nested"]; ok {
				extNested = v
				hasExtNested = true
			}
			extDomain, _ = anyString(t["domain"])
		default:
			return nil, conversionErrf(f.Name, "invalid options of type %T", t)
		}
		if nf.Store == "" && nf.Groups == nil {
			nf.Store = endpointFor(base, variant)
		}
	}

	nestedIn := f.Nested
	if hasExtNested {
		nestedIn = extNested
	}
	src, wrapperDomain, err := parseNested(f.Name, nestedIn)
	if err != nil {
		return nil, err
	}
	nf.NestedSrc = src
	nf.NestedDomain = firstNonEmpty(wrapperDomain, extDomain, f.Domain)
	return nf, nil
}

// parseOptionItems resolves a literal option list. Map entries carrying an
// "options" array open a named group; everything else joins an implicit
// unlabeled group, preserving interleaving order.
func parseOptionItems(list []any) ([]optionGroup, error) {
	var out []optionGroup
	implicit := optionGroup{}
	flush := func() {
		if len(implicit.Options) > 0 {
			out = append(out, implicit)
			implicit = optionGroup{}
		}
	}
	for _, it := range list {
		m, ok := it.(map[string]any)
		if !ok {
			implicit.Options = append(implicit.Options, optionItem{Value: it})
			continue
		}
		if sub, ok := m["options"].([]any); ok {
			flush()
			g := optionGroup{}
			g.Label, _ = anyString(m["label"])
			for _, si := range sub {
				opt, err := parseOptionItem(si)
				if err != nil {
					return nil, err
				}
				g.Options = append(g.Options, opt)
			}
			out = append(out, g)
			continue
		}
		opt, err := parseOptionItem(it)
		if err != nil {
			return nil, err
		}
		implicit.Options = append(implicit.Options, opt)
	}
	flush()
	return out, nil
}

func parseOptionItem(v any) (optionItem, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return optionItem{Value: v}, nil
	}
	opt := optionItem{Raw: m, Value: m["value"]}
	if s, ok := anyString(m["label"]); ok {
		opt.Label = s
		opt.HasLabel = true
	}
	if s, ok := anyString(m["type"]); ok && (s == "file" || s == "folder") {
		opt.PathKind = s
	}
	src, domain, err := parseNested("", m["nested"])
	if err != nil {
		return optionItem{}, err
	}
	opt.Nested = src
	opt.Domain = firstNonEmpty(domain, stringOr(m["domain"]))
	return opt, nil
}

// parseNested resolves nested content. Shapes: string reference, entry
// list, a single field definition, or a {store, domain} wrapper (store
// itself duck-typed again).
func parseNested(owner string, v any) (*nestedSource, string, error) {
	switch t := v.(type) {
	case nil:
		return nil, "", nil
	case string:
		return &nestedSource{Store: t}, "", nil
	case map[string]any:
		if inner, ok := t["store"]; ok {
			src, _, err := parseNested(owner, inner)
			if err != nil {
				return nil, "", err
			}
			domain := stringOr(t["domain"])
			return src, domain, nil
		}
		// a single field definition
		f, err := AsField(t)
		if err != nil {
			return nil, "", err
		}
		return &nestedSource{Fields: []FieldOrRef{{Field: f}}}, "", nil
	default:
		entries, err := AsFieldList(v)
		if err != nil {
			return nil, "", conversionErrf(owner, "invalid nested content of type %T", v)
		}
		return &nestedSource{Fields: entries}, "", nil
	}
}

// flatOptions flattens groups for conversion, prefixing labels with their
// group label ("Group: label").
func (nf *normalField) flatOptions() []optionItem {
	var out []optionItem
	for _, g := range nf.Groups {
		for _, o := range g.Options {
			if g.Label != "" {
				p := o
				label := p.Label
				if !p.HasLabel {
					label = valueString(p.Value)
				}
				p.Label = g.Label + ": " + label
				p.HasLabel = true
				out = append(out, p)
				continue
			}
			out = append(out, o)
		}
	}
	return out
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}

func stringOr(v any) string {
	s, _ := anyString(v)
	return s
}
