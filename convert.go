package forman

import (
	"sort"
	"strings"

	js "github.com/formanlab/forman/jsonschema"
)

// ConvertOpt configures forward conversion.
type ConvertOpt struct {
	// Domain names the document being converted. "" is the unnamed root
	// document.
	Domain string
	// Composites expands macro field types before conversion.
	Composites *CompositeSet
}

// convCtx is the per-branch conversion context. Values copy on descent;
// the registry and root schema pointers are shared across the call.
type convCtx struct {
	domain string
	tail   []TailEntry
	reg    *domainRegistry
	comps  *CompositeSet
	root   *js.Schema
}

func (cc convCtx) withDomain(d string) convCtx {
	cc.domain = d
	return cc
}

func (cc convCtx) withTail(name string) convCtx {
	cc.tail = appendTail(cc.tail, TailEntry{Name: name})
	return cc
}

// condAdder splices an if/then branch for a chosen option value onto the
// collection owning the choosing field.
type condAdder func(name string, value any, branch *js.Schema)

// ToJSONSchema converts a field list, treated as an implicit root
// collection, into a JSON Schema draft-07 fragment.
func ToJSONSchema(fields []Field, opts ...ConvertOpt) (*js.Schema, error) {
	var opt ConvertOpt
	if len(opts) > 0 {
		opt = opts[0]
	}
	reg := newDomainRegistry()
	return convertRoot(fields, opt.Domain, reg, opt.Composites)
}

// ToJSONSchemaDomains converts several named documents against one shared
// registry so cross-domain routes compose. Domains are processed in sorted
// name order, which keeps output independent of map iteration order.
func ToJSONSchemaDomains(domains map[string][]Field, opts ...ConvertOpt) (map[string]*js.Schema, error) {
	var opt ConvertOpt
	if len(opts) > 0 {
		opt = opts[0]
	}
	reg := newDomainRegistry()
	names := make([]string, 0, len(domains))
	for name := range domains {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make(map[string]*js.Schema, len(domains))
	for _, name := range names {
		s, err := convertRoot(domains[name], name, reg, opt.Composites)
		if err != nil {
			return nil, err
		}
		out[name] = s
	}
	return out, nil
}

func convertRoot(fields []Field, domain string, reg *domainRegistry, comps *CompositeSet) (*js.Schema, error) {
	root := js.NewObject()
	cc := convCtx{domain: domain, reg: reg, comps: comps, root: root}
	entries, err := AsFieldList(fields)
	if err != nil {
		return nil, err
	}
	if err := convertInto(root, entries, cc); err != nil {
		return nil, err
	}
	// the top-level collection is the domain's own root
	if err := reg.register(domain, collectionAdder(root, cc)); err != nil {
		return nil, err
	}
	return root, nil
}

// collectionAdder merges replayed registry items into a registered domain
// root, converting them with their captured tails.
func collectionAdder(dst *js.Schema, cc convCtx) domainAdder {
	cond := schemaCond(dst)
	return func(it domainItem) error {
		c2 := cc
		c2.tail = it.Tail
		return addEntry(dst, it.Entry, c2, cond)
	}
}

// schemaCond returns the condAdder appending if/then branches to s's allOf.
func schemaCond(s *js.Schema) condAdder {
	return func(name string, value any, branch *js.Schema) {
		props := js.NewProperties()
		props.Set(name, &js.Schema{Const: value})
		s.AllOf = append(s.AllOf, &js.Schema{
			If:   &js.Schema{Required: []string{name}, Properties: props},
			Then: branch,
		})
	}
}

// convertInto converts entries into dst in order.
func convertInto(dst *js.Schema, entries []FieldOrRef, cc convCtx) error {
	if dst.Properties == nil {
		dst.Properties = js.NewProperties()
	}
	cond := schemaCond(dst)
	for _, e := range entries {
		if err := addEntry(dst, e, cc, cond); err != nil {
			return err
		}
	}
	return nil
}

// addEntry places one spec entry into dst. Duplicate property names
// resolve first-wins: later duplicates are dropped entirely, required flag
// and conditional branches included.
func addEntry(dst *js.Schema, e FieldOrRef, cc convCtx, cond condAdder) error {
	if e.Ref != "" {
		dst.AllOf = append(dst.AllOf, js.RefTo(withTailQuery(e.Ref, cc.tail)))
		return nil
	}
	f := *e.Field
	if dst.Properties != nil && f.Name != "" && dst.Properties.Has(f.Name) {
		return nil
	}
	s, err := convertField(f, cc, cond)
	if err != nil {
		return err
	}
	if s == nil {
		return nil
	}
	if f.Name == "" {
		return conversionErrf("", "specification entry of type %q is missing a name", f.Type)
	}
	if dst.Properties == nil {
		dst.Properties = js.NewProperties()
	}
	if dst.Properties.SetIfAbsent(f.Name, s) && f.Required {
		dst.Required = append(dst.Required, f.Name)
	}
	return nil
}

// convertField converts one field. A nil schema with nil error means the
// field contributes nothing (visual types).
func convertField(f Field, cc convCtx, cond condAdder) (*js.Schema, error) {
	f, fragKey, err := cc.comps.expand(f)
	if err != nil {
		return nil, err
	}
	if fragKey != "" {
		return convertShared(f, fragKey, cc)
	}
	return convertResolved(f, cc, cond)
}

func convertResolved(f Field, cc convCtx, cond condAdder) (*js.Schema, error) {
	nf, err := normalizeField(f)
	if err != nil {
		return nil, err
	}
	switch nf.K {
	case KindVisual:
		return nil, nil
	case KindCollection:
		return convertCollection(nf, cc)
	case KindArray:
		return convertArray(nf, cc)
	case KindSelect:
		return convertSelect(nf, cc, cond)
	case KindFilter:
		return convertFilter(nf, cc)
	default:
		return convertPrimitive(nf, cc)
	}
}

// convertShared converts a keyed composite expansion once into a shared
// definitions fragment and returns a reference wrapper. Fragments convert
// context-free (no tail): a keyed composite asserts its expansion does not
// depend on where it appears.
func convertShared(f Field, key string, cc convCtx) (*js.Schema, error) {
	if cc.root.Definitions == nil {
		cc.root.Definitions = map[string]*js.Schema{}
	}
	if _, ok := cc.root.Definitions[key]; !ok {
		cc.root.Definitions[key] = &js.Schema{} // claim the slot
		fcc := cc
		fcc.tail = nil
		s, err := convertResolved(f, fcc, nil)
		if err != nil {
			delete(cc.root.Definitions, key)
			return nil, err
		}
		if s == nil {
			delete(cc.root.Definitions, key)
			return nil, nil
		}
		cc.root.Definitions[key] = s
	}
	w := js.RefTo("#/definitions/" + key)
	if i := strings.IndexByte(key, '.'); i > 0 {
		w.XComposite = key[:i]
	} else {
		w.XComposite = key
	}
	return w, nil
}

func convertCollection(nf *normalField, cc convCtx) (*js.Schema, error) {
	entries, err := AsFieldList(nf.Spec)
	if err != nil {
		return nil, err
	}
	s := &js.Schema{Type: "object"}
	ccChild := cc
	if nf.DomainRoot != "" {
		ccChild = cc.withDomain(nf.DomainRoot)
	}
	open := nf.Base == "dynamicCollection" && len(entries) == 0
	if !open {
		s.Properties = js.NewProperties()
		if err := convertInto(s, entries, ccChild); err != nil {
			return nil, err
		}
	}
	applyMeta(s, nf)
	if nf.DomainRoot != "" {
		if err := cc.reg.register(nf.DomainRoot, collectionAdder(s, ccChild)); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func convertArray(nf *normalField, cc convCtx) (*js.Schema, error) {
	s := &js.Schema{Type: "array"}
	switch sp := nf.Spec.(type) {
	case nil:
	case string:
		s.Items = js.RefTo(withTailQuery(sp, cc.tail))
	case map[string]any, Field, *Field:
		item, err := AsField(sp)
		if err != nil {
			return nil, err
		}
		is, err := convertField(*item, cc, nil)
		if err != nil {
			return nil, err
		}
		s.Items = is
	default:
		entries, err := AsFieldList(nf.Spec)
		if err != nil {
			return nil, err
		}
		inner := js.NewObject()
		if err := convertInto(inner, entries, cc); err != nil {
			return nil, err
		}
		s.Items = inner
	}
	applyMeta(s, nf)
	if c := nf.Validate; c != nil {
		s.MinItems = c.MinItems
		s.MaxItems = c.MaxItems
	}
	return s, nil
}

func convertPrimitive(nf *normalField, cc convCtx) (*js.Schema, error) {
	s := &js.Schema{}
	if nf.K != KindAny {
		s.Type = schemaType(nf.Base)
		if format := stringTypes[nf.Base]; format != "" {
			s.Format = format
		}
		switch nf.Base {
		case "uinteger":
			s.Minimum = floatPtr(0)
		case "port":
			s.Minimum = floatPtr(1)
			s.Maximum = floatPtr(65535)
		}
	}
	applyMeta(s, nf)
	applyConstraints(s, nf)
	if err := applyFieldExtras(s, nf, cc); err != nil {
		return nil, err
	}
	return s, nil
}

// applyMeta copies label/help/default. Nil and empty-string defaults are
// treated as absent.
func applyMeta(s *js.Schema, nf *normalField) {
	s.Title = nf.Label
	s.Description = nf.Help
	if hasDefault(nf.Default) {
		s.Default = nf.Default
	}
}

func hasDefault(v any) bool {
	if v == nil {
		return false
	}
	s, ok := v.(string)
	return !ok || s != ""
}

// applyConstraints maps the validate bag onto type-appropriate keywords:
// value bounds for numbers, length bounds for strings.
func applyConstraints(s *js.Schema, nf *normalField) {
	c := nf.Validate
	if c == nil {
		return
	}
	if len(c.Enum) > 0 {
		s.Enum = c.Enum
	}
	switch nf.K {
	case KindNumber:
		if c.Min != nil {
			s.Minimum = c.Min
		}
		if c.Max != nil {
			s.Maximum = c.Max
		}
	case KindString:
		if c.Pattern != "" {
			s.Pattern = c.Pattern
		}
		if c.Min != nil {
			v := int(*c.Min)
			s.MinLength = &v
		}
		if c.Max != nil {
			v := int(*c.Max)
			s.MaxLength = &v
		}
	}
}

// applyFieldExtras handles the concerns selects and primitives share:
// field-level nested content, path markers, remote search.
func applyFieldExtras(s *js.Schema, nf *normalField, cc convCtx) error {
	if nf.NestedSrc != nil {
		target := firstNonEmpty(nf.NestedDomain, cc.domain)
		childTail := appendTail(cc.tail, TailEntry{Name: nf.Name})
		if target != cc.domain {
			if err := routeNested(cc, target, nf.Name, nf.NestedSrc, childTail); err != nil {
				return err
			}
		} else {
			x, err := nestedSchema(nf.NestedSrc, cc, childTail)
			if err != nil {
				return err
			}
			s.XNested = x
		}
	}
	if isPathType(nf.Base) {
		s.XPath = &js.PathInfo{Type: nf.Base, Name: nf.Name, ShowRoot: nf.ShowRoot, SingleLevel: nf.SingleLevel}
	}
	if nf.RPC != nil {
		srch, err := searchSchema(nf.RPC, cc)
		if err != nil {
			return err
		}
		s.XSearch = srch
	}
	return nil
}

// routeNested sends nested content across a domain boundary: one item per
// entry, or the bare reference for remote content, each carrying tail.
func routeNested(cc convCtx, domain, origin string, src *nestedSource, tail []TailEntry) error {
	if src.remote() {
		return cc.reg.route(domain, domainItem{
			Entry: FieldOrRef{Ref: src.Store}, Tail: tail,
			RefDomain: cc.domain, RefPath: origin,
		})
	}
	for _, e := range src.Fields {
		if err := cc.reg.route(domain, domainItem{
			Entry: e, Tail: tail, RefDomain: cc.domain, RefPath: origin,
		}); err != nil {
			return err
		}
	}
	return nil
}

// nestedSchema renders same-domain nested content by shape: a reference
// wrapper, an implicit collection, or a mixed allOf when references and
// literal fields interleave.
func nestedSchema(src *nestedSource, cc convCtx, tail []TailEntry) (*js.Schema, error) {
	c2 := cc
	c2.tail = tail
	if src.remote() {
		return js.RefTo(withTailQuery(src.Store, tail)), nil
	}
	mixed := false
	for _, e := range src.Fields {
		if e.Ref != "" {
			mixed = true
			break
		}
	}
	if !mixed {
		s := js.NewObject()
		if err := convertInto(s, src.Fields, c2); err != nil {
			return nil, err
		}
		return s, nil
	}
	out := &js.Schema{Type: "object"}
	var run []FieldOrRef
	flush := func() error {
		if len(run) == 0 {
			return nil
		}
		s := js.NewObject()
		if err := convertInto(s, run, c2); err != nil {
			return err
		}
		out.AllOf = append(out.AllOf, s)
		run = nil
		return nil
	}
	for _, e := range src.Fields {
		if e.Ref != "" {
			if err := flush(); err != nil {
				return nil, err
			}
			out.AllOf = append(out.AllOf, js.RefTo(withTailQuery(e.Ref, tail)))
			continue
		}
		run = append(run, e)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}

// searchSchema renders the x-search descriptor for an rpc affordance.
func searchSchema(r *RPC, cc convCtx) (*js.Search, error) {
	out := &js.Search{URL: withTailQuery(r.URL, cc.tail), Label: r.Label}
	switch p := r.Parameters.(type) {
	case nil:
	case string:
		out.InputSchema = &js.Schema{Ref: withTailQuery(p, cc.tail)}
	default:
		entries, err := AsFieldList(p)
		if err != nil {
			return nil, err
		}
		in := js.NewObject()
		if err := convertInto(in, entries, cc); err != nil {
			return nil, err
		}
		out.InputSchema = in
	}
	return out, nil
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }
