// Package dsl provides fluent builders for constructing Forman field lists
// in Go, as an alternative to writing raw Field structs or decoding
// manifests.
//
//	fields := dsl.List(
//		dsl.Text("host").Label("Host").Required(),
//		dsl.Port("port").Default(443),
//		dsl.Select("env").Enum("dev", "prod"),
//	)
package dsl

import (
	forman "github.com/formanlab/forman"
)

// B accumulates one field. All modifiers return the builder so calls
// chain; Field() yields the finished value.
type B struct {
	f forman.Field
}

// New starts a builder for an arbitrary type token, prefixed forms
// included ("account:google").
func New(name, typ string) *B {
	return &B{f: forman.Field{Name: name, Type: typ}}
}

func Text(name string) *B      { return New(name, "text") }
func Password(name string) *B  { return New(name, "password") }
func Email(name string) *B     { return New(name, "email") }
func URL(name string) *B       { return New(name, "url") }
func Date(name string) *B      { return New(name, "date") }
func Timestamp(name string) *B { return New(name, "timestamp") }
func Hidden(name string) *B    { return New(name, "hidden") }
func Number(name string) *B    { return New(name, "number") }
func Integer(name string) *B   { return New(name, "integer") }
func UInteger(name string) *B  { return New(name, "uinteger") }
func Port(name string) *B      { return New(name, "port") }
func Boolean(name string) *B   { return New(name, "boolean") }
func Select(name string) *B    { return New(name, "select") }
func File(name string) *B      { return New(name, "file") }
func Folder(name string) *B    { return New(name, "folder") }
func Filter(name string) *B    { return New(name, "filter") }
func Any(name string) *B       { return New(name, "any") }
func Array(name string) *B     { return New(name, "array") }

// Account builds a service selector; kind "" means any connection.
func Account(name, kind string) *B {
	if kind == "" {
		return New(name, "account")
	}
	return New(name, "account:"+kind)
}

// Collection builds an object field over child fields.
func Collection(name string, children ...*B) *B {
	b := New(name, "collection")
	return b.Spec(children...)
}

// DynamicCollection builds an open object field.
func DynamicCollection(name string) *B { return New(name, "dynamicCollection") }

// Separator and Banner build visual entries; they never validate or
// convert into properties.
func Separator() *B { return &B{f: forman.Field{Type: "separator"}} }

func Banner(label string) *B {
	return &B{f: forman.Field{Type: "banner", Label: label}}
}

func (b *B) Label(s string) *B { b.f.Label = s; return b }

func (b *B) Help(s string) *B { b.f.Help = s; return b }

func (b *B) Required() *B { b.f.Required = true; return b }

func (b *B) Advanced() *B { b.f.Advanced = true; return b }

func (b *B) Default(v any) *B { b.f.Default = v; return b }

func (b *B) Multiple() *B { b.f.Multiple = true; return b }

func (b *B) Grouped() *B { b.f.Grouped = true; return b }

// Mappable pins the tri-state mappable flag. Unset means allowed.
func (b *B) Mappable(ok bool) *B { b.f.Mappable = &ok; return b }

// Options sets the raw option source: a literal list, a remote reference,
// or an extended wrapper map. It replaces anything Option accumulated.
func (b *B) Options(v any) *B { b.f.Options = v; return b }

// Store sets a remote option source.
func (b *B) Store(url string) *B { b.f.Options = url; return b }

// Enum appends plain literal options.
func (b *B) Enum(values ...any) *B {
	for _, v := range values {
		b.appendOption(v)
	}
	return b
}

// Option appends one labeled literal option.
func (b *B) Option(value any, label string) *B {
	b.appendOption(map[string]any{"value": value, "label": label})
	return b
}

// OptionNested appends a labeled option whose choice reveals further
// fields next to the selecting one.
func (b *B) OptionNested(value any, label string, children ...*B) *B {
	b.appendOption(map[string]any{
		"value": value, "label": label, "nested": specList(children),
	})
	return b
}

// OptionRouted appends a labeled option whose nested fields belong to
// another domain's root collection.
func (b *B) OptionRouted(value any, label, domain string, children ...*B) *B {
	b.appendOption(map[string]any{
		"value": value, "label": label, "domain": domain, "nested": specList(children),
	})
	return b
}

func (b *B) appendOption(v any) {
	list, _ := b.f.Options.([]any)
	b.f.Options = append(list, v)
}

// Spec sets literal child fields (collections, arrays).
func (b *B) Spec(children ...*B) *B {
	b.f.Spec = Fields(children...)
	return b
}

// SpecRef points the child spec at a remote field batch.
func (b *B) SpecRef(url string) *B { b.f.Spec = url; return b }

// Item sets a single-field array template.
func (b *B) Item(child *B) *B { b.f.Spec = child.Field(); return b }

// Nested sets field-level adjacent content revealed by any choice.
func (b *B) Nested(children ...*B) *B {
	b.f.Nested = specList(children)
	return b
}

// NestedRef points field-level nested content at a remote field batch.
func (b *B) NestedRef(url string) *B { b.f.Nested = url; return b }

// Domain targets nested content at another domain's root.
func (b *B) Domain(d string) *B { b.f.Domain = d; return b }

// DomainRoot marks this collection as the named domain's root.
func (b *B) DomainRoot(d string) *B { b.f.DomainRoot = d; return b }

func (b *B) ShowRoot() *B { b.f.ShowRoot = true; return b }

func (b *B) SingleLevel() *B { b.f.SingleLevel = true; return b }

// Search attaches a remote search affordance.
func (b *B) Search(url, label string, params ...*B) *B {
	rpc := &forman.RPC{URL: url, Label: label}
	if len(params) > 0 {
		rpc.Parameters = specList(params)
	}
	b.f.RPC = rpc
	return b
}

func (b *B) Pattern(p string) *B { b.constraints().Pattern = p; return b }

func (b *B) Min(v float64) *B { b.constraints().Min = &v; return b }

func (b *B) Max(v float64) *B { b.constraints().Max = &v; return b }

func (b *B) EnumConstraint(values ...any) *B {
	b.constraints().Enum = append(b.constraints().Enum, values...)
	return b
}

func (b *B) MinItems(n int) *B { b.constraints().MinItems = &n; return b }

func (b *B) MaxItems(n int) *B { b.constraints().MaxItems = &n; return b }

func (b *B) constraints() *forman.Constraints {
	if b.f.Validate == nil {
		b.f.Validate = &forman.Constraints{}
	}
	return b.f.Validate
}

// Field returns the built value.
func (b *B) Field() forman.Field { return b.f }

// Fields collects builders into a field list.
func Fields(bs ...*B) []forman.Field {
	out := make([]forman.Field, len(bs))
	for i, b := range bs {
		out[i] = b.Field()
	}
	return out
}

// List is Fields under the name call sites read best at the top level.
func List(bs ...*B) []forman.Field { return Fields(bs...) }

// specList renders children as the []any shape the duck-typed members
// carry after manifest decoding, so built fields and decoded fields look
// alike to the normalizer.
func specList(bs []*B) []any {
	out := make([]any, len(bs))
	for i, b := range bs {
		f := b.Field()
		out[i] = f
	}
	return out
}
