package forman

import (
	js "github.com/formanlab/forman/jsonschema"
)

// convertSelect renders the select family. Literal options become a value
// schema (oneOf or enum); remote stores become x-fetch; per-option nested
// content conditions the parent collection; field-level nested, path
// markers and rpc attach to the select itself.
func convertSelect(nf *normalField, cc convCtx, cond condAdder) (*js.Schema, error) {
	opts := nf.flatOptions()
	var value *js.Schema
	if nf.Groups != nil {
		value = optionValueSchema(opts)
	}

	var s *js.Schema
	switch {
	case nf.Multiple:
		s = &js.Schema{Type: "array"}
		if value != nil {
			s.Items = value
		}
		if c := nf.Validate; c != nil {
			s.MinItems = c.MinItems
			s.MaxItems = c.MaxItems
		}
	case value != nil:
		s = value
	default:
		s = &js.Schema{}
	}
	if nf.Store != "" {
		s.XFetch = withTailQuery(nf.Store, cc.tail)
	}
	applyMeta(s, nf)

	// Per-option nested content. The chosen value parameterizes whatever
	// hangs below, so the child tail includes this field's own name.
	childTail := appendTail(cc.tail, TailEntry{Name: nf.Name})
	for _, o := range opts {
		if o.Nested == nil {
			continue
		}
		target := firstNonEmpty(o.Domain, nf.NestedDomain, cc.domain)
		if target != cc.domain {
			if err := routeNested(cc, target, nf.Name, o.Nested, childTail); err != nil {
				return nil, err
			}
			continue
		}
		if cond == nil {
			continue
		}
		branch, err := nestedSchema(o.Nested, cc, childTail)
		if err != nil {
			return nil, err
		}
		cond(nf.Name, o.Value, branch)
	}

	if err := applyFieldExtras(s, nf, cc); err != nil {
		return nil, err
	}
	return s, nil
}

// optionValueSchema renders flattened literal options: oneOf of
// {title, const} entries when any option is labeled or carries nesting,
// a plain enum of values otherwise.
func optionValueSchema(opts []optionItem) *js.Schema {
	rich := false
	for _, o := range opts {
		if o.HasLabel || o.Nested != nil {
			rich = true
			break
		}
	}
	if !rich {
		enum := make([]any, len(opts))
		for i, o := range opts {
			enum[i] = o.Value
		}
		return &js.Schema{Enum: enum}
	}
	oneOf := make([]*js.Schema, 0, len(opts))
	for _, o := range opts {
		e := &js.Schema{Const: o.Value}
		if o.HasLabel {
			e.Title = o.Label
		}
		oneOf = append(oneOf, e)
	}
	return &js.Schema{OneOf: oneOf}
}
