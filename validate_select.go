package forman

import (
	"context"
	"strconv"

	"github.com/formanlab/forman/internal/iml"
)

// checkSelect validates a select-family value: membership against the
// option source, multiplicity, and the routing of applicable nested
// content into the owning frame or another domain's root.
func (v *validator) checkSelect(ctx context.Context, vc valCtx, fr *collFrame, nf *normalField, val any) {
	opts, ok := v.selectOptions(ctx, vc, nf)
	if !ok {
		return
	}
	if nf.Multiple {
		arr, isArr := val.([]any)
		if !isArr {
			v.report(vc, CodeInvalidType, map[string]string{"type": "array"})
			return
		}
		if c := nf.Validate; c != nil {
			if c.MinItems != nil && len(arr) < *c.MinItems {
				v.report(vc, CodeMinItems, map[string]string{"n": strconv.Itoa(*c.MinItems)})
			}
			if c.MaxItems != nil && len(arr) > *c.MaxItems {
				v.report(vc, CodeMaxItems, map[string]string{"n": strconv.Itoa(*c.MaxItems)})
			}
		}
		for i, item := range arr {
			v.checkSelectValue(ctx, vc.at(strconv.Itoa(i)), fr, nf, opts, item, false)
		}
		return
	}
	v.checkSelectValue(ctx, vc, fr, nf, opts, val, true)
}

// selectOptions resolves the field's option source into a flat list. The
// second return is false when resolution failed and was already reported.
// A nil list with ok=true means no source exists and membership is not
// checked (select fields without options accept any value).
func (v *validator) selectOptions(ctx context.Context, vc valCtx, nf *normalField) ([]optionItem, bool) {
	if nf.Store != "" {
		res := v.resolve(ctx, vc, nf.Store, nil)
		if res == nil {
			return nil, false
		}
		list, ok := res.([]any)
		if !ok {
			v.report(vc, CodeInvalidSpec, map[string]string{"error": "remote options are not a list"})
			return nil, false
		}
		groups, err := parseOptionItems(list)
		if err != nil {
			v.reportSpec(vc, err)
			return nil, false
		}
		tmp := normalField{Groups: groups}
		return tmp.flatOptions(), true
	}
	if nf.Groups != nil {
		return nf.flatOptions(), true
	}
	return nil, true
}

// checkSelectValue checks one selected value. single marks the sole value
// of a non-multiple field; only those record choose-states.
func (v *validator) checkSelectValue(ctx context.Context, vc valCtx, fr *collFrame, nf *normalField, opts []optionItem, val any, single bool) {
	if s, ok := val.(string); ok && iml.Contains(s) {
		if nf.Mappable != nil && !*nf.Mappable {
			v.report(vc, CodeProhibitedIML, nil)
		}
		return
	}
	var matched *optionItem
	if opts != nil {
		for i := range opts {
			if valueEqual(opts[i].Value, val) {
				matched = &opts[i]
				break
			}
		}
		if matched == nil {
			v.report(vc, CodeInvalidOption, map[string]string{"value": valueString(val)})
			return
		}
	}
	if single && matched != nil && matched.HasLabel {
		fs := &FieldState{Mode: "chose", Label: matched.Label}
		if matched.Raw != nil {
			fs.Data = matched.Raw
		}
		v.setState(fr, nf.Name, fs)
	}

	// option-level nested wins over field-level nested
	src := nf.NestedSrc
	srcDomain := ""
	if matched != nil && matched.Nested != nil {
		src = matched.Nested
		srcDomain = matched.Domain
	}
	if src == nil {
		return
	}
	target := firstNonEmpty(srcDomain, nf.NestedDomain, vc.domain)
	childTail := appendTail(vc.tail, TailEntry{Name: nf.Name, Value: val})
	if target != vc.domain {
		v.routeNestedValidation(vc, src, target, childTail)
		return
	}
	v.spliceNested(ctx, vc, fr, src, childTail)
}

// routeNestedValidation hands nested content to another domain's root
// collection through the registry.
func (v *validator) routeNestedValidation(vc valCtx, src *nestedSource, target string, childTail []TailEntry) {
	origin := vc.pathString()
	items := []domainItem{}
	if src.remote() {
		items = append(items, domainItem{Entry: FieldOrRef{Ref: src.Store}})
	} else {
		for _, e := range src.Fields {
			items = append(items, domainItem{Entry: e})
		}
	}
	for _, it := range items {
		it.Tail = childTail
		it.RefDomain = vc.domain
		it.RefPath = origin
		if err := v.reg.route(target, it); err != nil {
			v.reportSpec(vc, err)
			return
		}
	}
}

// spliceNested queues same-domain nested content on the owning frame so it
// validates against sibling values.
func (v *validator) spliceNested(ctx context.Context, vc valCtx, fr *collFrame, src *nestedSource, childTail []TailEntry) {
	if src.remote() {
		fr.queue = append(fr.queue, queuedEntry{entry: FieldOrRef{Ref: src.Store}, tail: childTail})
	} else {
		for _, e := range src.Fields {
			fr.queue = append(fr.queue, queuedEntry{entry: e, tail: childTail})
		}
	}
	if !fr.draining {
		v.pump(ctx, fr)
	}
}
