package forman

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/formanlab/forman/internal/iml"
)

// RemoteResolver supplies option lists and field batches for remote string
// references. path arrives tail-qualified (name={{name}} pairs appended);
// data carries the resolved ancestor values the reference depends on, plus
// call-specific entries such as the walked path prefix for file pickers.
type RemoteResolver interface {
	ResolveRemote(ctx context.Context, path string, data map[string]any) (any, error)
}

// RemoteResolverFunc adapts a function to RemoteResolver.
type RemoteResolverFunc func(ctx context.Context, path string, data map[string]any) (any, error)

// ResolveRemote implements RemoteResolver.
func (f RemoteResolverFunc) ResolveRemote(ctx context.Context, path string, data map[string]any) (any, error) {
	return f(ctx, path, data)
}

// ValidateOpt configures validation.
type ValidateOpt struct {
	// Strict reports value keys no field consumed.
	Strict bool
	// States captures UI-restore state trees.
	States bool
	// Resolver resolves remote option and field references. Leaving it nil
	// turns any needed resolution into a data error.
	Resolver RemoteResolver
	// Composites expands macro field types before validation.
	Composites *CompositeSet
	// Domain names the document in single-document Validate calls.
	Domain string
}

// Domain pairs a document's field list with the value under validation.
type Domain struct {
	Fields []Field
	Value  any
}

// valCtx is the per-branch validation context.
type valCtx struct {
	domain string
	path   []string
	tail   []TailEntry
}

func (vc valCtx) at(seg string) valCtx {
	p := make([]string, len(vc.path), len(vc.path)+1)
	copy(p, vc.path)
	vc.path = append(p, seg)
	return vc
}

func (vc valCtx) pathString() string { return strings.Join(vc.path, ".") }

// collFrame is the mutable walking state of one collection: the value
// object, the keys consumed so far, and the entry queue routed batches and
// same-domain nested content splice into.
type collFrame struct {
	vc       valCtx
	value    map[string]any
	seen     map[string]bool
	queue    []queuedEntry
	states   StateTree
	draining bool
}

type queuedEntry struct {
	entry FieldOrRef
	tail  []TailEntry
}

type validator struct {
	reg      *domainRegistry
	opt      ValidateOpt
	issues   Issues
	states   map[string]StateTree
	deferred []func()
}

// Validate checks value against fields, treated as an implicit root
// collection. Data problems accumulate in the result; the error return
// covers context cancellation only.
func Validate(ctx context.Context, value any, fields []Field, opts ...ValidateOpt) (*Result, error) {
	var opt ValidateOpt
	if len(opts) > 0 {
		opt = opts[0]
	}
	return validateAll(ctx, map[string]Domain{opt.Domain: {Fields: fields, Value: value}}, opt)
}

// ValidateDomains checks several named documents against one shared
// registry so cross-domain routes compose. Domains are processed in sorted
// name order, which keeps results independent of map iteration order.
func ValidateDomains(ctx context.Context, domains map[string]Domain, opts ...ValidateOpt) (*Result, error) {
	var opt ValidateOpt
	if len(opts) > 0 {
		opt = opts[0]
	}
	return validateAll(ctx, domains, opt)
}

func validateAll(ctx context.Context, domains map[string]Domain, opt ValidateOpt) (*Result, error) {
	v := &validator{reg: newDomainRegistry(), opt: opt}
	if opt.States {
		v.states = map[string]StateTree{}
	}
	names := make([]string, 0, len(domains))
	for name := range domains {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v.validateDomainRoot(ctx, name, domains[name])
	}
	// batches routed to domains nobody registered
	for _, p := range v.reg.pending() {
		for _, it := range p.Items {
			v.issues = AppendIssues(v.issues, newIssue(it.RefDomain, it.RefPath, CodeUnknownDomain, map[string]string{"name": p.Domain}))
		}
	}
	// strict checks deferred until every routed batch has settled
	for _, fn := range v.deferred {
		fn()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Result{Valid: len(v.issues) == 0, Errors: v.issues, States: v.states}, nil
}

func (v *validator) validateDomainRoot(ctx context.Context, name string, d Domain) {
	vc := valCtx{domain: name}
	entries, err := AsFieldList(d.Fields)
	if err != nil {
		v.reportSpec(vc, err)
		return
	}
	value, ok := d.Value.(map[string]any)
	if !ok {
		if d.Value != nil {
			v.report(vc, CodeInvalidType, map[string]string{"type": "object"})
			return
		}
		value = map[string]any{}
	}
	var st StateTree
	if v.opt.States {
		st = StateTree{}
	}
	v.runCollection(ctx, vc, value, entries, name, st)
	if len(st) > 0 {
		v.states[name] = st
	}
}

func (v *validator) report(vc valCtx, code string, data map[string]string) {
	v.issues = AppendIssues(v.issues, newIssue(vc.domain, vc.pathString(), code, data))
}

// reportSpec surfaces a structural problem as a data entry. The validator
// never returns Go errors for anything found in field definitions.
func (v *validator) reportSpec(vc valCtx, err error) {
	if ce, ok := err.(*ConversionError); ok {
		v.issues = AppendIssues(v.issues, Issue{
			Domain: vc.domain, Path: vc.pathString(),
			Code: CodeInvalidSpec, Message: ce.Error(),
		})
		return
	}
	v.report(vc, CodeInvalidSpec, map[string]string{"error": err.Error()})
}

func (v *validator) setState(fr *collFrame, name string, fs *FieldState) {
	if fr == nil || fr.states == nil {
		return
	}
	fr.states[name] = fs
}

// runCollection walks one collection level. domainRoot is non-empty for
// the top-level collection of a document and for x-domain-root
// collections; those register with the registry and defer their strict
// unknown-key check until all routing has settled.
func (v *validator) runCollection(ctx context.Context, vc valCtx, value map[string]any, entries []FieldOrRef, domainRoot string, st StateTree) {
	fr := &collFrame{vc: vc, value: value, seen: map[string]bool{}, states: st}
	if domainRoot != "" {
		fr.vc.domain = domainRoot
	}
	for _, e := range entries {
		fr.queue = append(fr.queue, queuedEntry{entry: e, tail: fr.vc.tail})
	}
	if domainRoot != "" {
		if err := v.reg.register(domainRoot, v.frameAdder(ctx, fr)); err != nil {
			v.reportSpec(fr.vc, err)
		}
	}
	v.pump(ctx, fr)

	if v.opt.Strict {
		check := func() {
			extra := make([]string, 0)
			for k := range fr.value {
				if !fr.seen[k] {
					extra = append(extra, k)
				}
			}
			sort.Strings(extra)
			for _, k := range extra {
				v.report(fr.vc.at(k), CodeUnknownField, map[string]string{"name": k})
			}
		}
		if domainRoot != "" {
			v.deferred = append(v.deferred, check)
		} else {
			check()
		}
	}
}

// frameAdder accepts routed items for a registered collection. Items
// arriving while the frame is draining join the queue; later arrivals
// (routes from documents validated afterwards) restart the pump.
func (v *validator) frameAdder(ctx context.Context, fr *collFrame) domainAdder {
	return func(it domainItem) error {
		fr.queue = append(fr.queue, queuedEntry{entry: it.Entry, tail: it.Tail})
		if !fr.draining {
			v.pump(ctx, fr)
		}
		return nil
	}
}

func (v *validator) pump(ctx context.Context, fr *collFrame) {
	fr.draining = true
	for len(fr.queue) > 0 {
		if ctx.Err() != nil {
			break
		}
		q := fr.queue[0]
		fr.queue = fr.queue[1:]
		vc := fr.vc
		vc.tail = q.tail
		v.walkEntry(ctx, vc, fr, q.entry)
	}
	fr.draining = false
}

// walkEntry validates one spec entry against the frame's value. Remote
// references resolve into field batches that join the queue.
func (v *validator) walkEntry(ctx context.Context, vc valCtx, fr *collFrame, e FieldOrRef) {
	if e.Ref != "" {
		res := v.resolve(ctx, vc, e.Ref, nil)
		if res == nil {
			return
		}
		entries, err := AsFieldList(res)
		if err != nil {
			v.reportSpec(vc, err)
			return
		}
		for _, fe := range entries {
			fr.queue = append(fr.queue, queuedEntry{entry: fe, tail: vc.tail})
		}
		return
	}
	v.walkField(ctx, vc, fr, *e.Field)
}

func (v *validator) walkField(ctx context.Context, vc valCtx, fr *collFrame, f Field) {
	f, _, err := v.opt.Composites.expand(f)
	if err != nil {
		v.reportSpec(vc, err)
		return
	}
	nf, err := normalizeField(f)
	if err != nil {
		v.report(vc.at(f.Name), CodeUnknownType, map[string]string{"type": f.Type})
		return
	}
	if nf.K == KindVisual {
		return
	}
	if nf.Name == "" {
		v.report(vc, CodeUnnamedField, nil)
		return
	}
	fr.seen[nf.Name] = true
	var val any
	present := false
	if fr.value != nil {
		val, present = fr.value[nf.Name]
	}
	fvc := vc.at(nf.Name)
	if !present || isEmptyValue(val) {
		if nf.Required {
			v.report(fvc, CodeRequired, map[string]string{"name": nf.Name})
		}
		return
	}
	v.checkValue(ctx, fvc, fr, nf, val)
}

// checkValue dispatches a non-empty value to its kind's checks. A template
// expression anywhere in a string value suspends every check except the
// mappable gate.
func (v *validator) checkValue(ctx context.Context, vc valCtx, fr *collFrame, nf *normalField, val any) {
	if s, ok := val.(string); ok && iml.Contains(s) {
		if nf.Mappable != nil && !*nf.Mappable {
			v.report(vc, CodeProhibitedIML, nil)
		}
		return
	}
	switch nf.K {
	case KindAny:
		return
	case KindCollection:
		v.checkCollection(ctx, vc, fr, nf, val)
	case KindArray:
		v.checkArray(ctx, vc, fr, nf, val)
	case KindFilter:
		v.checkFilter(ctx, vc, nf, val)
	case KindSelect:
		if isPathType(nf.Base) {
			v.checkPath(ctx, vc, fr, nf, val)
			return
		}
		v.checkSelect(ctx, vc, fr, nf, val)
	default:
		v.checkScalar(vc, nf, val)
	}
}

func (v *validator) checkCollection(ctx context.Context, vc valCtx, fr *collFrame, nf *normalField, val any) {
	m, ok := val.(map[string]any)
	if !ok {
		v.report(vc, CodeInvalidType, map[string]string{"type": "object"})
		return
	}
	var entries []FieldOrRef
	if ref, ok := nf.Spec.(string); ok {
		res := v.resolve(ctx, vc, ref, nil)
		if res == nil {
			return
		}
		var err error
		entries, err = AsFieldList(res)
		if err != nil {
			v.reportSpec(vc, err)
			return
		}
	} else {
		var err error
		entries, err = AsFieldList(nf.Spec)
		if err != nil {
			v.reportSpec(vc, err)
			return
		}
	}
	var st StateTree
	if v.opt.States {
		st = StateTree{}
	}
	v.runCollection(ctx, vc, m, entries, nf.DomainRoot, st)
	if len(st) > 0 {
		v.setState(fr, nf.Name, &FieldState{Nested: st})
	}
}

func (v *validator) checkArray(ctx context.Context, vc valCtx, fr *collFrame, nf *normalField, val any) {
	arr, ok := val.([]any)
	if !ok {
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

	spec := nf.Spec
	if ref, ok := spec.(string); ok {
		res := v.resolve(ctx, vc, ref, nil)
		if res == nil {
			return
		}
		spec = res
	}
	switch sp := spec.(type) {
	case nil:
		return
	case map[string]any, Field, *Field:
		tmpl, err := AsField(sp)
		if err != nil {
			v.reportSpec(vc, err)
			return
		}
		for i, item := range arr {
			v.checkItem(ctx, vc.at(strconv.Itoa(i)), *tmpl, item)
		}
	default:
		entries, err := AsFieldList(spec)
		if err != nil {
			v.reportSpec(vc, err)
			return
		}
		var items []StateTree
		for i, item := range arr {
			ivc := vc.at(strconv.Itoa(i))
			m, ok := item.(map[string]any)
			if !ok {
				v.report(ivc, CodeInvalidType, map[string]string{"type": "object"})
				if v.opt.States {
					items = append(items, StateTree{})
				}
				continue
			}
			var st StateTree
			if v.opt.States {
				st = StateTree{}
			}
			v.runCollection(ctx, ivc, m, entries, "", st)
			if v.opt.States {
				items = append(items, st)
			}
		}
		if v.opt.States {
			nonEmpty := false
			for _, st := range items {
				if len(st) > 0 {
					nonEmpty = true
					break
				}
			}
			if nonEmpty {
				v.setState(fr, nf.Name, &FieldState{Items: items})
			}
		}
	}
}

// checkItem validates one array element against a single-field template.
// The template has no surrounding object, so nested splicing targets an
// ephemeral frame.
func (v *validator) checkItem(ctx context.Context, vc valCtx, tmpl Field, item any) {
	nf, err := normalizeField(tmpl)
	if err != nil {
		v.report(vc, CodeUnknownType, map[string]string{"type": tmpl.Type})
		return
	}
	if nf.K == KindVisual {
		return
	}
	if isEmptyValue(item) {
		if nf.Required {
			v.report(vc, CodeRequired, map[string]string{"name": nf.Name})
		}
		return
	}
	fr := &collFrame{vc: vc, seen: map[string]bool{}}
	v.checkValue(ctx, vc, fr, nf, item)
}

// resolve calls the injected resolver for a remote reference. Absence of a
// resolver and resolution failures both surface as data errors; callers
// receive nil when no data came back.
func (v *validator) resolve(ctx context.Context, vc valCtx, ref string, overrides map[string]any) any {
	if v.opt.Resolver == nil {
		v.report(vc, CodeNoResolver, nil)
		return nil
	}
	data := make(map[string]any, len(vc.tail)+len(overrides))
	for _, te := range vc.tail {
		data[te.Name] = te.Value
	}
	for k, val := range overrides {
		data[k] = val
	}
	res, err := v.opt.Resolver.ResolveRemote(ctx, withTailQuery(ref, vc.tail), data)
	if err != nil {
		v.report(vc, CodeRemoteFailed, map[string]string{"error": err.Error()})
		return nil
	}
	return res
}

func (v *validator) checkFilter(ctx context.Context, vc valCtx, nf *normalField, val any) {
	cfg, err := filterConfigOf(nf.Field)
	if err != nil {
		v.reportSpec(vc, err)
		return
	}
	arr, ok := val.([]any)
	if !ok {
		v.report(vc, CodeInvalidType, map[string]string{"type": "array"})
		return
	}
	if cfg.Logic == "and" {
		v.checkFilterRows(ctx, vc, cfg, arr)
		return
	}
	for gi, g := range arr {
		gvc := vc.at(strconv.Itoa(gi))
		garr, ok := g.([]any)
		if !ok {
			v.report(gvc, CodeInvalidType, map[string]string{"type": "array"})
			continue
		}
		v.checkFilterRows(ctx, gvc, cfg, garr)
	}
}

func (v *validator) checkFilterRows(ctx context.Context, vc valCtx, cfg filterConfig, rows []any) {
	entries, err := AsFieldList(cfg.rowFields())
	if err != nil {
		v.reportSpec(vc, err)
		return
	}
	for ri, row := range rows {
		rvc := vc.at(strconv.Itoa(ri))
		m, ok := row.(map[string]any)
		if !ok {
			v.report(rvc, CodeInvalidType, map[string]string{"type": "object"})
			continue
		}
		v.runCollection(ctx, rvc, m, entries, "", nil)
		// binary operators compare against a value; unary ones stand alone
		if cfg.usesBuiltinOperators() {
			if op, ok := m["o"]; ok && isBuiltinOperator(op) && !isUnaryOperator(op) && isEmptyValue(m["b"]) {
				v.report(rvc.at("b"), CodeRequired, map[string]string{"name": "b"})
			}
		}
	}
}
