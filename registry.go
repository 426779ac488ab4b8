package forman

import "sort"

// TailEntry is one ancestor on the way to a routed or remote-referenced
// field. The converter only needs the name; the validator also carries the
// chosen value so resolvers receive the parameters a reference depends on.
type TailEntry struct {
	Name  string
	Value any
}

func tailNames(tail []TailEntry) []string {
	out := make([]string, len(tail))
	for i, t := range tail {
		out[i] = t.Name
	}
	return out
}

// appendTail returns a new tail; the input is never aliased so sibling
// branches cannot see each other's ancestors.
func appendTail(tail []TailEntry, e TailEntry) []TailEntry {
	out := make([]TailEntry, len(tail), len(tail)+1)
	copy(out, tail)
	return append(out, e)
}

// domainItem is one deferred entry routed toward a domain root: an inline
// field or a remote reference, the tail captured at the routing site, and
// origin metadata for error attribution.
type domainItem struct {
	Entry     FieldOrRef
	Tail      []TailEntry
	RefDomain string
	RefPath   string
}

type domainAdder func(it domainItem) error

type domainSink struct {
	add      domainAdder // nil while unresolved
	buffered []domainItem
}

// domainRegistry implements the deferred buffering/replay protocol for
// cross-domain fields. One instance serves one top-level conversion or
// validation call and is passed by reference through the recursion.
type domainRegistry struct {
	sinks map[string]*domainSink
}

func newDomainRegistry() *domainRegistry {
	return &domainRegistry{sinks: map[string]*domainSink{}}
}

func (r *domainRegistry) sink(domain string) *domainSink {
	s, ok := r.sinks[domain]
	if !ok {
		s = &domainSink{}
		r.sinks[domain] = s
	}
	return s
}

// route delivers it to the domain's adder when the domain is resolved and
// buffers it otherwise. Buffered items keep arrival order.
func (r *domainRegistry) route(domain string, it domainItem) error {
	s := r.sink(domain)
	if s.add != nil {
		return s.add(it)
	}
	s.buffered = append(s.buffered, it)
	return nil
}

// register transitions a domain from unresolved to resolved and replays its
// buffer in arrival order. Registering the same domain twice is a
// structural error.
func (r *domainRegistry) register(domain string, add domainAdder) error {
	s := r.sink(domain)
	if s.add != nil {
		return conversionErrf("", "domain root %q is already registered", domain)
	}
	s.add = add
	buf := s.buffered
	s.buffered = nil
	for _, it := range buf {
		if err := add(it); err != nil {
			return err
		}
	}
	return nil
}

// pendingDomain is a domain that was routed to but never registered.
type pendingDomain struct {
	Domain string
	Items  []domainItem
}

// pending returns never-registered domains with their buffered items in
// sorted domain order. Conversion discards them; validation reports each
// as a data error at the originating field.
func (r *domainRegistry) pending() []pendingDomain {
	var names []string
	for name, s := range r.sinks {
		if s.add == nil && len(s.buffered) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]pendingDomain, 0, len(names))
	for _, name := range names {
		out = append(out, pendingDomain{Domain: name, Items: r.sinks[name].buffered})
	}
	return out
}
