package forman_test

import (
	"context"
	"reflect"
	"testing"

	forman "github.com/formanlab/forman"
)

func routedOption(value, domain string, nested ...map[string]any) map[string]any {
	list := make([]any, len(nested))
	for i, n := range nested {
		list[i] = n
	}
	return map[string]any{"value": value, "domain": domain, "nested": list}
}

func TestValidateDomains_RouteIntoLaterRegisteredRoot(t *testing.T) {
	domains := map[string]forman.Domain{
		"consumer": {
			Fields: nil,
			Value:  map[string]any{"secret": "s3"},
		},
		"producer": {
			Fields: []forman.Field{{
				Name: "mode", Type: "select",
				Options: []any{routedOption("x", "consumer",
					map[string]any{"name": "secret", "type": "text", "required": true},
				)},
			}},
			Value: map[string]any{"mode": "x"},
		},
	}
	res, err := forman.ValidateDomains(context.Background(), domains, forman.ValidateOpt{Strict: true})
	if err != nil {
		t.Fatalf("ValidateDomains returned error: %v", err)
	}
	// the routed field consumed consumer's key, so strict stays quiet
	if !res.Valid {
		t.Fatalf("expected valid, got: %v", res.Errors)
	}
}

func TestValidateDomains_RoutedOrderPreserved(t *testing.T) {
	domains := map[string]forman.Domain{
		"consumer": {Value: map[string]any{}},
		"producer": {
			Fields: []forman.Field{
				{Name: "m1", Type: "select", Options: []any{
					routedOption("x", "consumer", map[string]any{"name": "first", "type": "text", "required": true}),
				}},
				{Name: "m2", Type: "select", Options: []any{
					routedOption("x", "consumer", map[string]any{"name": "second", "type": "text", "required": true}),
				}},
			},
			Value: map[string]any{"m1": "x", "m2": "x"},
		},
	}
	res, err := forman.ValidateDomains(context.Background(), domains)
	if err != nil {
		t.Fatalf("ValidateDomains returned error: %v", err)
	}
	var order []string
	for _, it := range res.Errors {
		if it.Code == forman.CodeRequired && it.Domain == "consumer" {
			order = append(order, it.Path)
		}
	}
	if !reflect.DeepEqual(order, []string{"first", "second"}) {
		t.Fatalf("expected routed fields in arrival order, got: %v (all: %v)", order, res.Errors)
	}
}

func TestValidateDomains_Deterministic(t *testing.T) {
	domains := map[string]forman.Domain{
		"a": {Fields: []forman.Field{{Name: "x", Type: "text", Required: true}}, Value: map[string]any{}},
		"b": {Fields: []forman.Field{{Name: "y", Type: "text", Required: true}}, Value: map[string]any{}},
		"c": {Fields: []forman.Field{{Name: "z", Type: "text", Required: true}}, Value: map[string]any{}},
	}
	first, err := forman.ValidateDomains(context.Background(), domains)
	if err != nil {
		t.Fatalf("ValidateDomains returned error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := forman.ValidateDomains(context.Background(), domains)
		if err != nil {
			t.Fatalf("ValidateDomains returned error: %v", err)
		}
		if !reflect.DeepEqual(first.Errors, again.Errors) {
			t.Fatalf("expected identical results, got %v then %v", first.Errors, again.Errors)
		}
	}
	if len(first.Errors) != 3 || first.Errors[0].Domain != "a" || first.Errors[2].Domain != "c" {
		t.Fatalf("expected sorted domain processing, got: %v", first.Errors)
	}
}

func TestValidateDomains_UnknownDomainReported(t *testing.T) {
	domains := map[string]forman.Domain{
		"producer": {
			Fields: []forman.Field{{
				Name: "mode", Type: "select",
				Options: []any{routedOption("x", "missing",
					map[string]any{"name": "ghost", "type": "text"},
				)},
			}},
			Value: map[string]any{"mode": "x"},
		},
	}
	res, err := forman.ValidateDomains(context.Background(), domains)
	if err != nil {
		t.Fatalf("ValidateDomains returned error: %v", err)
	}
	if len(res.Errors) != 1 {
		t.Fatalf("expected one error, got: %v", res.Errors)
	}
	it := res.Errors[0]
	if it.Code != forman.CodeUnknownDomain || it.Domain != "producer" || it.Path != "mode" {
		t.Fatalf("expected unknown_domain attributed to the origin field, got: %+v", it)
	}
	if it.Message != "Unknown domain 'missing'." {
		t.Fatalf("unexpected message: %q", it.Message)
	}
}

func TestValidate_DomainRootCollectionReceivesRoutes(t *testing.T) {
	fields := []forman.Field{
		{Name: "mode", Type: "select", Options: []any{
			routedOption("x", "addons", map[string]any{"name": "flag", "type": "boolean", "required": true}),
		}},
		{Name: "extras", Type: "collection", Spec: []forman.Field{}, DomainRoot: "addons"},
	}
	res := mustValidate(t, map[string]any{
		"mode": "x", "extras": map[string]any{"flag": true},
	}, fields, forman.ValidateOpt{Strict: true})
	if !res.Valid {
		t.Fatalf("expected routed field to land in the root collection, got: %v", res.Errors)
	}

	res = mustValidate(t, map[string]any{
		"mode": "x", "extras": map[string]any{},
	}, fields)
	if !hasIssue(res, forman.CodeRequired, "extras.flag") {
		t.Fatalf("expected required at extras.flag, got: %v", res.Errors)
	}
	if res.Errors[0].Domain != "addons" {
		t.Fatalf("expected routed error attributed to addons, got: %+v", res.Errors[0])
	}
}

func TestValidate_DuplicateDomainRootIsSpecError(t *testing.T) {
	fields := []forman.Field{
		{Name: "a", Type: "collection", Spec: []forman.Field{}, DomainRoot: "dup"},
		{Name: "b", Type: "collection", Spec: []forman.Field{}, DomainRoot: "dup"},
	}
	res := mustValidate(t, map[string]any{
		"a": map[string]any{}, "b": map[string]any{},
	}, fields)
	if !hasIssue(res, forman.CodeInvalidSpec, "b") {
		t.Fatalf("expected invalid_spec at the second registration, got: %v", res.Errors)
	}
}

func TestValidateDomains_StatesPerDomain(t *testing.T) {
	domains := map[string]forman.Domain{
		"one": {
			Fields: []forman.Field{{Name: "env", Type: "select", Options: []any{
				map[string]any{"value": "p", "label": "Prod"},
			}}},
			Value: map[string]any{"env": "p"},
		},
		"two": {
			Fields: []forman.Field{{Name: "env", Type: "select", Options: []any{
				map[string]any{"value": "d", "label": "Dev"},
			}}},
			Value: map[string]any{"env": "d"},
		},
	}
	res, err := forman.ValidateDomains(context.Background(), domains, forman.ValidateOpt{States: true})
	if err != nil {
		t.Fatalf("ValidateDomains returned error: %v", err)
	}
	if res.States["one"]["env"].Label != "Prod" || res.States["two"]["env"].Label != "Dev" {
		t.Fatalf("expected per-domain states, got: %+v", res.States)
	}
}
