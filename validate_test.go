package forman_test

import (
	"context"
	"strings"
	"testing"

	forman "github.com/formanlab/forman"
)

func mustValidate(t *testing.T, value any, fields []forman.Field, opts ...forman.ValidateOpt) *forman.Result {
	t.Helper()
	res, err := forman.Validate(context.Background(), value, fields, opts...)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	return res
}

func issueCodes(res *forman.Result) []string {
	out := make([]string, len(res.Errors))
	for i, it := range res.Errors {
		out[i] = it.Code
	}
	return out
}

func hasIssue(res *forman.Result, code, path string) bool {
	for _, it := range res.Errors {
		if it.Code == code && it.Path == path {
			return true
		}
	}
	return false
}

func TestValidate_RequiredAndOptional(t *testing.T) {
	fields := []forman.Field{
		{Name: "host", Type: "text", Required: true},
		{Name: "note", Type: "text"},
	}
	res := mustValidate(t, map[string]any{"note": ""}, fields)
	if res.Valid {
		t.Fatalf("expected invalid result, got valid")
	}
	if len(res.Errors) != 1 || res.Errors[0].Code != forman.CodeRequired || res.Errors[0].Path != "host" {
		t.Fatalf("expected one required error at host, got: %v", res.Errors)
	}

	// optional empty values pass without further checks
	res = mustValidate(t, map[string]any{"host": "example.com"}, fields)
	if !res.Valid {
		t.Fatalf("expected valid result, got: %v", res.Errors)
	}
}

func TestValidate_StrictUnknownFieldMessage(t *testing.T) {
	res := mustValidate(t, map[string]any{"x": 1}, nil, forman.ValidateOpt{Strict: true})
	if res.Valid {
		t.Fatalf("expected invalid result")
	}
	if len(res.Errors) != 1 {
		t.Fatalf("expected exactly one error, got: %v", res.Errors)
	}
	it := res.Errors[0]
	if it.Code != forman.CodeUnknownField {
		t.Fatalf("expected unknown_field, got %q", it.Code)
	}
	if it.Message != "Unknown field 'x'." {
		t.Fatalf("unexpected message: %q", it.Message)
	}
}

func TestValidate_StrictOffIgnoresUnknownKeys(t *testing.T) {
	res := mustValidate(t, map[string]any{"x": 1}, nil)
	if !res.Valid {
		t.Fatalf("expected valid result without strict, got: %v", res.Errors)
	}
}

func TestValidate_TypeMismatches(t *testing.T) {
	cases := []struct {
		name  string
		field forman.Field
		value any
	}{
		{"string wants string", forman.Field{Name: "v", Type: "text"}, 12},
		{"number wants number", forman.Field{Name: "v", Type: "number"}, "12"},
		{"integer rejects fraction", forman.Field{Name: "v", Type: "integer"}, 1.5},
		{"boolean wants bool", forman.Field{Name: "v", Type: "boolean"}, "true"},
		{"collection wants object", forman.Field{Name: "v", Type: "collection", Spec: []forman.Field{}}, []any{}},
		{"array wants array", forman.Field{Name: "v", Type: "array"}, map[string]any{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := mustValidate(t, map[string]any{"v": tc.value}, []forman.Field{tc.field})
			if !hasIssue(res, forman.CodeInvalidType, "v") {
				t.Fatalf("expected invalid_type at v, got: %v", res.Errors)
			}
		})
	}
}

func TestValidate_AnyAcceptsEverything(t *testing.T) {
	fields := []forman.Field{{Name: "v", Type: "any"}}
	for _, val := range []any{12, "s", true, []any{1}, map[string]any{"k": 1}} {
		res := mustValidate(t, map[string]any{"v": val}, fields)
		if !res.Valid {
			t.Fatalf("any rejected %v: %v", val, res.Errors)
		}
	}
}

func TestValidate_StringConstraints(t *testing.T) {
	min, max := 3.0, 5.0
	fields := []forman.Field{{
		Name: "code", Type: "text",
		Validate: &forman.Constraints{Pattern: "^[a-z]+$", Min: &min, Max: &max},
	}}
	res := mustValidate(t, map[string]any{"code": "abcd"}, fields)
	if !res.Valid {
		t.Fatalf("expected valid, got: %v", res.Errors)
	}
	res = mustValidate(t, map[string]any{"code": "AB"}, fields)
	if !hasIssue(res, forman.CodePattern, "code") || !hasIssue(res, forman.CodeTooShort, "code") {
		t.Fatalf("expected pattern and too_short, got: %v", res.Errors)
	}
	res = mustValidate(t, map[string]any{"code": "abcdef"}, fields)
	if !hasIssue(res, forman.CodeTooLong, "code") {
		t.Fatalf("expected too_long, got: %v", res.Errors)
	}
}

func TestValidate_StringEnum(t *testing.T) {
	fields := []forman.Field{{
		Name: "env", Type: "text",
		Validate: &forman.Constraints{Enum: []any{"dev", "prod"}},
	}}
	res := mustValidate(t, map[string]any{"env": "prod"}, fields)
	if !res.Valid {
		t.Fatalf("expected valid, got: %v", res.Errors)
	}
	res = mustValidate(t, map[string]any{"env": "qa"}, fields)
	if !hasIssue(res, forman.CodeInvalidEnum, "env") {
		t.Fatalf("expected invalid_enum, got: %v", res.Errors)
	}
}

func TestValidate_NumberBounds(t *testing.T) {
	min, max := 1.0, 10.0
	fields := []forman.Field{{
		Name: "n", Type: "number",
		Validate: &forman.Constraints{Min: &min, Max: &max},
	}}
	res := mustValidate(t, map[string]any{"n": 0}, fields)
	if !hasIssue(res, forman.CodeTooSmall, "n") {
		t.Fatalf("expected too_small, got: %v", res.Errors)
	}
	res = mustValidate(t, map[string]any{"n": 11}, fields)
	if !hasIssue(res, forman.CodeTooBig, "n") {
		t.Fatalf("expected too_big, got: %v", res.Errors)
	}
	res = mustValidate(t, map[string]any{"n": 5.5}, fields)
	if !res.Valid {
		t.Fatalf("number should accept fractions: %v", res.Errors)
	}
}

func TestValidate_PortAndUinteger(t *testing.T) {
	fields := []forman.Field{
		{Name: "p", Type: "port"},
		{Name: "u", Type: "uinteger"},
	}
	res := mustValidate(t, map[string]any{"p": 8080, "u": 0}, fields)
	if !res.Valid {
		t.Fatalf("expected valid, got: %v", res.Errors)
	}
	res = mustValidate(t, map[string]any{"p": 70000, "u": -1}, fields)
	if !hasIssue(res, forman.CodeTooBig, "p") || !hasIssue(res, forman.CodeTooSmall, "u") {
		t.Fatalf("expected range errors, got: %v", res.Errors)
	}
	res = mustValidate(t, map[string]any{"p": 0}, []forman.Field{{Name: "p", Type: "port"}})
	if !hasIssue(res, forman.CodeTooSmall, "p") {
		t.Fatalf("expected too_small for port 0, got: %v", res.Errors)
	}
}

func TestValidate_IMLSuspendsChecks(t *testing.T) {
	no := false
	fields := []forman.Field{
		{Name: "n", Type: "number"},
		{Name: "env", Type: "text", Validate: &forman.Constraints{Enum: []any{"dev"}}},
		{Name: "fixed", Type: "text", Mappable: &no},
	}

	// a whole-value expression passes a typed field
	res := mustValidate(t, map[string]any{"n": "{{a.b}}"}, fields)
	if !res.Valid {
		t.Fatalf("whole expression rejected: %v", res.Errors)
	}
	// a template substring suspends every other check
	res = mustValidate(t, map[string]any{"env": "x{{a}}y"}, fields)
	if !res.Valid {
		t.Fatalf("template substring should suspend enum check: %v", res.Errors)
	}
	// except the mappable gate
	res = mustValidate(t, map[string]any{"fixed": "x{{a}}y"}, fields)
	if !hasIssue(res, forman.CodeProhibitedIML, "fixed") {
		t.Fatalf("expected prohibited_iml, got: %v", res.Errors)
	}
	// non-mappable fields still accept plain values
	res = mustValidate(t, map[string]any{"fixed": "plain"}, fields)
	if !res.Valid {
		t.Fatalf("plain value rejected: %v", res.Errors)
	}
}

func TestValidate_UnknownTypeReported(t *testing.T) {
	res := mustValidate(t, map[string]any{}, []forman.Field{{Name: "v", Type: "wobble"}})
	if !hasIssue(res, forman.CodeUnknownType, "v") {
		t.Fatalf("expected unknown_type at v, got: %v", res.Errors)
	}
}

func TestValidate_UnnamedFieldReported(t *testing.T) {
	res := mustValidate(t, map[string]any{}, []forman.Field{{Type: "text"}})
	if len(res.Errors) != 1 || res.Errors[0].Code != forman.CodeUnnamedField {
		t.Fatalf("expected unnamed_field, got: %v", res.Errors)
	}
}

func TestValidate_VisualTypesSkipped(t *testing.T) {
	fields := []forman.Field{
		{Type: "separator"},
		{Name: "warn", Type: "banner", Label: "Careful"},
		{Name: "v", Type: "text", Required: true},
	}
	res := mustValidate(t, map[string]any{"v": "ok"}, fields)
	if !res.Valid {
		t.Fatalf("visual entries should not validate, got: %v", res.Errors)
	}
}

func TestValidate_NestedCollection(t *testing.T) {
	fields := []forman.Field{{
		Name: "server", Type: "collection",
		Spec: []forman.Field{
			{Name: "host", Type: "text", Required: true},
			{Name: "port", Type: "port"},
		},
	}}
	res := mustValidate(t, map[string]any{"server": map[string]any{"port": 80}}, fields)
	if !hasIssue(res, forman.CodeRequired, "server.host") {
		t.Fatalf("expected required at server.host, got: %v", res.Errors)
	}

	// strict descends into nested collections
	res = mustValidate(t, map[string]any{
		"server": map[string]any{"host": "h", "bogus": 1},
	}, fields, forman.ValidateOpt{Strict: true})
	if !hasIssue(res, forman.CodeUnknownField, "server.bogus") {
		t.Fatalf("expected unknown_field at server.bogus, got: %v", res.Errors)
	}
}

func TestValidate_DynamicCollectionAcceptsAnyKeys(t *testing.T) {
	fields := []forman.Field{{Name: "meta", Type: "dynamicCollection"}}
	res := mustValidate(t, map[string]any{
		"meta": map[string]any{"anything": 1, "goes": true},
	}, fields, forman.ValidateOpt{Strict: true})
	// no spec means no entries claim keys; strict still flags them
	if !hasIssue(res, forman.CodeUnknownField, "meta.anything") {
		t.Fatalf("expected strict to flag dynamic keys, got: %v", res.Errors)
	}
	res = mustValidate(t, map[string]any{
		"meta": map[string]any{"anything": 1},
	}, fields)
	if !res.Valid {
		t.Fatalf("expected valid without strict, got: %v", res.Errors)
	}
}

func TestValidate_ArrayOfCollections(t *testing.T) {
	one := 1
	fields := []forman.Field{{
		Name: "rules", Type: "array",
		Spec: []forman.Field{
			{Name: "key", Type: "text", Required: true},
			{Name: "weight", Type: "number"},
		},
		Validate: &forman.Constraints{MinItems: &one},
	}}
	res := mustValidate(t, map[string]any{"rules": []any{}}, fields)
	if !hasIssue(res, forman.CodeMinItems, "rules") {
		t.Fatalf("expected min_items, got: %v", res.Errors)
	}
	res = mustValidate(t, map[string]any{"rules": []any{
		map[string]any{"key": "a"},
		map[string]any{"weight": 2},
	}}, fields)
	if !hasIssue(res, forman.CodeRequired, "rules.1.key") {
		t.Fatalf("expected required at rules.1.key, got: %v", res.Errors)
	}
}

func TestValidate_ArrayOfScalars(t *testing.T) {
	fields := []forman.Field{{
		Name: "tags", Type: "array",
		Spec: forman.Field{Type: "text"},
	}}
	res := mustValidate(t, map[string]any{"tags": []any{"a", 2, "c"}}, fields)
	if !hasIssue(res, forman.CodeInvalidType, "tags.1") {
		t.Fatalf("expected invalid_type at tags.1, got: %v", res.Errors)
	}
}

func TestValidate_FilterOrLogic(t *testing.T) {
	fields := []forman.Field{{Name: "cond", Type: "filter"}}

	ok := map[string]any{"cond": []any{
		[]any{map[string]any{"a": "price", "o": "greater", "b": 10}},
		[]any{map[string]any{"a": "name", "o": "exist"}},
	}}
	res := mustValidate(t, ok, fields)
	if !res.Valid {
		t.Fatalf("expected valid filter, got: %v", res.Errors)
	}

	// default logic nests rows inside groups
	flat := map[string]any{"cond": []any{
		map[string]any{"a": "price", "o": "greater", "b": 10},
	}}
	res = mustValidate(t, flat, fields)
	if res.Valid {
		t.Fatalf("flat rows must be rejected under or-logic")
	}
}

func TestValidate_FilterAndLogic(t *testing.T) {
	fields := []forman.Field{{
		Name: "cond", Type: "filter",
		Options: map[string]any{"logic": "and"},
	}}
	res := mustValidate(t, map[string]any{"cond": []any{
		map[string]any{"a": "price", "o": "less", "b": 5},
	}}, fields)
	if !res.Valid {
		t.Fatalf("expected valid and-logic filter, got: %v", res.Errors)
	}
}

func TestValidate_FilterBinaryOperatorNeedsValue(t *testing.T) {
	fields := []forman.Field{{
		Name: "cond", Type: "filter",
		Options: map[string]any{"logic": "and"},
	}}
	res := mustValidate(t, map[string]any{"cond": []any{
		map[string]any{"a": "price", "o": "equal"},
		map[string]any{"a": "name", "o": "notexist"},
	}}, fields)
	if !hasIssue(res, forman.CodeRequired, "cond.0.b") {
		t.Fatalf("expected required at cond.0.b, got: %v", res.Errors)
	}
	if hasIssue(res, forman.CodeRequired, "cond.1.b") {
		t.Fatalf("unary operator must not require a value: %v", res.Errors)
	}
}

func TestValidate_FilterCustomOperatorsAlwaysCompare(t *testing.T) {
	fields := []forman.Field{{
		Name: "cond", Type: "filter",
		Options: map[string]any{
			"logic":     "and",
			"operators": []any{"is", "isnot"},
		},
	}}
	res := mustValidate(t, map[string]any{"cond": []any{
		map[string]any{"a": "price", "o": "is", "b": 1},
		map[string]any{"a": "name", "o": "isnot"},
	}}, fields)
	if res.Valid {
		t.Fatalf("second row lacks a compared value, expected errors")
	}
	if !hasIssue(res, forman.CodeRequired, "cond.1.b") {
		t.Fatalf("expected required at cond.1.b, got: %v", res.Errors)
	}
	if hasIssue(res, forman.CodeRequired, "cond.0.b") {
		t.Fatalf("first row carries a value: %v", res.Errors)
	}

	// the builtin unary vocabulary is gone once operators are supplied
	res = mustValidate(t, map[string]any{"cond": []any{
		map[string]any{"a": "name", "o": "exist", "b": 1},
	}}, fields)
	if !hasIssue(res, forman.CodeInvalidOption, "cond.0.o") {
		t.Fatalf("expected invalid_option at cond.0.o, got: %v", res.Errors)
	}
}

func TestValidate_FilterBadOperator(t *testing.T) {
	fields := []forman.Field{{
		Name: "cond", Type: "filter",
		Options: map[string]any{"logic": "and"},
	}}
	res := mustValidate(t, map[string]any{"cond": []any{
		map[string]any{"a": "price", "o": "bogus", "b": 1},
	}}, fields)
	if !hasIssue(res, forman.CodeInvalidOption, "cond.0.o") {
		t.Fatalf("expected invalid_option at cond.0.o, got: %v", res.Errors)
	}
}

func TestValidate_CompositeExpansion(t *testing.T) {
	comps := forman.UDTComposites()
	fields := []forman.Field{{Name: "shape", Type: "udtspec", Required: true}}
	res := mustValidate(t, map[string]any{"shape": map[string]any{
		"type": "text",
	}}, fields, forman.ValidateOpt{Composites: comps})
	if !hasIssue(res, forman.CodeRequired, "shape.name") {
		t.Fatalf("expected required at shape.name, got: %v", res.Errors)
	}
}

func TestValidate_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := forman.Validate(ctx, map[string]any{}, nil)
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func TestValidate_NonObjectRoot(t *testing.T) {
	res := mustValidate(t, []any{1, 2}, []forman.Field{{Name: "v", Type: "text"}})
	if res.Valid || res.Errors[0].Code != forman.CodeInvalidType {
		t.Fatalf("expected invalid_type for non-object root, got: %v", res.Errors)
	}
}

func TestValidate_NilValueChecksRequired(t *testing.T) {
	res := mustValidate(t, nil, []forman.Field{{Name: "v", Type: "text", Required: true}})
	if !hasIssue(res, forman.CodeRequired, "v") {
		t.Fatalf("expected required against nil document, got: %v", res.Errors)
	}
}

func TestValidate_IssuesErrorSummary(t *testing.T) {
	fields := []forman.Field{
		{Name: "a", Type: "text", Required: true},
		{Name: "b", Type: "text", Required: true},
		{Name: "c", Type: "text", Required: true},
		{Name: "d", Type: "text", Required: true},
	}
	res := mustValidate(t, map[string]any{}, fields)
	if len(res.Errors) != 4 {
		t.Fatalf("expected four errors, got: %v", res.Errors)
	}
	msg := res.Errors.Error()
	if !strings.Contains(msg, "(total 4)") {
		t.Fatalf("expected summary to carry total count, got: %q", msg)
	}
}
