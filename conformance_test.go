package forman_test

import (
	"context"
	"testing"

	json "github.com/goccy/go-json"
	jschema "github.com/santhosh-tekuri/jsonschema/v5"

	forman "github.com/formanlab/forman"
	js "github.com/formanlab/forman/jsonschema"
)

// compileEmitted converts fields and compiles the emitted document with a
// third-party draft-07 implementation, so the output is held against the
// standard rather than our own reading of it.
func compileEmitted(t *testing.T, fields []forman.Field) *jschema.Schema {
	t.Helper()
	s, err := forman.ToJSONSchema(fields)
	if err != nil {
		t.Fatalf("ToJSONSchema: %v", err)
	}
	s.SchemaURI = js.DraftURI
	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal schema: %v", err)
	}
	compiled, err := jschema.CompileString("mem://fields.json", string(raw))
	if err != nil {
		t.Fatalf("compile emitted schema: %v", err)
	}
	return compiled
}

func jsonDoc(t *testing.T, src string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(src), &v); err != nil {
		t.Fatalf("doc %s: %v", src, err)
	}
	return v
}

// agreeOn checks that the draft-07 implementation and the runtime validator
// reach the same verdict for src.
func agreeOn(t *testing.T, compiled *jschema.Schema, fields []forman.Field, src string) {
	t.Helper()
	doc := jsonDoc(t, src)
	schemaErr := compiled.Validate(doc)
	res, err := forman.Validate(context.Background(), doc, fields)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if (schemaErr == nil) != res.Valid {
		t.Fatalf("verdicts disagree on %s\n jsonschema: %v\n validator:  %v", src, schemaErr, res.Errors)
	}
}

// Emitted scalar keywords carry the same meaning both validators enforce.
func TestEmittedSchema_ScalarAgreement(t *testing.T) {
	fields := []forman.Field{
		{Name: "host", Type: "text", Required: true, Validate: &forman.Constraints{Pattern: "^[a-z.]+$"}},
		{Name: "port", Type: "port", Default: 443},
		{Name: "ratio", Type: "number"},
		{Name: "workers", Type: "uinteger"},
		{Name: "debug", Type: "boolean"},
	}
	compiled := compileEmitted(t, fields)
	for _, src := range []string{
		`{"host":"example.com"}`,
		`{"host":"example.com","port":8080,"ratio":0.5,"workers":4,"debug":true}`,
		`{}`,
		`{"host":"EXAMPLE"}`,
		`{"host":"example.com","port":70000}`,
		`{"host":"example.com","workers":-1}`,
		`{"host":"example.com","debug":"yes"}`,
	} {
		agreeOn(t, compiled, fields, src)
	}
}

// String length bounds become minLength/maxLength and enum survives as-is.
func TestEmittedSchema_StringConstraintAgreement(t *testing.T) {
	min, max := 2.0, 5.0
	fields := []forman.Field{
		{Name: "code", Type: "text", Validate: &forman.Constraints{Min: &min, Max: &max}},
		{Name: "env", Type: "text", Validate: &forman.Constraints{Enum: []any{"dev", "prod"}}},
	}
	compiled := compileEmitted(t, fields)
	for _, src := range []string{
		`{"code":"abc","env":"dev"}`,
		`{"code":"toolong"}`,
		`{"env":"qa"}`,
	} {
		agreeOn(t, compiled, fields, src)
	}
}

// Static select options become enum or oneOf const branches, and a chosen
// option's conditional fields become an if/then pair.
func TestEmittedSchema_ChoiceAgreement(t *testing.T) {
	fields := []forman.Field{
		{Name: "env", Type: "select", Required: true, Options: []any{"dev", "prod"}},
		{Name: "mode", Type: "select", Options: []any{
			map[string]any{"value": "basic", "label": "Basic"},
			map[string]any{"value": "advanced", "label": "Advanced", "nested": []any{
				map[string]any{"name": "threshold", "type": "number", "required": true},
			}},
		}},
	}
	compiled := compileEmitted(t, fields)
	for _, src := range []string{
		`{"env":"dev"}`,
		`{"env":"prod","mode":"basic"}`,
		`{"env":"prod","mode":"advanced","threshold":3}`,
		`{"env":"qa"}`,
		`{"env":"dev","mode":"advanced"}`,
	} {
		agreeOn(t, compiled, fields, src)
	}
}

// Collections nest as objects and array templates as items.
func TestEmittedSchema_StructureAgreement(t *testing.T) {
	one := 1
	min := 2.0
	fields := []forman.Field{
		{Name: "server", Type: "collection", Spec: []forman.Field{
			{Name: "host", Type: "text", Required: true},
			{Name: "port", Type: "port"},
		}},
		{Name: "tags", Type: "array",
			Spec:     forman.Field{Type: "text", Validate: &forman.Constraints{Min: &min}},
			Validate: &forman.Constraints{MinItems: &one}},
	}
	compiled := compileEmitted(t, fields)
	for _, src := range []string{
		`{"server":{"host":"h","port":80},"tags":["aa","bb"]}`,
		`{"server":{"port":80}}`,
		`{"server":{"host":"h"},"tags":[]}`,
		`{"server":{"host":"h"},"tags":["a"]}`,
	} {
		agreeOn(t, compiled, fields, src)
	}
}
