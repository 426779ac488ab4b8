package manifest_test

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	forman "github.com/formanlab/forman"
	"github.com/formanlab/forman/manifest"
)

func TestDecodeJSON_Array(t *testing.T) {
	src := `[
	  {"name": "host", "type": "text", "required": true},
	  {"name": "port", "type": "port", "default": 443}
	]`
	fields, err := manifest.DecodeJSON(strings.NewReader(src))
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if len(fields) != 2 || fields[0].Name != "host" || !fields[0].Required {
		t.Fatalf("unexpected fields: %+v", fields)
	}
	// numeric fidelity: defaults arrive as json.Number
	if n, ok := fields[1].Default.(json.Number); !ok || n.String() != "443" {
		t.Fatalf("expected json.Number default, got %T %v", fields[1].Default, fields[1].Default)
	}
}

func TestDecodeJSON_WrapperAndSingle(t *testing.T) {
	fields, err := manifest.DecodeJSON(strings.NewReader(`{"fields": [{"name": "a", "type": "text"}]}`))
	if err != nil || len(fields) != 1 || fields[0].Name != "a" {
		t.Fatalf("wrapper decode failed: %v %+v", err, fields)
	}
	fields, err = manifest.DecodeJSON(strings.NewReader(`{"name": "solo", "type": "boolean"}`))
	if err != nil || len(fields) != 1 || fields[0].Name != "solo" {
		t.Fatalf("single decode failed: %v %+v", err, fields)
	}
}

func TestDecodeJSON_Invalid(t *testing.T) {
	if _, err := manifest.DecodeJSON(strings.NewReader(`{]`)); err == nil {
		t.Fatalf("expected JSON error")
	}
	if _, err := manifest.DecodeJSON(strings.NewReader(`"just a string"`)); err == nil {
		t.Fatalf("expected shape error")
	}
}

func TestDecodeYAML_MultiDocument(t *testing.T) {
	src := `
- name: host
  type: text
  required: true
---
fields:
  - name: mode
    type: select
    options:
      - value: a
        label: Alpha
`
	fields, err := manifest.DecodeYAML(strings.NewReader(src))
	if err != nil {
		t.Fatalf("DecodeYAML: %v", err)
	}
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	if !reflect.DeepEqual(names, []string{"host", "mode"}) {
		t.Fatalf("expected documents concatenated, got: %v", names)
	}
	// option maps normalize to map[string]any
	opts, ok := fields[1].Options.([]any)
	if !ok || len(opts) != 1 {
		t.Fatalf("unexpected options: %+v", fields[1].Options)
	}
	if _, ok := opts[0].(map[string]any); !ok {
		t.Fatalf("expected normalized option map, got %T", opts[0])
	}
}

func TestDecodeYAML_Invalid(t *testing.T) {
	if _, err := manifest.DecodeYAML(strings.NewReader("{unbalanced")); err == nil {
		t.Fatalf("expected YAML error")
	}
}

// Decoded manifests feed straight into conversion and validation.
func TestDecode_EndToEnd(t *testing.T) {
	src := `
- name: env
  type: select
  required: true
  options: [dev, prod]
- name: retries
  type: uinteger
`
	fields, err := manifest.DecodeYAML(strings.NewReader(src))
	if err != nil {
		t.Fatalf("DecodeYAML: %v", err)
	}
	if _, err := forman.ToJSONSchema(fields); err != nil {
		t.Fatalf("ToJSONSchema: %v", err)
	}

	value, err := manifest.DecodeValue(strings.NewReader(`{"env": "prod", "retries": 2}`))
	if err != nil {
		t.Fatalf("DecodeValue: %v", err)
	}
	res, err := forman.Validate(context.Background(), value, fields)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !res.Valid {
		t.Fatalf("expected valid, got: %v", res.Errors)
	}
}
