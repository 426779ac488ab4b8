package forman

import (
	js "github.com/formanlab/forman/jsonschema"
)

// Filter fields describe condition editors. A condition row is an object
// {a, o, b}: operand, operator, compared value. Logic "and" lays rows out
// as one flat array; any other logic nests rows inside OR-groups
// (array of arrays).

var builtinBinaryOperators = []struct{ Value, Label string }{
	{"equal", "Equal to"},
	{"notequal", "Not equal to"},
	{"greater", "Greater than"},
	{"less", "Less than"},
	{"greaterorequal", "Greater than or equal to"},
	{"lessorequal", "Less than or equal to"},
	{"contain", "Contains"},
	{"notcontain", "Does not contain"},
	{"startwith", "Starts with"},
	{"notstartwith", "Does not start with"},
	{"endwith", "Ends with"},
	{"notendwith", "Does not end with"},
	{"matchpattern", "Matches pattern"},
	{"notmatchpattern", "Does not match pattern"},
	{"in", "In"},
	{"notin", "Not in"},
}

var builtinUnaryOperators = []struct{ Value, Label string }{
	{"exist", "Exists"},
	{"notexist", "Does not exist"},
}

func isUnaryOperator(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	for _, op := range builtinUnaryOperators {
		if op.Value == s {
			return true
		}
	}
	return false
}

func isBuiltinOperator(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	for _, op := range builtinBinaryOperators {
		if op.Value == s {
			return true
		}
	}
	return isUnaryOperator(s)
}

// builtinOperatorOptions renders the vocabulary in option-list form.
func builtinOperatorOptions() []any {
	out := make([]any, 0, len(builtinBinaryOperators)+len(builtinUnaryOperators))
	for _, op := range builtinBinaryOperators {
		out = append(out, map[string]any{"label": op.Label, "value": op.Value})
	}
	for _, op := range builtinUnaryOperators {
		out = append(out, map[string]any{"label": op.Label, "value": op.Value})
	}
	return out
}

// filterConfig is the resolved configuration of a filter field. Operands
// and Operators stay in raw option-source form; "" Logic means the
// OR-of-AND-groups default.
type filterConfig struct {
	Logic     string
	Operands  any
	Operators any
}

func filterConfigOf(f Field) (filterConfig, error) {
	cfg := filterConfig{Logic: "or"}
	switch t := f.Options.(type) {
	case nil:
	case map[string]any:
		if s, ok := anyString(t["logic"]); ok && s != "" {
			cfg.Logic = s
		}
		cfg.Operands = t["operands"]
		cfg.Operators = t["operators"]
	default:
		return cfg, conversionErrf(f.Name, "invalid filter options of type %T", t)
	}
	return cfg, nil
}

// rowFields synthesizes the Forman fields of one condition row, so both
// converter and validator reuse the standard machinery for operand and
// operator sources.
func (cfg filterConfig) rowFields() []Field {
	a := Field{Name: "a", Type: "any", Label: "Operand", Required: true}
	if cfg.Operands != nil {
		a.Type = "select"
		a.Options = cfg.Operands
	}
	o := Field{Name: "o", Type: "select", Label: "Operator", Required: true}
	if cfg.Operators != nil {
		o.Options = cfg.Operators
	} else {
		o.Options = builtinOperatorOptions()
	}
	// custom vocabularies carry no unary/binary split, so every row compares
	b := Field{Name: "b", Type: "any", Label: "Value", Required: cfg.Operators != nil}
	return []Field{a, o, b}
}

// usesBuiltinOperators reports whether unary/binary classification of
// operator values is meaningful for this configuration.
func (cfg filterConfig) usesBuiltinOperators() bool { return cfg.Operators == nil }

// convertFilter renders the nested-array scaffold of a filter field and
// tags it with x-filter so the logic mode survives reverse conversion.
func convertFilter(nf *normalField, cc convCtx) (*js.Schema, error) {
	cfg, err := filterConfigOf(nf.Field)
	if err != nil {
		return nil, err
	}
	row := js.NewObject()
	entries, err := AsFieldList(cfg.rowFields())
	if err != nil {
		return nil, err
	}
	if err := convertInto(row, entries, cc); err != nil {
		return nil, err
	}
	if cfg.Operands == nil {
		row.Properties.Set("a", freeTyped("Operand"))
	}
	row.Properties.Set("b", freeTyped("Value"))

	rows := &js.Schema{Type: "array", Items: row}
	out := rows
	if cfg.Logic != "and" {
		out = &js.Schema{Type: "array", Items: rows}
	}
	applyMeta(out, nf)
	out.XFilter = &js.FilterInfo{Logic: cfg.Logic}
	return out, nil
}

// freeTyped is the schema of an unconstrained condition member: any JSON
// scalar including null.
func freeTyped(title string) *js.Schema {
	return &js.Schema{Type: []string{"null", "boolean", "number", "string"}, Title: title}
}
