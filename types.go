package forman

import "strings"

// Kind is the coarse classification of a resolved field type. It drives
// both converter dispatch and the validator's value-category check.
type Kind uint8

const (
	KindString Kind = iota
	KindNumber
	KindBoolean
	KindSelect
	KindCollection
	KindArray
	KindFilter
	KindVisual
	KindAny
)

// Forman type tables. Prefixed forms ("account:google") resolve to the base
// family before lookup.
var stringTypes = map[string]string{
	// type -> JSON Schema format ("" when none applies)
	"text":      "",
	"password":  "",
	"email":     "email",
	"url":       "uri",
	"color":     "",
	"editor":    "",
	"filename":  "",
	"buffer":    "",
	"date":      "date",
	"time":      "time",
	"timestamp": "date-time",
	"json":      "",
	"cert":      "",
	"pkey":      "",
	"hidden":    "",
}

var numberTypes = map[string]bool{
	"number":   true,
	"integer":  true,
	"uinteger": true,
	"port":     true,
}

var booleanTypes = map[string]bool{
	"boolean":  true,
	"checkbox": true,
}

var selectTypes = map[string]bool{
	"select":    true,
	"account":   true,
	"hook":      true,
	"keychain":  true,
	"datastore": true,
	"aiagent":   true,
	"device":    true,
	"file":      true,
	"folder":    true,
	"scenario":  true,
	"udt":       true,
}

var visualTypes = map[string]bool{
	"banner":    true,
	"markdown":  true,
	"html":      true,
	"separator": true,
}

// endpointTemplates synthesize a remote option source for prefixed service
// types that declare no options of their own. {{kind}} is replaced by the
// prefix remainder; the query is dropped entirely for unprefixed types.
var endpointTemplates = map[string]string{
	"account":   "api://connections?kind={{kind}}",
	"hook":      "api://hooks?kind={{kind}}",
	"keychain":  "api://keys?kind={{kind}}",
	"device":    "api://devices?kind={{kind}}",
	"datastore": "api://datastores",
	"aiagent":   "api://aiagents",
	"scenario":  "api://scenarios",
}

// splitType separates a prefixed type into its base family and kind:
// "account:google" -> ("account", "google"), "text" -> ("text", "").
func splitType(typ string) (base, kind string) {
	if i := strings.IndexByte(typ, ':'); i >= 0 {
		return typ[:i], typ[i+1:]
	}
	return typ, ""
}

// classify resolves a base type to its Kind. ok is false for types outside
// the tables (composite macros included; those must be expanded away before
// classification).
func classify(base string) (Kind, bool) {
	switch {
	case base == "any":
		return KindAny, true
	case base == "collection" || base == "dynamicCollection":
		return KindCollection, true
	case base == "array":
		return KindArray, true
	case base == "filter":
		return KindFilter, true
	case visualTypes[base]:
		return KindVisual, true
	case selectTypes[base]:
		return KindSelect, true
	case booleanTypes[base]:
		return KindBoolean, true
	case numberTypes[base]:
		return KindNumber, true
	}
	if _, ok := stringTypes[base]; ok {
		return KindString, true
	}
	return KindAny, false
}

// isPathType reports whether base walks slash-separated paths.
func isPathType(base string) bool { return base == "file" || base == "folder" }

// endpointFor returns the synthesized store URL for a service type, or ""
// when the family has no endpoint template.
func endpointFor(base, kind string) string {
	tmpl, ok := endpointTemplates[base]
	if !ok {
		return ""
	}
	if kind == "" {
		if i := strings.IndexByte(tmpl, '?'); i >= 0 {
			return tmpl[:i]
		}
		return tmpl
	}
	return strings.ReplaceAll(tmpl, "{{kind}}", kind)
}

// schemaType maps a base type to the JSON Schema type keyword it converts
// to. Integer-like Forman types narrow to "integer".
func schemaType(base string) string {
	switch {
	case numberTypes[base]:
		if base == "number" {
			return "number"
		}
		return "integer"
	case booleanTypes[base]:
		return "boolean"
	default:
		return "string"
	}
}

// jsonTypeName names the value category expected for a Kind, used in
// type-mismatch messages.
func jsonTypeName(k Kind, base string) string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		if base != "" && base != "number" {
			return "integer"
		}
		return "number"
	case KindBoolean:
		return "boolean"
	case KindCollection:
		return "object"
	case KindArray, KindFilter:
		return "array"
	default:
		return base
	}
}
