package jsonschema

// Schema is the JSON Schema draft-07 document model produced by the forward
// converter and consumed by the reverse converter. Standard keywords keep
// their draft-07 meaning; the X* fields carry Forman concerns that draft-07
// cannot express and are serialized as x-* vendor extensions.
type Schema struct {
	// Core
	SchemaURI   string `json:"$schema,omitempty"`
	Ref         string `json:"$ref,omitempty"`
	Type        any    `json:"type,omitempty"` // string or []string
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Format      string `json:"format,omitempty"`
	Default     any    `json:"default,omitempty"`
	Const       any    `json:"const,omitempty"`
	Enum        []any  `json:"enum,omitempty"`

	// String
	Pattern   string `json:"pattern,omitempty"`
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`

	// Number
	Minimum *float64 `json:"minimum,omitempty"`
	Maximum *float64 `json:"maximum,omitempty"`

	// Object
	Properties           *Properties `json:"properties,omitempty"`
	Required             []string    `json:"required,omitempty"`
	AdditionalProperties any         `json:"additionalProperties,omitempty"`

	// Array
	Items    *Schema `json:"items,omitempty"`
	MinItems *int    `json:"minItems,omitempty"`
	MaxItems *int    `json:"maxItems,omitempty"`

	// Combinators
	OneOf []*Schema `json:"oneOf,omitempty"`
	AllOf []*Schema `json:"allOf,omitempty"`
	If    *Schema   `json:"if,omitempty"`
	Then  *Schema   `json:"then,omitempty"`

	Definitions map[string]*Schema `json:"definitions,omitempty"`

	// Vendor extensions
	XFetch     string      `json:"x-fetch,omitempty"`
	XNested    *Schema     `json:"x-nested,omitempty"`
	XSearch    *Search     `json:"x-search,omitempty"`
	XPath      *PathInfo   `json:"x-path,omitempty"`
	XFilter    *FilterInfo `json:"x-filter,omitempty"`
	XComposite string      `json:"x-composite,omitempty"`
}

// Search describes a remote search affordance attached to a field
// (serialized as x-search).
type Search struct {
	URL         string  `json:"url"`
	Label       string  `json:"label,omitempty"`
	InputSchema *Schema `json:"inputSchema,omitempty"`
}

// PathInfo marks a schema as a slash-separated path selector
// (serialized as x-path).
type PathInfo struct {
	Type        string `json:"type"`
	Name        string `json:"name,omitempty"`
	ShowRoot    bool   `json:"showRoot,omitempty"`
	SingleLevel bool   `json:"singleLevel,omitempty"`
}

// FilterInfo records the logic mode of a filter scaffold so reverse
// conversion can recover the original field (serialized as x-filter).
type FilterInfo struct {
	Logic string `json:"logic"`
}

// DraftURI is stamped into SchemaURI by callers that emit standalone
// documents. Converter output itself is a fragment and leaves it empty.
const DraftURI = "http://json-schema.org/draft-07/schema#"

// NewObject returns an object schema with an empty ordered property set.
func NewObject() *Schema {
	return &Schema{Type: "object", Properties: NewProperties()}
}

// RefTo wraps a reference target in the allOf form the converter emits for
// $ref in property position. Draft-07 ignores keywords alongside $ref, so a
// bare reference would swallow its siblings.
func RefTo(url string) *Schema {
	return &Schema{AllOf: []*Schema{{Ref: url}}}
}
