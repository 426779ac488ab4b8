// Package forman provides:
//
// - A bidirectional converter between Forman field lists and JSON Schema
//   draft-07 (ToJSONSchema/FromJSONSchema), with Forman-only concerns kept
//   in x-* vendor extensions so round trips stay lossless
// - Document validation against a field list (Validate/ValidateDomains)
//   with a stable issue model (code, path, translated message)
// - Cross-domain field routing: options and fields can declare a target
//   domain, and their nested fields surface in that domain's schema and
//   are checked against that domain's document
// - Remote option lists through an injected RemoteResolver; endpoints are
//   never fetched by the library itself
//
// Design policy:
// - Keep only public APIs in the root package.
// - Place the fluent builder under dsl/, the document model under
//   jsonschema/, manifest decoding under manifest/, and the CLI under
//   cmd/forman.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	schema, err := forman.ToJSONSchema(fields)
//	fields2, err := forman.FromJSONSchema(schema)
//
//	res, err := forman.Validate(ctx, doc, fields, forman.ValidateOpt{Strict: true})
//	for _, iss := range res.Errors { ... }
package forman
