// Package middleware carries the framework-agnostic pieces shared by the
// echo and gin request validators.
package middleware

import (
	"context"
	"io"

	json "github.com/goccy/go-json"

	forman "github.com/formanlab/forman"
)

// ctxKeyResult is a typed context key for storing a validation Result.
type ctxKeyResult struct{}

// ContextWithResult attaches a validation Result to the context.
func ContextWithResult(ctx context.Context, res *forman.Result) context.Context {
	return context.WithValue(ctx, ctxKeyResult{}, res)
}

// ResultFromContext retrieves the Result stored by a request validator.
func ResultFromContext(ctx context.Context) (*forman.Result, bool) {
	res, ok := ctx.Value(ctxKeyResult{}).(*forman.Result)
	return res, ok
}

// DecodeBody reads a request body as one JSON document. Numbers decode as
// json.Number so large integers survive the trip into validation.
func DecodeBody(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues forman.Issues) map[string]any {
	return map[string]any{"issues": issues}
}
