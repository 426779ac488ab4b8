package forman

import (
	"errors"
	"fmt"
	"strings"

	"github.com/formanlab/forman/i18n"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeRequired      = "required"
	CodeInvalidType   = "invalid_type"
	CodeUnknownField  = "unknown_field"
	CodeUnknownType   = "unknown_type"
	CodeInvalidOption = "invalid_option"
	CodeInvalidEnum   = "invalid_enum"
	CodePattern       = "pattern"
	CodeTooSmall      = "too_small"
	CodeTooBig        = "too_big"
	CodeTooShort      = "too_short"
	CodeTooLong       = "too_long"
	CodeMinItems      = "min_items"
	CodeMaxItems      = "max_items"
	CodeSingleLevel   = "single_level"
	CodePathNotFound  = "path_not_found"
	CodeProhibitedIML = "prohibited_iml"
	CodeNoResolver    = "no_resolver"
	CodeRemoteFailed  = "remote_failed"
	CodeUnknownDomain = "unknown_domain"
	CodeUnnamedField  = "unnamed_field"
	CodeInvalidSpec   = "invalid_spec"
)

// Issue is a single accumulated validation entry. Path is the dotted
// name/index trail relative to the domain value root ("" for the root
// itself); Domain names the logical document the entry belongs to.
type Issue struct {
	Domain  string `json:"domain,omitempty"`
	Path    string `json:"path"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Issues is a collection of validation entries that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. unknown_field at account.team
		p := it.Path
		if p == "" {
			p = "(root)"
		}
		fmt.Fprintf(b, "%s at %s", it.Code, p)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// newIssue builds an entry with the catalog message for code.
func newIssue(domain, path, code string, data map[string]string) Issue {
	return Issue{Domain: domain, Path: path, Code: code, Message: i18n.T(code, data)}
}

// ConversionError reports structural misuse of a field definition (unknown
// type, nameless spec entry, duplicate domain-root registration). It is
// returned by conversion entry points and never used for value problems.
type ConversionError struct {
	Message string
	Field   string // offending field name, when known
}

func (e *ConversionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("forman: %s (field %q)", e.Message, e.Field)
	}
	return "forman: " + e.Message
}

func conversionErrf(field, format string, args ...any) *ConversionError {
	return &ConversionError{Message: fmt.Sprintf(format, args...), Field: field}
}
