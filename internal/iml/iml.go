// Package iml detects {{...}} template expressions in string values.
// Values carrying an expression are resolved by the mapping engine at run
// time, so the validator must not judge them against the declared type.
package iml

import "strings"

// Contains reports whether s carries a template expression anywhere,
// including as part of a larger literal ("prefix {{a.b}} suffix").
func Contains(s string) bool {
	open := strings.Index(s, "{{")
	if open < 0 {
		return false
	}
	return strings.Contains(s[open+2:], "}}")
}

// IsExpression reports whether s is exactly one expression spanning the
// whole string, e.g. "{{bundle.order.id}}".
func IsExpression(s string) bool {
	if len(s) < 4 || !strings.HasPrefix(s, "{{") || !strings.HasSuffix(s, "}}") {
		return false
	}
	// The first close must be the final close, otherwise the expression
	// ends before the string does ("{{a}}-{{b}}").
	return strings.Index(s[2:], "}}") == len(s)-4
}
