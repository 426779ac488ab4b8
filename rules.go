package forman

import (
	"math"
	"regexp"
	"strconv"
)

// checkScalar runs the primitive checks: value category, type-specific
// range narrowing, and the constraint bag. Values carrying template
// expressions never reach this point.
func (v *validator) checkScalar(vc valCtx, nf *normalField, val any) {
	switch nf.K {
	case KindString:
		s, ok := val.(string)
		if !ok {
			v.report(vc, CodeInvalidType, map[string]string{"type": "string"})
			return
		}
		v.checkStringConstraints(vc, nf, s)
	case KindNumber:
		f, ok := anyFloat(val)
		if !ok {
			v.report(vc, CodeInvalidType, map[string]string{"type": jsonTypeName(nf.K, nf.Base)})
			return
		}
		v.checkNumberConstraints(vc, nf, f)
	case KindBoolean:
		if _, ok := val.(bool); !ok {
			v.report(vc, CodeInvalidType, map[string]string{"type": "boolean"})
		}
	}
}

func (v *validator) checkStringConstraints(vc valCtx, nf *normalField, s string) {
	c := nf.Validate
	if c == nil {
		return
	}
	if c.Pattern != "" {
		re, err := regexp.Compile(c.Pattern)
		if err != nil || !re.MatchString(s) {
			v.report(vc, CodePattern, map[string]string{"pattern": c.Pattern})
		}
	}
	if c.Min != nil && float64(len(s)) < *c.Min {
		v.report(vc, CodeTooShort, map[string]string{"min": formatNumber(*c.Min)})
	}
	if c.Max != nil && float64(len(s)) > *c.Max {
		v.report(vc, CodeTooLong, map[string]string{"max": formatNumber(*c.Max)})
	}
	if len(c.Enum) > 0 && !enumHas(c.Enum, s) {
		v.report(vc, CodeInvalidEnum, map[string]string{"value": s})
	}
}

func (v *validator) checkNumberConstraints(vc valCtx, nf *normalField, f float64) {
	if nf.Base != "number" && f != math.Trunc(f) {
		v.report(vc, CodeInvalidType, map[string]string{"type": "integer"})
		return
	}
	switch nf.Base {
	case "uinteger":
		if f < 0 {
			v.report(vc, CodeTooSmall, map[string]string{"min": "0"})
			return
		}
	case "port":
		if f < 1 {
			v.report(vc, CodeTooSmall, map[string]string{"min": "1"})
			return
		}
		if f > 65535 {
			v.report(vc, CodeTooBig, map[string]string{"max": "65535"})
			return
		}
	}
	c := nf.Validate
	if c == nil {
		return
	}
	if c.Min != nil && f < *c.Min {
		v.report(vc, CodeTooSmall, map[string]string{"min": formatNumber(*c.Min)})
	}
	if c.Max != nil && f > *c.Max {
		v.report(vc, CodeTooBig, map[string]string{"max": formatNumber(*c.Max)})
	}
	if len(c.Enum) > 0 && !enumHas(c.Enum, f) {
		v.report(vc, CodeInvalidEnum, map[string]string{"value": formatNumber(f)})
	}
}

func enumHas(enum []any, val any) bool {
	for _, e := range enum {
		if valueEqual(e, val) {
			return true
		}
	}
	return false
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
