package forman

import (
	"context"
	"strings"
)

// checkPath validates a file/folder value: a slash-separated path whose
// components are matched level by level against the option source. Remote
// sources receive the consumed prefix as path data; static lists filter by
// the folder-ness appropriate to each level.
func (v *validator) checkPath(ctx context.Context, vc valCtx, fr *collFrame, nf *normalField, val any) {
	s, ok := val.(string)
	if !ok {
		v.report(vc, CodeInvalidType, map[string]string{"type": "string"})
		return
	}
	if s == "/" {
		if nf.ShowRoot && nf.Base == "folder" {
			if v.opt.States {
				v.setState(fr, nf.Name, &FieldState{Mode: "chose", Path: []string{}})
			}
			return
		}
		v.report(vc, CodePathNotFound, map[string]string{"name": "/"})
		return
	}
	trimmed := s
	if nf.ShowRoot {
		trimmed = strings.TrimPrefix(trimmed, "/")
	}
	if nf.SingleLevel && strings.Contains(trimmed, "/") {
		v.report(vc, CodeSingleLevel, nil)
		return
	}
	if nf.Store == "" && nf.Groups == nil {
		// no option source to walk against
		return
	}

	parts := strings.Split(trimmed, "/")
	labels := make([]string, 0, len(parts))
	consumed := ""
	for i, tok := range parts {
		last := i == len(parts)-1
		want := "folder"
		if last && nf.Base == "file" {
			want = "file"
		}
		opts, ok := v.pathLevelOptions(ctx, vc, nf, consumed)
		if !ok {
			return
		}
		var matched *optionItem
		for j := range opts {
			o := &opts[j]
			if !valueEqual(o.Value, tok) {
				continue
			}
			if o.PathKind != "" && o.PathKind != want {
				continue
			}
			matched = o
			break
		}
		if matched == nil {
			v.report(vc, CodePathNotFound, map[string]string{"name": tok})
			return
		}
		if matched.HasLabel {
			labels = append(labels, matched.Label)
		} else {
			labels = append(labels, valueString(matched.Value))
		}
		if consumed == "" {
			consumed = tok
		} else {
			consumed = consumed + "/" + tok
		}
	}
	if v.opt.States {
		v.setState(fr, nf.Name, &FieldState{Mode: "chose", Path: labels})
	}
}

// pathLevelOptions resolves the options visible at one path level. Remote
// stores see the path consumed so far; static lists are the same flat list
// every level.
func (v *validator) pathLevelOptions(ctx context.Context, vc valCtx, nf *normalField, consumed string) ([]optionItem, bool) {
	if nf.Store != "" {
		res := v.resolve(ctx, vc, nf.Store, map[string]any{"path": consumed})
		if res == nil {
			return nil, false
		}
		list, ok := res.([]any)
		if !ok {
			v.report(vc, CodeInvalidSpec, map[string]string{"error": "remote options are not a list"})
			return nil, false
		}
		groups, err := parseOptionItems(list)
		if err != nil {
			v.reportSpec(vc, err)
			return nil, false
		}
		tmp := normalField{Groups: groups}
		return tmp.flatOptions(), true
	}
	return nf.flatOptions(), true
}
