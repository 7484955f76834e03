package routing

import "strings"

type PathPattern struct {
	raw      string
	segments []string
}

func parsePathPattern(raw string) (PathPattern, bool) {
	if !strings.Contains(raw, "{") {
		return PathPattern{}, false
	}
	if raw == "" || raw[0] != '/' {
		return PathPattern{}, false
	}

	parts := splitPathSegments(raw)
	for _, s := range parts {
		if s == "" {
			return PathPattern{}, false
		}
		if strings.ContainsAny(s, "{}") && !isParamSegment(s) {
			return PathPattern{}, false
		}
	}
	return PathPattern{raw: raw, segments: parts}, true
}

func (p PathPattern) Match(path string) bool {
	_, ok := p.Params(path)
	return ok
}

// Params extracts the named segments of a matching path, e.g. pattern
// /taxonomy/api/nodes/{id}/path against /taxonomy/api/nodes/42/path
// yields {"id": "42"}.
func (p PathPattern) Params(path string) (map[string]string, bool) {
	if p.raw == "" {
		return nil, false
	}
	in := splitPathSegments(path)
	if len(in) != len(p.segments) {
		return nil, false
	}
	params := make(map[string]string)
	for i, want := range p.segments {
		got := in[i]
		if got == "" {
			return nil, false
		}
		if isParamSegment(want) {
			params[want[1:len(want)-1]] = got
			continue
		}
		if got != want {
			return nil, false
		}
	}
	return params, true
}

func splitPathSegments(path string) []string {
	path = strings.TrimPrefix(strings.TrimSpace(path), "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func isParamSegment(s string) bool {
	return strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") && len(s) > 2
}

// MatchParams matches path against a route template like
// /taxonomy/api/nodes/{id}/rename and returns the captured params.
func MatchParams(template string, path string) (map[string]string, bool) {
	p, ok := parsePathPattern(template)
	if !ok {
		return nil, false
	}
	return p.Params(path)
}
