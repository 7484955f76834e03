package routing

import (
	"errors"
	"strings"
)

type RouteClass string

const (
	RouteClassInternalAPI RouteClass = "internal_api"
	RouteClassOps         RouteClass = "ops"
	RouteClassUnknown     RouteClass = "unknown"
)

func knownRouteClass(rc RouteClass) bool {
	switch rc {
	case RouteClassInternalAPI, RouteClassOps:
		return true
	}
	return false
}

type Classifier struct {
	entrypoint        string
	allowExact        map[string]RouteClass
	allowPathPatterns []pathPatternRoute
}

func NewClassifier(a Allowlist, entrypoint string) (*Classifier, error) {
	ep, ok := a.Entrypoints[entrypoint]
	if !ok {
		return nil, errors.New("allowlist: missing entrypoint")
	}
	if len(ep.Routes) == 0 {
		return nil, errors.New("allowlist: entrypoint routes empty")
	}

	exact := make(map[string]RouteClass, len(ep.Routes))
	var patterns []pathPatternRoute
	for _, r := range ep.Routes {
		if r.Path == "" || r.RouteClass == "" {
			return nil, errors.New("allowlist: invalid route")
		}
		if p, ok := parsePathPattern(r.Path); ok {
			patterns = append(patterns, pathPatternRoute{pattern: p, rc: RouteClass(r.RouteClass)})
			continue
		}
		exact[r.Path] = RouteClass(r.RouteClass)
	}
	return &Classifier{entrypoint: entrypoint, allowExact: exact, allowPathPatterns: patterns}, nil
}

func (c *Classifier) Classify(path string) RouteClass {
	if rc, ok := c.allowExact[path]; ok {
		return rc
	}
	for _, p := range c.allowPathPatterns {
		if p.pattern.Match(path) {
			return p.rc
		}
	}

	switch {
	case isModuleInternalAPI(path):
		return RouteClassInternalAPI
	case path == "/health" || path == "/healthz":
		return RouteClassOps
	default:
		return RouteClassUnknown
	}
}

func isModuleInternalAPI(path string) bool {
	// /{module}/api/*, module must be a single segment.
	if !strings.HasPrefix(path, "/") {
		return false
	}
	module, after, ok := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if !ok || module == "" {
		return false
	}
	return after == "api" || strings.HasPrefix(after, "api/")
}

type pathPatternRoute struct {
	pattern PathPattern
	rc      RouteClass
}
