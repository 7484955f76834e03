package routing

import (
	"net/http"
	"runtime/debug"
)

type Router struct {
	classifier *Classifier
	routes     map[string]map[string]routeEntry
	patterns   []patternEntry
}

type routeEntry struct {
	rc      RouteClass
	handler http.Handler
}

type patternEntry struct {
	pattern PathPattern
	method  string
	rc      RouteClass
	handler http.Handler
}

func NewRouter(classifier *Classifier) *Router {
	return &Router{
		classifier: classifier,
		routes:     make(map[string]map[string]routeEntry),
	}
}

func (r *Router) Handle(rc RouteClass, method string, path string, h http.Handler) {
	if p, ok := parsePathPattern(path); ok {
		r.patterns = append(r.patterns, patternEntry{pattern: p, method: method, rc: rc, handler: recovered(rc, h)})
		return
	}
	if r.routes[path] == nil {
		r.routes[path] = make(map[string]routeEntry)
	}
	r.routes[path][method] = routeEntry{rc: rc, handler: recovered(rc, h)}
}

func recovered(rc RouteClass, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				_ = debug.Stack()
				WriteError(w, req, rc, http.StatusInternalServerError, "internal_error", "internal error")
			}
		}()
		h.ServeHTTP(w, req)
	})
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if methods, ok := r.routes[req.URL.Path]; ok {
		if entry, ok := methods[req.Method]; ok {
			entry.handler.ServeHTTP(w, req)
			return
		}
		WriteError(w, req, entrypointClass(methods, r.classifier.Classify(req.URL.Path)), http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	pathMatched := false
	for _, p := range r.patterns {
		if !p.pattern.Match(req.URL.Path) {
			continue
		}
		if p.method == req.Method {
			p.handler.ServeHTTP(w, req)
			return
		}
		pathMatched = true
	}
	if pathMatched {
		WriteError(w, req, r.classifier.Classify(req.URL.Path), http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	WriteError(w, req, r.classifier.Classify(req.URL.Path), http.StatusNotFound, "not_found", "not found")
}

func entrypointClass(methods map[string]routeEntry, fallback RouteClass) RouteClass {
	for _, e := range methods {
		return e.rc
	}
	return fallback
}
