package server

import (
	"net/http"
	"os"
	"strings"

	"github.com/jacksonlee411/Shelves-And-Sectors/internal/routing"
	"github.com/jacksonlee411/Shelves-And-Sectors/pkg/authz"
)

func loadAuthorizer() (*authz.Authorizer, error) {
	modelPath := os.Getenv("AUTHZ_MODEL_PATH")
	if modelPath == "" {
		p, err := defaultConfigPath("config/access/model.conf")
		if err != nil {
			return nil, err
		}
		modelPath = p
	}
	policyPath := os.Getenv("AUTHZ_POLICY_PATH")
	if policyPath == "" {
		p, err := defaultConfigPath("config/access/policy.csv")
		if err != nil {
			return nil, err
		}
		policyPath = p
	}
	mode, err := authz.ModeFromEnv()
	if err != nil {
		return nil, err
	}
	return authz.NewAuthorizer(modelPath, policyPath, mode)
}

type authorizer interface {
	Authorize(subject string, domain string, object string, action string) (allowed bool, enforced bool, err error)
}

func withAuthz(classifier *routing.Classifier, a authorizer, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		rc := routing.RouteClassInternalAPI
		if classifier != nil {
			rc = classifier.Classify(path)
		}

		object, action, shouldCheck := authzRequirementForRoute(r.Method, path)
		if !shouldCheck {
			next.ServeHTTP(w, r)
			return
		}

		subject := authz.SubjectFromRoleSlug(currentRole(r.Context()))
		allowed, enforced, err := a.Authorize(subject, authz.DomainCatalog, object, action)
		if err != nil {
			routing.WriteError(w, r, rc, http.StatusInternalServerError, "authz_error", "authz error")
			return
		}
		if enforced && !allowed {
			routing.WriteError(w, r, rc, http.StatusForbidden, "forbidden", "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func authzRequirementForRoute(method string, path string) (object string, action string, ok bool) {
	if path == "/health" || path == "/healthz" {
		return "", "", false
	}

	if _, matched := routing.MatchParams("/taxonomy/api/nodes/{id}/rename", path); matched {
		if method == http.MethodPost {
			return authz.ObjectTaxonomyNodes, authz.ActionAdmin, true
		}
		return "", "", false
	}
	if _, matched := routing.MatchParams("/taxonomy/api/nodes/{id}/path", path); matched {
		if method == http.MethodGet {
			return authz.ObjectTaxonomyTree, authz.ActionRead, true
		}
		return "", "", false
	}

	switch path {
	case "/taxonomy/api/tree", "/taxonomy/api/counts":
		if method == http.MethodGet {
			return authz.ObjectTaxonomyTree, authz.ActionRead, true
		}
	case "/taxonomy/api/query":
		if method == http.MethodPost {
			return authz.ObjectTaxonomyTree, authz.ActionRead, true
		}
	case "/taxonomy/api/nodes":
		if method == http.MethodGet {
			return authz.ObjectTaxonomyNodes, authz.ActionRead, true
		}
		if method == http.MethodPost {
			return authz.ObjectTaxonomyNodes, authz.ActionAdmin, true
		}
	case "/taxonomy/api/moves", "/taxonomy/api/moves/confirm",
		"/taxonomy/api/deletes", "/taxonomy/api/deletes/confirm":
		if method == http.MethodPost {
			return authz.ObjectTaxonomyNodes, authz.ActionAdmin, true
		}
	case "/taxonomy/api/codes/suggest":
		if method == http.MethodPost {
			return authz.ObjectTaxonomyCodes, authz.ActionRead, true
		}
	}
	if strings.HasPrefix(path, "/taxonomy/") {
		// Fail closed on unmapped taxonomy routes.
		return authz.ObjectTaxonomyTree, authz.ActionAdmin, true
	}
	return "", "", false
}
