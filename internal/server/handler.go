package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/jacksonlee411/Shelves-And-Sectors/internal/routing"
	"github.com/jacksonlee411/Shelves-And-Sectors/internal/seed"
	"github.com/jacksonlee411/Shelves-And-Sectors/modules/taxonomy/infrastructure/persistence"
	"github.com/jacksonlee411/Shelves-And-Sectors/modules/taxonomy/services"
)

type HandlerOptions struct {
	Store        *persistence.MemoryStore
	WriteService services.TaxonomyWriteService
	Authorizer   authorizer
	SeedPath     string
}

func NewHandler() (http.Handler, error) {
	return NewHandlerWithOptions(HandlerOptions{})
}

func NewHandlerWithOptions(opts HandlerOptions) (http.Handler, error) {
	allowlistPath := os.Getenv("ALLOWLIST_PATH")
	if allowlistPath == "" {
		p, err := defaultConfigPath("config/routing/allowlist.yaml")
		if err != nil {
			return nil, err
		}
		allowlistPath = p
	}
	a, err := routing.LoadAllowlist(allowlistPath)
	if err != nil {
		return nil, err
	}
	classifier, err := routing.NewClassifier(a, "server")
	if err != nil {
		return nil, err
	}

	store := opts.Store
	if store == nil {
		store = persistence.NewMemoryStore()
	}
	writeService := opts.WriteService
	if writeService == nil {
		writeService = services.NewTaxonomyWriteService(store, store)
	}
	treeService := services.NewTreeService(store, store)

	seedPath := opts.SeedPath
	if seedPath == "" {
		seedPath = os.Getenv("SEED_PATH")
	}
	if seedPath != "" {
		f, err := seed.Load(seedPath)
		if err != nil {
			return nil, err
		}
		if err := seed.Apply(context.Background(), f, store, writeService); err != nil {
			return nil, err
		}
	}

	authz := opts.Authorizer
	if authz == nil {
		a, err := loadAuthorizer()
		if err != nil {
			return nil, err
		}
		authz = a
	}

	router := routing.NewRouter(classifier)

	router.Handle(routing.RouteClassOps, http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}))
	router.Handle(routing.RouteClassOps, http.MethodGet, "/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}))

	router.Handle(routing.RouteClassInternalAPI, http.MethodGet, "/taxonomy/api/tree", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleTaxonomyTreeAPI(w, r, treeService)
	}))
	router.Handle(routing.RouteClassInternalAPI, http.MethodGet, "/taxonomy/api/nodes", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleTaxonomyNodesListAPI(w, r, store)
	}))
	router.Handle(routing.RouteClassInternalAPI, http.MethodGet, "/taxonomy/api/nodes/{id}/path", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleTaxonomyNodePathAPI(w, r, store)
	}))
	router.Handle(routing.RouteClassInternalAPI, http.MethodGet, "/taxonomy/api/counts", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleTaxonomyCountsAPI(w, r, treeService)
	}))
	router.Handle(routing.RouteClassInternalAPI, http.MethodPost, "/taxonomy/api/query", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleTaxonomyQueryAPI(w, r, treeService)
	}))

	router.Handle(routing.RouteClassInternalAPI, http.MethodPost, "/taxonomy/api/nodes", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleTaxonomyNodesCreateAPI(w, r, writeService)
	}))
	router.Handle(routing.RouteClassInternalAPI, http.MethodPost, "/taxonomy/api/nodes/{id}/rename", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleTaxonomyNodeRenameAPI(w, r, writeService)
	}))
	router.Handle(routing.RouteClassInternalAPI, http.MethodPost, "/taxonomy/api/moves", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleTaxonomyMovesAPI(w, r, writeService)
	}))
	router.Handle(routing.RouteClassInternalAPI, http.MethodPost, "/taxonomy/api/moves/confirm", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleTaxonomyMovesConfirmAPI(w, r, writeService)
	}))
	router.Handle(routing.RouteClassInternalAPI, http.MethodPost, "/taxonomy/api/deletes", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleTaxonomyDeletesAPI(w, r, writeService)
	}))
	router.Handle(routing.RouteClassInternalAPI, http.MethodPost, "/taxonomy/api/deletes/confirm", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleTaxonomyDeletesConfirmAPI(w, r, writeService)
	}))
	router.Handle(routing.RouteClassInternalAPI, http.MethodPost, "/taxonomy/api/codes/suggest", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleTaxonomyCodesSuggestAPI(w, r, store)
	}))

	return withRole(withAuthz(classifier, authz, router)), nil
}

// defaultConfigPath walks upward so binaries work from the repo root
// and from cmd/ subdirectories alike.
func defaultConfigPath(rel string) (string, error) {
	path := rel
	for i := 0; i < 8; i++ {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		path = filepath.Join("..", path)
	}
	return "", errors.New("server: config not found: " + rel)
}
