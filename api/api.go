// Package api exposes the registration session registry over HTTP: new
// commitments, membership paths, the current root, the recent root history
// and the nullifier registry.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/vocdoni/anonvote/log"
	"github.com/vocdoni/anonvote/state"
)

// APIConfig type represents the configuration for the API HTTP server. It
// includes the host, port and the session state the handlers operate on.
type APIConfig struct {
	Host  string
	Port  int
	State *state.State
}

// API type represents the API HTTP server.
type API struct {
	router *chi.Mux
	state  *state.State
}

// New creates a new API instance with the given configuration and starts
// the HTTP server.
func New(conf *APIConfig) (*API, error) {
	if conf == nil {
		return nil, fmt.Errorf("missing API configuration")
	}
	if conf.State == nil {
		return nil, fmt.Errorf("missing session state instance")
	}
	a := &API{
		state: conf.State,
	}
	a.initRouter()
	go func() {
		log.Infow("starting API server", "host", conf.Host, "port", conf.Port)
		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", conf.Host, conf.Port), a.router); err != nil {
			log.Fatalf("failed to start the API server: %v", err)
		}
	}()
	return a, nil
}

// Router returns the chi router for testing purposes
func (a *API) Router() *chi.Mux {
	return a.router
}

// registerHandlers registers all the API handlers.
func (a *API) registerHandlers() {
	log.Infow("register handler", "endpoint", PingEndpoint, "method", "GET")
	a.router.Get(PingEndpoint, func(w http.ResponseWriter, r *http.Request) {
		httpWriteOK(w)
	})
	log.Infow("register handler", "endpoint", CommitmentsEndpoint, "method", "POST")
	a.router.Post(CommitmentsEndpoint, a.newCommitment)
	log.Infow("register handler", "endpoint", CommitmentsEndpoint, "method", "GET")
	a.router.Get(CommitmentsEndpoint, a.events)
	log.Infow("register handler", "endpoint", CommitmentPathEndpoint, "method", "GET")
	a.router.Get(CommitmentPathEndpoint, a.commitmentPath)
	log.Infow("register handler", "endpoint", RootEndpoint, "method", "GET")
	a.router.Get(RootEndpoint, a.root)
	log.Infow("register handler", "endpoint", RootKnownEndpoint, "method", "GET")
	a.router.Get(RootKnownEndpoint, a.rootKnown)
	log.Infow("register handler", "endpoint", NullifiersEndpoint, "method", "POST")
	a.router.Post(NullifiersEndpoint, a.spendNullifier)
	log.Infow("register handler", "endpoint", NullifierEndpoint, "method", "GET")
	a.router.Get(NullifierEndpoint, a.nullifierStatus)
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() {
	a.router = chi.NewRouter()
	a.router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}).Handler)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Throttle(100))
	a.router.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	a.router.Use(middleware.Timeout(45 * time.Second))
	a.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		ErrResourceNotFound.Withf("%s", r.URL.Path).Write(w)
	})

	a.registerHandlers()
}
