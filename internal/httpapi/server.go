// Package httpapi exposes the query engine and the chat service over HTTP under /api/crypto.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"coin-insights/internal/chat"
	"coin-insights/internal/observability"
	"coin-insights/internal/query"
)

// Prefix is the route prefix of every API endpoint.
const Prefix = "/api/crypto"

// Asker answers chat questions.
type Asker interface {
	Ask(ctx context.Context, question string) (chat.Reply, error)
}

// Options carries the optional pieces of the API.
type Options struct {
	// ChatLimiter throttles /chat when set.
	ChatLimiter *rate.Limiter
}

// API holds the handlers' dependencies.
type API struct {
	engine  *query.Engine
	chat    Asker
	metrics *observability.Metrics
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// New constructs the API.
func New(engine *query.Engine, asker Asker, metrics *observability.Metrics, opts Options, logger zerolog.Logger) *API {
	if metrics == nil {
		metrics = observability.NewMetrics("")
	}
	return &API{
		engine:  engine,
		chat:    asker,
		metrics: metrics,
		limiter: opts.ChatLimiter,
		logger:  logger.With().Str("component", "http").Logger(),
	}
}

// Router builds the route table wrapped in the middleware chain.
func (a *API) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(a.recoverer, requestID, a.observe, cors)

	r.HandleFunc(Prefix, a.handleHello).Methods(http.MethodGet)

	api := r.PathPrefix(Prefix).Subrouter()
	api.HandleFunc("/", a.handleHello).Methods(http.MethodGet)
	api.HandleFunc("/summary", a.handleSummary).Methods(http.MethodGet)
	api.HandleFunc("/allNames", a.handleNames).Methods(http.MethodGet)
	api.HandleFunc("/healthz", a.handleHealth).Methods(http.MethodGet)
	api.Handle("/metrics", a.metrics.Handler()).Methods(http.MethodGet)
	api.HandleFunc("/data", a.handleRange).Methods(http.MethodPost)
	api.HandleFunc("/date", a.handleSnapshot).Methods(http.MethodPost)
	api.HandleFunc("/graph_most_interesting", a.handleMostInteresting).Methods(http.MethodPost)
	api.HandleFunc("/stats", a.handleStats).Methods(http.MethodPost)
	api.HandleFunc("/most_volatile_stable", a.handleVolatility).Methods(http.MethodPost)
	api.HandleFunc("/chat", a.handleChat).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method == http.MethodOptions {
			writeCORSHeaders(w)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}
