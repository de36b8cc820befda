package rpc

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/metric"

	"github.com/batchledger/batchledger/logger"
	"github.com/batchledger/batchledger/observability"
)

const (
	headerContentType = "Content-Type"
	applicationJSON   = "application/json"

	metricsScopeRESTAPI = "rest_api"
)

var allowedCORSHeaders = []string{"Accept", "Accept-Language", "Content-Language", "Origin", headerContentType}

type (
	// Registrar registers new HTTP handlers for given router.
	Registrar interface {
		Register(r *mux.Router)
	}

	// RegistrarFunc type is an adapter to allow the use of ordinary function as Registrar.
	RegistrarFunc func(r *mux.Router)
)

// NewRESTServer creates the read accessor API server.
func NewRESTServer(addr string, maxBodySize int64, observe observability.Observability, registrars ...Registrar) *http.Server {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(http.NotFound)
	apiV1Router := r.PathPrefix("/api/v1").Subrouter()
	apiV1Router.Use(
		handlers.CORS(handlers.AllowedHeaders(allowedCORSHeaders)),
		instrumentHTTP(observe.Meter(metricsScopeRESTAPI), observe.Logger()),
	)

	for _, registrar := range registrars {
		registrar.Register(apiV1Router)
	}

	return &http.Server{
		Addr:              addr,
		ReadTimeout:       3 * time.Second,
		ReadHeaderTimeout: time.Second,
		WriteTimeout:      5 * time.Second,
		IdleTimeout:       30 * time.Second,
		Handler:           http.MaxBytesHandler(r, maxBodySize),
	}
}

func (f RegistrarFunc) Register(r *mux.Router) {
	f(r)
}

func instrumentHTTP(mtr metric.Meter, log *slog.Logger) mux.MiddlewareFunc {
	callCnt, err := mtr.Int64Counter("calls", metric.WithDescription("How many times the endpoint has been called"))
	if err != nil {
		log.Error("creating calls counter", logger.Error(err))
		return func(next http.Handler) http.Handler { return next }
	}
	callDur, err := mtr.Float64Histogram("duration",
		metric.WithDescription("How long it took to serve the request"),
		metric.WithUnit("s"),
	)
	if err != nil {
		log.Error("creating duration histogram", logger.Error(err))
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			callCnt.Add(r.Context(), 1)
			callDur.Record(r.Context(), time.Since(start).Seconds())
		})
	}
}

func writeResponse(w http.ResponseWriter, log *slog.Logger, code int, v any) {
	w.Header().Set(headerContentType, applicationJSON)
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("encoding API response", logger.Error(err))
	}
}

func writeError(w http.ResponseWriter, log *slog.Logger, code int, err error) {
	writeResponse(w, log, code, struct {
		Err string `json:"err"`
	}{Err: err.Error()})
}
