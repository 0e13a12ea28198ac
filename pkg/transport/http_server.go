package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/raywall/fast-service-simulator/pkg/engine"
	"github.com/raywall/fast-service-simulator/pkg/logger"
	"github.com/raywall/fast-service-simulator/pkg/scenario"
	"github.com/rs/zerolog/log"
)

const (
	HeaderCorrelationID = "x-correlation-id"
	HeaderLatency       = "x-latency-ms"

	// AdminPrefix agrupa as rotas administrativas, fora do espaço simulado.
	AdminPrefix = "/_simulator"

	maxBodyBytes    = 10 << 20
	shutdownTimeout = 10 * time.Second
)

// Simulator é o contrato do engine consumido pelos adaptadores.
type Simulator interface {
	engine.Executor
	engine.Reloader
	Snapshot() *scenario.Generation
}

// NewRouter monta o roteador: rotas administrativas e um catch-all que delega ao engine.
func NewRouter(sim Simulator) http.Handler {
	router := mux.NewRouter()
	// Os paths chegam ao resolvedor sem normalização ("//" é significativo).
	router.SkipClean(true)

	admin := router.PathPrefix(AdminPrefix).Subrouter()
	admin.HandleFunc("/scenarios", listScenariosHandler(sim)).Methods(http.MethodGet)
	admin.HandleFunc("/reload", reloadHandler(sim)).Methods(http.MethodPost)

	router.PathPrefix("/").HandlerFunc(simulateHandler(sim))

	return ObservabilityMiddleware(router)
}

// StartHTTPServer atende até ctx ser cancelado e então encerra graciosamente.
func StartHTTPServer(ctx context.Context, sim Simulator, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           NewRouter(sim),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("Servidor HTTP ouvindo em %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("Encerrando servidor HTTP")
		return srv.Shutdown(shutdownCtx)
	}
}

func simulateHandler(sim Simulator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		defer r.Body.Close()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "falha ao ler o corpo"})
			return
		}

		headers := make(map[string]string, len(r.Header))
		for k, v := range r.Header {
			if len(v) > 0 {
				headers[k] = v[0]
			}
		}

		req := scenario.Request{
			Method:  r.Method,
			Path:    r.URL.Path,
			Headers: headers,
			Query:   r.URL.Query(),
			Body:    body,
		}

		res, err := sim.Execute(r.Context(), req)
		if err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("Erro crítico na simulação")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}

		for k, v := range res.Headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(res.Status)
		_, _ = w.Write(res.Body)
	}
}

// ScenarioView é a representação de um cenário na API administrativa.
type ScenarioView struct {
	Name        string   `json:"name"`
	Methods     []string `json:"methods,omitempty"`
	Path        string   `json:"path,omitempty"`
	QueryParams []string `json:"query_params,omitempty"`
	Headers     []string `json:"headers,omitempty"`
	Generated   bool     `json:"generated"`
	OperationID string   `json:"operation_id,omitempty"`
	Source      string   `json:"source,omitempty"`
}

// ScenarioList lista a geração corrente: Scenarios na ordem de declaração e Ranked na
// ordem em que o tier de pattern os avalia.
type ScenarioList struct {
	Generation uint64         `json:"generation"`
	Scenarios  []ScenarioView `json:"scenarios"`
	Ranked     []string       `json:"ranked"`
}

func listScenariosHandler(sim Simulator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, describe(sim.Snapshot()))
	}
}

func describe(gen *scenario.Generation) ScenarioList {
	out := ScenarioList{
		Generation: gen.Number,
		Scenarios:  make([]ScenarioView, 0, gen.Len()),
		Ranked:     []string{},
	}
	for _, d := range gen.Scenarios() {
		view := ScenarioView{
			Name:        d.Name,
			Methods:     d.Methods(),
			Path:        d.Path(),
			Generated:   d.Generated,
			OperationID: d.OperationID,
			Source:      d.Source,
		}
		if d.Route != nil {
			view.QueryParams = d.Route.QueryParams
			view.Headers = d.Route.Headers
		}
		out.Scenarios = append(out.Scenarios, view)
	}
	for _, d := range gen.Ranked() {
		out.Ranked = append(out.Ranked, d.Name)
	}
	return out
}

func reloadHandler(sim Simulator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sim.Reload(r.Context()); err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("Falha no reload administrativo")
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"error":      err.Error(),
				"generation": sim.Snapshot().Number,
			})
			return
		}
		gen := sim.Snapshot()
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"generation": gen.Number,
			"scenarios":  gen.Len(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Erro ao encode response")
	}
}

// --- MIDDLEWARE DE OBSERVABILIDADE ---
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode  int
	startTime   time.Time
	wroteHeader bool
}

func (rw *responseWriterWrapper) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	duration := time.Since(rw.startTime)
	rw.Header().Set(HeaderLatency, fmt.Sprintf("%d", duration.Milliseconds()))
	rw.ResponseWriter.WriteHeader(code)
	rw.wroteHeader = true
}

func (rw *responseWriterWrapper) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func ObservabilityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		corrID := r.Header.Get(HeaderCorrelationID)
		if corrID == "" {
			corrID = uuid.NewString()
		}
		w.Header().Set(HeaderCorrelationID, corrID)

		reqLogger := log.With().Str("correlation_id", corrID).Logger()
		ctx := reqLogger.WithContext(r.Context())
		ctx = logger.WithCorrelationID(ctx, corrID)

		wrapper := &responseWriterWrapper{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			startTime:      start,
		}

		next.ServeHTTP(wrapper, r.WithContext(ctx))

		reqLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapper.statusCode).
			Str("scenario", wrapper.Header().Get(engine.HeaderScenario)).
			Int64("latency_ms", time.Since(start).Milliseconds()).
			Msg("request completed")
	})
}
