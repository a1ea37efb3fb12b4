package transport

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"sort"
	"time"

	"storefront/internal/database"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// StoreProbe is the part of the store the diagnostics need.
type StoreProbe interface {
	Ping(ctx context.Context) error
	Descriptor() database.Descriptor
}

// SchemaReporter exposes the cold-start guard state.
type SchemaReporter interface {
	Snapshot() database.Snapshot
}

// HealthResponse is the liveness payload; TS is unix milliseconds
type HealthResponse struct {
	OK bool  `json:"ok"`
	TS int64 `json:"ts"`
}

// EnvResponse describes how the process was configured
type EnvResponse struct {
	Hosted         bool   `json:"hosted"`
	HasPostgresURL bool   `json:"has_POSTGRES_URL"`
	HasDatabaseURL bool   `json:"has_DATABASE_URL"`
	Backend        string `json:"backend"`
	Fallback       bool   `json:"fallback"`
	Go             string `json:"go"`
}

// DBResponse reports a successful store ping
type DBResponse struct {
	OK      bool   `json:"ok"`
	Dialect string `json:"dialect"`
	Env     string `json:"env"`
}

// SchemaResponse reports the cold-start guard state
type SchemaResponse struct {
	OK       bool       `json:"ok"`
	State    string     `json:"state"`
	Attempts int64      `json:"attempts"`
	ReadyAt  *time.Time `json:"readyAt,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// DirectoryResponse lists the registered routes
type DirectoryResponse struct {
	OK     bool     `json:"ok"`
	Routes []string `json:"routes"`
}

// SystemHandler serves liveness and diagnostics. None of its routes touch
// the schema, so they answer even while the store is down.
type SystemHandler struct {
	store  StoreProbe
	schema SchemaReporter
	hosted bool
	logger *zap.Logger
	now    func() time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(store StoreProbe, schema SchemaReporter, hosted bool, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{
		store:  store,
		schema: schema,
		hosted: hosted,
		logger: logger,
		now:    time.Now,
	}
}

// RegisterRoutes registers the liveness and diagnostic routes
func (h *SystemHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Directory)
	r.Get("/health", h.Health)
	r.Get("/__env", h.Env)
	r.Get("/__db", h.DB)
	r.Get("/__schema", h.Schema)
}

// Health always answers 200
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, HealthResponse{OK: true, TS: h.now().UnixMilli()})
}

// Env reports the configuration flags that drive store selection
func (h *SystemHandler) Env(w http.ResponseWriter, r *http.Request) {
	d := h.store.Descriptor()
	middleware.RespondWithJSON(w, http.StatusOK, EnvResponse{
		Hosted:         h.hosted,
		HasPostgresURL: os.Getenv("POSTGRES_URL") != "",
		HasDatabaseURL: os.Getenv("DATABASE_URL") != "",
		Backend:        string(d.Backend),
		Fallback:       d.Fallback,
		Go:             runtime.Version(),
	})
}

// DB pings the store
func (h *SystemHandler) DB(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Error("Store ping failed", zap.Error(err))
		middleware.RespondWithFailure(w, err)
		return
	}

	env := "local"
	if h.hosted {
		env = "hosted"
	}
	middleware.RespondWithJSON(w, http.StatusOK, DBResponse{
		OK:      true,
		Dialect: string(h.store.Descriptor().Backend),
		Env:     env,
	})
}

// Schema reports the cold-start guard state
func (h *SystemHandler) Schema(w http.ResponseWriter, r *http.Request) {
	snap := h.schema.Snapshot()

	resp := SchemaResponse{
		OK:       snap.State == database.StateReady,
		State:    snap.State.String(),
		Attempts: snap.Attempts,
	}
	if !snap.ReadyAt.IsZero() {
		readyAt := snap.ReadyAt
		resp.ReadyAt = &readyAt
	}
	if snap.LastError != nil {
		resp.Error = snap.LastError.Error()
	}

	middleware.RespondWithJSON(w, http.StatusOK, resp)
}

// Directory lists every route registered on the router serving the request
func (h *SystemHandler) Directory(w http.ResponseWriter, r *http.Request) {
	routes := []string{}

	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.Routes != nil {
		seen := map[string]bool{}
		walk := func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
			if !seen[route] {
				seen[route] = true
				routes = append(routes, route)
			}
			return nil
		}
		if err := chi.Walk(rctx.Routes, walk); err != nil {
			h.logger.Warn("Failed to walk routes", zap.Error(err))
		}
		sort.Strings(routes)
	}

	middleware.RespondWithJSON(w, http.StatusOK, DirectoryResponse{OK: true, Routes: routes})
}
