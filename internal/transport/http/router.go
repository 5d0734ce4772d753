package httptransport

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	apptable "chip-ledger/internal/app/table"
	appuser "chip-ledger/internal/app/user"
	"chip-ledger/internal/auth"
	"chip-ledger/internal/config"
	"chip-ledger/internal/mcpserver"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Store is everything the router's services need. *store.Store and
// *memstore.Store both satisfy it.
type Store interface {
	apptable.Store
	appuser.Store
	Ping(ctx context.Context) error
}

func NewRouter(st Store, cfg config.ServerConfig) *chi.Mux {
	tableSvc := apptable.NewService(st, cfg)
	userSvc := appuser.NewService(st)

	tableHandlers := NewTableHandlers(tableSvc)
	userHandlers := NewUserHandlers(userSvc)
	adminHandlers := NewAdminHandlers(st)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(IdentityMiddleware(auth.NewVerifier(cfg.AuthJWTSecret, cfg.SessionCookie)))

	r.With(APILogMiddleware()).Get("/healthz", adminHandlers.Health())

	if cfg.MCPEnabled {
		mcpSrv := mcpserver.New(tableSvc)
		r.With(APILogMiddleware()).MethodFunc(http.MethodOptions, "/mcp", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Allow", "POST, GET, DELETE, OPTIONS")
			w.WriteHeader(http.StatusNoContent)
		})
		r.With(APILogMiddleware()).Method(http.MethodPost, "/mcp", mcpSrv.Handler())
		r.With(APILogMiddleware()).Method(http.MethodGet, "/mcp", mcpSrv.Handler())
		r.With(APILogMiddleware()).Method(http.MethodDelete, "/mcp", mcpSrv.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())

		r.Post("/tables", tableHandlers.Create())
		r.Post("/tables/join", tableHandlers.Join())
		r.Get("/tables/{ref}", tableHandlers.Get())
		r.Post("/tables/{ref}/end", tableHandlers.End())
		r.Post("/tables/{ref}/archive", tableHandlers.Archive())
		r.Post("/tables/{ref}/players", tableHandlers.AddPlayer())
		r.Delete("/tables/{ref}/players/{player_id}", tableHandlers.RemovePlayer())
		r.Post("/tables/{ref}/buyins", tableHandlers.AddBuyIn())
		r.Delete("/tables/{ref}/buyins/{buyin_id}", tableHandlers.RemoveBuyIn())
		r.Post("/tables/{ref}/chipcounts", tableHandlers.UpsertChipCount())
		r.Get("/tables/{ref}/denominations", tableHandlers.GetDenominations())
		r.Put("/tables/{ref}/denominations", tableHandlers.SetDenominations())
		r.Put("/tables/{ref}/end-chip-counts", tableHandlers.SetEndChipCounts())
		r.Get("/tables/{ref}/reconcile", tableHandlers.Reconcile())

		r.Group(func(r chi.Router) {
			r.Use(RequireIdentity)
			r.Get("/user", userHandlers.Me())
			r.Put("/user", userHandlers.UpdateMe())
			r.Get("/user/history", userHandlers.History())
			r.Get("/history/{history_id}", userHandlers.GameHistory())
		})

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminAPIKey))
			r.Route("/debug", func(r chi.Router) {
				r.Use(BodyCaptureMiddleware(4096))
				r.Get("/vars", expvar.Handler().ServeHTTP)
			})
		})
	})
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
