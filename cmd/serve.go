package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/zonebalance-cli/internal/balance"
	"github.com/sells-group/zonebalance-cli/internal/config"
	"github.com/sells-group/zonebalance-cli/internal/render"
)

var (
	serveInput string
	servePort  int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve aggregated zone results over HTTP",
	Long:  "Aggregates the input CSV once at startup and serves the classified zones as JSON (/api/zones, /api/summary) and as an interactive map (/map).",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := config.Validate(cfg, "serve"); err != nil {
			return err
		}

		out, err := runAggregation(ctx, serveInput, cfg)
		if err != nil {
			return err
		}

		env := &serveEnv{
			runID: uuid.NewString(),
			out:   out,
			cfg:   cfg,
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.String("run_id", env.runID),
			zap.Int("zones", len(out.Results)),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveInput, "input", "", "path to events CSV (required)")
	_ = serveCmd.MarkFlagRequired("input")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// serveEnv holds the immutable aggregation snapshot the handlers read.
type serveEnv struct {
	runID string
	out   *aggregationOutput
	cfg   *config.Config
}

// newRouter builds the zone API router with CORS and rate limiting.
func newRouter(env *serveEnv) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: env.cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
	}))
	r.Use(rateLimiter(rate.NewLimiter(rate.Limit(env.cfg.Server.RateLimit), env.cfg.Server.RateBurst)))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/zones", env.handleZones)
	r.Get("/api/summary", env.handleSummary)

	r.Get("/map", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		meta := render.Meta{
			RunID:          env.runID,
			CellSize:       env.cfg.Engine.CellSize,
			CapacityFactor: env.cfg.Engine.CapacityFactor,
			Threshold:      env.cfg.Engine.ActivityThreshold,
		}
		if err := render.WriteHTML(w, env.out.Results, env.out.Grid, env.out.Proj, meta); err != nil {
			zap.L().Error("render map", zap.Error(err))
		}
	})

	return r
}

// handleZones returns the classified zones, optionally filtered by the
// hour and status query parameters.
func (env *serveEnv) handleZones(w http.ResponseWriter, r *http.Request) {
	results := env.out.Results

	if hourStr := r.URL.Query().Get("hour"); hourStr != "" {
		hour, err := strconv.Atoi(hourStr)
		if err != nil || hour < 0 || hour > 23 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "hour must be an integer in [0,23]"})
			return
		}
		results = filterZones(results, func(z balance.ZoneResult) bool { return z.Hour == hour })
	}

	if status := r.URL.Query().Get("status"); status != "" {
		switch balance.ZoneStatus(status) {
		case balance.StatusNetSupply, balance.StatusNetDemand, balance.StatusBalanced, balance.StatusUnsupported:
		default:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown status " + status})
			return
		}
		results = filterZones(results, func(z balance.ZoneResult) bool { return z.Status == balance.ZoneStatus(status) })
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"run_id": env.runID,
		"count":  len(results),
		"zones":  results,
	})
}

// handleSummary returns run metadata and per-status totals.
func (env *serveEnv) handleSummary(w http.ResponseWriter, _ *http.Request) {
	counts := statusCounts(env.out.Results)
	writeJSON(w, http.StatusOK, map[string]any{
		"run_id":       env.runID,
		"accepted":     env.out.Report.Accepted,
		"rejected":     env.out.Report.Rejected,
		"grid_cols":    env.out.Grid.Cols,
		"grid_rows":    env.out.Grid.Rows,
		"cell_size_m":  env.out.Grid.CellSize,
		"active_zones": len(env.out.Results),
		"net_supply":   counts[balance.StatusNetSupply],
		"net_demand":   counts[balance.StatusNetDemand],
		"balanced":     counts[balance.StatusBalanced],
		"unsupported":  counts[balance.StatusUnsupported],
		"capacity":     env.cfg.Engine.CapacityFactor,
		"threshold":    env.cfg.Engine.ActivityThreshold,
	})
}

func filterZones(results []balance.ZoneResult, keep func(balance.ZoneResult) bool) []balance.ZoneResult {
	filtered := make([]balance.ZoneResult, 0, len(results))
	for _, r := range results {
		if keep(r) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// rateLimiter rejects requests beyond the configured sustained rate.
func rateLimiter(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
