package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/mission"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Serves mission submission and inspection endpoints. Missions run asynchronously; clients poll the event log for progress.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		runner, err := buildRunner(st, cfg.Mission)
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(st, runner),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(st store.Store, runner *mission.Runner) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/missions", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Goal string `json:"goal"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.Goal == "" {
			writeError(w, http.StatusBadRequest, "goal is required")
			return
		}

		// Create the mission synchronously so the ack carries an id the
		// client can poll; the pipeline itself runs detached because the
		// request context dies with the response.
		m, err := runner.Prepare(req.Context(), body.Goal)
		if err != nil {
			zap.L().Error("mission create failed",
				zap.String("goal", body.Goal),
				zap.Error(err))
			writeError(w, http.StatusInternalServerError, "could not create mission")
			return
		}

		go func() {
			summary, err := runner.Execute(context.Background(), m)
			if err != nil {
				zap.L().Error("mission failed",
					zap.String("mission_id", m.ID),
					zap.Error(err))
				return
			}
			zap.L().Info("mission finished",
				zap.String("mission_id", m.ID),
				zap.String("status", string(m.Status)),
				zap.Int("saved", summary.Saved))
		}()

		writeJSON(w, http.StatusAccepted, map[string]string{
			"mission_id": m.ID,
			"status":     string(model.MissionStatusRunning),
			"goal":       body.Goal,
		})
	})

	r.Get("/missions", func(w http.ResponseWriter, req *http.Request) {
		missions, err := st.ListMissions(req.Context(), 50)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "list missions failed")
			return
		}
		writeJSON(w, http.StatusOK, missions)
	})

	r.Get("/missions/{missionID}", func(w http.ResponseWriter, req *http.Request) {
		m, err := st.GetMission(req.Context(), chi.URLParam(req, "missionID"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "get mission failed")
			return
		}
		if m == nil {
			writeError(w, http.StatusNotFound, "mission not found")
			return
		}
		writeJSON(w, http.StatusOK, m)
	})

	r.Get("/missions/{missionID}/events", func(w http.ResponseWriter, req *http.Request) {
		events, err := st.ListEvents(req.Context(), chi.URLParam(req, "missionID"), 200)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "list events failed")
			return
		}
		writeJSON(w, http.StatusOK, events)
	})

	r.Get("/leads", func(w http.ResponseWriter, req *http.Request) {
		filter := model.ListLeadsFilter{
			Status: model.LeadStatus(req.URL.Query().Get("status")),
			Limit:  100,
		}
		leads, err := st.ListLeads(req.Context(), filter)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "list leads failed")
			return
		}
		writeJSON(w, http.StatusOK, leads)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
