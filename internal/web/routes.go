package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/bioguard/internal/web/handlers"
	"github.com/kozaktomas/bioguard/internal/web/middleware"
)

func (s *Server) setupRoutes(sessionManager *middleware.SessionManager) {
	authHandler := handlers.NewAuthHandler(s.config, sessionManager, s.controller)
	workflowHandler := handlers.NewWorkflowHandler(s.controller)
	profilesHandler := handlers.NewProfilesHandler(s.store)
	analyticsHandler := handlers.NewAnalyticsHandler(s.store)
	configHandler := handlers.NewConfigHandler(s.config, s.oracle)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Gate routes
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/auth/status", authHandler.Status)

		// Everything else requires an unlocked terminal
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(sessionManager))

			// Workflow
			r.Get("/workflow", workflowHandler.Get)
			r.Post("/workflow/mode", workflowHandler.SetMode)
			r.Post("/workflow/capture", workflowHandler.Capture)
			r.Put("/workflow/draft", workflowHandler.UpdateDraft)
			r.Post("/workflow/draft/commit", workflowHandler.CommitDraft)
			r.Delete("/workflow/draft", workflowHandler.DiscardDraft)

			// Profiles
			r.Get("/profiles", profilesHandler.List)
			r.Get("/profiles/export", profilesHandler.Export)
			r.Get("/profiles/{id}", profilesHandler.Get)
			r.Get("/profiles/{id}/photo", profilesHandler.Photo)
			r.Delete("/profiles/{id}", profilesHandler.Delete)

			// Analytics
			r.Get("/analytics", analyticsHandler.Get)

			// Config
			r.Get("/config", configHandler.Get)
		})
	})

	s.router.Get("/", s.serveIndex)
}

// serveIndex returns a placeholder page until a frontend build is wired in.
func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>Bioguard Core</title>
    <style>
        body { font-family: system-ui, sans-serif; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0; background: #0a1a12; color: #d6f5e3; }
        .container { text-align: center; }
        h1 { color: #2fe38a; }
        p { color: #8fb8a1; }
        a { color: #2fe38a; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Bioguard Core</h1>
        <p>Biometric terminal API is running.</p>
        <p>Health check at <a href="/api/v1/health">/api/v1/health</a></p>
    </div>
</body>
</html>`))
}
