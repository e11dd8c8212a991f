package routes

import (
	"net/http"

	"github.com/lifequest/lifequest/internal/app"
	"github.com/lifequest/lifequest/internal/handler"
	"github.com/lifequest/lifequest/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService)
	goal := handler.NewGoalHandler(app.QuestService)
	xp := handler.NewXPHandler(app.XPService)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Auth (rate limited)
	rateLimiter := middleware.RateLimitAuth()
	mux.HandleFunc("POST /signup", rateLimiter(auth.Signup))
	mux.HandleFunc("POST /login", rateLimiter(auth.Login))

	// ============================================================================
	// PROTECTED ROUTES
	// ============================================================================

	mux.HandleFunc("GET /me", middleware.RequireAuth(auth.Me))

	// Goals
	mux.HandleFunc("POST /goals", middleware.RequireAuth(goal.Create))
	mux.HandleFunc("GET /goals", middleware.RequireAuth(goal.Goals))
	mux.HandleFunc("GET /goals/completed", middleware.RequireAuth(goal.CompletedGoals))
	mux.HandleFunc("GET /goals/{id}", middleware.RequireAuth(goal.Goal))
	mux.HandleFunc("DELETE /goals/{id}", middleware.RequireAuth(goal.Delete))

	// Drafting
	mux.HandleFunc("POST /goals/{id}/generate", middleware.RequireAuth(goal.Generate))
	mux.HandleFunc("POST /goals/{id}/regenerate", middleware.RequireAuth(goal.Regenerate))
	mux.HandleFunc("POST /goals/{id}/confirm", middleware.RequireAuth(goal.Confirm))

	// Progress
	mux.HandleFunc("POST /goals/{id}/steps/{stepId}/start", middleware.RequireAuth(goal.StartStep))
	mux.HandleFunc("POST /goals/{id}/steps/{stepId}/complete", middleware.RequireAuth(goal.CompleteStep))
	mux.HandleFunc("POST /goals/{id}/steps/{stepId}/reflect", middleware.RequireAuth(goal.ReflectStep))
	mux.HandleFunc("POST /goals/{id}/finish", middleware.RequireAuth(goal.Finish))

	// XP
	mux.HandleFunc("GET /xp/summary", middleware.RequireAuth(xp.Summary))
	mux.HandleFunc("GET /xp/logs", middleware.RequireAuth(xp.Logs))

	// Unmatched paths get the JSON error shape instead of the mux's text body
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		handler.WriteError(w, r, http.StatusNotFound, "not_found", "Not found")
	})

	// Global middleware chain
	return middleware.Chain(mux,
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.AuthService),
	)
}
