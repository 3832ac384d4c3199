package handlers

import "net/http"

// Routes registers every API route and wraps the mux in request logging
func Routes(mw *Middleware, games *GameHandler, stats *StatsHandler, stream *StreamHandler, health http.HandlerFunc) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", health)
	mux.HandleFunc("GET /api/games", games.ListGames)
	mux.HandleFunc("GET /api/mmse", stats.MMSE)

	// Live sessions
	mux.HandleFunc("POST /api/games/{game}/sessions", mw.RateLimit(mw.RequireAuth(games.StartSession)))
	mux.HandleFunc("GET /api/sessions/{id}", mw.RequireAuth(games.GetSession))
	mux.HandleFunc("POST /api/sessions/{id}/tick", mw.RequireAuth(games.Tick))
	mux.HandleFunc("POST /api/sessions/{id}/select", mw.RequireAuth(games.SelectCard))
	mux.HandleFunc("POST /api/sessions/{id}/complete-level", mw.RequireAuth(games.CompleteLevel))
	mux.HandleFunc("POST /api/sessions/{id}/answer", mw.RequireAuth(games.Answer))
	mux.HandleFunc("POST /api/sessions/{id}/pause", mw.RequireAuth(games.Pause))
	mux.HandleFunc("POST /api/sessions/{id}/resume", mw.RequireAuth(games.Resume))
	mux.HandleFunc("POST /api/sessions/{id}/restart", mw.RequireAuth(games.Restart))
	mux.HandleFunc("POST /api/sessions/{id}/finish", mw.RequireAuth(games.Finish))
	mux.HandleFunc("POST /api/sessions/{id}/quit", mw.RequireAuth(games.Quit))
	mux.HandleFunc("GET /api/sessions/{id}/stream", mw.RequireAuth(stream.Stream))

	// History
	mux.HandleFunc("GET /api/me/sessions", mw.RequireAuth(stats.ListSessions))
	mux.HandleFunc("GET /api/me/sessions/{id}", mw.RequireAuth(stats.GetSession))
	mux.HandleFunc("GET /api/me/stats", mw.RequireAuth(stats.Dashboard))

	return mw.Logging(mux)
}
