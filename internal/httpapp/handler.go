// Package httpapp exposes the player, queue and preference engine over a
// JSON API.
package httpapp

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/camilorojas87/mixtaped/internal/domain"
	"github.com/camilorojas87/mixtaped/internal/logger"
	"github.com/camilorojas87/mixtaped/internal/player"
	"github.com/camilorojas87/mixtaped/internal/recommend"
)

type Handler struct {
	Queue      *player.Queue
	Controller *player.Controller
	Engine     *recommend.Engine
	Ledger     *recommend.Ledger
	Logger     *logger.Logger
}

func NewHandler(queue *player.Queue, controller *player.Controller, engine *recommend.Engine, ledger *recommend.Ledger) *Handler {
	return &Handler{
		Queue:      queue,
		Controller: controller,
		Engine:     engine,
		Ledger:     ledger,
		Logger:     logger.Default().WithComponent("http"),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/player", h.GetPlayerState)
	r.Post("/api/player/play", h.Play)
	r.Post("/api/player/pause", h.Pause)
	r.Post("/api/player/toggle", h.TogglePlay)
	r.Post("/api/player/next", h.Next)
	r.Post("/api/player/previous", h.Previous)
	r.Post("/api/player/seek", h.Seek)
	r.Post("/api/player/rate", h.SetRate)
	r.Post("/api/player/repeat", h.SetRepeat)

	r.Get("/api/queue", h.GetQueue)
	r.Post("/api/queue", h.AddSongs)
	r.Post("/api/queue/play/{index}", h.PlayAt)
	r.Delete("/api/queue/{index}", h.RemoveAt)
	r.Post("/api/queue/reorder", h.Reorder)
	r.Post("/api/queue/clear", h.Clear)
	r.Get("/api/queue/{index}/thumbnail", h.Thumbnail)

	r.Post("/api/feedback", h.ToggleFeedback)
	r.Get("/api/feedback/{songID}", h.GetFeedback)

	r.Get("/api/stats/genres", h.GenreStats)
	r.Post("/api/preferences/baseline", h.InitializeBaseline)
	r.Delete("/api/preferences", h.ResetPreferences)
}

type trackDTO struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Artist        string `json:"artist"`
	Album         string `json:"album"`
	Genre         string `json:"genre"`
	StreamLocator string `json:"streamLocator"`
	HasThumbnail  bool   `json:"hasThumbnail"`
}

func toTrackDTO(t domain.Track) trackDTO {
	return trackDTO{
		ID:            t.ID,
		Title:         t.Title,
		Artist:        t.Artist,
		Album:         t.Album,
		Genre:         t.Genre.String(),
		StreamLocator: t.StreamLocator,
		HasThumbnail:  len(t.Thumbnail) > 0,
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, msg string) {
	h.respondJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// parseGenreParam reads an optional genre from the query string. The empty
// value is valid and means "let the engine pick".
func (h *Handler) parseGenreParam(w http.ResponseWriter, r *http.Request) (domain.Genre, bool) {
	raw := r.URL.Query().Get("genre")
	if raw == "" {
		return "", true
	}
	genre, err := domain.ParseGenre(raw)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return genre, true
}
