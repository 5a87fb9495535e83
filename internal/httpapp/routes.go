package httpapp

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/camilorojas87/mixtaped/internal/constants"
	"github.com/camilorojas87/mixtaped/internal/domain"
)

type playerStateDTO struct {
	Playing      bool      `json:"playing"`
	Repeat       bool      `json:"repeat"`
	CurrentIndex int       `json:"currentIndex"`
	Current      *trackDTO `json:"current"`
	QueueLength  int       `json:"queueLength"`
}

func (h *Handler) GetPlayerState(w http.ResponseWriter, r *http.Request) {
	state := playerStateDTO{
		Playing:      h.Queue.IsPlaying(),
		Repeat:       h.Controller.Repeat(),
		CurrentIndex: -1,
		QueueLength:  h.Queue.Len(),
	}
	if track, index, ok := h.Queue.Current(); ok {
		dto := toTrackDTO(track)
		state.Current = &dto
		state.CurrentIndex = index
	}
	h.respondJSON(w, http.StatusOK, state)
}

func (h *Handler) Play(w http.ResponseWriter, r *http.Request) {
	if err := h.Controller.Play(); err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.GetPlayerState(w, r)
}

func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	if err := h.Controller.Pause(); err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.GetPlayerState(w, r)
}

func (h *Handler) TogglePlay(w http.ResponseWriter, r *http.Request) {
	if err := h.Controller.TogglePlay(); err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.GetPlayerState(w, r)
}

func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	genre, ok := h.parseGenreParam(w, r)
	if !ok {
		return
	}
	if _, err := h.Controller.Next(r.Context(), genre); err != nil {
		h.respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	h.GetPlayerState(w, r)
}

func (h *Handler) Previous(w http.ResponseWriter, r *http.Request) {
	h.Controller.Previous()
	h.GetPlayerState(w, r)
}

func (h *Handler) Seek(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Seconds float64 `json:"seconds"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Seconds < 0 {
		h.respondError(w, http.StatusBadRequest, "seconds must not be negative")
		return
	}
	if err := h.Controller.Seek(req.Seconds); err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.GetPlayerState(w, r)
}

func (h *Handler) SetRate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rate float64 `json:"rate"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Rate <= 0 {
		h.respondError(w, http.StatusBadRequest, "rate must be positive")
		return
	}
	if err := h.Controller.SetRate(req.Rate); err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.GetPlayerState(w, r)
}

func (h *Handler) SetRepeat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Repeat bool `json:"repeat"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	h.Controller.SetRepeat(req.Repeat)
	h.GetPlayerState(w, r)
}

type queueDTO struct {
	Items        []trackDTO `json:"items"`
	CurrentIndex int        `json:"currentIndex"`
}

func (h *Handler) GetQueue(w http.ResponseWriter, r *http.Request) {
	items := h.Queue.Items()
	dto := queueDTO{
		Items:        make([]trackDTO, 0, len(items)),
		CurrentIndex: -1,
	}
	for _, t := range items {
		dto.Items = append(dto.Items, toTrackDTO(t))
	}
	if _, index, ok := h.Queue.Current(); ok {
		dto.CurrentIndex = index
	}
	h.respondJSON(w, http.StatusOK, dto)
}

func (h *Handler) AddSongs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Genre string `json:"genre"`
		Count int    `json:"count"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	var genre domain.Genre
	if req.Genre != "" {
		parsed, err := domain.ParseGenre(req.Genre)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		genre = parsed
	}
	if req.Count <= 0 {
		req.Count = constants.DefaultBatchSize
	}

	tracks, err := h.Queue.AddSongs(r.Context(), genre, req.Count)
	if err != nil {
		h.respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	added := make([]trackDTO, 0, len(tracks))
	for _, t := range tracks {
		added = append(added, toTrackDTO(t))
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"added": added})
}

func (h *Handler) parseIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid index")
		return 0, false
	}
	return index, true
}

func (h *Handler) PlayAt(w http.ResponseWriter, r *http.Request) {
	index, ok := h.parseIndex(w, r)
	if !ok {
		return
	}
	if index < 0 || index >= h.Queue.Len() {
		h.respondError(w, http.StatusNotFound, "index out of range")
		return
	}
	h.Queue.PlayAt(index)
	if err := h.Controller.Play(); err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.GetPlayerState(w, r)
}

func (h *Handler) RemoveAt(w http.ResponseWriter, r *http.Request) {
	index, ok := h.parseIndex(w, r)
	if !ok {
		return
	}
	h.Queue.Remove(index)
	h.GetQueue(w, r)
}

func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	h.Queue.Reorder(req.From, req.To)
	h.GetQueue(w, r)
}

func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	keepCurrent := r.URL.Query().Get("keepCurrent") == "true"
	h.Queue.Clear(keepCurrent)
	h.GetQueue(w, r)
}

func (h *Handler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	index, ok := h.parseIndex(w, r)
	if !ok {
		return
	}
	items := h.Queue.Items()
	if index < 0 || index >= len(items) {
		h.respondError(w, http.StatusNotFound, "index out of range")
		return
	}
	thumbnail := items[index].Thumbnail
	if len(thumbnail) == 0 {
		h.respondError(w, http.StatusNotFound, "no thumbnail")
		return
	}
	w.Header().Set("Content-Type", constants.MimeTypeJPEG)
	if _, err := w.Write(thumbnail); err != nil {
		h.Logger.Error("Failed to write thumbnail", "error", err)
	}
}

func (h *Handler) ToggleFeedback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SongID int64  `json:"songId"`
		Genre  string `json:"genre"`
		Action string `json:"action"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	genre, err := domain.ParseGenre(req.Genre)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Action != "like" && req.Action != "dislike" {
		h.respondError(w, http.StatusBadRequest, "action must be like or dislike")
		return
	}

	feedback, err := h.Ledger.Toggle(genre, req.SongID, req.Action == "like")
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"feedback": string(feedback)})
}

func (h *Handler) GetFeedback(w http.ResponseWriter, r *http.Request) {
	songID, err := strconv.ParseInt(chi.URLParam(r, "songID"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid song id")
		return
	}

	feedback, err := h.Ledger.Feedback(songID)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"feedback": string(feedback)})
}

func (h *Handler) GenreStats(w http.ResponseWriter, r *http.Request) {
	percentages := h.Engine.GenrePercentages()
	out := make(map[string]float64, len(percentages))
	for genre, p := range percentages {
		out[genre.String()] = p
	}
	h.respondJSON(w, http.StatusOK, out)
}

func (h *Handler) InitializeBaseline(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Genres []string `json:"genres"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	selected := make([]domain.Genre, 0, len(req.Genres))
	for _, raw := range req.Genres {
		genre, err := domain.ParseGenre(raw)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		selected = append(selected, genre)
	}

	if err := h.Engine.InitializeBaseline(selected); err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]bool{"initialized": true})
}

func (h *Handler) ResetPreferences(w http.ResponseWriter, r *http.Request) {
	if err := h.Engine.ResetAll(); err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]bool{"reset": true})
}
