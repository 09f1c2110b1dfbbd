package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fleetgrid/battleship-go/internal/model"
)

const defaultSummaryPageSize = 20

type handler struct {
	cfg RouterConfig
}

func newHandler(cfg RouterConfig) *handler {
	return &handler{cfg: cfg}
}

func (h *handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusResponse is the read-only view of the server for dashboards
type statusResponse struct {
	Connections int               `json:"connections"`
	QueueDepth  int               `json:"queue_depth"`
	Waiting     []model.PlayerName `json:"waiting"`
	ActiveMatch *activeMatchView  `json:"active_match,omitempty"`
}

type activeMatchView struct {
	ID         model.MatchID    `json:"id"`
	Phase      model.Phase      `json:"phase"`
	Players    [2]model.PlayerName `json:"players"`
	Spectators []model.PlayerName  `json:"spectators,omitempty"`
	ShipsLeft  map[model.PlayerName]int `json:"ships_left,omitempty"`
}

func (h *handler) Status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Connections: h.cfg.Registry.ConnectedCount(),
		QueueDepth:  h.cfg.Queue.Len(),
		Waiting:     h.cfg.Queue.Waiting(),
	}

	if matchID, ok := h.cfg.Sessions.ActiveMatch(); ok {
		if view, err := h.cfg.Matches.View(r.Context(), matchID); err == nil {
			resp.ActiveMatch = &activeMatchView{
				ID:         view.Match.ID,
				Phase:      view.Match.Phase,
				Players:    view.Match.Players,
				Spectators: view.Match.Spectators,
				ShipsLeft:  view.ShipsLeft,
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

type playerRecordResponse struct {
	Name       model.PlayerName `json:"name"`
	Wins       int              `json:"wins"`
	Losses     int              `json:"losses"`
	ShotsFired int              `json:"shots_fired"`
	Hits       int              `json:"hits"`
	Accuracy   float64          `json:"accuracy"`
}

func (h *handler) PlayerRecord(w http.ResponseWriter, r *http.Request) {
	name := model.PlayerName(mux.Vars(r)["name"])

	record, err := h.cfg.Storage.GetPlayerRecord(r.Context(), name)
	if err != nil {
		if errors.Is(err, model.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "no record for this player")
			return
		}
		h.serverError(r.Context(), w, "get player record", err)
		return
	}

	writeJSON(w, http.StatusOK, playerRecordResponse{
		Name:       record.Name,
		Wins:       record.Wins,
		Losses:     record.Losses,
		ShotsFired: record.ShotsFired,
		Hits:       record.Hits,
		Accuracy:   record.Accuracy(),
	})
}

func (h *handler) RecentMatches(w http.ResponseWriter, r *http.Request) {
	limit := defaultSummaryPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	summaries, err := h.cfg.Storage.ListMatchSummaries(r.Context(), limit)
	if err != nil {
		h.serverError(r.Context(), w, "list match summaries", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"matches": summaries})
}

func (h *handler) serverError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	h.cfg.Logger.ErrorContext(ctx, "request failed",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
