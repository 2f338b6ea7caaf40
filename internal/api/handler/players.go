package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/rkdansdlf/kbo-data/internal/api/respond"
)

func playerID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "playerID"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// seasonFilter reads the optional ?season= query parameter. Zero means
// all seasons; the prepared statements treat 0 as no filter.
func seasonFilter(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("season")
	if raw == "" {
		return 0, true
	}
	season, err := strconv.Atoi(raw)
	if err != nil || season < 0 {
		return 0, false
	}
	return season, true
}

// GetPlayer returns one player identity record.
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(r)
	if !ok {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_PLAYER_ID", "playerID must be a positive integer")
		return
	}

	var raw []byte
	err := h.pool.QueryRow(r.Context(), "api_player", id).Scan(&raw)
	if err == pgx.ErrNoRows || (err == nil && raw == nil) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "no player with that id")
		return
	}
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED", "player lookup failed")
		return
	}
	respond.WriteRawJSON(w, http.StatusOK, raw)
}

// GetPlayerBatting returns a player's batting records, optionally
// filtered to one season.
func (h *Handler) GetPlayerBatting(w http.ResponseWriter, r *http.Request) {
	h.playerSeasons(w, r, "api_player_batting")
}

// GetPlayerPitching returns a player's pitching records, optionally
// filtered to one season.
func (h *Handler) GetPlayerPitching(w http.ResponseWriter, r *http.Request) {
	h.playerSeasons(w, r, "api_player_pitching")
}

// GetPlayerFielding returns a player's fielding records, one per
// (season, position), optionally filtered to one season.
func (h *Handler) GetPlayerFielding(w http.ResponseWriter, r *http.Request) {
	h.playerSeasons(w, r, "api_player_fielding")
}

func (h *Handler) playerSeasons(w http.ResponseWriter, r *http.Request, stmt string) {
	id, ok := playerID(r)
	if !ok {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_PLAYER_ID", "playerID must be a positive integer")
		return
	}
	season, ok := seasonFilter(r)
	if !ok {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_SEASON", "season must be a non-negative integer")
		return
	}

	var raw []byte
	err := h.pool.QueryRow(r.Context(), stmt, id, season).Scan(&raw)
	if err != nil && err != pgx.ErrNoRows {
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED", "record lookup failed")
		return
	}
	if raw == nil {
		// json_agg over zero rows is NULL; the API contract is an empty list.
		raw = []byte("[]")
	}
	respond.WriteRawJSON(w, http.StatusOK, raw)
}

// GetLatestRuns returns the most recent crawl-run summaries.
func (h *Handler) GetLatestRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	var raw []byte
	err := h.pool.QueryRow(r.Context(), "api_latest_runs", limit).Scan(&raw)
	if err != nil && err != pgx.ErrNoRows {
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED", "run lookup failed")
		return
	}
	if raw == nil {
		raw = []byte("[]")
	}
	respond.WriteRawJSON(w, http.StatusOK, raw)
}

// GetQueueStatus reports how many units of work remain pending.
func (h *Handler) GetQueueStatus(w http.ResponseWriter, r *http.Request) {
	var pending int
	if err := h.pool.QueryRow(r.Context(), "queue_pending_count").Scan(&pending); err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED", "queue lookup failed")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"pending": pending,
	})
}
