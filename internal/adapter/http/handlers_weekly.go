package adapthttp

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"journal/internal/app"
)

func (s *Server) handleWeeklySummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	requested := r.URL.Query().Get("userId")
	if r.ContentLength > 0 {
		var body struct {
			UserID string `json:"userId"`
		}
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if body.UserID != "" {
			requested = body.UserID
		}
	}
	userID, err := s.journalUser(r, requested)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.weekly.Generate(r.Context(), userID)
	if errors.Is(err, app.ErrGenerationFailed) {
		s.log.Warn("weekly summary failed", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, app.ErrGenerationFailed)
		return
	}
	if err != nil {
		s.internalError(w, "weekly summary", err)
		return
	}

	status := http.StatusOK
	if res.Status == app.WeeklyUnavailable {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, res)
}

func (s *Server) handleWeeklySummaryLatest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID, err := s.journalUser(r, r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	latest, err := s.weekly.Latest(r.Context(), userID)
	if err != nil {
		s.internalError(w, "latest weekly summary", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summary": latest})
}
