package adapthttp

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"journal/internal/app"
)

var errInternal = errors.New("internal error")

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createEntry(w, r)
	case http.MethodGet:
		s.listEntries(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) createEntry(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text            string `json:"text"`
		UserID          string `json:"userId"`
		IsReflection    bool   `json:"isReflection"`
		OriginalEntryID string `json:"originalEntryId"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	text, err := s.sanitizer.EntryText(body.Text)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	userID, err := s.journalUser(r, body.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	original, err := s.sanitizer.UserID(body.OriginalEntryID)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid originalEntryId"))
		return
	}

	entry, err := s.entries.Create(r.Context(), app.NewEntry{
		UserID:          userID,
		Text:            text,
		IsReflection:    body.IsReflection,
		OriginalEntryID: original,
	})
	if err != nil {
		s.internalError(w, "create entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	userID, err := s.journalUser(r, r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	skip := intQuery(r, "skip", 0)
	limit := intQuery(r, "limit", 0)

	items, err := s.entries.ListRecent(r.Context(), userID, skip, limit)
	if err != nil {
		s.internalError(w, "list entries", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID, err := s.journalUser(r, r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := s.insights.Get(r.Context(), userID, r.URL.Query().Get("period"))
	if err != nil {
		s.internalError(w, "insights", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGarden(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID, err := s.journalUser(r, r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	g, err := s.garden.Get(r.Context(), userID)
	if err != nil {
		s.internalError(w, "garden", err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleReflection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID, err := s.journalUser(r, r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := s.reflection.Pick(r.Context(), userID, listQuery(r, "exclude"))
	if err != nil {
		s.internalError(w, "reflection", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleReflections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID, err := s.journalUser(r, r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	items, err := s.reflection.ListReflections(r.Context(), userID, r.URL.Query().Get("originalEntryId"))
	if err != nil {
		s.internalError(w, "list reflections", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.log.Error(op+" failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, errInternal)
}
