package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/dreamware/shareboard/internal/share"
)

type server struct {
	svc *share.Service
}

func newServer(svc *share.Service) *server {
	return &server{svc: svc}
}

type createRequest struct {
	Board json.RawMessage `json:"board"`
}

type updateRequest struct {
	Token string          `json:"token"`
	Board json.RawMessage `json:"board"`
}

type updateResponse struct {
	OK        bool   `json:"ok"`
	UpdatedAt string `json:"updatedAt"`
	Revision  int64  `json:"revision"`
}

// handleCreate handles POST /share
func (s *server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || missing(req.Board) {
		writeError(w, http.StatusBadRequest, "Missing board payload.")
		return
	}

	created, err := s.svc.Create(r.Context(), req.Board)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleShare dispatches /share/{id} and /share/{id}/changes
func (s *server) handleShare(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/share/")

	if id, ok := strings.CutSuffix(path, "/changes"); ok {
		s.handleChanges(w, r, id)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGet(w, r, path)
	case http.MethodPut:
		s.handlePut(w, r, path)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGet handles GET /share/{id}?token=
func (s *server) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	token := r.URL.Query().Get("token")
	if id == "" || token == "" {
		writeError(w, http.StatusBadRequest, "Missing share identifier or token.")
		return
	}

	state, err := s.svc.Fetch(r.Context(), id, token)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// handlePut handles PUT /share/{id}
func (s *server) handlePut(w http.ResponseWriter, r *http.Request, id string) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || id == "" || req.Token == "" || missing(req.Board) {
		writeError(w, http.StatusBadRequest, "Missing share id, token, or board payload.")
		return
	}

	updated, err := s.svc.Update(r.Context(), id, req.Token, req.Board)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updateResponse{
		OK:        true,
		UpdatedAt: updated.UpdatedAt,
		Revision:  updated.Revision,
	})
}

// handleChanges handles GET /share/{id}/changes?token=&since=
// The request suspends server-side until the board's revision passes
// since or the wait bound elapses; either way it answers 200.
func (s *server) handleChanges(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	token := q.Get("token")
	if id == "" || token == "" {
		writeError(w, http.StatusBadRequest, "Missing share identifier or token.")
		return
	}

	// Absent since means the poller has seen nothing. An unparsable value
	// is treated the same way: the current snapshot answers immediately.
	since := int64(0)
	if raw := q.Get("since"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			parsed = -1
		}
		since = parsed
	}

	// The request context releases the waiter if the client goes away
	result, err := s.svc.WaitForChange(r.Context(), id, token, since)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeServiceError maps service failures to their status and message.
func (s *server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, share.ErrNotFound):
		writeError(w, http.StatusNotFound, "Shared board not found.")
	case errors.Is(err, share.ErrEditRequired):
		writeError(w, http.StatusForbidden, "Editor access required.")
	case errors.Is(err, share.ErrForbidden):
		writeError(w, http.StatusForbidden, "Invalid share token.")
	default:
		log.Printf("share request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal error.")
	}
}

// missing reports whether a board payload is absent. JSON null counts as
// absent, matching the request contract.
func missing(board json.RawMessage) bool {
	return len(board) == 0 || string(board) == "null"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, struct {
		Error string `json:"error"`
	}{Error: message})
}
