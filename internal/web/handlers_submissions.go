package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/formlog/internal/core"
	"github.com/go-chi/chi/v5"
)

// handleLogSubmission logs a finished form run.
//
// The body is a core.Submission. The form identifier in the path must match
// the one in the body; an empty body identifier takes the path value.
func (s *Server) handleLogSubmission(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")

	body := http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var sub core.Submission
	if err := dec.Decode(&sub); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			s.respondError(w, r, fmt.Errorf("decode submission: %w", err))
			return
		}
		s.respondError(w, r, fmt.Errorf("%w: malformed JSON: %v", core.ErrInvalidSubmission, err))
		return
	}

	switch sub.Form.Identifier {
	case "":
		sub.Form.Identifier = identifier
	case identifier:
	default:
		s.respondError(w, r, fmt.Errorf("%w: form identifier %q does not match path %q",
			core.ErrInvalidSubmission, sub.Form.Identifier, identifier))
		return
	}

	entry, err := s.service.LogSubmission(r.Context(), sub)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/entries/"+entry.ID)
	writeJSON(w, r, http.StatusCreated, entry)
}
