package web

import (
	"net/http"

	"github.com/JonMunkholm/formlog/internal/core"
	"github.com/go-chi/chi/v5"
)

// entryListResponse is the JSON body of GET /api/entries.
type entryListResponse struct {
	core.EntryPage
	TotalPages int `json:"totalPages"`
}

// profileResponse describes one export profile in GET /api/profiles.
type profileResponse struct {
	Name         string   `json:"name"`
	Format       string   `json:"format"`
	Filename     string   `json:"filename"`
	DateFormat   string   `json:"dateTimeFormat"`
	ColumnLabels []string `json:"columns"`
}

// handleListEntries returns one page of entries, newest first.
func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	page, err := s.service.ListEntries(r.Context(), filter,
		parseIntParam(r, "page", 1),
		parseIntParam(r, "pageSize", core.DefaultPageSize),
	)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if page.Entries == nil {
		page.Entries = []core.Entry{}
	}
	writeJSON(w, r, http.StatusOK, entryListResponse{EntryPage: page, TotalPages: page.TotalPages()})
}

// handleGetEntry returns a single entry.
func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := s.service.GetEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, entry)
}

// handleListProfiles lists the export profiles with headers in the request language.
func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	lang := s.exportLanguage(r)

	names := s.service.Profiles().Names()
	out := make([]profileResponse, 0, len(names))
	for _, name := range names {
		exp, profile, err := s.service.Exporter(name, lang)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		headers, err := exp.Headers()
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		out = append(out, profileResponse{
			Name:         name,
			Format:       exp.Format().Name(),
			Filename:     exp.OutputFilename(),
			DateFormat:   profile.DateFormat(),
			ColumnLabels: headers,
		})
	}

	writeJSON(w, r, http.StatusOK, out)
}
