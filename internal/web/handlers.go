package web

// This file contains shared request parsing helpers and the entries page.

import (
	"net/http"
	"strconv"

	"github.com/JonMunkholm/formlog/internal/core"
	"github.com/JonMunkholm/formlog/internal/web/templates"
)

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parseFilter reads identifier, pageId, since and until from the query string.
func parseFilter(r *http.Request) (core.EntryFilter, error) {
	q := r.URL.Query()
	return core.ParseEntryFilter(q.Get("identifier"), q.Get("pageId"), q.Get("since"), q.Get("until"))
}

// exportLanguage picks the header language: an explicit ?lang wins, then the
// best catalog match for Accept-Language.
func (s *Server) exportLanguage(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return s.catalog.Match(lang)
	}
	return s.catalog.Match(r.Header.Get("Accept-Language"))
}

// handleEntriesPage renders the entries overview.
func (s *Server) handleEntriesPage(w http.ResponseWriter, r *http.Request) {
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

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.EntriesPage(templates.EntriesPageData{
		Page:     page,
		Query:    r.URL.Query(),
		Profiles: s.service.Profiles().Names(),
	}).Render(r.Context(), w)
}
