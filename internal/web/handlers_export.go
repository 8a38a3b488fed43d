package web

import (
	"mime"
	"net/http"

	"github.com/JonMunkholm/formlog/internal/core"
	"github.com/JonMunkholm/formlog/internal/logging"
	"github.com/go-chi/chi/v5"
)

// handleExport streams the entries matching the query filter through the
// named export profile.
//
// Errors found before the first byte is written get a normal error response.
// Once the download has started the connection is aborted instead, so the
// client never receives a truncated file that looks complete.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	req := core.ExportRequest{
		Profile:  chi.URLParam(r, "profile"),
		Language: s.exportLanguage(r),
		Filter:   filter,
	}

	exp, _, err := s.service.Exporter(req.Profile, req.Language)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	// Surface configuration errors while a JSON error can still be sent.
	if _, err := exp.Headers(); err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", exp.Format().ContentType())
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": exp.OutputFilename()}))

	tw := &trackingWriter{ResponseWriter: w}
	rows, err := s.service.Export(r.Context(), tw, exp, req)
	if err == nil {
		return
	}

	if !tw.written {
		w.Header().Del("Content-Disposition")
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Error("export aborted mid-stream",
		"profile", req.Profile,
		"rows", rows,
		"error", err,
	)
	panic(http.ErrAbortHandler)
}

// trackingWriter records whether any body bytes were sent.
type trackingWriter struct {
	http.ResponseWriter
	written bool
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	t.written = true
	return t.ResponseWriter.Write(p)
}

// Flush keeps streamed CSV flowing through the wrapper.
func (t *trackingWriter) Flush() {
	if f, ok := t.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
