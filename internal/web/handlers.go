package web

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JonMunkholm/feedclean/internal/history"
	"github.com/a-h/templ"
)

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleDashboard renders the recent runs page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	runs, err := s.service.RecentRuns(r.Context(), s.cfg.History.RecentLimit)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	templ.Handler(dashboardPage(runs, s.service.LimiterStatus())).ServeHTTP(w, r)
}

// handleConvert converts an uploaded TSV or CSV feed and returns the
// canonical CSV with the derived price column.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	file, header, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	defer file.Close()

	var buf bytes.Buffer
	result, run, err := s.service.ConvertUpload(r.Context(), header.Filename, file, &buf)
	w.Header().Set("X-Run-ID", run.ID.String())
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("X-Detected-Format", result.Delimiter.String())
	w.Header().Set("X-Rows", strconv.Itoa(result.Rows))
	w.Header().Set("X-Skipped-Rows", strconv.Itoa(result.Skipped))
	writeCSV(w, outputName(header.Filename, "converted"), &buf)
}

// handleFilter removes knitwear rows without a jumper reference from an
// uploaded CSV feed.
func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	file, header, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	defer file.Close()

	var buf bytes.Buffer
	result, run, err := s.service.FilterUpload(r.Context(), header.Filename, file, &buf)
	w.Header().Set("X-Run-ID", run.ID.String())
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("X-Rows", strconv.Itoa(result.Stats.Total))
	w.Header().Set("X-Kept-Rows", strconv.Itoa(result.Kept))
	w.Header().Set("X-Removed-Rows", strconv.Itoa(result.Removed))
	w.Header().Set("X-Skipped-Rows", strconv.Itoa(result.Skipped))
	w.Header().Set("X-Knit-Rows", strconv.Itoa(result.Stats.Knit))
	w.Header().Set("X-Knit-Without-Jumper", strconv.Itoa(result.Stats.KnitWithoutJumper))
	writeCSV(w, outputName(header.Filename, "filtered"), &buf)
}

// handleRuns returns recent runs, newest first.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", s.cfg.History.RecentLimit)

	runs, err := s.service.RecentRuns(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []history.Run{}
	}

	writeJSON(w, map[string]any{"runs": runs})
}

// handleStatus reports the run limiter state.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.LimiterStatus())
}

// readUpload returns the multipart "file" part, bounded by the configured
// maximum upload size.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return nil, nil, fmt.Errorf("%w: limit is %d bytes", errFileTooLarge, maxSize)
		}
		return nil, nil, fmt.Errorf("%w: %v", errNoFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errNoFile, err)
	}
	return file, header, nil
}

// writeCSV sends buf as a CSV attachment.
func writeCSV(w http.ResponseWriter, filename string, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// outputName derives the download name from the uploaded file name,
// e.g. ("feed.tsv", "converted") -> "feed_converted.csv".
func outputName(uploaded, suffix string) string {
	base := filepath.Base(uploaded)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == "/" {
		stem = "feed"
	}
	return stem + "_" + suffix + ".csv"
}

// parseIntParam parses a positive integer query parameter with a default value.
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
