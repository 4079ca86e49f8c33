package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/feedclean/internal/config"
	"github.com/JonMunkholm/feedclean/internal/feed"
	"github.com/JonMunkholm/feedclean/internal/history"
)

const testFeed = "id\tproduct_name\tsearch_price\n" +
	"1\tWool Knit Jumper\t19.99\n" +
	"2\tCotton Knit Cardigan\tabc\n" +
	"3\tLeather Boots\t5\n"

func newTestServer(t *testing.T, maxFileSize int64) (*Server, *feed.RunLimiter) {
	t.Helper()

	store, err := history.OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{
		Server:  config.ServerConfig{Port: 8080, RequestTimeout: 10 * time.Second},
		Upload:  config.UploadConfig{MaxFileSize: maxFileSize, MaxConcurrent: 1, MaxWaitTime: 20 * time.Millisecond},
		History: config.HistoryConfig{Driver: "sqlite", RecentLimit: 50},
	}
	limiter := feed.NewRunLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)
	return NewServer(feed.NewService(store, limiter, feed.Settings{}), cfg), limiter
}

func uploadRequest(t *testing.T, path, filename, content string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	part.Write([]byte(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v (body %q)", err, rec.Body.String())
	}
	return resp
}

func TestHandleConvert(t *testing.T) {
	s, _ := newTestServer(t, 1<<20)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, uploadRequest(t, "/api/convert", "feed.tsv", testFeed))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("X-Detected-Format"); got != "tsv" {
		t.Errorf("X-Detected-Format = %q, want tsv", got)
	}
	if got := rec.Header().Get("X-Rows"); got != "3" {
		t.Errorf("X-Rows = %q, want 3", got)
	}
	if rec.Header().Get("X-Run-ID") == "" {
		t.Error("X-Run-ID header missing")
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "feed_converted.csv") {
		t.Errorf("Content-Disposition = %q", got)
	}

	want := "id,product_name,search_price,price_edited\n" +
		"1,Wool Knit Jumper,19.99,19.99\n" +
		"2,Cotton Knit Cardigan,abc,0.0\n" +
		"3,Leather Boots,5,5.0\n"
	if rec.Body.String() != want {
		t.Errorf("body =\n%q\nwant\n%q", rec.Body.String(), want)
	}
}

func TestHandleConvert_MissingPriceColumn(t *testing.T) {
	s, _ := newTestServer(t, 1<<20)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, uploadRequest(t, "/api/convert", "feed.csv", "id,price\n1,2\n"))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.Code != "VAL004" {
		t.Errorf("code = %q, want VAL004", resp.Code)
	}
	if resp.RunID == "" {
		t.Error("error body should carry the run ID")
	}
}

func TestHandleFilter(t *testing.T) {
	s, _ := newTestServer(t, 1<<20)

	input := "id,product_name\n1,Wool Knit Jumper\n2,Cotton Knit Cardigan\n3,Leather Boots\n"
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, uploadRequest(t, "/api/filter", "priced.csv", input))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("X-Removed-Rows"); got != "1" {
		t.Errorf("X-Removed-Rows = %q, want 1", got)
	}
	if got := rec.Header().Get("X-Knit-Rows"); got != "2" {
		t.Errorf("X-Knit-Rows = %q, want 2", got)
	}

	want := "id,product_name\n1,Wool Knit Jumper\n3,Leather Boots\n"
	if rec.Body.String() != want {
		t.Errorf("body = %q, want %q", rec.Body.String(), want)
	}
}

func TestHandleUpload_Errors(t *testing.T) {
	tests := []struct {
		name       string
		req        func(t *testing.T) *http.Request
		wantStatus int
		wantCode   string
	}{
		{
			name: "no file part",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader("x"))
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "FILE004",
		},
		{
			name: "too large",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/filter", "big.csv", "a\n"+strings.Repeat("x\n", 1024))
			},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantCode:   "FILE001",
		},
		{
			name: "empty file",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/filter", "empty.csv", "")
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "FILE005",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, 512)

			rec := httptest.NewRecorder()
			s.Router().ServeHTTP(rec, tt.req(t))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if resp := decodeError(t, rec); resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestHandleUpload_Busy(t *testing.T) {
	s, limiter := newTestServer(t, 1<<20)
	if !limiter.TryAcquire() {
		t.Fatal("TryAcquire() failed")
	}
	defer limiter.Release()

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, uploadRequest(t, "/api/convert", "feed.tsv", testFeed))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "RUN002" {
		t.Errorf("code = %q, want RUN002", resp.Code)
	}
}

func TestHandleRunsAndDashboard(t *testing.T) {
	s, _ := newTestServer(t, 1<<20)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, uploadRequest(t, "/api/convert", "<i>feed.tsv", testFeed))
	if rec.Code != http.StatusOK {
		t.Fatalf("convert status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("runs status = %d", rec.Code)
	}
	var body struct {
		Runs []history.Run `json:"runs"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode runs: %v", err)
	}
	if len(body.Runs) != 1 || body.Runs[0].Pipeline != history.PipelineConvert {
		t.Errorf("runs = %+v", body.Runs)
	}

	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d", rec.Code)
	}
	page := rec.Body.String()
	if !strings.Contains(page, "&lt;i&gt;feed.tsv") {
		t.Error("dashboard should list the escaped input name")
	}
	if strings.Contains(page, "<i>feed") {
		t.Error("dashboard rendered unescaped input")
	}
}

func TestHandleHealthAndStatus(t *testing.T) {
	s, _ := newTestServer(t, 1<<20)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("health = %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}

	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	var status feed.RunLimiterStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.MaxConcurrent != 1 {
		t.Errorf("MaxConcurrent = %d, want 1", status.MaxConcurrent)
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		in, suffix, want string
	}{
		{"feed.tsv", "converted", "feed_converted.csv"},
		{"dir/priced.csv", "filtered", "priced_filtered.csv"},
		{"", "converted", "feed_converted.csv"},
	}

	for _, tt := range tests {
		if got := outputName(tt.in, tt.suffix); got != tt.want {
			t.Errorf("outputName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
