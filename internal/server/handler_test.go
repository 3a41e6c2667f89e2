package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"niviskar/internal/extractor"
	"niviskar/internal/logging"
	"niviskar/internal/metrics"
	"niviskar/internal/summarizer"
)

const article = "Coastal wetlands store large amounts of carbon in their soils. " +
	"Researchers measured carbon storage across forty restoration sites. " +
	"The restoration sites gained carbon faster than untouched wetlands. " +
	"However, storage slowed once the vegetation matured after a decade. " +
	"In conclusion, restoration is a practical way to increase carbon storage."

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    summaryResponse `json:"data"`
	Error   string          `json:"error"`
}

func newTestRouter(t *testing.T, maxUpload int64) (http.Handler, *metrics.Metrics) {
	t.Helper()
	m := metrics.New()
	h := NewHandler(logging.Discard(), nil, m, Options{
		Level:     summarizer.Student,
		MaxUpload: maxUpload,
		Extract:   extractor.DefaultOptions(),
	})
	h.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return NewRouter(h), m
}

func jsonRequest(t *testing.T, target string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func uploadRequest(t *testing.T, target, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(router http.Handler, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func TestHandleSummarize_JSON(t *testing.T) {
	router, m := newTestRouter(t, 1<<20)

	rec, env := serve(router, jsonRequest(t, "/summaries", map[string]string{"text": article, "level": "professor"}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "professor", env.Data.Level)
	assert.Equal(t, "plain", env.Data.Strategy)
	assert.True(t, strings.HasPrefix(env.Data.Summary, "Academic Summary (Nivıskar Analysis):"))
	assert.Contains(t, env.Data.KeyPhrases, "carbon")
	assert.False(t, env.Data.Fallback)
	assert.Equal(t, article, env.Data.Preview)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Summaries.WithLabelValues("professor", "ok")))
}

func TestHandleSummarize_QueryLevelOverridesBody(t *testing.T) {
	router, _ := newTestRouter(t, 1<<20)

	_, env := serve(router, jsonRequest(t, "/summaries?level=student", map[string]string{"text": article, "level": "professor"}))
	assert.Equal(t, "student", env.Data.Level)
}

func TestHandleSummarize_FallbackIsSuccess(t *testing.T) {
	router, _ := newTestRouter(t, 1<<20)

	rec, env := serve(router, jsonRequest(t, "/summaries", map[string]string{"text": "Ok. Go. Yes. No."}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Data.Fallback)
	assert.Equal(t, "Unable to generate summary from the extracted text.", env.Data.Summary)
	assert.NotNil(t, env.Data.KeyPhrases)
	assert.Empty(t, env.Data.KeyPhrases)
}

func TestHandleSummarize_Upload(t *testing.T) {
	router, m := newTestRouter(t, 1<<20)

	rec, env := serve(router, uploadRequest(t, "/summaries", "wetlands.txt", []byte(article), map[string]string{"level": "professor"}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "wetlands.txt", env.Data.Source)
	assert.Equal(t, "professor", env.Data.Level)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Extractions.WithLabelValues("plain")))
}

func TestHandleSummarize_UploadPDFFallback(t *testing.T) {
	router, m := newTestRouter(t, 1<<20)
	data := append([]byte("%PDF-1.4\n\x00\x01\xff"), []byte(article)...)

	rec, env := serve(router, uploadRequest(t, "/summaries", "scan.pdf", data, nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "fallback", env.Data.Strategy)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Extractions.WithLabelValues("fallback")))
}

func TestHandleSummarize_Errors(t *testing.T) {
	router, _ := newTestRouter(t, 256)

	tests := []struct {
		name string
		req  *http.Request
		code int
	}{
		{"Empty text", jsonRequest(t, "/summaries", map[string]string{"text": "  "}), http.StatusUnprocessableEntity},
		{"Unknown level", jsonRequest(t, "/summaries", map[string]string{"text": article, "level": "dean"}), http.StatusBadRequest},
		{"Body too large", jsonRequest(t, "/summaries", map[string]string{"text": strings.Repeat(article, 3)}), http.StatusRequestEntityTooLarge},
		{"Unsupported file", uploadRequest(t, "/summaries", "photo.png", []byte("x"), nil), http.StatusUnsupportedMediaType},
		{"Unreadable pdf", uploadRequest(t, "/summaries", "tiny.pdf", []byte("%PDF-1.4"), nil), http.StatusUnprocessableEntity},
		{"Wrong content type", httptest.NewRequest(http.MethodPost, "/summaries", strings.NewReader("text")), http.StatusUnsupportedMediaType},
	}
	tests[len(tests)-1].req.Header.Set("Content-Type", "text/plain")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := serve(router, tt.req)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
			assert.NotEmpty(t, env.Error)
		})
	}
}

func TestHandleSummarize_MethodNotAllowed(t *testing.T) {
	router, _ := newTestRouter(t, 1<<20)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/summaries", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleDownload(t *testing.T) {
	router, _ := newTestRouter(t, 1<<20)

	tests := []struct {
		format      string
		contentType string
		filename    string
	}{
		{"", "text/plain; charset=utf-8", "summary_student_1700000000000.txt"},
		{"json", "application/json", "summary_student_1700000000000.json"},
		{"yaml", "application/yaml", "summary_student_1700000000000.yaml"},
	}

	for _, tt := range tests {
		t.Run("format="+tt.format, func(t *testing.T) {
			target := "/summaries/download"
			if tt.format != "" {
				target += "?format=" + tt.format
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, jsonRequest(t, target, map[string]string{"text": article}))

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.Equal(t, "attachment; filename="+tt.filename, rec.Header().Get("Content-Disposition"))
			assert.Contains(t, rec.Body.String(), "carbon")
		})
	}
}

func TestHandleDownload_PDF(t *testing.T) {
	router, _ := newTestRouter(t, 1<<20)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(t, "/summaries/download?format=pdf&level=professor", map[string]string{"text": article}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=summary_professor_1700000000000.pdf", rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))
}

func TestHandleDownload_TextBody(t *testing.T) {
	router, _ := newTestRouter(t, 1<<20)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(t, "/summaries/download", map[string]string{"text": article}))

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "Student Summary (Nivıskar Analysis):"))
	assert.Contains(t, body, "\n\n--- Key Terms ---\n")
}

func TestHandleDownload_BadFormat(t *testing.T) {
	router, _ := newTestRouter(t, 1<<20)

	rec, _ := serve(router, jsonRequest(t, "/summaries/download?format=docx", map[string]string{"text": article}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	router, _ := newTestRouter(t, 1<<20)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	serve(router, jsonRequest(t, "/summaries", map[string]string{"text": article}))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `niviskar_summaries_total{level="student",outcome="ok"} 1`)
}

func TestRequestIDIsPropagated(t *testing.T) {
	router, _ := newTestRouter(t, 1<<20)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestServe_Shutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	router, _ := newTestRouter(t, 1<<20)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, ln, router, logging.Discard()) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
