package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"niviskar/internal/export"
	"niviskar/internal/extractor"
	"niviskar/internal/metrics"
	"niviskar/internal/summarizer"
	"niviskar/internal/tokens"
)

const previewChars = 500

// Options configures a Handler.
type Options struct {
	Level     summarizer.Level
	MaxUpload int64
	Extract   extractor.Options
}

type Handler struct {
	log     *logrus.Logger
	tokens  *tokens.Counter
	metrics *metrics.Metrics
	opts    Options
	now     func() time.Time
}

func NewHandler(log *logrus.Logger, counter *tokens.Counter, m *metrics.Metrics, opts Options) *Handler {
	if opts.MaxUpload <= 0 {
		opts.MaxUpload = 10 << 20
	}
	return &Handler{
		log:     log,
		tokens:  counter,
		metrics: m,
		opts:    opts,
		now:     time.Now,
	}
}

type summarizeRequest struct {
	Text  string `json:"text"`
	Level string `json:"level"`
}

type summaryResponse struct {
	Level      string       `json:"level"`
	Source     string       `json:"source,omitempty"`
	Strategy   string       `json:"strategy"`
	Summary    string       `json:"summary"`
	KeyPhrases []string     `json:"key_phrases"`
	Fallback   bool         `json:"fallback"`
	Sentences  int          `json:"sentences"`
	Stats      tokens.Stats `json:"stats"`
	Preview    string       `json:"preview"`
}

// input is a request body reduced to text.
type input struct {
	doc   *extractor.Document
	level summarizer.Level
}

func (h *Handler) HandleSummarize(w http.ResponseWriter, r *http.Request) {
	in, err := h.readInput(w, r)
	if err != nil {
		h.requestLog(r).Errorf("rejected input: %v", err)
		handleError(w, err)
		return
	}

	report := h.summarize(in)
	resp := summaryResponse{
		Level:      in.level.String(),
		Source:     in.doc.Name,
		Strategy:   string(in.doc.Strategy),
		Summary:    report.Result.SummaryText,
		KeyPhrases: report.Result.KeyPhrases,
		Fallback:   report.Result.Fallback != summarizer.NoFallback,
		Sentences:  report.Result.Sentences,
		Stats:      report.Stats,
		Preview:    preview(in.doc.Text),
	}
	if err := successResponse(w, "Summary generated", resp); err != nil {
		h.requestLog(r).Errorf("Error sending response: %v", err)
	}
}

func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	format := export.FormatText
	if f := r.URL.Query().Get("format"); f != "" {
		parsed, err := export.ParseFormat(f)
		if err != nil {
			handleError(w, newHTTPError(http.StatusBadRequest, err.Error()))
			return
		}
		format = parsed
	}

	in, err := h.readInput(w, r)
	if err != nil {
		h.requestLog(r).Errorf("rejected input: %v", err)
		handleError(w, err)
		return
	}

	report := h.summarize(in)
	data, err := export.Render(report, format)
	if err != nil {
		h.requestLog(r).Errorf("render failed: %v", err)
		handleError(w, err)
		return
	}

	name := export.FileName(in.level, format, report.GeneratedAt)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.requestLog(r).Errorf("Error sending response: %v", err)
	}
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) summarize(in *input) export.Report {
	start := time.Now()
	result := summarizer.Summarize(in.doc.Text, in.level)
	h.metrics.ObserveSummary(in.level.String(), result.Fallback.String(), result.Sentences, time.Since(start))

	return export.Report{
		Source:      in.doc.Name,
		Result:      result,
		Stats:       h.tokens.Compare(in.doc.Text, result.SummaryText),
		GeneratedAt: h.now(),
	}
}

// readInput accepts either a multipart upload in the "file" field or a JSON
// body with a "text" field. A "level" query parameter overrides the level
// given in the body.
func (h *Handler) readInput(w http.ResponseWriter, r *http.Request) (*input, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUpload)

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, newHTTPError(http.StatusUnsupportedMediaType, "Content-Type must be multipart/form-data or application/json")
	}

	var (
		in        = &input{}
		levelText string
	)
	switch mediaType {
	case "multipart/form-data":
		in.doc, levelText, err = h.readUpload(r)
	case "application/json":
		in.doc, levelText, err = h.readJSON(r)
	default:
		err = newHTTPError(http.StatusUnsupportedMediaType, "Content-Type must be multipart/form-data or application/json")
	}
	if err != nil {
		return nil, err
	}

	if q := r.URL.Query().Get("level"); q != "" {
		levelText = q
	}
	in.level = h.opts.Level
	if levelText != "" {
		if in.level, err = summarizer.ParseLevel(levelText); err != nil {
			return nil, newHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return in, nil
}

func (h *Handler) readUpload(r *http.Request) (*extractor.Document, string, error) {
	if err := r.ParseMultipartForm(h.opts.MaxUpload); err != nil {
		return nil, "", bodyError(err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", newHTTPError(http.StatusBadRequest, "missing \"file\" field")
	}
	defer file.Close()

	if !extractor.Supported(header.Filename) {
		return nil, "", newHTTPError(http.StatusUnsupportedMediaType, "only .pdf, .txt and .md files are accepted")
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", bodyError(err)
	}

	doc, err := extractor.ExtractBytes(r.Context(), header.Filename, data, h.opts.Extract)
	if err != nil {
		h.metrics.ObserveExtractionFailure()
		return nil, "", extractionError(err)
	}
	h.metrics.ObserveExtraction(string(doc.Strategy))
	return doc, r.FormValue("level"), nil
}

func (h *Handler) readJSON(r *http.Request) (*extractor.Document, string, error) {
	var req summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", bodyError(err)
		}
		return nil, "", newHTTPError(http.StatusBadRequest, "Invalid JSON payload: "+err.Error())
	}

	text := extractor.Normalize(req.Text)
	if text == "" {
		return nil, "", newHTTPError(http.StatusUnprocessableEntity, "no text to summarize")
	}
	return &extractor.Document{Text: text, Strategy: extractor.StrategyPlain}, req.Level, nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return newHTTPError(http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
	}
	return newHTTPError(http.StatusBadRequest, "could not read upload: "+err.Error())
}

func extractionError(err error) error {
	switch {
	case errors.Is(err, extractor.ErrUnsupportedFormat):
		return newHTTPError(http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, extractor.ErrEmptyText), errors.Is(err, extractor.ErrInsufficientText):
		return newHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return fmt.Errorf("extraction failed: %w", err)
}

func (h *Handler) requestLog(r *http.Request) *logrus.Entry {
	return h.log.WithField("reqid", RequestID(r.Context()))
}

// preview returns the first previewChars characters of text.
func preview(text string) string {
	if utf8.RuneCountInString(text) <= previewChars {
		return text
	}
	runes := []rune(text)
	return string(runes[:previewChars])
}
