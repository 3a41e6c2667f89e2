package server

import "net/http"

func RegisterRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /summaries", handler.HandleSummarize)
	mux.HandleFunc("POST /summaries/download", handler.HandleDownload)
	mux.HandleFunc("GET /healthz", handler.HandleHealth)
	mux.Handle("GET /metrics", handler.metrics.Handler())
}

// NewRouter returns the full HTTP surface wrapped in request logging.
func NewRouter(handler *Handler) http.Handler {
	mux := http.NewServeMux()
	RegisterRoutes(mux, handler)
	return withRequestLog(handler.log, mux)
}
