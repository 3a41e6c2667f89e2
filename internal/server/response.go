package server

import (
	"encoding/json"
	"errors"
	"net/http"
)

type httpError struct {
	Code    int
	Message string
}

func (e *httpError) Error() string {
	return e.Message
}

func newHTTPError(code int, message string) *httpError {
	return &httpError{Code: code, Message: message}
}

func handleError(w http.ResponseWriter, err error) {
	var httpErr *httpError
	if errors.As(err, &httpErr) {
		jsonError(w, httpErr.Code, httpErr.Message)
		return
	}
	jsonError(w, http.StatusInternalServerError, "Internal server error")
}

func jsonResponse(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, status int, message string) error {
	return jsonResponse(w, status, map[string]string{
		"error": message,
	})
}

func successResponse(w http.ResponseWriter, message string, data any) error {
	response := map[string]any{
		"status":  "success",
		"message": message,
	}
	if data != nil {
		response["data"] = data
	}
	return jsonResponse(w, http.StatusOK, response)
}
