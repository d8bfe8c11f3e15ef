// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/nodeglobe/internal/logging"
)

// APIResponse is the envelope around every JSON body except GeoJSON
// documents. Exactly one of Data and Error is set.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError carries a machine-readable Code next to the human message.
type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// APIMeta describes the request that produced the envelope.
type APIMeta struct {
	RequestID  string          `json:"request_id,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	DurationMs int64           `json:"duration_ms"`
	Pagination *PaginationMeta `json:"pagination,omitempty"`
}

// PaginationMeta is offset pagination over a cluster's leaves.
type PaginationMeta struct {
	Total   int  `json:"total"`
	Count   int  `json:"count"`
	Offset  int  `json:"offset"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"has_more"`
}

// Generic error codes.
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
)

// Cluster, navigation and history error codes.
const (
	ErrCodeClusterNotFound  = "CLUSTER_NOT_FOUND"
	ErrCodeNotTerminal      = "CLUSTER_NOT_TERMINAL"
	ErrCodeIndexUnavailable = "INDEX_UNAVAILABLE"
	ErrCodeInvalidCamera    = "INVALID_CAMERA"
	ErrCodeHistoryNotFound  = "HISTORY_NOT_FOUND"
	ErrCodeHistoryDisabled  = "HISTORY_DISABLED"
)

const (
	contentTypeJSON    = "application/json; charset=utf-8"
	contentTypeGeoJSON = "application/geo+json; charset=utf-8"
)

// ResponseWriter writes envelopes for one request. DurationMs in the meta
// block is measured from NewResponseWriter.
type ResponseWriter struct {
	w       http.ResponseWriter
	r       *http.Request
	started time.Time
}

// NewResponseWriter creates a response writer for r.
func NewResponseWriter(w http.ResponseWriter, r *http.Request) *ResponseWriter {
	return &ResponseWriter{w: w, r: r, started: time.Now()}
}

func (rw *ResponseWriter) meta(page *PaginationMeta) *APIMeta {
	return &APIMeta{
		RequestID:  logging.RequestIDFromContext(rw.r.Context()),
		Timestamp:  time.Now().UTC(),
		DurationMs: time.Since(rw.started).Milliseconds(),
		Pagination: page,
	}
}

// Success writes data with status 200.
func (rw *ResponseWriter) Success(data interface{}) {
	rw.SuccessWithPagination(data, nil)
}

// SuccessWithPagination writes data with status 200 and a pagination block.
func (rw *ResponseWriter) SuccessWithPagination(data interface{}, page *PaginationMeta) {
	rw.write(http.StatusOK, contentTypeJSON, APIResponse{Success: true, Data: data, Meta: rw.meta(page)})
}

// GeoJSON writes doc as application/geo+json, outside the envelope, so map
// clients can load the URL directly as a source.
func (rw *ResponseWriter) GeoJSON(doc interface{}) {
	rw.write(http.StatusOK, contentTypeGeoJSON, doc)
}

// Error writes an error envelope.
func (rw *ResponseWriter) Error(status int, code, message string) {
	rw.ErrorWithDetails(status, code, message, nil)
}

// ErrorWithDetails writes an error envelope with structured details.
func (rw *ResponseWriter) ErrorWithDetails(status int, code, message string, details interface{}) {
	meta := rw.meta(nil)
	rw.write(status, contentTypeJSON, APIResponse{
		Error: &APIError{Code: code, Message: message, Details: details, RequestID: meta.RequestID},
		Meta:  meta,
	})
}

func (rw *ResponseWriter) BadRequest(message string) {
	rw.Error(http.StatusBadRequest, ErrCodeBadRequest, message)
}

func (rw *ResponseWriter) NotFound(message string) {
	rw.Error(http.StatusNotFound, ErrCodeNotFound, message)
}

func (rw *ResponseWriter) InternalError(message string) {
	rw.Error(http.StatusInternalServerError, ErrCodeInternalError, message)
}

// ServiceUnavailable writes a 503 with a caller-chosen code, so clients can
// tell a missing index from disabled history.
func (rw *ResponseWriter) ServiceUnavailable(code, message string) {
	rw.Error(http.StatusServiceUnavailable, code, message)
}

// ValidationError writes a 400 VALIDATION_FAILED with per-field details.
func (rw *ResponseWriter) ValidationError(message string, details interface{}) {
	rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidationFailed, message, details)
}

func (rw *ResponseWriter) write(status int, contentType string, body interface{}) {
	h := rw.w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Cache-Control", "no-store")
	rw.w.WriteHeader(status)

	if err := json.NewEncoder(rw.w).Encode(body); err != nil {
		logging.Ctx(rw.r.Context()).Error().Err(err).Int("status", status).Msg("Failed to encode response")
	}
}

// WriteSuccess writes data in a success envelope.
func WriteSuccess(w http.ResponseWriter, r *http.Request, data interface{}) {
	NewResponseWriter(w, r).Success(data)
}

// WriteError writes an error envelope.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	NewResponseWriter(w, r).Error(status, code, message)
}
