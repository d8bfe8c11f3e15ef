// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package api

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/nodeglobe/internal/history"
)

// defaultHistoryWindow is used when from is omitted.
const defaultHistoryWindow = 24 * time.Hour

// HistoryResponse lists the samples of one node.
type HistoryResponse struct {
	IP      string           `json:"ip"`
	From    time.Time        `json:"from"`
	To      time.Time        `json:"to"`
	Samples []history.Sample `json:"samples"`
}

// NodeHistory returns the samples recorded for a node IP.
//
// GET /api/v1/nodes/{ip}/history?from=RFC3339&to=RFC3339
func (h *Handler) NodeHistory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.history == nil {
		rw.ServiceUnavailable(ErrCodeHistoryDisabled, "history storage is disabled")
		return
	}

	q, ok := h.historyQuery(w, r)
	if !ok {
		return
	}

	var err error
	if q.To, err = getTimeParam(r, "to", time.Now().UTC()); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if q.From, err = getTimeParam(r, "from", q.To.Add(-defaultHistoryWindow)); err != nil {
		rw.BadRequest(err.Error())
		return
	}

	samples, err := h.history.Range(r.Context(), q.IP, q.From, q.To)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	rw.Success(HistoryResponse{IP: q.IP, From: q.From, To: q.To, Samples: samples})
}

// NodeLatest returns the newest sample for a node IP.
//
// GET /api/v1/nodes/{ip}/latest
func (h *Handler) NodeLatest(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		NewResponseWriter(w, r).ServiceUnavailable(ErrCodeHistoryDisabled, "history storage is disabled")
		return
	}
	q, ok := h.historyQuery(w, r)
	if !ok {
		return
	}
	s, err := h.history.Latest(r.Context(), q.IP)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteSuccess(w, r, s)
}

// historyQuery reads and validates the {ip} URL parameter. IPv6 addresses
// arrive percent-encoded.
func (h *Handler) historyQuery(w http.ResponseWriter, r *http.Request) (HistoryQuery, bool) {
	ip, err := url.PathUnescape(chi.URLParam(r, "ip"))
	if err != nil {
		NewResponseWriter(w, r).BadRequest("invalid ip parameter")
		return HistoryQuery{}, false
	}
	q := HistoryQuery{IP: ip}
	if !validateRequest(w, r, &q) {
		return HistoryQuery{}, false
	}
	return q, true
}
