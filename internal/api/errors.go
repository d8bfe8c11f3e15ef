// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/nodeglobe/internal/cluster"
	"github.com/tomtom215/nodeglobe/internal/controller"
	"github.com/tomtom215/nodeglobe/internal/geometry"
	"github.com/tomtom215/nodeglobe/internal/history"
	"github.com/tomtom215/nodeglobe/internal/logging"
	"github.com/tomtom215/nodeglobe/internal/navigation"
)

// errorMapping ties a sentinel to the status and code it is reported with.
type errorMapping struct {
	target error
	status int
	code   string
}

// Order matters: the first match wins.
var errorMappings = []errorMapping{
	{cluster.ErrClusterNotFound, http.StatusNotFound, ErrCodeClusterNotFound},
	{controller.ErrNoIndex, http.StatusServiceUnavailable, ErrCodeIndexUnavailable},
	{controller.ErrNotTerminal, http.StatusConflict, ErrCodeNotTerminal},
	{navigation.ErrInvalidTarget, http.StatusBadRequest, ErrCodeBadRequest},
	{geometry.ErrNonFiniteCamera, http.StatusBadRequest, ErrCodeInvalidCamera},
	{geometry.ErrInvalidCamera, http.StatusBadRequest, ErrCodeInvalidCamera},
	{geometry.ErrNegativeMargin, http.StatusBadRequest, ErrCodeBadRequest},
	{history.ErrInvalidIP, http.StatusBadRequest, ErrCodeBadRequest},
	{history.ErrInvalidRange, http.StatusBadRequest, ErrCodeBadRequest},
	{history.ErrNotFound, http.StatusNotFound, ErrCodeHistoryNotFound},
}

// classifyError returns the status and code for err. Unknown errors are
// internal.
func classifyError(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, ErrCodeInternalError
}

// writeDomainError reports err using the mapping above. Internal errors are
// logged and their message is not echoed to the client.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classifyError(err)
	if status == http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).
			Str("path", r.URL.Path).
			Msg("Request failed")
		NewResponseWriter(w, r).InternalError("internal error")
		return
	}
	WriteError(w, r, status, code, err.Error())
}
