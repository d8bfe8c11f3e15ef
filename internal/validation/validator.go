// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/nodeglobe/internal/cluster"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is one failed rule, named by the field's json or query name.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Param   string `json:"param,omitempty"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

func (e FieldError) Error() string { return e.Message }

// Errors is returned by ValidateStruct when at least one rule fails.
type Errors []FieldError

func (es Errors) Error() string {
	if len(es) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Summary renders the errors for the API envelope: a single failure keeps
// its own message, several are joined as "field: message" pairs and listed
// under "fields".
func (es Errors) Summary() (string, map[string]any) {
	switch len(es) {
	case 0:
		return "Validation failed", nil
	case 1:
		e := es[0]
		return e.Message, map[string]any{"field": e.Field, "tag": e.Tag, "value": e.Value}
	}

	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.Field + ": " + e.Message
	}
	return strings.Join(parts, "; "), map[string]any{"fields": []FieldError(es)}
}

// GetValidator returns the shared validator with the NodeGlobe tags
// registered: clusterid, finite and zoom.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "query"} {
				name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})

		// Registration only fails for empty tags or nil funcs.
		_ = validate.RegisterValidation("clusterid", validateClusterID)
		_ = validate.RegisterValidation("finite", validateFinite)
		_ = validate.RegisterValidation("zoom", validateZoom)
	})
	return validate
}

// ValidateStruct runs the struct's validate tags. The result is nil or a
// non-empty Errors.
func ValidateStruct(s any) Errors {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Errors{{Field: "request", Tag: "invalid", Message: err.Error()}}
	}

	out := make(Errors, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Value:   fe.Value(),
			Message: message(fe),
		}
	}
	return out
}

var messages = map[string]string{
	"required":  "%s is required",
	"ip":        "%s must be a valid IP address",
	"latitude":  "%s must be a valid latitude (-90 to 90)",
	"longitude": "%s must be a valid longitude (-180 to 180)",
	"clusterid": "%s must be a cluster id",
	"finite":    "%s must be a finite number",
	"zoom":      fmt.Sprintf("%%s must be a zoom level between 0 and %d", cluster.MaxSupportedZoom+1),
}

var messagesWithParam = map[string]string{
	"oneof":    "%s must be one of: %s",
	"gte":      "%s must be greater than or equal to %s",
	"lte":      "%s must be less than or equal to %s",
	"gt":       "%s must be greater than %s",
	"lt":       "%s must be less than %s",
	"gtefield": "%s must not be less than %s",
}

func message(fe validator.FieldError) string {
	field, tag, param := fe.Field(), fe.Tag(), fe.Param()
	if tmpl, ok := messages[tag]; ok {
		return fmt.Sprintf(tmpl, field)
	}
	if tmpl, ok := messagesWithParam[tag]; ok {
		return fmt.Sprintf(tmpl, field, param)
	}

	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch tag {
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", field, param, unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", field, param, unit)
	}
	return fmt.Sprintf("%s failed %s validation", field, tag)
}

// validateClusterID accepts strings produced by cluster.ClusterID.String.
func validateClusterID(fl validator.FieldLevel) bool {
	_, err := cluster.ParseClusterID(fl.Field().String())
	return err == nil
}

// validateFinite rejects NaN and infinities.
func validateFinite(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	default:
		return true
	}
}

// validateZoom accepts every clustered zoom plus the raw-node band above it.
func validateZoom(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		z := fl.Field().Int()
		return z >= 0 && z <= cluster.MaxSupportedZoom+1
	default:
		return false
	}
}
