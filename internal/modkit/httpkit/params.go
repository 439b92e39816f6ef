package httpkit

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	perrs "paygate/internal/platform/errors"
)

// Param returns the trimmed path parameter name
func Param(r *http.Request, name string) string {
	return strings.TrimSpace(chi.URLParam(r, name))
}

// ParamInt64 parses a path parameter as a non negative int64
func ParamInt64(r *http.Request, name string) (int64, error) {
	s := Param(r, name)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, perrs.WithField(perrs.New(perrs.ErrorCodeValidation, name+" must be a non negative integer"), name)
	}
	return n, nil
}

// QueryInt reads an integer query parameter within [lo, hi]; absent means def
func QueryInt(r *http.Request, name string, def, lo, hi int) (int, error) {
	s := strings.TrimSpace(r.URL.Query().Get(name))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, perrs.WithField(perrs.Newf(perrs.ErrorCodeValidation, "%s must be between %d and %d", name, lo, hi), name)
	}
	return n, nil
}

// QueryBool reads an optional boolean query parameter; nil when absent
func QueryBool(r *http.Request, name string) (*bool, error) {
	s := strings.TrimSpace(r.URL.Query().Get(name))
	if s == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, perrs.WithField(perrs.New(perrs.ErrorCodeValidation, name+" must be a boolean"), name)
	}
	return &b, nil
}
