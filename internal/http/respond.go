package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/crm-backend/internal/apperr"
	"github.com/tuanvumaihuynh/crm-backend/internal/http/apierr"
	"github.com/tuanvumaihuynh/crm-backend/pkg/ptr"
	"github.com/tuanvumaihuynh/crm-backend/pkg/validator"
)

// responder centralizes response encoding and error translation for the
// HTTP handlers.
type responder struct {
	logger *slog.Logger
}

func (rp *responder) writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		rp.logger.ErrorContext(r.Context(), "error encoding response", slog.Any("error", err))
	}
}

func (rp *responder) writeError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	rp.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if err := json.NewEncoder(w).Encode(res); err != nil {
		rp.logger.ErrorContext(r.Context(), "error encoding error response", slog.Any("error", err))
	}
}

// decodeAndValidate parses the request body into dst and runs struct
// validation. Failures surface as ValidationErr so they render as 400s.
func decodeAndValidate(r *http.Request, v validator.Validator, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.ValidationErr.WrapParent(err).WithMsg("invalid request body")
	}

	if err := v.Validate(dst); err != nil {
		if validator.IsValidationError(err) {
			return err
		}
		return apperr.ValidationErr.WrapParent(err)
	}

	return nil
}

func parseUUIDParam(value, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, apperr.ValidationErr.WrapParent(err).WithMsg("invalid " + name)
	}
	return id, nil
}

func queryString(r *http.Request, key string) *string {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	return ptr.New(v)
}

func queryFloat(r *http.Request, key string) (*float64, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, apperr.ValidationErr.WrapParent(err).WithMsg("invalid query param " + key)
	}
	return ptr.New(f), nil
}

func queryInt(r *http.Request, key string) (*int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, apperr.ValidationErr.WrapParent(err).WithMsg("invalid query param " + key)
	}
	return ptr.New(n), nil
}

func queryTime(r *http.Request, key string) (*time.Time, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, apperr.ValidationErr.WrapParent(err).WithMsg("invalid query param " + key)
	}
	return ptr.New(t), nil
}

func queryUUID(r *http.Request, key string) (*uuid.UUID, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, apperr.ValidationErr.WrapParent(err).WithMsg("invalid query param " + key)
	}
	return ptr.New(id), nil
}
