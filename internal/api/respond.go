// Package api holds the JSON plumbing shared by the HTTP handlers: request
// decoding with validation, response envelopes and the mapping of domain
// errors to status codes and localized messages.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fekuna/omnipos-menu-service/internal/model"
	"github.com/fekuna/omnipos-menu-service/pkg/cache"
	"github.com/fekuna/omnipos-menu-service/pkg/i18n"
	"github.com/fekuna/omnipos-menu-service/pkg/logger"
	"github.com/fekuna/omnipos-menu-service/pkg/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

var Validate = validator.New(validator.WithRequiredStructEnabled())

type Response struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Total   *int        `json:"total,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Decode reads a JSON body into dst and validates it.
func Decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("decode body: %w", err)
	}

	return Validate.Struct(dst)
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

func Data(w http.ResponseWriter, status int, data interface{}) {
	_ = WriteJSON(w, status, Response{Data: data})
}

func List(w http.ResponseWriter, data interface{}, total int) {
	_ = WriteJSON(w, http.StatusOK, Response{Data: data, Total: &total})
}

// Message answers with data and the localized messageID.
func Message(w http.ResponseWriter, r *http.Request, status int, data interface{}, messageID string, args map[string]interface{}) {
	_ = WriteJSON(w, status, Response{
		Data:    data,
		Message: i18n.T(messageID, args, middleware.GetLanguage(r.Context())),
	})
}

func BadRequest(w http.ResponseWriter, r *http.Request, err error) {
	_ = WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   i18n.T("ErrInvalidRequest", nil, middleware.GetLanguage(r.Context())),
		Details: err.Error(),
	})
}

// Fail maps err to a status code. Unknown errors are logged and answered
// with a generic 500.
func Fail(w http.ResponseWriter, r *http.Request, log logger.ZapLogger, err error) {
	lang := middleware.GetLanguage(r.Context())

	var status int
	var messageID string
	switch {
	case errors.Is(err, model.ErrNotFound):
		status, messageID = http.StatusNotFound, "ErrNotFound"
	case errors.Is(err, model.ErrCycleRejected):
		status, messageID = http.StatusConflict, "ErrCycleRejected"
	case errors.Is(err, model.ErrCategoryNotEmpty):
		status, messageID = http.StatusConflict, "ErrCategoryNotEmpty"
	case errors.Is(err, model.ErrOutOfRange):
		status, messageID = http.StatusUnprocessableEntity, "ErrOutOfRange"
	case errors.Is(err, cache.ErrLockBusy):
		status, messageID = http.StatusServiceUnavailable, "ErrBusy"
	default:
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		_ = WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: i18n.T("ErrInternal", nil, lang)})
		return
	}

	_ = WriteJSON(w, status, ErrorResponse{Error: i18n.T(messageID, nil, lang), Details: err.Error()})
}
