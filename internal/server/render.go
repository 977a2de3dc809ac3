package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"changemakers/pkg/types"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Field  string            `json:"field,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

// writeError maps err onto a status code. Anything unrecognised is logged and
// reported as a generic failure.
func (s *Service) writeError(w http.ResponseWriter, err error) {
	var verr *types.ValidationError
	if errors.As(err, &verr) {
		s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: verr.Error(), Field: verr.Field})
		return
	}

	status := http.StatusInternalServerError
	message := "something went wrong, please try again"

	switch {
	case errors.Is(err, types.ErrSessionInvalid):
		status, message = http.StatusUnauthorized, "please sign in again"
	case errors.Is(err, types.ErrInitiativeNotFound),
		errors.Is(err, types.ErrApplicationNotFound),
		errors.Is(err, types.ErrJobNotFound),
		errors.Is(err, types.ErrChangemakerNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, types.ErrChannelClosed):
		status, message = http.StatusForbidden, err.Error()
	case errors.Is(err, types.ErrInvalidTransition),
		errors.Is(err, types.ErrSubmissionInFlight),
		errors.Is(err, types.ErrDuplicate):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, types.ErrPublishTimeout):
		status, message = http.StatusAccepted, types.ErrPublishTimeout.Error()
	case errors.Is(err, errForbidden):
		status, message = http.StatusForbidden, err.Error()
	case errors.Is(err, errBadRequest):
		status, message = http.StatusBadRequest, err.Error()
	default:
		s.logger.WithError(err).Error("request failed")
	}

	s.writeJSON(w, status, errorResponse{Error: message})
}

var (
	errForbidden  = errors.New("you do not manage this initiative")
	errBadRequest = errors.New("malformed request")
)

func (s *Service) decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// decodeBody accepts either a JSON body or an HTML form post.
func (s *Service) decodeBody(r *http.Request, v any) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return s.decodeJSON(r, v)
	}

	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}

	if err := decoder.Decode(v, r.PostForm); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}

	return nil
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
