package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"civic-portal/internal/apperr"
	"civic-portal/internal/utils"
	"civic-portal/internal/wizard"
)

// writeErr answers with the status the error maps to. Internal details of
// 5xx errors are logged, not returned.
func writeErr(w http.ResponseWriter, log zerolog.Logger, err error) {
	status := apperr.HTTPStatus(err)
	if errors.Is(err, wizard.ErrWrongStep) ||
		errors.Is(err, wizard.ErrAlreadySubmitted) ||
		errors.Is(err, wizard.ErrSubmitInProgress) {
		status = http.StatusConflict
	}
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
		msg = "internal error"
	}
	utils.Error(w, status, msg)
}

// decode reads a JSON body, rejecting unknown fields.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.Invalid("body", "invalid json")
	}
	return nil
}
