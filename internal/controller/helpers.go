package controller

import (
	"encoding/json"
	"net/http"

	domainErrors "github.com/microlend/paygate/internal/domain/errors"
	"github.com/microlend/paygate/internal/gateway"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeResult maps a gateway result onto an HTTP status: failed validation is
// the caller's fault, a provider rejection is a semantic failure, and a
// transport failure means the upstream never answered.
func writeResult(w http.ResponseWriter, res *gateway.Result) {
	status := http.StatusOK
	if !res.Success {
		switch res.Kind {
		case gateway.KindValidation:
			status = http.StatusBadRequest
		case gateway.KindTransport:
			status = http.StatusBadGateway
		default:
			status = http.StatusUnprocessableEntity
		}
	}
	writeJSON(w, status, res)
}

func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domainErrors.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	if err := validate.Struct(dst); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
			return domainErrors.NewValidationError(ve[0].Field(), ve[0].Tag()+" validation failed")
		}
		return domainErrors.NewValidationError("body", err.Error())
	}
	return nil
}
