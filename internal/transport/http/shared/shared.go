// Package shared holds the helpers every handler uses: JSON responses,
// domain-error translation, and boundary validation. Field validation runs
// here, before any core method, so services only ever see well-formed input.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/keshavpotewar/SkillSwap/pkg/domerr"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into its HTTP envelope. Non-domain
// errors collapse to a bare 500: internal detail never crosses the boundary.
func WriteError(w http.ResponseWriter, err error) {
	code := domerr.CodeOf(err)
	WriteJSON(w, domerr.ToHTTPStatus(code), map[string]string{
		"error":   string(code),
		"message": domerr.MessageOf(err),
	})
}

// DecodeValid decodes the JSON body into dst and runs struct validation,
// returning a validation domain error naming the first offending field.
func DecodeValid(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domerr.New(domerr.CodeValidation, "invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return domerr.Newf(domerr.CodeValidation, "field %s failed validation (%s)",
				strings.ToLower(fe.Field()[:1])+fe.Field()[1:], fe.Tag())
		}
		return domerr.New(domerr.CodeValidation, "validation failed")
	}
	return nil
}
