// Package v1 provides the request decoding and response writing support
// shared by the v1 handler groups.
package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/coinlab/coinlab/business/web/errs"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// validate holds the settings and caches for validating request payloads.
var validate *validator.Validate

// translator is a cache of locale and translation information.
var translator ut.Translator

func init() {
	validate = validator.New()

	translator, _ = ut.New(en.New(), en.New()).GetTranslator("en")
	en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Decode reads the request body into the provided value and validates it
// against the struct's validate tags.
func Decode(r *http.Request, val any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(val); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if err := validate.Struct(val); err != nil {
		var verrors validator.ValidationErrors
		if !errors.As(err, &verrors) {
			return err
		}

		fields := make(map[string]string, len(verrors))
		for _, verror := range verrors {
			fields[verror.Field()] = verror.Translate(translator)
		}

		return &fieldErrors{fields: fields}
	}

	return nil
}

// Respond marshals a value to JSON and writes it to the client.
func Respond(w http.ResponseWriter, statusCode int, data any) {
	if statusCode == http.StatusNoContent {
		w.WriteHeader(statusCode)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// RespondError writes the error response for the request, mapping trusted
// errors to their status and everything else to a 500.
func RespondError(w http.ResponseWriter, err error) {
	var fe *fieldErrors
	if errors.As(err, &fe) {
		Respond(w, http.StatusBadRequest, errs.Response{Error: "data validation error", Fields: fe.fields})
		return
	}

	if trusted := errs.GetTrusted(err); trusted != nil {
		Respond(w, trusted.Status, errs.Response{Error: trusted.Error()})
		return
	}

	Respond(w, http.StatusInternalServerError, errs.Response{Error: http.StatusText(http.StatusInternalServerError)})
}

// fieldErrors carries the per-field validation failures for a request.
type fieldErrors struct {
	fields map[string]string
}

func (fe *fieldErrors) Error() string {
	return "data validation error"
}
