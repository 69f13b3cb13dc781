package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerTagNameOnce sync.Once

// validator reports json names ("email"), not Go names ("Email")
func useJSONFieldNames() {
	registerTagNameOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(sf reflect.StructField) string {
			name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return sf.Name
			}
			return name
		})
	})
}

// readBody returns the request JSON. Event envelopes sometimes deliver the
// body as a JSON string holding the real document, that form is unwrapped.
// An empty body reads as {}.
func readBody(ctx *gin.Context) ([]byte, error) {
	if ctx.Request.Body == nil {
		return []byte("{}"), nil
	}

	raw, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return []byte("{}"), nil
	}

	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return nil, err
		}

		trimmed = bytes.TrimSpace([]byte(inner))
		if len(trimmed) == 0 {
			return []byte("{}"), nil
		}
	}

	return trimmed, nil
}

// BindJSON decodes and validates the body into out. On failure it writes
// the 400 response and returns false. The normalized body is returned so
// callers can echo the submitted fields.
func BindJSON(ctx *gin.Context, out interface{}) ([]byte, bool) {
	useJSONFieldNames()

	body, err := readBody(ctx)
	if err != nil {
		respondBindError(ctx, err)
		return nil, false
	}

	err = binding.JSON.BindBody(body, out)
	if err != nil {
		respondBindError(ctx, err)
		return nil, false
	}

	return body, true
}

func respondBindError(ctx *gin.Context, err error) {
	var validatorErrors validator.ValidationErrors

	if errors.As(err, &validatorErrors) {
		missing := make([]string, 0, len(validatorErrors))
		for _, fieldError := range validatorErrors {
			missing = append(missing, fieldError.Field())
		}

		RespondMissingFields(ctx, "Missing required fields: "+strings.Join(missing, ", "), missing)
		return
	}

	var maxBytesError *http.MaxBytesError
	if errors.As(err, &maxBytesError) {
		RespondError(ctx, http.StatusRequestEntityTooLarge, "body_too_large",
			"Request body too large", fmt.Sprintf("limit is %d bytes", maxBytesError.Limit), nil)
		return
	}

	var syntaxError *json.SyntaxError
	if errors.As(err, &syntaxError) {
		RespondBadRequest(ctx, "Invalid request body", "invalid_json_syntax")
		return
	}

	var unmatchedTypeError *json.UnmarshalTypeError
	if errors.As(err, &unmatchedTypeError) {
		field := strings.TrimSpace(unmatchedTypeError.Field)
		if field == "" {
			RespondBadRequest(ctx, "Invalid request body", "body must be a JSON object")
			return
		}

		RespondBadRequest(ctx, "Invalid request body",
			fmt.Sprintf("%s must be of type %s", field, unmatchedTypeError.Type.String()))
		return
	}

	RespondBadRequest(ctx, "Invalid request body", err.Error())
}

// submittedFields decodes body into a map keeping numbers as sent.
func submittedFields(body []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	out := map[string]interface{}{}
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
