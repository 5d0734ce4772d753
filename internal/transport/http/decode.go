package httptransport

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const maxBodyBytes = 64 << 10

//go:embed schema/*.json
var schemaFS embed.FS

var (
	schemaOnce  sync.Once
	schemaErr   error
	schemaCache map[string]*jsonschema.Schema
)

func compileSchemas() (map[string]*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		entries, err := schemaFS.ReadDir("schema")
		if err != nil {
			schemaErr = err
			return
		}
		compiler := jsonschema.NewCompiler()
		for _, e := range entries {
			data, err := schemaFS.ReadFile("schema/" + e.Name())
			if err != nil {
				schemaErr = err
				return
			}
			if err := compiler.AddResource(e.Name(), bytes.NewReader(data)); err != nil {
				schemaErr = fmt.Errorf("add schema %s: %w", e.Name(), err)
				return
			}
		}
		out := make(map[string]*jsonschema.Schema, len(entries))
		for _, e := range entries {
			s, err := compiler.Compile(e.Name())
			if err != nil {
				schemaErr = fmt.Errorf("compile schema %s: %w", e.Name(), err)
				return
			}
			out[e.Name()] = s
		}
		schemaCache = out
	})
	return schemaCache, schemaErr
}

// decodeBody validates the request body against the named schema and then
// decodes it into dst. It writes the error response itself and reports
// whether the handler should continue.
func decodeBody(w http.ResponseWriter, r *http.Request, schemaName string, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
		return false
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
		return false
	}

	schemas, err := compileSchemas()
	if err != nil {
		writeInternalError(w, r, err)
		return false
	}
	schema, ok := schemas[schemaName]
	if !ok {
		writeInternalError(w, r, fmt.Errorf("unknown schema %q", schemaName))
		return false
	}
	if err := schema.Validate(raw); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			writeValidationError(w, ve)
			return false
		}
		writeInternalError(w, r, err)
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
		return false
	}
	return true
}

type validationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeValidationError(w http.ResponseWriter, ve *jsonschema.ValidationError) {
	details := []validationDetail{}
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			details = append(details, validationDetail{Field: e.InstanceLocation, Message: e.Message})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_request", "details": details})
}
