package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/kgview/pkg/logger"

	"github.com/invopop/jsonschema"
	"github.com/kaptinlin/jsonrepair"
)

// PayloadSchema returns the JSON Schema of the response payload.
func PayloadSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
	}

	schema := reflector.Reflect(&ChatResponse{})
	schema.Title = "Reasoning response"
	schema.Description = "A hypothesis with its entities and either scored reasoning paths or a ready graph."
	return schema
}

// unquotePayload unwraps a payload that was JSON encoded twice.
func unquotePayload(text string) (string, bool) {
	if !strings.HasPrefix(text, `"`) {
		return "", false
	}
	var inner string
	if err := json.Unmarshal([]byte(text), &inner); err != nil {
		return "", false
	}
	return strings.TrimSpace(inner), true
}

// dropDoubledBrace removes a second opening brace some generators emit,
// as in "{\n{ ... }".
func dropDoubledBrace(text string) string {
	if rest, ok := strings.CutPrefix(text, "{"); ok {
		rest = strings.TrimSpace(rest)
		if strings.HasPrefix(rest, "{") {
			return rest
		}
	}
	return text
}

// repairable reports whether a decode error is a syntax problem. Well-formed
// JSON with values of the wrong type or shape is not fixed by repairing it.
func repairable(err error) bool {
	var typeErr *json.UnmarshalTypeError
	return !errors.As(err, &typeErr) && !errors.Is(err, ErrMalformedInput)
}

// decodeLenient decodes a payload that is not always well-formed JSON.
// Besides plain JSON it accepts a payload encoded twice and, for syntax
// errors only, a repaired version of the input. Every failure wraps
// ErrMalformedInput.
func decodeLenient(data []byte, out any) error {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return fmt.Errorf("%w: empty payload", ErrMalformedInput)
	}

	err := json.Unmarshal([]byte(text), out)
	if err == nil {
		return nil
	}

	if inner, ok := unquotePayload(text); ok {
		err = json.Unmarshal([]byte(inner), out)
		if err == nil {
			return nil
		}
		text = inner
	}

	if !repairable(err) {
		if errors.Is(err, ErrMalformedInput) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	repaired, repairErr := jsonrepair.JSONRepair(dropDoubledBrace(text))
	if repairErr != nil {
		return fmt.Errorf("%w: %v (repair failed: %v)", ErrMalformedInput, err, repairErr)
	}
	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return fmt.Errorf("%w: unreadable after repair: %v", ErrMalformedInput, err)
	}

	logger.Debug("[Graph] Repaired malformed payload", "bytes", len(data))
	return nil
}
