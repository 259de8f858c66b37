// Package bind decodes and validates an HTTP request body into a struct.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/shashiranjanraj/authflow/config"
	"github.com/shashiranjanraj/authflow/pkg/validate"
)

// ErrTooLarge reports a body over MAX_BODY_BYTES.
var ErrTooLarge = errors.New("bind: request body too large")

// JSON decodes r.Body into dest and validates it. It returns (errs, nil) on
// validation failures and (nil, err) when the body is unreadable, not JSON
// or over MAX_BODY_BYTES.
func JSON(w http.ResponseWriter, r *http.Request, dest interface{}) (map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxBodyBytes())

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("%w (max %d bytes)", ErrTooLarge, maxErr.Limit)
		}
		return nil, fmt.Errorf("bind: invalid JSON: %w", err)
	}

	if errs := validate.Struct(dest); validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}
