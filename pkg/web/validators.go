package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// DateLayout is the layout of date query parameters.
const DateLayout = "2006-01-02"

// ParamValidator is a function type that validates a parameter.
type ParamValidator func(valueToTest int64) bool

// gt returns a ParamValidator that checks if the argument is greater than the value captured in the closure.
func gt(valToCompareAgainst int64) ParamValidator {
	return func(argValue int64) bool {
		return argValue > valToCompareAgainst
	}
}

// ParseOptionalGt parses an optional integer query parameter that must be greater than value.
// Returns 0 when the parameter is absent.
func ParseOptionalGt(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, value int64) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, true
	}
	intValue, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || !gt(value)(intValue) {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, raw))
		return 0, false
	}
	return int(intValue), true
}

// ParseOptionalDate parses an optional YYYY-MM-DD query parameter in loc.
// Returns nil when the parameter is absent.
func ParseOptionalDate(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, loc *time.Location) (*time.Time, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, true
	}
	t, err := time.ParseInLocation(DateLayout, raw, loc)
	if err != nil {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s date, expected YYYY-MM-DD: %s", key, raw))
		return nil, false
	}
	return &t, true
}
