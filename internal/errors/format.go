package errors

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// FormatForCLI formats an error for terminal display.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	se, ok := As(err)
	if !ok {
		return fmt.Sprintf("Error: %s\n", err.Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", se.Message)
	if se.Suggestion != "" {
		fmt.Fprintf(&sb, "  Hint: %s\n", se.Suggestion)
	}
	fmt.Fprintf(&sb, "  Code: %s\n", se.Code)
	return sb.String()
}

// FormatForUser returns a short message suitable for a spoken or chat reply.
// Codes and causes are left out.
func FormatForUser(err error) string {
	if err == nil {
		return ""
	}
	se, ok := As(err)
	if !ok {
		return err.Error()
	}
	if se.Suggestion != "" {
		return se.Message + ". " + se.Suggestion
	}
	return se.Message
}

// jsonError is the JSON representation of an error.
type jsonError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Category   string            `json:"category"`
	Severity   string            `json:"severity"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
	Retryable  bool              `json:"retryable"`
}

// FormatJSON returns a JSON representation of the error.
func FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return json.Marshal(nil)
	}

	se, ok := As(err)
	if !ok {
		se = Wrap(ErrCodeInternal, err)
	}

	je := jsonError{
		Code:       se.Code,
		Message:    se.Message,
		Category:   string(se.Category),
		Severity:   string(se.Severity),
		Details:    se.Details,
		Suggestion: se.Suggestion,
		Retryable:  se.Retryable,
	}
	if se.Cause != nil {
		je.Cause = se.Cause.Error()
	}
	return json.Marshal(je)
}

// LogAttrs returns slog attributes describing err, for use as
// slog.Warn("event", errors.LogAttrs(err)...).
func LogAttrs(err error) []any {
	if err == nil {
		return nil
	}

	se, ok := As(err)
	if !ok {
		return []any{slog.String("error", err.Error())}
	}

	attrs := []any{
		slog.String("error_code", se.Code),
		slog.String("error", se.Message),
		slog.String("category", string(se.Category)),
		slog.Bool("retryable", se.Retryable),
	}
	if se.Cause != nil {
		attrs = append(attrs, slog.String("cause", se.Cause.Error()))
	}

	keys := make([]string, 0, len(se.Details))
	for k := range se.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, slog.String("detail_"+k, se.Details[k]))
	}
	return attrs
}
