package normalize

import "fmt"

// ResponseFormatError reports a provider payload that could not be turned
// into a parsed document. The offending payload is kept for diagnosis.
type ResponseFormatError struct {
	Reason  string
	Payload map[string]any
}

func (e *ResponseFormatError) Error() string {
	return fmt.Sprintf("response parsing failed: %s", e.Reason)
}

func formatErr(payload map[string]any, format string, args ...any) *ResponseFormatError {
	return &ResponseFormatError{Reason: fmt.Sprintf(format, args...), Payload: payload}
}
