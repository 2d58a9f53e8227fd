package parseapi

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"golang.org/x/text/language"
)

// Patterns are tried in order; the first one yielding a code in [400,599] wins.
var codePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:Client|Server) error '(\d{3})`),
	regexp.MustCompile(`\b(\d{3}) [A-Z][A-Za-z -]*`),
	regexp.MustCompile(`\b(\d{3})\b`),
}

// ClassifyError extracts an HTTP-like status code from err and returns it with
// a localized message. A code of 0 means none could be determined and the
// message is the generic fallback.
func ClassifyError(err error, lang language.Tag) (int, string) {
	table := tableFor(lang)
	if err == nil {
		return 0, table.fallback
	}

	code := 0
	var perr *ProviderError
	if errors.As(err, &perr) && isErrorCode(perr.StatusCode) {
		code = perr.StatusCode
	} else {
		code = codeFromText(err.Error())
	}

	if code == 0 {
		return 0, table.fallback
	}
	if msg, ok := table.codes[code]; ok {
		return code, msg
	}
	return code, fmt.Sprintf(table.unknown, code)
}

// FormatFailure renders a classified error as "[code] message", or just the
// message when no code was found.
func FormatFailure(err error, lang language.Tag) string {
	code, msg := ClassifyError(err, lang)
	if code == 0 {
		return msg
	}
	return fmt.Sprintf("[%d] %s", code, msg)
}

func codeFromText(text string) int {
	for _, re := range codePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			code, err := strconv.Atoi(m[1])
			if err == nil && isErrorCode(code) {
				return code
			}
		}
	}
	return 0
}

func isErrorCode(code int) bool {
	return code >= 400 && code <= 599
}
