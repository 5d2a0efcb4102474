package core

import (
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxRedactedLen = 256

// Secret shapes that may show up in service error bodies or transport errors.
var (
	bearerRe = regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9\-\._~\+\/]+=*`)
	kvRe     = regexp.MustCompile(
		`(?i)(api[_-]?key|token|secret|password|credential|access_token|refresh_token)\s*[:=]\s*["']?[^"'\s]+["']?`,
	)
	prefixedKeyRe = regexp.MustCompile(`\b((?:sk|pk|key|api)[-_][A-Za-z0-9_\-]{16,})\b`)
	jwtRe         = regexp.MustCompile(`\b(eyJ[A-Za-z0-9_\-]+\.eyJ[A-Za-z0-9_\-]+\.[A-Za-z0-9_\-]+)\b`)
	userinfoRe    = regexp.MustCompile(`(?i)(https?://)[^@\s/]+@`)
)

// RedactString trims s, scrubs credential-looking substrings and truncates
// the result.
func RedactString(s string) string {
	s = strings.TrimSpace(s)
	s = jwtRe.ReplaceAllString(s, "[JWT_REDACTED]")
	s = userinfoRe.ReplaceAllString(s, "$1[REDACTED]@")
	s = bearerRe.ReplaceAllString(s, "$1[REDACTED]")
	s = kvRe.ReplaceAllString(s, "$1=[REDACTED]")
	s = prefixedKeyRe.ReplaceAllString(s, "[REDACTED]")
	return truncate(s, maxRedactedLen)
}

// truncate cuts s to at most n bytes on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "…"
}

// RedactError is RedactString over err.Error(); nil yields "".
func RedactError(err error) string {
	if err == nil {
		return ""
	}
	return RedactString(err.Error())
}

var sensitiveHeaders = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
}

// RedactHeaders flattens h for logging, keeping the auth scheme but never
// the credential.
func RedactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, values := range h {
		v := strings.Join(values, ", ")
		lower := strings.ToLower(k)
		switch {
		case strings.HasSuffix(lower, "authorization"):
			out[k] = RedactString(v)
		case sensitiveHeaders[lower] || strings.Contains(lower, "token") || strings.Contains(lower, "secret"):
			out[k] = "[REDACTED]"
		default:
			out[k] = RedactString(v)
		}
	}
	return out
}
