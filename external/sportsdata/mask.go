package sportsdata

import (
	"net/url"
	"regexp"
	"strings"
)

var secretParamRegex = regexp.MustCompile(`(?i)((?:^|[?&\s"'])(?:key|secret)=)([^&\s"']+)`)

// MaskSecret keeps the first three and last two characters of a secret.
// Values too short to reveal anything become "***".
func MaskSecret(value string) string {
	if len(value) <= 5 {
		return "***"
	}
	return value[:3] + "***" + value[len(value)-2:]
}

// MaskURL masks the key and secret query parameters of a URL.
func MaskURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return MaskText(rawURL)
	}
	query := parsed.Query()
	changed := false
	for name, values := range query {
		if !isSecretParam(name) {
			continue
		}
		for i, v := range values {
			values[i] = MaskSecret(v)
		}
		query[name] = values
		changed = true
	}
	if changed {
		parsed.RawQuery = strings.ReplaceAll(query.Encode(), "%2A", "*")
	}
	return parsed.String()
}

// MaskText masks key=/secret= pairs inside free text such as transport
// error messages.
func MaskText(text string) string {
	return secretParamRegex.ReplaceAllStringFunc(text, func(m string) string {
		parts := secretParamRegex.FindStringSubmatch(m)
		if len(parts) != 3 {
			return m
		}
		return parts[1] + MaskSecret(parts[2])
	})
}

func isSecretParam(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Contains(name, "key") || strings.Contains(name, "secret")
}
