package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// textPolicy strips markup from free text before it is stored.
var textPolicy = bluemonday.StrictPolicy()

// sanitizeText drops tags but stores the remaining text as plain characters.
// The policy emits HTML entities for &, <, > and quotes, which would inflate
// lengths and show up literally in JSON clients.
func sanitizeText(value string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(value)))
}

// maskEmail keeps the first and last character of the local part so log
// lines stay useful without carrying the full address.
func maskEmail(email string) string {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return ""
	}
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || strings.Contains(domain, "@") {
		return "***"
	}
	if len(local) <= 2 {
		return local[:1] + "***@" + domain
	}
	return local[:1] + "***" + local[len(local)-1:] + "@" + domain
}
