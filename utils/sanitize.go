package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var textPolicy = bluemonday.StrictPolicy()

// SanitizeText membuang semua tag HTML dari input user dan merapikan spasi.
func SanitizeText(s string) string {
	clean := textPolicy.Sanitize(s)
	return strings.TrimSpace(html.UnescapeString(clean))
}
