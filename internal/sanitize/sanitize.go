// Package sanitize cleans raw model output before it is persisted or
// streamed back as the final artifact.
//
// The generation service is instructed to return a bare HTML document, but
// models routinely wrap output in Markdown code fences anyway. Stripping is
// limited to fence delimiters: malformed HTML passes through unchanged since
// the document's shape is the generation service's responsibility.
package sanitize

import (
	"regexp"
	"strings"
)

// fencePattern matches Markdown code-fence delimiters anywhere in the text:
// an opening fence with an optional language tag (```html, ```HTML, ```) or
// a bare closing fence. Case-insensitive on the language tag.
var fencePattern = regexp.MustCompile("(?i)```[a-z0-9]*")

// Clean strips code-fence delimiters and trims surrounding whitespace.
// Cleaning already-clean text returns it unchanged (idempotent).
func Clean(raw string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(raw, ""))
}
