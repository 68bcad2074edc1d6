// Package htmlx cleans admin-authored rich text before it is stored.
package htmlx

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.UGCPolicy()

// Sanitize strips scripts, event handlers and unknown tags, keeping basic formatting.
func Sanitize(s string) string {
	return strings.TrimSpace(policy.Sanitize(s))
}
