// Package sanitize cleans user-supplied text before it is stored. Calendar
// definitions are plain text: unit names, display names and slot labels
// must never carry markup into API responses or formatted output.
package sanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

// policy is the singleton bluemonday policy that strips every tag.
// Initialized once via sync.Once for thread-safe lazy initialization.
var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared strict policy, initializing it on first call.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// Text strips all markup from input and returns trimmed plain text.
// bluemonday escapes what it keeps, so entities are decoded afterwards:
// "Moon & Sun" stays "Moon & Sun" while "<b>Moon</b>" becomes "Moon".
func Text(input string) string {
	if input == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(getPolicy().Sanitize(input)))
}

// Name is Text plus Unicode NFC normalization. Display names group units
// into buckets, so two spellings of the same name must compare equal.
func Name(input string) string {
	return norm.NFC.String(Text(input))
}
