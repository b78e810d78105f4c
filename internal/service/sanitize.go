package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// plainText strips markup from free text that is later forwarded to the oracle.
func plainText(policy *bluemonday.Policy, value string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(value)))
}

func plainTextSlice(policy *bluemonday.Policy, values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if clean := plainText(policy, value); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}
