package layout

import (
	"strings"
)

// CaptionCues returns the lines of text that start like a figure or table
// caption ("Figure 2.", "Table 1:", "Fig. 3a"), trimmed, in order and
// without duplicates.
func CaptionCues(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || seen[line] || !captionPattern.MatchString(line) {
			continue
		}
		seen[line] = true
		out = append(out, line)
	}
	return out
}
