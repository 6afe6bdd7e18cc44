package layout

import (
	"strings"
	"unicode"

	"github.com/tsawler/papertrail/model"
)

// FeatureCount is the length of the vector returned by Features.
const FeatureCount = 12

// LearnedRoles is the output order of a learned classifier's scores.
var LearnedRoles = []model.Role{
	model.RoleHeader,
	model.RoleFooter,
	model.RoleTitle,
	model.RoleAbstract,
	model.RoleCaption,
	model.RoleTable,
	model.RoleReference,
	model.RoleColumn,
	model.RoleBodyText,
}

// Features describes one block as a fixed-length vector for a learned
// classifier: geometry, relative font size, text shape and page position.
func Features(page *model.Page, stats PageStats, index int) []float32 {
	b := page.Blocks[index]
	text := strings.TrimSpace(b.Text)

	var letters, upper, digits int
	for _, r := range text {
		switch {
		case unicode.IsLetter(r):
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		case unicode.IsDigit(r):
			digits++
		}
	}
	n := len([]rune(text))

	f := make([]float32, FeatureCount)
	f[0] = float32(b.BBox.X)
	f[1] = float32(b.BBox.Y)
	f[2] = float32(b.BBox.Width)
	f[3] = float32(b.BBox.Height)
	if stats.MedianFontSize > 0 {
		f[4] = float32(b.FontSize / stats.MedianFontSize)
	}
	f[5] = float32(min(n, 1000)) / 1000
	f[6] = float32(strings.Count(text, "\n") + 1)
	f[7] = ratio(upper, letters)
	f[8] = ratio(digits, n)
	if page.Number == 1 {
		f[9] = 1
	}
	if len(page.Blocks) > 1 {
		f[10] = float32(index) / float32(len(page.Blocks)-1)
	}
	f[11] = float32(len(stats.Columns))
	return f
}

func ratio(a, b int) float32 {
	if b == 0 {
		return 0
	}
	return float32(a) / float32(b)
}
