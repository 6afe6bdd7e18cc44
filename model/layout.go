package model

// Role is the semantic role of a text block on its page.
type Role string

const (
	RoleHeader    Role = "header"
	RoleFooter    Role = "footer"
	RoleTitle     Role = "title"
	RoleAbstract  Role = "abstract"
	RoleCaption   Role = "caption"
	RoleTable     Role = "table"
	RoleReference Role = "reference"
	RoleColumn    Role = "column"
	RoleBodyText  Role = "body_text"
	RoleUnknown   Role = "unknown"
)

// Band is a horizontal range in normalized page units.
type Band struct {
	Start float64
	End   float64
}

// Width returns the band width
func (b Band) Width() float64 {
	return b.End - b.Start
}

// Covers reports whether [start,end] falls inside the band, allowing tol of
// slack on each side.
func (b Band) Covers(start, end, tol float64) bool {
	return start >= b.Start-tol && end <= b.End+tol
}

// BlockLabel assigns a role to one block of a page.
type BlockLabel struct {
	BlockIndex int // Index into Page.Blocks
	Role       Role
	Confidence float64
	Source     string // "heuristic" or the classifier name
}

// PageLayout is the layout analysis result for one page.
type PageLayout struct {
	PageNumber int
	Columns    []Band
	Labels     []BlockLabel
}

// BlocksWithRole returns the block indexes labelled with role.
func (l PageLayout) BlocksWithRole(role Role) []int {
	var out []int
	for _, lbl := range l.Labels {
		if lbl.Role == role {
			out = append(out, lbl.BlockIndex)
		}
	}
	return out
}
