package layout

import (
	"sort"

	"github.com/tsawler/papertrail/model"
)

// PageStats holds the per-page measurements the rules work from. All values
// are in normalized page units with a top-left origin.
type PageStats struct {
	// HeaderBand is the Y below which a block starts in the header band
	HeaderBand float64

	// FooterBand is the Y beyond which a block ends in the footer band
	FooterBand float64

	// Columns are the detected column bands, left to right
	Columns []model.Band

	// Primary is the index of the column holding the most lines, or -1
	Primary int

	// MedianFontSize is the median font size of the page's line blocks
	MedianFontSize float64

	// TableBlocks holds the indexes of line blocks, and their spans, that
	// sit in a run of tabular lines
	TableBlocks map[int]bool
}

// MultiColumn reports whether more than one column was detected.
func (s PageStats) MultiColumn() bool {
	return len(s.Columns) > 1
}

// ComputeStats measures a page.
func ComputeStats(page *model.Page, cfg Config) PageStats {
	stats := PageStats{
		HeaderBand: cfg.HeaderBand,
		FooterBand: 1 - cfg.FooterBand,
		Primary:    -1,
	}

	lines := page.Lines()
	if len(lines) == 0 {
		lines = page.Blocks
	}

	var sizes []float64
	for _, b := range lines {
		if b.FontSize > 0 {
			sizes = append(sizes, b.FontSize)
		}
	}
	stats.MedianFontSize = median(sizes)

	stats.Columns, stats.Primary = detectColumns(lines, cfg)
	stats.TableBlocks = tableBlocks(page.Blocks, cfg)
	return stats
}

// row is one line block with the span blocks that follow it.
type row struct {
	index int
	spans []int
	cells bool
}

// tableBlocks finds runs of vertically adjacent line blocks and marks every
// run of two or more lines in which at least TableLineRatio of the lines
// have cell structure. A line has cell structure when its text holds a cell
// separator or two of its spans sit at least TableCellGap apart.
func tableBlocks(blocks []model.TextBlock, cfg Config) map[int]bool {
	var rows []row
	for i, b := range blocks {
		if b.Granularity == model.GranularitySpan {
			if len(rows) > 0 {
				rows[len(rows)-1].spans = append(rows[len(rows)-1].spans, i)
			}
			continue
		}
		rows = append(rows, row{index: i, cells: cellSeparator.MatchString(b.Text)})
	}
	for k := range rows {
		if !rows[k].cells {
			rows[k].cells = spacedSpans(blocks, rows[k].spans, cfg.TableCellGap)
		}
	}

	marked := make(map[int]bool)
	start := 0
	for k := 1; k <= len(rows); k++ {
		if k < len(rows) && adjacentLines(blocks[rows[k-1].index].BBox, blocks[rows[k].index].BBox) {
			continue
		}
		run := rows[start:k]
		start = k
		if len(run) < 2 {
			continue
		}
		cells := 0
		for _, r := range run {
			if r.cells {
				cells++
			}
		}
		if float64(cells)/float64(len(run)) < cfg.TableLineRatio {
			continue
		}
		for _, r := range run {
			marked[r.index] = true
			for _, s := range r.spans {
				marked[s] = true
			}
		}
	}
	return marked
}

// adjacentLines reports whether next starts within one line height of the
// bottom of prev.
func adjacentLines(prev, next model.BBox) bool {
	gap := next.Y - prev.Bottom()
	return gap >= -prev.Height && gap <= prev.Height
}

func spacedSpans(blocks []model.TextBlock, spans []int, minGap float64) bool {
	for k := 1; k < len(spans); k++ {
		if blocks[spans[k]].BBox.X-blocks[spans[k-1]].BBox.Right() >= minGap {
			return true
		}
	}
	return false
}

type cluster struct {
	band  model.Band
	count int
}

// detectColumns clusters the left edges of line blocks. Consecutive left
// edges closer than MergeThreshold join one cluster; clusters with enough
// lines and width become column bands.
func detectColumns(lines []model.TextBlock, cfg Config) ([]model.Band, int) {
	if len(lines) == 0 {
		return nil, -1
	}

	sorted := make([]model.TextBlock, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].BBox.X < sorted[j].BBox.X })

	var clusters []cluster
	lastX := sorted[0].BBox.X
	for i, b := range sorted {
		if i == 0 || b.BBox.X-lastX > cfg.ColumnMergeThreshold {
			clusters = append(clusters, cluster{band: model.Band{Start: b.BBox.X, End: b.BBox.Right()}})
		}
		c := &clusters[len(clusters)-1]
		c.count++
		if b.BBox.Right() > c.band.End {
			c.band.End = b.BBox.Right()
		}
		lastX = b.BBox.X
	}

	var kept []cluster
	for _, c := range clusters {
		if c.count >= cfg.MinColumnLines && c.band.Width() >= cfg.MinColumnWidth {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return nil, -1
	}

	bands := make([]model.Band, len(kept))
	primary := 0
	for i, c := range kept {
		bands[i] = c.band
		// Full-width lines in the left cluster must not overlap the next column.
		if i+1 < len(kept) && bands[i].End > kept[i+1].band.Start {
			bands[i].End = kept[i+1].band.Start
		}
		if c.count > kept[primary].count {
			primary = i
		}
	}
	return bands, primary
}

func median(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	s := make([]float64, len(v))
	copy(s, v)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 0 {
		return (s[mid-1] + s[mid]) / 2
	}
	return s[mid]
}
