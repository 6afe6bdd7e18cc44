package sections

import (
	"strings"

	"github.com/tsawler/papertrail/model"
)

// MethodologyContext extracts methodology text with the default
// configuration.
func MethodologyContext(text string, secs []model.Section) string {
	return NewSegmenter().MethodologyContext(text, secs)
}

// MethodologyContext returns the text of every section whose heading names
// a methodology topic, joined by blank lines. When there is no such section
// it falls back to paragraphs of text that contain a methodology phrase, up
// to MaxMethodologyParagraphs of them.
func (s *Segmenter) MethodologyContext(text string, secs []model.Section) string {
	var parts []string
	if s.config.MethodologyHeading != nil {
		for _, sec := range secs {
			if sec.Heading == "" || !s.config.MethodologyHeading.MatchString(sec.Heading) {
				continue
			}
			if body := strings.TrimSpace(sec.Text); body != "" {
				parts = append(parts, sec.Heading+"\n"+body)
			}
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, "\n\n")
	}
	return strings.Join(s.methodologyParagraphs(text), "\n\n")
}

func (s *Segmenter) methodologyParagraphs(text string) []string {
	var out []string
	for _, para := range strings.Split(text, "\n\n") {
		if s.config.MaxMethodologyParagraphs > 0 && len(out) >= s.config.MaxMethodologyParagraphs {
			break
		}
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		lower := strings.ToLower(para)
		for _, phrase := range s.config.MethodologyPhrases {
			if strings.Contains(lower, phrase) {
				out = append(out, para)
				break
			}
		}
	}
	return out
}
