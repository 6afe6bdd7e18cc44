package citations

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/publicsuffix"
)

var (
	urlPattern     = regexp.MustCompile(`(?i)\bhttps?://[^\s<>"]+`)
	bareWWWPattern = regexp.MustCompile(`(?i)(?:^|[\s(\[])(www\.[^\s<>"]+)`)
)

// ExtractDOIs returns the distinct DOIs in text in order of first
// appearance. DOIs are compared case-insensitively.
func ExtractDOIs(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range doiPattern.FindAllString(text, -1) {
		doi := trimIdentifier(m)
		key := strings.ToLower(doi)
		if doi == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, doi)
	}
	return out
}

// ExtractURLs returns the distinct http(s) URLs and bare "www." hosts in
// text in order of first appearance. A URL is kept only when its host ends
// in a public suffix.
func ExtractURLs(text string) []string {
	type hit struct {
		pos int
		url string
	}
	var hits []hit
	for _, loc := range urlPattern.FindAllStringIndex(text, -1) {
		hits = append(hits, hit{loc[0], text[loc[0]:loc[1]]})
	}
	for _, m := range bareWWWPattern.FindAllStringSubmatchIndex(text, -1) {
		hits = append(hits, hit{m[2], text[m[2]:m[3]]})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	var out []string
	seen := make(map[string]bool)
	for _, h := range hits {
		u := trimIdentifier(h.url)
		if seen[u] || !validHost(u) {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// validHost reports whether the host of raw ends in an ICANN public suffix
// and has a registrable label in front of it.
func validHost(raw string) bool {
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" || !strings.Contains(host, ".") {
		return false
	}
	suffix, icann := publicsuffix.PublicSuffix(host)
	return icann && suffix != host
}

// trimIdentifier removes punctuation that ends the surrounding sentence
// rather than the identifier.
func trimIdentifier(s string) string {
	for {
		trimmed := strings.TrimRight(s, ".,;:'\"")
		if strings.HasSuffix(trimmed, ")") && strings.Count(trimmed, "(") < strings.Count(trimmed, ")") {
			trimmed = trimmed[:len(trimmed)-1]
		}
		if strings.HasSuffix(trimmed, "]") && strings.Count(trimmed, "[") < strings.Count(trimmed, "]") {
			trimmed = trimmed[:len(trimmed)-1]
		}
		if trimmed == s {
			return s
		}
		s = trimmed
	}
}
