// Package question segments raw question-paper text into discrete,
// independently analyzable question units.
package question

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Unit is one segmented question. Index is 1-based and follows source order.
type Unit struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// minQuestionLen filters fragments too short to be a real question.
const minQuestionLen = 10

// markerRe locates numbering markers at line starts: "12.", "Q. 3", "Q3",
// "7)". RE2 has no lookahead, so fragments are cut at the capture-group
// start to keep the marker attached to the following question.
var markerRe = regexp.MustCompile(`\n\s*(\d{1,3}\.|Q\.?\s*\d{1,3}|\d{1,3}\))`)

// innerMarkerRe catches a fresh "12. " marker directly after non-whitespace
// content, for multiple questions OCR'd into one line or block. The trailing
// whitespace requirement keeps decimals like "2.5" intact.
var innerMarkerRe = regexp.MustCompile(`\S\s+(\d{1,3}\.)\s`)

// Split segments question-paper text into at most max units. A max of zero
// or less means no cap.
func Split(text string, max int) []Unit {
	text = normalizeText(text)
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var fragments []string
	for _, part := range cutAtGroup(text, markerRe) {
		fragments = append(fragments, cutAtGroup(part, innerMarkerRe)...)
	}

	var units []Unit
	for _, f := range fragments {
		f = strings.TrimSpace(f)
		if utf8.RuneCountInString(f) <= minQuestionLen {
			continue
		}
		units = append(units, Unit{Index: len(units) + 1, Text: f})
		if max > 0 && len(units) == max {
			break
		}
	}
	return units
}

// FallbackLines is a degraded segmentation policy for papers where no
// numbering marker survives OCR: every non-blank line longer than five words
// becomes one question. This is caller policy, not a Split guarantee.
func FallbackLines(text string, max int) []Unit {
	var units []Unit
	for _, line := range strings.Split(normalizeText(text), "\n") {
		line = strings.TrimSpace(line)
		if len(strings.Fields(line)) <= 5 {
			continue
		}
		units = append(units, Unit{Index: len(units) + 1, Text: line})
		if max > 0 && len(units) == max {
			break
		}
	}
	return units
}

// normalizeText folds carriage returns and applies NFKC so OCR artifacts
// (ligatures, fullwidth digits) compare like their plain forms.
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return norm.NFKC.String(text)
}

// cutAtGroup splits s at the start of the first capture group of every
// match of re, keeping the matched marker with the following piece.
func cutAtGroup(s string, re *regexp.Regexp) []string {
	locs := re.FindAllStringSubmatchIndex(s, -1)
	if len(locs) == 0 {
		return []string{s}
	}
	var parts []string
	prev := 0
	for _, loc := range locs {
		cut := loc[2] // capture group start
		if cut > prev {
			parts = append(parts, s[prev:cut])
		}
		prev = cut
	}
	parts = append(parts, s[prev:])
	return parts
}
