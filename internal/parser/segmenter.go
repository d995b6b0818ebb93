package parser

import (
	"regexp"
	"strconv"
)

// questionMarker matches "12. " at the start of a line, after optional spaces or tabs.
var questionMarker = regexp.MustCompile(`(?m)^[ \t]*(\d+)\. `)

type marker struct {
	start, end int    // marker span in the source text
	numeral    string // captured digit run
}

// Segment cuts text into numbered blocks. Text before the first marker is dropped.
// A numeral that does not convert to an int skips its block with a diagnostic.
func Segment(text string) ([]RawBlock, []Diagnostic) {
	markers := findMarkers(text)
	if len(markers) == 0 {
		return nil, nil
	}

	blocks := make([]RawBlock, 0, len(markers))
	var diagnostics []Diagnostic

	for i, m := range markers {
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1].start
		}

		number, err := strconv.Atoi(m.numeral)
		if err != nil {
			diagnostics = append(diagnostics, Diagnostic{
				QuestionNumber: -1,
				Code:           CodeMalformedBlock,
				Message:        "question number " + m.numeral + " is not a valid integer",
			})
			continue
		}

		blocks = append(blocks, RawBlock{
			QuestionNumber: number,
			RawText:        text[m.end:end],
		})
	}

	return blocks, diagnostics
}

// findMarkers is the first pass: it only records where each marker sits.
func findMarkers(text string) []marker {
	matches := questionMarker.FindAllStringSubmatchIndex(text, -1)
	markers := make([]marker, 0, len(matches))
	for _, m := range matches {
		markers = append(markers, marker{
			start:   m[0],
			end:     m[1],
			numeral: text[m[2]:m[3]],
		})
	}
	return markers
}
