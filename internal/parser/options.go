package parser

import "strings"

type labelMarker struct {
	slot      int // index into OptionSet
	start     int // offset of the label letter
	textStart int // offset of the first byte of option text
}

// ExtractOptions pulls the A-D option texts out of an options region. Each option runs
// from its label to the next label or the end of text, so wrapped lines stay attached.
// A repeated label overwrites the earlier text.
func ExtractOptions(optionsText string) OptionSet {
	var set OptionSet

	markers := findLabelMarkers(optionsText)
	for i, m := range markers {
		end := len(optionsText)
		if i+1 < len(markers) {
			end = markers[i+1].start
		}
		set[m.slot] = strings.TrimSpace(optionsText[m.textStart:end])
	}

	return set
}

// findLabelMarkers scans forward once. A label counts only at the start of the text or
// after whitespace, which keeps abbreviations like "U.S.A." intact.
func findLabelMarkers(text string) []labelMarker {
	var markers []labelMarker
	for i := 0; i+1 < len(text); i++ {
		slot := labelIndex(text[i])
		if slot < 0 || text[i+1] != '.' {
			continue
		}
		if i > 0 && !isSpace(text[i-1]) {
			continue
		}

		textStart := i + 2
		if textStart < len(text) && text[textStart] == ' ' {
			textStart++
		}
		markers = append(markers, labelMarker{slot: slot, start: i, textStart: textStart})
		i = textStart - 1
	}
	return markers
}
