package parser

import "strings"

// SplitBlock separates a block's prose from its options. The boundary is the first
// line that opens with an option label ("A." .. "D.") followed by whitespace or the
// end of the line. ok is false when no such line exists.
func SplitBlock(raw string) (questionText, optionsText string, ok bool) {
	offset := 0
	for offset <= len(raw) {
		lineEnd := strings.IndexByte(raw[offset:], '\n')
		line := raw[offset:]
		if lineEnd >= 0 {
			line = raw[offset : offset+lineEnd]
		}

		if isOptionLine(line) {
			return strings.TrimSpace(raw[:offset]), strings.TrimSpace(raw[offset:]), true
		}

		if lineEnd < 0 {
			break
		}
		offset += lineEnd + 1
	}
	return "", "", false
}

func isOptionLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	if len(trimmed) < 2 || labelIndex(trimmed[0]) < 0 || trimmed[1] != '.' {
		return false
	}
	return len(trimmed) == 2 || isSpace(trimmed[2])
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '\v', '\f':
		return true
	}
	return false
}
