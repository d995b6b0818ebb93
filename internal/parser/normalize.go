package parser

import "strings"

// Normalize validates one block and builds its record. It requires non-blank question
// text and exactly four non-blank options.
func Normalize(number int, questionText string, options OptionSet, subject string) (ParsedQuestion, *BlockError) {
	text := collapseSpace(questionText)
	if text == "" {
		return ParsedQuestion{}, &BlockError{
			QuestionNumber: number,
			Code:           CodeEmptyQuestionText,
			Reason:         "no question text before the first option",
		}
	}

	var cleaned OptionSet
	found := 0
	var missing []string
	for i, opt := range options {
		cleaned[i] = collapseSpace(opt)
		if cleaned[i] != "" {
			found++
		} else {
			missing = append(missing, string(optionLabels[i]))
		}
	}
	if found != OptionCount {
		return ParsedQuestion{}, newMalformedBlock(number,
			"expected %d options, found %d (missing %s)", OptionCount, found, strings.Join(missing, ", "))
	}

	return ParsedQuestion{
		QuestionText:       text,
		Option1:            cleaned[0],
		Option2:            cleaned[1],
		Option3:            cleaned[2],
		Option4:            cleaned[3],
		CorrectAnswerIndex: UnknownAnswer,
		Subject:            subject,
	}, nil
}

// collapseSpace trims s and folds every internal whitespace run, line breaks included,
// into a single space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
