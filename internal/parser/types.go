package parser

// UnknownAnswer marks a question whose correct option has not been curated yet.
const UnknownAnswer = -1

// OptionCount is the fixed number of options (A-D) every question must carry.
const OptionCount = 4

// optionLabels maps OptionSet slots to their printed labels.
var optionLabels = [OptionCount]byte{'A', 'B', 'C', 'D'}

// RawBlock is the text found between two numbering markers.
type RawBlock struct {
	QuestionNumber int
	RawText        string
}

// OptionSet holds the option texts in A, B, C, D order. Unmatched labels stay empty.
type OptionSet [OptionCount]string

// Get returns the option text for label (A-D) and false for any other label.
func (o OptionSet) Get(label byte) (string, bool) {
	idx := labelIndex(label)
	if idx < 0 {
		return "", false
	}
	return o[idx], true
}

// ParsedQuestion is the output unit of the parser.
type ParsedQuestion struct {
	QuestionText       string `json:"question_text" yaml:"question_text"`
	Option1            string `json:"option_1" yaml:"option_1"`
	Option2            string `json:"option_2" yaml:"option_2"`
	Option3            string `json:"option_3" yaml:"option_3"`
	Option4            string `json:"option_4" yaml:"option_4"`
	CorrectAnswerIndex int    `json:"correct_answer_index" yaml:"correct_answer_index"`
	Subject            string `json:"subject" yaml:"subject"`
}

// Options returns the four options in positional order.
func (q ParsedQuestion) Options() []string {
	return []string{q.Option1, q.Option2, q.Option3, q.Option4}
}

// Diagnostic describes one skipped block.
type Diagnostic struct {
	QuestionNumber int    `json:"question_number" yaml:"question_number"`
	Code           string `json:"code" yaml:"code"`
	Message        string `json:"message" yaml:"message"`
}

// Result is what a successful Process call returns.
type Result struct {
	Questions   []ParsedQuestion `json:"questions" yaml:"questions"`
	Diagnostics []Diagnostic     `json:"diagnostics" yaml:"diagnostics"`
	BlocksFound int              `json:"blocks_found" yaml:"blocks_found"`
}

func labelIndex(label byte) int {
	for i, l := range optionLabels {
		if l == label {
			return i
		}
	}
	return -1
}
