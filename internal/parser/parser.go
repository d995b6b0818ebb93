// Package parser turns extracted document text into multiple-choice question records.
//
// The pipeline is Segment -> SplitBlock -> ExtractOptions -> Normalize, driven by
// Parser.Process. Malformed blocks are skipped with a diagnostic; anything else aborts
// the batch with a *SystemicError.
package parser

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"
)

// Parser is safe for concurrent use; it holds no mutable state.
type Parser struct {
	logger     *slog.Logger
	parseBlock func(RawBlock, string) (ParsedQuestion, *BlockError)
}

// New creates a parser that reports skipped blocks to logger. A nil logger discards them.
func New(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Parser{
		logger:     logger.With("component", "question_parser"),
		parseBlock: processBlock,
	}
}

// Process runs the full pipeline over text, stamping every record with subject.
func (p *Parser) Process(text, subject string) (result *Result, err error) {
	if !utf8.ValidString(text) {
		return nil, &SystemicError{Stage: "input", Err: ErrInvalidEncoding}
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &SystemicError{Stage: "batch", Err: fmt.Errorf("%w: %v", ErrUnexpected, r)}
			p.logger.Error("Question batch aborted", "error", err)
		}
	}()

	blocks, diagnostics := Segment(text)
	for _, d := range diagnostics {
		p.report(d)
	}

	result = &Result{
		Questions:   make([]ParsedQuestion, 0, len(blocks)),
		Diagnostics: diagnostics,
		BlocksFound: len(blocks) + len(diagnostics),
	}

	for _, block := range blocks {
		question, blockErr := p.parseBlock(block, subject)
		if blockErr != nil {
			d := blockErr.Diagnostic()
			p.report(d)
			result.Diagnostics = append(result.Diagnostics, d)
			continue
		}
		result.Questions = append(result.Questions, question)
	}

	p.logger.Debug("Question batch parsed",
		"blocks_found", result.BlocksFound,
		"questions", len(result.Questions),
		"skipped", len(result.Diagnostics))

	return result, nil
}

func processBlock(block RawBlock, subject string) (ParsedQuestion, *BlockError) {
	questionText, optionsText, ok := SplitBlock(block.RawText)
	if !ok {
		return ParsedQuestion{}, newMalformedBlock(block.QuestionNumber, "no option lines (A. to D.) found")
	}
	return Normalize(block.QuestionNumber, questionText, ExtractOptions(optionsText), subject)
}

func (p *Parser) report(d Diagnostic) {
	p.logger.LogAttrs(context.Background(), slog.LevelWarn, "Skipped question block",
		slog.Int("question_number", d.QuestionNumber),
		slog.String("code", d.Code),
		slog.String("reason", d.Message))
}
