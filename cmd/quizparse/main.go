// Command quizparse converts a text or PDF question sheet into JSON without
// touching the database.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/SAP-F-2025/quiz-import-service/internal/models"
	"github.com/SAP-F-2025/quiz-import-service/internal/parser"
	"github.com/SAP-F-2025/quiz-import-service/internal/services"
	"gopkg.in/yaml.v3"
)

type options struct {
	input   string
	subject string
	output  string
	format  string
	verbose bool
}

func main() {
	input := flag.String("input", "", "Path to a .txt or .pdf file (reads stdin when empty)")
	subject := flag.String("subject", models.DefaultSubject, "Subject attached to every question")
	output := flag.String("output", "", "Path to output file (defaults to stdout)")
	format := flag.String("format", "json", "Output format: json or yaml")
	verbose := flag.Bool("verbose", false, "Enable verbose output")

	flag.Parse()

	opts := options{
		input:   *input,
		subject: *subject,
		output:  *output,
		format:  *format,
		verbose: *verbose,
	}
	if err := run(opts, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options, stdin io.Reader, stdout, stderr io.Writer) error {
	if opts.format != "json" && opts.format != "yaml" {
		return fmt.Errorf("unknown output format %q", opts.format)
	}

	text, err := readInput(opts.input, stdin)
	if err != nil {
		return err
	}

	level := slog.LevelError
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	subject := strings.TrimSpace(opts.subject)
	if subject == "" {
		subject = models.DefaultSubject
	}

	result, err := parser.New(logger).Process(text, subject)
	if err != nil {
		return err
	}

	for _, d := range result.Diagnostics {
		fmt.Fprintf(stderr, "skipped question %d: %s: %s\n", d.QuestionNumber, d.Code, d.Message)
	}
	if opts.verbose {
		fmt.Fprintf(stderr, "Parsed %d of %d question blocks\n", len(result.Questions), result.BlocksFound)
	}

	out := stdout
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("cannot create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	return writeResult(out, opts.format, result)
}

func writeResult(w io.Writer, format string, result *parser.Result) error {
	if format == "yaml" {
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(result); err != nil {
			return fmt.Errorf("failed to write YAML: %w", err)
		}
		return encoder.Close()
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

func readInput(input string, stdin io.Reader) (string, error) {
	if input == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("cannot read stdin: %w", err)
		}
		return string(data), nil
	}

	extractor, _, err := services.ExtractorFor(input)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return "", fmt.Errorf("cannot read input file: %w", err)
	}

	text, err := extractor.Extract(context.Background(), data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", filepath.Base(input), err)
	}
	return text, nil
}
