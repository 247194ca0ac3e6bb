package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"journal/internal/analysis"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text]",
	Short: "Print the analysis of text given as arguments or on stdin",
	RunE:  runAnalyze,
}

type analyzeOutput struct {
	analysis.Sentiment
	Themes  []string `json:"themes"`
	Summary string   `json:"summary"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if len(args) == 0 {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(b)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("no text to analyze")
	}

	a := analysis.NewAnalyzer(nil, nil).Analyze(text, false, "")
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(analyzeOutput{Sentiment: a.Sentiment, Themes: a.Themes, Summary: a.Summary})
}
