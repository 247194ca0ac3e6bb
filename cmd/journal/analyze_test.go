package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestAnalyzeArgs(t *testing.T) {
	out, err := runCommand(t, "", "analyze", "I", "love", "my", "family.")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Greater(t, got["sentiment"], 0.0)
	assert.Contains(t, got["themes"], "family")
	assert.Contains(t, got, "confidence")
	assert.Contains(t, got, "emotion")
	assert.Contains(t, got, "summary")
}

func TestAnalyzeStdin(t *testing.T) {
	out, err := runCommand(t, "A long meeting at the office.\n", "analyze")
	require.NoError(t, err)
	assert.Contains(t, out, `"work"`)
}

func TestAnalyzeEmpty(t *testing.T) {
	_, err := runCommand(t, "   ", "analyze")
	assert.Error(t, err)
}
