package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mdwerror "github.com/msto63/spi/foundation/core/error"
)

// executeCommand runs the root command with fresh flag values and returns stdout
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeCommandAtLevel(t, "error", args...)
}

func executeCommandAtLevel(t *testing.T, level string, args ...string) (string, error) {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("SPI_HISTORY_PATH", filepath.Join(dir, "history.db"))
	t.Setenv("SPI_LOG_LEVEL", level)

	cfgFile = filepath.Join(dir, "missing.toml")
	verbose = false
	outputFormat = "text"
	runExpr, calcExpr, tokensExpr, astExpr = "", "", "", ""
	astMode, astFormat, astPositions = "program", "yaml", false
	historyLimit, historySource, historyMode = 0, "", ""
	historyFailed, historyClear = false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRunCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr mdwerror.Code
	}{
		{"bindings", []string{"run", "-e", "BEGIN b := 2; a := b * 3 END."}, "a = 6\nb = 2\n", ""},
		{"nested flat scope", []string{"run", "-e", "BEGIN a := 2; b := a + 3; BEGIN x := 1 END END."}, "a = 2\nb = 5\nx = 1\n", ""},
		{"empty program", []string{"run", "-e", "BEGIN END."}, "", ""},
		{"missing dot", []string{"run", "-e", "BEGIN a := 1 END"}, "", mdwerror.CodePascalSyntax},
		{"undefined variable", []string{"run", "-e", "BEGIN a := b + 1 END."}, "", mdwerror.CodePascalRuntime},
		{"example file", []string{"run", filepath.Join("..", "..", "..", "examples", "sum.pas")}, "mean = 5\nn = 10\nrest = 5\nsum = 55\n", ""},
		{"missing file", []string{"run", "/does/not/exist.pas"}, "", mdwerror.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeCommand(t, tt.args...)
			if tt.wantErr != "" {
				if !mdwerror.HasCode(err, tt.wantErr) {
					t.Errorf("Expected error code %s, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if out != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, out)
			}
		})
	}
}

func TestCalcCommand(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"calc", "7 + 3 * (10 / (12 / (3 + 1) - 1))"}, "22\n"},
		{[]string{"calc", "--", "-7", "/", "2"}, "-3\n"},
		{[]string{"calc", "-e", "- -3"}, "3\n"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := executeCommand(t, tt.args...)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if out != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, out)
			}
		})
	}
}

func TestRejectedInputReportedOnce(t *testing.T) {
	stderrPath := filepath.Join(t.TempDir(), "stderr")
	stderr, err := os.Create(stderrPath)
	if err != nil {
		t.Fatalf("Failed to create stderr file: %v", err)
	}
	saved := os.Stderr
	os.Stderr = stderr
	defer func() { os.Stderr = saved }()

	_, err = executeCommandAtLevel(t, "info", "calc", "-e", "3 @ 4")
	stderr.Close()
	if !mdwerror.HasCode(err, mdwerror.CodePascalLex) {
		t.Fatalf("Expected CodePascalLex, got %v", err)
	}

	data, err := os.ReadFile(stderrPath)
	if err != nil {
		t.Fatalf("Failed to read stderr: %v", err)
	}
	out := string(data)
	if strings.Count(out, "invalid character") != 1 {
		t.Errorf("Expected the error exactly once, got %q", out)
	}
	if strings.Contains(out, "[INF]") {
		t.Errorf("Expected no info log lines, got %q", out)
	}
}

func TestRunCommand_JSONOutput(t *testing.T) {
	out, err := executeCommand(t, "run", "-o", "json", "-e", "BEGIN x := 7 / 2 END.")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var decoded struct {
		Mode     string `json:"mode"`
		Bindings []struct {
			Name  string `json:"name"`
			Value int64  `json:"value"`
		} `json:"bindings"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("Expected JSON output, got %q: %v", out, err)
	}
	if decoded.Mode != "program" {
		t.Errorf("Expected mode program, got %s", decoded.Mode)
	}
	if len(decoded.Bindings) != 1 || decoded.Bindings[0].Value != 3 {
		t.Errorf("Expected x = 3, got %+v", decoded.Bindings)
	}
}

func TestOutputFlagValidation(t *testing.T) {
	_, err := executeCommand(t, "calc", "-o", "xml", "1")
	if !mdwerror.HasCode(err, mdwerror.CodeInvalidInput) {
		t.Errorf("Expected CodeInvalidInput, got %v", err)
	}
}

func TestTokensCommand(t *testing.T) {
	out, err := executeCommand(t, "tokens", "-e", "x := 3")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected 4 tokens, got %d: %q", len(lines), out)
	}
	if lines[0] != "Token(ID, x)" {
		t.Errorf("Expected 'Token(ID, x)', got %q", lines[0])
	}
	if !strings.HasPrefix(lines[3], "Token(EOF") {
		t.Errorf("Expected EOF token last, got %q", lines[3])
	}
}

func TestTokensCommand_LexError(t *testing.T) {
	out, err := executeCommand(t, "tokens", "-e", "3 @ 4")
	if !mdwerror.HasCode(err, mdwerror.CodePascalLex) {
		t.Errorf("Expected CodePascalLex, got %v", err)
	}
	if !strings.HasPrefix(out, "Token(INTEGER, 3)") {
		t.Errorf("Expected tokens before the error, got %q", out)
	}
}

func TestASTCommand(t *testing.T) {
	out, err := executeCommand(t, "ast", "--mode", "calc", "--format", "source", "-e", "1+2*3")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != "(1 + (2 * 3))" {
		t.Errorf("Expected canonical source, got %q", out)
	}

	out, err = executeCommand(t, "ast", "-e", "BEGIN x := 1 END.")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "Compound") || !strings.Contains(out, "Assign") {
		t.Errorf("Expected YAML tree, got %q", out)
	}
}

func TestHistoryCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.db")

	run := func(args ...string) string {
		t.Helper()
		// executeCommand sets its own path, so override it afterwards
		cfgFile = filepath.Join(dir, "missing.toml")
		t.Setenv("SPI_HISTORY_PATH", path)
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs(args)
		if err := rootCmd.ExecuteContext(context.Background()); err != nil {
			t.Fatalf("Unexpected error for %v: %v", args, err)
		}
		return out.String()
	}

	executeCommand(t) // reset flags
	run("calc", "1 + 1")
	run("run", "-e", "BEGIN a := 1 END.")

	out := run("history")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 entries, got %q", out)
	}
	if !strings.Contains(lines[0], "program") {
		t.Errorf("Expected newest entry first, got %q", lines[0])
	}

	out = run("history", "--clear")
	if !strings.Contains(out, "Deleted 2 entries") {
		t.Errorf("Expected 2 deleted entries, got %q", out)
	}
	historyClear = false

	out = run("history")
	if strings.TrimSpace(out) != "No entries" {
		t.Errorf("Expected empty journal, got %q", out)
	}
}

func TestHistoryDisabled(t *testing.T) {
	t.Setenv("SPI_HISTORY_ENABLED", "false")
	_, err := executeCommand(t, "history")
	if !mdwerror.HasCode(err, mdwerror.CodeConfigError) {
		t.Errorf("Expected CodeConfigError, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		input string
		max   int
		want  string
	}{
		{"BEGIN\n  x := 1\nEND.", 40, "BEGIN x := 1 END."},
		{"BEGIN x := 1234567 END.", 10, "BEGIN x..."},
	}

	for _, tt := range tests {
		if got := summarize(tt.input, tt.max); got != tt.want {
			t.Errorf("Expected %q, got %q", tt.want, got)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "version")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "spi ") {
		t.Errorf("Expected version line, got %q", out)
	}
}
