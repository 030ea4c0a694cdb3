// ============================================================================
// spi - Simple Pascal Interpreter
// ============================================================================
//
// Package:     repl
// Description: Bubbletea model for the interactive interpreter shell
// Author:      Mike Stoffels
// Created:     2025-12-07
// License:     MIT
// ============================================================================

package repl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	mdwerror "github.com/msto63/spi/foundation/core/error"
	"github.com/msto63/spi/foundation/pascal"
	"github.com/msto63/spi/internal/history"
	"github.com/msto63/spi/pkg/core/logging"
)

const (
	headerHeight = 4
	footerHeight = 6

	continuationPrompt = "...> "
)

// Config holds the REPL configuration
type Config struct {
	Engine     *pascal.Engine
	Journal    history.Recorder
	Logger     *logging.Logger
	Mode       pascal.Mode
	Prompt     string
	CalcPrompt string
	Timeout    time.Duration
}

// Model is the Bubbletea model of the REPL
type Model struct {
	// State
	width      int
	height     int
	ready      bool
	evaluating bool
	quitting   bool
	mode       pascal.Mode

	// Components
	input    textinput.Model
	viewport viewport.Model

	// Transcript
	entries []TranscriptEntry

	// Program lines waiting for the closing "."
	pending []string

	// Input history
	inputHistory []string
	historyIndex int // -1 = new input
	currentInput string

	// Backend
	engine  *pascal.Engine
	journal history.Recorder
	logger  *logging.Logger
	timeout time.Duration

	prompt     string
	calcPrompt string

	evalCount  int
	lastResult time.Duration
}

// New creates a REPL model
func New(cfg Config) Model {
	if cfg.Engine == nil {
		cfg.Engine = pascal.New(pascal.Options{})
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.New("repl")
	}
	if cfg.Mode == "" {
		cfg.Mode = pascal.ModeProgram
	}
	if cfg.Prompt == "" {
		cfg.Prompt = "spi> "
	}
	if cfg.CalcPrompt == "" {
		cfg.CalcPrompt = "calc> "
	}

	ti := textinput.New()
	ti.Placeholder = "BEGIN x := 1 END."
	ti.CharLimit = pascal.DefaultMaxInputLength
	ti.Focus()

	m := Model{
		mode:         cfg.Mode,
		input:        ti,
		historyIndex: -1,
		engine:       cfg.Engine,
		journal:      cfg.Journal,
		logger:       cfg.Logger,
		timeout:      cfg.Timeout,
		prompt:       cfg.Prompt,
		calcPrompt:   cfg.CalcPrompt,
	}
	m.syncPrompt()
	m.addSystem("Type a program ending with \".\" or switch with :mode calc. :help lists commands.")
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		viewportHeight := msg.Height - headerHeight - footerHeight
		if viewportHeight < 3 {
			viewportHeight = 3
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, viewportHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = viewportHeight
		}
		m.input.Width = msg.Width - 10
		m.updateViewportContent()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case evalResultMsg:
		m.evaluating = false
		m.evalCount++
		if msg.err != nil {
			m.entries = append(m.entries, TranscriptEntry{
				Kind:      EntryError,
				Mode:      msg.mode,
				Content:   FormatError(msg.input, msg.err),
				Timestamp: time.Now(),
			})
		} else {
			m.lastResult = msg.result.Duration
			content := msg.result.String()
			if content == "" {
				content = "(no variables)"
			}
			m.entries = append(m.entries, TranscriptEntry{
				Kind:      EntryResult,
				Mode:      msg.mode,
				Content:   content,
				Timestamp: time.Now(),
				Duration:  msg.result.Duration,
			})
		}
		m.updateViewportContent()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyCtrlD:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyEsc:
		if len(m.pending) > 0 {
			m.pending = nil
			m.addSystem("Discarded unfinished program")
			m.syncPrompt()
			m.updateViewportContent()
		}
		m.input.Reset()
		return m, nil

	case tea.KeyCtrlL:
		m.clearTranscript()
		return m, nil

	case tea.KeyEnter:
		if m.evaluating {
			return m, nil
		}
		line := m.input.Value()
		m.input.Reset()
		m.historyIndex = -1
		m.currentInput = ""
		return m.submit(line)

	case tea.KeyUp:
		if len(m.inputHistory) > 0 {
			if m.historyIndex == -1 {
				m.currentInput = m.input.Value()
				m.historyIndex = len(m.inputHistory) - 1
			} else if m.historyIndex > 0 {
				m.historyIndex--
			}
			m.input.SetValue(m.inputHistory[m.historyIndex])
			m.input.CursorEnd()
		}
		return m, nil

	case tea.KeyDown:
		if m.historyIndex != -1 {
			if m.historyIndex < len(m.inputHistory)-1 {
				m.historyIndex++
				m.input.SetValue(m.inputHistory[m.historyIndex])
			} else {
				m.historyIndex = -1
				m.input.SetValue(m.currentInput)
			}
			m.input.CursorEnd()
		}
		return m, nil

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit handles one entered line
func (m Model) submit(line string) (tea.Model, tea.Cmd) {
	trimmed := strings.TrimSpace(line)

	if len(m.pending) == 0 {
		if trimmed == "" {
			return m, nil
		}
		if strings.HasPrefix(trimmed, ":") {
			m.pushHistory(trimmed)
			return m.runCommand(trimmed)
		}
	}

	m.pushHistory(line)
	m.entries = append(m.entries, TranscriptEntry{
		Kind:      EntryInput,
		Mode:      m.mode,
		Content:   line,
		Timestamp: time.Now(),
	})

	source := line
	if m.mode == pascal.ModeProgram {
		m.pending = append(m.pending, line)
		source = strings.Join(m.pending, "\n")
		if !strings.HasSuffix(strings.TrimSpace(source), ".") {
			m.syncPrompt()
			m.updateViewportContent()
			return m, nil
		}
		m.pending = nil
		m.syncPrompt()
	}

	m.evaluating = true
	m.updateViewportContent()
	return m, m.evaluate(m.mode, source)
}

// runCommand executes a ":" command
func (m Model) runCommand(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(strings.TrimPrefix(line, ":"))
	name := ""
	if len(fields) > 0 {
		name = strings.ToLower(fields[0])
	}

	switch name {
	case "q", "quit", "exit":
		m.quitting = true
		return m, tea.Quit

	case "clear":
		m.clearTranscript()

	case "mode":
		if len(fields) < 2 {
			m.addSystem(fmt.Sprintf("Current mode: %s", m.mode))
			break
		}
		mode, err := pascal.ParseMode(fields[1])
		if err != nil {
			m.addError(err.Error())
			break
		}
		m.mode = mode
		m.pending = nil
		m.syncPrompt()
		m.addSystem(fmt.Sprintf("Switched to %s mode", mode))

	case "help":
		m.addSystem(strings.Join([]string{
			":mode calc|program  switch the grammar",
			":mode               show the current mode",
			":clear              clear the transcript",
			":quit               leave the REPL",
		}, "\n"))

	default:
		m.addError(fmt.Sprintf("unknown command %q, try :help", line))
	}

	m.updateViewportContent()
	return m, nil
}

// evaluate runs the input on the engine. Each input gets a fresh environment.
func (m Model) evaluate(mode pascal.Mode, source string) tea.Cmd {
	engine := m.engine
	journal := m.journal
	logger := m.logger
	timeout := m.timeout

	return func() tea.Msg {
		ctx := pascal.ContextWithRunID(context.Background(), uuid.NewString())
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		res, err := engine.Execute(ctx, mode, source)
		if journal != nil {
			entry := history.NewEntry(history.SourceREPL, mode, source, res, err)
			if jerr := journal.Record(context.WithoutCancel(ctx), entry); jerr != nil {
				logger.Warn("Failed to journal evaluation", "error", jerr)
			}
		}
		return evalResultMsg{input: source, mode: mode, result: res, err: err}
	}
}

func (m *Model) pushHistory(line string) {
	if n := len(m.inputHistory); n > 0 && m.inputHistory[n-1] == line {
		return
	}
	m.inputHistory = append(m.inputHistory, line)
}

func (m *Model) syncPrompt() {
	switch {
	case len(m.pending) > 0:
		m.input.Prompt = continuationPrompt
	case m.mode == pascal.ModeCalc:
		m.input.Prompt = m.calcPrompt
	default:
		m.input.Prompt = m.prompt
	}
	m.input.PromptStyle = PromptStyle
}

func (m *Model) clearTranscript() {
	m.entries = nil
	m.pending = nil
	m.syncPrompt()
	m.updateViewportContent()
}

func (m *Model) addSystem(content string) {
	m.entries = append(m.entries, TranscriptEntry{
		Kind:      EntrySystem,
		Mode:      m.mode,
		Content:   content,
		Timestamp: time.Now(),
	})
}

func (m *Model) addError(content string) {
	m.entries = append(m.entries, TranscriptEntry{
		Kind:      EntryError,
		Mode:      m.mode,
		Content:   content,
		Timestamp: time.Now(),
	})
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(TranscriptPanelStyle.Width(m.width - 2).Render(m.viewport.View()))
	b.WriteString("\n")
	b.WriteString(InputStyle.Width(m.width - 2).Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(m.renderHelpBar())
	return b.String()
}

func (m Model) renderHeader() string {
	title := LogoStyle.Render(Logo) + " " + SubHeaderStyle.Render("Simple Pascal Interpreter")
	return TitlePanelStyle.Render(title)
}

func (m Model) renderStatusBar() string {
	status := "ready"
	switch {
	case m.evaluating:
		status = "evaluating..."
	case len(m.pending) > 0:
		status = fmt.Sprintf("%d line(s) pending", len(m.pending))
	}

	left := ModeBadgeStyle.Render(strings.ToUpper(string(m.mode))) + "  " + status
	right := fmt.Sprintf("%d evaluations", m.evalCount)
	if m.lastResult > 0 {
		right += fmt.Sprintf(" | last %s", m.lastResult.Round(time.Microsecond))
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}
	return StatusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderHelpBar() string {
	hints := []string{
		RenderKeyHint("Enter", "evaluate"),
		RenderKeyHint("↑/↓", "history"),
		RenderKeyHint("Esc", "discard"),
		RenderKeyHint("Ctrl+L", "clear"),
		RenderKeyHint("Ctrl+C", "quit"),
	}
	return "  " + strings.Join(hints, "  ")
}

func (m *Model) updateViewportContent() {
	if !m.ready {
		return
	}

	var b strings.Builder
	for i, e := range m.entries {
		if i > 0 {
			b.WriteString("\n")
		}
		switch e.Kind {
		case EntryInput:
			b.WriteString(PromptStyle.Render(">") + " " + InputEchoStyle.Render(e.Content))
		case EntryResult:
			b.WriteString(ResultStyle.Render(e.Content))
		case EntryError:
			b.WriteString(ErrorStyle.Render(e.Content))
		case EntrySystem:
			b.WriteString(SystemStyle.Render(e.Content))
		}
	}

	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// Mode returns the active grammar
func (m Model) Mode() pascal.Mode {
	return m.mode
}

// Entries returns the transcript
func (m Model) Entries() []TranscriptEntry {
	return m.entries
}

// FormatError renders an evaluation error with the offending source line and
// a caret under the error position
func FormatError(input string, err error) string {
	code := mdwerror.GetCode(err)
	msg := err.Error()
	if code != "" {
		msg = fmt.Sprintf("[%s] %s", code, msg)
	}

	offset := pascal.ErrorOffset(err)
	if offset < 0 || offset > len(input) {
		return msg
	}

	start := strings.LastIndexByte(input[:offset], '\n') + 1
	end := strings.IndexByte(input[offset:], '\n')
	if end < 0 {
		end = len(input)
	} else {
		end += offset
	}

	line := input[start:end]
	column := len([]rune(input[start:offset]))
	return msg + "\n  " + line + "\n  " + strings.Repeat(" ", column) + CaretStyle.Render("^")
}

// Run starts the REPL
func Run(cfg Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
