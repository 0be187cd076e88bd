package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TUIRenderer provides rich terminal UI using bubbletea.
type TUIRenderer struct {
	mu      sync.Mutex
	cfg     Config
	program *tea.Program
	model   *buildModel
	tracker *ProgressTracker
	cancel  context.CancelFunc
	started bool
	done    chan struct{}
}

// NewTUIRenderer creates a TUI renderer.
// Returns an error if the output is not a terminal.
func NewTUIRenderer(cfg Config) (*TUIRenderer, error) {
	if !IsTTY(cfg.Output) {
		return nil, fmt.Errorf("output is not a TTY")
	}

	tracker := NewProgressTracker()
	model := newBuildModel(tracker, cfg.CorpusDir)
	if cfg.NoColor || DetectNoColor() {
		model.styles = NoColorStyles()
	}

	return &TUIRenderer{
		cfg:     cfg,
		tracker: tracker,
		model:   model,
		done:    make(chan struct{}),
	}, nil
}

// Start implements Renderer.
func (r *TUIRenderer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return nil
	}

	ctx, r.cancel = context.WithCancel(ctx)

	var opts []tea.ProgramOption
	if f, ok := r.cfg.Output.(*os.File); ok {
		opts = append(opts, tea.WithOutput(f))
	}
	opts = append(opts, tea.WithContext(ctx))

	r.program = tea.NewProgram(r.model, opts...)
	r.started = true

	go func() {
		defer close(r.done)
		_, _ = r.program.Run()
	}()

	return nil
}

// UpdateProgress implements Renderer.
func (r *TUIRenderer) UpdateProgress(event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.Stage != r.tracker.Stats().Stage {
		r.tracker.SetStage(event.Stage, event.Total)
	}
	r.tracker.Update(event.Current, event.CurrentFile)

	if r.program != nil {
		r.program.Send(progressUpdateMsg(event))
	}
}

// AddError implements Renderer.
func (r *TUIRenderer) AddError(event ErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tracker.AddError(event)
	if r.program != nil {
		r.program.Send(errorMsg(event))
	}
}

// Complete implements Renderer.
func (r *TUIRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tracker.SetStage(StageComplete, 0)
	if r.program != nil {
		r.program.Send(completeMsg(stats))
	}
}

// Stop implements Renderer.
func (r *TUIRenderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.program == nil {
		return nil
	}

	// Let a pending completion view render before tearing down
	select {
	case <-r.done:
	case <-time.After(500 * time.Millisecond):
		r.program.Quit()
		select {
		case <-r.done:
		case <-time.After(2 * time.Second):
		}
	}
	if r.cancel != nil {
		r.cancel()
	}
	return nil
}

// Message types for bubbletea
type progressUpdateMsg ProgressEvent
type errorMsg ErrorEvent
type completeMsg CompletionStats

// buildModel is the bubbletea model for knowledge-base build progress.
type buildModel struct {
	tracker     *ProgressTracker
	width       int
	quitting    bool
	complete    bool
	stats       CompletionStats
	spinner     spinner.Model
	progressBar progress.Model
	styles      Styles
	corpusDir   string
}

func newBuildModel(tracker *ProgressTracker, corpusDir string) *buildModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime))

	p := progress.New(
		progress.WithSolidFill(ColorLime),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)

	return &buildModel{
		tracker:     tracker,
		spinner:     s,
		progressBar: p,
		styles:      DefaultStyles(),
		width:       80,
		corpusDir:   corpusDir,
	}
}

// Init implements tea.Model.
func (m *buildModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m *buildModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progressBar.Width = max(msg.Width-20, 20)

	case progressUpdateMsg, errorMsg:
		// State lives in the tracker; the message only triggers a redraw
		return m, nil

	case completeMsg:
		m.complete = true
		m.stats = CompletionStats(msg)
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m *buildModel) View() string {
	if m.quitting {
		return "Cancelled.\n"
	}
	if m.complete {
		return m.renderComplete()
	}

	width := max(m.width-4, 40)
	stats := m.tracker.Stats()

	sections := []string{
		m.renderStages(stats.Stage),
		m.styles.Border.Render(strings.Repeat("─", width)),
		m.renderProgress(stats),
	}
	if stats.CurrentFile != "" {
		sections = append(sections, m.styles.Dim.Render(truncateFilePath(stats.CurrentFile, width-2)))
	}

	title := "storekb"
	if m.corpusDir != "" {
		title = "storekb • " + m.corpusDir
	}

	panel := m.styles.Panel.Width(width).Render(strings.Join(sections, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, m.styles.Header.Render(title), panel) +
		"\n" + m.renderStatusBar(stats) + "\n"
}

func (m *buildModel) renderStages(current Stage) string {
	stages := []Stage{StageLoading, StageChunking, StageIndexing}

	parts := make([]string, 0, len(stages))
	for _, s := range stages {
		switch {
		case s < current:
			parts = append(parts, m.styles.Success.Render("● "+s.String()))
		case s == current:
			parts = append(parts, m.styles.Active.Render(m.spinner.View()+" "+s.String()))
		default:
			parts = append(parts, m.styles.Dim.Render("○ "+s.String()))
		}
	}
	return strings.Join(parts, m.styles.Dim.Render(" → "))
}

func (m *buildModel) renderProgress(stats ProgressStats) string {
	if stats.Total == 0 {
		return fmt.Sprintf("%s %s...", m.spinner.View(), stats.Stage)
	}

	bar := m.progressBar.ViewAs(stats.Progress)
	pct := m.styles.Active.Render(fmt.Sprintf("%3.0f%%", stats.Progress*100))
	count := m.styles.Label.Render(fmt.Sprintf("%d / %d documents", stats.Current, stats.Total))
	return fmt.Sprintf("%s  %s\n%s", bar, pct, count)
}

func (m *buildModel) renderStatusBar(stats ProgressStats) string {
	var parts []string
	if stats.WarnCount > 0 {
		parts = append(parts, m.styles.Warning.Render(fmt.Sprintf("⚠ %d unreadable", stats.WarnCount)))
	}
	if stats.ErrorCount > 0 {
		parts = append(parts, m.styles.Error.Render(fmt.Sprintf("✗ %d errors", stats.ErrorCount)))
	}
	parts = append(parts, m.styles.Dim.Render("q to quit"))
	return strings.Join(parts, m.styles.Dim.Render("  │  "))
}

func (m *buildModel) renderComplete() string {
	label := m.styles.Label.Render
	value := func(v any) string { return m.styles.Active.Render(fmt.Sprint(v)) }

	lines := []string{
		m.styles.Success.Render("✓ Knowledge base ready"),
		"",
		label("Documents: ") + value(m.stats.Documents),
		label("Chunks:    ") + value(m.stats.Chunks),
		label("Terms:     ") + value(m.stats.Terms),
		label("Duration:  ") + value(formatDuration(m.stats.Duration)),
	}
	if m.stats.Failed > 0 {
		lines = append(lines, "", m.styles.Warning.Render(fmt.Sprintf("⚠ %d documents unreadable", m.stats.Failed)))
	}

	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorLime)).
		Padding(1, 2).
		Width(max(m.width-4, 40))

	return panel.Render(strings.Join(lines, "\n")) + "\n"
}

// formatDuration formats a duration in a human-friendly way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	if s == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dm %ds", m, s)
}

// truncateFilePath shortens a slash-separated path to maxLen runes, keeping
// the file name.
func truncateFilePath(path string, maxLen int) string {
	runes := []rune(path)
	if len(runes) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return "..."
	}
	return "..." + string(runes[len(runes)-maxLen+3:])
}

var _ Renderer = (*TUIRenderer)(nil)
