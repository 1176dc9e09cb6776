package cli

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"taxseq/internal/model"
	"taxseq/internal/runstore"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	reviewTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	reviewMutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	reviewSelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Bold(true)
	reviewWrittenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	reviewSkippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	reviewPanelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

type reviewModel struct {
	outDir     string
	manifest   model.Manifest
	assemblies []model.Assembly
	cursor     int
	width      int
	height     int

	filter       textinput.Model
	filterActive bool

	fatalErr error
}

type reviewLoadedMsg struct {
	manifest model.Manifest
	err      error
}

func runReview(args []string) error {
	fs := flag.NewFlagSet("review", flag.ContinueOnError)
	outdir := fs.String("outdir", "", "download directory containing manifest.json")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*outdir) == "" {
		fs.Usage()
		return errors.New("--outdir is required")
	}
	if !stdinIsTTY() {
		return errors.New("review requires an interactive terminal (TTY)")
	}

	filter := textinput.New()
	filter.Placeholder = "accession or organism"
	filter.Prompt = "filter: "

	m := reviewModel{
		outDir: strings.TrimSpace(*outdir),
		filter: filter,
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "tty") {
			return errors.New("review requires an interactive terminal (TTY)")
		}
		return err
	}
	if fm, ok := finalModel.(reviewModel); ok {
		return fm.fatalErr
	}
	return nil
}

func loadManifestCmd(outDir string) tea.Cmd {
	return func() tea.Msg {
		mf, err := runstore.LoadManifest(outDir)
		return reviewLoadedMsg{manifest: mf, err: err}
	}
}

func (m reviewModel) Init() tea.Cmd {
	return loadManifestCmd(m.outDir)
}

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case reviewLoadedMsg:
		if msg.err != nil {
			m.fatalErr = msg.err
			return m, tea.Quit
		}
		m.manifest = msg.manifest
		m.assemblies = m.filtered()
		m.clampCursor()
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.filterActive {
		switch keyMsg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.filterActive = false
			m.filter.Blur()
			m.filter.SetValue("")
			m.assemblies = m.filtered()
			m.clampCursor()
			return m, nil
		case "enter":
			m.filterActive = false
			m.filter.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(keyMsg)
		m.assemblies = m.filtered()
		m.clampCursor()
		return m, cmd
	}

	switch keyMsg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.assemblies)-1 {
			m.cursor++
		}
	case "r":
		return m, loadManifestCmd(m.outDir)
	case "/":
		m.filterActive = true
		m.filter.Focus()
	}
	return m, nil
}

func (m *reviewModel) clampCursor() {
	if m.cursor > len(m.assemblies)-1 {
		m.cursor = len(m.assemblies) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m reviewModel) filtered() []model.Assembly {
	needle := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	if needle == "" {
		return m.manifest.Assemblies
	}
	var out []model.Assembly
	for _, asm := range m.manifest.Assemblies {
		if strings.Contains(strings.ToLower(asm.Accession), needle) ||
			strings.Contains(strings.ToLower(asm.Organism), needle) {
			out = append(out, asm)
		}
	}
	return out
}

func (m reviewModel) View() string {
	var b strings.Builder
	b.WriteString(reviewTitleStyle.Render("taxseq review"))
	b.WriteString(reviewMutedStyle.Render(fmt.Sprintf("  %s  (%d assemblies, %d written, %d skipped)",
		m.outDir, m.manifest.Total, m.manifest.Written, m.manifest.Skipped)))
	b.WriteString("\n\n")

	if m.filterActive || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
	}

	if len(m.assemblies) == 0 {
		b.WriteString(reviewMutedStyle.Render("no assemblies match"))
		b.WriteString("\n")
	}
	for i, asm := range m.assemblies {
		line := fmt.Sprintf("%-18s %-10s %-10s %s", asm.Accession, asm.Strategy, asm.Status, asm.Organism)
		switch {
		case i == m.cursor:
			line = reviewSelStyle.Render(line)
		case asm.Status == model.StatusWritten:
			line = reviewWrittenStyle.Render(line)
		case asm.Status == model.StatusSkipped:
			line = reviewSkippedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.cursor < len(m.assemblies) {
		b.WriteString("\n")
		b.WriteString(reviewPanelStyle.Render(m.detail(m.assemblies[m.cursor])))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(reviewMutedStyle.Render("up/down move  / filter  r reload  q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m reviewModel) detail(asm model.Assembly) string {
	lines := []string{
		"accession: " + asm.Accession,
		"organism:  " + strings.TrimSpace(asm.Organism+" "+asm.Strain),
		"taxon:     " + asm.TaxonID,
		"status:    " + asm.Status,
	}
	if asm.Strategy != "" {
		lines = append(lines, "strategy:  "+asm.Strategy)
	}
	if asm.Records > 0 {
		lines = append(lines, fmt.Sprintf("records:   %d", asm.Records))
	}
	if asm.OutputFile != "" {
		lines = append(lines, "file:      "+asm.OutputFile)
	}
	if asm.SourceURL != "" {
		lines = append(lines, "source:    "+asm.SourceURL)
	}
	if asm.HashPassed != nil {
		verdict := "failed"
		if *asm.HashPassed {
			verdict = "passed"
		}
		lines = append(lines, "md5:       "+verdict)
	}
	if asm.Reason != "" {
		lines = append(lines, "reason:    "+asm.Reason)
	}
	return strings.Join(lines, "\n")
}
