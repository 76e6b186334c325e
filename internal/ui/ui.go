// Package ui is the interactive viewer: a viewport over rendered lines
// with heading navigation, in-document search and a directory browser.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pkt.systems/mdt"
	"pkt.systems/mdt/internal/logger"
	"pkt.systems/mdt/search"
)

type mode int

const (
	modeView mode = iota
	modeSearch
	modeFiles
)

// Options configures the viewer.
type Options struct {
	Theme     *mdt.Theme
	Width     int
	Highlight bool
	OSC8      bool
	// Browse starts in the file list over this directory instead of a
	// single document.
	Browse     string
	SearchOpts search.Options
}

type headingMark struct {
	block int
	text  string
}

// Model is the bubbletea model for the viewer.
type Model struct {
	opts Options

	path   string
	source string

	view  viewport.Model
	ready bool

	lines      []mdt.StyledLine
	headings   []headingMark
	blockLines []int
	lineOffset int

	mode  mode
	input textinput.Model

	matches  []search.Match
	matchIdx int

	files    []search.MarkdownFile
	filtered []search.MarkdownFile
	fileIdx  int
	searcher *search.Searcher
	walking  bool

	status string
	err    error
}

type fileMsg search.Message

// New builds a viewer over a single document.
func New(path, source string, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.CharLimit = 128
	return Model{
		opts:   opts,
		path:   path,
		source: source,
		input:  ti,
	}
}

// NewBrowser builds a viewer that starts in the file list.
func NewBrowser(opts Options) Model {
	m := New("", "", opts)
	m.mode = modeFiles
	return m
}

// Run starts the program in the alternate screen.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	if m.mode == modeFiles && m.opts.Browse != "" {
		return m.startWalk()
	}
	return nil
}

func (m *Model) startWalk() tea.Cmd {
	m.searcher = search.NewSearcher(context.Background(), m.opts.Browse, m.opts.SearchOpts)
	m.walking = true
	m.files = nil
	m.filtered = nil
	return m.awaitFile()
}

func (m *Model) awaitFile() tea.Cmd {
	ch := m.searcher.Messages()
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return fileMsg{Done: true}
		}
		return fileMsg(msg)
	}
}

// contentWidth clamps the terminal width to the supported render range,
// honoring an explicit width override when one fits.
func (m *Model) contentWidth() int {
	w := m.view.Width
	if m.opts.Width > 0 && m.opts.Width <= w {
		return m.opts.Width
	}
	if w < mdt.MinWidth {
		return mdt.MinWidth
	}
	if w > mdt.MaxWidth {
		return mdt.MaxWidth
	}
	return w
}

func (m *Model) render() {
	if m.source == "" || !m.ready {
		return
	}
	lines, diags, err := mdt.RenderDocument(context.Background(), m.source, m.opts.Theme, m.contentWidth(),
		mdt.WithSyntaxHighlighting(m.opts.Highlight))
	if err != nil {
		m.err = err
		return
	}
	for _, d := range diags {
		logger.Debugf("%s: %s", m.path, d)
	}
	m.lines = lines
	m.indexDocument()
	opts := mdt.ANSIOptions{OSC8: m.opts.OSC8}
	rendered := make([]string, len(lines))
	for i, line := range lines {
		rendered[i] = mdt.LineANSI(line, opts)
	}
	m.view.SetContent(strings.Join(rendered, "\n"))
}

// indexDocument records which top-level blocks are headings and the source
// line each block starts on, so the navigation keys can map between source
// positions and rendered lines without re-parsing.
func (m *Model) indexDocument() {
	m.headings = nil
	m.blockLines = nil
	stripped := mdt.StripFrontMatter(m.source)
	m.lineOffset = strings.Count(m.source[:len(m.source)-len(stripped)], "\n")
	doc, _, err := mdt.ParseDocument(m.source)
	if err != nil {
		return
	}
	for i, b := range doc.Blocks {
		m.blockLines = append(m.blockLines, b.Span().Line)
		if h, ok := b.(*mdt.Heading); ok {
			m.headings = append(m.headings, headingMark{block: i, text: h.TextContent()})
		}
	}
}

// lineOfBlock finds the first non-blank output line belonging to a
// top-level block. The blank separator above a block shares its id and is
// skipped.
func (m *Model) lineOfBlock(block int) int {
	for i, line := range m.lines {
		if line.Block == block && len(line.Fragments) > 0 {
			return i
		}
	}
	return 0
}

// lineOfSourceLine maps a 1-based source line to the first rendered line of
// the top-level block containing it. Front matter is stripped before
// rendering, so its lines are subtracted first.
func (m *Model) lineOfSourceLine(line int) int {
	line -= m.lineOffset
	block := 0
	for i, start := range m.blockLines {
		if start > line {
			break
		}
		block = i
	}
	return m.lineOfBlock(block)
}

func (m *Model) jumpHeading(delta int) {
	if len(m.headings) == 0 {
		return
	}
	cur := m.view.YOffset
	idx := -1
	for i, h := range m.headings {
		if m.lineOfBlock(h.block) <= cur {
			idx = i
		}
	}
	idx += delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(m.headings) {
		idx = len(m.headings) - 1
	}
	m.view.SetYOffset(m.lineOfBlock(m.headings[idx].block))
	m.status = m.headings[idx].text
}

func (m *Model) runSearch(query string) {
	m.matches = search.SearchContent(m.path, m.source, query)
	m.matchIdx = 0
	if len(m.matches) == 0 {
		m.status = fmt.Sprintf("no matches for %q", query)
		return
	}
	m.gotoMatch()
}

func (m *Model) gotoMatch() {
	if len(m.matches) == 0 {
		return
	}
	match := m.matches[m.matchIdx]
	m.view.SetYOffset(m.lineOfSourceLine(match.Line))
	where := match.Heading
	if where == "" {
		where = m.path
	}
	m.status = fmt.Sprintf("match %d/%d in %s", m.matchIdx+1, len(m.matches), where)
}

// topLink returns the target of the first hyperlink on screen, for the
// status footer. Useful when OSC 8 is off and link targets are invisible.
func (m *Model) topLink() string {
	for i := m.view.YOffset; i < len(m.lines) && i < m.view.YOffset+m.view.Height; i++ {
		for _, frag := range m.lines[i].Fragments {
			if frag.LinkURL != "" {
				return frag.LinkURL
			}
		}
	}
	return ""
}

func (m *Model) openFile(f search.MarkdownFile) {
	content, err := f.Content()
	if err != nil {
		m.err = err
		return
	}
	if err := mdt.ValidateInput([]byte(content)); err != nil {
		m.status = fmt.Sprintf("%s: %v", f.Name, err)
		return
	}
	m.path = f.Path
	m.source = content
	m.mode = modeView
	m.matches = nil
	m.status = f.Name
	m.render()
	m.view.GotoTop()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		chrome := 2
		if !m.ready {
			m.view = viewport.New(msg.Width, msg.Height-chrome)
			m.view.YPosition = 1
			m.ready = true
		} else {
			m.view.Width = msg.Width
			m.view.Height = msg.Height - chrome
		}
		m.render()
		return m, nil

	case fileMsg:
		if msg.Err != nil {
			m.err = msg.Err
			m.walking = false
			return m, nil
		}
		if msg.Done {
			m.walking = false
			return m, nil
		}
		m.files = append(m.files, msg.File)
		m.applyFileFilter()
		return m, m.awaitFile()

	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeFiles:
			return m.updateFiles(msg)
		default:
			return m.updateView(msg)
		}
	}

	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return m, cmd
}

func (m Model) updateView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.searcher != nil {
			m.searcher.Stop()
		}
		return m, tea.Quit
	case "esc":
		if m.opts.Browse != "" {
			m.mode = modeFiles
			return m, nil
		}
		return m, tea.Quit
	case "up", "k":
		m.view.SetYOffset(m.view.YOffset - 1)
	case "down", "j":
		m.view.SetYOffset(m.view.YOffset + 1)
	case "pgup", "b":
		m.view.SetYOffset(m.view.YOffset - m.view.Height)
	case "pgdown", "f", " ":
		m.view.SetYOffset(m.view.YOffset + m.view.Height)
	case "g", "home":
		m.view.GotoTop()
	case "G", "end":
		m.view.GotoBottom()
	case "]", "n":
		if len(m.matches) > 0 && msg.String() == "n" {
			m.matchIdx = (m.matchIdx + 1) % len(m.matches)
			m.gotoMatch()
		} else {
			m.jumpHeading(1)
		}
	case "[", "p":
		if len(m.matches) > 0 && msg.String() == "p" {
			m.matchIdx = (m.matchIdx - 1 + len(m.matches)) % len(m.matches)
			m.gotoMatch()
		} else {
			m.jumpHeading(-1)
		}
	case "/":
		m.mode = modeSearch
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeView
		m.input.Blur()
		return m, nil
	case "enter":
		query := m.input.Value()
		m.mode = modeView
		m.input.Blur()
		if m.path != "" || m.source != "" {
			m.runSearch(query)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) applyFileFilter() {
	m.filtered = search.FilterByName(m.files, m.input.Value())
	if m.fileIdx >= len(m.filtered) {
		m.fileIdx = len(m.filtered) - 1
	}
	if m.fileIdx < 0 {
		m.fileIdx = 0
	}
}

func (m Model) updateFiles(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		if m.searcher != nil {
			m.searcher.Stop()
		}
		return m, tea.Quit
	case "up":
		if m.fileIdx > 0 {
			m.fileIdx--
		}
		return m, nil
	case "down":
		if m.fileIdx < len(m.filtered)-1 {
			m.fileIdx++
		}
		return m, nil
	case "enter":
		if m.fileIdx < len(m.filtered) {
			m.openFile(m.filtered[m.fileIdx])
		}
		return m, nil
	case "backspace":
		v := m.input.Value()
		if v != "" {
			m.input.SetValue(v[:len(v)-1])
			m.applyFileFilter()
		}
		return m, nil
	default:
		if len(msg.Runes) == 1 {
			m.input.SetValue(m.input.Value() + string(msg.Runes))
			m.applyFileFilter()
		}
		return m, nil
	}
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	statusStyle = lipgloss.NewStyle().Faint(true)
	selectStyle = lipgloss.NewStyle().Reverse(true)
)

func (m Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("error: %v\n", m.err)
	}
	if !m.ready {
		return "loading..."
	}
	if m.mode == modeFiles {
		return m.filesView()
	}

	title := m.path
	if title == "" {
		title = "(stdin)"
	}
	header := titleStyle.Render(truncate(title, m.view.Width))

	var footer string
	if m.mode == modeSearch {
		footer = m.input.View()
	} else {
		pct := 100
		if m.view.TotalLineCount() > 0 {
			pct = int(m.view.ScrollPercent() * 100)
		}
		status := m.status
		if status == "" {
			if link := m.topLink(); link != "" {
				status = mdt.FitURL(link, m.view.Width/2)
			} else {
				status = "j/k scroll  [/] headings  / search  q quit"
			}
		}
		footer = statusStyle.Render(fmt.Sprintf("%s  %d%%", truncate(status, m.view.Width-6), pct))
	}
	return header + "\n" + m.view.View() + "\n" + footer
}

func (m Model) filesView() string {
	var b strings.Builder
	head := fmt.Sprintf("%d markdown files", len(m.filtered))
	if m.walking {
		head += " (scanning...)"
	}
	if q := m.input.Value(); q != "" {
		head += "  filter: " + q
	}
	b.WriteString(titleStyle.Render(truncate(head, m.view.Width)))
	b.WriteByte('\n')

	height := m.view.Height
	start := 0
	if m.fileIdx >= height {
		start = m.fileIdx - height + 1
	}
	for i := start; i < len(m.filtered) && i < start+height; i++ {
		name := truncate(m.filtered[i].Name, m.view.Width-2)
		if i == m.fileIdx {
			b.WriteString(selectStyle.Render("> " + name))
		} else {
			b.WriteString("  " + name)
		}
		b.WriteByte('\n')
	}
	b.WriteString(statusStyle.Render("enter open  type to filter  q quit"))
	return b.String()
}

func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w <= 3 {
		return string(r[:w])
	}
	return string(r[:w-3]) + "..."
}
