package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/datasweeper/internal/export"
	"github.com/KaramelBytes/datasweeper/internal/loader"
	"github.com/KaramelBytes/datasweeper/internal/session"
	"github.com/KaramelBytes/datasweeper/internal/utils"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Options configures the sweep screen.
type Options struct {
	OutDir     string
	Target     export.Target
	ChartWidth int
	Loader     loader.Options
}

// fileView is the screen state of one input file.
type fileView struct {
	name   string
	sess   *session.FileSession
	err    error
	cursor int
	picked []bool
	status string
	failed bool
}

// Model is the bubbletea model of the sweep screen: one tab per file, each
// with its own session and controls.
type Model struct {
	files   []*fileView
	current int
	keys    KeyMap
	opts    Options
	claimed map[string]struct{}
	width   int
}

// NewModel opens every file. Files that fail to load get a tab showing the
// error.
func NewModel(files []session.UploadedFile, opts Options) Model {
	m := Model{keys: DefaultKeyMap(), opts: opts, claimed: map[string]struct{}{}}
	for _, f := range files {
		fv := &fileView{name: f.Name}
		s, err := session.Open(f, opts.Loader)
		if err != nil {
			fv.err = err
		} else {
			s.Controls.Target = opts.Target
			s.Controls.ChartWidth = opts.ChartWidth
			fv.sess = s
			fv.picked = make([]bool, s.Table.NumCols())
			for i := range fv.picked {
				fv.picked[i] = true
			}
		}
		m.files = append(m.files, fv)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if len(m.files) == 0 {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.NextFile):
			m.current = (m.current + 1) % len(m.files)
			return m, nil
		case key.Matches(msg, m.keys.PrevFile):
			m.current = (m.current - 1 + len(m.files)) % len(m.files)
			return m, nil
		}
		fv := m.files[m.current]
		if fv.sess != nil {
			m.handleSessionKey(fv, msg)
		}
	}
	return m, nil
}

func (m Model) handleSessionKey(fv *fileView, msg tea.KeyMsg) {
	s := fv.sess
	switch {
	case key.Matches(msg, m.keys.Up):
		if fv.cursor > 0 {
			fv.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if fv.cursor < len(fv.picked)-1 {
			fv.cursor++
		}
	case key.Matches(msg, m.keys.ToggleCol):
		if len(fv.picked) == 0 {
			return
		}
		fv.picked[fv.cursor] = !fv.picked[fv.cursor]
		names := fv.pickedNames()
		switch err := s.SelectColumns(names); {
		case err != nil:
			fv.setStatus(err.Error(), true)
		case len(names) == 0:
			fv.setStatus("no columns selected; pick at least one to convert", true)
		default:
			fv.status = ""
		}
	case key.Matches(msg, m.keys.Clean):
		s.Controls.Clean = !s.Controls.Clean
		fv.status = ""
	case key.Matches(msg, m.keys.Dedupe):
		if !s.Controls.Clean {
			fv.setStatus("enable cleaning (c) first", true)
			return
		}
		s.Controls.RemoveDuplicates = true
		fv.setStatus(s.RemoveDuplicates().Message(), false)
	case key.Matches(msg, m.keys.FillMissing):
		if !s.Controls.Clean {
			fv.setStatus("enable cleaning (c) first", true)
			return
		}
		s.Controls.FillMissing = true
		fv.setStatus(s.FillMissing().Message(), false)
	case key.Matches(msg, m.keys.Chart):
		s.Controls.ShowChart = !s.Controls.ShowChart
	case key.Matches(msg, m.keys.Target):
		if s.Controls.Target == export.CSV {
			s.Controls.Target = export.Spreadsheet
		} else {
			s.Controls.Target = export.CSV
		}
	case key.Matches(msg, m.keys.Convert):
		m.convert(fv)
	}
}

func (m Model) convert(fv *fileView) {
	res, err := fv.sess.Convert()
	if err != nil {
		fv.setStatus(err.Error(), true)
		return
	}
	dir := m.opts.OutDir
	if dir == "" {
		dir = "."
	}
	if err := utils.EnsureDir(dir); err != nil {
		fv.setStatus(err.Error(), true)
		return
	}
	path := utils.UniquePath(dir, res.FileName, m.claimed)
	if err := utils.SafeWriteFile(path, res.Data); err != nil {
		fv.setStatus(err.Error(), true)
		return
	}
	fv.setStatus(fmt.Sprintf("wrote %s (%s)", filepath.Clean(path), res.Target), false)
}

func (fv *fileView) setStatus(msg string, failed bool) {
	fv.status = msg
	fv.failed = failed
}

func (fv *fileView) pickedNames() []string {
	cols := fv.sess.Table.ColumnNames()
	var out []string
	for i, on := range fv.picked {
		if on {
			out = append(out, cols[i])
		}
	}
	return out
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("datasweeper"))
	b.WriteString("\n")
	if len(m.files) == 0 {
		b.WriteString(UnselectedStyle.Render("no files"))
		b.WriteString("\n")
		return b.String()
	}

	tabs := make([]string, len(m.files))
	for i, fv := range m.files {
		label := fv.name
		if fv.err != nil {
			label = SymbolCross + " " + label
		}
		if i == m.current {
			tabs[i] = ActiveTabStyle.Render(label)
		} else {
			tabs[i] = TabStyle.Render(label)
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	fv := m.files[m.current]
	if fv.err != nil {
		b.WriteString(ErrorStyle.Render(SymbolCross + " " + fv.err.Error()))
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render(m.keys.HelpText()))
		return b.String()
	}

	s := fv.sess
	fmt.Fprintf(&b, "%d rows × %d columns\n", s.Table.NumRows(), s.Table.NumCols())
	b.WriteString(toggle("clean", s.Controls.Clean))
	b.WriteString("  ")
	b.WriteString(toggle("chart", s.Controls.ShowChart))
	fmt.Fprintf(&b, "  target: %s\n\n", SelectedStyle.Render(s.Controls.Target.String()))

	var cols strings.Builder
	for i, name := range s.Table.ColumnNames() {
		cursor := " "
		if i == fv.cursor {
			cursor = SymbolCursor
		}
		mark, style := SymbolEmpty, UnselectedStyle
		if fv.picked[i] {
			mark, style = SymbolChecked, SelectedStyle
		}
		fmt.Fprintf(&cols, "%s %s\n", cursor, style.Render(mark+" "+name))
	}
	b.WriteString(BoxStyle.Render(strings.TrimRight(cols.String(), "\n")))
	b.WriteString("\n")

	if s.Controls.ShowChart {
		out, err := s.Chart(m.opts.ChartWidth)
		if err != nil {
			b.WriteString(WarningStyle.Render(SymbolWarn + " " + err.Error()))
			b.WriteString("\n")
		} else {
			b.WriteString(out)
		}
	}

	if fv.status != "" {
		if fv.failed {
			b.WriteString(ErrorStyle.Render(SymbolCross + " " + fv.status))
		} else {
			b.WriteString(SuccessStyle.Render(SymbolCheck + " " + fv.status))
		}
		b.WriteString("\n")
	}
	b.WriteString(HelpStyle.Render(m.keys.HelpText()))
	return b.String()
}

func toggle(label string, on bool) string {
	if on {
		return SelectedStyle.Render(SymbolOn + " " + label)
	}
	return UnselectedStyle.Render(SymbolOff + " " + label)
}

// Run starts the interactive screen and blocks until the user quits.
func Run(files []session.UploadedFile, opts Options) error {
	if err := stdTerminal().check(); err != nil {
		return err
	}
	_, err := tea.NewProgram(NewModel(files, opts), tea.WithAltScreen()).Run()
	return err
}
