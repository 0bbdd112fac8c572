package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/typegraph/types"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const pageSize = 20

type modelState int

const (
	stateBrowse modelState = iota
	stateInspect
)

// child is one outgoing reference of the inspected type.
type child struct {
	typ   types.Type
	label string
}

type interactiveModel struct {
	hasher   *types.Hasher
	filename string
	all      []types.Type
	visible  []types.Type
	stack    []types.Type
	children []child
	filter   textinput.Model
	selected int
	state    modelState
}

func newInteractiveModel(repo *types.Repository, filename string) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "filter by name"
	ti.Prompt = "/ "
	ti.Width = 40
	ti.Focus()

	m := &interactiveModel{
		hasher:   types.NewHasher(),
		filename: filename,
		filter:   ti,
		state:    stateBrowse,
	}
	for t := range repo.All() {
		m.all = append(m.all, t)
	}
	m.applyFilter()
	return m
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.state == stateBrowse {
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch key.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "up":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case "down":
		if m.selected < m.rows()-1 {
			m.selected++
		}
		return m, nil

	case "enter":
		switch m.state {
		case stateBrowse:
			if len(m.visible) > 0 {
				m.push(m.visible[m.selected])
			}
		case stateInspect:
			if len(m.children) > 0 {
				m.push(m.children[m.selected].typ)
			}
		}
		return m, nil

	case "esc":
		switch m.state {
		case stateBrowse:
			if m.filter.Value() == "" {
				return m, tea.Quit
			}
			m.filter.SetValue("")
			m.applyFilter()
		case stateInspect:
			m.pop()
		}
		return m, nil
	}

	if m.state == stateInspect {
		switch key.String() {
		case "q":
			return m, tea.Quit
		case "backspace", "left":
			m.pop()
		}
		return m, nil
	}

	var cmd tea.Cmd
	before := m.filter.Value()
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != before {
		m.applyFilter()
	}
	return m, cmd
}

func (m *interactiveModel) rows() int {
	if m.state == stateInspect {
		return len(m.children)
	}
	return len(m.visible)
}

func (m *interactiveModel) applyFilter() {
	needle := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for _, t := range m.all {
		if needle == "" || strings.Contains(strings.ToLower(t.Name()), needle) {
			m.visible = append(m.visible, t)
		}
	}
	m.selected = 0
}

func (m *interactiveModel) push(t types.Type) {
	m.stack = append(m.stack, t)
	m.inspect(t)
}

func (m *interactiveModel) pop() {
	if len(m.stack) == 0 {
		return
	}
	m.stack = m.stack[:len(m.stack)-1]
	if len(m.stack) == 0 {
		m.state = stateBrowse
		m.selected = 0
		m.filter.Focus()
		return
	}
	m.inspect(m.stack[len(m.stack)-1])
}

func (m *interactiveModel) inspect(t types.Type) {
	m.state = stateInspect
	m.selected = 0
	m.filter.Blur()
	m.children = m.children[:0]

	if udt, ok := t.AsUserDefined(); ok {
		for _, f := range udt.Fields() {
			label := fmt.Sprintf("%-16s @%-4d", f.Name, f.Offset)
			if f.Flags != types.FlagNone {
				label += " " + f.Flags.String()
			}
			m.children = append(m.children, child{typ: f.Type, label: label})
		}
	}
	if p, ok := t.AsPointer(); ok {
		m.children = append(m.children, child{typ: p.Pointee(), label: fmt.Sprintf("%-22s", "<pointee>")})
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Type Graph"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateBrowse:
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
		lines := make([]string, len(m.visible))
		for i, t := range m.visible {
			lines[i] = m.formatType(t)
		}
		m.writeRows(&b, lines)
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(fmt.Sprintf("%d/%d types • ↑/↓ select • enter inspect • esc clear/quit", len(m.visible), len(m.all))))

	case stateInspect:
		names := make([]string, len(m.stack))
		for i, t := range m.stack {
			names[i] = t.Name()
		}
		b.WriteString(pathStyle.Render(strings.Join(names, " › ")))
		b.WriteString("\n\n")

		t := m.stack[len(m.stack)-1]
		b.WriteString(m.formatType(t))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(describe(t)))
		b.WriteString("\n\n")

		if len(m.children) == 0 {
			b.WriteString(helpStyle.Render("(leaf)"))
			b.WriteString("\n")
		}
		lines := make([]string, len(m.children))
		for i, c := range m.children {
			lines[i] = c.label + " " + m.formatType(c.typ)
		}
		m.writeRows(&b, lines)
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter follow • esc back • q quit"))
	}

	return b.String()
}

// writeRows renders one page of lines around the selection.
func (m *interactiveModel) writeRows(b *strings.Builder, lines []string) {
	start := 0
	if m.selected >= pageSize {
		start = m.selected - pageSize + 1
	}
	end := min(start+pageSize, len(lines))

	for i := start; i < end; i++ {
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + lines[i]))
		} else {
			b.WriteString("  " + lines[i])
		}
		b.WriteString("\n")
	}
}

func (m *interactiveModel) formatType(t types.Type) string {
	return fmt.Sprintf("%s %s %s",
		kindStyle.Render(fmt.Sprintf("%-8s", t.Kind())),
		nameStyle.Render(t.Name()),
		helpStyle.Render(fmt.Sprintf("size %d  #%016x", t.Size(), m.hasher.Hash(t))))
}

// describe lists the kind-specific attributes of t.
func describe(t types.Type) string {
	switch t.Kind() {
	case types.KindBitfield:
		bf, _ := t.AsBitfield()
		return fmt.Sprintf("bits %d..%d", bf.BitOffset(), bf.BitOffset()+bf.BitLength())
	case types.KindPointer:
		p, _ := t.AsPointer()
		return "qualifiers: " + p.Flags().String()
	case types.KindUserDefined:
		udt, _ := t.AsUserDefined()
		return fmt.Sprintf("%d fields", udt.NumFields())
	}
	return "id " + fmt.Sprint(t.ID())
}

func runInteractive(repo *types.Repository, filename string) error {
	p := tea.NewProgram(newInteractiveModel(repo, filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
