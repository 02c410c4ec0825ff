// Package tui is the interactive terminal host. Mouse and key input become
// dispatcher commands; the board is drawn onto terminal cells.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tacticsboard/board/internal/channel"
	"github.com/tacticsboard/board/internal/dispatcher"
	"github.com/tacticsboard/board/internal/editor"
	"github.com/tacticsboard/board/internal/render"
	"github.com/tacticsboard/board/pkg/core"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Dispatcher routes one command. *dispatcher.Dispatcher satisfies it.
type Dispatcher interface {
	Dispatch(e dispatcher.Event) (any, error)
}

type drag int

const (
	dragNone drag = iota
	dragDraw
	dragPan
)

// frameMsg is sent when the board changed off the UI goroutine.
type frameMsg struct{}

// labelPrompt collects the label for a pending marker placement.
type labelPrompt struct {
	request int64
	input   []rune
}

var (
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#fafafa")).Background(lipgloss.Color("#37474f"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#212121")).Background(lipgloss.Color("#fdd835"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935")).Bold(true)
)

// Model is the bubbletea model of the board editor.
type Model struct {
	d      Dispatcher
	ed     *editor.Editor
	frames channel.Receiver[struct{}]

	// Paste reads the clipboard for the label prompt.
	Paste func() (string, error)

	width, height int
	drag          drag
	last          core.Point
	prompt        *labelPrompt
	message       string
	failed        bool
}

var _ tea.Model = (*Model)(nil)

// New creates the model. frames may be nil when nothing outside the UI
// changes the board.
func New(d Dispatcher, ed *editor.Editor, frames channel.Receiver[struct{}]) *Model {
	return &Model{
		d:      d,
		ed:     ed,
		frames: frames,
		Paste:  clipboard.ReadAll,
	}
}

// Run starts the program on the alternate screen with mouse tracking.
func Run(m *Model) error {
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return m.waitForFrame()
}

func (m *Model) waitForFrame() tea.Cmd {
	if m.frames == nil {
		return nil
	}
	ch := m.frames.Receive()
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return frameMsg{}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case frameMsg:
		return m, m.waitForFrame()

	case tea.KeyMsg:
		if m.prompt != nil {
			return m, m.updatePrompt(msg)
		}
		return m, m.updateKeys(msg)

	case tea.MouseMsg:
		if m.prompt == nil {
			m.updateMouse(msg)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) updateKeys(msg tea.KeyMsg) tea.Cmd {
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return tea.Quit
	case "m":
		m.dispatch(":TOOL:", string(editor.ToolMarker))
	case "l":
		m.dispatch(":TOOL:", string(editor.ToolLine))
	case "v":
		m.dispatch(":TOOL:", string(editor.ToolMove))
	case "1", "2", "3", "4", "5":
		n, _ := strconv.Atoi(key)
		m.dispatch(":COLOR:", strconv.Itoa(n-1))
	case "tab":
		m.dispatch(":SHAPE:", string(nextShape(m.ed.Shape())))
	case "+", "=":
		m.dispatch(":ZOOM:IN:")
	case "-":
		m.dispatch(":ZOOM:OUT:")
	case "r":
		m.withMarkerUnderPointer(":RECORD:")
	case "p":
		m.withMarkerUnderPointer(":PLAY:")
	case "ctrl+s":
		m.dispatch(":SAVE:")
	case "ctrl+o":
		m.dispatch(":LOAD:")
	case "e":
		m.dispatch(":EXPORT:PNG:")
	}
	return nil
}

func (m *Model) withMarkerUnderPointer(command string) {
	marker, ok := m.ed.MarkerAt(m.last)
	if !ok {
		m.setMessage("no marker under the pointer", true)
		return
	}
	m.dispatch(command, strconv.FormatInt(marker.ID, 10))
}

func (m *Model) updateMouse(msg tea.MouseMsg) {
	p := render.CellCenter(msg.X, msg.Y)

	switch msg.Type {
	case tea.MouseLeft:
		if msg.Y >= m.boardRows() {
			return
		}
		m.last = p
		if m.ed.Tool() == editor.ToolMarker && m.ed.State() != editor.StateRecordingPath {
			m.beginLabel(p)
			return
		}
		m.drag = dragDraw
		m.dispatch(":POINTER:DOWN:", formatPoint(p))

	case tea.MouseRight:
		if msg.Y >= m.boardRows() {
			return
		}
		m.last = p
		m.drag = dragPan
		m.dispatch(":PAN:BEGIN:", formatPoint(p))

	case tea.MouseMotion:
		m.last = p
		switch m.drag {
		case dragDraw:
			m.dispatch(":POINTER:MOVE:", formatPoint(p))
		case dragPan:
			m.dispatch(":PAN:MOVE:", formatPoint(p))
		}

	case tea.MouseRelease:
		switch m.drag {
		case dragDraw:
			m.dispatch(":POINTER:UP:", formatPoint(p))
		case dragPan:
			m.dispatch(":PAN:END:", formatPoint(p))
		}
		m.drag = dragNone

	case tea.MouseWheelUp:
		m.dispatch(":WHEEL:", "-1")

	case tea.MouseWheelDown:
		m.dispatch(":WHEEL:", "1")
	}
}

func (m *Model) beginLabel(p core.Point) {
	result, err := m.d.Dispatch(dispatcher.Event{Command: ":CLICK:", Args: []string{formatPoint(p)}})
	if err != nil {
		m.setMessage(err.Error(), true)
		return
	}
	id, ok := result.(int64)
	if !ok {
		m.setMessage(fmt.Sprintf("unexpected placement result %v", result), true)
		return
	}
	m.prompt = &labelPrompt{request: id}
}

func (m *Model) updatePrompt(msg tea.KeyMsg) tea.Cmd {
	req := strconv.FormatInt(m.prompt.request, 10)

	switch msg.Type {
	case tea.KeyEnter:
		m.dispatch(":LABEL:", req, string(m.prompt.input))
		m.prompt = nil
	case tea.KeyEscape:
		m.dispatch(":LABEL:CANCEL:", req)
		m.prompt = nil
	case tea.KeyBackspace:
		if n := len(m.prompt.input); n > 0 {
			m.prompt.input = m.prompt.input[:n-1]
		}
	case tea.KeyCtrlV:
		text, err := m.Paste()
		if err != nil {
			m.setMessage("clipboard: "+err.Error(), true)
			return nil
		}
		text = strings.Join(strings.Fields(text), " ")
		m.prompt.input = append(m.prompt.input, []rune(text)...)
	case tea.KeySpace:
		m.prompt.input = append(m.prompt.input, ' ')
	case tea.KeyRunes:
		m.prompt.input = append(m.prompt.input, msg.Runes...)
	case tea.KeyCtrlC:
		return tea.Quit
	}
	return nil
}

func (m *Model) dispatch(command string, args ...string) {
	result, err := m.d.Dispatch(dispatcher.Event{Command: command, Args: args})
	if err != nil {
		m.setMessage(err.Error(), true)
		return
	}
	switch command {
	case ":SAVE:":
		m.setMessage("saved", false)
	case ":LOAD:":
		if loaded, _ := result.(bool); loaded {
			m.setMessage("loaded", false)
		} else {
			m.setMessage("nothing saved yet", false)
		}
	case ":EXPORT:PNG:":
		m.setMessage("export queued", false)
	case ":RECORD:":
		m.setMessage("recording, drag the marker's route", false)
	case ":PLAY:":
		if started, _ := result.(bool); !started {
			m.setMessage("marker has no recorded path", true)
		}
	}
}

func (m *Model) setMessage(msg string, failed bool) {
	m.message = msg
	m.failed = failed
}

func (m *Model) boardRows() int {
	if m.height <= 1 {
		return 0
	}
	return m.height - 1
}

func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	cells := render.NewCells(m.width, m.boardRows())
	render.Render(cells, m.ed.Frame(), m.ed.View())
	return cells.String() + "\n" + m.statusBar()
}

func (m *Model) statusBar() string {
	if m.prompt != nil {
		line := fmt.Sprintf(" label #%d: %s_  (enter ok, esc default, ctrl+v paste)", m.prompt.request, string(m.prompt.input))
		return promptStyle.Width(m.width).Render(line)
	}

	c := m.ed.Color()
	swatch := lipgloss.NewStyle().Background(lipgloss.Color(string(c))).Render("  ")
	info := fmt.Sprintf(" %s | %s | zoom %.1f | %s ", m.ed.Tool(), m.ed.Shape(), m.ed.View().Zoom, m.ed.State())
	bar := barStyle.Render(info) + swatch
	if m.message != "" {
		style := barStyle
		if m.failed {
			style = errorStyle
		}
		bar += style.Render(" " + m.message)
	}
	return bar
}

func nextShape(s core.Shape) core.Shape {
	for i, known := range core.Shapes {
		if known == s {
			return core.Shapes[(i+1)%len(core.Shapes)]
		}
	}
	return core.Shapes[0]
}

func formatPoint(p core.Point) string {
	return strconv.FormatFloat(p.X, 'f', -1, 64) + "," + strconv.FormatFloat(p.Y, 'f', -1, 64)
}
