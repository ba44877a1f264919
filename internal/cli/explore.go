package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blockscape/pkg/config"
	"github.com/matzehuels/blockscape/pkg/errors"
	"github.com/matzehuels/blockscape/pkg/gesture"
	"github.com/matzehuels/blockscape/pkg/panel"
	"github.com/matzehuels/blockscape/pkg/render"
	"github.com/matzehuels/blockscape/pkg/render/sink"
)

// A terminal cell stands for cellW×cellH canvas pixels.
const (
	cellW = 8.0
	cellH = 16.0
)

const (
	// chromeRows are the lines below the canvas: status, tooltip and help.
	chromeRows = 3

	// exploreFPS is how often the explorer redraws.
	exploreFPS = 30

	// panStep is the keyboard pan distance in pixels.
	panStep = 4 * cellW
)

// exploreCommand creates the interactive terminal explorer.
func (c *CLI) exploreCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "explore START [END]",
		Short: "Explore a block range interactively in the terminal",
		Long: `Explore a block range interactively in the terminal.

Drag with the mouse to pan, scroll to zoom and hover a point or centroid to
read its post or summary. ←/→ step through the blocks of the range, space
toggles autoplay, g fetches another range and r fetches the current range
again.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseRange(args)
			if err != nil {
				return err
			}
			return c.runExplore(cmd, start, end, refresh)
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the response cache")
	cmd.Flags().String("autoplay", "", "autoplay step interval (default 1s)")
	c.bind(config.AutoplayInterval, "autoplay")

	return cmd
}

func (c *CLI) runExplore(cmd *cobra.Command, start, end int, refresh bool) error {
	cfg, err := c.resolveConfig(cmd)
	if err != nil {
		return err
	}
	popts, err := c.panelOptions(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	prov, closeProv, err := c.newProvider(ctx, cfg, refresh)
	if err != nil {
		return err
	}
	defer closeProv()

	box := &viewBox{}
	popts = append(popts,
		// Log lines would tear the alternate screen.
		panel.WithLogger(log.New(io.Discard)),
		panel.WithMeasurer(cellMeasurer),
		panel.WithSink(box.setView),
		panel.WithStatus(box.setStatus),
	)
	pn := panel.New(prov, popts...)
	go pn.Run(ctx)

	if err := pn.Fetch(start, end); err != nil {
		return err
	}

	p := tea.NewProgram(newExploreModel(pn, box, start, end),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
	)
	if _, err := p.Run(); err != nil && !stderrors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// cellMeasurer measures label widths in terminal cells.
var cellMeasurer = render.MeasureFunc(func(s string) float64 {
	return float64(utf8.RuneCountInString(s)) * cellW
})

// viewBox holds the latest frame and status pushed by the panel. The panel
// callbacks must never block, so they only swap values here and the model
// polls on its own tick.
type viewBox struct {
	mu      sync.Mutex
	view    panel.View
	hasView bool
	status  panel.Status
	hasStat bool
}

func (b *viewBox) setView(v panel.View) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.view, b.hasView = v, true
	b.status, b.hasStat = v.Status, true
}

func (b *viewBox) setStatus(st panel.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status, b.hasStat = st, true
}

func (b *viewBox) load() (panel.View, bool, panel.Status, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.view, b.hasView, b.status, b.hasStat
}

// =============================================================================
// Key bindings
// =============================================================================

type exploreKeys struct {
	Prev     key.Binding
	Next     key.Binding
	Autoplay key.Binding
	ZoomIn   key.Binding
	ZoomOut  key.Binding
	PanUp    key.Binding
	PanDown  key.Binding
	PanLeft  key.Binding
	PanRight key.Binding
	Fit      key.Binding
	Goto     key.Binding
	Refetch  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var defaultExploreKeys = exploreKeys{
	Prev:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev block")),
	Next:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next block")),
	Autoplay: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "autoplay")),
	ZoomIn:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
	ZoomOut:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
	PanUp:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "pan up")),
	PanDown:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "pan down")),
	PanLeft:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "pan left")),
	PanRight: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "pan right")),
	Fit:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fit")),
	Goto:     key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "go to range")),
	Refetch:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refetch")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

func (k exploreKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Autoplay, k.Goto, k.Help, k.Quit}
}

func (k exploreKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.Autoplay, k.Goto, k.Refetch},
		{k.ZoomIn, k.ZoomOut, k.Fit},
		{k.PanUp, k.PanDown, k.PanLeft, k.PanRight},
		{k.Help, k.Quit},
	}
}

// =============================================================================
// Model
// =============================================================================

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/exploreFPS, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type exploreModel struct {
	panel *panel.Panel
	box   *viewBox
	keys  exploreKeys
	help  help.Model
	input textinput.Model

	prompting  bool
	start, end int
	cols, rows int
	frames     int

	view    panel.View
	hasView bool
	status  panel.Status
	err     error
}

func newExploreModel(pn *panel.Panel, box *viewBox, start, end int) exploreModel {
	in := textinput.New()
	in.Placeholder = "start end (e.g. 1200 1250)"
	in.CharLimit = 24
	in.Width = 30
	in.Prompt = "range: "

	return exploreModel{
		panel: pn,
		box:   box,
		keys:  defaultExploreKeys,
		help:  help.New(),
		input: in,
		start: start,
		end:   end,
	}
}

func (m exploreModel) Init() tea.Cmd {
	return tick()
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.frames++
		v, hasView, st, hasStat := m.box.load()
		if hasView {
			m.view, m.hasView = v, true
		}
		if hasStat {
			m.status = st
		}
		return m, tick()

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.cols = msg.Width
		m.rows = max(msg.Height-chromeRows, 1)
		m.err = m.panel.Resize(float64(m.cols)*cellW, float64(m.rows)*cellH)
		return m, nil

	case tea.MouseMsg:
		if ev, ok := mouseEvent(msg); ok {
			m.err = m.panel.Input(ev)
		}
		return m, nil

	case tea.BlurMsg:
		m.err = m.panel.Input(gesture.Event{Kind: gesture.PointerLeave})
		return m, nil

	case tea.KeyMsg:
		if m.prompting {
			return m.updatePrompt(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m exploreModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Prev):
		m.err = m.step(-1)
	case key.Matches(msg, m.keys.Next):
		m.err = m.step(1)
	case key.Matches(msg, m.keys.Autoplay):
		m.err = m.panel.SetAutoplay(!m.status.Autoplay)
		m.refreshStatus()
	case key.Matches(msg, m.keys.ZoomIn):
		m.err = m.panel.Zoom(gesture.WheelZoomIn)
	case key.Matches(msg, m.keys.ZoomOut):
		m.err = m.panel.Zoom(gesture.WheelZoomOut)
	case key.Matches(msg, m.keys.PanUp):
		m.err = m.panel.Pan(0, panStep)
	case key.Matches(msg, m.keys.PanDown):
		m.err = m.panel.Pan(0, -panStep)
	case key.Matches(msg, m.keys.PanLeft):
		m.err = m.panel.Pan(panStep, 0)
	case key.Matches(msg, m.keys.PanRight):
		m.err = m.panel.Pan(-panStep, 0)
	case key.Matches(msg, m.keys.Fit):
		m.err = m.panel.Fit()
	case key.Matches(msg, m.keys.Refetch):
		m.err = m.panel.Fetch(m.start, m.end)
	case key.Matches(msg, m.keys.Goto):
		m.prompting = true
		m.input.SetValue("")
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m exploreModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.prompting = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.prompting = false
		m.input.Blur()
		start, end, err := parseRange(strings.Fields(m.input.Value()))
		if err == nil {
			err = m.panel.Fetch(start, end)
		}
		if err == nil {
			m.start, m.end = start, end
		}
		m.err = err
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// step moves the slider by delta, wrapping around the loaded blocks.
func (m *exploreModel) step(delta int) error {
	n := len(m.status.Blocks)
	if n == 0 || m.status.Position < 0 {
		return nil
	}
	if err := m.panel.Select(((m.status.Position+delta)%n + n) % n); err != nil {
		return err
	}
	m.refreshStatus()
	return nil
}

func (m *exploreModel) refreshStatus() {
	if st, err := m.panel.Status(); err == nil {
		m.status = st
	}
}

// mouseEvent translates a terminal mouse report into a canvas event at the
// center of the reported cell.
func mouseEvent(msg tea.MouseMsg) (gesture.Event, bool) {
	ev := gesture.Event{
		X: (float64(msg.X) + 0.5) * cellW,
		Y: (float64(msg.Y) + 0.5) * cellH,
	}
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		ev.Kind, ev.DeltaY = gesture.Wheel, -1
	case msg.Button == tea.MouseButtonWheelDown:
		ev.Kind, ev.DeltaY = gesture.Wheel, 1
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		ev.Kind = gesture.PointerDown
	case msg.Action == tea.MouseActionRelease:
		ev.Kind = gesture.PointerUp
	case msg.Action == tea.MouseActionMotion:
		ev.Kind = gesture.PointerMove
	default:
		return gesture.Event{}, false
	}
	return ev, true
}

// =============================================================================
// View
// =============================================================================

var styleStatusBar = lipgloss.NewStyle().Foreground(colorGray)

func (m exploreModel) View() string {
	if m.cols == 0 {
		return ""
	}

	var b strings.Builder
	if m.hasView {
		b.WriteString(sink.RenderTerm(m.view.Frame, m.cols, m.rows))
	} else {
		b.WriteString(strings.Repeat("\n", m.rows-1))
	}
	b.WriteString("\n")
	b.WriteString(truncate(m.statusLine(), m.cols))
	b.WriteString("\n")
	b.WriteString(truncate(m.tooltipLine(), m.cols))
	b.WriteString("\n")
	if m.prompting {
		b.WriteString(m.input.View())
	} else {
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

func (m exploreModel) statusLine() string {
	st := m.status
	var parts []string
	if st.HasBlock {
		parts = append(parts,
			StyleNumber.Render(fmt.Sprintf("block %d", st.Block))+StyleDim.Render(fmt.Sprintf(" (%d/%d)", st.Position+1, len(st.Blocks))),
			fmt.Sprintf("%d points", st.Points),
			fmt.Sprintf("%d clusters", st.Clusters))
	} else {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("blocks %d..%d", m.start, m.end)))
	}
	if st.Autoplay {
		parts = append(parts, styleIconSuccess.Render("▶ autoplay"))
	}
	if st.Processing {
		frame := spinner.MiniDot.Frames[m.frames%len(spinner.MiniDot.Frames)]
		parts = append(parts, styleIconSpinner.Render(frame+" fetching "+strconv.Itoa(st.Start)+".."+strconv.Itoa(st.End)))
	}

	switch {
	case m.err != nil:
		parts = append(parts, StyleError.Render(iconError+" "+errors.UserMessage(m.err)))
	case st.Error != "":
		parts = append(parts, StyleError.Render(iconError+" "+st.Error))
	}
	return styleStatusBar.Render(strings.Join(parts, StyleDim.Render(" · ")))
}

func (m exploreModel) tooltipLine() string {
	if !m.hasView || !m.view.Tooltip.Visible {
		return ""
	}
	text := strings.Join(strings.Fields(m.view.Tooltip.Text), " ")
	return StyleValue.Render(iconInfo + " " + text)
}

// truncate cuts s to at most width cells.
func truncate(s string, width int) string {
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
