package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/blockscape/pkg/gesture"
	"github.com/matzehuels/blockscape/pkg/panel"
	"github.com/matzehuels/blockscape/pkg/provider"
)

func TestMouseEvent(t *testing.T) {
	tests := []struct {
		name   string
		msg    tea.MouseMsg
		want   gesture.Kind
		deltaY float64
		ok     bool
	}{
		{"press", tea.MouseMsg{X: 2, Y: 3, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}, gesture.PointerDown, 0, true},
		{"drag", tea.MouseMsg{X: 2, Y: 3, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft}, gesture.PointerMove, 0, true},
		{"hover", tea.MouseMsg{X: 2, Y: 3, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone}, gesture.PointerMove, 0, true},
		{"release", tea.MouseMsg{X: 2, Y: 3, Action: tea.MouseActionRelease}, gesture.PointerUp, 0, true},
		{"wheel up", tea.MouseMsg{X: 2, Y: 3, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp}, gesture.Wheel, -1, true},
		{"wheel down", tea.MouseMsg{X: 2, Y: 3, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown}, gesture.Wheel, 1, true},
		{"right press", tea.MouseMsg{X: 2, Y: 3, Action: tea.MouseActionPress, Button: tea.MouseButtonRight}, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := mouseEvent(tt.msg)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if ev.Kind != tt.want || ev.DeltaY != tt.deltaY {
				t.Errorf("event = %+v, want kind %v deltaY %v", ev, tt.want, tt.deltaY)
			}
			if ev.X != 2.5*cellW || ev.Y != 3.5*cellH {
				t.Errorf("position = (%v, %v), want cell center", ev.X, ev.Y)
			}
		})
	}
}

func TestCellMeasurer(t *testing.T) {
	if got := cellMeasurer.Measure("héllo"); got != 5*cellW {
		t.Errorf("Measure() = %v, want %v", got, 5*cellW)
	}
}

func TestViewBoxKeepsLatest(t *testing.T) {
	var b viewBox
	if _, hasView, _, hasStat := b.load(); hasView || hasStat {
		t.Fatal("empty box reports values")
	}

	b.setStatus(panel.Status{Block: 1})
	b.setView(panel.View{Status: panel.Status{Block: 2}})
	b.setStatus(panel.Status{Block: 3})

	v, hasView, st, hasStat := b.load()
	if !hasView || !hasStat {
		t.Fatal("box lost values")
	}
	if v.Status.Block != 2 || st.Block != 3 {
		t.Errorf("view block %d status block %d, want 2 and 3", v.Status.Block, st.Block)
	}
}

func newTestExplorer(t *testing.T) exploreModel {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	box := &viewBox{}
	pn, err := loadPanel(ctx, provider.NewDemo(demoSeed), 20, 22,
		panel.WithMeasurer(cellMeasurer),
		panel.WithSink(box.setView),
		panel.WithStatus(box.setStatus),
	)
	if err != nil {
		t.Fatalf("loadPanel: %v", err)
	}

	m := newExploreModel(pn, box, 20, 22)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	next, _ = next.Update(tickMsg(time.Now()))
	return next.(exploreModel)
}

func press(m exploreModel, msg tea.KeyMsg) exploreModel {
	next, _ := m.Update(msg)
	return next.(exploreModel)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestExploreStepsWrap(t *testing.T) {
	m := newTestExplorer(t)
	if m.status.Position != 0 {
		t.Fatalf("position = %d, want 0", m.status.Position)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	if m.err != nil || m.status.Position != 2 || m.status.Block != 22 {
		t.Fatalf("after left: position %d block %d err %v, want wrap to 2", m.status.Position, m.status.Block, m.err)
	}

	m = press(m, runes("l"))
	if m.status.Position != 0 || m.status.Block != 20 {
		t.Errorf("after l: position %d block %d, want 0", m.status.Position, m.status.Block)
	}
}

func TestExploreAutoplayToggle(t *testing.T) {
	m := newTestExplorer(t)

	m = press(m, tea.KeyMsg{Type: tea.KeySpace})
	if !m.status.Autoplay {
		t.Fatal("space should start autoplay")
	}
	if !strings.Contains(m.statusLine(), "autoplay") {
		t.Errorf("status line = %q", m.statusLine())
	}
	m = press(m, tea.KeyMsg{Type: tea.KeySpace})
	if m.status.Autoplay {
		t.Error("second space should stop autoplay")
	}
}

func TestExploreGotoPrompt(t *testing.T) {
	m := newTestExplorer(t)

	m = press(m, runes("g"))
	if !m.prompting {
		t.Fatal("g should open the range prompt")
	}
	m.input.SetValue("30 31")
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.prompting || m.err != nil {
		t.Fatalf("prompting %v err %v", m.prompting, m.err)
	}
	if m.start != 30 || m.end != 31 {
		t.Errorf("range = %d..%d, want 30..31", m.start, m.end)
	}

	m = press(m, runes("g"))
	m.input.SetValue("31 30")
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.err == nil || m.start != 30 {
		t.Errorf("reversed range should be rejected, err %v start %d", m.err, m.start)
	}
}

func TestExploreViewLayout(t *testing.T) {
	m := newTestExplorer(t)
	m = press(m, runes("f"))

	out := m.View()
	if got := strings.Count(out, "\n"); got < m.rows+1 {
		t.Errorf("view has %d lines, want at least %d", got, m.rows+1)
	}
	if !strings.Contains(out, "block 20") {
		t.Errorf("status line missing block number:\n%s", out)
	}
}

func TestExploreQuit(t *testing.T) {
	m := newTestExplorer(t)
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
