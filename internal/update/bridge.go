package update

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/coachd/internal/coach"
	"github.com/sandeepkv93/coachd/internal/ports"
)

// Bridge carries presenter snapshots and navigation requests into the
// bubbletea loop. Snapshots are coalesced: a reader only ever sees the
// newest one.
type Bridge struct {
	mu     sync.Mutex
	states chan coach.State
	nav    chan NavigateMsg
}

func NewBridge() *Bridge {
	return &Bridge{
		states: make(chan coach.State, 1),
		nav:    make(chan NavigateMsg, 16),
	}
}

// Publish is a coach subscriber. It never blocks.
func (b *Bridge) Publish(s coach.State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	select {
	case <-b.states:
	default:
	}
	b.states <- s
}

func (b *Bridge) OpenTip(id string, source ports.TipSource) {
	b.send(NavigateMsg{Target: TargetTip, TipID: id, Source: source})
}

func (b *Bridge) OpenExplore() { b.send(NavigateMsg{Target: TargetExplore}) }

func (b *Bridge) OpenChat() { b.send(NavigateMsg{Target: TargetChat}) }

func (b *Bridge) send(msg NavigateMsg) {
	select {
	case b.nav <- msg:
	default:
	}
}

func waitForStateCmd(b *Bridge) tea.Cmd {
	if b == nil {
		return nil
	}
	return func() tea.Msg {
		return StateMsg{State: <-b.states}
	}
}

func waitForNavCmd(b *Bridge) tea.Cmd {
	if b == nil {
		return nil
	}
	return func() tea.Msg {
		return <-b.nav
	}
}
