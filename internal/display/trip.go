package display

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hammamikhairi/larder/internal/app"
	"github.com/hammamikhairi/larder/internal/shopping"
)

// TripController is the part of the service the checklist drives.
type TripController interface {
	ToggleItem(ctx context.Context, name string) (app.TripView, error)
	FinishTrip(ctx context.Context) (shopping.Receipt, error)
	CancelTrip(ctx context.Context) error
}

// TripOutcome is how the checklist was left.
type TripOutcome int

const (
	// TripLeft means the user quit with the trip still active.
	TripLeft TripOutcome = iota
	TripFinished
	TripCancelled
)

// ── Bubble Tea model ─────────────────────────────────────────────

// TripModel is an interactive checklist over an active trip. Every
// toggle is persisted through the controller, so quitting keeps the
// selection for later.
type TripModel struct {
	ctx     context.Context
	ctrl    TripController
	view    app.TripView
	items   []string
	cursor  int
	bar     progress.Model
	busy    bool
	err     error
	outcome TripOutcome
	receipt shopping.Receipt
	width   int
}

// Messages.
type (
	tripViewMsg      app.TripView
	tripFinishedMsg  shopping.Receipt
	tripCancelledMsg struct{}
	tripErrMsg       struct{ err error }
)

// NewTripModel builds the checklist for an already started trip.
func NewTripModel(ctx context.Context, ctrl TripController, view app.TripView) TripModel {
	m := TripModel{
		ctx:  ctx,
		ctrl: ctrl,
		bar:  progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
	m.setView(view)
	return m
}

// Outcome reports how the checklist ended.
func (m TripModel) Outcome() TripOutcome { return m.outcome }

// Receipt is the finished trip, if any.
func (m TripModel) Receipt() shopping.Receipt { return m.receipt }

// Err is the last controller error.
func (m TripModel) Err() error { return m.err }

func (m *TripModel) setView(v app.TripView) {
	m.view = v
	m.items = nil
	for _, g := range v.Groups {
		m.items = append(m.items, g.Items...)
	}
	if m.cursor >= len(m.items) {
		m.cursor = max(len(m.items)-1, 0)
	}
}

func (m TripModel) Init() tea.Cmd {
	return tea.SetWindowTitle("Larder: shopping")
}

func (m TripModel) toggle(name string) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		v, err := ctrl.ToggleItem(ctx, name)
		if err != nil {
			return tripErrMsg{err}
		}
		return tripViewMsg(v)
	}
}

func (m TripModel) finish() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		r, err := ctrl.FinishTrip(ctx)
		if err != nil {
			return tripErrMsg{err}
		}
		return tripFinishedMsg(r)
	}
}

func (m TripModel) cancel() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		if err := ctrl.CancelTrip(ctx); err != nil {
			return tripErrMsg{err}
		}
		return tripCancelledMsg{}
	}
}

func (m TripModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case " ", "x":
			if len(m.items) > 0 {
				m.busy = true
				return m, m.toggle(m.items[m.cursor])
			}
		case "enter":
			m.busy = true
			return m, m.finish()
		case "c":
			m.busy = true
			return m, m.cancel()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(max(msg.Width-20, 10), 60)
		return m, nil

	case tripViewMsg:
		m.busy = false
		m.err = nil
		m.setView(app.TripView(msg))
		return m, nil

	case tripFinishedMsg:
		m.busy = false
		m.outcome = TripFinished
		m.receipt = shopping.Receipt(msg)
		return m, tea.Quit

	case tripCancelledMsg:
		m.busy = false
		m.outcome = TripCancelled
		return m, tea.Quit

	case tripErrMsg:
		m.busy = false
		m.err = msg.err
		return m, nil
	}
	return m, nil
}

func (m TripModel) View() string {
	var b strings.Builder
	b.WriteString(header("Shopping trip"))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(secondaryStyle.Render("  Nothing missing. Press enter to close the trip."))
		b.WriteString("\n")
	}

	i := 0
	for _, g := range m.view.Groups {
		title := categoryLabel(g.Category)
		if g.ColdChain {
			b.WriteString("  " + coldStyle.Render(title+" ❄") + "\n")
		} else {
			b.WriteString("  " + primaryStyle.Render(title) + "\n")
		}
		for _, name := range g.Items {
			pointer := "  "
			if i == m.cursor {
				pointer = cursorStyle.Render("> ")
			}
			box := "[ ]"
			label := primaryStyle.Render(name)
			if m.view.Trip.IsSelected(name) {
				box = okStyle.Render("[x]")
				label = secondaryStyle.Render(name)
			}
			price := m.view.State.Ingredients[name].Price.StringFixed(2)
			b.WriteString(fmt.Sprintf("  %s%s %-20s %8s\n", pointer, box, label, price))
			i++
		}
	}

	b.WriteString("\n  ")
	b.WriteString(m.bar.ViewAs(m.view.Trip.Progress(m.view.State)))
	b.WriteString("  " + primaryStyle.Render("subtotal "+m.view.Trip.Subtotal(m.view.State).StringFixed(2)))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString("\n  " + expiredStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + secondaryStyle.Render("  space toggle · enter finish · c cancel trip · q leave for later"))
	b.WriteString("\n")
	return b.String()
}

// RunTrip runs the checklist until the user finishes, cancels or quits.
func RunTrip(ctx context.Context, ctrl TripController, view app.TripView) (TripModel, error) {
	final, err := tea.NewProgram(NewTripModel(ctx, ctrl, view), tea.WithContext(ctx)).Run()
	if err != nil {
		return TripModel{}, fmt.Errorf("running trip checklist: %w", err)
	}
	return final.(TripModel), nil
}
