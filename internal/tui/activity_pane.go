package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kpraveen/agentcompany/internal/events"
)

// ActivityPaneModel is a scrolling log of workflow milestones and inter-agent
// messages.
type ActivityPaneModel struct {
	lines    []string
	viewport viewport.Model
	width    int
	height   int
	focused  bool
}

// NewActivityPaneModel creates a new activity pane model.
func NewActivityPaneModel() ActivityPaneModel {
	vp := viewport.New(0, 0)
	vp.SetContent("No activity yet.")
	return ActivityPaneModel{viewport: vp}
}

// Update handles messages for the activity pane.
func (m ActivityPaneModel) Update(msg tea.Msg) (ActivityPaneModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.focused {
			m.viewport, cmd = m.viewport.Update(msg)
		}

	case events.WorkflowStartedEvent:
		m.appendLine(fmt.Sprintf("[%s] workflow started: %q (%d sequential, %d parallel)",
			msg.Timestamp.Format("15:04:05"), msg.Directive, msg.Sequential, msg.Parallel))

	case events.WorkflowFinishedEvent:
		m.appendLine(fmt.Sprintf("[%s] workflow finished: %d completed, %d failed, %d pending",
			msg.Timestamp.Format("15:04:05"), msg.Completed, msg.Failed, msg.Pending))

	case events.TaskCompletedEvent:
		m.appendLine(fmt.Sprintf("[%s] %s %s completed",
			msg.Timestamp.Format("15:04:05"), msg.ID, msg.Department))

	case events.TaskFailedEvent:
		m.appendLine(fmt.Sprintf("[%s] %s %s failed: %v",
			msg.Timestamp.Format("15:04:05"), msg.ID, msg.Department, msg.Err))

	case events.AgentMessageEvent:
		m.appendLine(fmt.Sprintf("[%s] %s -> %s: %s",
			msg.Timestamp.Format("15:04:05"), msg.Sender, msg.Recipient, msg.Content))
	}

	return m, cmd
}

func (m *ActivityPaneModel) appendLine(line string) {
	m.lines = append(m.lines, line)
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

// View renders the activity pane.
func (m ActivityPaneModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	style := StyleUnfocusedBorder
	if m.focused {
		style = StyleFocusedBorder
	}

	title := StyleTitle.Render("Activity")
	content := title + "\n" + m.viewport.View()

	return style.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(content)
}

// SetSize updates the pane dimensions.
func (m *ActivityPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h

	vpWidth := w - 4
	vpHeight := h - 5
	if vpWidth < 10 {
		vpWidth = 10
	}
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = vpWidth
	m.viewport.Height = vpHeight
}

// SetFocused updates the focus state.
func (m *ActivityPaneModel) SetFocused(focused bool) {
	m.focused = focused
}
