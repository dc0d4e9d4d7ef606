// Package tui implements the interactive dashboard shown during
// `ragstack up`: one row per service with live state, probe attempt
// counters, and a small log pane fed by the logging package.
package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"ragstack/internal/orchestrator"
	"ragstack/pkg/logging"
)

const maxLogLines = 8

// rowState mirrors the orchestration lifecycle for display purposes.
type rowState int

const (
	rowPending rowState = iota
	rowStarting
	rowProbing
	rowReady
	rowFailed
	rowStopped
	rowUnhealthy
)

// serviceRow is the display state of one service.
type serviceRow struct {
	name     string
	endpoint string
	state    rowState
	attempt  int
	max      int
	err      error
}

// RunDoneMsg is sent by the command layer when the orchestration run
// finishes, successfully or not.
type RunDoneMsg struct {
	Result orchestrator.RunResult
}

type eventMsg orchestrator.Event

type logMsg logging.LogEntry

// Model is the bubbletea model for the bring-up dashboard.
type Model struct {
	rows     []serviceRow
	selected int

	spinner  spinner.Model
	events   <-chan orchestrator.Event
	logs     <-chan logging.LogEntry
	logLines []string

	width    int
	done     bool
	result   orchestrator.RunResult
	flash    string // transient status line (e.g. clipboard confirmation)
	quitting bool
}

// New creates the dashboard model for an orchestration run. endpoints maps
// service names to the URL shown (and copied) for each row.
func New(specs []orchestrator.ServiceSpec, endpoints map[string]string, events <-chan orchestrator.Event, logs <-chan logging.LogEntry) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	rows := make([]serviceRow, 0, len(specs))
	for _, spec := range specs {
		rows = append(rows, serviceRow{
			name:     spec.Name,
			endpoint: endpoints[spec.Name],
			max:      spec.MaxAttempts,
		})
	}

	return Model{
		rows:    rows,
		spinner: s,
		events:  events,
		logs:    logs,
		width:   80,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events), waitForLog(m.logs))
}

func waitForEvent(ch <-chan orchestrator.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg(event)
	}
}

func waitForLog(ch <-chan logging.LogEntry) tea.Cmd {
	return func() tea.Msg {
		entry, ok := <-ch
		if !ok {
			return nil
		}
		return logMsg(entry)
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < len(m.rows)-1 {
				m.selected++
			}
		case "c":
			if m.selected < len(m.rows) && m.rows[m.selected].endpoint != "" {
				if err := clipboard.WriteAll(m.rows[m.selected].endpoint); err != nil {
					m.flash = fmt.Sprintf("copy failed: %v", err)
				} else {
					m.flash = fmt.Sprintf("copied %s", m.rows[m.selected].endpoint)
				}
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case eventMsg:
		m.applyEvent(orchestrator.Event(msg))
		return m, waitForEvent(m.events)

	case logMsg:
		entry := logging.LogEntry(msg)
		line := fmt.Sprintf("%s %-5s %s", entry.Timestamp.Format("15:04:05"), entry.Level, entry.Message)
		m.logLines = append(m.logLines, line)
		if len(m.logLines) > maxLogLines {
			m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
		}
		return m, waitForLog(m.logs)

	case RunDoneMsg:
		m.done = true
		m.result = msg.Result
		return m, nil
	}

	return m, nil
}

func (m *Model) applyEvent(event orchestrator.Event) {
	for i := range m.rows {
		if m.rows[i].name != event.Service {
			continue
		}
		switch event.Kind {
		case orchestrator.EventStarting:
			m.rows[i].state = rowStarting
		case orchestrator.EventProbing:
			m.rows[i].state = rowProbing
			m.rows[i].attempt = event.Attempt
			m.rows[i].err = event.Err
		case orchestrator.EventReady:
			m.rows[i].state = rowReady
			m.rows[i].attempt = event.Attempt
			m.rows[i].err = nil
		case orchestrator.EventFailed:
			m.rows[i].state = rowFailed
			m.rows[i].attempt = event.Attempt
		case orchestrator.EventStopped:
			m.rows[i].state = rowStopped
		case orchestrator.EventHealth:
			if event.Healthy {
				m.rows[i].state = rowReady
			} else {
				m.rows[i].state = rowUnhealthy
			}
			m.rows[i].err = event.Err
		}
		return
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("ragstack"))
	b.WriteString("\n\n")

	for i, row := range m.rows {
		b.WriteString(m.renderRow(i, row))
		b.WriteString("\n")
	}

	if m.done {
		b.WriteString("\n")
		if m.result.AllReady {
			b.WriteString(readyStyle.Render("All services ready."))
		} else {
			b.WriteString(failedStyle.Render(m.result.Err().Error()))
		}
		b.WriteString("\n")
	}

	if len(m.logLines) > 0 {
		b.WriteString("\n")
		b.WriteString(logPaneStyle.Width(m.width - 4).Render(strings.Join(m.logLines, "\n")))
		b.WriteString("\n")
	}

	if m.flash != "" {
		b.WriteString("\n" + mutedStyle.Render(m.flash) + "\n")
	}

	b.WriteString(helpStyle.Render("↑/↓ select · c copy endpoint · q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderRow(i int, row serviceRow) string {
	var icon, status string
	switch row.state {
	case rowPending:
		icon = mutedStyle.Render("·")
		status = mutedStyle.Render("pending")
	case rowStarting:
		icon = m.spinner.View()
		status = waitingStyle.Render("starting")
	case rowProbing:
		icon = m.spinner.View()
		status = waitingStyle.Render(fmt.Sprintf("waiting (%d/%d)", row.attempt, row.max))
	case rowReady:
		icon = readyStyle.Render("✓")
		status = readyStyle.Render("ready")
	case rowFailed:
		icon = failedStyle.Render("✗")
		status = failedStyle.Render(fmt.Sprintf("failed after %d attempts", row.attempt))
	case rowStopped:
		icon = mutedStyle.Render("■")
		status = mutedStyle.Render("stopped")
	case rowUnhealthy:
		icon = failedStyle.Render("!")
		status = failedStyle.Render("unhealthy")
	}

	name := runewidth.FillRight(runewidth.Truncate(row.name, 16, "…"), 16)
	endpoint := mutedStyle.Render(runewidth.Truncate(row.endpoint, m.width-48, "…"))

	line := fmt.Sprintf("  %s %s %-28s %s", icon, name, status, endpoint)
	if i == m.selected {
		return selectedStyle.Render(line)
	}
	return line
}
