package statusbar

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/joacominatel/studiodb/internal/database"
	"github.com/joacominatel/studiodb/internal/tui/theme"
)

// Model is the status bar component.
type Model struct {
	width      int
	info       *database.DatabaseInfo
	activePane string
	message    string
	changedAt  time.Time
}

// New creates a new status bar model.
func New() Model {
	return Model{
		activePane: "tables",
	}
}

// SetWidth updates the component width.
func (m *Model) SetWidth(w int) {
	m.width = w
}

// SetInfo updates the connection display. nil means disconnected.
func (m *Model) SetInfo(info *database.DatabaseInfo) {
	m.info = info
	m.changedAt = time.Time{}
}

// SetChanged records that the database file was modified outside this session.
func (m *Model) SetChanged(at time.Time) {
	m.changedAt = at
}

// ClearChanged hides the modification notice.
func (m *Model) ClearChanged() {
	m.changedAt = time.Time{}
}

// SetActivePane updates the displayed active pane name.
func (m *Model) SetActivePane(pane string) {
	m.activePane = pane
}

// SetMessage sets a temporary status message.
func (m *Model) SetMessage(msg string) {
	m.message = msg
}

// View renders the status bar.
func (m Model) View() string {
	style := theme.StyleStatusBar.Width(m.width)

	var left string
	if m.info != nil {
		left = lipgloss.NewStyle().Foreground(theme.ColorSuccess).Render("●") +
			" " + m.info.Path +
			theme.StyleMuted.Render(" "+humanize.Bytes(uint64(m.info.Size)))
		if m.info.ReadOnly {
			left += theme.StyleWarning.Render(" [read-only]")
		}
	} else {
		left = lipgloss.NewStyle().Foreground(theme.ColorError).Render("●") + " disconnected"
	}

	if !m.changedAt.IsZero() {
		left += theme.StyleWarning.Render(" ⟳ changed " + humanize.Time(m.changedAt) + " (r: reload)")
	}

	right := "Tab: Switch pane │ ?: Help │ q: Quit"
	if m.message != "" {
		right = m.message
	}

	padding := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if padding < 1 {
		padding = 1
	}

	return style.Render(left + strings.Repeat(" ", padding) + right)
}
