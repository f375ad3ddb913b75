package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/joacominatel/studiodb/internal/app"
	"github.com/joacominatel/studiodb/internal/config"
	"github.com/joacominatel/studiodb/internal/database"
	"github.com/joacominatel/studiodb/internal/tui/editor"
	"github.com/joacominatel/studiodb/internal/tui/explorer"
	"github.com/joacominatel/studiodb/internal/tui/form"
	"github.com/joacominatel/studiodb/internal/tui/results"
	"github.com/joacominatel/studiodb/internal/tui/statusbar"
	"github.com/joacominatel/studiodb/internal/tui/theme"
)

// Pane identifies a focusable area.
type Pane int

const (
	PaneExplorer Pane = iota
	PaneEditor
	PaneResults
)

func (p Pane) String() string {
	switch p {
	case PaneExplorer:
		return "tables"
	case PaneEditor:
		return "editor"
	case PaneResults:
		return "results"
	default:
		return "unknown"
	}
}

// AppMode tracks the current UI state.
type AppMode int

const (
	ModePicker AppMode = iota // recent installations list
	ModeOpen                  // manual root path input
	ModeMain                  // main TUI
	ModeForm                  // record form
)

const (
	openTimeout  = 10 * time.Second
	loadTimeout  = 15 * time.Second
	queryTimeout = 30 * time.Second
)

// Custom messages for async operations.
type (
	openedMsg struct {
		path string
		err  error
	}
	tablesLoadedMsg struct {
		tables []string
		err    error
	}
	infoLoadedMsg struct {
		info *database.DatabaseInfo
		err  error
	}
	queryExecutedMsg struct {
		query  string
		result *database.QueryResult
		err    error
	}
	pageLoadedMsg struct {
		browse results.Browse
		result *database.QueryResult
		err    error
	}
	columnsLoadedMsg struct {
		schema database.TableSchema
		err    error
	}
	formReadyMsg struct {
		schema database.TableSchema
		row    database.Row
		insert bool
		err    error
	}
	recordSavedMsg struct {
		table    string
		insert   bool
		affected int64
		lastID   *int64
		err      error
	}
	recentRemovedMsg struct {
		installs []config.Installation
		err      error
	}
	changedMsg struct {
		event app.ChangeEvent
	}
)

// Model is the top-level bubbletea model orchestrating all components.
type Model struct {
	service    *app.Service
	explorer   explorer.Model
	editor     editor.Model
	results    results.Model
	form       form.Model
	statusbar  statusbar.Model
	rootInput  textinput.Model
	activePane Pane
	mode       AppMode
	width      int
	height     int
	err        error
	showHelp   bool
	initialArg string

	recent       []config.Installation
	recentCursor int

	changes     <-chan app.ChangeEvent
	unsubscribe func()
}

// NewModel creates the top-level model. arg, when set, is an installation
// root or database file to open immediately.
func NewModel(service *app.Service, arg string) Model {
	ti := textinput.New()
	ti.Placeholder = "~/Studio/my-site"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 70

	recent := service.RecentInstallations()
	mode := ModeOpen
	if len(recent) > 0 {
		mode = ModePicker
	}

	changes, unsubscribe := service.Subscribe()

	return Model{
		service:     service,
		explorer:    explorer.New(),
		editor:      editor.New(),
		results:     results.New(),
		statusbar:   statusbar.New(),
		rootInput:   ti,
		activePane:  PaneExplorer,
		mode:        mode,
		initialArg:  arg,
		recent:      recent,
		changes:     changes,
		unsubscribe: unsubscribe,
	}
}

// Shutdown stops change notifications for this model.
func (m Model) Shutdown() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		waitForChange(m.changes),
	}
	if m.initialArg != "" {
		cmds = append(cmds, m.openCmd(m.initialArg))
	}
	return tea.Batch(cmds...)
}

// Update handles all messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if table, ok := explorer.IsRequestColumnsMsg(msg); ok {
		return m, m.loadColumnsCmd(table)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if msg.String() == "?" && m.mode == ModeMain && m.activePane != PaneEditor {
			m.showHelp = !m.showHelp
			return m, nil
		}
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}

		switch m.mode {
		case ModePicker:
			return m.updatePicker(msg)
		case ModeOpen:
			return m.updateOpen(msg)
		case ModeForm:
			var cmd tea.Cmd
			m.form, cmd = m.form.Update(msg)
			return m, cmd
		case ModeMain:
			return m.updateMain(msg)
		}

	case openedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.statusbar.SetMessage("Open failed")
			return m, nil
		}
		m.mode = ModeMain
		m.err = nil
		m.recent = m.service.RecentInstallations()
		m.explorer.Clear()
		m.explorer.SetLoading(true)
		m.results.Clear()
		m.statusbar.SetMessage("Opened " + msg.path)
		m.setFocus(PaneExplorer)
		m.layout()
		return m, tea.Batch(m.loadTablesCmd(), m.loadInfoCmd())

	case tablesLoadedMsg:
		if msg.err != nil {
			m.explorer.SetLoading(false)
			m.statusbar.SetMessage("Failed to load tables: " + msg.err.Error())
			return m, nil
		}
		cmd := m.explorer.SetTables(msg.tables)
		m.editor.SetTableNames(msg.tables)
		return m, cmd

	case infoLoadedMsg:
		if msg.err != nil {
			m.statusbar.SetMessage("Failed to read database info: " + msg.err.Error())
			return m, nil
		}
		m.statusbar.SetInfo(msg.info)
		return m, nil

	case columnsLoadedMsg:
		if msg.err != nil {
			m.statusbar.SetMessage("Failed to load columns: " + msg.err.Error())
			return m, nil
		}
		m.explorer.SetColumns(msg.schema)
		m.editor.SetColumns(msg.schema)
		return m, nil

	case queryExecutedMsg:
		if msg.err != nil {
			m.results.SetError(msg.err)
			m.statusbar.SetMessage("")
			return m, nil
		}
		m.results.SetResult(msg.query, msg.result)
		m.editor.SetHistory(m.historyQueries())
		m.statusbar.SetMessage("")
		if msg.result.Kind == database.Write {
			// Writes may create or drop tables.
			return m, tea.Batch(m.loadTablesCmd(), m.loadInfoCmd())
		}
		return m, nil

	case pageLoadedMsg:
		if msg.err != nil {
			m.results.SetError(msg.err)
			return m, nil
		}
		m.results.SetPage(msg.browse, msg.result)
		m.statusbar.SetMessage("")
		return m, nil

	case formReadyMsg:
		if msg.err != nil {
			m.statusbar.SetMessage("Cannot open form: " + msg.err.Error())
			return m, nil
		}
		if msg.insert {
			m.form = form.NewInsert(msg.schema)
		} else {
			m.form = form.NewEdit(msg.schema, msg.row)
		}
		m.form.SetSize(m.width, m.height)
		m.mode = ModeForm
		return m, textinput.Blink

	case form.CancelMsg:
		m.mode = ModeMain
		return m, nil

	case form.SaveMsg:
		m.statusbar.SetMessage("Saving...")
		return m, m.saveRecordCmd(msg)

	case recordSavedMsg:
		if msg.err != nil {
			m.form.SetError(msg.err)
			m.statusbar.SetMessage("")
			return m, nil
		}
		m.mode = ModeMain
		if msg.insert && msg.lastID != nil {
			m.statusbar.SetMessage(fmt.Sprintf("Inserted row %d into %s", *msg.lastID, msg.table))
		} else {
			m.statusbar.SetMessage(fmt.Sprintf("%s row(s) updated in %s", humanize.Comma(msg.affected), msg.table))
		}
		return m, tea.Batch(m.refreshPageCmd(), m.loadInfoCmd())

	case recentRemovedMsg:
		if msg.err != nil {
			m.err = msg.err
		}
		m.recent = msg.installs
		if m.recentCursor > len(m.recent) {
			m.recentCursor = len(m.recent)
		}
		return m, nil

	case changedMsg:
		m.statusbar.SetChanged(msg.event.At)
		return m, waitForChange(m.changes)

	case explorer.BrowseTableMsg:
		m.setFocus(PaneResults)
		b := results.Browse{Table: msg.Table, Page: 1, PageSize: m.service.PageSize(), SortDirection: database.SortAsc}
		return m, m.fetchPageCmd(b)

	case explorer.NewRecordMsg:
		return m, m.openFormCmd(msg.Table, nil, true)

	case results.FetchPageMsg:
		b, _ := m.results.Browsing()
		b.Page = msg.Request.Page
		b.SortColumn = msg.Request.SortColumn
		b.SortDirection = msg.Request.SortDirection
		return m, m.fetchPageCmd(b)

	case results.EditRecordMsg:
		return m, m.openFormCmd(msg.Table, msg.Row, false)

	case results.SetEditorQueryMsg:
		m.editor.SetQuery(msg.Query)
		m.setFocus(PaneEditor)
		return m, nil

	case results.StatusNotifyMsg:
		m.statusbar.SetMessage(msg.Message)
		return m, nil

	case editor.ColumnsNeededMsg:
		return m, m.loadColumnsCmd(msg.Table)

	case editor.ExecuteQueryMsg:
		m.results.SetLoading(true)
		m.statusbar.SetMessage("Executing query...")
		return m, m.executeQueryCmd(msg.Query)
	}

	switch m.mode {
	case ModeMain:
		return m.updateComponents(msg)
	case ModeForm:
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	case ModeOpen:
		var cmd tea.Cmd
		m.rootInput, cmd = m.rootInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.recent)

	switch msg.String() {
	case "up", "k":
		if m.recentCursor > 0 {
			m.recentCursor--
		}
	case "down", "j":
		if m.recentCursor < count { // last item is "Open installation"
			m.recentCursor++
		}
	case "enter":
		if m.recentCursor < count {
			inst := m.recent[m.recentCursor]
			m.statusbar.SetMessage("Opening " + inst.Name + "...")
			return m, m.openRecentCmd(inst.DBPath)
		}
		m.mode = ModeOpen
		m.rootInput.Focus()
		return m, nil
	case "o", "n":
		m.mode = ModeOpen
		m.rootInput.Focus()
		return m, nil
	case "x", "delete":
		if m.recentCursor < count {
			return m, m.removeRecentCmd(m.recent[m.recentCursor].Root)
		}
	case "q":
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) updateOpen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		root := strings.TrimSpace(m.rootInput.Value())
		if root != "" {
			m.statusbar.SetMessage("Opening...")
			return m, m.openCmd(root)
		}
		return m, nil
	case "esc":
		if len(m.recent) > 0 {
			m.mode = ModePicker
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.rootInput, cmd = m.rootInput.Update(msg)
	return m, cmd
}

func (m Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		if m.activePane != PaneEditor {
			return m, tea.Quit
		}
	case "r":
		if m.activePane != PaneEditor {
			m.statusbar.ClearChanged()
			return m, tea.Batch(m.loadTablesCmd(), m.loadInfoCmd(), m.refreshPageCmd())
		}
	case "o":
		if m.activePane != PaneEditor {
			m.recent = m.service.RecentInstallations()
			m.recentCursor = 0
			m.mode = ModePicker
			if len(m.recent) == 0 {
				m.mode = ModeOpen
				m.rootInput.Focus()
			}
			return m, nil
		}
	case "tab":
		if m.activePane == PaneEditor && m.editor.CompletionActive() {
			return m.updateComponents(msg)
		}
		m.cyclePane()
		return m, nil
	case "shift+tab":
		m.cyclePaneBack()
		return m, nil
	}

	return m.updateComponents(msg)
}

func (m Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.activePane {
	case PaneExplorer:
		m.explorer, cmd = m.explorer.Update(msg)
	case PaneEditor:
		m.editor, cmd = m.editor.Update(msg)
	case PaneResults:
		m.results, cmd = m.results.Update(msg)
		if status := m.results.StatusMessage(); status != "" {
			m.statusbar.SetMessage(status)
		}
	}

	return m, cmd
}

func (m *Model) cyclePane() {
	switch m.activePane {
	case PaneExplorer:
		m.setFocus(PaneEditor)
	case PaneEditor:
		m.setFocus(PaneResults)
	case PaneResults:
		m.setFocus(PaneExplorer)
	}
}

func (m *Model) cyclePaneBack() {
	switch m.activePane {
	case PaneExplorer:
		m.setFocus(PaneResults)
	case PaneEditor:
		m.setFocus(PaneExplorer)
	case PaneResults:
		m.setFocus(PaneEditor)
	}
}

func (m *Model) setFocus(pane Pane) {
	m.activePane = pane
	m.explorer.SetFocused(pane == PaneExplorer)
	m.editor.SetFocused(pane == PaneEditor)
	m.results.SetFocused(pane == PaneResults)
	m.statusbar.SetActivePane(pane.String())
}

func (m Model) explorerWidth() int {
	return min(max(m.width/4, 22), 35)
}

func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}

	statusHeight := 1
	availHeight := m.height - statusHeight

	explorerWidth := m.explorerWidth()
	rightWidth := m.width - explorerWidth - 1

	editorHeight := max(availHeight*40/100, 5)
	resultsHeight := availHeight - editorHeight - 1

	m.explorer.SetSize(explorerWidth, availHeight)
	m.editor.SetSize(rightWidth, editorHeight)
	m.results.SetSize(rightWidth, resultsHeight)
	m.form.SetSize(m.width, m.height)
	m.statusbar.SetWidth(m.width)
}

func (m Model) historyQueries() []string {
	entries := m.service.QueryHistory()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Query
	}
	return out
}

// Async commands

func waitForChange(ch <-chan app.ChangeEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return changedMsg{event: ev}
	}
}

func (m Model) openCmd(root string) tea.Cmd {
	service := m.service
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
		defer cancel()

		target := expandHome(root)
		if isDatabaseFile(target) {
			if _, err := service.OpenRecent(ctx, target); err != nil {
				return openedMsg{err: err}
			}
			path, _ := service.Connected()
			return openedMsg{path: path}
		}
		path, err := service.OpenInstallation(ctx, target)
		return openedMsg{path: path, err: err}
	}
}

func (m Model) openRecentCmd(dbPath string) tea.Cmd {
	service := m.service
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
		defer cancel()
		if _, err := service.OpenRecent(ctx, dbPath); err != nil {
			return openedMsg{err: err}
		}
		return openedMsg{path: dbPath}
	}
}

func (m Model) removeRecentCmd(root string) tea.Cmd {
	service := m.service
	return func() tea.Msg {
		installs, err := service.RemoveRecentInstallation(root)
		return recentRemovedMsg{installs: installs, err: err}
	}
}

func (m Model) loadTablesCmd() tea.Cmd {
	service := m.service
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		tables, err := service.ListTables(ctx)
		return tablesLoadedMsg{tables: tables, err: err}
	}
}

func (m Model) loadInfoCmd() tea.Cmd {
	service := m.service
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		info, err := service.DatabaseInfo(ctx)
		return infoLoadedMsg{info: info, err: err}
	}
}

func (m Model) loadColumnsCmd(table string) tea.Cmd {
	service := m.service
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		schema, err := service.DescribeTable(ctx, table)
		return columnsLoadedMsg{schema: schema, err: err}
	}
}

func (m Model) executeQueryCmd(query string) tea.Cmd {
	service := m.service
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		result, err := service.Execute(ctx, query)
		return queryExecutedMsg{query: query, result: result, err: err}
	}
}

func (m Model) fetchPageCmd(b results.Browse) tea.Cmd {
	service := m.service
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		result, err := service.FetchPage(ctx, b.Request())
		return pageLoadedMsg{browse: b, result: result, err: err}
	}
}

// refreshPageCmd reloads the browsed page, if any.
func (m Model) refreshPageCmd() tea.Cmd {
	b, ok := m.results.Browsing()
	if !ok {
		return nil
	}
	return m.fetchPageCmd(b)
}

func (m Model) openFormCmd(table string, row database.Row, insert bool) tea.Cmd {
	service := m.service
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		schema, err := service.DescribeTable(ctx, table)
		return formReadyMsg{schema: schema, row: row, insert: insert, err: err}
	}
}

func (m Model) saveRecordCmd(msg form.SaveMsg) tea.Cmd {
	service := m.service
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()

		if msg.Insert {
			res, err := service.InsertRecord(ctx, msg.Table, msg.Record)
			return recordSavedMsg{table: msg.Table, insert: true, affected: res.RowsAffected, lastID: res.LastInsertID, err: err}
		}
		n, err := service.UpdateRecord(ctx, msg.Table, msg.Record, "")
		return recordSavedMsg{table: msg.Table, affected: n, err: err}
	}
}

// View renders the entire application.
func (m Model) View() string {
	if m.showHelp {
		return m.viewHelp()
	}

	switch m.mode {
	case ModePicker:
		return m.viewPicker()
	case ModeOpen:
		return m.viewOpen()
	case ModeForm:
		return lipgloss.JoinVertical(lipgloss.Left,
			theme.StyleActiveBorder.Width(m.width-2).Height(m.height-3).Render(m.form.View()),
			m.statusbar.View(),
		)
	default:
		return m.viewMain()
	}
}

func (m Model) banner() string {
	title := lipgloss.NewStyle().
		Foreground(theme.ColorPrimary).
		Bold(true).
		Padding(1, 0).
		Render("studiodb")
	subtitle := theme.StyleMuted.Render("Browse and edit WordPress Studio databases.")
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle)
}

func (m Model) errorLine() string {
	if m.err == nil {
		return ""
	}
	msg := m.err.Error()
	switch {
	case errors.Is(m.err, database.ErrNotFound):
		msg = "No database found. Is this a Studio site root? " + msg
	case errors.Is(m.err, database.ErrLockedOrBusy):
		msg = "The database is busy, try again. " + msg
	}
	return theme.StyleError.Render("  Error: " + msg)
}

func (m Model) viewPicker() string {
	sectionTitle := lipgloss.NewStyle().
		Foreground(theme.ColorPrimary).
		Bold(true).
		Render("Recent Installations")

	var items []string
	for i, inst := range m.recent {
		label := inst.DisplayString()
		if !inst.OpenedAt.IsZero() {
			label += " " + theme.StyleMuted.Render(humanize.Time(inst.OpenedAt))
		}
		if i == m.recentCursor {
			items = append(items, theme.StyleSelected.Render("> ")+label)
		} else {
			items = append(items, "  "+label)
		}
	}

	openLabel := "  [Open Installation]"
	if m.recentCursor == len(m.recent) {
		openLabel = theme.StyleSelected.Render("> [Open Installation]")
	}
	items = append(items, "", openLabel)

	parts := []string{m.banner(), "", sectionTitle}
	parts = append(parts, items...)
	if line := m.errorLine(); line != "" {
		parts = append(parts, "", line)
	}
	parts = append(parts, "", theme.StyleMuted.Render("  ↑/↓: Navigate  Enter: Open  o: Open path  x: Forget  q: Quit"))

	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, parts...),
	)
}

func (m Model) viewOpen() string {
	prompt := lipgloss.NewStyle().
		Foreground(theme.ColorPrimary).
		Render("Installation root (or database file):")

	backHint := ""
	if len(m.recent) > 0 {
		backHint = "Esc: Back │ "
	}

	parts := []string{
		m.banner(),
		"",
		prompt,
		"  " + m.rootInput.View(),
	}
	if line := m.errorLine(); line != "" {
		parts = append(parts, "", line)
	}
	parts = append(parts, "", theme.StyleMuted.Render("  "+backHint+"Enter: Open │ Ctrl+C: Quit"))

	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, parts...),
	)
}

func (m Model) viewMain() string {
	explorerWidth := m.explorerWidth()
	rightWidth := m.width - explorerWidth - 1

	statusHeight := 1
	availHeight := m.height - statusHeight - 2

	border := func(p Pane) lipgloss.Style {
		if m.activePane == p {
			return theme.StyleActiveBorder
		}
		return theme.StyleBorder
	}

	explorerView := border(PaneExplorer).
		Width(explorerWidth - 2).
		Height(availHeight).
		Render(m.explorer.View())

	editorHeight := max(availHeight*40/100, 5)
	resultsHeight := availHeight - editorHeight - 2

	editorView := border(PaneEditor).
		Width(rightWidth - 2).
		Height(editorHeight).
		Render(m.editor.View())

	resultsView := border(PaneResults).
		Width(rightWidth - 2).
		Height(resultsHeight).
		Render(m.results.View())

	mainArea := lipgloss.JoinHorizontal(lipgloss.Top,
		explorerView,
		lipgloss.JoinVertical(lipgloss.Left, editorView, resultsView),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		mainArea,
		m.statusbar.View(),
	)
}

func (m Model) viewHelp() string {
	sectionStyle := lipgloss.NewStyle().
		Foreground(theme.ColorHighlight).
		Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	row := func(key, desc string) string {
		return keyStyle.Render(fmt.Sprintf("  %-14s", key)) + theme.StyleMuted.Render(desc)
	}

	help := lipgloss.JoinVertical(lipgloss.Left,
		theme.StyleTitle.Render("studiodb - Keyboard Shortcuts"),
		"",
		sectionStyle.Render("Global"),
		row("q / Ctrl+C", "Quit application"),
		row("Tab", "Switch between panes"),
		row("Shift+Tab", "Switch panes (reverse)"),
		row("o", "Open another installation"),
		row("r", "Reload after outside changes"),
		row("?", "Toggle this help"),
		"",
		sectionStyle.Render("Tables"),
		row("↑/k  ↓/j", "Navigate up/down"),
		row("→/l  ←/h", "Show/hide columns"),
		row("Enter / b", "Browse table"),
		row("n", "New record"),
		"",
		sectionStyle.Render("Editor"),
		row("Ctrl+E / F5", "Execute query"),
		row("Ctrl+P / Ctrl+N", "Previous/next query from history"),
		row("Ctrl+K", "Clear editor"),
		row("Ctrl+L", "Format query (uppercase keywords)"),
		row("Tab", "Complete table name"),
		"",
		sectionStyle.Render("Results"),
		row("↑↓←→", "Move cell cursor"),
		row("n / p", "Next/previous page"),
		row("s", "Sort by column (toggle asc/desc)"),
		row("Enter / e", "Edit row"),
		row("y / Y", "Copy cell / row as JSON"),
		row("c / t", "Copy row as CSV / text"),
		row("f / D", "Filter by value / draft DELETE"),
		row("Ctrl+S / Ctrl+J", "Export CSV / JSON"),
		"",
		theme.StyleMuted.Render("Press any key to close"),
	)

	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		help,
	)
}
