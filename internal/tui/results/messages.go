package results

import "github.com/joacominatel/studiodb/internal/database"

// SetEditorQueryMsg tells the app to put a query in the editor pane
type SetEditorQueryMsg struct {
	Query string
}

// StatusNotifyMsg tells the app to show a message in the status bar
type StatusNotifyMsg struct {
	Message string
}

// FetchPageMsg asks the app to load another page of the browsed table.
type FetchPageMsg struct {
	Request database.PageRequest
}

// EditRecordMsg asks the app to open the record form on a browsed row.
type EditRecordMsg struct {
	Table string
	Row   database.Row
}
