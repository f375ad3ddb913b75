package results

import "github.com/joacominatel/studiodb/internal/database"

// Browse is the paging and sort state of a table being browsed.
type Browse struct {
	Table         string
	Page          int
	PageSize      int
	SortColumn    string
	SortDirection database.SortDirection
	TotalPages    int
}

// Request builds the page request for the current state.
func (b Browse) Request() database.PageRequest {
	return database.PageRequest{
		Table:         b.Table,
		Page:          b.Page,
		PageSize:      b.PageSize,
		SortColumn:    b.SortColumn,
		SortDirection: b.SortDirection,
	}
}

// ToggleSort sorts by column, flipping the direction when it is already the
// sort column. Any change returns to the first page.
func (b Browse) ToggleSort(column string) Browse {
	if b.SortColumn == column && b.SortDirection == database.SortAsc {
		b.SortDirection = database.SortDesc
	} else {
		b.SortColumn = column
		b.SortDirection = database.SortAsc
	}
	b.Page = 1
	return b
}

// Next moves to the following page. ok is false on the last page.
func (b Browse) Next() (Browse, bool) {
	if b.TotalPages > 0 && b.Page >= b.TotalPages {
		return b, false
	}
	b.Page++
	return b, true
}

// Prev moves to the previous page. ok is false on the first page.
func (b Browse) Prev() (Browse, bool) {
	if b.Page <= 1 {
		return b, false
	}
	b.Page--
	return b, true
}
