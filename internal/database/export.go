package database

import (
	"encoding/csv"
	"io"
)

// WriteCSV writes a header line and every row of r as RFC 4180 CSV, with
// NULL for missing values.
func WriteCSV(w io.Writer, r *QueryResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(r.Columns); err != nil {
		return err
	}
	for _, row := range r.Strings() {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
