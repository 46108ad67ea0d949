// Package ingest parses tabular event sources into engine events,
// validating every record and reporting per-record failures without
// aborting the batch. The engine never sees a malformed record.
package ingest

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// row is one raw CSV record with its source line number for error reporting.
type row struct {
	line   int
	fields []string
}

// streamCSV reads CSV records and sends them to a channel. The first row is
// treated as a header and skipped when its first field is not numeric.
// Caller must consume the row channel; both channels are closed when
// processing completes.
func streamCSV(ctx context.Context, r io.Reader) (<-chan row, <-chan error) {
	rowCh := make(chan row, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1 // validated per record downstream
		reader.TrimLeadingSpace = true

		line := 0
		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "ingest: context cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "ingest: read csv row")
				return
			}
			line++

			for i, field := range record {
				record[i] = strings.TrimSpace(field)
			}

			if line == 1 && isHeader(record) {
				continue
			}

			select {
			case rowCh <- row{line: line, fields: record}:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "ingest: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}

// isHeader reports whether the record looks like a column header row.
func isHeader(record []string) bool {
	if len(record) == 0 {
		return false
	}
	first := strings.ToLower(record[0])
	return first == "hour" || first == "timestamp" || first == "time"
}
