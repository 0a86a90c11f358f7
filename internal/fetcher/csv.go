package fetcher

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// Record is one CSV row keyed by header column name.
type Record map[string]string

// CSVOptions configures the streaming CSV parser.
type CSVOptions struct {
	Delimiter rune // default ','
	// Required lists header columns that must be present.
	Required  []string
	TrimSpace bool
	HeaderCh  chan<- []string // optional: receives the cleaned header
}

// StreamCSV reads a headed CSV and sends each data row keyed by column name.
// Caller must consume the returned record channel. Errors are sent on the
// error channel. Both channels are closed when processing completes.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan Record, <-chan error) {
	recCh := make(chan Record, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(recCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		if opts.Delimiter != 0 {
			reader.Comma = opts.Delimiter
		}
		reader.FieldsPerRecord = -1
		reader.LazyQuotes = true

		header, err := reader.Read()
		if err == io.EOF {
			errCh <- eris.New("csv: empty input")
			return
		}
		if err != nil {
			errCh <- eris.Wrap(err, "csv: read header")
			return
		}
		for i, h := range header {
			header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		}
		if missing := missingColumns(header, opts.Required); len(missing) > 0 {
			errCh <- eris.Errorf("csv: missing columns %s", strings.Join(missing, ", "))
			return
		}
		if opts.HeaderCh != nil {
			select {
			case opts.HeaderCh <- header:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled sending header")
				return
			}
		}

		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}

			row, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "csv: read row")
				return
			}

			rec := make(Record, len(header))
			for i, col := range header {
				if i >= len(row) {
					break
				}
				v := row[i]
				if opts.TrimSpace {
					v = strings.TrimSpace(v)
				}
				rec[col] = v
			}

			select {
			case recCh <- rec:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}
		}
	}()

	return recCh, errCh
}

// ReadCSV drains StreamCSV into a slice.
func ReadCSV(ctx context.Context, r io.Reader, opts CSVOptions) ([]Record, error) {
	recCh, errCh := StreamCSV(ctx, r, opts)
	var out []Record
	for rec := range recCh {
		out = append(out, rec)
	}
	if err := <-errCh; err != nil {
		return out, err
	}
	return out, nil
}

func missingColumns(header, required []string) []string {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[h] = true
	}
	var missing []string
	for _, col := range required {
		if !have[col] {
			missing = append(missing, col)
		}
	}
	return missing
}
