package csvdata

import (
	"bytes"
	"encoding/csv"
	"io"

	apperrors "github.com/homescout/marketdata/errors"
	"github.com/homescout/marketdata/logger"
	"github.com/homescout/marketdata/market"
)

// Result summarizes a completed ingestion.
type Result struct {
	Dialect  Dialect         `json:"dialect"`
	Ingested int             `json:"ingested"`
	Skipped  int             `json:"skipped"`
	Markets  []*market.Stats `json:"-"`
}

// Ingest parses a CSV dataset into validated market statistics. The dialect
// is auto-detected from the header row. Individual bad rows are skipped with
// a warning; an empty file, unrecognized headers, or zero valid rows are
// fatal and reported as a structured validation failure.
func Ingest(data []byte, maxWideRows int, log *logger.Logger) (*Result, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, apperrors.Validation("CSV file is empty")
	}
	if maxWideRows <= 0 {
		maxWideRows = defaultMaxWideRows
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // ragged rows are skipped per-row, not fatal
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.Validation("CSV header could not be read").WithCause(err)
	}

	dialect := DetectDialect(header)
	if dialect == DialectUnknown {
		return nil, apperrors.Validation(
			"CSV is missing required columns: expected city/state or a regionid/regionname/statename time series")
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// encoding/csv reports quoting errors per record; treat them as
			// skippable rows like any other malformed line.
			log.Warn("skipping unreadable CSV row", map[string]interface{}{"error": err.Error()})
			continue
		}
		rows = append(rows, row)
		if dialect == DialectWide && len(rows) >= maxWideRows {
			break
		}
	}

	var (
		stats   []*market.Stats
		skipped int
	)
	switch dialect {
	case DialectWide:
		stats, skipped = parseWide(header, rows, maxWideRows, log)
	default:
		stats, skipped = parseFlat(header, rows, log)
	}

	if len(stats) == 0 {
		return nil, apperrors.Validation("CSV contained no parseable market rows").
			WithDetail("skipped", skipped)
	}

	log.Info("ingested CSV dataset", map[string]interface{}{
		"dialect": dialect.String(), "markets": len(stats), "skipped": skipped,
	})

	return &Result{
		Dialect:  dialect,
		Ingested: len(stats),
		Skipped:  skipped,
		Markets:  stats,
	}, nil
}
