package transfer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/ogulcanaydogan/subguard/pkg/model"
)

// CSV is the comma separated exchange format.
type CSV struct{}

func (CSV) Name() string        { return "csv" }
func (CSV) ContentType() string { return "text/csv" }

func (CSV) Decode(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var rows []rawRow
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, rawRow{line: line, fields: fields})
	}

	res, err := decodeRows(rows)
	if err != nil {
		return nil, fmt.Errorf("decode csv: %w", err)
	}
	return res, nil
}

func (CSV) Encode(w io.Writer, subs []model.Subscription) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, s := range subs {
		if err := writer.Write(toFields(s)); err != nil {
			return fmt.Errorf("write csv row %s: %w", s.ID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
