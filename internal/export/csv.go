package export

import (
	"context"
	"encoding/csv"
	"io"
	"iter"
)

// csvFlushInterval is how many rows are buffered before flushing downstream.
const csvFlushInterval = 1000

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSV writes RFC 4180 output through encoding/csv: fields containing the
// delimiter, quotes or line breaks are quoted and embedded quotes doubled.
type CSV struct {
	Comma   rune // Field delimiter (default ',')
	UseCRLF bool // Terminate lines with \r\n
	BOM     bool // Prefix the output with a UTF-8 byte order mark
}

// NewCSV returns a comma separated format.
func NewCSV() *CSV {
	return &CSV{Comma: ','}
}

func (c *CSV) Name() string        { return "csv" }
func (c *CSV) Extension() string   { return "csv" }
func (c *CSV) ContentType() string { return "text/csv; charset=utf-8" }

// Write implements Format. When w is an http.Flusher it is flushed every
// csvFlushInterval rows so downloads stream.
func (c *CSV) Write(ctx context.Context, w io.Writer, headers []string, rows iter.Seq2[Row, error]) (int, error) {
	if c.BOM {
		if _, err := w.Write(utf8BOM); err != nil {
			return 0, err
		}
	}

	cw := csv.NewWriter(w)
	if c.Comma != 0 {
		cw.Comma = c.Comma
	}
	cw.UseCRLF = c.UseCRLF

	if err := cw.Write(headers); err != nil {
		return 0, err
	}

	count := 0
	for row, err := range rows {
		if err != nil {
			return count, err
		}
		if err := ctx.Err(); err != nil {
			return count, err
		}

		if err := cw.Write(row); err != nil {
			return count, err
		}

		count++
		if count%csvFlushInterval == 0 {
			cw.Flush()
			if err := cw.Error(); err != nil {
				return count, err
			}
			if f, ok := w.(interface{ Flush() }); ok {
				f.Flush()
			}
		}
	}

	cw.Flush()
	return count, cw.Error()
}
