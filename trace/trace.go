// Package trace reads memory access traces and replays them into a
// calculator.
//
// A trace is a CSV file with one access per line:
//
//	cycle,kind,energy,vault,bank,row,col,single
//
// where kind is "core" or "io", energy is in joules and single is "1" for a
// single-bank access. A header line starting with "cycle" and lines starting
// with "#" are skipped.
package trace

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrMalformedTrace is returned for lines that cannot be parsed.
var ErrMalformedTrace = errors.New("malformed trace")

// Kind tells what consumed the energy.
type Kind int

// Event kinds.
const (
	KindCore Kind = iota
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindCore:
		return "core"
	case KindIO:
		return "io"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// An Event is one access of the trace.
type Event struct {
	Cycle  uint64
	Kind   Kind
	Energy float64
	Vault  int
	Bank   int
	Row    int
	Col    int
	Single bool
}

type countingReader struct {
	r io.Reader
	n uint64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += uint64(n)

	return n, err
}

// A Reader reads events from a trace.
type Reader struct {
	counter *countingReader
	csv     *csv.Reader
}

// NewReader creates a Reader.
func NewReader(r io.Reader) *Reader {
	counter := &countingReader{r: r}

	c := csv.NewReader(counter)
	c.Comment = '#'
	c.FieldsPerRecord = 8
	c.TrimLeadingSpace = true
	c.ReuseRecord = true

	return &Reader{counter: counter, csv: c}
}

// BytesRead returns how many bytes have been consumed from the underlying
// reader. The CSV reader buffers ahead, so the value runs ahead of the last
// returned event.
func (r *Reader) BytesRead() uint64 {
	return r.counter.n
}

// Next returns the next event. It returns io.EOF at the end of the trace.
func (r *Reader) Next() (Event, error) {
	for {
		record, err := r.csv.Read()
		if err == io.EOF {
			return Event{}, io.EOF
		}

		if err != nil {
			return Event{}, fmt.Errorf("%w: %v", ErrMalformedTrace, err)
		}

		if strings.EqualFold(record[0], "cycle") {
			continue
		}

		line, _ := r.csv.FieldPos(0)

		e, err := parseRecord(record)
		if err != nil {
			return Event{}, fmt.Errorf("%w: line %d: %v",
				ErrMalformedTrace, line, err)
		}

		return e, nil
	}
}

func parseRecord(record []string) (Event, error) {
	var (
		e   Event
		err error
	)

	e.Cycle, err = strconv.ParseUint(record[0], 10, 64)
	if err != nil {
		return e, err
	}

	switch strings.ToLower(record[1]) {
	case "core":
		e.Kind = KindCore
	case "io":
		e.Kind = KindIO
	default:
		return e, fmt.Errorf("unknown kind %q", record[1])
	}

	e.Energy, err = strconv.ParseFloat(record[2], 64)
	if err != nil {
		return e, err
	}

	ints := []*int{&e.Vault, &e.Bank, &e.Row, &e.Col}
	for i, dst := range ints {
		*dst, err = strconv.Atoi(record[3+i])
		if err != nil {
			return e, err
		}
	}

	e.Single, err = strconv.ParseBool(record[7])
	if err != nil {
		return e, err
	}

	return e, nil
}

// Writer writes events in the trace format.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer and writes the header line.
func NewWriter(w io.Writer) (*Writer, error) {
	c := csv.NewWriter(w)

	err := c.Write([]string{
		"cycle", "kind", "energy", "vault", "bank", "row", "col", "single",
	})
	if err != nil {
		return nil, err
	}

	return &Writer{csv: c}, nil
}

// Write appends an event.
func (w *Writer) Write(e Event) error {
	single := "0"
	if e.Single {
		single = "1"
	}

	return w.csv.Write([]string{
		strconv.FormatUint(e.Cycle, 10),
		e.Kind.String(),
		strconv.FormatFloat(e.Energy, 'g', -1, 64),
		strconv.Itoa(e.Vault),
		strconv.Itoa(e.Bank),
		strconv.Itoa(e.Row),
		strconv.Itoa(e.Col),
		single,
	})
}

// Flush writes buffered events.
func (w *Writer) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}
