// Package lookup loads the static car-id to car-model lookup tables. A table
// is parsed once per game change from a tab-separated file and never mutated
// afterwards; a reload replaces it wholesale.
package lookup

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrLookupUnavailable is returned when the lookup file is missing or unreadable.
	ErrLookupUnavailable = errors.New("lookup file unavailable")
	// ErrMalformedLookup is returned when a lookup file row cannot be parsed.
	ErrMalformedLookup = errors.New("malformed lookup file")
)

// Table is an immutable mapping from car id to car model display name.
type Table struct {
	names map[int]string
}

// NewTable copies names into a new Table.
func NewTable(names map[int]string) *Table {
	t := &Table{names: make(map[int]string, len(names))}
	for id, name := range names {
		t.names[id] = name
	}
	return t
}

// Empty returns a Table without entries.
func Empty() *Table {
	return &Table{names: map[int]string{}}
}

// Lookup returns the model name for id.
func (t *Table) Lookup(id int) (string, bool) {
	if t == nil {
		return "", false
	}
	name, ok := t.names[id]
	return name, ok
}

// Len returns the number of cars in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}

// IDs returns every car id in ascending order.
func (t *Table) IDs() []int {
	if t == nil {
		return nil
	}
	ids := make([]int, 0, len(t.names))
	for id := range t.names {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Parse reads a tab-separated lookup table. Lines starting with '#' are
// comments and blank lines are skipped. Field 0 is the integer car id and
// field 1 the model name; fields may be quoted and extra fields are ignored.
// Both fields are trimmed and a leading UTF-8 byte-order mark is ignored.
// The first bad row fails the whole parse. A repeated id keeps the last row.
func Parse(r io.Reader) (*Table, error) {
	reader := csv.NewReader(skipBOM(r))
	reader.Comma = '\t'
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	names := make(map[int]string)
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedLookup, err)
		}
		line, _ := reader.FieldPos(0)
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: line %d: expected id and name, got %d field(s)", ErrMalformedLookup, line, len(fields))
		}

		id, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: car id %q is not an integer", ErrMalformedLookup, line, fields[0])
		}
		names[id] = strings.TrimSpace(fields[1])
	}

	return &Table{names: names}, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// skipBOM drops a UTF-8 byte-order mark at the start of r.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// Load opens and parses the lookup file at path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLookupUnavailable, path, err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return t, nil
}
