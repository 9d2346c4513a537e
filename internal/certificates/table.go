package certificates

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Delimiter separates the columns of the data file.
const Delimiter = '|'

// Table is an immutable, loaded copy of the data file.
type Table struct {
	columns []string
	records []Certificate
}

// Load reads the data file at path.
func Load(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open certificates file %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			slog.Error("certificates: failed to close data file", "path", path, "error", cerr)
		}
	}()

	table, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse certificates file %s: %w", path, err)
	}
	slog.Debug("certificates: loaded data file", "path", path, "rows", table.Len())
	return table, nil
}

// Parse reads a pipe-delimited stream whose first row is the header.
func Parse(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = Delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("missing header row")
		}
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	if err := checkRequiredColumns(columns); err != nil {
		return nil, err
	}

	table := &Table{columns: columns}
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", line, err)
		}
		if isBlank(row) {
			continue
		}

		fields := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(row) {
				fields[col] = strings.TrimSpace(row[i])
			} else {
				fields[col] = ""
			}
		}
		table.records = append(table.records, Certificate{
			Index:         len(table.records),
			Title:         fields[ColumnTitle],
			Month:         fields[ColumnMonth],
			Description:   fields[ColumnDescription],
			CertificateID: fields[ColumnCertificateID],
			Fields:        fields,
		})
	}
	return table, nil
}

func checkRequiredColumns(columns []string) error {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}
	for _, req := range RequiredColumns {
		if !present[req] {
			return fmt.Errorf("missing required column %q", req)
		}
	}
	return nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// HasColumn reports whether name is a header column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.columns {
		if c == name {
			return true
		}
	}
	return false
}

// Records returns all records in file order.
func (t *Table) Records() []Certificate {
	return append([]Certificate(nil), t.records...)
}

// Record returns the record at index.
func (t *Table) Record(index int) (Certificate, error) {
	if index < 0 || index >= len(t.records) {
		return Certificate{}, fmt.Errorf("%w: index %d", ErrNotFound, index)
	}
	return t.records[index], nil
}

// FindByCertificateID returns the record with the given certificate id.
func (t *Table) FindByCertificateID(id string) (Certificate, error) {
	for _, r := range t.records {
		if r.CertificateID == id {
			return r, nil
		}
	}
	return Certificate{}, fmt.Errorf("%w: certificate id %q", ErrNotFound, id)
}

// Column returns the values of a column in file order.
func (t *Table) Column(name string) ([]string, error) {
	if !t.HasColumn(name) {
		return nil, fmt.Errorf("%w (%s provided)", ErrInvalidColumn, name)
	}
	values := make([]string, len(t.records))
	for i, r := range t.records {
		values[i] = r.Fields[name]
	}
	return values, nil
}

// TextString joins a column into one string: values separated by a space,
// newlines turned into spaces, carriage returns dropped.
func (t *Table) TextString(source string) (string, error) {
	values, err := t.Column(source)
	if err != nil {
		return "", err
	}
	return JoinText(values), nil
}

// JoinText joins values the way TextString does.
func JoinText(values []string) string {
	text := strings.Join(values, " ")
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\r", "")
	return strings.TrimSpace(text)
}
