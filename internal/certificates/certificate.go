// Package certificates loads the pipe-delimited course data file that backs
// the showcase.
package certificates

import (
	"errors"
	"strconv"
)

// Column names of the data file.
const (
	ColumnTitle         = "title"
	ColumnMonth         = "month"
	ColumnDescription   = "description"
	ColumnCertificateID = "certificate_id"
)

var (
	// ErrInvalidColumn is returned when a data source is not a column of the table.
	ErrInvalidColumn = errors.New("data source must be a column of the certificates table")
	// ErrNotFound is returned for a record index outside the table.
	ErrNotFound = errors.New("certificate not found")
)

// RequiredColumns must appear in the header row.
var RequiredColumns = []string{ColumnTitle, ColumnMonth, ColumnDescription, ColumnCertificateID}

// Certificate is one completed course.
type Certificate struct {
	Index         int
	Title         string
	Month         string
	Description   string
	CertificateID string
	// Fields holds every column of the row, including the named ones.
	Fields map[string]string
}

// Link is the detail page path of the certificate.
func (c Certificate) Link() string {
	return "/course/" + strconv.Itoa(c.Index) + "/"
}
