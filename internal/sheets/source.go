// Package sheets reads rate tables from spreadsheet-like collections and
// locates tables and columns whose human-maintained names drift over time.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Source is a collection of named tables addressed by A1 ranges.
type Source interface {
	// ListTables returns the real titles of every table in a collection.
	ListTables(ctx context.Context, collectionID string) ([]string, error)
	// ReadRange returns the cells of table!cellRange as strings, row major.
	ReadRange(ctx context.Context, collectionID, table, cellRange string) ([][]string, error)
	// AppendRow appends one row of values after the last row of table.
	AppendRow(ctx context.Context, collectionID, table string, values []string) error
}

var (
	// ErrTableNotFound matches every *TableNotFoundError.
	ErrTableNotFound = errors.New("table not found")
	// ErrCredentials matches every *CredentialsError.
	ErrCredentials = errors.New("data source credentials missing")
)

// TableNotFoundError names the hint that resolved to no table.
type TableNotFoundError struct {
	CollectionID string
	Hint         string
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("table %q not found in collection %s", e.Hint, e.CollectionID)
}

func (e *TableNotFoundError) Is(target error) bool { return target == ErrTableNotFound }

// CredentialsError lists the configuration items that are missing or unusable.
type CredentialsError struct {
	Missing []string
	Err     error
}

func (e *CredentialsError) Error() string {
	msg := "data source credentials: missing " + strings.Join(e.Missing, ", ")
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CredentialsError) Is(target error) bool { return target == ErrCredentials }

func (e *CredentialsError) Unwrap() error { return e.Err }
