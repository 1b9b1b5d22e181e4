// Package apperrors defines the error taxonomy shared by the catalog,
// statement builder, executor and the layers above them.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCatalogUnavailable means the metadata source could not be queried.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrUnknownTable       = errors.New("unknown table")
	ErrUnknownColumn      = errors.New("unknown column")
	// ErrNoPrimaryKey means the table lacks a single-column primary key.
	ErrNoPrimaryKey = errors.New("no primary key")
	ErrNoColumns    = errors.New("no settable columns")
	ErrRowNotFound  = errors.New("row not found")
	ErrQueryFailed  = errors.New("query failed")
	ErrTimeout      = errors.New("database timeout")
	// ErrUnsatisfiedDependencies means a referenced table is empty.
	ErrUnsatisfiedDependencies = errors.New("unsatisfied dependencies")
)

// CatalogError wraps a failure to read schema metadata.
type CatalogError struct {
	Op  string
	Err error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

func (e *CatalogError) Is(target error) bool {
	return target == ErrCatalogUnavailable
}

// IdentifierError reports a table or column name missing from a fresh catalog snapshot.
type IdentifierError struct {
	Table  string
	Column string
}

func (e *IdentifierError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("unknown column %q in table %q", e.Column, e.Table)
	}
	return fmt.Sprintf("unknown table %q", e.Table)
}

func (e *IdentifierError) Unwrap() error {
	if e.Column != "" {
		return ErrUnknownColumn
	}
	return ErrUnknownTable
}

func UnknownTable(table string) error {
	return &IdentifierError{Table: table}
}

func UnknownColumn(table, column string) error {
	return &IdentifierError{Table: table, Column: column}
}

// QueryFailedError carries the underlying database error verbatim.
type QueryFailedError struct {
	SQL   string
	Cause error
}

func (e *QueryFailedError) Error() string {
	return fmt.Sprintf("query failed: %v", e.Cause)
}

func (e *QueryFailedError) Unwrap() error {
	return e.Cause
}

func (e *QueryFailedError) Is(target error) bool {
	return target == ErrQueryFailed
}

// UnsatisfiedDependenciesError lists the empty tables an insert depends on.
type UnsatisfiedDependenciesError struct {
	Table   string
	Missing []string
}

func (e *UnsatisfiedDependenciesError) Error() string {
	return fmt.Sprintf("cannot insert into %q: referenced tables have no rows: %s",
		e.Table, strings.Join(e.Missing, ", "))
}

func (e *UnsatisfiedDependenciesError) Unwrap() error {
	return ErrUnsatisfiedDependencies
}

func NoPrimaryKey(table string) error {
	return fmt.Errorf("%w: table %q", ErrNoPrimaryKey, table)
}
