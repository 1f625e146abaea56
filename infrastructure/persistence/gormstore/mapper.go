package gormstore

import (
	"storefront/domain/shared"

	"gorm.io/gorm"
)

// Mapper converts between an aggregate T and its row type P and declares the
// fields a Specification may reference.
type Mapper[T shared.AggregateRoot, P any] interface {
	// Columns maps domain field names to columns of P's table.
	Columns() map[string]string

	// Relations maps include names to GORM associations of P.
	Relations() map[string]string

	ToRecord(aggregate T) *P
	ToDomain(record *P) (T, error)

	// SetVersion overwrites the version column of record.
	SetVersion(record *P, version int)
}

// ChildWriter is implemented by mappers whose aggregates own child rows that
// are not written through the root record.
type ChildWriter[T shared.AggregateRoot] interface {
	InsertChildren(tx *gorm.DB, aggregate T) error
	SyncChildren(tx *gorm.DB, aggregate T) error
	DeleteChildren(tx *gorm.DB, aggregate T) error
}
