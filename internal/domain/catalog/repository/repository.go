// Package repository provides data access for the course catalog.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Course is a catalog entry
type Course struct {
	ID        uuid.UUID           `db:"id"`
	Subject   string              `db:"subject"`
	Number    string              `db:"number"`
	Title     *string             `db:"title"`
	Units     decimal.NullDecimal `db:"units"`
	CreatedAt time.Time           `db:"created_at"`
}

// Code returns the canonical "SUBJ NUM" form
func (c Course) Code() string {
	return c.Subject + " " + c.Number
}

// CatalogRepository reads and seeds the course catalog
type CatalogRepository interface {
	// FindBySubjectAndNumber matches case-insensitively and returns at most
	// limit rows.
	FindBySubjectAndNumber(ctx context.Context, subject, number string, limit int) ([]Course, error)
	ListBySubject(ctx context.Context, subject string) ([]Course, error)
	Create(ctx context.Context, c *Course) error
}
