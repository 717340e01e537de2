package repositories

import (
	"context"
	"errors"

	"welfare-committee-backend/src/models"
)

var (
	// ErrNotFound means no submission (or admin) exists for the given key.
	ErrNotFound = errors.New("record not found")
	// ErrStorageUnavailable means the backend could not be reached in time.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
	SortName   SortOrder = "name"
)

// ParseSortOrder falls back to SortNewest for unknown values.
func ParseSortOrder(raw string) SortOrder {
	switch SortOrder(raw) {
	case SortOldest, SortName:
		return SortOrder(raw)
	}
	return SortNewest
}

// ListOptions narrows and orders ListAll. The zero value lists everything,
// newest submission first.
type ListOptions struct {
	// Search matches case-insensitively against name, employeeCode,
	// designation and officialEmail.
	Search string
	Gender models.Gender
	Sort   SortOrder
	// WithChildren attaches children. Backends that embed children always
	// return them.
	WithChildren bool
}

type CountSummary struct {
	Total  int64 `json:"total"`
	Male   int64 `json:"male"`
	Female int64 `json:"female"`
}

// SubmissionStore is implemented by the document and relational backends.
// Every write is all-or-nothing per submission, children included.
type SubmissionStore interface {
	// CreateOrUpdate inserts when sub.ID is empty and fully replaces the
	// stored record otherwise. A stored submissionDate is never changed.
	CreateOrUpdate(ctx context.Context, sub *models.Submission) (string, error)
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	ListAll(ctx context.Context, opts ListOptions) ([]models.Submission, error)
	Count(ctx context.Context) (CountSummary, error)
	Name() string
	Close(ctx context.Context) error
}

// AdminStore is the credential store behind the admin login.
type AdminStore interface {
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
	// Upsert creates the admin or replaces its password hash.
	Upsert(ctx context.Context, admin *models.Admin) error
}
