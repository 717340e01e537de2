package repositories

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"welfare-committee-backend/src/models"
)

type submissionRow struct {
	ID                      uint `gorm:"primaryKey;autoIncrement"`
	models.SubmissionFields `gorm:"embedded"`
	Children                []childRow `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE"`
}

func (submissionRow) TableName() string { return "submissions" }

type childRow struct {
	ID           uint `gorm:"primaryKey;autoIncrement"`
	SubmissionID uint `gorm:"index;not null"`
	Position     int  `gorm:"not null;default:0"`
	models.Child `gorm:"embedded"`
}

func (childRow) TableName() string { return "children" }

// SQLSubmissionStore keeps a submission as one row in "submissions" plus one
// row per child in "children".
type SQLSubmissionStore struct {
	db   *gorm.DB
	name string
}

// NewSQLSubmissionStore wraps an open GORM handle; name is reported by Name
// ("sqlite" or "postgres").
func NewSQLSubmissionStore(db *gorm.DB, name string) *SQLSubmissionStore {
	return &SQLSubmissionStore{db: db, name: name}
}

// Migrate creates the tables and indexes when missing. Safe to run on every start.
func (s *SQLSubmissionStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&submissionRow{}, &childRow{}, &adminRow{}); err != nil {
		return sqlErr("migrate", err)
	}
	return nil
}

func (s *SQLSubmissionStore) Name() string { return s.name }

func (s *SQLSubmissionStore) CreateOrUpdate(ctx context.Context, sub *models.Submission) (string, error) {
	row := submissionRow{SubmissionFields: sub.SubmissionFields}
	now := time.Now().UTC()
	row.UpdatedAt = now

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if sub.ID == "" {
			if row.SubmissionDate.IsZero() {
				row.SubmissionDate = now
			}
			if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
				return err
			}
		} else {
			id, ok := parseRowID(sub.ID)
			if !ok {
				return ErrNotFound
			}
			var existing submissionRow
			if err := tx.Select("id", "submission_date").First(&existing, id).Error; err != nil {
				return err
			}
			row.ID = existing.ID
			row.SubmissionDate = existing.SubmissionDate
			if err := tx.Omit(clause.Associations).Save(&row).Error; err != nil {
				return err
			}
			// children are replaced wholesale, never diffed
			if err := tx.Where("submission_id = ?", row.ID).Delete(&childRow{}).Error; err != nil {
				return err
			}
		}

		if rows := toChildRows(row.ID, sub.Children); len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", sqlErr("save submission", err)
	}

	id := strconv.FormatUint(uint64(row.ID), 10)
	sub.ID = id
	sub.SubmissionDate = row.SubmissionDate
	sub.UpdatedAt = row.UpdatedAt
	return id, nil
}

func (s *SQLSubmissionStore) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	rowID, ok := parseRowID(id)
	if !ok {
		return nil, ErrNotFound
	}

	var row submissionRow
	err := s.db.WithContext(ctx).
		Preload("Children", orderChildren).
		First(&row, rowID).Error
	if err != nil {
		return nil, sqlErr("get submission", err)
	}
	sub := row.toModel()
	if sub.Children == nil {
		sub.Children = []models.Child{}
	}
	return &sub, nil
}

func (s *SQLSubmissionStore) ListAll(ctx context.Context, opts ListOptions) ([]models.Submission, error) {
	q := s.db.WithContext(ctx).Model(&submissionRow{})

	if term := strings.TrimSpace(opts.Search); term != "" {
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		q = q.Where(
			`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(employee_code) LIKE ? ESCAPE '\' OR LOWER(designation) LIKE ? ESCAPE '\' OR LOWER(official_email) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern, pattern,
		)
	}
	if opts.Gender != "" {
		q = q.Where("gender = ?", opts.Gender)
	}

	switch opts.Sort {
	case SortOldest:
		q = q.Order("submission_date ASC").Order("id ASC")
	case SortName:
		q = q.Order("LOWER(name) ASC").Order("id ASC")
	default:
		q = q.Order("submission_date DESC").Order("id DESC")
	}

	if opts.WithChildren {
		q = q.Preload("Children", orderChildren)
	}

	var rows []submissionRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, sqlErr("list submissions", err)
	}

	subs := make([]models.Submission, 0, len(rows))
	for _, row := range rows {
		sub := row.toModel()
		if opts.WithChildren && sub.Children == nil {
			sub.Children = []models.Child{}
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

func (s *SQLSubmissionStore) Count(ctx context.Context) (CountSummary, error) {
	var summary CountSummary
	db := s.db.WithContext(ctx).Model(&submissionRow{})
	if err := db.Count(&summary.Total).Error; err != nil {
		return summary, sqlErr("count submissions", err)
	}

	var byGender []struct {
		Gender models.Gender
		N      int64
	}
	err := s.db.WithContext(ctx).Model(&submissionRow{}).
		Select("gender, COUNT(*) AS n").
		Group("gender").
		Scan(&byGender).Error
	if err != nil {
		return summary, sqlErr("count submissions", err)
	}
	for _, g := range byGender {
		switch g.Gender {
		case models.Male:
			summary.Male = g.N
		case models.Female:
			summary.Female = g.N
		}
	}
	return summary, nil
}

func (s *SQLSubmissionStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func orderChildren(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC").Order("id ASC")
}

func (r submissionRow) toModel() models.Submission {
	sub := models.Submission{
		ID:               strconv.FormatUint(uint64(r.ID), 10),
		SubmissionFields: r.SubmissionFields,
	}
	if r.Children != nil {
		sub.Children = make([]models.Child, 0, len(r.Children))
		for _, c := range r.Children {
			sub.Children = append(sub.Children, c.Child)
		}
	}
	return sub
}

func toChildRows(submissionID uint, children []models.Child) []childRow {
	rows := make([]childRow, 0, len(children))
	for i, c := range children {
		rows = append(rows, childRow{SubmissionID: submissionID, Position: i, Child: c})
	}
	return rows
}

// parseRowID rejects anything that is not a positive decimal id: such an id
// cannot exist in this backend.
func parseRowID(id string) (uint, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
	if err != nil || n == 0 || n > uint64(^uint(0)) {
		return 0, false
	}
	return uint(n), true
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// sqlErr maps driver errors onto the store's error kinds.
func sqlErr(op string, err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) || errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %v", op, ErrStorageUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
