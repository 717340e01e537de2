package submission

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"go.uber.org/zap"

	"welfare-committee-backend/src/models"
	"welfare-committee-backend/src/repositories"
)

// PhotoSaver is the part of uploads.PhotoStore the service relies on.
type PhotoSaver interface {
	Validate(fh *multipart.FileHeader) error
	Save(fh *multipart.FileHeader) (string, error)
	Remove(relPath string) error
}

type Options struct {
	// StrictChildrenJSON rejects a malformed childrenDetails field instead
	// of storing the submission without children.
	StrictChildrenJSON bool
	Logger             *zap.Logger
}

// Result reports the stored id and whether a new submission was created.
type Result struct {
	ID      string
	Created bool
}

type SubmissionService struct {
	store  repositories.SubmissionStore
	photos PhotoSaver
	strict bool
	log    *zap.Logger
}

func NewSubmissionService(store repositories.SubmissionStore, photos PhotoSaver, opts Options) *SubmissionService {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &SubmissionService{
		store:  store,
		photos: photos,
		strict: opts.StrictChildrenJSON,
		log:    log.Named("submission"),
	}
}

// Submit creates a submission, or fully replaces the one with existingID.
// On update the stored photo is kept unless a new one is uploaded and the
// submissionDate never changes. All validation problems, the missing photo
// included, are returned together as one *models.ValidationError.
func (s *SubmissionService) Submit(ctx context.Context, fields map[string]string, photo *multipart.FileHeader, existingID string) (*Result, error) {
	var existing *models.Submission
	if existingID = strings.TrimSpace(existingID); existingID != "" {
		found, err := s.store.GetByID(ctx, existingID)
		if err != nil {
			return nil, err
		}
		existing = found
	}

	problems := models.NewValidationError()
	sub, err := models.NewSubmissionFromForm(fields)
	if err != nil && !collect(problems, err) {
		return nil, err
	}

	children, err := s.parseChildren(fields["childrenDetails"])
	if err != nil && !collect(problems, err) {
		return nil, err
	}

	if photo == nil {
		if existing == nil {
			problems.Add("photo is required")
		}
	} else if err := s.photos.Validate(photo); err != nil && !collect(problems, err) {
		return nil, err
	}

	if err := problems.Err(); err != nil {
		return nil, err
	}

	sub.SetChildren(children)
	if existing != nil {
		sub.ID = existing.ID
		sub.SubmissionDate = existing.SubmissionDate
		sub.PhotoPath = existing.PhotoPath
	}

	var savedPhoto string
	if photo != nil {
		if savedPhoto, err = s.photos.Save(photo); err != nil {
			return nil, err
		}
		sub.PhotoPath = savedPhoto
	}

	id, err := s.store.CreateOrUpdate(ctx, sub)
	if err != nil {
		if savedPhoto != "" {
			if rmErr := s.photos.Remove(savedPhoto); rmErr != nil {
				s.log.Warn("Failed to remove orphaned photo", zap.String("photo", savedPhoto), zap.Error(rmErr))
			}
		}
		return nil, fmt.Errorf("save submission: %w", err)
	}

	s.log.Info("Submission stored",
		zap.String("id", id),
		zap.Bool("created", existing == nil),
		zap.Int("children", len(sub.Children)),
		zap.String("backend", s.store.Name()))
	return &Result{ID: id, Created: existing == nil}, nil
}

// parseChildren applies the childrenDetails tolerance policy: unparseable
// JSON means no children unless strict mode is on. Invalid entries are
// always rejected.
func (s *SubmissionService) parseChildren(raw string) ([]models.Child, error) {
	children, err := models.ParseChildren(raw)
	if err == nil {
		return children, nil
	}
	var formatErr *models.ChildrenFormatError
	if !errors.As(err, &formatErr) {
		return nil, err
	}
	if s.strict {
		return nil, models.NewValidationError("childrenDetails must be a JSON array of children")
	}
	s.log.Warn("Ignoring malformed childrenDetails", zap.Error(err))
	return []models.Child{}, nil
}

// collect merges a validation error into problems and reports whether err
// was one.
func collect(problems *models.ValidationError, err error) bool {
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	problems.Add(verr.Problems...)
	return true
}

func (s *SubmissionService) Get(ctx context.Context, id string) (*models.Submission, error) {
	return s.store.GetByID(ctx, strings.TrimSpace(id))
}

func (s *SubmissionService) List(ctx context.Context, opts repositories.ListOptions) ([]models.Submission, error) {
	return s.store.ListAll(ctx, opts)
}

// ListForExport returns every submission, newest first, with children.
func (s *SubmissionService) ListForExport(ctx context.Context) ([]models.Submission, error) {
	return s.store.ListAll(ctx, repositories.ListOptions{Sort: repositories.SortNewest, WithChildren: true})
}

func (s *SubmissionService) Stats(ctx context.Context) (repositories.CountSummary, error) {
	return s.store.Count(ctx)
}

func (s *SubmissionService) Backend() string {
	return s.store.Name()
}
