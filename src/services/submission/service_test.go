package submission

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"welfare-committee-backend/src/models"
	"welfare-committee-backend/src/repositories"
	"welfare-committee-backend/src/services/uploads"
	"welfare-committee-backend/src/testutil"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateOrUpdate(ctx context.Context, sub *models.Submission) (string, error) {
	args := m.Called(ctx, sub)
	return args.String(0), args.Error(1)
}

func (m *mockStore) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	args := m.Called(ctx, id)
	sub, _ := args.Get(0).(*models.Submission)
	return sub, args.Error(1)
}

func (m *mockStore) ListAll(ctx context.Context, opts repositories.ListOptions) ([]models.Submission, error) {
	args := m.Called(ctx, opts)
	subs, _ := args.Get(0).([]models.Submission)
	return subs, args.Error(1)
}

func (m *mockStore) Count(ctx context.Context) (repositories.CountSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).(repositories.CountSummary), args.Error(1)
}

func (m *mockStore) Name() string                    { return "mock" }
func (m *mockStore) Close(ctx context.Context) error { return nil }

type fixture struct {
	svc    *SubmissionService
	store  *repositories.SQLSubmissionStore
	photos *uploads.PhotoStore
}

func newFixture(t *testing.T, opts Options) fixture {
	t.Helper()
	store := repositories.NewSQLSubmissionStore(testutil.NewSQLiteDB(t), "sqlite")
	require.NoError(t, store.Migrate(context.Background()))
	photos, err := uploads.NewPhotoStore(filepath.Join(t.TempDir(), "uploads"), 5*1024*1024)
	require.NoError(t, err)
	opts.Logger = zap.NewNop()
	return fixture{svc: NewSubmissionService(store, photos, opts), store: store, photos: photos}
}

func (f fixture) photoCount(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(f.photos.Dir())
	require.NoError(t, err)
	return len(entries)
}

func problemsOf(t *testing.T, err error) []string {
	t.Helper()
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr), "expected a validation error, got %v", err)
	return verr.Problems
}

func TestSubmitCreate(t *testing.T) {
	suite := testutil.NewTestSuiteResult("Submission Service Tests")
	defer suite.PrintSummary()
	ctx := context.Background()

	t.Run("AshaRao", func(t *testing.T) {
		defer suite.Track(t, "Create Asha Rao")()
		f := newFixture(t, Options{})

		res, err := f.svc.Submit(ctx, testutil.ValidSubmissionFields(), testutil.NewFileHeader(t, "me.jpg", testutil.PNGBytes(t)), "")
		require.NoError(t, err)
		assert.True(t, res.Created)

		got, err := f.svc.Get(ctx, res.ID)
		require.NoError(t, err)
		assert.Equal(t, "Asha Rao", got.Name)
		assert.Equal(t, models.No, got.ChildrenMedicalFacility)
		assert.Equal(t, models.No, got.PwdCategory)
		assert.Equal(t, models.No, got.MotherBeneficiary)
		assert.Equal(t, models.No, got.FatherBeneficiary)
		assert.Equal(t, 1, got.NumberOfChildren)
		assert.Equal(t, []models.Child{{Name: "Kid1", DOB: "2015-01-01", Gender: models.Male}}, got.Children)
		assert.Regexp(t, `^uploads/photo-\d+-[0-9a-f]{8}\.jpg$`, got.PhotoPath)
		assert.Equal(t, 1, f.photoCount(t))
	})

	t.Run("MissingPhotoReportedWithFieldProblems", func(t *testing.T) {
		defer suite.Track(t, "Missing Photo Reported With Field Problems")()
		f := newFixture(t, Options{})
		fields := testutil.ValidSubmissionFields()
		delete(fields, "name")
		delete(fields, "mobile")

		_, err := f.svc.Submit(ctx, fields, nil, "")
		problems := problemsOf(t, err)
		assert.ElementsMatch(t, []string{"name is required", "mobile is required", "photo is required"}, problems)

		subs, err := f.svc.List(ctx, repositories.ListOptions{})
		require.NoError(t, err)
		assert.Empty(t, subs)
	})

	t.Run("InvalidPhotoNotWritten", func(t *testing.T) {
		defer suite.Track(t, "Invalid Photo Not Written")()
		f := newFixture(t, Options{})

		_, err := f.svc.Submit(ctx, testutil.ValidSubmissionFields(), testutil.NewFileHeader(t, "cv.pdf", []byte("%PDF-1.4")), "")
		assert.Contains(t, problemsOf(t, err), "photo must be a JPG, PNG, GIF or WEBP image")
		assert.Equal(t, 0, f.photoCount(t))
	})

	t.Run("ChildCountFollowsArray", func(t *testing.T) {
		defer suite.Track(t, "Child Count Follows Array")()
		f := newFixture(t, Options{})
		fields := testutil.ValidSubmissionFields()
		fields["numberOfChildren"] = "5"

		res, err := f.svc.Submit(ctx, fields, testutil.NewFileHeader(t, "me.png", testutil.PNGBytes(t)), "")
		require.NoError(t, err)
		got, err := f.svc.Get(ctx, res.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.NumberOfChildren)
	})
}

func TestSubmitChildrenTolerance(t *testing.T) {
	ctx := context.Background()
	fields := testutil.ValidSubmissionFields()
	fields["childrenDetails"] = `[{"name":"Kid1",`

	t.Run("TolerantStoresNoChildren", func(t *testing.T) {
		f := newFixture(t, Options{})
		res, err := f.svc.Submit(ctx, fields, testutil.NewFileHeader(t, "me.png", testutil.PNGBytes(t)), "")
		require.NoError(t, err)

		got, err := f.svc.Get(ctx, res.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Children)
		assert.Equal(t, 0, got.NumberOfChildren)
	})

	t.Run("StrictRejects", func(t *testing.T) {
		f := newFixture(t, Options{StrictChildrenJSON: true})
		_, err := f.svc.Submit(ctx, fields, testutil.NewFileHeader(t, "me.png", testutil.PNGBytes(t)), "")
		assert.Equal(t, []string{"childrenDetails must be a JSON array of children"}, problemsOf(t, err))
		assert.Equal(t, 0, f.photoCount(t))
	})

	t.Run("InvalidEntryAlwaysRejected", func(t *testing.T) {
		f := newFixture(t, Options{})
		bad := testutil.ValidSubmissionFields()
		bad["childrenDetails"] = `[{"name":"","dob":"2015-01-01"}]`
		_, err := f.svc.Submit(ctx, bad, testutil.NewFileHeader(t, "me.png", testutil.PNGBytes(t)), "")
		assert.Contains(t, problemsOf(t, err), "children[0].name is required")
	})
}

func TestSubmitUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("KeepsPhotoWhenNoneUploaded", func(t *testing.T) {
		f := newFixture(t, Options{})
		created, err := f.svc.Submit(ctx, testutil.ValidSubmissionFields(), testutil.NewFileHeader(t, "me.png", testutil.PNGBytes(t)), "")
		require.NoError(t, err)
		before, err := f.svc.Get(ctx, created.ID)
		require.NoError(t, err)

		fields := testutil.ValidSubmissionFields()
		fields["designation"] = "Senior Clerk"
		fields["childrenDetails"] = `[]`
		fields["numberOfChildren"] = "0"
		res, err := f.svc.Submit(ctx, fields, nil, created.ID)
		require.NoError(t, err)
		assert.False(t, res.Created)
		assert.Equal(t, created.ID, res.ID)

		after, err := f.svc.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, before.PhotoPath, after.PhotoPath)
		assert.Equal(t, "Senior Clerk", after.Designation)
		assert.Empty(t, after.Children)
		assert.True(t, before.SubmissionDate.Equal(after.SubmissionDate))
	})

	t.Run("ReplacesPhotoWhenUploaded", func(t *testing.T) {
		f := newFixture(t, Options{})
		created, err := f.svc.Submit(ctx, testutil.ValidSubmissionFields(), testutil.NewFileHeader(t, "me.png", testutil.PNGBytes(t)), "")
		require.NoError(t, err)
		before, err := f.svc.Get(ctx, created.ID)
		require.NoError(t, err)

		_, err = f.svc.Submit(ctx, testutil.ValidSubmissionFields(), testutil.NewFileHeader(t, "new.gif", testutil.PNGBytes(t)), created.ID)
		require.NoError(t, err)
		after, err := f.svc.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.NotEqual(t, before.PhotoPath, after.PhotoPath)
		assert.Equal(t, 2, f.photoCount(t))
	})

	t.Run("UnknownID", func(t *testing.T) {
		f := newFixture(t, Options{})
		_, err := f.svc.Submit(ctx, testutil.ValidSubmissionFields(), nil, "does-not-exist")
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		subs, err := f.svc.List(ctx, repositories.ListOptions{})
		require.NoError(t, err)
		assert.Empty(t, subs)
	})
}

func TestSubmitRemovesPhotoWhenStoreFails(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	photos, err := uploads.NewPhotoStore(t.TempDir(), 5*1024*1024)
	require.NoError(t, err)
	svc := NewSubmissionService(store, photos, Options{})

	store.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*models.Submission")).
		Return("", repositories.ErrStorageUnavailable).Once()

	_, err = svc.Submit(ctx, testutil.ValidSubmissionFields(), testutil.NewFileHeader(t, "me.png", testutil.PNGBytes(t)), "")
	assert.ErrorIs(t, err, repositories.ErrStorageUnavailable)
	store.AssertExpectations(t)

	entries, err := os.ReadDir(photos.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSubmitLookupFailure(t *testing.T) {
	store := new(mockStore)
	svc := NewSubmissionService(store, nil, Options{})
	store.On("GetByID", mock.Anything, "abc").Return(nil, repositories.ErrStorageUnavailable).Once()

	_, err := svc.Submit(context.Background(), testutil.ValidSubmissionFields(), nil, " abc ")
	assert.ErrorIs(t, err, repositories.ErrStorageUnavailable)
	store.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
}

func TestReadThrough(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	svc := NewSubmissionService(store, nil, Options{})

	opts := repositories.ListOptions{Search: "asha"}
	store.On("ListAll", mock.Anything, opts).Return([]models.Submission{{ID: "1"}}, nil).Once()
	store.On("ListAll", mock.Anything, repositories.ListOptions{Sort: repositories.SortNewest, WithChildren: true}).
		Return([]models.Submission{{ID: "1"}, {ID: "2"}}, nil).Once()
	store.On("Count", mock.Anything).Return(repositories.CountSummary{Total: 2, Female: 2}, nil).Once()

	subs, err := svc.List(ctx, opts)
	require.NoError(t, err)
	assert.Len(t, subs, 1)

	all, err := svc.ListForExport(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, "mock", svc.Backend())
	store.AssertExpectations(t)
}
