package reports

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/TobiasKrause/DamageDesk/app/models"
	"github.com/TobiasKrause/DamageDesk/app/repository"
	"github.com/TobiasKrause/DamageDesk/internal/pkg/storage"
	"github.com/TobiasKrause/DamageDesk/internal/pkg/usercontext"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "reports.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.DamageReport{},
		&models.DamageImage{},
		&models.AnalysisResult{},
	))
	return db
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewServiceFromDB(newTestDB(t), storage.NewLocalStore(t.TempDir(), "/uploads"))
}

func testCreator() usercontext.UserContext {
	return usercontext.UserContext{
		UserID:     "user-42",
		Email:      "reporter@example.com",
		Name:       "Pat Reporter",
		IsLoggedIn: true,
	}
}

func incomingFile(name, mimetype, content string) IncomingFile {
	return IncomingFile{
		OriginalName: name,
		Mimetype:     mimetype,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func TestSubmitReportEmptySKU(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.SubmitReport(testCreator(), "   ", nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSubmitReportWithoutFiles(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.SubmitReport(testCreator(), "SKU-1", nil)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, result.Report.Status)
	assert.Equal(t, "SKU-1", result.Report.ItemSKU)
	assert.Equal(t, "user-42", result.Report.CreatedByID)
	assert.Equal(t, "reporter@example.com", result.Report.CreatedByEmail)
	require.NotNil(t, result.Report.CreatedByName)
	assert.Equal(t, "Pat Reporter", *result.Report.CreatedByName)
	assert.Empty(t, result.Images)
}

func TestSubmitReportPersistsImages(t *testing.T) {
	svc := newTestService(t)

	files := []IncomingFile{
		incomingFile("front.jpg", "image/jpeg", "front bytes"),
		incomingFile("back.png", "image/png", "back side bytes"),
	}

	result, err := svc.SubmitReport(testCreator(), "SKU-7", files)
	require.NoError(t, err)
	require.Len(t, result.Images, 2)

	first := result.Images[0]
	assert.Equal(t, result.Report.ID, first.ReportID)
	assert.Equal(t, "front.jpg", first.OriginalName)
	assert.Equal(t, "image/jpeg", first.Mimetype)
	assert.Equal(t, int64(len("front bytes")), first.Size, "size must reflect stored bytes")
	assert.True(t, strings.HasPrefix(first.ImageURL, "/uploads/"))
	assert.NotEqual(t, first.FileName, result.Images[1].FileName)

	// round-trip through the read side
	fetched, err := svc.GetReport(result.Report.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Images, 2)
	names := []string{fetched.Images[0].OriginalName, fetched.Images[1].OriginalName}
	assert.ElementsMatch(t, []string{"front.jpg", "back.png"}, names)
}

func TestSubmitReportBestEffortPerFile(t *testing.T) {
	svc := newTestService(t)

	files := []IncomingFile{
		incomingFile("good.jpg", "image/jpeg", "ok"),
		{
			OriginalName: "broken.jpg",
			Mimetype:     "image/jpeg",
			Open: func() (io.ReadCloser, error) {
				return nil, fmt.Errorf("transport buffer gone")
			},
		},
		incomingFile("also-good.gif", "image/gif", "fine"),
	}

	result, err := svc.SubmitReport(testCreator(), "SKU-9", files)
	require.NoError(t, err, "one bad file must not abort the submission")
	require.Len(t, result.Images, 2)
	assert.Equal(t, "good.jpg", result.Images[0].OriginalName)
	assert.Equal(t, "also-good.gif", result.Images[1].OriginalName)
}

// collidingStore forces a filename collision so the second image row insert
// hits the unique index and fails after the bytes were already stored.
type collidingStore struct {
	*storage.LocalStore
	removed []string
}

func (s *collidingStore) Save(r io.Reader, originalName string) (*storage.StoredFile, error) {
	stored, err := s.LocalStore.Save(r, originalName)
	if err != nil {
		return nil, err
	}
	stored.FileName = "images-fixed-name.jpg"
	return stored, nil
}

func (s *collidingStore) Remove(fileName string) error {
	s.removed = append(s.removed, fileName)
	return nil
}

func TestSubmitReportCleansUpAfterFailedInsert(t *testing.T) {
	db := newTestDB(t)
	store := &collidingStore{LocalStore: storage.NewLocalStore(t.TempDir(), "/uploads")}
	svc := NewService(repository.NewRepositories(db), store)

	files := []IncomingFile{
		incomingFile("one.jpg", "image/jpeg", "a"),
		incomingFile("two.jpg", "image/jpeg", "b"),
	}

	result, err := svc.SubmitReport(testCreator(), "SKU-11", files)
	require.NoError(t, err)

	assert.Len(t, result.Images, 1, "second insert collides and is skipped")
	assert.Equal(t, []string{"images-fixed-name.jpg"}, store.removed, "orphaned file must be removed")
}

func TestGetReportNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetReport(12345)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListReportsFilterAndOrder(t *testing.T) {
	svc := newTestService(t)

	first, err := svc.SubmitReport(testCreator(), "SKU-A", nil)
	require.NoError(t, err)
	second, err := svc.SubmitReport(testCreator(), "SKU-B", nil)
	require.NoError(t, err)

	_, err = svc.ReviewReport(first.Report.ID, models.StatusConfirmed, nil)
	require.NoError(t, err)

	confirmed, err := svc.ListReports(models.StatusConfirmed)
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, first.Report.ID, confirmed[0].ID)

	all, err := svc.ListReports("")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.False(t, all[0].CreatedAt.Before(all[1].CreatedAt), "newest first")
	_ = second
}

func TestListReportsInvalidFilter(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ListReports("OPEN")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReviewReportTransitions(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.SubmitReport(testCreator(), "SKU-R", nil)
	require.NoError(t, err)
	id := result.Report.ID

	conf := decimal.RequireFromString("87.50")
	reviewed, err := svc.ReviewReport(id, models.StatusConfirmed, &conf)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, reviewed.Status)
	require.NotNil(t, reviewed.FinalConfidence)
	assert.True(t, conf.Equal(*reviewed.FinalConfidence))

	// reapplying the same decision is a no-op, not an error
	again, err := svc.ReviewReport(id, models.StatusConfirmed, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, again.Status)

	// terminal states never reopen
	_, err = svc.ReviewReport(id, models.StatusPending, nil)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.ReviewReport(id, models.StatusManual, nil)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestReviewReportConcurrentDecision(t *testing.T) {
	db := newTestDB(t)
	repos := repository.NewRepositories(db)
	svc := NewService(repos, storage.NewLocalStore(t.TempDir(), "/uploads"))

	result, err := svc.SubmitReport(testCreator(), "SKU-RACE", nil)
	require.NoError(t, err)
	id := result.Report.ID

	// another reviewer lands first, after this review already read PENDING
	require.NoError(t, repos.Report.UpdateStatus(id, models.StatusConfirmed, nil))

	err = repos.Report.UpdateStatus(id, models.StatusRejected, nil)
	assert.ErrorIs(t, err, repository.ErrStatusConflict, "stale write must not overwrite a terminal decision")

	fetched, err := svc.GetReport(id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, fetched.Status, "first decision stays in place")

	// the losing side surfaces as an illegal transition to callers
	_, err = svc.ReviewReport(id, models.StatusRejected, nil)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	// reapplying the decision that won is still a no-op success
	require.NoError(t, repos.Report.UpdateStatus(id, models.StatusConfirmed, nil))
}

func TestReviewReportValidation(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.SubmitReport(testCreator(), "SKU-V", nil)
	require.NoError(t, err)

	_, err = svc.ReviewReport(result.Report.ID, "open", nil)
	assert.ErrorIs(t, err, ErrValidation)

	tooHigh := decimal.RequireFromString("100.01")
	_, err = svc.ReviewReport(result.Report.ID, models.StatusConfirmed, &tooHigh)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.ReviewReport(9999, models.StatusConfirmed, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAttachAnalysis(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.SubmitReport(testCreator(), "SKU-AN", nil)
	require.NoError(t, err)

	raw := json.RawMessage(`{"label":"dent","score":0.93}`)
	analysis, err := svc.AttachAnalysis(result.Report.ID, "DAMAGED", decimal.RequireFromString("93.00"), raw)
	require.NoError(t, err)
	assert.Equal(t, "DAMAGED", analysis.Result)

	fetched, err := svc.GetReport(result.Report.ID)
	require.NoError(t, err)
	require.Len(t, fetched.AnalysisResults, 1)
	assert.Equal(t, "DAMAGED", fetched.AnalysisResults[0].Result)
}

func TestAttachAnalysisValidation(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.SubmitReport(testCreator(), "SKU-AV", nil)
	require.NoError(t, err)

	_, err = svc.AttachAnalysis(result.Report.ID, "", decimal.NewFromInt(10), nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.AttachAnalysis(result.Report.ID, "DAMAGED", decimal.NewFromInt(101), nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.AttachAnalysis(424242, "DAMAGED", decimal.NewFromInt(10), nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

// mapCache is an in-memory Cache for tests.
type mapCache struct {
	values map[string]string
}

func (m *mapCache) Get(key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", fmt.Errorf("cache miss")
	}
	return v, nil
}

func (m *mapCache) Set(key string, value interface{}, _ time.Duration) error {
	m.values[key] = value.(string)
	return nil
}

func (m *mapCache) Delete(key string) error {
	delete(m.values, key)
	return nil
}

func TestGetReportUsesCache(t *testing.T) {
	svc := newTestService(t)
	c := &mapCache{values: map[string]string{}}
	svc.WithCache(c)

	result, err := svc.SubmitReport(testCreator(), "SKU-C", nil)
	require.NoError(t, err)

	_, err = svc.GetReport(result.Report.ID)
	require.NoError(t, err)
	assert.Len(t, c.values, 1, "read populates the cache")

	_, err = svc.ReviewReport(result.Report.ID, models.StatusRejected, nil)
	require.NoError(t, err)
	assert.Len(t, c.values, 0, "review invalidates the cache")
}
