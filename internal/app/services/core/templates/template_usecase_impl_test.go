package templates

import (
	"context"
	"errors"
	"intake-service/internal/app/config"
	"intake-service/internal/app/models"
	"intake-service/internal/pkg/constvars"
	"intake-service/internal/pkg/dto/requests"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockLockerService struct {
	mock.Mock
}

func (m *MockLockerService) TryLock(ctx context.Context, key string, expiration time.Duration) (bool, string, error) {
	args := m.Called(ctx, key, expiration)
	return args.Bool(0), args.String(1), args.Error(2)
}

func (m *MockLockerService) Unlock(ctx context.Context, key, lockValue string) error {
	args := m.Called(ctx, key, lockValue)
	return args.Error(0)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) UploadFile(ctx context.Context, file io.Reader, size int64, contentType, bucketName, objectName string) (string, error) {
	args := m.Called(ctx, file, size, contentType, bucketName, objectName)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) GetObjectUrlWithExpiryTime(ctx context.Context, bucketName, objectName string, expiryTime time.Duration) (string, error) {
	args := m.Called(ctx, bucketName, objectName, expiryTime)
	return args.String(0), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishTemplateSaved(ctx context.Context, event *models.TemplateSavedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type usecaseFixture struct {
	repo      *MockTemplateRepository
	locker    *MockLockerService
	storage   *MockStorage
	publisher *MockEventPublisher
	usecase   *templateUsecase
}

func newUsecaseFixture() *usecaseFixture {
	fixture := &usecaseFixture{
		repo:      new(MockTemplateRepository),
		locker:    new(MockLockerService),
		storage:   new(MockStorage),
		publisher: new(MockEventPublisher),
	}
	internalConfig := &config.InternalConfig{
		Minio: config.AppMinio{
			BucketName:                          "intake",
			PreSignedUrlObjectExpiryTimeInHours: 1,
		},
		Editor: config.AppEditor{
			SaveDebounceInMilliseconds: 3600000,
			SaveTimeoutInSeconds:       5,
			SaveLockExpiryInSeconds:    10,
		},
	}
	fixture.usecase = NewTemplateUsecase(
		fixture.repo,
		fixture.locker,
		fixture.storage,
		fixture.publisher,
		&sequenceIDGenerator{},
		NewEditorRegistry(),
		internalConfig,
		zap.NewNop(),
	).(*templateUsecase)
	return fixture
}

func (f *usecaseFixture) stubVariants(templateID string, firstVisit, repeatVisit []models.Item) {
	f.repo.On("GetVariant", mock.Anything, templateID, models.VisitTypeFirstVisit).
		Return(&models.TemplateVariant{TemplateID: templateID, VisitType: models.VisitTypeFirstVisit, Items: firstVisit}, nil)
	f.repo.On("GetVariant", mock.Anything, templateID, models.VisitTypeRepeatVisit).
		Return(&models.TemplateVariant{TemplateID: templateID, VisitType: models.VisitTypeRepeatVisit, Items: repeatVisit}, nil)
}

func requestContext() context.Context {
	return context.WithValue(context.Background(), constvars.CONTEXT_REQUEST_ID_KEY, "req-1")
}

func intPtr(value int) *int {
	return &value
}

func TestTemplateUsecase_OpenEditorSession(t *testing.T) {
	t.Run("Merges Variants And Hides Personal Info", func(t *testing.T) {
		fixture := newUsecaseFixture()
		fixture.stubVariants("tpl-1",
			[]models.Item{personalInfo("pi"), textItem("q1")},
			[]models.Item{textItem("q2")},
		)

		response, err := fixture.usecase.OpenEditorSession(requestContext(), &requests.OpenEditorSession{TemplateID: "tpl-1"})

		require.NoError(t, err)
		assert.Equal(t, "tpl-1", response.TemplateID)
		assert.Equal(t, []string{"q1", "q2"}, ids(response.Items))
		assert.Equal(t, 1, response.HiddenItemCount)
		assert.False(t, response.Dirty)
	})

	t.Run("Reopening Closes The Previous Session", func(t *testing.T) {
		fixture := newUsecaseFixture()
		fixture.stubVariants("tpl-1", []models.Item{textItem("q1")}, nil)

		first, err := fixture.usecase.OpenEditorSession(requestContext(), &requests.OpenEditorSession{TemplateID: "tpl-1"})
		require.NoError(t, err)
		second, err := fixture.usecase.OpenEditorSession(requestContext(), &requests.OpenEditorSession{TemplateID: "tpl-1"})
		require.NoError(t, err)

		_, err = fixture.usecase.FindEditorSession(requestContext(), first.SessionID)
		assert.Equal(t, http.StatusNotFound, customStatus(t, err))
		_, err = fixture.usecase.FindEditorSession(requestContext(), second.SessionID)
		assert.NoError(t, err)
	})

	t.Run("Load Failure", func(t *testing.T) {
		fixture := newUsecaseFixture()
		loadErr := errors.New("mongo down")
		fixture.repo.On("GetVariant", mock.Anything, "tpl-1", models.VisitTypeFirstVisit).Return(nil, loadErr)

		_, err := fixture.usecase.OpenEditorSession(requestContext(), &requests.OpenEditorSession{TemplateID: "tpl-1"})
		assert.ErrorIs(t, err, loadErr)
		assert.Equal(t, 0, fixture.usecase.Sessions.Len())
	})
}

func TestTemplateUsecase_ApplyEditorOperation(t *testing.T) {
	fixture := newUsecaseFixture()
	fixture.stubVariants("tpl-1", []models.Item{{ID: "q1", Kind: models.ItemKindMultiChoice, Options: []string{"A"}}}, nil)
	opened, err := fixture.usecase.OpenEditorSession(requestContext(), &requests.OpenEditorSession{TemplateID: "tpl-1"})
	require.NoError(t, err)

	apply := func(request *requests.EditorOperation) (string, error) {
		request.SessionID = opened.SessionID
		response, err := fixture.usecase.ApplyEditorOperation(requestContext(), request)
		if err != nil {
			return "", err
		}
		return response.CreatedItemID, nil
	}

	followupID, err := apply(&requests.EditorOperation{Op: constvars.EditorOpAddFollowup, ItemID: "q1", OptionKey: "A", Kind: "text", Label: "why"})
	require.NoError(t, err)
	assert.NotEmpty(t, followupID)

	_, err = apply(&requests.EditorOperation{Op: constvars.EditorOpRenameOption, ItemID: "q1", Option: "A", NewOption: "Always"})
	require.NoError(t, err)

	itemID, err := apply(&requests.EditorOperation{Op: constvars.EditorOpAddItem, Kind: "numeric_range", Label: "Pain"})
	require.NoError(t, err)

	_, err = apply(&requests.EditorOperation{Op: constvars.EditorOpMoveItem, From: intPtr(1), To: intPtr(0)})
	require.NoError(t, err)

	_, err = apply(&requests.EditorOperation{
		Op:     constvars.EditorOpUpdateItem,
		ItemID: itemID,
		Fields: &requests.ItemFieldsPatch{Range: &requests.NumericRange{Min: 0, Max: 5, Step: 1}},
	})
	require.NoError(t, err)

	_, err = apply(&requests.EditorOperation{
		Op:            constvars.EditorOpSetApplicability,
		ItemID:        itemID,
		Applicability: &requests.Applicability{FirstVisit: true},
	})
	require.NoError(t, err)

	session, err := fixture.usecase.FindEditorSession(requestContext(), opened.SessionID)
	require.NoError(t, err)
	assert.True(t, session.Dirty)
	assert.Equal(t, []string{itemID, "q1"}, ids(session.Items))
	assert.Equal(t, float64(5), session.Items[0].Range.Max)
	assert.Equal(t, firstVisitOnly, session.Items[0].EffectiveApplicability())
	assert.Equal(t, []string{followupID}, ids(session.Items[1].Followups["Always"]))

	_, err = apply(&requests.EditorOperation{Op: "explode"})
	assert.Equal(t, http.StatusBadRequest, customStatus(t, err))

	_, err = fixture.usecase.ApplyEditorOperation(requestContext(), &requests.EditorOperation{Op: constvars.EditorOpDeleteItem, ItemID: "q1", SessionID: "unknown"})
	assert.Equal(t, http.StatusNotFound, customStatus(t, err))
}

func TestTemplateUsecase_SaveEditorSession(t *testing.T) {
	t.Run("Saves Under Lock And Publishes", func(t *testing.T) {
		fixture := newUsecaseFixture()
		fixture.stubVariants("tpl-1", []models.Item{personalInfo("pi"), textItem("q1")}, []models.Item{textItem("q2")})
		opened, err := fixture.usecase.OpenEditorSession(requestContext(), &requests.OpenEditorSession{TemplateID: "tpl-1"})
		require.NoError(t, err)

		fixture.locker.On("TryLock", mock.Anything, "template_save_lock:tpl-1", 10*time.Second).Return(true, "lock-1", nil)
		fixture.locker.On("Unlock", mock.Anything, "template_save_lock:tpl-1", "lock-1").Return(nil)
		fixture.repo.On("PutVariant", mock.Anything, isVariant(models.VisitTypeFirstVisit)).Return(nil)
		fixture.repo.On("PutVariant", mock.Anything, isVariant(models.VisitTypeRepeatVisit)).Return(nil)
		fixture.publisher.On("PublishTemplateSaved", mock.Anything, mock.MatchedBy(func(event *models.TemplateSavedEvent) bool {
			return event.TemplateID == "tpl-1" && event.EditorSessionID == opened.SessionID &&
				event.FirstVisitCount == 2 && event.RepeatVisitCount == 1
		})).Return(errors.New("broker unavailable"))

		response, err := fixture.usecase.SaveEditorSession(requestContext(), opened.SessionID)

		require.NoError(t, err, "a failed announcement does not fail the save")
		assert.False(t, response.Dirty)
		assert.NotNil(t, response.LastSavedAt)
		fixture.locker.AssertExpectations(t)
		fixture.repo.AssertNumberOfCalls(t, "PutVariant", 2)
		fixture.publisher.AssertExpectations(t)
	})

	t.Run("Busy Lock Is A Conflict", func(t *testing.T) {
		fixture := newUsecaseFixture()
		fixture.stubVariants("tpl-1", []models.Item{textItem("q1")}, nil)
		opened, err := fixture.usecase.OpenEditorSession(requestContext(), &requests.OpenEditorSession{TemplateID: "tpl-1"})
		require.NoError(t, err)

		fixture.locker.On("TryLock", mock.Anything, mock.Anything, mock.Anything).Return(false, "", nil)

		_, err = fixture.usecase.SaveEditorSession(requestContext(), opened.SessionID)

		assert.Equal(t, http.StatusConflict, customStatus(t, err))
		assert.ErrorIs(t, err, ErrSaveLockBusy)
		fixture.repo.AssertNotCalled(t, "PutVariant", mock.Anything, mock.Anything)
		fixture.locker.AssertNotCalled(t, "Unlock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Validation Failure Releases The Lock", func(t *testing.T) {
		fixture := newUsecaseFixture()
		fixture.stubVariants("tpl-1", []models.Item{{ID: "img", Label: "Mark it", Kind: models.ItemKindImageAnnotation}}, nil)
		opened, err := fixture.usecase.OpenEditorSession(requestContext(), &requests.OpenEditorSession{TemplateID: "tpl-1"})
		require.NoError(t, err)

		fixture.locker.On("TryLock", mock.Anything, mock.Anything, mock.Anything).Return(true, "lock-1", nil)
		fixture.locker.On("Unlock", mock.Anything, mock.Anything, "lock-1").Return(nil)

		_, err = fixture.usecase.SaveEditorSession(requestContext(), opened.SessionID)

		assert.Equal(t, http.StatusUnprocessableEntity, customStatus(t, err))
		fixture.repo.AssertNotCalled(t, "PutVariant", mock.Anything, mock.Anything)
		fixture.locker.AssertExpectations(t)

		session, err := fixture.usecase.FindEditorSession(requestContext(), opened.SessionID)
		require.NoError(t, err)
		assert.Contains(t, session.LastSaveError, "Mark it")
	})
}

func TestTemplateUsecase_CloseEditorSession(t *testing.T) {
	fixture := newUsecaseFixture()
	fixture.stubVariants("tpl-1", nil, nil)
	opened, err := fixture.usecase.OpenEditorSession(requestContext(), &requests.OpenEditorSession{TemplateID: "tpl-1"})
	require.NoError(t, err)

	require.NoError(t, fixture.usecase.CloseEditorSession(requestContext(), opened.SessionID))

	err = fixture.usecase.CloseEditorSession(requestContext(), opened.SessionID)
	assert.Equal(t, http.StatusNotFound, customStatus(t, err))
	assert.Equal(t, 0, fixture.usecase.Sessions.Len())
}

func TestTemplateUsecase_UploadItemImage(t *testing.T) {
	t.Run("Uploads And Attaches", func(t *testing.T) {
		fixture := newUsecaseFixture()
		fixture.stubVariants("tpl-1", []models.Item{{ID: "img", Kind: models.ItemKindImageAnnotation}}, nil)
		opened, err := fixture.usecase.OpenEditorSession(requestContext(), &requests.OpenEditorSession{TemplateID: "tpl-1"})
		require.NoError(t, err)

		fixture.storage.On("UploadFile", mock.Anything, mock.Anything, int64(3), constvars.MIMEImagePNG, "intake", mock.AnythingOfType("string")).
			Return("annotation/img.png", nil)
		fixture.storage.On("GetObjectUrlWithExpiryTime", mock.Anything, "intake", "annotation/img.png", time.Hour).
			Return("https://minio.local/intake/annotation/img.png", nil)

		response, err := fixture.usecase.UploadItemImage(requestContext(), &requests.UploadItemImage{
			SessionID:      opened.SessionID,
			ItemID:         "img",
			Image:          []byte{1, 2, 3},
			ImageExtension: ".png",
			ContentType:    constvars.MIMEImagePNG,
		})

		require.NoError(t, err)
		assert.Equal(t, "annotation/img.png", response.ObjectName)
		assert.Equal(t, "https://minio.local/intake/annotation/img.png", response.URL)

		session, err := fixture.usecase.FindEditorSession(requestContext(), opened.SessionID)
		require.NoError(t, err)
		assert.Equal(t, "annotation/img.png", session.Items[0].AttachedImage)
		assert.True(t, session.Dirty)
	})

	t.Run("Unknown Item Is Not Uploaded", func(t *testing.T) {
		fixture := newUsecaseFixture()
		fixture.stubVariants("tpl-1", nil, nil)
		opened, err := fixture.usecase.OpenEditorSession(requestContext(), &requests.OpenEditorSession{TemplateID: "tpl-1"})
		require.NoError(t, err)

		_, err = fixture.usecase.UploadItemImage(requestContext(), &requests.UploadItemImage{SessionID: opened.SessionID, ItemID: "nope"})

		assert.Equal(t, http.StatusNotFound, customStatus(t, err))
		fixture.storage.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestTemplateUsecase_FindTemplateVariant(t *testing.T) {
	fixture := newUsecaseFixture()
	fixture.stubVariants("tpl-1", []models.Item{textItem("q1")}, nil)

	variant, err := fixture.usecase.FindTemplateVariant(requestContext(), "tpl-1", models.VisitTypeFirstVisit)

	require.NoError(t, err)
	assert.Equal(t, []string{"q1"}, ids(variant.Items))
}
