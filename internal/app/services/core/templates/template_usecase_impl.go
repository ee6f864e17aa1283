package templates

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"intake-service/internal/app/config"
	"intake-service/internal/app/contracts"
	"intake-service/internal/app/models"
	"intake-service/internal/pkg/constvars"
	"intake-service/internal/pkg/dto/requests"
	"intake-service/internal/pkg/dto/responses"
	"intake-service/internal/pkg/exceptions"
	"intake-service/internal/pkg/utils"
	"time"

	"go.uber.org/zap"
)

type templateUsecase struct {
	TemplateRepository contracts.TemplateRepository
	LockerService      contracts.LockerService
	Storage            contracts.Storage
	EventPublisher     contracts.EventPublisher
	IDGenerator        contracts.IDGenerator
	SaveDriver         *SaveDriver
	Sessions           *EditorRegistry
	InternalConfig     *config.InternalConfig
	Log                *zap.Logger
}

func NewTemplateUsecase(
	templateRepository contracts.TemplateRepository,
	lockerService contracts.LockerService,
	storage contracts.Storage,
	eventPublisher contracts.EventPublisher,
	idGenerator contracts.IDGenerator,
	sessions *EditorRegistry,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.TemplateUsecase {
	return &templateUsecase{
		TemplateRepository: templateRepository,
		LockerService:      lockerService,
		Storage:            storage,
		EventPublisher:     eventPublisher,
		IDGenerator:        idGenerator,
		SaveDriver:         NewSaveDriver(templateRepository, logger),
		Sessions:           sessions,
		InternalConfig:     internalConfig,
		Log:                logger,
	}
}

func (uc *templateUsecase) OpenEditorSession(ctx context.Context, request *requests.OpenEditorSession) (*responses.EditorSession, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("templateUsecase.OpenEditorSession called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingTemplateIDKey, request.TemplateID),
	)

	firstVisit, err := uc.TemplateRepository.GetVariant(ctx, request.TemplateID, models.VisitTypeFirstVisit)
	if err != nil {
		uc.Log.Error("templateUsecase.OpenEditorSession error fetching first visit variant",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	repeatVisit, err := uc.TemplateRepository.GetVariant(ctx, request.TemplateID, models.VisitTypeRepeatVisit)
	if err != nil {
		uc.Log.Error("templateUsecase.OpenEditorSession error fetching repeat visit variant",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	merged := MergeVariants(firstVisit.Items, repeatVisit.Items)
	visible, manifest := ExtractHidden(merged)

	sessionID := uc.IDGenerator.NewID()
	session := NewEditorSession(EditorSessionConfig{
		ID:         sessionID,
		TemplateID: request.TemplateID,
		Items:      visible,
		Manifest:   manifest,
		Settings: map[models.VisitType]map[string]models.ItemSettings{
			models.VisitTypeFirstVisit:  firstVisit.Settings,
			models.VisitTypeRepeatVisit: repeatVisit.Settings,
		},
		IDGenerator: uc.IDGenerator,
		Save:        uc.saveFunc(sessionID),
		Debounce:    time.Duration(uc.InternalConfig.Editor.SaveDebounceInMilliseconds) * time.Millisecond,
	})

	if replaced := uc.Sessions.Put(session); replaced != nil {
		replaced.Close()
		uc.Log.Info("templateUsecase.OpenEditorSession closed previous session of template",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEditorSessionIDKey, replaced.ID),
		)
	}

	uc.Log.Info("templateUsecase.OpenEditorSession succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEditorSessionIDKey, sessionID),
		zap.Int(constvars.LoggingFirstVisitCountKey, len(firstVisit.Items)),
		zap.Int(constvars.LoggingRepeatVisitCountKey, len(repeatVisit.Items)),
		zap.Int(constvars.LoggingHiddenCountKey, len(manifest)),
	)
	return buildEditorSessionResponse(session, ""), nil
}

func (uc *templateUsecase) FindEditorSession(ctx context.Context, sessionID string) (*responses.EditorSession, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("templateUsecase.FindEditorSession called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEditorSessionIDKey, sessionID),
	)

	session, ok := uc.Sessions.Get(sessionID)
	if !ok {
		return nil, exceptions.ErrEditorSessionNotFound(nil, sessionID)
	}

	return buildEditorSessionResponse(session, ""), nil
}

func (uc *templateUsecase) ApplyEditorOperation(ctx context.Context, request *requests.EditorOperation) (*responses.EditorSession, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("templateUsecase.ApplyEditorOperation called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEditorSessionIDKey, request.SessionID),
		zap.String(constvars.LoggingOperationKey, request.Op),
		zap.String(constvars.LoggingItemIDKey, request.ItemID),
	)

	session, ok := uc.Sessions.Get(request.SessionID)
	if !ok {
		return nil, exceptions.ErrEditorSessionNotFound(nil, request.SessionID)
	}

	createdItemID, err := applyOperation(session, request)
	if err != nil {
		uc.Log.Error("templateUsecase.ApplyEditorOperation error applying operation",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingOperationKey, request.Op),
			zap.Error(err),
		)
		return nil, err
	}

	uc.Log.Info("templateUsecase.ApplyEditorOperation succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingOperationKey, request.Op),
	)
	return buildEditorSessionResponse(session, createdItemID), nil
}

func (uc *templateUsecase) SaveEditorSession(ctx context.Context, sessionID string) (*responses.EditorSession, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("templateUsecase.SaveEditorSession called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEditorSessionIDKey, sessionID),
	)

	session, ok := uc.Sessions.Get(sessionID)
	if !ok {
		return nil, exceptions.ErrEditorSessionNotFound(nil, sessionID)
	}

	err := session.Flush(ctx)
	if err != nil {
		uc.Log.Error("templateUsecase.SaveEditorSession error saving session",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEditorSessionIDKey, sessionID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.Log.Info("templateUsecase.SaveEditorSession succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEditorSessionIDKey, sessionID),
	)
	return buildEditorSessionResponse(session, ""), nil
}

func (uc *templateUsecase) CloseEditorSession(ctx context.Context, sessionID string) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("templateUsecase.CloseEditorSession called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEditorSessionIDKey, sessionID),
	)

	session, ok := uc.Sessions.Remove(sessionID)
	if !ok {
		return exceptions.ErrEditorSessionNotFound(nil, sessionID)
	}
	session.Close()

	uc.Log.Info("templateUsecase.CloseEditorSession succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEditorSessionIDKey, sessionID),
	)
	return nil
}

func (uc *templateUsecase) UploadItemImage(ctx context.Context, request *requests.UploadItemImage) (*responses.ItemImage, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("templateUsecase.UploadItemImage called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEditorSessionIDKey, request.SessionID),
		zap.String(constvars.LoggingItemIDKey, request.ItemID),
	)

	session, ok := uc.Sessions.Get(request.SessionID)
	if !ok {
		return nil, exceptions.ErrEditorSessionNotFound(nil, request.SessionID)
	}
	if !session.HasItem(request.ItemID) {
		return nil, exceptions.ErrItemNotFound(nil, request.ItemID)
	}

	bucketName := uc.InternalConfig.Minio.BucketName
	objectName := utils.GenerateFileName(constvars.MinioObjectPrefixAnnotationImage, request.ItemID, request.ImageExtension)
	objectName, err := uc.Storage.UploadFile(ctx, bytes.NewReader(request.Image), int64(len(request.Image)), request.ContentType, bucketName, objectName)
	if err != nil {
		uc.Log.Error("templateUsecase.UploadItemImage error uploading image",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingBucketNameKey, bucketName),
			zap.Error(err),
		)
		return nil, err
	}

	err = session.AttachImage(request.ItemID, objectName)
	if err != nil {
		uc.Log.Error("templateUsecase.UploadItemImage error attaching image",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingObjectNameKey, objectName),
			zap.Error(err),
		)
		return nil, err
	}

	expiry := time.Duration(uc.InternalConfig.Minio.PreSignedUrlObjectExpiryTimeInHours) * time.Hour
	url, err := uc.Storage.GetObjectUrlWithExpiryTime(ctx, bucketName, objectName, expiry)
	if err != nil {
		uc.Log.Error("templateUsecase.UploadItemImage error generating presigned url",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingObjectNameKey, objectName),
			zap.Error(err),
		)
		return nil, err
	}

	uc.Log.Info("templateUsecase.UploadItemImage succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingObjectNameKey, objectName),
	)
	return &responses.ItemImage{
		ItemID:     request.ItemID,
		ObjectName: objectName,
		URL:        url,
		ExpiresAt:  time.Now().Add(expiry),
	}, nil
}

func (uc *templateUsecase) FindTemplateVariant(ctx context.Context, templateID string, visitType models.VisitType) (*models.TemplateVariant, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("templateUsecase.FindTemplateVariant called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingTemplateIDKey, templateID),
		zap.String(constvars.LoggingVisitTypeKey, string(visitType)),
	)

	variant, err := uc.TemplateRepository.GetVariant(ctx, templateID, visitType)
	if err != nil {
		uc.Log.Error("templateUsecase.FindTemplateVariant error fetching variant",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.Log.Info("templateUsecase.FindTemplateVariant succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingResponseCountKey, len(variant.Items)),
	)
	return variant, nil
}

func (uc *templateUsecase) saveFunc(sessionID string) SaveFunc {
	return func(ctx context.Context, input SaveInput) error {
		return uc.persist(ctx, sessionID, input)
	}
}

// persist runs one save under the template's save lock and announces it.
// Autosaves arrive without a request id, so one is generated for the logs.
func (uc *templateUsecase) persist(ctx context.Context, sessionID string, input SaveInput) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if requestID == "" {
		requestID = utils.GenerateRequestID()
		ctx = context.WithValue(ctx, constvars.CONTEXT_REQUEST_ID_KEY, requestID)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(uc.InternalConfig.Editor.SaveTimeoutInSeconds)*time.Second)
	defer cancel()

	lockKey := fmt.Sprintf(constvars.RedisKeyTemplateSaveLockFormat, input.TemplateID)
	lockExpiry := time.Duration(uc.InternalConfig.Editor.SaveLockExpiryInSeconds) * time.Second
	acquired, lockValue, err := uc.LockerService.TryLock(ctx, lockKey, lockExpiry)
	if err != nil {
		return err
	}
	if !acquired {
		return exceptions.ErrTemplateSaveLockNotAcquired(ErrSaveLockBusy, input.TemplateID)
	}
	defer func() {
		if err := uc.LockerService.Unlock(context.WithoutCancel(ctx), lockKey, lockValue); err != nil {
			uc.Log.Error("templateUsecase.persist error releasing save lock",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingRedisKey, lockKey),
				zap.Error(err),
			)
		}
	}()

	output, err := uc.SaveDriver.Save(ctx, input)
	if err != nil {
		return err
	}

	event := &models.TemplateSavedEvent{
		EventType:        constvars.EventTypeTemplateSaved,
		TemplateID:       input.TemplateID,
		EditorSessionID:  sessionID,
		FirstVisitCount:  models.CountItems(output.FirstVisit.Items),
		RepeatVisitCount: models.CountItems(output.RepeatVisit.Items),
		SavedAt:          output.FirstVisit.UpdatedAt,
	}
	if err := uc.EventPublisher.PublishTemplateSaved(ctx, event); err != nil {
		uc.Log.Warn("templateUsecase.persist error publishing template saved event",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingTemplateIDKey, input.TemplateID),
			zap.Error(err),
		)
	}
	return nil
}

func applyOperation(session *EditorSession, request *requests.EditorOperation) (string, error) {
	switch request.Op {
	case constvars.EditorOpAddItem:
		return session.AddItem(models.ItemKind(request.Kind), request.Label)
	case constvars.EditorOpAddFollowup:
		return session.AddFollowup(request.ItemID, request.OptionKey, models.ItemKind(request.Kind), request.Label)
	case constvars.EditorOpDeleteItem:
		return "", session.DeleteItem(request.ItemID)
	case constvars.EditorOpMoveItem:
		return "", session.MoveItem(intValue(request.From), intValue(request.To))
	case constvars.EditorOpMoveFollowup:
		return "", session.MoveFollowup(request.ItemID, request.OptionKey, intValue(request.From), intValue(request.To))
	case constvars.EditorOpAddOption:
		return "", session.AddOption(request.ItemID, request.Option)
	case constvars.EditorOpRenameOption:
		return "", session.RenameOption(request.ItemID, request.Option, request.NewOption)
	case constvars.EditorOpDeleteOption:
		return "", session.DeleteOption(request.ItemID, request.Option)
	case constvars.EditorOpMoveOption:
		return "", session.MoveOption(request.ItemID, intValue(request.From), intValue(request.To))
	case constvars.EditorOpChangeKind:
		return "", session.ChangeKind(request.ItemID, models.ItemKind(request.Kind))
	case constvars.EditorOpSetApplicability:
		if request.Applicability == nil {
			return "", exceptions.ErrInputValidation(errors.New("applicability is required"))
		}
		return "", session.SetApplicability(request.ItemID, models.Applicability{
			FirstVisit:  request.Applicability.FirstVisit,
			RepeatVisit: request.Applicability.RepeatVisit,
		})
	case constvars.EditorOpUpdateItem:
		if request.Fields == nil {
			return "", exceptions.ErrInputValidation(errors.New("fields are required"))
		}
		return "", session.UpdateItem(request.ItemID, buildItemPatch(request.Fields))
	case constvars.EditorOpAttachImage:
		return "", session.AttachImage(request.ItemID, request.ImageHandle)
	default:
		return "", exceptions.ErrUnknownOperation(nil, request.Op)
	}
}

func buildItemPatch(fields *requests.ItemFieldsPatch) ItemPatch {
	patch := ItemPatch{
		Label:         fields.Label,
		Description:   fields.Description,
		Required:      fields.Required,
		AllowFreeText: fields.AllowFreeText,
	}
	if fields.Range != nil {
		patch.Range = &models.NumericRange{
			Min:  fields.Range.Min,
			Max:  fields.Range.Max,
			Step: fields.Range.Step,
		}
	}
	if fields.GenderRestriction != nil {
		patch.GenderRestriction = &models.GenderRestriction{
			Enabled: fields.GenderRestriction.Enabled,
			Gender:  fields.GenderRestriction.Gender,
		}
	}
	if fields.AgeRestriction != nil {
		patch.AgeRestriction = &models.AgeRestriction{
			Enabled: fields.AgeRestriction.Enabled,
			MinAge:  fields.AgeRestriction.MinAge,
			MaxAge:  fields.AgeRestriction.MaxAge,
		}
	}
	return patch
}

func buildEditorSessionResponse(session *EditorSession, createdItemID string) *responses.EditorSession {
	items, state := session.Snapshot()
	response := &responses.EditorSession{
		SessionID:       session.ID,
		TemplateID:      session.TemplateID,
		Items:           items,
		Dirty:           state.Dirty,
		Saving:          state.Saving,
		HiddenItemCount: state.HiddenItemCount,
		CreatedItemID:   createdItemID,
	}
	if state.LastSaveError != nil {
		response.LastSaveError = clientMessage(state.LastSaveError)
	}
	if !state.LastSavedAt.IsZero() {
		savedAt := state.LastSavedAt
		response.LastSavedAt = &savedAt
	}
	return response
}

func clientMessage(err error) string {
	var customErr *exceptions.CustomError
	if errors.As(err, &customErr) {
		return customErr.ClientMessage
	}
	return constvars.ErrClientSomethingWrongWithApplication
}

func intValue(value *int) int {
	if value == nil {
		return -1
	}
	return *value
}
