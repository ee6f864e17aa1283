package controllers

import (
	"context"
	"errors"
	"intake-service/internal/app/config"
	"intake-service/internal/app/contracts"
	"intake-service/internal/app/models"
	"intake-service/internal/pkg/constvars"
	"intake-service/internal/pkg/dto/requests"
	"intake-service/internal/pkg/exceptions"
	"intake-service/internal/pkg/utils"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type TemplateController struct {
	Log             *zap.Logger
	TemplateUsecase contracts.TemplateUsecase
	InternalConfig  *config.InternalConfig
}

const (
	defaultRequestTimeout = 10 * time.Second
	defaultSaveTimeout    = 30 * time.Second
	defaultUploadTimeout  = 30 * time.Second
)

var (
	templateControllerInstance *TemplateController
	onceTemplateController     sync.Once
)

func NewTemplateController(logger *zap.Logger, templateUsecase contracts.TemplateUsecase, internalConfig *config.InternalConfig) *TemplateController {
	onceTemplateController.Do(func() {
		instance := &TemplateController{
			Log:             logger,
			TemplateUsecase: templateUsecase,
			InternalConfig:  internalConfig,
		}
		templateControllerInstance = instance
	})
	return templateControllerInstance
}

func (ctrl *TemplateController) OpenEditorSession(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		ctrl.Log.Error("TemplateController.OpenEditorSession requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}
	ctrl.Log.Info("TemplateController.OpenEditorSession called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	request := &requests.OpenEditorSession{
		TemplateID: chi.URLParam(r, constvars.URLParamTemplateID),
	}
	if err := utils.ValidateStruct(request); err != nil {
		ctrl.Log.Error("TemplateController.OpenEditorSession validation error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.requestTimeout())
	defer cancel()

	response, err := ctrl.TemplateUsecase.OpenEditorSession(ctx, request)
	if err != nil {
		ctrl.handleUsecaseError(w, "TemplateController.OpenEditorSession", requestID, err)
		return
	}

	ctrl.Log.Info("TemplateController.OpenEditorSession succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEditorSessionIDKey, response.SessionID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.OpenEditorSessionSuccessMessage, response)
}

func (ctrl *TemplateController) FindEditorSession(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		ctrl.Log.Error("TemplateController.FindEditorSession requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}
	ctrl.Log.Info("TemplateController.FindEditorSession called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	sessionID, ok := ctrl.sessionIDParam(w, r, "TemplateController.FindEditorSession", requestID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.requestTimeout())
	defer cancel()

	response, err := ctrl.TemplateUsecase.FindEditorSession(ctx, sessionID)
	if err != nil {
		ctrl.handleUsecaseError(w, "TemplateController.FindEditorSession", requestID, err)
		return
	}

	ctrl.Log.Info("TemplateController.FindEditorSession succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetEditorSessionSuccessMessage, response)
}

func (ctrl *TemplateController) ApplyEditorOperation(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		ctrl.Log.Error("TemplateController.ApplyEditorOperation requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}
	ctrl.Log.Info("TemplateController.ApplyEditorOperation called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	sessionID, ok := ctrl.sessionIDParam(w, r, "TemplateController.ApplyEditorOperation", requestID)
	if !ok {
		return
	}

	request := new(requests.EditorOperation)
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		ctrl.Log.Error("TemplateController.ApplyEditorOperation error decoding JSON",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}
	request.SessionID = sessionID

	if err := utils.ValidateStruct(request); err != nil {
		ctrl.Log.Error("TemplateController.ApplyEditorOperation validation error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.requestTimeout())
	defer cancel()

	response, err := ctrl.TemplateUsecase.ApplyEditorOperation(ctx, request)
	if err != nil {
		ctrl.handleUsecaseError(w, "TemplateController.ApplyEditorOperation", requestID, err)
		return
	}

	ctrl.Log.Info("TemplateController.ApplyEditorOperation succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingOperationKey, request.Op),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ApplyEditorOperationSuccess, response)
}

func (ctrl *TemplateController) SaveEditorSession(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		ctrl.Log.Error("TemplateController.SaveEditorSession requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}
	ctrl.Log.Info("TemplateController.SaveEditorSession called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	sessionID, ok := ctrl.sessionIDParam(w, r, "TemplateController.SaveEditorSession", requestID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.saveTimeout())
	defer cancel()

	response, err := ctrl.TemplateUsecase.SaveEditorSession(ctx, sessionID)
	if err != nil {
		ctrl.handleUsecaseError(w, "TemplateController.SaveEditorSession", requestID, err)
		return
	}

	ctrl.Log.Info("TemplateController.SaveEditorSession succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.SaveTemplateSuccessMessage, response)
}

func (ctrl *TemplateController) CloseEditorSession(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		ctrl.Log.Error("TemplateController.CloseEditorSession requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}
	ctrl.Log.Info("TemplateController.CloseEditorSession called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	sessionID, ok := ctrl.sessionIDParam(w, r, "TemplateController.CloseEditorSession", requestID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.requestTimeout())
	defer cancel()

	if err := ctrl.TemplateUsecase.CloseEditorSession(ctx, sessionID); err != nil {
		ctrl.handleUsecaseError(w, "TemplateController.CloseEditorSession", requestID, err)
		return
	}

	ctrl.Log.Info("TemplateController.CloseEditorSession succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.CloseEditorSessionSuccessMessage, nil)
}

func (ctrl *TemplateController) UploadItemImage(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		ctrl.Log.Error("TemplateController.UploadItemImage requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}
	ctrl.Log.Info("TemplateController.UploadItemImage called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	maxSize := ctrl.InternalConfig.Minio.ImageMaxUploadSizeInMB
	request, err := utils.BuildUploadItemImageRequest(r, maxSize)
	if err != nil {
		ctrl.Log.Error("TemplateController.UploadItemImage error parsing multipart form",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseMultipartForm(err))
		return
	}
	request.SessionID = chi.URLParam(r, constvars.URLParamSessionID)
	request.ItemID = chi.URLParam(r, constvars.URLParamItemID)

	contentType, ext, err := utils.DetectImageExtension(request.Image)
	if err != nil {
		ctrl.Log.Error("TemplateController.UploadItemImage invalid image format",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrImageValidation(err))
		return
	}
	request.ContentType = contentType
	request.ImageExtension = ext

	if err := utils.ValidateImageSize(request.Image, maxSize); err != nil {
		ctrl.Log.Error("TemplateController.UploadItemImage image too large",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrImageTooLarge(err))
		return
	}

	if err := utils.ValidateStruct(request); err != nil {
		ctrl.Log.Error("TemplateController.UploadItemImage validation error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.uploadTimeout())
	defer cancel()

	response, err := ctrl.TemplateUsecase.UploadItemImage(ctx, request)
	if err != nil {
		ctrl.handleUsecaseError(w, "TemplateController.UploadItemImage", requestID, err)
		return
	}

	ctrl.Log.Info("TemplateController.UploadItemImage succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingObjectNameKey, response.ObjectName),
	)
	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.UploadItemImageSuccessMessage, response)
}

func (ctrl *TemplateController) FindTemplateVariant(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		ctrl.Log.Error("TemplateController.FindTemplateVariant requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}
	ctrl.Log.Info("TemplateController.FindTemplateVariant called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	templateID := chi.URLParam(r, constvars.URLParamTemplateID)
	if err := utils.ValidateUrlParam(templateID); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrURLParamIDValidation(err, constvars.URLParamTemplateID))
		return
	}

	visitType := chi.URLParam(r, constvars.URLParamVisitType)
	if err := utils.ValidateVar(visitType, "visit_type"); err != nil {
		ctrl.Log.Error("TemplateController.FindTemplateVariant invalid visit type",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingVisitTypeKey, visitType),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrURLParamIDValidation(err, constvars.URLParamVisitType))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.requestTimeout())
	defer cancel()

	response, err := ctrl.TemplateUsecase.FindTemplateVariant(ctx, templateID, models.VisitType(visitType))
	if err != nil {
		ctrl.handleUsecaseError(w, "TemplateController.FindTemplateVariant", requestID, err)
		return
	}

	ctrl.Log.Info("TemplateController.FindTemplateVariant succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetTemplateVariantSuccessMessage, response)
}

func (ctrl *TemplateController) requestTimeout() time.Duration {
	return secondsOrDefault(ctrl.InternalConfig.App.RequestTimeoutInSeconds, defaultRequestTimeout)
}

func (ctrl *TemplateController) saveTimeout() time.Duration {
	return secondsOrDefault(ctrl.InternalConfig.Editor.SaveTimeoutInSeconds, defaultSaveTimeout)
}

func (ctrl *TemplateController) uploadTimeout() time.Duration {
	return secondsOrDefault(ctrl.InternalConfig.Minio.ImageUploadTimeoutInSeconds, defaultUploadTimeout)
}

// secondsOrDefault keeps an unset config field from producing an already expired context.
func secondsOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

func (ctrl *TemplateController) sessionIDParam(w http.ResponseWriter, r *http.Request, caller, requestID string) (string, bool) {
	sessionID := chi.URLParam(r, constvars.URLParamSessionID)
	if err := utils.ValidateUrlParamID(sessionID); err != nil {
		ctrl.Log.Error(caller+" invalid session id",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrURLParamIDValidation(err, constvars.URLParamSessionID))
		return "", false
	}
	return sessionID, true
}

func (ctrl *TemplateController) handleUsecaseError(w http.ResponseWriter, caller, requestID string, err error) {
	ctrl.Log.Error(caller+" error from usecase",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Error(err),
	)
	if errors.Is(err, context.DeadlineExceeded) {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerDeadlineExceeded(err))
		return
	}
	utils.BuildErrorResponse(ctrl.Log, w, err)
}
