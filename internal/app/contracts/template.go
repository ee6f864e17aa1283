package contracts

import (
	"context"
	"intake-service/internal/app/models"
	"intake-service/internal/pkg/dto/requests"
	"intake-service/internal/pkg/dto/responses"
)

type TemplateUsecase interface {
	OpenEditorSession(ctx context.Context, request *requests.OpenEditorSession) (*responses.EditorSession, error)
	FindEditorSession(ctx context.Context, sessionID string) (*responses.EditorSession, error)
	ApplyEditorOperation(ctx context.Context, request *requests.EditorOperation) (*responses.EditorSession, error)
	SaveEditorSession(ctx context.Context, sessionID string) (*responses.EditorSession, error)
	CloseEditorSession(ctx context.Context, sessionID string) error
	UploadItemImage(ctx context.Context, request *requests.UploadItemImage) (*responses.ItemImage, error)
	FindTemplateVariant(ctx context.Context, templateID string, visitType models.VisitType) (*models.TemplateVariant, error)
}

// TemplateRepository persists the two variant lists of a template.
type TemplateRepository interface {
	GetVariant(ctx context.Context, templateID string, visitType models.VisitType) (*models.TemplateVariant, error)
	PutVariant(ctx context.Context, variant *models.TemplateVariant) error
}

type IDGenerator interface {
	NewID() string
}

type EventPublisher interface {
	PublishTemplateSaved(ctx context.Context, event *models.TemplateSavedEvent) error
}
