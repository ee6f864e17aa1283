package templates

import (
	"context"
	"errors"
	"fmt"
	"intake-service/internal/app/contracts"
	"intake-service/internal/app/models"
	"intake-service/internal/pkg/constvars"
	"intake-service/internal/pkg/exceptions"
	"time"

	"go.uber.org/zap"
)

// ErrSaveLockBusy is returned when another process holds the save lock of the template.
var ErrSaveLockBusy = errors.New("template save lock is held by another save")

// PartialSaveError reports that the first variant was written and the second was not.
// Nothing is rolled back; saving the same tree again is safe.
type PartialSaveError struct {
	TemplateID      string
	SavedVisitType  models.VisitType
	FailedVisitType models.VisitType
	Err             error
}

func (e *PartialSaveError) Error() string {
	return fmt.Sprintf("template %s: %s variant saved but %s variant failed: %v",
		e.TemplateID, e.SavedVisitType, e.FailedVisitType, e.Err)
}

func (e *PartialSaveError) Unwrap() error {
	return e.Err
}

type SaveInput struct {
	TemplateID string
	Items      []models.Item
	Manifest   HiddenManifest
	Settings   map[models.VisitType]map[string]models.ItemSettings
}

type SaveOutput struct {
	FirstVisit  *models.TemplateVariant
	RepeatVisit *models.TemplateVariant
}

// SaveDriver turns an editable tree back into the two persisted variants.
type SaveDriver struct {
	Repository contracts.TemplateRepository
	Log        *zap.Logger
	now        func() time.Time
}

func NewSaveDriver(repository contracts.TemplateRepository, logger *zap.Logger) *SaveDriver {
	return &SaveDriver{
		Repository: repository,
		Log:        logger,
		now:        time.Now,
	}
}

// Save restores the hidden items, validates, flattens and writes the first
// visit variant followed by the repeat visit variant. A validation failure
// writes nothing.
func (d *SaveDriver) Save(ctx context.Context, input SaveInput) (*SaveOutput, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	d.Log.Info("SaveDriver.Save called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingTemplateIDKey, input.TemplateID),
		zap.Int(constvars.LoggingHiddenCountKey, len(input.Manifest)),
	)

	tree := RestoreHidden(input.Items, input.Manifest)

	err := ValidateTree(tree)
	if err != nil {
		var invalid *ValidationError
		if errors.As(err, &invalid) {
			d.Log.Info("SaveDriver.Save validation failed",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingTemplateIDKey, input.TemplateID),
				zap.String(constvars.LoggingItemIDKey, invalid.ItemID),
			)
			return nil, exceptions.ErrTemplateValidation(err, invalid.ItemID, invalid.Label)
		}
		return nil, err
	}

	firstVisitItems, repeatVisitItems := FlattenTree(tree)
	savedAt := d.now().UTC()
	output := &SaveOutput{
		FirstVisit: &models.TemplateVariant{
			TemplateID: input.TemplateID,
			VisitType:  models.VisitTypeFirstVisit,
			Items:      firstVisitItems,
			Settings:   input.Settings[models.VisitTypeFirstVisit],
			UpdatedAt:  savedAt,
		},
		RepeatVisit: &models.TemplateVariant{
			TemplateID: input.TemplateID,
			VisitType:  models.VisitTypeRepeatVisit,
			Items:      repeatVisitItems,
			Settings:   input.Settings[models.VisitTypeRepeatVisit],
			UpdatedAt:  savedAt,
		},
	}

	err = d.Repository.PutVariant(ctx, output.FirstVisit)
	if err != nil {
		d.Log.Error("SaveDriver.Save error writing first visit variant",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingTemplateIDKey, input.TemplateID),
			zap.Error(err),
		)
		return nil, err
	}

	err = d.Repository.PutVariant(ctx, output.RepeatVisit)
	if err != nil {
		d.Log.Error("SaveDriver.Save error writing repeat visit variant after first visit was written",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingTemplateIDKey, input.TemplateID),
			zap.Error(err),
		)
		return nil, exceptions.ErrTemplatePartiallySaved(&PartialSaveError{
			TemplateID:      input.TemplateID,
			SavedVisitType:  models.VisitTypeFirstVisit,
			FailedVisitType: models.VisitTypeRepeatVisit,
			Err:             err,
		})
	}

	d.Log.Info("SaveDriver.Save succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingTemplateIDKey, input.TemplateID),
		zap.Int(constvars.LoggingFirstVisitCountKey, len(firstVisitItems)),
		zap.Int(constvars.LoggingRepeatVisitCountKey, len(repeatVisitItems)),
	)
	return output, nil
}
