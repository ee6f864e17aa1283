package templates

import (
	"context"
	"intake-service/internal/app/contracts"
	"intake-service/internal/app/models"
	"intake-service/internal/pkg/constvars"
	"intake-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TemplateMongoRepository struct {
	Collection *mongo.Collection
}

func NewTemplateMongoRepository(db *mongo.Client, dbName string) contracts.TemplateRepository {
	return &TemplateMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionTemplateVariants),
	}
}

// GetVariant returns an empty variant when the template has never been saved
// for the visit type.
func (repo *TemplateMongoRepository) GetVariant(ctx context.Context, templateID string, visitType models.VisitType) (*models.TemplateVariant, error) {
	variant := new(models.TemplateVariant)
	filter := bson.M{"template_id": templateID, "visit_type": visitType}
	err := repo.Collection.FindOne(ctx, filter).Decode(variant)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return &models.TemplateVariant{
				TemplateID: templateID,
				VisitType:  visitType,
				Items:      []models.Item{},
			}, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}

	if variant.Items == nil {
		variant.Items = []models.Item{}
	}
	return variant, nil
}

func (repo *TemplateMongoRepository) PutVariant(ctx context.Context, variant *models.TemplateVariant) error {
	filter := bson.M{"template_id": variant.TemplateID, "visit_type": variant.VisitType}
	update := bson.M{"$set": bson.M{
		"items":      variant.Items,
		"settings":   variant.Settings,
		"updated_at": variant.UpdatedAt,
	}}

	_, err := repo.Collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return exceptions.ErrMongoDBUpsertDocument(err)
	}
	return nil
}
