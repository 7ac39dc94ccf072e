package repositories

import (
	"context"

	"github.com/openboard/notifier/internal/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// DeliveryLogRepository records per-device push outcomes (MongoDB). Writes are
// best-effort: the pipeline logs failures here but never fails an event on them.
type DeliveryLogRepository interface {
	RecordDeliveries(ctx context.Context, records []models.DeliveryRecord) error
}

type mongoDeliveryLogRepository struct {
	collection *mongo.Collection
}

// NewMongoDeliveryLogRepository creates a DeliveryLogRepository backed by the
// push_deliveries collection.
func NewMongoDeliveryLogRepository(db *mongo.Database) DeliveryLogRepository {
	return &mongoDeliveryLogRepository{collection: db.Collection("push_deliveries")}
}

func (r *mongoDeliveryLogRepository) RecordDeliveries(ctx context.Context, records []models.DeliveryRecord) error {
	if len(records) == 0 {
		return nil
	}
	docs := make([]interface{}, len(records))
	for i, record := range records {
		docs[i] = record
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}
