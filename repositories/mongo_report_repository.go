package repositories

import (
	"context"
	"errors"
	"rescueradar/database"
	"rescueradar/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoReportRepository struct {
	collection *mongo.Collection
}

func NewMongoReportRepository(db *mongo.Database) *MongoReportRepository {
	return &MongoReportRepository{
		collection: db.Collection(database.ReportsCollection),
	}
}

func (rr *MongoReportRepository) Create(ctx context.Context, report *models.Report) error {
	_, err := rr.collection.InsertOne(ctx, report)
	return err
}

func (rr *MongoReportRepository) GetByID(ctx context.Context, id string) (*models.Report, error) {
	var report models.Report
	err := rr.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&report)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}

	return &report, nil
}

func (rr *MongoReportRepository) ListRecent(ctx context.Context, limit int) ([]models.Report, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(clampLimit(limit)))

	cursor, err := rr.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reports := []models.Report{}
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}

	return reports, nil
}

func (rr *MongoReportRepository) Ping(ctx context.Context) error {
	return rr.collection.Database().Client().Ping(ctx, readpref.Primary())
}
