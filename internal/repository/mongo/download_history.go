package mongo

import (
	"context"
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mediadownloader/web/internal/domain"
)

const (
	downloadHistoryCollection = "download_history"
	maxHistoryLimit           = 500
)

type DownloadHistoryRepository struct {
	collection *mongo.Collection
}

type downloadDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Channel     string             `bson:"channel"`
	MediaID     string             `bson:"mediaId"`
	StartNumber int                `bson:"startNumber"`
	Count       int                `bson:"count"`
	RequestedAt int64              `bson:"requestedAt"`
}

func NewDownloadHistoryRepository(client *mongo.Client, dbName string) *DownloadHistoryRepository {
	return &DownloadHistoryRepository{collection: client.Database(dbName).Collection(downloadHistoryCollection)}
}

func Connect(ctx context.Context, uri string, extra ...*options.ClientOptions) (*mongo.Client, error) {
	opts := append([]*options.ClientOptions{options.Client().ApplyURI(uri)}, extra...)
	client, err := mongo.Connect(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (r *DownloadHistoryRepository) EnsureIndexes(ctx context.Context) error {
	if r == nil || r.collection == nil {
		return nil
	}
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "requestedAt", Value: -1}}},
		{Keys: bson.D{{Key: "channel", Value: 1}, {Key: "mediaId", Value: 1}}},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, models)
	return err
}

func (r *DownloadHistoryRepository) Record(ctx context.Context, record domain.DownloadRecord) error {
	doc := toDownloadDoc(record)
	if doc.RequestedAt == 0 {
		doc.RequestedAt = time.Now().UTC().UnixMilli()
	}
	_, err := r.collection.InsertOne(ctx, doc)
	return err
}

// ListRecent returns records newest first.
func (r *DownloadHistoryRepository) ListRecent(ctx context.Context, limit int) ([]domain.DownloadRecord, error) {
	if limit <= 0 || limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "requestedAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []downloadDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return lo.Map(docs, func(doc downloadDoc, _ int) domain.DownloadRecord {
		return fromDownloadDoc(doc)
	}), nil
}

func toDownloadDoc(record domain.DownloadRecord) downloadDoc {
	doc := downloadDoc{
		Channel:     record.Channel,
		MediaID:     record.MediaID,
		StartNumber: record.StartNumber,
		Count:       record.Count,
	}
	if id, err := primitive.ObjectIDFromHex(record.ID); err == nil {
		doc.ID = id
	}
	if !record.RequestedAt.IsZero() {
		doc.RequestedAt = record.RequestedAt.UTC().UnixMilli()
	}
	return doc
}

func fromDownloadDoc(doc downloadDoc) domain.DownloadRecord {
	record := domain.DownloadRecord{
		Channel:     doc.Channel,
		MediaID:     doc.MediaID,
		StartNumber: doc.StartNumber,
		Count:       doc.Count,
	}
	if !doc.ID.IsZero() {
		record.ID = doc.ID.Hex()
	}
	if doc.RequestedAt > 0 {
		record.RequestedAt = time.UnixMilli(doc.RequestedAt).UTC()
	}
	return record
}
