package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"automail_server/core/domain"
)

const collectionSnapshots = "analytics_snapshots"

// SnapshotAdapter implements out.SnapshotRepository using MongoDB.
// Documents expire via TTL index after the configured retention.
type SnapshotAdapter struct {
	collection *mongo.Collection
	retention  time.Duration
}

func NewSnapshotAdapter(db *mongo.Database, retention time.Duration) *SnapshotAdapter {
	return &SnapshotAdapter{
		collection: db.Collection(collectionSnapshots),
		retention:  retention,
	}
}

// EnsureIndexes creates necessary indexes for the collection.
func (a *SnapshotAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0), // TTL index
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// snapshotDocument represents the MongoDB document structure.
type snapshotDocument struct {
	ID        string           `bson:"_id"`
	Processed int              `bson:"processed"`
	Analytics domain.Analytics `bson:"analytics"`
	CreatedAt time.Time        `bson:"created_at"`
	ExpiresAt time.Time        `bson:"expires_at"`
}

// SaveSnapshot stores one analytics snapshot.
func (a *SnapshotAdapter) SaveSnapshot(ctx context.Context, snapshot *domain.AnalyticsSnapshot) error {
	doc := snapshotDocument{
		ID:        snapshot.ID,
		Processed: snapshot.Processed,
		Analytics: snapshot.Analytics,
		CreatedAt: snapshot.CreatedAt,
		ExpiresAt: snapshot.CreatedAt.Add(a.retention),
	}
	if _, err := a.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the most recent snapshot, or nil when none
// exist.
func (a *SnapshotAdapter) LatestSnapshot(ctx context.Context) (*domain.AnalyticsSnapshot, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var doc snapshotDocument
	err := a.collection.FindOne(ctx, bson.D{}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load latest snapshot: %w", err)
	}

	return &domain.AnalyticsSnapshot{
		ID:        doc.ID,
		Processed: doc.Processed,
		Analytics: doc.Analytics,
		CreatedAt: doc.CreatedAt,
	}, nil
}
