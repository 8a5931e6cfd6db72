package services

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/AnshRaj112/journal-backend/internal/ai"
)

// AIRequestsCollection stores one document per model call.
const AIRequestsCollection = "ai_requests"

// MongoAIAudit records AI enrichment calls to MongoDB without blocking the request.
type MongoAIAudit struct {
	col *mongo.Collection
	log *zap.SugaredLogger
	wg  sync.WaitGroup
}

func NewMongoAIAudit(db *mongo.Database, log *zap.SugaredLogger) *MongoAIAudit {
	return &MongoAIAudit{col: db.Collection(AIRequestsCollection), log: log}
}

// EnsureIndexes configures indexes for the ai_requests collection.
// Called on startup after Mongo has connected.
func (a *MongoAIAudit) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_user_created"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_created_ttl").SetExpireAfterSeconds(int32((90 * 24 * time.Hour).Seconds())),
		},
	}

	for _, m := range models {
		if _, err := a.col.Indexes().CreateOne(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// Record persists e in the background; write failures are only logged.
func (a *MongoAIAudit) Record(_ context.Context, e ai.Event) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := a.insert(ctx, e); err != nil {
			a.log.Warnw("ai audit write failed", "error", err, "prompt_type", e.PromptType)
		}
	}()
}

func (a *MongoAIAudit) insert(ctx context.Context, e ai.Event) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := a.col.InsertOne(ctx, e)
	return err
}

// Close waits for in-flight writes.
func (a *MongoAIAudit) Close() {
	a.wg.Wait()
}
