package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/yungbote/doccontrol-backend/internal/domain/documents"
	"github.com/yungbote/doccontrol-backend/internal/platform/logger"
)

const mongoActivityCollection = "activity_log"

// mongoActivity is the stored document shape; ids are kept as strings so the
// collection stays readable from shells and BI tools.
type mongoActivity struct {
	DocumentID string         `bson:"documentId"`
	ActorID    string         `bson:"actorId"`
	Action     string         `bson:"action"`
	FromStatus string         `bson:"fromStatus,omitempty"`
	ToStatus   string         `bson:"toStatus,omitempty"`
	Details    map[string]any `bson:"details,omitempty"`
	CreatedAt  time.Time      `bson:"createdAt"`
}

type MongoActivitySink struct {
	log    *logger.Logger
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoActivitySink connects to uri and verifies the connection with a ping.
func NewMongoActivitySink(ctx context.Context, log *logger.Logger, uri, database string) (*MongoActivitySink, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, fmt.Errorf("missing MONGODB_URI")
	}
	if strings.TrimSpace(database) == "" {
		database = "doccontrol"
	}
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(20 * time.Second).
		SetServerSelectionTimeout(15 * time.Second).
		SetMaxPoolSize(50)

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	pingCtx, cancelPing := context.WithTimeout(ctx, 10*time.Second)
	defer cancelPing()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	coll := client.Database(database).Collection(mongoActivityCollection)
	if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "documentId", Value: 1}, {Key: "createdAt", Value: -1}},
	}); err != nil {
		log.Warn("mongo activity index create failed (continuing)", "error", err)
	}
	return &MongoActivitySink{
		log:    log.With("service", "MongoActivitySink"),
		client: client,
		coll:   coll,
	}, nil
}

func (s *MongoActivitySink) Record(ctx context.Context, entry ActivityEntry) error {
	_, err := s.coll.InsertOne(ctx, toMongoActivity(entry))
	return err
}

func (s *MongoActivitySink) List(ctx context.Context, documentID uuid.UUID, limit int) ([]ActivityEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := s.coll.Find(ctx, bson.M{"documentId": documentID.String()}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []mongoActivity
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make([]ActivityEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromMongoActivity(row))
	}
	return out, nil
}

func (s *MongoActivitySink) Close(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func toMongoActivity(entry ActivityEntry) mongoActivity {
	return mongoActivity{
		DocumentID: entry.DocumentID.String(),
		ActorID:    entry.ActorID.String(),
		Action:     entry.Action,
		FromStatus: string(entry.FromStatus),
		ToStatus:   string(entry.ToStatus),
		Details:    entry.Details,
		CreatedAt:  entry.At.UTC(),
	}
}

func fromMongoActivity(row mongoActivity) ActivityEntry {
	docID, _ := uuid.Parse(row.DocumentID)
	actorID, _ := uuid.Parse(row.ActorID)
	return ActivityEntry{
		DocumentID: docID,
		ActorID:    actorID,
		Action:     row.Action,
		FromStatus: documents.DocumentStatus(row.FromStatus),
		ToStatus:   documents.DocumentStatus(row.ToStatus),
		Details:    row.Details,
		At:         row.CreatedAt,
	}
}
