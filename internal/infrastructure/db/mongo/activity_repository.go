package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kopinusa/storefront/internal/core/domain"
	"github.com/kopinusa/storefront/internal/core/ports"
)

const maxRecentActivity = 100

// ActivityRepository implements ports.ActivityRepository using MongoDB.
// Documents are append-only.
type ActivityRepository struct {
	col *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) ports.ActivityRepository {
	return &ActivityRepository{col: db.Collection(activityCollection)}
}

type activityDoc struct {
	ActorID    string    `bson:"actor_id"`
	ActorEmail string    `bson:"actor_email"`
	Entity     string    `bson:"entity"`
	Action     string    `bson:"action"`
	TargetID   string    `bson:"target_id,omitempty"`
	Timestamp  time.Time `bson:"timestamp"`
	RecordedAt time.Time `bson:"recorded_at"`
}

func activityIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "entity", Value: 1}, {Key: "target_id", Value: 1}}},
	}
}

func (r *ActivityRepository) Record(ctx context.Context, a *domain.AdminActivity) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := activityDoc{
		ActorID:    a.ActorID,
		ActorEmail: a.ActorEmail,
		Entity:     a.Entity,
		Action:     a.Action,
		TargetID:   a.TargetID,
		Timestamp:  a.Timestamp.UTC(),
		RecordedAt: time.Now().UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (r *ActivityRepository) Recent(ctx context.Context, limit int) ([]domain.AdminActivity, error) {
	if limit <= 0 || limit > maxRecentActivity {
		limit = maxRecentActivity
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find activity: %w", err)
	}
	defer cur.Close(ctx)

	var docs []activityDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode activity: %w", err)
	}

	out := make([]domain.AdminActivity, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.AdminActivity{
			ActorID:    d.ActorID,
			ActorEmail: d.ActorEmail,
			Entity:     d.Entity,
			Action:     d.Action,
			TargetID:   d.TargetID,
			Timestamp:  d.Timestamp,
		})
	}
	return out, nil
}
