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

// FavoriteRepository implements ports.FavoriteRepository using MongoDB.
type FavoriteRepository struct {
	col *mongo.Collection
}

func NewFavoriteRepository(db *mongo.Database) ports.FavoriteRepository {
	return &FavoriteRepository{col: db.Collection(favoritesCollection)}
}

type favoriteDoc struct {
	VisitorID string    `bson:"visitor_id"`
	CoffeeID  string    `bson:"coffee_id"`
	CreatedAt time.Time `bson:"created_at"`
}

func favoriteIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "visitor_id", Value: 1}, {Key: "coffee_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "visitor_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
}

// List returns the visitor's favorites, most recent first.
func (r *FavoriteRepository) List(ctx context.Context, visitorID string) ([]domain.Favorite, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"visitor_id": visitorID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find favorites: %w", err)
	}
	defer cur.Close(ctx)

	var docs []favoriteDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode favorites: %w", err)
	}

	out := make([]domain.Favorite, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.Favorite{VisitorID: d.VisitorID, CoffeeID: d.CoffeeID, CreatedAt: d.CreatedAt})
	}
	return out, nil
}

// Add upserts the favorite so repeating it keeps the original timestamp.
func (r *FavoriteRepository) Add(ctx context.Context, fav *domain.Favorite) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"visitor_id": fav.VisitorID, "coffee_id": fav.CoffeeID}
	update := bson.M{"$setOnInsert": favoriteDoc{
		VisitorID: fav.VisitorID,
		CoffeeID:  fav.CoffeeID,
		CreatedAt: fav.CreatedAt.UTC(),
	}}
	_, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

func (r *FavoriteRepository) Remove(ctx context.Context, visitorID, coffeeID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteOne(ctx, bson.M{"visitor_id": visitorID, "coffee_id": coffeeID}); err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}
