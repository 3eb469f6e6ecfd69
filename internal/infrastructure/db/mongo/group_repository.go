package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/proxy-auth/internal/core/domain"
)

// GroupRepository implements ports.GroupStore on the groups collection.
type GroupRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewGroupRepository(db *mongo.Database) *GroupRepository {
	return &GroupRepository{col: db.Collection(collectionGroups), now: time.Now}
}

// EnsureGroup upserts by name. Only the first writer's permissions are
// stored; later callers get the existing group back unchanged.
func (r *GroupRepository) EnsureGroup(ctx context.Context, name string, permissions []string) (*domain.Group, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if permissions == nil {
		permissions = []string{}
	}
	filter := bson.M{"name": name}
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":         primitive.NewObjectID().Hex(),
			"permissions": permissions,
			"created_at":  r.now().UTC().Unix(),
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc groupDocument
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		return doc.toDomain(), nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("ensure group: %w", err)
	}

	// A concurrent upsert won the unique name index.
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, fmt.Errorf("ensure group: reread: %w", err)
	}
	return doc.toDomain(), nil
}

// FindGroups returns the groups with the given IDs. Unknown IDs are skipped.
func (r *GroupRepository) FindGroups(ctx context.Context, ids []string) ([]*domain.Group, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find groups: %w", err)
	}
	var docs []groupDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode groups: %w", err)
	}

	groups := make([]*domain.Group, 0, len(docs))
	for _, d := range docs {
		groups = append(groups, d.toDomain())
	}
	return groups, nil
}

// EnsureIndexes creates the unique group name index that EnsureGroup relies on.
func (r *GroupRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("name_unique"),
	})
	return err
}
