package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/proxy-auth/internal/core/domain"
)

// PersonRepository implements ports.PersonStore on the people collection.
// Uniqueness of {type, username} is enforced by an index, see EnsureIndexes.
type PersonRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewPersonRepository(db *mongo.Database) *PersonRepository {
	return &PersonRepository{col: db.Collection(collectionPeople), now: time.Now}
}

// FindPerson matches type "person" and the exact username.
func (r *PersonRepository) FindPerson(ctx context.Context, username string) (*domain.Person, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc personDocument
	err := r.col.FindOne(ctx, bson.M{"type": domain.PersonType, "username": username}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPersonNotFound
		}
		return nil, fmt.Errorf("find person: %w", err)
	}
	return doc.toDomain(), nil
}

// SavePerson inserts a new record or replaces the one holding p.ID. A
// replace only matches when the stored username is unchanged, so an ID can
// never be reused for a different person.
func (r *PersonRepository) SavePerson(ctx context.Context, p *domain.Person) (*domain.Person, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := r.now().UTC()
	saved := *p
	if saved.Type == "" {
		saved.Type = domain.PersonType
	}
	saved.UpdatedAt = now

	if saved.ID == "" {
		saved.ID = primitive.NewObjectID().Hex()
		saved.CreatedAt = now
		if _, err := r.col.InsertOne(ctx, toPersonDocument(&saved)); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, domain.ErrPersonExists
			}
			return nil, fmt.Errorf("insert person: %w", err)
		}
		return &saved, nil
	}

	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = now
	}
	filter := bson.M{"_id": saved.ID, "username": saved.Username}
	_, err := r.col.ReplaceOne(ctx, filter, toPersonDocument(&saved), options.Replace().SetUpsert(true))
	if err == nil {
		return &saved, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("replace person: %w", err)
	}

	// The upsert collided either on _id (held by another username) or on
	// the username index (held by another _id).
	var existing personDocument
	if findErr := r.col.FindOne(ctx, bson.M{"_id": saved.ID}).Decode(&existing); findErr == nil && existing.Username != saved.Username {
		return nil, domain.ErrIDConflict
	}
	return nil, domain.ErrPersonExists
}

// EnsureIndexes creates the unique person-per-username index.
func (r *PersonRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "type", Value: 1}, {Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("type_username_unique"),
		},
		{Keys: bson.D{{Key: "group_ids", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
