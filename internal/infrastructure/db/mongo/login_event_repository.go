package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/proxy-auth/internal/core/domain"
)

// LoginEventRepository implements ports.LoginEventSink using MongoDB.
type LoginEventRepository struct {
	col *mongo.Collection
}

func NewLoginEventRepository(db *mongo.Database) *LoginEventRepository {
	return &LoginEventRepository{col: db.Collection(collectionLoginEvents)}
}

// InsertLoginEvent persists an audit record to the login_events collection.
func (r *LoginEventRepository) InsertLoginEvent(ctx context.Context, event *domain.LoginEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, toLoginEventDocument(event, time.Now().UTC()))
	return err
}

// EnsureIndexes creates the lookup index on username and time.
func (r *LoginEventRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "username", Value: 1}, {Key: "at", Value: -1}},
	})
	return err
}
