package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/layer-3/taskboard/core"
	"github.com/layer-3/taskboard/ports"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password"`
	Role         string             `bson:"role"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (d userDoc) toCore() *core.User {
	return &core.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         core.Role(d.Role),
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

// UserRepository implements ports.UserRepository over the users collection.
type UserRepository struct {
	coll *mongodriver.Collection
}

var _ ports.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) CreateUser(ctx context.Context, user *core.User) error {
	const op = "storage/mongo/CreateUser"

	now := toMS(time.Now())
	doc := userDoc{
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: %w", op, core.ErrEmailTaken)
		}
		return fmt.Errorf("%s: insert: %w", op, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("%s: inserted id type", op)
	}

	user.ID = oid.Hex()
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// UserByID returns the user with the given hex id. A malformed id is
// treated as a missing record.
func (r *UserRepository) UserByID(ctx context.Context, id string) (*core.User, error) {
	const op = "storage/mongo/UserByID"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, core.ErrUserNotFound)
	}

	return r.findOne(ctx, op, bson.D{{Key: "_id", Value: oid}})
}

func (r *UserRepository) UserByEmail(ctx context.Context, email string) (*core.User, error) {
	const op = "storage/mongo/UserByEmail"

	return r.findOne(ctx, op, bson.D{{Key: "email", Value: strings.ToLower(strings.TrimSpace(email))}})
}

func (r *UserRepository) ListUsers(ctx context.Context) ([]core.User, error) {
	const op = "storage/mongo/ListUsers"

	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cur.Close(ctx)

	out := make([]core.User, 0)
	for cur.Next(ctx) {
		var doc userDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}
		out = append(out, *doc.toCore())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", op, err)
	}

	return out, nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, user *core.User) error {
	const op = "storage/mongo/UpdateUser"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(user.ID))
	if err != nil {
		return fmt.Errorf("%s: %w", op, core.ErrUserNotFound)
	}

	now := toMS(time.Now())
	res, err := r.coll.UpdateByID(ctx, oid, bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: user.Name},
		{Key: "email", Value: user.Email},
		{Key: "password", Value: user.PasswordHash},
		{Key: "role", Value: string(user.Role)},
		{Key: "updatedAt", Value: now},
	}}})
	if err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: %w", op, core.ErrEmailTaken)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrUserNotFound)
	}

	user.UpdatedAt = now
	return nil
}

func (r *UserRepository) DeleteUser(ctx context.Context, id string) (*core.User, error) {
	const op = "storage/mongo/DeleteUser"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, core.ErrUserNotFound)
	}

	var doc userDoc
	if err := r.coll.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, core.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return doc.toCore(), nil
}

func (r *UserRepository) findOne(ctx context.Context, op string, filter bson.D) (*core.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, core.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return doc.toCore(), nil
}

// toMS truncates to the millisecond precision of BSON dates.
func toMS(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
