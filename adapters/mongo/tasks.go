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

type taskDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Status      string             `bson:"status"`
	Priority    string             `bson:"priority"`
	User        primitive.ObjectID `bson:"user"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d taskDoc) toCore() core.Task {
	return core.Task{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Status:      core.TaskStatus(d.Status),
		Priority:    core.TaskPriority(d.Priority),
		UserID:      d.User.Hex(),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

// TaskRepository implements ports.TaskRepository over the tasks collection.
type TaskRepository struct {
	coll *mongodriver.Collection
}

var _ ports.TaskRepository = (*TaskRepository)(nil)

func (r *TaskRepository) CreateTask(ctx context.Context, task *core.Task) error {
	const op = "storage/mongo/CreateTask"

	owner, err := primitive.ObjectIDFromHex(task.UserID)
	if err != nil {
		return fmt.Errorf("%s: owner id: %w", op, core.ErrUserNotFound)
	}

	now := toMS(time.Now())
	res, err := r.coll.InsertOne(ctx, taskDoc{
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		User:        owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return fmt.Errorf("%s: insert: %w", op, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("%s: inserted id type", op)
	}

	task.ID = oid.Hex()
	task.CreatedAt = now
	task.UpdatedAt = now
	return nil
}

func (r *TaskRepository) TaskByID(ctx context.Context, userID, id string) (*core.Task, error) {
	const op = "storage/mongo/TaskByID"

	filter, ok := ownedFilter(userID, id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, core.ErrTaskNotFound)
	}

	var doc taskDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, core.ErrTaskNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	t := doc.toCore()
	return &t, nil
}

func (r *TaskRepository) ListTasks(ctx context.Context, userID string, filter core.TaskFilter) ([]core.Task, error) {
	const op = "storage/mongo/ListTasks"

	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []core.Task{}, nil
	}

	q := bson.D{{Key: "user", Value: owner}}
	if filter.Status != "" {
		q = append(q, bson.E{Key: "status", Value: string(filter.Status)})
	}
	if filter.Priority != "" {
		q = append(q, bson.E{Key: "priority", Value: string(filter.Priority)})
	}

	return r.find(ctx, op, q)
}

func (r *TaskRepository) ListAllTasks(ctx context.Context) ([]core.Task, error) {
	const op = "storage/mongo/ListAllTasks"

	return r.find(ctx, op, bson.D{})
}

func (r *TaskRepository) UpdateTask(ctx context.Context, userID, id string, patch core.TaskPatch) (*core.Task, error) {
	const op = "storage/mongo/UpdateTask"

	filter, ok := ownedFilter(userID, id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, core.ErrTaskNotFound)
	}

	set := bson.D{{Key: "updatedAt", Value: toMS(time.Now())}}
	if patch.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *patch.Title})
	}
	if patch.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *patch.Description})
	}
	if patch.Status != nil {
		set = append(set, bson.E{Key: "status", Value: string(*patch.Status)})
	}
	if patch.Priority != nil {
		set = append(set, bson.E{Key: "priority", Value: string(*patch.Priority)})
	}

	var doc taskDoc
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, core.ErrTaskNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	t := doc.toCore()
	return &t, nil
}

func (r *TaskRepository) DeleteTask(ctx context.Context, userID, id string) error {
	const op = "storage/mongo/DeleteTask"

	filter, ok := ownedFilter(userID, id)
	if !ok {
		return fmt.Errorf("%s: %w", op, core.ErrTaskNotFound)
	}

	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrTaskNotFound)
	}

	return nil
}

func (r *TaskRepository) find(ctx context.Context, op string, filter bson.D) ([]core.Task, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cur.Close(ctx)

	out := make([]core.Task, 0)
	for cur.Next(ctx) {
		var doc taskDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}
		out = append(out, doc.toCore())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", op, err)
	}

	return out, nil
}

// ownedFilter matches task id owned by userID. Malformed ids yield ok=false.
func ownedFilter(userID, id string) (bson.D, bool) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, false
	}
	owner, err := primitive.ObjectIDFromHex(strings.TrimSpace(userID))
	if err != nil {
		return nil, false
	}
	return bson.D{{Key: "_id", Value: oid}, {Key: "user", Value: owner}}, true
}
