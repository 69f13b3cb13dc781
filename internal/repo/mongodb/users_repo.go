package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joselyntm20/userslambda/internal/domain/user"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const usersCollection = "users"

var tracer = otel.Tracer("github.com/joselyntm20/userslambda/internal/repo/mongodb")

// Connector hands out the shared database handle, connecting on first use.
type Connector interface {
	Database(ctx context.Context) (*mongo.Database, error)
}

type Observer interface {
	ObserveDB(op string, fn func() error) error
}

type UsersRepo struct {
	conn Connector
	obs  Observer
}

func NewUsersRepo(conn Connector, obs Observer) *UsersRepo {
	return &UsersRepo{conn: conn, obs: obs}
}

func (r *UsersRepo) Create(ctx context.Context, req user.CreateUserRequest) (user.User, error) {
	u := user.NewFromCreateRequest(req)

	err := r.run(ctx, "users.create", func(ctx context.Context, coll *mongo.Collection) error {
		res, err := coll.InsertOne(ctx, bson.D{
			{Key: "name", Value: u.Name},
			{Key: "email", Value: u.Email},
			{Key: "password", Value: u.Password},
			{Key: "age", Value: u.Age},
			{Key: "role", Value: u.Role},
			{Key: "createdAt", Value: u.CreatedAt},
		})
		if err != nil {
			return err
		}

		id, ok := res.InsertedID.(primitive.ObjectID)
		if !ok {
			return fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
		}
		u.ID = id
		return nil
	})

	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	out := make([]user.User, 0)

	err := r.run(ctx, "users.list", func(ctx context.Context, coll *mongo.Collection) error {
		cur, err := coll.Find(ctx, bson.D{})
		if err != nil {
			return err
		}
		defer cur.Close(ctx)

		return cur.All(ctx, &out)
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id primitive.ObjectID) (user.User, error) {
	var u user.User

	err := r.run(ctx, "users.get", func(ctx context.Context, coll *mongo.Collection) error {
		err := coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&u)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.ErrNotFound
		}
		return err
	})

	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

// Update only matches when at least one mutable field differs, so writing
// identical values modifies nothing and reports ErrNotFound.
func (r *UsersRepo) Update(ctx context.Context, id primitive.ObjectID, req user.UpdateUserRequest) error {
	age := float64(req.Age)

	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "$or", Value: bson.A{
			bson.D{{Key: "name", Value: bson.D{{Key: "$ne", Value: req.Name}}}},
			bson.D{{Key: "email", Value: bson.D{{Key: "$ne", Value: req.Email}}}},
			bson.D{{Key: "password", Value: bson.D{{Key: "$ne", Value: req.Password}}}},
			bson.D{{Key: "age", Value: bson.D{{Key: "$ne", Value: age}}}},
			bson.D{{Key: "role", Value: bson.D{{Key: "$ne", Value: req.Role}}}},
		}},
	}

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: req.Name},
		{Key: "email", Value: req.Email},
		{Key: "password", Value: req.Password},
		{Key: "age", Value: age},
		{Key: "role", Value: req.Role},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}}

	return r.run(ctx, "users.update", func(ctx context.Context, coll *mongo.Collection) error {
		res, err := coll.UpdateOne(ctx, filter, update)
		if err != nil {
			return err
		}

		if res.ModifiedCount == 0 {
			return user.ErrNotFound
		}
		return nil
	})
}

func (r *UsersRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.run(ctx, "users.delete", func(ctx context.Context, coll *mongo.Collection) error {
		res, err := coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
		if err != nil {
			return err
		}

		if res.DeletedCount == 0 {
			return user.ErrNotFound
		}
		return nil
	})
}

// run acquires the shared handle and wraps one store call in a span and
// the DB metrics. ErrNotFound is a result, not a failure.
func (r *UsersRepo) run(ctx context.Context, op string, fn func(ctx context.Context, coll *mongo.Collection) error) error {
	ctx, span := tracer.Start(ctx, op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "mongodb"),
			attribute.String("db.operation", op),
			attribute.String("db.mongodb.collection", usersCollection),
		),
	)
	defer span.End()

	call := func() error {
		database, err := r.conn.Database(ctx)
		if err != nil {
			return err
		}

		return fn(ctx, database.Collection(usersCollection))
	}

	var err error
	if r.obs != nil {
		_ = r.obs.ObserveDB(op, func() error {
			err = call()
			if errors.Is(err, user.ErrNotFound) {
				return nil
			}
			return err
		})
	} else {
		err = call()
	}

	if err != nil && !errors.Is(err, user.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
