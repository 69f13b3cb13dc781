package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/joselyntm20/userslambda/internal/domain/user"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sampleCreate() user.CreateUserRequest {
	return user.CreateUserRequest{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "secret",
		Age:      28,
		Role:     "student",
	}
}

func TestUsersRepo_Lifecycle(t *testing.T) {
	ctx := context.Background()
	r := NewUsersRepo()

	created, err := r.Create(ctx, sampleCreate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID.IsZero() {
		t.Fatalf("expected an assigned id")
	}
	if created.CreatedAt.IsZero() {
		t.Fatalf("expected createdAt")
	}

	got, err := r.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Email != "ana@example.com" || got.UpdatedAt != nil {
		t.Fatalf("unexpected record: %+v", got)
	}

	same := user.UpdateUserRequest{Name: "Ana", Email: "ana@example.com", Password: "secret", Age: 28, Role: "student"}
	if err := r.Update(ctx, created.ID, same); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("identical update should report not found, got %v", err)
	}

	changed := same
	changed.Role = "mentor"
	if err := r.Update(ctx, created.ID, changed); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ = r.GetByID(ctx, created.ID)
	if got.Role != "mentor" || got.UpdatedAt == nil {
		t.Fatalf("update not applied: %+v", got)
	}

	if err := r.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := r.GetByID(ctx, created.ID); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := r.Delete(ctx, created.ID); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("second delete should be not found, got %v", err)
	}
}

func TestUsersRepo_ListKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	r := NewUsersRepo()

	empty, err := r.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", empty)
	}

	var ids []primitive.ObjectID
	for _, name := range []string{"a", "b", "c"} {
		req := sampleCreate()
		req.Name = name
		u, _ := r.Create(ctx, req)
		ids = append(ids, u.ID)
	}

	_ = r.Delete(ctx, ids[1])

	list, _ := r.List(ctx)
	if len(list) != 2 || list[0].Name != "a" || list[1].Name != "c" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestUsersRepo_UpdateMissing(t *testing.T) {
	r := NewUsersRepo()

	err := r.Update(context.Background(), primitive.NewObjectID(), user.UpdateUserRequest{Name: "x"})
	if !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
