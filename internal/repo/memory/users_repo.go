package memory

import (
	"context"
	"sync"
	"time"

	"github.com/joselyntm20/userslambda/internal/domain/user"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UsersRepo mirrors the mongo store semantics in process memory.
type UsersRepo struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]user.User
	order []primitive.ObjectID // insertion order for List
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[primitive.ObjectID]user.User),
	}
}

func (r *UsersRepo) Create(_ context.Context, req user.CreateUserRequest) (user.User, error) {
	u := user.NewFromCreateRequest(req)
	u.ID = primitive.NewObjectID()

	r.mu.Lock()
	r.items[u.ID] = u
	r.order = append(r.order, u.ID)
	r.mu.Unlock()

	return u, nil
}

func (r *UsersRepo) List(_ context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}

	return out, nil
}

func (r *UsersRepo) GetByID(_ context.Context, id primitive.ObjectID) (user.User, error) {
	r.mu.RLock()
	u, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) Update(_ context.Context, id primitive.ObjectID, req user.UpdateUserRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok || !u.Differs(req) {
		return user.ErrNotFound
	}

	u.Apply(req, time.Now().UTC())
	r.items[id] = u

	return nil
}

func (r *UsersRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return user.ErrNotFound
	}

	delete(r.items, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return nil
}

// Ping always succeeds; it lets the memory store back /readyz.
func (r *UsersRepo) Ping(_ context.Context) error {
	return nil
}
