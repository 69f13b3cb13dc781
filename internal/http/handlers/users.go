package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joselyntm20/userslambda/internal/cache"
	"github.com/joselyntm20/userslambda/internal/domain/user"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserStore interface {
	Create(ctx context.Context, req user.CreateUserRequest) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (user.User, error)
	Update(ctx context.Context, id primitive.ObjectID, req user.UpdateUserRequest) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type UsersHandler struct {
	repo  UserStore
	cache cache.Store
}

func NewUsersHandler(repo UserStore) *UsersHandler {
	return &UsersHandler{repo: repo}
}

// NewUsersHandlerWithCache serves GET /users/:id through c. A nil c
// disables caching.
func NewUsersHandlerWithCache(repo UserStore, c cache.Store) *UsersHandler {
	return &UsersHandler{repo: repo, cache: c}
}

func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	var req user.CreateUserRequest

	body, ok := BindJSON(ctx, &req)
	if !ok {
		return
	}

	created, err := h.repo.Create(ctx.Request.Context(), req)
	if err != nil {
		logFailure(ctx, "create user failed", err)
		RespondInternal(ctx, "Internal server error", err)
		return
	}

	// echo what the client sent, plus the assigned id
	resp, err := submittedFields(body)
	if err != nil {
		resp = map[string]interface{}{}
	}
	resp["_id"] = created.ID

	ctx.JSON(http.StatusCreated, resp)
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	users, err := h.repo.List(ctx.Request.Context())
	if err != nil {
		logFailure(ctx, "list users failed", err)
		RespondInternal(ctx, "Could not list users", err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, users)
}

func (h *UsersHandler) GetUserByID(ctx *gin.Context) {
	raw := ctx.Param("id")

	// a malformed id is reported as a server fault, like any store error
	id, err := user.ParseID(raw)
	if err != nil {
		logFailure(ctx, "get user failed", err)
		RespondInternal(ctx, "Could not fetch user", err)
		return
	}

	if cached, ok := h.cachedUser(ctx, id); ok {
		RespondJSONWithETag(ctx, http.StatusOK, cached)
		return
	}

	u, err := h.repo.GetByID(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		logFailure(ctx, "get user failed", err)
		RespondInternal(ctx, "Could not fetch user", err)
		return
	}

	h.storeUser(ctx, u)

	RespondJSONWithETag(ctx, http.StatusOK, u)
}

func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	id, err := user.ParseID(ctx.Param("id"))
	if err != nil {
		logFailure(ctx, "update user failed", err)
		RespondInternal(ctx, "Could not update user", err)
		return
	}

	var req user.UpdateUserRequest
	if _, ok := BindJSON(ctx, &req); !ok {
		return
	}

	err = h.repo.Update(ctx.Request.Context(), id, req)
	if err != nil {
		// also the answer when the values were already identical
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		logFailure(ctx, "update user failed", err)
		RespondInternal(ctx, "Could not update user", err)
		return
	}

	h.evictUser(ctx, id)

	RespondMessage(ctx, http.StatusOK, "User updated successfully")
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	id, err := user.ParseID(ctx.Param("id"))
	if err != nil {
		logFailure(ctx, "delete user failed", err)
		RespondInternal(ctx, "Could not delete user", err)
		return
	}

	err = h.repo.Delete(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		logFailure(ctx, "delete user failed", err)
		RespondInternal(ctx, "Could not delete user", err)
		return
	}

	h.evictUser(ctx, id)

	RespondMessage(ctx, http.StatusOK, "User deleted successfully")
}

// cache helpers: cache failures are logged and otherwise ignored

func (h *UsersHandler) cachedUser(ctx *gin.Context, id primitive.ObjectID) (user.User, bool) {
	if h.cache == nil {
		return user.User{}, false
	}

	b, ok, err := h.cache.Get(ctx.Request.Context(), cache.UserKey(id.Hex()))
	if err != nil {
		slog.Default().WarnContext(ctx.Request.Context(), "user cache read failed", "err", err, "user_id", id.Hex())
		return user.User{}, false
	}
	if !ok {
		return user.User{}, false
	}

	var u user.User
	if err := json.Unmarshal(b, &u); err != nil {
		return user.User{}, false
	}
	return u, true
}

func (h *UsersHandler) storeUser(ctx *gin.Context, u user.User) {
	if h.cache == nil {
		return
	}

	b, err := json.Marshal(u)
	if err != nil {
		return
	}

	if err := h.cache.Set(ctx.Request.Context(), cache.UserKey(u.ID.Hex()), b); err != nil {
		slog.Default().WarnContext(ctx.Request.Context(), "user cache write failed", "err", err, "user_id", u.ID.Hex())
	}
}

func (h *UsersHandler) evictUser(ctx *gin.Context, id primitive.ObjectID) {
	if h.cache == nil {
		return
	}

	if err := h.cache.Delete(ctx.Request.Context(), cache.UserKey(id.Hex())); err != nil {
		slog.Default().WarnContext(ctx.Request.Context(), "user cache evict failed", "err", err, "user_id", id.Hex())
	}
}

func logFailure(ctx *gin.Context, msg string, err error) {
	slog.Default().ErrorContext(ctx.Request.Context(), msg,
		"err", err,
		"method", ctx.Request.Method,
		"route", ctx.FullPath(),
		"request_id", requestIDFrom(ctx),
	)
}
