package user

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrNotFound = errors.New("user not found")

// User is stored as given, password included.
type User struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"password" bson:"password"`
	Age       float64            `json:"age" bson:"age"`
	Role      string             `json:"role" bson:"role"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt *time.Time         `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// Age accepts a JSON number or a numeric string ("27").
type Age float64

func (a *Age) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		s = strings.TrimSpace(s)
		if s == "" {
			*a = 0
			return nil
		}

		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("age %q is not numeric", s)
		}
		*a = Age(f)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*a = Age(f)
	return nil
}

// a zero age counts as missing, like every other empty field.
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Age      Age    `json:"age" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// full replacement payload, nothing is required.
type UpdateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      Age    `json:"age"`
	Role     string `json:"role"`
}

func NewFromCreateRequest(req CreateUserRequest) User {
	return User{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Age:       float64(req.Age),
		Role:      req.Role,
		CreatedAt: time.Now().UTC(),
	}
}

// Differs reports whether applying req would change at least one mutable field.
func (u User) Differs(req UpdateUserRequest) bool {
	return u.Name != req.Name ||
		u.Email != req.Email ||
		u.Password != req.Password ||
		u.Age != float64(req.Age) ||
		u.Role != req.Role
}

func (u *User) Apply(req UpdateUserRequest, at time.Time) {
	u.Name = req.Name
	u.Email = req.Email
	u.Password = req.Password
	u.Age = float64(req.Age)
	u.Role = req.Role
	u.UpdatedAt = &at
}

func ParseID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("parse user id %q: %w", raw, err)
	}
	return id, nil
}
