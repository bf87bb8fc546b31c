// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/carterperez-dev/medassist/internal/core"
)

type SignupRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

const (
	RecoverRestore = "restore"
	RecoverNew     = "new"
)

type RecoverRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,max=128"`
	Mode     string `json:"mode"     validate:"required,oneof=restore new"`
	Name     string `json:"name"     validate:"max=100"`
}

type DeleteRequest struct {
	UserID core.RawID `json:"userId"`
}

type UserResponse struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Status     Status     `json:"status"`
	IsAdmin    bool       `json:"isAdmin"`
	CreatedAt  time.Time  `json:"createdAt"`
	ApprovedAt *time.Time `json:"approvedAt"`
	DeletedAt  *time.Time `json:"deletedAt"`
}

type LoginResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"accessToken,omitempty"`
	TokenType   string       `json:"tokenType,omitempty"`
	ExpiresIn   int          `json:"expiresIn,omitempty"`
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Status:     u.Status,
		IsAdmin:    u.IsAdmin,
		CreatedAt:  u.CreatedAt,
		ApprovedAt: u.ApprovedAt,
		DeletedAt:  u.DeletedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}
