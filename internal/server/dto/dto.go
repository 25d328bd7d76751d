// Package dto defines the request and response shapes shared by the HTTP and
// gRPC transports, together with their input validation.
package dto

import (
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.FullName, validation.Length(0, 200)),
	)
}

// LoginRequest carries the credentials of a login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r RefreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

// UpdateProfileRequest changes the caller's profile. Absent or empty fields
// are left untouched.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty"`
	Password *string `json:"password,omitempty"`
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName, validation.Length(0, 200)),
	)
}

// AccountResponse is the public view of an account. The password hash is
// never part of it.
type AccountResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func NewAccountResponse(a *models.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Email:     a.Email,
		FullName:  a.FullName,
		Role:      a.Role,
		CreatedAt: a.CreatedAt,
	}
}

func NewAccountList(accounts []*models.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, NewAccountResponse(a))
	}
	return out
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func NewTokenResponse(p *models.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    p.TokenType,
	}
}

type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

type AccountListResponse struct {
	Users []AccountResponse `json:"users"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed HTTP request.
type ErrorResponse struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

// FieldErrors flattens a validation failure into field -> message.
// It returns nil for errors that are not validation errors.
func FieldErrors(err error) map[string]string {
	errs, ok := err.(validation.Errors)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(errs))
	for field, e := range errs {
		out[field] = e.Error()
	}
	return out
}
