package auth

import (
	"context"
	"crypto/rsa"
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/harborops/attendance-management/internal"
)

// Roles handed out by the external identity service.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// User is the identity slice this service cares about. The record itself is
// owned by the identity service; only the id and role travel in the token.
type User struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// CanManageAttendance is the single authorization capability the admin
// console checks: geofence, override and access-request administration.
func (u *User) CanManageAttendance() bool {
	return u.Role == RoleAdmin || u.Role == RoleManager
}

type TokenValidatorAPI interface {
	ValidateAccessToken(tokenString string) (*Claims, error)
}

type TokenValidator struct {
	publicKey *rsa.PublicKey
}

func NewTokenValidator(publicKey *rsa.PublicKey) *TokenValidator {
	return &TokenValidator{publicKey: publicKey}
}

func (v *TokenValidator) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.publicKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return nil, internal.ErrInvalidToken
	}

	return claims, nil
}

type userCtxKey string

const contextUserKey userCtxKey = "authUser"

func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, contextUserKey, user)
}

func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(contextUserKey).(*User)
	return user, ok
}
