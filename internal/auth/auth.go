// Package auth issues and validates the JWT access tokens of the API.
package auth

import (
	"context"
	"net/http"
	"time"

	"attendance/console/foundation/web"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

// Roles.
const (
	RoleAdmin = "ADMIN"
	RoleStaff = "STAFF"
)

type ctxKey int

// Key is the context key the claims are stored under.
const Key ctxKey = 1

// Claims are the token claims.
type Claims struct {
	jwt.StandardClaims
	UserId int    `json:"user_id"`
	Role   string `json:"role"`
}

// Authorized reports whether the claims carry one of roles.
func (c Claims) Authorized(roles ...string) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

// CanAccess reports whether the holder may read or write the data of the
// given staff member. Admins can access everyone.
func (c Claims) CanAccess(staffID int) bool {
	return c.Role == RoleAdmin || c.UserId == staffID
}

// StaffID resolves the staff member a request is about: the requested one
// when given, the caller otherwise. Staff may only name themselves.
func (c Claims) StaffID(requested int) (int, error) {
	if requested == 0 {
		return c.UserId, nil
	}
	if !c.CanAccess(requested) {
		return 0, web.NewRequestError(errors.New("attempted action is not allowed"), http.StatusForbidden)
	}
	return requested, nil
}

// Auth signs tokens with a shared HMAC key.
type Auth struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func New(key string, ttl time.Duration) (*Auth, error) {
	if key == "" {
		return nil, errors.New("jwt key is empty")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Auth{key: []byte(key), ttl: ttl, now: time.Now}, nil
}

// GenerateToken issues an access token for a user.
func (a *Auth) GenerateToken(userID int, role string) (string, error) {
	now := a.now()
	claims := Claims{
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(a.ttl).Unix(),
		},
		UserId: userID,
		Role:   role,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return token, nil
}

// ValidateToken parses a token and checks its signature and expiry.
func (a *Auth) ValidateToken(tokenStr string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.key, nil
	})
	if err != nil {
		return Claims{}, errors.Wrap(err, "parsing token")
	}
	if !token.Valid {
		return Claims{}, errors.New("invalid token")
	}
	return claims, nil
}

// GetClaims returns the claims the Authenticate middleware stored in ctx.
func GetClaims(ctx context.Context) (Claims, error) {
	claims, ok := ctx.Value(Key).(Claims)
	if !ok {
		return Claims{}, web.NewRequestError(errors.New("claims missing from context"), http.StatusUnauthorized)
	}
	return claims, nil
}
