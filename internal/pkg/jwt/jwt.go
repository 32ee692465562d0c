package jwt

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var ErrInvalidClaims = errors.New("token claims are missing or invalid")

// Claims are the identity claims the portal's auth service puts in access tokens
type Claims struct {
	UserID   string
	WorkerID string
	OrgID    string
}

type Service interface {
	// GenerateAccessToken signs an access token with the same claims the auth service issues
	GenerateAccessToken(claims Claims) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GenerateAccessToken(c Claims) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"user_id": c.UserID,
		"type":    "access",
		"exp":     expiresAt,
	}
	if c.WorkerID != "" {
		claims["worker_id"] = c.WorkerID
	}
	if c.OrgID != "" {
		claims["org_id"] = c.OrgID
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// ParseClaims reads identity claims from a decoded claims map. Only user_id is required.
func ParseClaims(m map[string]interface{}) (Claims, error) {
	if tokenType, ok := m["type"].(string); !ok || tokenType != "access" {
		return Claims{}, ErrInvalidClaims
	}
	userID, ok := m["user_id"].(string)
	if !ok || userID == "" {
		return Claims{}, ErrInvalidClaims
	}
	workerID, _ := m["worker_id"].(string)
	orgID, _ := m["org_id"].(string)
	return Claims{UserID: userID, WorkerID: workerID, OrgID: orgID}, nil
}
