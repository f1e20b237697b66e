package services

import (
	"fmt"
	"time"

	"lablinc/errors"

	"github.com/dgrijalva/jwt-go"
)

type UserInfo struct {
	UserID uint `json:"userid"`
	Role   int  `json:"role"`
}

type Claims struct {
	UserInfo UserInfo `json:"userinfo"`
	jwt.StandardClaims
}

// TokenService signs and verifies HS256 access tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *TokenService) Generate(userID uint, role int) (string, error) {
	now := s.now()
	claims := &Claims{
		UserInfo: UserInfo{UserID: userID, Role: role},
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
			Subject:   fmt.Sprint(userID),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse verifies the signature and expiry and returns the user id and role.
func (s *TokenService) Parse(tokenString string) (uint, int, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, 0, errors.NewAppError(errors.ErrCodeInvalidToken, "Invalid or expired token", err)
	}
	if claims.UserInfo.UserID == 0 {
		return 0, 0, errors.NewAppError(errors.ErrCodeInvalidToken, "Token has no user", nil)
	}
	return claims.UserInfo.UserID, claims.UserInfo.Role, nil
}
