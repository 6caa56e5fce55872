package auth

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultIssuer = "youth-press"

// JWTManager 는 HS256 단일 시크릿으로 접근 토큰을 발급/검증한다.
// 토큰에는 사용자 id(sub)만 담고, 역할은 users 컬렉션에서 조회한다.
type JWTManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewJWTManager(secret, issuer string) (*JWTManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if issuer == "" {
		issuer = defaultIssuer
	}
	return &JWTManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    24 * time.Hour,
	}, nil
}

// NewJWTManagerFromEnv 는 환경변수에서 시크릿/issuer 를 읽어 JWTManager 를 생성한다.
//
// - JWT_SECRET: HS256 서명에 사용할 시크릿 문자열(필수)
// - JWT_ISSUER: iss 클레임 값(선택, 기본값 "youth-press")
func NewJWTManagerFromEnv() (*JWTManager, error) {
	return NewJWTManager(os.Getenv("JWT_SECRET"), os.Getenv("JWT_ISSUER"))
}

func (m *JWTManager) Sign(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse 는 토큰을 검증하고 사용자 id 를 반환한다. issuer 가 다르면 거부한다.
func (m *JWTManager) Parse(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}
	if !parsed.Valid {
		return "", fmt.Errorf("invalid token claims")
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("token missing sub claim")
	}
	return claims.Subject, nil
}
