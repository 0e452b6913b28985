package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrUnauthenticated = errors.New("unauthenticated")

// Identity is what a verified token proves about its bearer.
type Identity struct {
	SubjectID string
	Role      Role
}

// Verifier is the credential-checking contract consumed by protected operations.
type Verifier interface {
	Verify(token string) (Identity, error)
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWT は HS256 固定でトークンの発行と検証を行う
type JWT struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var _ Verifier = (*JWT)(nil)

func NewJWT(secret []byte, ttl time.Duration) *JWT {
	return &JWT{secret: secret, ttl: ttl, now: time.Now}
}

func (j *JWT) Issue(subject string, role Role) (string, error) {
	now := j.now()
	claims := Claims{
		Role: role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

func (j *JWT) Verify(tokenStr string) (Identity, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return Identity{}, ErrUnauthenticated
	}

	var claims Claims
	// alg 固定（none攻撃とか回避）、exp 必須
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil || token == nil || !token.Valid {
		return Identity{}, ErrUnauthenticated
	}
	if claims.Subject == "" {
		return Identity{}, ErrUnauthenticated
	}

	// 未知のロールは RoleNone のまま返す（認証は通るが権限なし）
	role, _ := ParseRole(claims.Role)
	return Identity{SubjectID: claims.Subject, Role: role}, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrUnauthenticated
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrUnauthenticated
	}
	tok := strings.TrimSpace(parts[1])
	if tok == "" {
		return "", ErrUnauthenticated
	}
	return tok, nil
}
