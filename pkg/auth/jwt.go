package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

// AdminRole is the role claim value that grants host (admin) access.
const AdminRole = "admin"

// AccessClaims は外部認証サービスが発行するアクセストークンのクレーム
type AccessClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// VerifyAccessToken は HS256 署名のアクセストークンを検証し、クレームを返す。
// sub クレームがユーザーIDとなる。
func VerifyAccessToken(tokenString string, secret []byte) (*AccessClaims, error) {
	if len(secret) == 0 {
		return nil, errors.New("access tokens disabled")
	}
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	// jwt/v4 は exp がない場合に検証をスキップする
	if claims.ExpiresAt == nil {
		return nil, errors.New("token has no expiry")
	}
	return claims, nil
}
