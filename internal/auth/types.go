package auth

import "github.com/golang-jwt/jwt/v5"

// claims carried by tokens issued for subscribers and publishing services.
// the subscriber or service id is the registered "sub" claim.
type Claims struct {
	Service bool `json:"service,omitempty"`
	jwt.RegisteredClaims
}
