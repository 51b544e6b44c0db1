// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec verifies the access tokens issued by the main Yomira API.
//
// # Architecture
//
// The publishing service never issues tokens. It only holds the RS256 public
// key and reconstructs the caller's identity and role from the claims, so the
// publish routes can be gated without a round-trip to the user store.
package sec

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims is the access-token payload shared with the main API.
type AuthClaims struct {
	jwt.RegisteredClaims

	UserID   string `json:"uid"`
	Username string `json:"unm"`
	Role     string `json:"rol"`
}

// TokenVerifier checks RS256 access tokens against a single public key.
type TokenVerifier struct {
	publicKey *rsa.PublicKey
	issuer    string
}

// NewTokenVerifier reads a PEM encoded RSA public key from publicKeyPath.
func NewTokenVerifier(publicKeyPath, issuer string) (*TokenVerifier, error) {
	publicKeyData, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read public key from %s: %w", publicKeyPath, err)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyData)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse public key: %w", err)
	}

	return NewTokenVerifierFromKey(publicKey, issuer), nil
}

// NewTokenVerifierFromKey builds a verifier around an already parsed key.
func NewTokenVerifierFromKey(publicKey *rsa.PublicKey, issuer string) *TokenVerifier {
	return &TokenVerifier{publicKey: publicKey, issuer: issuer}
}

// VerifyToken checks the signature, expiry and issuer of a JWT string.
func (verifier *TokenVerifier) VerifyToken(tokenString string) (*AuthClaims, error) {
	options := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()})}
	if verifier.issuer != "" {
		options = append(options, jwt.WithIssuer(verifier.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		return verifier.publicKey, nil
	}, options...)
	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, errors.New("sec: invalid token claims")
	}

	return claims, nil
}
