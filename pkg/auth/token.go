// Package auth resolves org credentials. Three paths are supported: a
// ready access token from the environment, the JWT bearer flow against a
// connected app, and an interactive web flow with a local callback
// server. Resolved tokens can optionally be cached on disk, encrypted.
package auth

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	pkgErrors "github.com/sfseed/sfseed/pkg/errors"
)

// Token is the outcome of a token exchange.
type Token struct {
	AccessToken string `json:"access_token"`
	InstanceURL string `json:"instance_url"`
}

// LoadPrivateKey reads an RSA private key from a PEM file (PKCS#1 or
// PKCS#8).
func LoadPrivateKey(path string) (*rsa.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, pkgErrors.NewAuthError("key file is not PEM encoded", nil)
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, pkgErrors.NewAuthError("unsupported private key format", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, pkgErrors.NewAuthError("key is not RSA", nil)
	}
	return key, nil
}

// BuildJWTAssertion signs the three-minute bearer assertion the JWT flow
// requires: issuer is the connected app's client id, subject the org
// username, audience the login host.
func BuildJWTAssertion(key *rsa.PrivateKey, clientID, username, audience string) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    clientID,
		Subject:   username,
		Audience:  jwt.ClaimStrings{audience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(3 * time.Minute)),
	}
	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", pkgErrors.NewAuthError("signing JWT assertion", err)
	}
	return assertion, nil
}

// ExchangeJWT trades a signed assertion for an access token at the login
// host's token endpoint.
func ExchangeJWT(ctx context.Context, loginURL, assertion string) (*Token, error) {
	form := url.Values{
		"grant_type": {"urn:ietf:params:oauth:grant-type:jwt-bearer"},
		"assertion":  {assertion},
	}
	return postTokenForm(ctx, strings.TrimRight(loginURL, "/")+"/services/oauth2/token", form)
}

// ExchangeAuthCode trades a web-flow authorization code for an access
// token.
func ExchangeAuthCode(ctx context.Context, loginURL, clientID, code, verifier, redirectURI string) (*Token, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {clientID},
		"code":          {code},
		"code_verifier": {verifier},
		"redirect_uri":  {redirectURI},
	}
	return postTokenForm(ctx, strings.TrimRight(loginURL, "/")+"/services/oauth2/token", form)
}

func postTokenForm(ctx context.Context, tokenURL string, form url.Values) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, pkgErrors.NewAuthError("token endpoint unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		var oauthErr struct {
			Error       string `json:"error"`
			Description string `json:"error_description"`
		}
		if json.Unmarshal(raw, &oauthErr) == nil && oauthErr.Error != "" {
			return nil, pkgErrors.NewAuthError(fmt.Sprintf("%s: %s", oauthErr.Error, oauthErr.Description), nil)
		}
		return nil, pkgErrors.NewAuthError(fmt.Sprintf("token endpoint returned %d", resp.StatusCode), nil)
	}

	var tok Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, pkgErrors.NewAuthError("malformed token response", err)
	}
	if tok.AccessToken == "" || tok.InstanceURL == "" {
		return nil, pkgErrors.NewAuthError("token response missing access_token or instance_url", nil)
	}
	return &tok, nil
}
