// Package bootstrap turns org aliases into authenticated connections.
// Credentials come from the environment (optionally a .env file), keyed
// by alias: SFSEED_<ALIAS>_INSTANCE_URL plus SFSEED_<ALIAS>_ACCESS_TOKEN
// for the direct path, SFSEED_<ALIAS>_JWT_* for the bearer flow, or
// SFSEED_<ALIAS>_WEB_CLIENT_ID for the interactive web flow.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/sfseed/sfseed/internal/domain/ports"
	"github.com/sfseed/sfseed/internal/infrastructure/salesforce"
	"github.com/sfseed/sfseed/pkg/auth"
	"github.com/sfseed/sfseed/pkg/constants"
	pkgErrors "github.com/sfseed/sfseed/pkg/errors"
)

// LoadEnv loads a .env file if one exists next to the working directory.
// A missing file is not an error; the process environment wins over the
// file on conflicts.
func LoadEnv() {
	_ = godotenv.Load()
}

// envFor reads SFSEED_<ALIAS><suffix>, with the alias uppercased and
// dashes normalized to underscores.
func envFor(alias, suffix string) string {
	key := strings.ToUpper(strings.ReplaceAll(alias, "-", "_"))
	return os.Getenv(constants.EnvOrgPrefix + key + suffix)
}

// ResolveOrg authenticates the alias and returns a live connection.
// Resolution order: cached token, direct token from the environment, JWT
// bearer flow, then the interactive web flow. The onAuthorize callback
// receives the consent URL when the web flow is the only option.
func ResolveOrg(ctx context.Context, alias string, onAuthorize func(url string)) (ports.Connection, error) {
	apiVersion := envFor(alias, constants.EnvAPIVersion)

	var cache *auth.TokenCache
	if path := os.Getenv(constants.EnvTokenCache); path != "" {
		passphrase := os.Getenv(constants.EnvTokenCacheKey)
		if passphrase == "" {
			return nil, pkgErrors.NewAuthError(
				constants.EnvTokenCache+" is set but "+constants.EnvTokenCacheKey+" is empty", nil)
		}
		cache = auth.NewTokenCache(path, passphrase)
	}

	if cache != nil {
		if tok, ok := cache.Load(alias); ok {
			return salesforce.NewConnection(tok.InstanceURL, tok.AccessToken, apiVersion), nil
		}
	}

	if token := envFor(alias, constants.EnvAccessToken); token != "" {
		instanceURL := envFor(alias, constants.EnvInstanceURL)
		if instanceURL == "" {
			return nil, pkgErrors.NewAuthError(
				fmt.Sprintf("org %q has an access token but no instance URL", alias), nil)
		}
		return salesforce.NewConnection(instanceURL, token, apiVersion), nil
	}

	tok, err := resolveFlow(ctx, alias, onAuthorize)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		if err := cache.Save(alias, tok); err != nil {
			return nil, fmt.Errorf("saving token cache: %w", err)
		}
	}
	return salesforce.NewConnection(tok.InstanceURL, tok.AccessToken, apiVersion), nil
}

func resolveFlow(ctx context.Context, alias string, onAuthorize func(url string)) (*auth.Token, error) {
	loginURL := envFor(alias, constants.EnvLoginURL)
	if loginURL == "" {
		loginURL = constants.DefaultLoginURL
	}

	if clientID := envFor(alias, constants.EnvJWTClientID); clientID != "" {
		return resolveJWT(ctx, alias, loginURL, clientID)
	}

	if clientID := envFor(alias, constants.EnvWebClientID); clientID != "" {
		flow, err := auth.NewWebFlow(loginURL, clientID, constants.DefaultCallbackAddr)
		if err != nil {
			return nil, err
		}
		if onAuthorize != nil {
			onAuthorize(flow.AuthorizeURL())
		}
		return flow.Wait(ctx)
	}

	return nil, pkgErrors.NewAuthError(
		fmt.Sprintf("no credentials found for org %q: set %s%s%s, %s%s%s, or %s%s%s",
			alias,
			constants.EnvOrgPrefix, strings.ToUpper(alias), constants.EnvAccessToken,
			constants.EnvOrgPrefix, strings.ToUpper(alias), constants.EnvJWTClientID,
			constants.EnvOrgPrefix, strings.ToUpper(alias), constants.EnvWebClientID), nil)
}

func resolveJWT(ctx context.Context, alias, loginURL, clientID string) (*auth.Token, error) {
	username := envFor(alias, constants.EnvJWTUsername)
	keyFile := envFor(alias, constants.EnvJWTKeyFile)
	if username == "" || keyFile == "" {
		return nil, pkgErrors.NewAuthError(
			fmt.Sprintf("org %q JWT flow needs both username and key file", alias), nil)
	}
	audience := envFor(alias, constants.EnvJWTAudience)
	if audience == "" {
		audience = loginURL
	}

	key, err := auth.LoadPrivateKey(keyFile)
	if err != nil {
		return nil, err
	}
	assertion, err := auth.BuildJWTAssertion(key, clientID, username, audience)
	if err != nil {
		return nil, err
	}
	return auth.ExchangeJWT(ctx, loginURL, assertion)
}
