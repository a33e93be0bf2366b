package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	pkgErrors "github.com/sfseed/sfseed/pkg/errors"
)

// callbackPath is where the connected app redirects after consent.
const callbackPath = "/oauth/callback"

// WebFlow drives the interactive authorization-code flow with PKCE. The
// operator opens AuthorizeURL in a browser; a one-shot local server
// receives the redirect and the code is exchanged for a token.
type WebFlow struct {
	loginURL string
	clientID string
	addr     string
	state    string
	verifier string
}

// NewWebFlow prepares a flow listening on addr (e.g. "localhost:8787").
func NewWebFlow(loginURL, clientID, addr string) (*WebFlow, error) {
	state, err := randomURLSafe(16)
	if err != nil {
		return nil, err
	}
	verifier, err := randomURLSafe(32)
	if err != nil {
		return nil, err
	}
	return &WebFlow{
		loginURL: strings.TrimRight(loginURL, "/"),
		clientID: clientID,
		addr:     addr,
		state:    state,
		verifier: verifier,
	}, nil
}

// RedirectURI is the local callback the connected app must allow.
func (w *WebFlow) RedirectURI() string {
	return "http://" + w.addr + callbackPath
}

// AuthorizeURL is the consent URL to open in a browser.
func (w *WebFlow) AuthorizeURL() string {
	challenge := sha256.Sum256([]byte(w.verifier))
	params := url.Values{
		"response_type":         {"code"},
		"client_id":             {w.clientID},
		"redirect_uri":          {w.RedirectURI()},
		"state":                 {w.state},
		"code_challenge":        {base64.RawURLEncoding.EncodeToString(challenge[:])},
		"code_challenge_method": {"S256"},
	}
	return w.loginURL + "/services/oauth2/authorize?" + params.Encode()
}

// Wait serves the callback endpoint until one redirect arrives, then
// exchanges the code and shuts the server down. It honors ctx
// cancellation while waiting.
func (w *WebFlow) Wait(ctx context.Context) (*Token, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	type callback struct {
		code string
		err  error
	}
	got := make(chan callback, 1)

	router.GET(callbackPath, func(c *gin.Context) {
		if errCode := c.Query("error"); errCode != "" {
			c.String(http.StatusBadRequest, "Authorization failed: %s. You can close this tab.", errCode)
			got <- callback{err: pkgErrors.NewAuthError("authorization denied: "+errCode, nil)}
			return
		}
		if c.Query("state") != w.state {
			c.String(http.StatusBadRequest, "State mismatch. You can close this tab.")
			got <- callback{err: pkgErrors.NewAuthError("authorization state mismatch", nil)}
			return
		}
		c.String(http.StatusOK, "Authorization received. You can close this tab.")
		got <- callback{code: c.Query("code")}
	})

	server := &http.Server{Addr: w.addr, Handler: router}
	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	var cb callback
	select {
	case cb = <-got:
	case err := <-serveErr:
		return nil, fmt.Errorf("callback server failed: %w", err)
	case <-ctx.Done():
		cb.err = ctx.Err()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)

	if cb.err != nil {
		return nil, cb.err
	}
	if cb.code == "" {
		return nil, pkgErrors.NewAuthError("callback carried no authorization code", nil)
	}
	return ExchangeAuthCode(ctx, w.loginURL, w.clientID, cb.code, w.verifier, w.RedirectURI())
}

func randomURLSafe(n int) (string, error) {
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
