// Package identity signs users up and in against the Identity Toolkit
// REST API (email + password accounts).
package identity

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/smartpool/internal/common"
	"github.com/dmitrijs2005/smartpool/internal/logging"
	"github.com/dmitrijs2005/smartpool/internal/netx"
)

const (
	DefaultBaseURL  = "https://identitytoolkit.googleapis.com/v1"
	DefaultTokenURL = "https://securetoken.googleapis.com/v1"
)

// Result is a successful sign-up or sign-in.
type Result struct {
	UserID       string
	Email        string
	Token        string
	RefreshToken string
	ExpiresAt    time.Time
}

type Config struct {
	BaseURL string
	// TokenURL serves refresh-token exchanges. Default: DefaultTokenURL.
	TokenURL   string
	APIKey     string
	HTTPClient *http.Client
}

type Client struct {
	baseURL  string
	tokenURL string
	apiKey   string
	http     *http.Client
	log      logging.Logger
	now      func() time.Time
}

func New(cfg Config, log logging.Logger) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		tokenURL: strings.TrimRight(cfg.TokenURL, "/"),
		apiKey:   cfg.APIKey,
		http:     cfg.HTTPClient,
		log:      log.With("component", "identity"),
		now:      time.Now,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.tokenURL == "" {
		c.tokenURL = DefaultTokenURL
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	return c
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// SignUp creates an email/password account and signs it in.
func (c *Client) SignUp(ctx context.Context, email, password string) (*Result, error) {
	return c.call(ctx, "accounts:signUp", "Failed to create account", email, password)
}

// SignIn verifies an email/password pair.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Result, error) {
	return c.call(ctx, "accounts:signInWithPassword", "Failed to sign in", email, password)
}

type credentials struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type authResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) call(ctx context.Context, endpoint, failure, email, password string) (*Result, error) {
	u := c.baseURL + "/" + endpoint
	body := credentials{Email: email, Password: password, ReturnSecureToken: true}

	var ar authResponse
	if err := c.post(ctx, u, endpoint, failure, body, &ar); err != nil {
		return nil, err
	}

	res := &Result{
		UserID:       ar.LocalID,
		Email:        ar.Email,
		Token:        ar.IDToken,
		RefreshToken: ar.RefreshToken,
		ExpiresAt:    c.expiry(ar.IDToken, ar.ExpiresIn),
	}
	if res.Email == "" {
		res.Email = email
	}

	c.log.Info(ctx, "identity request succeeded", "endpoint", endpoint, "user_id", res.UserID)
	return res, nil
}

type refreshRequest struct {
	GrantType    string `json:"grant_type"`
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	UserID       string `json:"user_id"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
}

// Refresh exchanges a refresh token for a new ID token. Email is left
// empty; the provider does not return it.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Result, error) {
	const endpoint = "token"

	var rr refreshResponse
	body := refreshRequest{GrantType: "refresh_token", RefreshToken: refreshToken}
	if err := c.post(ctx, c.tokenURL+"/"+endpoint, endpoint, "Failed to refresh session", body, &rr); err != nil {
		return nil, err
	}

	res := &Result{
		UserID:       rr.UserID,
		Token:        rr.IDToken,
		RefreshToken: rr.RefreshToken,
		ExpiresAt:    c.expiry(rr.IDToken, rr.ExpiresIn),
	}
	if res.RefreshToken == "" {
		res.RefreshToken = refreshToken
	}

	c.log.Info(ctx, "identity token refreshed", "user_id", res.UserID)
	return res, nil
}

// post sends body to u with the API key and decodes a 2xx answer into dst.
// Every failure is an *Error.
func (c *Client) post(ctx context.Context, u, endpoint, failure string, body, dst any) error {
	if !c.Enabled() {
		return &Error{Code: CodeNotConfigured, Message: "Remote API key not configured.", Err: common.ErrRemoteDisabled}
	}

	u += "?key=" + url.QueryEscape(c.apiKey)
	resp, err := netx.DoJSON(ctx, c.http, http.MethodPost, u, "", body)
	if err != nil {
		c.log.Error(ctx, "identity request failed", "endpoint", endpoint, "error", err)
		return &Error{Code: CodeNetwork, Message: fmt.Sprintf("%s: %v", failure, err), Err: err}
	}

	if !resp.OK() {
		var er errorResponse
		_ = resp.Decode(&er)
		e := providerError(er.Error.Message)
		c.log.Warn(ctx, "identity request rejected", "endpoint", endpoint, "status", resp.StatusCode, "code", e.Code)
		return e
	}

	if err := resp.Decode(dst); err != nil {
		return &Error{Code: CodeUnknown, Message: fmt.Sprintf("%s: %v", failure, err), Err: err}
	}
	return nil
}

// expiry prefers the token's own exp claim and falls back to expiresIn.
func (c *Client) expiry(idToken, expiresIn string) time.Time {
	if claims, err := ParseClaims(idToken); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	if secs, err := strconv.Atoi(expiresIn); err == nil {
		return c.now().Add(time.Duration(secs) * time.Second)
	}
	return time.Time{}
}
