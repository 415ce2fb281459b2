package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

var tokenFields = []string{"token", "accessToken", "access_token"}

// Signup registers a new email account.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (User, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return User{}, validationError("email, password and name are required")
	}
	if req.LoginMethod == "" {
		req.LoginMethod = "email"
	}

	resp, err := c.do(ctx, c.base, http.MethodPost, "/users/user", req)
	if err != nil {
		return User{}, asAuthFailure(err)
	}
	if u := decodeUser(resp.body); u != nil {
		return *u, nil
	}
	return User{Email: req.Email, Name: req.Name, LoginMethod: req.LoginMethod}, nil
}

// Login exchanges credentials for a token. The user is included when the
// response body carries one.
func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return LoginResult{}, validationError("email and password are required")
	}

	resp, err := c.do(ctx, c.base, http.MethodPost, "/users/email-login", creds)
	if err != nil {
		return LoginResult{}, asAuthFailure(err)
	}

	token := c.extractToken(resp)
	if token == "" {
		c.logger.Debug("login response carried no token", "strategy", string(c.strategy))
		return LoginResult{}, &Error{Kind: KindAuth, Status: resp.status, Message: "server response did not include a token"}
	}
	return LoginResult{Token: token, User: decodeUser(resp.body)}, nil
}

// Me resolves token to the user it belongs to.
func (c *Client) Me(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, &Error{Kind: KindAuth, Err: ErrUnauthenticated}
	}
	hc := c.bearerClient(oauth2.StaticTokenSource(BearerToken(token)))
	resp, err := c.do(ctx, hc, http.MethodGet, "/users/me", nil)
	if err != nil {
		return User{}, err
	}
	u := decodeUser(resp.body)
	if u == nil {
		return User{}, &Error{Kind: KindMalformed, Status: resp.status, Message: "unexpected /users/me response"}
	}
	return *u, nil
}

func (c *Client) extractToken(resp *response) string {
	if c.strategy == TokenFromHeader {
		h := strings.TrimSpace(resp.header.Get("Authorization"))
		if len(h) > len("Bearer ") && strings.EqualFold(h[:len("Bearer ")], "Bearer ") {
			return strings.TrimSpace(h[len("Bearer "):])
		}
		return ""
	}

	obj := objectOf(resp.body)
	for _, scope := range []map[string]json.RawMessage{obj, objectOf(obj["data"])} {
		for _, field := range tokenFields {
			var s string
			if raw, ok := scope[field]; ok && json.Unmarshal(raw, &s) == nil && s != "" {
				return strings.TrimPrefix(s, "Bearer ")
			}
		}
	}
	return ""
}

// decodeUser finds a user record either at the top level or under "user"
// or "data". It returns nil when nothing identifies a user.
func decodeUser(body []byte) *User {
	obj := objectOf(body)
	candidates := []json.RawMessage{obj["user"], obj["data"], objectOf(obj["data"])["user"], body}
	for _, raw := range candidates {
		if len(raw) == 0 {
			continue
		}
		var u User
		if err := json.Unmarshal(raw, &u); err != nil {
			continue
		}
		if u.ID != "" || u.Email != "" {
			return &u
		}
	}
	return nil
}

func objectOf(raw []byte) map[string]json.RawMessage {
	var obj map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &obj) != nil {
		return nil
	}
	return obj
}
