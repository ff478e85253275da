package client

import (
	"context"
	"net/http"
)

type credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// SignIn exchanges credentials for a token and installs it on the client.
func (c *Client) SignIn(ctx context.Context, email, password string) (Session, error) {
	return c.authenticate(ctx, "/v1/auth/signin", credentials{Email: email, Password: password})
}

// SignUp registers a new account. New accounts always get the employee role.
func (c *Client) SignUp(ctx context.Context, name, email, password string) (Session, error) {
	return c.authenticate(ctx, "/v1/auth/signup", credentials{Name: name, Email: email, Password: password})
}

func (c *Client) authenticate(ctx context.Context, path string, in credentials) (Session, error) {
	resp, err := c.do(ctx, http.MethodPost, path, nil, in)
	if err != nil {
		return Session{}, err
	}
	var tr tokenResponse
	if err := decode(resp, &tr); err != nil {
		return Session{}, err
	}
	c.SetToken(tr.Token)
	return Session{Token: tr.Token, Role: tr.Role, Email: in.Email}, nil
}

// SignOut tells the server and drops the local token either way.
func (c *Client) SignOut(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/v1/auth/signout", nil, nil)
	c.SetToken("")
	return err
}
