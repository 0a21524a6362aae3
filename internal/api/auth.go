package api

import (
	"context"
	"net/http"
)

func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var out LoginResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", nil, loginRequest{Email: email, Password: password}, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, error) {
	var out messageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", nil, req, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
