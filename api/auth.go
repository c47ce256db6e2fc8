package api

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mathstutor/mathstutor-go/core/user"
)

// AuthPayload is the token pair plus the user record returned by the auth
// endpoints. Fields like the site-admin flag may be absent from the login
// payload; callers re-fetch the full user record to pick them up.
type AuthPayload struct {
	User         user.User `json:"user"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
}

type authResponse struct {
	Status string      `json:"status"`
	Data   AuthPayload `json:"data"`
}

func (c *Client) Register(ctx context.Context, p user.RegisterParams) (AuthPayload, error) {
	var res authResponse
	if err := c.post(ctx, "/auth/register", p, &res); err != nil {
		return AuthPayload{}, err
	}
	return res.Data, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (AuthPayload, error) {
	body := map[string]string{"username": username, "password": password}
	var res authResponse
	if err := c.post(ctx, "/auth/login", body, &res); err != nil {
		return AuthPayload{}, err
	}
	if res.Data.AccessToken == "" {
		return AuthPayload{}, errors.New("invalid response from server")
	}
	return res.Data, nil
}

// Logout invalidates the refresh token server-side.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	return c.post(ctx, "/auth/logout", map[string]string{"refreshToken": refreshToken}, nil)
}
