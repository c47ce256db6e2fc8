package api

import (
	"context"
	"net/url"

	"github.com/mathstutor/mathstutor-go/core/lesson"
	"github.com/mathstutor/mathstutor-go/core/user"
)

func (c *Client) ListUsers(ctx context.Context) ([]user.User, error) {
	var res struct {
		Users []user.User `json:"users"`
	}
	if err := c.get(ctx, "/users", nil, &res); err != nil {
		return nil, err
	}
	return res.Users, nil
}

func (c *Client) GetUser(ctx context.Context, id int) (user.User, error) {
	var res struct {
		User user.User `json:"user"`
	}
	if err := c.get(ctx, "/users/"+itoa(id), nil, &res); err != nil {
		return user.User{}, err
	}
	return res.User, nil
}

func (c *Client) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	var res struct {
		User user.User `json:"user"`
	}
	if err := c.get(ctx, "/users/username/"+url.PathEscape(username), nil, &res); err != nil {
		return user.User{}, err
	}
	return res.User, nil
}

func (c *Client) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var res struct {
		User user.User `json:"user"`
	}
	if err := c.get(ctx, "/users/email/"+url.PathEscape(email), nil, &res); err != nil {
		return user.User{}, err
	}
	return res.User, nil
}

// IsSiteAdmin asks the dedicated admin-status endpoint; the flag is never
// inferred from role strings.
func (c *Client) IsSiteAdmin(ctx context.Context, id int) (bool, error) {
	var res struct {
		IsSiteAdmin bool `json:"is_site_admin"`
	}
	if err := c.get(ctx, "/users/"+itoa(id)+"/is-site-admin", nil, &res); err != nil {
		return false, err
	}
	return res.IsSiteAdmin, nil
}

func (c *Client) UserLessonRegistrations(ctx context.Context, id int) ([]lesson.Registration, error) {
	var res struct {
		Registrations []lesson.Registration `json:"registrations"`
	}
	if err := c.get(ctx, "/users/"+itoa(id)+"/lesson-registrations", nil, &res); err != nil {
		return nil, err
	}
	return res.Registrations, nil
}

func (c *Client) CreateUser(ctx context.Context, p user.CreateParams) (user.User, error) {
	var res struct {
		User user.User `json:"user"`
	}
	if err := c.post(ctx, "/users", p, &res); err != nil {
		return user.User{}, err
	}
	return res.User, nil
}

func (c *Client) UpdateUser(ctx context.Context, id int, p user.UpdateParams) (user.User, error) {
	var res struct {
		User user.User `json:"user"`
	}
	if err := c.patch(ctx, "/users/"+itoa(id), p, &res); err != nil {
		return user.User{}, err
	}
	return res.User, nil
}

// PromoteToAdmin flips a user's site-admin flag; admin only.
func (c *Client) PromoteToAdmin(ctx context.Context, id int, isSiteAdmin bool) error {
	return c.patch(ctx, "/admin/users/"+itoa(id), user.PromoteParams{IsSiteAdmin: isSiteAdmin}, nil)
}

func (c *Client) DeleteUser(ctx context.Context, id int) error {
	return c.delete(ctx, "/users/"+itoa(id))
}

// AdminDashboardData is the consolidated aggregate served to the admin
// dashboard.
type AdminDashboardData struct {
	TotalUsers    int `json:"total_users"`
	TotalGroups   int `json:"total_groups"`
	TotalLessons  int `json:"total_lessons"`
	TotalTickets  int `json:"total_tickets"`
	ActiveLessons int `json:"active_lessons"`
}

func (c *Client) AdminDashboard(ctx context.Context) (AdminDashboardData, error) {
	var res AdminDashboardData
	if err := c.get(ctx, "/admin/dashboard", nil, &res); err != nil {
		return AdminDashboardData{}, err
	}
	return res, nil
}
