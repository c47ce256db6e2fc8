package main

import (
	"context"

	"github.com/mathstutor/mathstutor-go/api"
	"github.com/mathstutor/mathstutor-go/core/admin"
	"github.com/mathstutor/mathstutor-go/core/user"
)

// adminBackend adapts the API client to the admin service contract: user
// creation goes through the public signup endpoint and the dashboard payload
// is converted to the admin type.
type adminBackend struct {
	*api.Client
}

var _ admin.Backend = adminBackend{}

func (b adminBackend) RegisterUser(ctx context.Context, p user.RegisterParams) (user.User, error) {
	payload, err := b.Client.Register(ctx, p)
	if err != nil {
		return user.User{}, err
	}
	return payload.User, nil
}

func (b adminBackend) AdminDashboard(ctx context.Context) (admin.DashboardData, error) {
	d, err := b.Client.AdminDashboard(ctx)
	if err != nil {
		return admin.DashboardData{}, err
	}
	return admin.DashboardData{
		TotalUsers:    d.TotalUsers,
		TotalGroups:   d.TotalGroups,
		TotalLessons:  d.TotalLessons,
		TotalTickets:  d.TotalTickets,
		ActiveLessons: d.ActiveLessons,
	}, nil
}
