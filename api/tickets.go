package api

import (
	"context"
	"net/url"

	"github.com/mathstutor/mathstutor-go/core/ticket"
)

func (c *Client) ListTickets(ctx context.Context) ([]ticket.Ticket, error) {
	var res struct {
		Tickets []ticket.Ticket `json:"tickets"`
	}
	if err := c.get(ctx, "/tickets", nil, &res); err != nil {
		return nil, err
	}
	return res.Tickets, nil
}

func (c *Client) GetTicket(ctx context.Context, id int) (ticket.Ticket, error) {
	var res struct {
		Ticket ticket.Ticket `json:"ticket"`
	}
	if err := c.get(ctx, "/tickets/"+itoa(id), nil, &res); err != nil {
		return ticket.Ticket{}, err
	}
	return res.Ticket, nil
}

func (c *Client) UserTickets(ctx context.Context, userID int) ([]ticket.Ticket, error) {
	var res struct {
		Tickets []ticket.Ticket `json:"tickets"`
	}
	if err := c.get(ctx, "/tickets/user/"+itoa(userID), nil, &res); err != nil {
		return nil, err
	}
	return res.Tickets, nil
}

func (c *Client) LessonTickets(ctx context.Context, lessonID int) ([]ticket.Ticket, error) {
	var res struct {
		Tickets []ticket.Ticket `json:"tickets"`
	}
	if err := c.get(ctx, "/tickets/lesson/"+itoa(lessonID), nil, &res); err != nil {
		return nil, err
	}
	return res.Tickets, nil
}

func (c *Client) VerifyTicket(ctx context.Context, code string) (ticket.VerifiedTicket, error) {
	var res struct {
		Ticket ticket.VerifiedTicket `json:"ticket"`
	}
	if err := c.get(ctx, "/tickets/verify/"+url.PathEscape(code), nil, &res); err != nil {
		return ticket.VerifiedTicket{}, err
	}
	return res.Ticket, nil
}

func (c *Client) CreateTicket(ctx context.Context, p ticket.CreateParams) (ticket.Ticket, error) {
	var res struct {
		Ticket ticket.Ticket `json:"ticket"`
	}
	if err := c.post(ctx, "/tickets", p, &res); err != nil {
		return ticket.Ticket{}, err
	}
	return res.Ticket, nil
}

// UseTicket marks a ticket as used at the door.
func (c *Client) UseTicket(ctx context.Context, code string) (ticket.Ticket, error) {
	var res struct {
		Ticket ticket.Ticket `json:"ticket"`
	}
	if err := c.post(ctx, "/tickets/use/"+url.PathEscape(code), nil, &res); err != nil {
		return ticket.Ticket{}, err
	}
	return res.Ticket, nil
}

func (c *Client) UpdateTicket(ctx context.Context, id int, p ticket.UpdateParams) (ticket.Ticket, error) {
	var res struct {
		Ticket ticket.Ticket `json:"ticket"`
	}
	if err := c.patch(ctx, "/tickets/"+itoa(id), p, &res); err != nil {
		return ticket.Ticket{}, err
	}
	return res.Ticket, nil
}

func (c *Client) DeleteTicket(ctx context.Context, id int) error {
	return c.delete(ctx, "/tickets/"+itoa(id))
}

// HasUserPaidForLesson reports whether the user holds a paid ticket for the
// lesson. Newer backends answer with a `hasUserPaid` field; older ones
// return the raw ticket list, which is scanned as a fallback.
func (c *Client) HasUserPaidForLesson(ctx context.Context, userID, lessonID int) (bool, error) {
	var res struct {
		HasUserPaid *bool           `json:"hasUserPaid"`
		Tickets     []ticket.Ticket `json:"tickets"`
	}
	if err := c.get(ctx, "/tickets/user/"+itoa(userID)+"/lesson/"+itoa(lessonID), nil, &res); err != nil {
		return false, err
	}
	if res.HasUserPaid != nil {
		return *res.HasUserPaid, nil
	}
	for _, t := range res.Tickets {
		if t.Paid {
			return true, nil
		}
	}
	return false, nil
}
