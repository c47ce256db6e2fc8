package api

import (
	"context"
	"net/url"

	"github.com/mathstutor/mathstutor-go/core"
	"github.com/mathstutor/mathstutor-go/core/group"
)

func (c *Client) ListGroups(ctx context.Context) ([]group.Group, error) {
	var res struct {
		Groups []group.Group `json:"groups"`
	}
	if err := c.get(ctx, "/groups", nil, &res); err != nil {
		return nil, err
	}
	return res.Groups, nil
}

func (c *Client) GetGroup(ctx context.Context, id int) (group.Group, error) {
	var res struct {
		Group group.Group `json:"group"`
	}
	if err := c.get(ctx, "/groups/"+itoa(id), nil, &res); err != nil {
		return group.Group{}, err
	}
	return res.Group, nil
}

func (c *Client) GetGroupByName(ctx context.Context, name string) (group.Group, error) {
	var res struct {
		Group group.Group `json:"group"`
	}
	if err := c.get(ctx, "/groups/name/"+url.PathEscape(name), nil, &res); err != nil {
		return group.Group{}, err
	}
	return res.Group, nil
}

func (c *Client) GroupMembers(ctx context.Context, groupID int) ([]group.Member, error) {
	var res struct {
		Members []group.Member `json:"members"`
	}
	if err := c.get(ctx, "/groups/"+itoa(groupID)+"/members", nil, &res); err != nil {
		return nil, err
	}
	return res.Members, nil
}

func (c *Client) AllGroupMembers(ctx context.Context) ([]group.Member, error) {
	var res struct {
		Members []group.Member `json:"group_members"`
	}
	if err := c.get(ctx, "/groups/members", nil, &res); err != nil {
		return nil, err
	}
	return res.Members, nil
}

func (c *Client) GetGroupMember(ctx context.Context, memberID int) (group.Member, error) {
	var res struct {
		Member group.Member `json:"member"`
	}
	if err := c.get(ctx, "/groups/members/"+itoa(memberID), nil, &res); err != nil {
		return group.Member{}, err
	}
	return res.Member, nil
}

func (c *Client) MemberRole(ctx context.Context, userID int) (string, error) {
	var res struct {
		Role string `json:"role"`
	}
	if err := c.get(ctx, "/groups/members/"+itoa(userID)+"/role", nil, &res); err != nil {
		return "", err
	}
	return res.Role, nil
}

// MembershipsByUser lists all group memberships a user holds. A 404 means
// the user simply belongs to no groups and yields an empty list, not an
// error.
func (c *Client) MembershipsByUser(ctx context.Context, userID int) ([]group.Member, error) {
	var res struct {
		Members []group.Member `json:"group_members"`
	}
	if err := c.get(ctx, "/groups/members/user/"+itoa(userID), nil, &res); err != nil {
		if core.IsNotFound(err) {
			return []group.Member{}, nil
		}
		return nil, err
	}
	return res.Members, nil
}

func (c *Client) CreateGroup(ctx context.Context, p group.CreateParams) (group.Group, error) {
	var res struct {
		Group group.Group `json:"group"`
	}
	if err := c.post(ctx, "/groups", p, &res); err != nil {
		return group.Group{}, err
	}
	return res.Group, nil
}

func (c *Client) UpdateGroup(ctx context.Context, id int, name string) (group.Group, error) {
	var res struct {
		Group group.Group `json:"group"`
	}
	if err := c.patch(ctx, "/groups/"+itoa(id), map[string]string{"name": name}, &res); err != nil {
		return group.Group{}, err
	}
	return res.Group, nil
}

func (c *Client) DeleteGroup(ctx context.Context, id int) error {
	return c.delete(ctx, "/groups/"+itoa(id))
}

func (c *Client) AddGroupMember(ctx context.Context, p group.AddMemberParams) (group.Member, error) {
	var res struct {
		Member group.Member `json:"member"`
	}
	if err := c.post(ctx, "/groups/members", p, &res); err != nil {
		return group.Member{}, err
	}
	return res.Member, nil
}

func (c *Client) RemoveGroupMember(ctx context.Context, groupID, memberID int) error {
	return c.delete(ctx, "/groups/"+itoa(groupID)+"/members/"+itoa(memberID))
}
