package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/mathstutor/mathstutor-go/core/lesson"
)

// ListLessons fetches a page of lessons. SortBy must be one of the backend's
// supported sort fields; the lesson query layer compensates for the rest.
func (c *Client) ListLessons(ctx context.Context, p lesson.ListParams) (lesson.ListResult, error) {
	query := url.Values{}
	if p.SortBy != "" {
		query.Set("sort_by", p.SortBy)
	}
	if p.Order != "" {
		query.Set("order", p.Order)
	}
	if p.Limit > 0 {
		query.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Page > 0 {
		query.Set("page", strconv.Itoa(p.Page))
	}
	if p.Subject != "" && p.Subject != "All" {
		query.Set("subject", p.Subject)
	}

	var res lesson.ListResult
	if err := c.get(ctx, "/lessons", query, &res); err != nil {
		return lesson.ListResult{}, err
	}
	if res.TotalPages == 0 {
		res.TotalPages = 1
	}
	return res, nil
}

func (c *Client) PastLessons(ctx context.Context) ([]lesson.Lesson, error) {
	var res struct {
		Lessons []lesson.Lesson `json:"lessons"`
	}
	if err := c.get(ctx, "/lessons/past", nil, &res); err != nil {
		return nil, err
	}
	return res.Lessons, nil
}

func (c *Client) UpcomingLessons(ctx context.Context) ([]lesson.Lesson, error) {
	var res struct {
		Lessons []lesson.Lesson `json:"lessons"`
	}
	if err := c.get(ctx, "/lessons/upcoming", nil, &res); err != nil {
		return nil, err
	}
	return res.Lessons, nil
}

func (c *Client) LessonSubjects(ctx context.Context) ([]lesson.Subject, error) {
	var res struct {
		Subjects []lesson.Subject `json:"subjects"`
	}
	if err := c.get(ctx, "/lessons/subjects", nil, &res); err != nil {
		return nil, err
	}
	return res.Subjects, nil
}

func (c *Client) LessonSubjectByName(ctx context.Context, name string) (lesson.Subject, error) {
	var res struct {
		Subject lesson.Subject `json:"subject"`
	}
	if err := c.get(ctx, "/lessons/subjects/"+url.PathEscape(name), nil, &res); err != nil {
		return lesson.Subject{}, err
	}
	return res.Subject, nil
}

func (c *Client) GetLesson(ctx context.Context, id int) (lesson.Lesson, error) {
	var res struct {
		Lesson lesson.Lesson `json:"lesson"`
	}
	if err := c.get(ctx, "/lessons/"+itoa(id), nil, &res); err != nil {
		return lesson.Lesson{}, err
	}
	return res.Lesson, nil
}

func (c *Client) LessonRegistrations(ctx context.Context, lessonID int) ([]lesson.Registration, error) {
	var res struct {
		Registrations []lesson.Registration `json:"registrations"`
	}
	if err := c.get(ctx, "/lessons/"+itoa(lessonID)+"/registrations", nil, &res); err != nil {
		return nil, err
	}
	return res.Registrations, nil
}

func (c *Client) LessonAvailability(ctx context.Context, lessonID int) (lesson.Availability, error) {
	var res lesson.Availability
	if err := c.get(ctx, "/lessons/"+itoa(lessonID)+"/availability", nil, &res); err != nil {
		return lesson.Availability{}, err
	}
	return res, nil
}

func (c *Client) CreateLesson(ctx context.Context, p lesson.CreateParams) (lesson.Lesson, error) {
	var res struct {
		Lesson lesson.Lesson `json:"lesson"`
	}
	if err := c.post(ctx, "/lessons", p, &res); err != nil {
		return lesson.Lesson{}, err
	}
	return res.Lesson, nil
}

func (c *Client) UpdateLesson(ctx context.Context, id int, p lesson.UpdateParams) (lesson.Lesson, error) {
	var res struct {
		Lesson lesson.Lesson `json:"lesson"`
	}
	if err := c.patch(ctx, "/lessons/"+itoa(id), p, &res); err != nil {
		return lesson.Lesson{}, err
	}
	return res.Lesson, nil
}

func (c *Client) DeleteLesson(ctx context.Context, id int) error {
	return c.delete(ctx, "/lessons/"+itoa(id))
}

func (c *Client) RegisterForLesson(ctx context.Context, lessonID, userID int) (lesson.Registration, error) {
	var res struct {
		Registration lesson.Registration `json:"registration"`
	}
	body := map[string]int{"user_id": userID}
	if err := c.post(ctx, "/lessons/"+itoa(lessonID)+"/register", body, &res); err != nil {
		return lesson.Registration{}, err
	}
	return res.Registration, nil
}

func (c *Client) CancelRegistration(ctx context.Context, registrationID int) error {
	return c.patch(ctx, "/lessons/registrations/"+itoa(registrationID)+"/cancel", nil, nil)
}

// IsUserRegistered reports whether the user holds an active registration for
// the lesson.
func (c *Client) IsUserRegistered(ctx context.Context, lessonID, userID int) (bool, error) {
	regs, err := c.LessonRegistrations(ctx, lessonID)
	if err != nil {
		return false, err
	}
	for _, reg := range regs {
		if reg.UserID == userID && reg.Status == lesson.RegistrationActive {
			return true, nil
		}
	}
	return false, nil
}
