// Package api is the HTTP client for the MathsTutor REST backend. A single
// Client owns the request pipeline (bearer-token attachment, one-shot
// 401 refresh-and-retry, error normalization); per-resource request builders
// live in the sibling files.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/mathstutor/mathstutor-go/core"
)

type Client struct {
	baseURL string
	httpc   *http.Client
	kv      core.KeyValue
	log     core.Logger

	// Concurrent 401s share one in-flight refresh instead of each issuing
	// their own.
	refresh singleflight.Group
}

func NewClient(conf *core.Config, kv core.KeyValue, log core.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(conf.APIBaseURL, "/"),
		httpc:   &http.Client{Timeout: conf.RequestTimeout},
		kv:      kv,
		log:     log,
	}
}

// AccessToken returns the currently stored access token, if any.
func (c *Client) AccessToken(ctx context.Context) (string, bool) {
	tok, err := c.kv.Get(ctx, core.KeyAccessToken)
	if err != nil || tok == "" {
		return "", false
	}
	return tok, true
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out, false)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out, false)
}

func (c *Client) patch(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out, false)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil, false)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}, retried bool) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "api: encoding request body")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return errors.Wrap(err, "api: building request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if tok, ok := c.AccessToken(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	res, err := c.httpc.Do(req)
	if err != nil {
		return core.NewNetworkError(err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return core.NewNetworkError(err)
	}

	if res.StatusCode < http.StatusBadRequest {
		if out != nil && len(data) > 0 {
			if err := json.Unmarshal(data, out); err != nil {
				return errors.Wrapf(err, "api: decoding %s %s response", method, path)
			}
		}
		return nil
	}

	apiErr := core.NewAPIError(res.StatusCode, extractMessage(data))

	// Expired access token: refresh once and replay. Auth endpoints are
	// excluded so a bad login does not trigger a refresh loop.
	if res.StatusCode == http.StatusUnauthorized && !retried && !strings.HasPrefix(path, "/auth/") {
		if refreshErr := c.refreshAccessToken(ctx); refreshErr != nil {
			c.log.Debug("api: token refresh failed", refreshErr)
			return apiErr
		}
		return c.do(ctx, method, path, query, body, out, true)
	}
	return apiErr
}

type refreshResponse struct {
	Data struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	} `json:"data"`
}

// refreshAccessToken exchanges the stored refresh token for a new access
// token and persists it. On any failure all local credential state is
// cleared; no further automatic retry happens.
func (c *Client) refreshAccessToken(ctx context.Context) error {
	_, err, _ := c.refresh.Do("refresh", func() (interface{}, error) {
		refreshTok, err := c.kv.Get(ctx, core.KeyRefreshToken)
		if err != nil || refreshTok == "" {
			return nil, c.clearCredentials(ctx, errors.New("no refresh token stored"))
		}

		payload, _ := json.Marshal(map[string]string{"refreshToken": refreshTok})
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/refresh-token", bytes.NewReader(payload))
		if err != nil {
			return nil, c.clearCredentials(ctx, err)
		}
		req.Header.Set("Content-Type", "application/json")

		res, err := c.httpc.Do(req)
		if err != nil {
			return nil, c.clearCredentials(ctx, err)
		}
		defer res.Body.Close()

		data, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, c.clearCredentials(ctx, err)
		}
		if res.StatusCode >= http.StatusBadRequest {
			return nil, c.clearCredentials(ctx, core.NewAPIError(res.StatusCode, extractMessage(data)))
		}

		var body refreshResponse
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, c.clearCredentials(ctx, err)
		}
		if body.Data.AccessToken == "" {
			return nil, c.clearCredentials(ctx, errors.New("refresh response carried no access token"))
		}

		if err := c.kv.Set(ctx, core.KeyAccessToken, body.Data.AccessToken); err != nil {
			return nil, err
		}
		if body.Data.RefreshToken != "" {
			if err := c.kv.Set(ctx, core.KeyRefreshToken, body.Data.RefreshToken); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

func (c *Client) clearCredentials(ctx context.Context, cause error) error {
	if err := c.kv.Delete(ctx, core.KeyAccessToken, core.KeyRefreshToken, core.KeyUserData); err != nil {
		c.log.Error("api: clearing credentials", err)
	}
	return errors.Wrap(cause, "refreshing access token")
}

// extractMessage pulls a human-readable message out of an error body using
// the fixed field precedence: `message`, then `msg`.
func extractMessage(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	var body struct {
		Message string `json:"message"`
		Msg     string `json:"msg"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Msg
}

func itoa(id int) string { return strconv.Itoa(id) }
