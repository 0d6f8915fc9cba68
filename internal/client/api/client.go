package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/scrollinondubs/DogTinder/internal/infra/httpclient"
	"github.com/scrollinondubs/DogTinder/internal/transport/http/dto"
	httperrors "github.com/scrollinondubs/DogTinder/internal/transport/http/errors"
)

const maxResponseBytes = 2 * 1024 * 1024

// RequestError describes a failed API call. StatusCode is zero when the
// request never got a response.
type RequestError struct {
	Op         string
	StatusCode int
	Code       string
	Err        error
}

func (e *RequestError) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.StatusCode > 0 && e.Code != "":
		return fmt.Sprintf("%s: status=%d code=%s: %v", e.Op, e.StatusCode, e.Code, e.Err)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d: %v", e.Op, e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode
	}
	return 0
}

// Client talks to the Dog Tinder HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid api url: %q", baseURL)
	}

	return &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: httpclient.New(timeout),
	}, nil
}

// MergeSwipe is one ledger record as sent to the merge endpoint.
type MergeSwipe struct {
	DogID     string `json:"dogId"`
	Liked     bool   `json:"liked"`
	Timestamp int64  `json:"timestamp"`
}

type mergeRequest struct {
	Swipes []MergeSwipe `json:"swipes"`
}

type swipeRequest struct {
	DogID string `json:"dogId"`
	Liked bool   `json:"liked"`
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Signup(ctx context.Context, email, password, name string) (dto.AuthTokensResponse, error) {
	var out dto.AuthTokensResponse
	err := c.doJSON(ctx, "signup", http.MethodPost, "/v1/auth/signup", "", signupRequest{
		Email:    email,
		Password: password,
		Name:     name,
	}, &out)
	return out, err
}

func (c *Client) Login(ctx context.Context, email, password string) (dto.AuthTokensResponse, error) {
	var out dto.AuthTokensResponse
	err := c.doJSON(ctx, "login", http.MethodPost, "/v1/auth/login", "", loginRequest{
		Email:    email,
		Password: password,
	}, &out)
	return out, err
}

func (c *Client) Logout(ctx context.Context, accessToken string) error {
	return c.doJSON(ctx, "logout", http.MethodPost, "/v1/auth/logout", accessToken, nil, nil)
}

// Merge uploads anonymous swipes in one batch.
func (c *Client) Merge(ctx context.Context, accessToken string, swipes []MergeSwipe) (dto.MergeResponse, error) {
	if swipes == nil {
		swipes = []MergeSwipe{}
	}
	var out dto.MergeResponse
	err := c.doJSON(ctx, "merge swipes", http.MethodPost, "/v1/likes/merge", accessToken, mergeRequest{Swipes: swipes}, &out)
	return out, err
}

func (c *Client) Swipe(ctx context.Context, accessToken, dogID string, liked bool) error {
	var out dto.SwipeResponse
	if err := c.doJSON(ctx, "swipe", http.MethodPost, "/v1/likes", accessToken, swipeRequest{
		DogID: dogID,
		Liked: liked,
	}, &out); err != nil {
		return err
	}
	if !out.Success {
		return &RequestError{Op: "swipe", Err: errors.New("server did not confirm the swipe")}
	}
	return nil
}

// ListDogs fetches the swipe deck. exclude is only honoured for anonymous
// callers; pass an empty accessToken to browse anonymously.
func (c *Client) ListDogs(ctx context.Context, accessToken string, exclude []string) ([]dto.DogCardResponse, error) {
	path := "/v1/dogs"
	if accessToken == "" && len(exclude) > 0 {
		raw, err := json.Marshal(exclude)
		if err != nil {
			return nil, &RequestError{Op: "list dogs", Err: err}
		}
		path += "?excludeDogIds=" + url.QueryEscape(string(raw))
	}

	var out dto.DogsResponse
	if err := c.doJSON(ctx, "list dogs", http.MethodGet, path, accessToken, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) ListLiked(ctx context.Context, accessToken string) ([]dto.DogCardResponse, error) {
	var out dto.LikedDogsResponse
	if err := c.doJSON(ctx, "list liked dogs", http.MethodGet, "/v1/likes", accessToken, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) doJSON(ctx context.Context, op, method, path, accessToken string, requestBody, responseBody any) error {
	var bodyReader io.Reader
	if requestBody != nil {
		payload, err := json.Marshal(requestBody)
		if err != nil {
			return &RequestError{Op: op, Err: fmt.Errorf("marshal request body: %w", err)}
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return &RequestError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RequestError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &RequestError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(op, resp.StatusCode, raw)
	}

	if responseBody == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, responseBody); err != nil {
		return &RequestError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func statusError(op string, status int, raw []byte) error {
	var apiErr httperrors.APIError
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Code != "" {
		return &RequestError{
			Op:         op,
			StatusCode: status,
			Code:       apiErr.Code,
			Err:        errors.New(apiErr.Message),
		}
	}

	message := strings.TrimSpace(string(raw))
	if message == "" {
		message = http.StatusText(status)
	}
	return &RequestError{Op: op, StatusCode: status, Err: errors.New(message)}
}
