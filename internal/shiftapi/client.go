// Package shiftapi 是 REST API 的 HTTP 客户端，供 web 前端调用
package shiftapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sysu-ecnc-dev/shift-board/internal/domain"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// WithToken 返回一个携带登录凭证的客户端副本
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

type ShiftsResult struct {
	Results []domain.Shift `json:"results"`
}

type ShiftInput struct {
	Name      string `json:"name"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Login 登录并返回 API 下发的 token
func (c *Client) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	body := map[string]string{"username": username, "password": password}

	user := &domain.User{}
	resp, err := c.do(ctx, http.MethodPost, "/auth/login", body, user)
	if err != nil {
		return "", nil, err
	}

	for _, cookie := range resp.Cookies() {
		if cookie.Name == domain.AuthCookieName && cookie.Value != "" {
			return cookie.Value, user, nil
		}
	}

	return "", nil, errors.New("login response carries no token")
}

func (c *Client) GetShifts(ctx context.Context, week, year int) (*ShiftsResult, error) {
	query := url.Values{}
	query.Set("week", strconv.Itoa(week))
	query.Set("year", strconv.Itoa(year))

	result := &ShiftsResult{}
	if _, err := c.do(ctx, http.MethodGet, "/shifts?"+query.Encode(), nil, result); err != nil {
		return nil, err
	}
	if result.Results == nil {
		result.Results = []domain.Shift{}
	}

	return result, nil
}

func (c *Client) GetShift(ctx context.Context, id string) (*domain.Shift, error) {
	shift := &domain.Shift{}
	if _, err := c.do(ctx, http.MethodGet, "/shifts/"+url.PathEscape(id), nil, shift); err != nil {
		return nil, err
	}

	return shift, nil
}

func (c *Client) CreateShift(ctx context.Context, input ShiftInput) (*domain.Shift, error) {
	shift := &domain.Shift{}
	if _, err := c.do(ctx, http.MethodPost, "/shifts", input, shift); err != nil {
		return nil, err
	}

	return shift, nil
}

func (c *Client) UpdateShift(ctx context.Context, id string, input ShiftInput) (*domain.Shift, error) {
	shift := &domain.Shift{}
	if _, err := c.do(ctx, http.MethodPatch, "/shifts/"+url.PathEscape(id), input, shift); err != nil {
		return nil, err
	}

	return shift, nil
}

func (c *Client) DeleteShiftByID(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/shifts/"+url.PathEscape(id), nil, nil)
	return err
}

func (c *Client) PublishWeek(ctx context.Context, weekID string) error {
	_, err := c.do(ctx, http.MethodPost, "/weeks/"+url.PathEscape(weekID)+"/publish", nil, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.AddCookie(&http.Cookie{Name: domain.AuthCookieName, Value: c.token})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("unexpected response from %s %s", method, path)}
	}

	if resp.StatusCode != http.StatusOK || !env.Success {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, err
		}
	}

	return resp, nil
}
