// Package apiclient is a read-through client for the HRMS backend REST API.
// Every method is a single HTTP call; nothing is cached or retried.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/phillip-england/hrmslite/internal/hrms"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8000"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client. The default sets no timeout;
// callers bound calls with their context.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) ListEmployees(ctx context.Context) ([]hrms.Employee, error) {
	var out []hrms.Employee
	if err := c.do(ctx, http.MethodGet, "/api/employees/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetEmployee(ctx context.Context, employeeID string) (*hrms.Employee, error) {
	var out hrms.Employee
	if err := c.do(ctx, http.MethodGet, "/api/employees/"+url.PathEscape(employeeID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateEmployee(ctx context.Context, in hrms.EmployeeInput) (*hrms.Employee, error) {
	var out hrms.Employee
	if err := c.do(ctx, http.MethodPost, "/api/employees/", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteEmployee(ctx context.Context, employeeID string) error {
	return c.do(ctx, http.MethodDelete, "/api/employees/"+url.PathEscape(employeeID), nil, nil, nil)
}

func (c *Client) ListAttendance(ctx context.Context, filter hrms.AttendanceFilter) ([]hrms.AttendanceRecord, error) {
	query := rangeQuery(filter.DateRange)
	if filter.EmployeeID != "" {
		query.Set("employee_id", filter.EmployeeID)
	}
	var out []hrms.AttendanceRecord
	if err := c.do(ctx, http.MethodGet, "/api/attendance/", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListEmployeeAttendance(ctx context.Context, employeeID string, r hrms.DateRange) ([]hrms.AttendanceRecord, error) {
	var out []hrms.AttendanceRecord
	path := "/api/attendance/employee/" + url.PathEscape(employeeID)
	if err := c.do(ctx, http.MethodGet, path, rangeQuery(r), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetAttendanceSummary(ctx context.Context, employeeID string) (*hrms.AttendanceSummary, error) {
	var out hrms.AttendanceSummary
	path := "/api/attendance/employee/" + url.PathEscape(employeeID) + "/summary"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MarkAttendance(ctx context.Context, in hrms.AttendanceInput) (*hrms.AttendanceRecord, error) {
	var out hrms.AttendanceRecord
	if err := c.do(ctx, http.MethodPost, "/api/attendance/", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetDashboardSummary(ctx context.Context) (*hrms.DashboardSummary, error) {
	var out hrms.DashboardSummary
	if err := c.do(ctx, http.MethodGet, "/api/dashboard/summary", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health pings the backend health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil, nil)
}

func rangeQuery(r hrms.DateRange) url.Values {
	query := url.Values{}
	if r.StartDate != "" {
		query.Set("start_date", r.StartDate)
	}
	if r.EndDate != "" {
		query.Set("end_date", r.EndDate)
	}
	return query
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		bodyBytes, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("apiclient: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("apiclient: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("apiclient: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("apiclient: read %s %s: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp.StatusCode, respBody)
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("apiclient: decode %s %s: %w", method, path, err)
	}
	return nil
}
