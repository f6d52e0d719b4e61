// Package client talks to the attendance backend over its REST API. One
// Client serves the check-in machine, the ledger editor and the payroll
// reconciliation.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"attendance/console/internal/backend"
	"attendance/console/internal/calendar"
	"attendance/console/internal/payroll"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"
)

// Client is a typed client for the /api/v1 endpoints.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *slog.Logger
}

type Option func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New returns a client for the API rooted at baseURL, e.g.
// "https://shop.example.com/api/v1".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	GPS     *backend.GPS    `json:"gps"`
}

// do sends the request and returns the raw body of a successful answer.
// Every failure is a *backend.SyncError.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, &backend.SyncError{Op: op, Err: errors.Wrap(err, "encoding request")}
		}
		reader = bytes.NewReader(b)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, &backend.SyncError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &backend.SyncError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &backend.SyncError{Op: op, Status: resp.StatusCode, Err: errors.Wrap(err, "reading response")}
	}

	// Some handlers answer 2xx with an error envelope; that is a failure too.
	var env envelope
	decoded := json.Unmarshal(raw, &env) == nil
	failed := resp.StatusCode < 200 || resp.StatusCode > 299
	if failed || (decoded && env.Status == backend.StatusError) {
		se := &backend.SyncError{Op: op, Status: resp.StatusCode}
		if decoded {
			se.Message = env.Message
			se.GPS = env.GPS
		}
		c.log.Debug("backend error", "op", op, "status", resp.StatusCode, "message", se.Message)
		return nil, se
	}

	return raw, nil
}

// call sends the request and decodes the data member of the envelope into out.
func (c *Client) call(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	raw, err := c.do(ctx, op, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &backend.SyncError{Op: op, Err: errors.Wrap(err, "decoding response")}
	}
	if len(env.Data) == 0 {
		return &backend.SyncError{Op: op, Err: errors.New("response has no data")}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &backend.SyncError{Op: op, Err: errors.Wrap(err, "decoding response data")}
	}
	return nil
}

func staffQuery(staffID int, m *calendar.Month) url.Values {
	q := url.Values{}
	q.Set("staff_id", strconv.Itoa(staffID))
	if m != nil {
		q.Set("month", m.String())
	}
	return q
}

// SignIn exchanges credentials for an access token and keeps it for later
// requests.
func (c *Client) SignIn(ctx context.Context, employeeID, password string) (string, error) {
	var out struct {
		AccessToken string `json:"access_token"`
	}
	err := c.call(ctx, "sign in", http.MethodPost, "/sign-in", nil, map[string]string{
		"employee_id": employeeID,
		"password":    password,
	}, &out)
	if err != nil {
		return "", err
	}
	c.token = out.AccessToken
	return out.AccessToken, nil
}

// AttendanceStatus calls GET /attendance/status.
func (c *Client) AttendanceStatus(ctx context.Context, staffID int) (backend.AttendanceStatus, error) {
	var out backend.AttendanceStatus
	err := c.call(ctx, "attendance status", http.MethodGet, "/attendance/status", staffQuery(staffID, nil), nil, &out)
	return out, err
}

// Clock submits a check-in or check-out. An error verdict comes back as a
// *backend.SyncError carrying the backend's message and GPS check.
func (c *Client) Clock(ctx context.Context, req backend.ClockRequest) (backend.ClockVerdict, error) {
	raw, err := c.do(ctx, string(req.Action), http.MethodPost, "/attendance", nil, req)
	if err != nil {
		return backend.ClockVerdict{}, err
	}
	var v backend.ClockVerdict
	if err := json.Unmarshal(raw, &v); err != nil {
		return backend.ClockVerdict{}, &backend.SyncError{Op: string(req.Action), Err: errors.Wrap(err, "decoding verdict")}
	}
	return v, nil
}

// Attendance calls GET /attendance for the ledger rows of a month.
func (c *Client) Attendance(ctx context.Context, staffID int, m calendar.Month) ([]backend.DayRow, error) {
	var out []backend.DayRow
	err := c.call(ctx, "load attendance", http.MethodGet, "/attendance", staffQuery(staffID, &m), nil, &out)
	return out, err
}

// SaveAttendance sends a whole month in one batch.
func (c *Client) SaveAttendance(ctx context.Context, req backend.SaveRequest) error {
	_, err := c.do(ctx, "save attendance", http.MethodPost, "/attendance", nil, req)
	return err
}

// MonthlySummary calls GET /attendance/monthly-summary.
func (c *Client) MonthlySummary(ctx context.Context, staffID int, m calendar.Month) (backend.MonthlySummary, error) {
	var out backend.MonthlySummary
	err := c.call(ctx, "monthly summary", http.MethodGet, "/attendance/monthly-summary", staffQuery(staffID, &m), nil, &out)
	return out, err
}

// Holidays calls GET /holidays.
func (c *Client) Holidays(ctx context.Context, m calendar.Month) (backend.HolidayList, error) {
	q := url.Values{}
	q.Set("month", m.String())
	var out backend.HolidayList
	err := c.call(ctx, "load holidays", http.MethodGet, "/holidays", q, nil, &out)
	return out, err
}

func (c *Client) CreateHoliday(ctx context.Context, h backend.Holiday) error {
	_, err := c.do(ctx, "create holiday", http.MethodPost, "/holidays", nil, h)
	return err
}

func (c *Client) DeleteHoliday(ctx context.Context, d date.Date) error {
	_, err := c.do(ctx, "delete holiday", http.MethodDelete, "/holidays/"+d.String(), nil, nil)
	return err
}

// CalculatePayroll calls POST /payroll/calculate.
func (c *Client) CalculatePayroll(ctx context.Context, req backend.CalculateRequest) (payroll.Breakdown, error) {
	var out payroll.Breakdown
	err := c.call(ctx, "calculate payroll", http.MethodPost, "/payroll/calculate", nil, req, &out)
	return out, err
}

// Export downloads the xlsx ledger export of a month.
func (c *Client) Export(ctx context.Context, staffID int, m calendar.Month) ([]byte, error) {
	return c.do(ctx, "export attendance", http.MethodGet, "/attendance/export", staffQuery(staffID, &m), nil)
}

// Statement downloads the PDF pay statement of a month.
func (c *Client) Statement(ctx context.Context, staffID int, m calendar.Month) ([]byte, error) {
	return c.do(ctx, "pay statement", http.MethodGet, "/payroll/statement", staffQuery(staffID, &m), nil)
}
