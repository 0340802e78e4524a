// Package odoo downloads attendance and leave exports from an Odoo instance
// and parses the resulting spreadsheets.
package odoo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	exportPath    = "/web/export/xlsx"
	maxExportSize = 20 * 1024 * 1024
)

var (
	// ErrUnauthorized means the session expired or the CSRF token is stale.
	ErrUnauthorized = errors.New("odoo: authentication failed, session id or csrf token expired")
	// ErrInvalidCredentials is returned before any request for malformed credentials.
	ErrInvalidCredentials = errors.New("odoo: invalid credentials")
	// ErrNotSpreadsheet means the export answered with something other than XLSX,
	// typically the login page.
	ErrNotSpreadsheet = errors.New("odoo: export did not return a spreadsheet")
)

// HTTPError is any other non-200 answer of the export endpoint.
type HTTPError struct {
	Model      string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("odoo: HTTP %d while exporting %s", e.StatusCode, e.Model)
}

type Credentials struct {
	SessionID string
	CSRFToken string
	UID       string
}

// Validate applies the same format checks the web client implies: a long
// alphanumeric session id, a long csrf token and a numeric user id.
func (c Credentials) Validate() error {
	if c.SessionID == "" || c.CSRFToken == "" || c.UID == "" {
		return fmt.Errorf("%w: session id, csrf token and uid are required", ErrInvalidCredentials)
	}
	if len(c.SessionID) < 20 || !isAlnum(c.SessionID) {
		return fmt.Errorf("%w: session id must be a long alphanumeric string", ErrInvalidCredentials)
	}
	if len(c.CSRFToken) < 20 {
		return fmt.Errorf("%w: csrf token is too short", ErrInvalidCredentials)
	}
	if _, err := strconv.Atoi(c.UID); err != nil {
		return fmt.Errorf("%w: uid must be a number", ErrInvalidCredentials)
	}
	return nil
}

func isAlnum(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	timezone   string
	logger     *logrus.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithTimezone sets the tz Odoo renders datetimes in.
func WithTimezone(tz string) Option {
	return func(cl *Client) { cl.timezone = tz }
}

func WithLogger(l *logrus.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

func NewClient(baseURL string, opts ...Option) *Client {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		timezone:   "Europe/Berlin",
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type exportField struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Store bool   `json:"store"`
	Type  string `json:"type"`
}

type exportRequest struct {
	Model        string         `json:"model"`
	Fields       []exportField  `json:"fields"`
	IDs          bool           `json:"ids"`
	Domain       []any          `json:"domain"`
	GroupBy      []string       `json:"groupby"`
	Context      map[string]any `json:"context"`
	ImportCompat bool           `json:"import_compat"`
}

var attendanceFields = []exportField{
	{Name: "employee_id", Label: "Mitarbeiter", Store: true, Type: "many2one"},
	{Name: "check_in", Label: ColCheckIn, Store: true, Type: "datetime"},
	{Name: "check_out", Label: ColCheckOut, Store: true, Type: "datetime"},
	{Name: "worked_hours", Label: ColWorkedHours, Store: true, Type: "float"},
}

var leaveFields = []exportField{
	{Name: "holiday_status_id", Label: ColLeaveType, Store: true, Type: "many2one"},
	{Name: "name", Label: ColDescription, Store: false, Type: "char"},
	{Name: "date_from", Label: ColStart, Store: true, Type: "datetime"},
	{Name: "date_to", Label: ColEnd, Store: true, Type: "datetime"},
	{Name: "duration_display", Label: "Angefragte (Tage/Stunden)", Store: true, Type: "char"},
	{Name: "state", Label: ColStatus, Store: true, Type: "selection"},
}

// ExportAttendance downloads the hr.attendance list as XLSX bytes.
func (c *Client) ExportAttendance(ctx context.Context, creds Credentials) ([]byte, error) {
	return c.export(ctx, creds, exportRequest{
		Model:  "hr.attendance",
		Fields: attendanceFields,
		Domain: []any{},
	})
}

// ExportLeaves downloads the user's hr.leave list as XLSX bytes.
func (c *Client) ExportLeaves(ctx context.Context, creds Credentials) ([]byte, error) {
	uid, _ := strconv.Atoi(creds.UID)
	return c.export(ctx, creds, exportRequest{
		Model:  "hr.leave",
		Fields: leaveFields,
		Domain: []any{[]any{"user_id", "=", uid}},
	})
}

func (c *Client) export(ctx context.Context, creds Credentials, payload exportRequest) ([]byte, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	uid, _ := strconv.Atoi(creds.UID)
	payload.IDs = false
	payload.GroupBy = []string{}
	payload.Context = map[string]any{
		"lang":                "de_DE",
		"tz":                  c.timezone,
		"uid":                 uid,
		"allowed_company_ids": []int{1},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("odoo: encode export request: %w", err)
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("data", string(data)); err != nil {
		return nil, err
	}
	if err := w.WriteField("csrf_token", creds.CSRFToken); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+exportPath, &body)
	if err != nil {
		return nil, fmt.Errorf("odoo: build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "*/*")
	req.AddCookie(&http.Cookie{Name: "session_id", Value: creds.SessionID})
	req.AddCookie(&http.Cookie{Name: "cids", Value: "1"})

	log := c.logger.WithFields(logrus.Fields{"model": payload.Model, "uid": creds.UID})
	log.Debug("Requesting Odoo export")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("odoo: export %s: %w", payload.Model, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		log.WithField("status", resp.StatusCode).Warn("Odoo rejected credentials")
		return nil, ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return nil, &HTTPError{Model: payload.Model, StatusCode: resp.StatusCode}
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxExportSize))
	if err != nil {
		return nil, fmt.Errorf("odoo: read export %s: %w", payload.Model, err)
	}
	// xlsx is a zip container
	if !bytes.HasPrefix(content, []byte("PK")) {
		log.Warn("Odoo export returned a non-spreadsheet body")
		return nil, ErrNotSpreadsheet
	}

	log.WithField("bytes", len(content)).Info("Odoo export downloaded")
	return content, nil
}
