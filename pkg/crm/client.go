// Package crm is a client for the CRM backend's REST API. One Client is
// created per MCP connection and scoped to a single tenant location.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the public CRM API endpoint.
const DefaultBaseURL = "https://services.leadconnectorhq.com"

// apiVersion is the date-pinned API version header the backend requires.
const apiVersion = "2021-07-28"

const requestTimeout = 30 * time.Second

// Client talks to the CRM REST API on behalf of one tenant.
type Client struct {
	baseURL    string
	token      string
	locationID string
	http       *http.Client
	log        zerolog.Logger
}

// New creates a Client for one location. The token is passed through to the
// backend on every request; the backend is the credential verifier.
func New(baseURL, token, locationID string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		locationID: locationID,
		http:       &http.Client{Timeout: requestTimeout},
		log:        log.With().Str("component", "crm").Str("location_id", locationID).Logger(),
	}
}

// LocationID returns the tenant location this client is scoped to.
func (c *Client) LocationID() string {
	return c.locationID
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Version", apiVersion)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: reading response body: %w", method, path, err)
	}
	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("CRM API request")
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: http %d: %s", method, path, resp.StatusCode, truncate(data, 300))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%s %s: decoding response: %w", method, path, err)
		}
	}
	return nil
}

func truncate(data []byte, max int) string {
	if len(data) <= max {
		return string(data)
	}
	return string(data[:max]) + "..."
}

// SearchContacts fetches one page of contacts. searchAfter is the opaque
// cursor from the previous page, nil for the first page.
func (c *Client) SearchContacts(ctx context.Context, pageSize int, searchAfter []any) (*ContactSearchResponse, error) {
	body := map[string]any{
		"locationId": c.locationID,
		"pageLimit":  pageSize,
	}
	if len(searchAfter) > 0 {
		body["searchAfter"] = searchAfter
	}
	var resp ContactSearchResponse
	if err := c.doJSON(ctx, http.MethodPost, "/contacts/search", nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchOpportunities fetches one page of opportunities, optionally filtered
// to a pipeline stage. page carries the offset markers from the previous
// page's meta, zero-valued for the first page.
func (c *Client) SearchOpportunities(ctx context.Context, pageSize int, stageID string, page OpportunityPage) (*OpportunitySearchResponse, error) {
	q := url.Values{}
	q.Set("location_id", c.locationID)
	q.Set("limit", strconv.Itoa(pageSize))
	if stageID != "" {
		q.Set("pipeline_stage_id", stageID)
	}
	if page.StartAfter != "" {
		q.Set("startAfter", page.StartAfter)
	}
	if page.StartAfterID != "" {
		q.Set("startAfterId", page.StartAfterID)
	}
	var resp OpportunitySearchResponse
	if err := c.doJSON(ctx, http.MethodGet, "/opportunities/search", q, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchConversations fetches up to limit conversations for a contact,
// newest activity first.
func (c *Client) SearchConversations(ctx context.Context, contactID string, limit int) ([]Conversation, error) {
	q := url.Values{}
	q.Set("locationId", c.locationID)
	q.Set("contactId", contactID)
	q.Set("limit", strconv.Itoa(limit))
	var resp struct {
		Conversations []Conversation `json:"conversations"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/conversations/search", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Conversations, nil
}

// GetAppointments lists a contact's calendar events.
func (c *Client) GetAppointments(ctx context.Context, contactID string) ([]Appointment, error) {
	var resp struct {
		Events []Appointment `json:"events"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/contacts/"+contactID+"/appointments", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// GetNotes lists a contact's notes.
func (c *Client) GetNotes(ctx context.Context, contactID string) ([]Note, error) {
	var resp struct {
		Notes []Note `json:"notes"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/contacts/"+contactID+"/notes", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Notes, nil
}

// GetTasks lists a contact's tasks.
func (c *Client) GetTasks(ctx context.Context, contactID string) ([]Task, error) {
	var resp struct {
		Tasks []Task `json:"tasks"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/contacts/"+contactID+"/tasks", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// GetContact fetches a single contact by id.
func (c *Client) GetContact(ctx context.Context, contactID string) (*Contact, error) {
	var resp struct {
		Contact Contact `json:"contact"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/contacts/"+contactID, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Contact, nil
}

// CreateContact creates a contact from the given profile fields.
func (c *Client) CreateContact(ctx context.Context, fields map[string]any) (*Contact, error) {
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["locationId"] = c.locationID
	var resp struct {
		Contact Contact `json:"contact"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/contacts/", nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp.Contact, nil
}

// UpdateContact updates profile fields on an existing contact.
func (c *Client) UpdateContact(ctx context.Context, contactID string, fields map[string]any) (*Contact, error) {
	var resp struct {
		Contact Contact `json:"contact"`
	}
	if err := c.doJSON(ctx, http.MethodPut, "/contacts/"+contactID, nil, fields, &resp); err != nil {
		return nil, err
	}
	return &resp.Contact, nil
}

// DeleteContact removes a contact.
func (c *Client) DeleteContact(ctx context.Context, contactID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/contacts/"+contactID, nil, nil, nil)
}

// CreateNote attaches a note to a contact.
func (c *Client) CreateNote(ctx context.Context, contactID, body string) (*Note, error) {
	var resp struct {
		Note Note `json:"note"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/contacts/"+contactID+"/notes", nil, map[string]any{"body": body}, &resp); err != nil {
		return nil, err
	}
	return &resp.Note, nil
}

// CreateTask attaches a task to a contact. dueDate may be empty.
func (c *Client) CreateTask(ctx context.Context, contactID, title, taskBody, dueDate string) (*Task, error) {
	payload := map[string]any{
		"title":     title,
		"completed": false,
	}
	if taskBody != "" {
		payload["body"] = taskBody
	}
	if dueDate != "" {
		payload["dueDate"] = dueDate
	}
	var resp struct {
		Task Task `json:"task"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/contacts/"+contactID+"/tasks", nil, payload, &resp); err != nil {
		return nil, err
	}
	return &resp.Task, nil
}

// GetOpportunity fetches a single opportunity by id.
func (c *Client) GetOpportunity(ctx context.Context, opportunityID string) (*Opportunity, error) {
	var resp struct {
		Opportunity Opportunity `json:"opportunity"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/opportunities/"+opportunityID, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Opportunity, nil
}

// UpdateOpportunityStatus changes an opportunity's status
// (open, won, lost, abandoned).
func (c *Client) UpdateOpportunityStatus(ctx context.Context, opportunityID, status string) error {
	return c.doJSON(ctx, http.MethodPut, "/opportunities/"+opportunityID+"/status", nil, map[string]any{"status": status}, nil)
}

// GetPipelines lists the tenant's sales pipelines with their stages.
func (c *Client) GetPipelines(ctx context.Context) ([]Pipeline, error) {
	q := url.Values{}
	q.Set("locationId", c.locationID)
	var resp struct {
		Pipelines []Pipeline `json:"pipelines"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/opportunities/pipelines", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Pipelines, nil
}

// GetCalendars lists the tenant's calendars.
func (c *Client) GetCalendars(ctx context.Context) ([]Calendar, error) {
	q := url.Values{}
	q.Set("locationId", c.locationID)
	var resp struct {
		Calendars []Calendar `json:"calendars"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/calendars/", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Calendars, nil
}

// GetCalendarEvents lists events on one calendar between two instants,
// given as epoch milliseconds.
func (c *Client) GetCalendarEvents(ctx context.Context, calendarID string, startMillis, endMillis int64) ([]Appointment, error) {
	q := url.Values{}
	q.Set("locationId", c.locationID)
	q.Set("calendarId", calendarID)
	q.Set("startTime", strconv.FormatInt(startMillis, 10))
	q.Set("endTime", strconv.FormatInt(endMillis, 10))
	var resp struct {
		Events []Appointment `json:"events"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/calendars/events", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// SendMessage sends an outbound message (SMS or Email) to a contact.
func (c *Client) SendMessage(ctx context.Context, contactID, channel, message string) (string, error) {
	var resp struct {
		MessageID string `json:"messageId"`
	}
	payload := map[string]any{
		"type":      channel,
		"contactId": contactID,
		"message":   message,
	}
	if err := c.doJSON(ctx, http.MethodPost, "/conversations/messages", nil, payload, &resp); err != nil {
		return "", err
	}
	return resp.MessageID, nil
}

// ListProducts lists the tenant's products.
func (c *Client) ListProducts(ctx context.Context, limit int) ([]Product, error) {
	q := url.Values{}
	q.Set("locationId", c.locationID)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var resp struct {
		Products []Product `json:"products"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/products/", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}
