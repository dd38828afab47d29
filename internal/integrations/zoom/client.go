// Package zoom creates and deletes video meetings through the Zoom REST API.
package zoom

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"loan-service/internal/workflow"
	"loan-service/pkg/common"
)

const (
	DefaultBaseURL = "https://api.zoom.us/v2"
	// scheduledMeeting is Zoom's meeting type for a meeting with a fixed start.
	scheduledMeeting = 2
)

type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type createMeetingRequest struct {
	Topic     string `json:"topic"`
	Type      int    `json:"type"`
	StartTime string `json:"start_time"`
	Duration  int    `json:"duration"`
	Timezone  string `json:"timezone"`
}

type createMeetingResponse struct {
	ID      json.Number `json:"id"`
	JoinURL string      `json:"join_url"`
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *Client) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.Token}
}

func (c *Client) CreateMeeting(ctx context.Context, spec workflow.MeetingSpec) (workflow.Meeting, error) {
	payload := createMeetingRequest{
		Topic:     spec.Topic,
		Type:      scheduledMeeting,
		StartTime: spec.StartTime.UTC().Format("2006-01-02T15:04:05Z"),
		Duration:  spec.DurationMinutes,
		Timezone:  "UTC",
	}

	resp, err := common.DoJSON(ctx, c.HTTPClient, http.MethodPost, c.BaseURL+"/users/me/meetings", payload, c.headers())
	if err != nil {
		return workflow.Meeting{}, fmt.Errorf("zoom create meeting: %w", err)
	}
	if !resp.OK() {
		return workflow.Meeting{}, fmt.Errorf("zoom create meeting: %s", describe(resp))
	}

	var out createMeetingResponse
	if err := resp.Decode(&out); err != nil {
		return workflow.Meeting{}, fmt.Errorf("zoom create meeting: decoding response: %w", err)
	}
	if out.ID == "" || out.JoinURL == "" {
		return workflow.Meeting{}, fmt.Errorf("zoom create meeting: response missing id or join_url")
	}
	return workflow.Meeting{ID: out.ID.String(), JoinURL: out.JoinURL}, nil
}

// DeleteMeeting removes a meeting. A 404 is reported as ErrMeetingNotFound.
func (c *Client) DeleteMeeting(ctx context.Context, meetingID string) error {
	endpoint := c.BaseURL + "/meetings/" + url.PathEscape(meetingID)
	resp, err := common.DoJSON(ctx, c.HTTPClient, http.MethodDelete, endpoint, nil, c.headers())
	if err != nil {
		return fmt.Errorf("zoom delete meeting %s: %w", meetingID, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("zoom delete meeting %s: %w", meetingID, workflow.ErrMeetingNotFound)
	}
	if !resp.OK() {
		return fmt.Errorf("zoom delete meeting %s: %s", meetingID, describe(resp))
	}
	return nil
}

func describe(resp *common.JSONResponse) string {
	var e errorResponse
	if err := resp.Decode(&e); err == nil && e.Message != "" {
		return fmt.Sprintf("status %d: %s (code %d)", resp.StatusCode, e.Message, e.Code)
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}
