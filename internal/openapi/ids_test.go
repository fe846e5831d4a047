package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKebab(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"process_lead_endpoint_api_process_lead_post", "process-lead-endpoint-api-process-lead-post"},
		{"record_t7_feedback_api_board_meeting_feedback_t7_post", "record-t-7-feedback-api-board-meeting-feedback-t-7-post"},
		{"root__get", "root-get"},
		{"DYNIQ Agents API", "dyniq-agents-api"},
		{"listHTTPServers", "list-http-servers"},
		{"getUserById", "get-user-by-id"},
		{"/api/vision/status/{thread_id} GET", "api-vision-status-thread-id-get"},
		{"", ""},
		{"---", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Kebab(tt.in))
		})
	}
}

func TestHumanize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Process Lead Endpoint", "Process Lead Endpoint"},
		{"list_pending", "List Pending"},
		{"/hitl/pending", "Hitl Pending"},
		{"/api/status/{thread_id}", "Api Status Thread Id"},
		{"download brand kit PDF", "Download Brand Kit PDF"},
		{"  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Humanize(tt.in))
		})
	}
}

func TestDeriveID(t *testing.T) {
	assert.Equal(t, "list-pending-api-hitl-pending-get",
		DeriveID(Operation{OperationID: "list_pending_api_hitl_pending_get", Summary: "List Pending"}))
	assert.Equal(t, "list-pending-p-get", DeriveID(Operation{Summary: "List Pending", Path: "/p", Method: MethodGet}))
	assert.Equal(t, "health-ready-get", DeriveID(Operation{Path: "/health/ready", Method: MethodGet}))
}

func TestOperationLabel(t *testing.T) {
	assert.Equal(t, "ui to code", Operation{Summary: "ui to code", Path: "/x"}.Label())
	assert.Equal(t, "Get v2.1 status", Operation{Summary: "  Get v2.1 status ", Path: "/x"}.Label())
	assert.Equal(t, "Upload file/folder", Operation{Summary: "Upload file/folder", Path: "/x"}.Label())
	assert.Equal(t, "Health Ready", Operation{Path: "/health/ready"}.Label())
	assert.Equal(t, "/", Operation{Path: "/"}.Label())
}

func TestParseMethod(t *testing.T) {
	m, ok := ParseMethod("Post")
	assert.True(t, ok)
	assert.Equal(t, MethodPost, m)
	assert.Equal(t, "post", m.Badge())

	_, ok = ParseMethod("parameters")
	assert.False(t, ok)
}
