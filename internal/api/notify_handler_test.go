package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"resumesmith/internal/worker"
)

func TestDecodeExportEvent_WrapsTypedMessage(t *testing.T) {
	payload, err := json.Marshal(worker.ExportNotifyMessage{
		Status:        "completed",
		Kind:          "pdf",
		ResumeID:      7,
		CorrelationID: "corr-1",
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	event, err := decodeExportEvent(payload)
	if err != nil {
		t.Fatalf("decodeExportEvent: %v", err)
	}
	if event.Type != "export" {
		t.Fatalf("event type = %q, want export", event.Type)
	}
	if event.Kind != "pdf" || event.Status != "completed" || event.ResumeID != 7 {
		t.Fatalf("event fields not carried over: %+v", event)
	}

	// 信封序列化后字段应与内嵌消息平铺在同一层。
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if flat["type"] != "export" || flat["kind"] != "pdf" || flat["correlation_id"] != "corr-1" {
		t.Fatalf("flattened event missing fields: %v", flat)
	}
}

func TestDecodeExportEvent_RejectsBadPayloads(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"malformed json", `{"status":`},
		{"unknown kind", `{"status":"completed","kind":"xlsx"}`},
		{"unknown status", `{"status":"partial","kind":"pdf"}`},
		{"empty object", `{}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := decodeExportEvent([]byte(tc.payload)); err == nil {
				t.Fatalf("payload %q should be rejected", tc.payload)
			}
		})
	}
}

func TestOriginAllowed(t *testing.T) {
	newRequest := func(origin, host string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/v1/ws", nil)
		req.Host = host
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		return req
	}

	whitelisted := NewNotifyHandler(nil, nil, nil, []string{"https://app.example.com"})
	if !whitelisted.originAllowed(newRequest("https://app.example.com", "api.example.com")) {
		t.Fatal("whitelisted origin should be allowed")
	}
	if whitelisted.originAllowed(newRequest("https://evil.example.com", "api.example.com")) {
		t.Fatal("non-whitelisted origin should be rejected")
	}

	sameHost := NewNotifyHandler(nil, nil, nil, nil)
	if !sameHost.originAllowed(newRequest("https://api.example.com", "api.example.com")) {
		t.Fatal("same-host origin should be allowed without a whitelist")
	}
	if sameHost.originAllowed(newRequest("https://other.example.com", "api.example.com")) {
		t.Fatal("cross-host origin should be rejected without a whitelist")
	}
	if !sameHost.originAllowed(newRequest("", "api.example.com")) {
		t.Fatal("non-browser clients without Origin should be allowed")
	}
}
