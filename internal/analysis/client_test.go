package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"iamaudit/internal/domain"
)

func chatReply(content string) string {
	reply := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	}
	data, _ := json.Marshal(reply)
	return string(data)
}

func newTestClient(url string) *Client {
	return NewClient(ClientConfig{
		APIKey:        "test-key",
		BaseURL:       url,
		OverviewModel: "overview-model",
		PolicyModel:   "policy-model",
		Timeout:       2 * time.Second,
	})
}

// =============================================================================
// AnalyzeEntity TESTS
// =============================================================================

func TestAnalyzeEntitySuccess(t *testing.T) {
	var gotAuth string
	var gotRequest chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotRequest)
		w.Write([]byte(chatReply(`{"ARN_capabilities": "EC2 start/stop", "Best_Practice": true, "Security_Concerns": false}`)))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	got, err := client.AnalyzeEntity(context.Background(), "payload")
	if err != nil {
		t.Fatalf("AnalyzeEntity returned error: %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotRequest.Model != "overview-model" {
		t.Errorf("model = %q", gotRequest.Model)
	}
	if gotRequest.ResponseFormat == nil || gotRequest.ResponseFormat.Type != "json_object" {
		t.Errorf("response_format = %+v, want json_object", gotRequest.ResponseFormat)
	}
	if got.Capabilities != "EC2 start/stop" || got.BestPractice != "Yes" || got.SecurityConcerns != "No" {
		t.Errorf("result = %+v", got)
	}
}

func TestAnalyzeEntityServiceDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "overloaded"}}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).AnalyzeEntity(context.Background(), "payload")
	if err != nil {
		t.Fatalf("service failure must not surface as an error, got: %v", err)
	}
	if got != domain.UnavailableAnalysis() {
		t.Errorf("result = %+v, want all-sentinel", got)
	}
}

func TestAnalyzeEntityMalformedReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatReply("here is my analysis: the role looks fine")))
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).AnalyzeEntity(context.Background(), "payload")
	if err == nil {
		t.Fatal("expected an error for an unparseable reply")
	}
	if got != domain.UnavailableAnalysis() {
		t.Errorf("result = %+v, want all-sentinel", got)
	}
}

// =============================================================================
// AnalyzePolicy TESTS
// =============================================================================

func TestAnalyzePolicySuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "policy-model" {
			t.Errorf("model = %q", req.Model)
		}
		if req.ResponseFormat != nil {
			t.Error("policy summaries must not force json_object replies")
		}
		w.Write([]byte(chatReply("  This policy grants read access to S3.\n")))
	}))
	defer server.Close()

	got := newTestClient(server.URL).AnalyzePolicy(context.Background(), `{"Version":"2012-10-17"}`)
	if got != "This policy grants read access to S3." {
		t.Errorf("summary = %q", got)
	}
}

func TestAnalyzePolicyTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(chatReply("too late")))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		APIKey:      "test-key",
		BaseURL:     server.URL,
		PolicyModel: "policy-model",
		Timeout:     20 * time.Millisecond,
	})
	got := client.AnalyzePolicy(context.Background(), "{}")
	if got != domain.AnalysisFailed {
		t.Errorf("summary = %q, want %q", got, domain.AnalysisFailed)
	}
}

func TestAnalyzePolicyNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	got := newTestClient(server.URL).AnalyzePolicy(context.Background(), "{}")
	if got != domain.AnalysisFailed {
		t.Errorf("summary = %q, want %q", got, domain.AnalysisFailed)
	}
}
