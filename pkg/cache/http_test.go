package cache

import (
	"bytes"
	"io"
	"net/http"
	"testing"
	"time"
)

func TestResponseToEntry(t *testing.T) {
	tests := []struct {
		name    string
		resp    *http.Response
		wantErr bool
	}{
		{
			name: "valid response with all headers",
			resp: &http.Response{
				StatusCode: 200,
				Header: http.Header{
					"Expires":       []string{time.Now().Add(1 * time.Hour).Format(http.TimeFormat)},
					"Last-Modified": []string{time.Now().Add(-1 * time.Hour).Format(http.TimeFormat)},
					"Etag":          []string{`"p1"`},
					"Content-Type":  []string{"application/json"},
				},
				Body: io.NopCloser(bytes.NewReader([]byte(`{"data": []}`))),
			},
		},
		{
			name: "response without freshness headers",
			resp: &http.Response{
				StatusCode: 200,
				Header:     http.Header{"Content-Type": []string{"application/json"}},
				Body:       io.NopCloser(bytes.NewReader([]byte(`{"data": []}`))),
			},
		},
		{
			name:    "nil response",
			resp:    nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := ResponseToEntry(tt.resp)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResponseToEntry() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			body, _ := io.ReadAll(tt.resp.Body)
			if !bytes.Equal(body, entry.Data) {
				t.Errorf("restored body = %q, want %q", body, entry.Data)
			}
			if entry.ETag != tt.resp.Header.Get("ETag") {
				t.Errorf("ETag = %q, want %q", entry.ETag, tt.resp.Header.Get("ETag"))
			}
			if entry.Expires.IsZero() {
				t.Error("Expires was not set")
			}
		})
	}
}

func TestParseExpires(t *testing.T) {
	now := time.Now()
	tolerance := 2 * time.Second

	tests := []struct {
		name    string
		headers http.Header
		want    time.Time
	}{
		{
			name:    "max-age wins over expires",
			headers: http.Header{"Cache-Control": []string{"public, max-age=60"}, "Expires": []string{now.Add(time.Hour).Format(http.TimeFormat)}},
			want:    now.Add(60 * time.Second),
		},
		{
			name:    "no-cache",
			headers: http.Header{"Cache-Control": []string{"no-cache"}},
			want:    now,
		},
		{
			name:    "expires header",
			headers: http.Header{"Expires": []string{now.Add(time.Hour).Format(http.TimeFormat)}},
			want:    now.Add(time.Hour),
		},
		{
			name:    "invalid expires",
			headers: http.Header{"Expires": []string{"not a date"}},
			want:    now.Add(DefaultTTL),
		},
		{
			name:    "bad max-age falls back",
			headers: http.Header{"Cache-Control": []string{"max-age=abc"}},
			want:    now.Add(DefaultTTL),
		},
		{
			name:    "expires in the past",
			headers: http.Header{"Expires": []string{now.Add(-time.Hour).Format(http.TimeFormat)}},
			want:    now,
		},
		{
			name:    "nothing",
			headers: http.Header{},
			want:    now.Add(DefaultTTL),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseExpires(tt.headers)
			diff := got.Sub(tt.want)
			if diff < -tolerance || diff > tolerance {
				t.Errorf("parseExpires() = %v, want approximately %v (diff: %v)", got, tt.want, diff)
			}
		})
	}
}

func TestAddConditionalHeaders(t *testing.T) {
	tests := []struct {
		name       string
		entry      *Entry
		wantHeader string
		wantValue  string
	}{
		{
			name:       "If-None-Match with ETag",
			entry:      &Entry{ETag: `"p3"`},
			wantHeader: "If-None-Match",
			wantValue:  `"p3"`,
		},
		{
			name:       "If-Modified-Since with Last-Modified",
			entry:      &Entry{LastModified: time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)},
			wantHeader: "If-Modified-Since",
			wantValue:  "Sun, 01 Jan 2023 12:00:00 GMT",
		},
		{
			name:       "prefer ETag",
			entry:      &Entry{ETag: `"p3"`, LastModified: time.Now()},
			wantHeader: "If-None-Match",
			wantValue:  `"p3"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !ShouldMakeConditionalRequest(tt.entry) {
				t.Error("ShouldMakeConditionalRequest() = false")
			}
			req, _ := http.NewRequest(http.MethodGet, "http://localhost/api/posts?page=3", nil)
			AddConditionalHeaders(req, tt.entry)
			if got := req.Header.Get(tt.wantHeader); got != tt.wantValue {
				t.Errorf("Header %s = %q, want %q", tt.wantHeader, got, tt.wantValue)
			}
		})
	}

	if ShouldMakeConditionalRequest(nil) || ShouldMakeConditionalRequest(&Entry{Data: []byte("x")}) {
		t.Error("entries without validators cannot be revalidated")
	}

	// Should not panic with nil inputs
	AddConditionalHeaders(nil, &Entry{ETag: "x"})
	AddConditionalHeaders(&http.Request{}, nil)
}

func TestEntryToResponse(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "http://localhost/api/posts?page=1", nil)
	entry := &Entry{
		Data:    []byte(`{"total":1}`),
		Headers: http.Header{"Content-Type": []string{"application/json"}},
	}

	resp := EntryToResponse(entry, req)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"total":1}` {
		t.Errorf("body = %q", body)
	}
	if resp.Request != req {
		t.Error("Request not attached")
	}
}
