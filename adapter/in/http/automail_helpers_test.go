package http

import (
	"encoding/base64"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestQueryBool(t *testing.T) {
	tests := []struct {
		query string
		def   bool
		want  bool
	}{
		{query: "", def: true, want: true},
		{query: "", def: false, want: false},
		{query: "flag=true", def: false, want: true},
		{query: "flag=1", def: false, want: true},
		{query: "flag=YES", def: false, want: true},
		{query: "flag=on", def: false, want: true},
		{query: "flag=false", def: true, want: false},
		{query: "flag=0", def: true, want: false},
		{query: "flag=No", def: true, want: false},
		{query: "flag=off", def: true, want: false},
		{query: "flag=maybe", def: true, want: true},
		{query: "flag=maybe", def: false, want: false},
	}

	app := fiber.New()
	var got bool
	var def bool
	app.Get("/", func(c *fiber.Ctx) error {
		got = QueryBool(c, "flag", def)
		return nil
	})

	for _, tt := range tests {
		t.Run(tt.query+"_"+fmt.Sprint(tt.def), func(t *testing.T) {
			def = tt.def
			req := httptest.NewRequest("GET", "/?"+tt.query, nil)
			if _, err := app.Test(req); err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("QueryBool(%q, def=%v) = %v, want %v", tt.query, tt.def, got, tt.want)
			}
		})
	}
}

func TestQueryIntClamped(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{query: "", want: 10},
		{query: "n=25", want: 25},
		{query: "n=1", want: 1},
		{query: "n=0", want: 10},
		{query: "n=-5", want: 10},
		{query: "n=abc", want: 10},
	}

	app := fiber.New()
	var got int
	app.Get("/", func(c *fiber.Ctx) error {
		got = QueryIntClamped(c, "n", 10)
		return nil
	})

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/?"+tt.query, nil)
			if _, err := app.Test(req); err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("QueryIntClamped(%q) = %d, want %d", tt.query, got, tt.want)
			}
		})
	}
}

func pubSubBody(data string) []byte {
	return []byte(fmt.Sprintf(`{"message":{"data":%q,"messageId":"m-1"},"subscription":"projects/p/subscriptions/s"}`, data))
}

func TestParseWebhookPayload(t *testing.T) {
	inner := `{"emailAddress":"user@example.com","historyId":12345}`

	tests := []struct {
		name     string
		body     []byte
		wantAddr string
		wantID   uint64
	}{
		{
			name:     "standard base64",
			body:     pubSubBody(base64.StdEncoding.EncodeToString([]byte(inner))),
			wantAddr: "user@example.com",
			wantID:   12345,
		},
		{
			name:     "url-safe base64",
			body:     pubSubBody(base64.URLEncoding.EncodeToString([]byte(inner))),
			wantAddr: "user@example.com",
			wantID:   12345,
		},
		{
			name: "history id as string",
			body: pubSubBody(base64.StdEncoding.EncodeToString(
				[]byte(`{"emailAddress":"user@example.com","historyId":"67890"}`))),
			wantAddr: "user@example.com",
			wantID:   67890,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, id, err := parseWebhookPayload(tt.body)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if addr != tt.wantAddr || id != tt.wantID {
				t.Errorf("got (%q, %d), want (%q, %d)", addr, id, tt.wantAddr, tt.wantID)
			}
		})
	}
}

func TestParseWebhookPayloadRejects(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{name: "not json", body: []byte("not json")},
		{name: "empty data", body: pubSubBody("")},
		{name: "data not base64", body: pubSubBody("%%%%")},
		{
			name: "inner not json",
			body: pubSubBody(base64.StdEncoding.EncodeToString([]byte("hello"))),
		},
		{
			name: "missing email address",
			body: pubSubBody(base64.StdEncoding.EncodeToString(
				[]byte(`{"historyId":12345}`))),
		},
		{
			name: "missing history id",
			body: pubSubBody(base64.StdEncoding.EncodeToString(
				[]byte(`{"emailAddress":"user@example.com"}`))),
		},
		{
			name: "negative history id",
			body: pubSubBody(base64.StdEncoding.EncodeToString(
				[]byte(`{"emailAddress":"user@example.com","historyId":-1}`))),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := parseWebhookPayload(tt.body); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
