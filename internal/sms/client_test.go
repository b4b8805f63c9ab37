package sms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/config"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.SMSConfig{GatewayURL: server.URL, Timeout: 2 * time.Second})
}

func TestSend_AllDelivered(t *testing.T) {
	var gotNumbers []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.FormValue("apikey") != "semaphore-key" {
			t.Errorf("apikey = %q, want semaphore-key", r.FormValue("apikey"))
		}
		if r.FormValue("sendername") != "OSCA" {
			t.Errorf("sendername = %q, want OSCA", r.FormValue("sendername"))
		}
		gotNumbers = append(gotNumbers, r.FormValue("number"))
		w.Write([]byte(`[{"message_id": 193000, "status": "Pending"}]`))
	})

	result := client.Send(context.Background(),
		Credentials{APIKey: "semaphore-key", SenderName: "OSCA"},
		[]string{"09171234567", "09187654321"}, "Pension release on Friday.")

	if result.Sent != 2 || result.Failed != 0 {
		t.Fatalf("sent/failed = %d/%d, want 2/0", result.Sent, result.Failed)
	}
	if len(gotNumbers) != 2 {
		t.Fatalf("gateway calls = %d, want 2", len(gotNumbers))
	}
	d := result.Deliveries[0]
	if d.Status != models.SMSStatusSent {
		t.Errorf("status = %q, want %q", d.Status, models.SMSStatusSent)
	}
	if d.ReferenceID == nil || *d.ReferenceID != "193000" {
		t.Errorf("reference = %v, want 193000", d.ReferenceID)
	}
	if d.CreditUsed != 1 {
		t.Errorf("credit used = %d, want 1", d.CreditUsed)
	}
}

func TestSend_GatewayErrorMarksRecipientFailed(t *testing.T) {
	var calls int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"message":"invalid number"}`))
			return
		}
		w.Write([]byte(`[{"message_id": 193001, "status": "Pending"}]`))
	})

	result := client.Send(context.Background(), Credentials{APIKey: "k"},
		[]string{"0000", "09171234567"}, "hello")

	if result.Sent != 1 || result.Failed != 1 {
		t.Fatalf("sent/failed = %d/%d, want 1/1", result.Sent, result.Failed)
	}
	if result.Deliveries[0].Status != models.SMSStatusFailed {
		t.Errorf("first status = %q, want %q", result.Deliveries[0].Status, models.SMSStatusFailed)
	}
	if result.Deliveries[1].Status != models.SMSStatusSent {
		t.Errorf("second status = %q, want %q", result.Deliveries[1].Status, models.SMSStatusSent)
	}
}

func TestSend_UnreachableGateway(t *testing.T) {
	client := NewClient(config.SMSConfig{GatewayURL: "http://127.0.0.1:1", Timeout: time.Second})

	result := client.Send(context.Background(), Credentials{APIKey: "k"},
		[]string{"09171234567"}, "hello")

	if result.Failed != 1 {
		t.Errorf("failed = %d, want 1", result.Failed)
	}
}

func TestSend_UnparseableResponseStillSent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	result := client.Send(context.Background(), Credentials{APIKey: "k"},
		[]string{"09171234567"}, "hello")

	if result.Sent != 1 {
		t.Fatalf("sent = %d, want 1", result.Sent)
	}
	if result.Deliveries[0].ReferenceID != nil {
		t.Errorf("reference = %v, want nil", result.Deliveries[0].ReferenceID)
	}
}

func TestGenerateOTP(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateOTP()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("len(code) = %d, want 6: %q", len(code), code)
		}
		for _, ch := range code {
			if ch < '0' || ch > '9' {
				t.Fatalf("non-digit in code %q", code)
			}
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Error("50 generated codes were all identical")
	}
}
