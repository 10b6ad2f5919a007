package protocol

import "testing"

func TestParseMessage(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"type":"status-request"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if msg.Type != TypeStatusRequest {
		t.Fatalf("type = %q, want %q", msg.Type, TypeStatusRequest)
	}
}

func TestParseMessageUnknownTypeIsNotAnError(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"type":"future-frame"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if msg.Type != "future-frame" {
		t.Fatalf("type = %q, want %q", msg.Type, "future-frame")
	}
}

func TestParseMessageRejectsMalformed(t *testing.T) {
	if _, err := ParseMessage([]byte(`{"type":`)); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
	if _, err := ParseMessage([]byte(`{}`)); err == nil {
		t.Fatal("expected error for missing type")
	}
}

func TestStatusMessageTypeRoundTrip(t *testing.T) {
	for _, status := range []Status{StatusOnline, StatusNetworkError, StatusServerError} {
		got, ok := StatusFromType(status.MessageType())
		if !ok {
			t.Fatalf("no status for type %q", status.MessageType())
		}
		if got != status {
			t.Fatalf("status = %q, want %q", got, status)
		}
	}
}

func TestStatusFromTypeRejectsRequests(t *testing.T) {
	if _, ok := StatusFromType(TypeStatusRequest); ok {
		t.Fatal("status-request must not map to a status")
	}
	if _, ok := StatusFromType("bogus"); ok {
		t.Fatal("unknown type must not map to a status")
	}
}

func TestStatusValid(t *testing.T) {
	if !StatusOnline.Valid() {
		t.Fatal("online should be valid")
	}
	if Status("offline").Valid() {
		t.Fatal("unexpected valid status")
	}
}
