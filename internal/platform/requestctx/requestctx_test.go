package requestctx

import (
	"context"
	"testing"
	"time"

	"ems/internal/domain/auth"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	if got := GetRequestID(ctx); got != "req-1" {
		t.Fatalf("expected req-1, got %q", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Fatalf("expected empty request id, got %q", got)
	}
}

func TestSessionDefaultsToAnonymous(t *testing.T) {
	if GetSession(context.Background()).IsAuthenticated() {
		t.Fatal("expected anonymous session")
	}

	session, err := auth.NewSession("sid", auth.User{Name: "Admin User", Email: "admin@company.com", Role: auth.RoleAdmin}, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	got := GetSession(WithSession(context.Background(), session))
	if got.Role() != auth.RoleAdmin || got.Email() != "admin@company.com" {
		t.Fatalf("unexpected session %+v", got)
	}
}
