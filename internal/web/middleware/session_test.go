package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSessionLifecycle(t *testing.T) {
	sm := NewSessionManager("test-secret")

	session, err := sm.CreateSession()
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if session.ID == "" {
		t.Fatal("expected a session id")
	}

	if got := sm.GetSession(session.ID); got == nil {
		t.Error("expected to find the session")
	}

	sm.DeleteSession(session.ID)
	if got := sm.GetSession(session.ID); got != nil {
		t.Error("expected the session to be gone")
	}
}

func TestSessionCookie_RoundTrip(t *testing.T) {
	sm := NewSessionManager("test-secret")

	session, err := sm.CreateSession()
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	sm.SetSessionCookie(rec, session)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	got := sm.GetSessionFromRequest(req)
	if got == nil || got.ID != session.ID {
		t.Errorf("expected session %s, got %+v", session.ID, got)
	}
}

func TestSessionCookie_TamperedSignature(t *testing.T) {
	sm := NewSessionManager("test-secret")

	session, err := sm.CreateSession()
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{
		Name:  "bioguard_session",
		Value: session.ID + ".forged-signature",
	})

	if got := sm.GetSessionFromRequest(req); got != nil {
		t.Error("a tampered cookie must not resolve to a session")
	}
}

func TestBearerToken(t *testing.T) {
	sm := NewSessionManager("test-secret")

	session, err := sm.CreateSession()
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+session.ID)

	got := sm.GetSessionFromRequest(req)
	if got == nil || got.ID != session.ID {
		t.Errorf("expected session via bearer token, got %+v", got)
	}
}

func TestRequireAuth(t *testing.T) {
	sm := NewSessionManager("test-secret")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetSessionFromContext(r.Context()) == nil {
			t.Error("expected a session in the handler context")
		}
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAuth(sm)(next)

	// Without a session.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}

	// With a session.
	session, err := sm.CreateSession()
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+session.ID)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
