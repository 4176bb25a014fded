package auth

import "testing"

func TestSessionRoundTrip(t *testing.T) {
	token, err := IssueSession("secret", "alice", "U0001")
	if err != nil {
		t.Fatalf("expected token, got error: %v", err)
	}

	claims, err := ParseSession("secret", token)
	if err != nil {
		t.Fatalf("expected valid session, got error: %v", err)
	}
	if claims.Subject != "alice" {
		t.Fatalf("expected subject alice, got %q", claims.Subject)
	}
	if claims.LoginID != "U0001" {
		t.Fatalf("expected login id U0001, got %q", claims.LoginID)
	}
}

func TestParseSessionRejectsWrongSecret(t *testing.T) {
	token, err := IssueSession("secret", "alice", "U0001")
	if err != nil {
		t.Fatalf("expected token, got error: %v", err)
	}

	if _, err := ParseSession("other-secret", token); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestIssueSessionRequiresSecret(t *testing.T) {
	if _, err := IssueSession("", "alice", "U0001"); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestParseSessionRejectsGarbage(t *testing.T) {
	if _, err := ParseSession("secret", "not-a-token"); err == nil {
		t.Fatal("expected error, got nil")
	}
}
