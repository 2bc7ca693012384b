package core

import "testing"

func TestEntryTryClaimOnlyWhenAvailable(t *testing.T) {
	t.Parallel()

	e := newEntry(1)
	if _, ok := e.tryClaim(); !ok {
		t.Fatal("tryClaim on fresh Available entry should succeed")
	}
	if _, ok := e.tryClaim(); ok {
		t.Fatal("tryClaim on an already-Acquired entry should fail")
	}
}

func TestEntryValidateTokenRejectsStaleGeneration(t *testing.T) {
	t.Parallel()

	e := newEntry(1)
	token, _ := e.tryClaim()
	if !e.validateToken(token) {
		t.Fatal("validateToken should accept the token from the matching acquire")
	}

	e.markAvailable()
	newToken, _ := e.tryClaim()
	if e.validateToken(token) {
		t.Fatal("validateToken should reject a token from a superseded generation")
	}
	if !e.validateToken(newToken) {
		t.Fatal("validateToken should accept the current generation's token")
	}
}

func TestEntryMarkClosedIsIdempotent(t *testing.T) {
	t.Parallel()

	e := newEntry(42)
	payload, already := e.markClosed()
	if already {
		t.Fatal("first markClosed should report alreadyClosed=false")
	}
	if payload != 42 {
		t.Fatalf("markClosed payload = %d, want 42", payload)
	}

	_, already = e.markClosed()
	if !already {
		t.Fatal("second markClosed should report alreadyClosed=true")
	}
}

func TestEntryTryMarkClosedIfAvailable(t *testing.T) {
	t.Parallel()

	e := newEntry(1)
	if !e.tryMarkClosedIfAvailable() {
		t.Fatal("tryMarkClosedIfAvailable should succeed on an Available entry")
	}
	if !e.statusIs(StatusClosed) {
		t.Fatal("entry should be Closed after tryMarkClosedIfAvailable succeeds")
	}

	e2 := newEntry(1)
	e2.markAcquired()
	if e2.tryMarkClosedIfAvailable() {
		t.Fatal("tryMarkClosedIfAvailable should fail on an Acquired entry")
	}
}

func TestEntryMarkPendingRefreshOnlyWhenAcquired(t *testing.T) {
	t.Parallel()

	e := newEntry(1)
	e.markPendingRefreshIfAcquired()
	if e.statusIs(StatusPendingRefresh) {
		t.Fatal("markPendingRefreshIfAcquired should be a no-op on an Available entry")
	}

	e.markAcquired()
	e.markPendingRefreshIfAcquired()
	if !e.statusIs(StatusPendingRefresh) {
		t.Fatal("markPendingRefreshIfAcquired should transition an Acquired entry")
	}
}
