package core

import "testing"

func TestAvailabilityPopClaimLIFO(t *testing.T) {
	t.Parallel()

	a := newAvailability[int](4, 4)
	e1 := newEntry(1)
	e2 := newEntry(2)
	a.push(e1)
	a.push(e2)

	popped, _, ok := a.popClaim()
	if !ok || popped.Key() != e2.Key() {
		t.Fatal("popClaim should return the most recently pushed entry")
	}
}

func TestAvailabilityPopClaimSkipsLostRace(t *testing.T) {
	t.Parallel()

	a := newAvailability[int](4, 4)
	e1 := newEntry(1)
	e2 := newEntry(2)
	a.push(e1)
	a.push(e2)

	// Simulate a concurrent sweep having already claimed e2 out from under
	// the queue by forcing its status to Closed directly.
	e2.mu.Lock()
	e2.status = StatusClosed
	e2.mu.Unlock()

	popped, _, ok := a.popClaim()
	if !ok || popped.Key() != e1.Key() {
		t.Fatal("popClaim should skip an entry that lost its claim race and return the next one")
	}
}

func TestAvailabilityClaimForRemoval(t *testing.T) {
	t.Parallel()

	a := newAvailability[int](4, 4)
	e := newEntry(1)
	a.push(e)

	removed, ok := a.claimForRemoval(e.Key())
	if !ok || removed.Key() != e.Key() {
		t.Fatal("claimForRemoval should find and remove the matching entry")
	}
	if a.len() != 0 {
		t.Fatalf("len() after claimForRemoval = %d, want 0", a.len())
	}

	_, ok = a.claimForRemoval(e.Key())
	if ok {
		t.Fatal("claimForRemoval should fail once the entry is no longer queued")
	}
}

func TestAvailabilityPermits(t *testing.T) {
	t.Parallel()

	a := newAvailability[int](2, 1)
	if !a.tryAcquirePermit() {
		t.Fatal("tryAcquirePermit should succeed with one permit preloaded")
	}
	if a.tryAcquirePermit() {
		t.Fatal("tryAcquirePermit should fail once permits are exhausted")
	}

	a.releasePermit(func() bool { return false })
	if !a.tryAcquirePermit() {
		t.Fatal("tryAcquirePermit should succeed after releasePermit")
	}
}
