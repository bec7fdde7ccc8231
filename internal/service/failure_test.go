package service

import "testing"

func TestFailurePolicy_RebootLatchesOnce(t *testing.T) {
	p := NewFailurePolicy(18, true, true)

	raised := 0
	for i := 1; i <= 25; i++ {
		if p.RecordFailure() {
			raised++
			if i != 19 {
				t.Fatalf("reboot raised on failure %d, want 19", i)
			}
		}
	}
	if raised != 1 {
		t.Fatalf("reboot raised %d times, want 1", raised)
	}
	if !p.latched {
		t.Fatalf("reboot not latched")
	}
}

func TestFailurePolicy_SuccessResets(t *testing.T) {
	p := NewFailurePolicy(3, true, false)

	for i := 0; i < 3; i++ {
		if p.RecordFailure() {
			t.Fatalf("unexpected reboot at %d", i+1)
		}
	}
	p.RecordSuccess()
	if p.Consecutive() != 0 {
		t.Fatalf("Consecutive() = %d after success", p.Consecutive())
	}
	for i := 0; i < 3; i++ {
		if p.RecordFailure() {
			t.Fatalf("unexpected reboot after reset at %d", i+1)
		}
	}
	if !p.RecordFailure() {
		t.Fatalf("expected reboot on 4th consecutive failure")
	}
}

func TestFailurePolicy_RebootDisabled(t *testing.T) {
	p := NewFailurePolicy(1, false, false)
	for i := 0; i < 5; i++ {
		if p.RecordFailure() {
			t.Fatalf("reboot raised while disabled")
		}
	}
	if p.Consecutive() != 5 {
		t.Fatalf("Consecutive() = %d, want 5", p.Consecutive())
	}
}

func TestFailurePolicy_ShouldRecord(t *testing.T) {
	on := NewFailurePolicy(18, true, true)
	off := NewFailurePolicy(18, true, false)

	for minute := 0; minute < 60; minute++ {
		want := minute == 0 || minute == 30
		if got := on.ShouldRecord(minute); got != want {
			t.Fatalf("ShouldRecord(%d) = %v, want %v", minute, got, want)
		}
		if off.ShouldRecord(minute) {
			t.Fatalf("ShouldRecord(%d) true with CSV disabled", minute)
		}
	}
}
