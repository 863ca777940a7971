package timers

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduleFires(t *testing.T) {
	r := NewRegistry()
	defer r.Stop()
	done := make(chan struct{})
	r.Schedule("k", time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("timer did not fire")
	}
	if r.Pending("k") {
		t.Fatalf("key still pending after fire")
	}
}

func TestScheduleReplacesPendingTimer(t *testing.T) {
	r := NewRegistry()
	defer r.Stop()
	var first atomic.Bool
	done := make(chan struct{})
	r.Schedule("k", 10*time.Millisecond, func() { first.Store(true) })
	r.Schedule("k", time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("replacement timer did not fire")
	}
	time.Sleep(20 * time.Millisecond)
	if first.Load() {
		t.Fatalf("replaced callback still ran")
	}
}

func TestCancelStopsTimer(t *testing.T) {
	r := NewRegistry()
	defer r.Stop()
	var fired atomic.Bool
	r.Schedule("k", 5*time.Millisecond, func() { fired.Store(true) })
	r.Cancel("k")
	time.Sleep(20 * time.Millisecond)
	if fired.Load() {
		t.Fatalf("cancelled callback ran")
	}
	if r.Pending("k") {
		t.Fatalf("cancelled key still pending")
	}
}

func TestCancelPrefix(t *testing.T) {
	r := NewRegistry()
	defer r.Stop()
	var cascade atomic.Bool
	done := make(chan struct{})
	r.Schedule("cascade:open:a", 5*time.Millisecond, func() { cascade.Store(true) })
	r.Schedule("cascade:close:b", 5*time.Millisecond, func() { cascade.Store(true) })
	r.Schedule("other", 5*time.Millisecond, func() { close(done) })
	r.CancelPrefix("cascade:")
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("unrelated timer did not fire")
	}
	time.Sleep(20 * time.Millisecond)
	if cascade.Load() {
		t.Fatalf("prefix-cancelled callback ran")
	}
}

func TestStopRefusesFurtherScheduling(t *testing.T) {
	r := NewRegistry()
	var fired atomic.Bool
	r.Schedule("k", 5*time.Millisecond, func() { fired.Store(true) })
	r.Stop()
	r.Schedule("after", time.Millisecond, func() { fired.Store(true) })
	time.Sleep(20 * time.Millisecond)
	if fired.Load() {
		t.Fatalf("callback ran after Stop")
	}
}
