package main

import (
	"context"
	"errors"
	"testing"
	"time"
)

type panicTrigger struct{}

func (panicTrigger) Trigger(ctx context.Context, folderPath, repoName string) error {
	panic("boom")
}

type deadlineTrigger struct {
	deadline chan bool
}

func (d deadlineTrigger) Trigger(ctx context.Context, folderPath, repoName string) error {
	_, ok := ctx.Deadline()
	d.deadline <- ok
	return nil
}

func waitPending(t *testing.T, s *Scheduler, want int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.Pending() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d pending, got %d", want, s.Pending())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSchedulerFiresAfterDelay(t *testing.T) {
	trigger := newFakeTrigger()
	s := NewScheduler(trigger, nil, nil, nil, time.Minute)

	start := time.Now()
	delay := s.Schedule(ScheduledCallback{
		UploadID:   "demo_1",
		FolderPath: "/tmp/demo_1",
		RepoName:   "demo",
		FireAt:     start.Add(150 * time.Millisecond),
	})
	if delay <= 0 || delay > 150*time.Millisecond {
		t.Fatalf("unexpected delay %v", delay)
	}
	if s.Pending() != 1 {
		t.Fatalf("expected 1 pending, got %d", s.Pending())
	}

	call := expectCall(t, trigger)
	if elapsed := time.Since(start); elapsed < 140*time.Millisecond {
		t.Fatalf("fired too early after %v", elapsed)
	}
	if call.folderPath != "/tmp/demo_1" || call.repoName != "demo" {
		t.Fatalf("unexpected call %+v", call)
	}
	waitPending(t, s, 0)
}

func TestSchedulerPastTimeFiresImmediately(t *testing.T) {
	trigger := newFakeTrigger()
	s := NewScheduler(trigger, nil, nil, nil, time.Minute)

	delay := s.Schedule(ScheduledCallback{RepoName: "old", FireAt: time.Now().Add(-time.Hour)})
	if delay != 0 {
		t.Fatalf("expected zero delay, got %v", delay)
	}
	expectCall(t, trigger)
}

func TestSchedulerCallbacksAreIndependent(t *testing.T) {
	trigger := newFakeTrigger()
	s := NewScheduler(trigger, nil, nil, nil, time.Minute)

	now := time.Now()
	s.Schedule(ScheduledCallback{RepoName: "later", FireAt: now.Add(time.Hour)})
	s.Schedule(ScheduledCallback{RepoName: "now", FireAt: now})

	if call := expectCall(t, trigger); call.repoName != "now" {
		t.Fatalf("expected now to fire, got %s", call.repoName)
	}
	expectNoCall(t, trigger)
	waitPending(t, s, 1)
}

func TestSchedulerSwallowsTriggerErrors(t *testing.T) {
	trigger := newFakeTrigger()
	trigger.err = errors.New("remote down")
	s := NewScheduler(trigger, nil, nil, nil, time.Minute)

	s.Schedule(ScheduledCallback{RepoName: "demo", FireAt: time.Now()})
	expectCall(t, trigger)
	// no retry
	expectNoCall(t, trigger)
	waitPending(t, s, 0)
}

func TestSchedulerRecoversPanics(t *testing.T) {
	s := NewScheduler(panicTrigger{}, nil, nil, nil, time.Minute)
	s.Schedule(ScheduledCallback{RepoName: "demo", FireAt: time.Now()})
	waitPending(t, s, 0)
}

func TestSchedulerBoundsTriggerContext(t *testing.T) {
	trigger := deadlineTrigger{deadline: make(chan bool, 1)}
	s := NewScheduler(trigger, nil, nil, nil, time.Minute)
	s.Schedule(ScheduledCallback{RepoName: "demo", FireAt: time.Now()})

	select {
	case ok := <-trigger.deadline:
		if !ok {
			t.Fatalf("expected trigger context to carry a deadline")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("trigger not called")
	}
}

type recordingStore struct {
	triggered chan string
}

func (r *recordingStore) RecordUpload(ctx context.Context, rec UploadRecord) error { return nil }

func (r *recordingStore) MarkTriggered(ctx context.Context, uploadID string, at time.Time, triggerErr error) error {
	r.triggered <- uploadID
	return nil
}

func (r *recordingStore) Close() error { return nil }

func TestSchedulerMarksStore(t *testing.T) {
	store := &recordingStore{triggered: make(chan string, 1)}
	s := NewScheduler(newFakeTrigger(), store, nil, nil, time.Minute)
	s.Schedule(ScheduledCallback{UploadID: "demo_42", RepoName: "demo", FireAt: time.Now()})

	select {
	case id := <-store.triggered:
		if id != "demo_42" {
			t.Fatalf("expected demo_42, got %s", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("store not updated")
	}
}
