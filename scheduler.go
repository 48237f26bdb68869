package main

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Scheduler fires one publish callback per accepted upload.
//
// Every callback owns its own timer. There is no cancellation and nothing is
// persisted: a callback still pending when the process exits is lost.
type Scheduler struct {
	trigger PublishTrigger
	store   UploadStore
	log     *zap.Logger
	metrics *Metrics
	timeout time.Duration
	now     func() time.Time

	pending atomic.Int64
}

func NewScheduler(trigger PublishTrigger, store UploadStore, log *zap.Logger, metrics *Metrics, timeout time.Duration) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		trigger: trigger,
		store:   store,
		log:     log,
		metrics: metrics,
		timeout: timeout,
		now:     time.Now,
	}
}

// Schedule arranges for cb to fire at cb.FireAt and returns the delay used.
// A non-positive delay fires right away.
func (s *Scheduler) Schedule(cb ScheduledCallback) time.Duration {
	s.pending.Add(1)
	s.metrics.pending(1)

	delay := cb.FireAt.Sub(s.now())
	if delay <= 0 {
		go s.fire(cb)
		return 0
	}
	time.AfterFunc(delay, func() { s.fire(cb) })
	return delay
}

// Pending reports how many callbacks have not fired yet.
func (s *Scheduler) Pending() int64 {
	return s.pending.Load()
}

func (s *Scheduler) fire(cb ScheduledCallback) {
	defer func() {
		s.pending.Add(-1)
		s.metrics.pending(-1)
	}()

	start := time.Now()
	err := s.invoke(cb)
	if err != nil {
		s.metrics.trigger("error")
		s.log.Error("publish trigger failed",
			zap.String("upload_id", cb.UploadID),
			zap.String("repo", cb.RepoName),
			zap.Error(err),
		)
	} else {
		s.metrics.trigger("ok")
		s.log.Info("publish trigger done",
			zap.String("upload_id", cb.UploadID),
			zap.String("repo", cb.RepoName),
			zap.Duration("took", time.Since(start)),
		)
	}

	if s.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if serr := s.store.MarkTriggered(ctx, cb.UploadID, s.now(), err); serr != nil {
			s.log.Warn("record trigger failed", zap.String("upload_id", cb.UploadID), zap.Error(serr))
		}
	}
}

func (s *Scheduler) invoke(cb ScheduledCallback) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("trigger panic: %v", r)
		}
	}()

	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.trigger.Trigger(ctx, cb.FolderPath, cb.RepoName)
}
