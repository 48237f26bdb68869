package main

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// NewServer creates the upload root and wires the scheduler around trigger.
// store and metrics may be nil.
func NewServer(cfg Config, log *zap.Logger, trigger PublishTrigger, store UploadStore, metrics *Metrics) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(cfg.Storage.UploadRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create upload root: %w", err)
	}

	return &Server{
		cfg:       cfg,
		log:       log,
		scheduler: NewScheduler(trigger, store, log, metrics, cfg.Trigger.Timeout),
		store:     store,
		metrics:   metrics,
		now:       time.Now,
	}, nil
}
