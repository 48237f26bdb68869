package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// PublishTrigger asks a remote system to publish the files stored in folderPath
// as repoName. It is invoked once per upload, after the scheduled time.
type PublishTrigger interface {
	Trigger(ctx context.Context, folderPath, repoName string) error
}

// NewTrigger builds the PublishTrigger selected by cfg.Mode.
func NewTrigger(cfg TriggerConfig, log *zap.Logger) (PublishTrigger, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Mode)) {
	case "", "log":
		return &LogTrigger{log: log}, nil
	case "http":
		if cfg.URL == "" {
			return nil, fmt.Errorf("trigger.url is required for http mode")
		}
		return &HTTPTrigger{URL: cfg.URL, Token: cfg.Token, Client: http.DefaultClient}, nil
	case "copy":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("trigger.dir is required for copy mode")
		}
		return &CopyTrigger{Dir: cfg.Dir}, nil
	case "command":
		if len(cfg.Command) == 0 {
			return nil, fmt.Errorf("trigger.command is required for command mode")
		}
		return &CommandTrigger{Command: cfg.Command, log: log}, nil
	default:
		return nil, fmt.Errorf("unknown trigger mode: %s", cfg.Mode)
	}
}

// LogTrigger only records that a publish would happen.
type LogTrigger struct {
	log *zap.Logger
}

func (t *LogTrigger) Trigger(ctx context.Context, folderPath, repoName string) error {
	t.log.Info("publish trigger fired",
		zap.String("repo", repoName),
		zap.String("folder", folderPath),
	)
	return nil
}

// HTTPTrigger posts the publish request to a remote endpoint.
type HTTPTrigger struct {
	URL    string
	Token  string
	Client *http.Client
}

type publishRequest struct {
	FolderPath string `json:"folder_path"`
	RepoName   string `json:"repo_name"`
}

func (t *HTTPTrigger) Trigger(ctx context.Context, folderPath, repoName string) error {
	body, err := json.Marshal(publishRequest{FolderPath: folderPath, RepoName: repoName})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.Token != "" {
		req.Header.Set("Authorization", "Bearer "+t.Token)
	}

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("publish endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// CopyTrigger hands the upload over by copying it into a shared directory
// watched by the publishing machine.
type CopyTrigger struct {
	Dir string
}

func (t *CopyTrigger) Trigger(ctx context.Context, folderPath, repoName string) error {
	dest := filepath.Join(t.Dir, filepath.Base(folderPath))
	return filepath.WalkDir(folderPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(folderPath, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// CommandTrigger runs an external command (typically ssh) with the folder
// path and repo name appended to its arguments.
type CommandTrigger struct {
	Command []string
	log     *zap.Logger
}

func (t *CommandTrigger) Trigger(ctx context.Context, folderPath, repoName string) error {
	args := append(append([]string{}, t.Command[1:]...), folderPath, repoName)
	cmd := exec.CommandContext(ctx, t.Command[0], args...)
	out, err := cmd.CombinedOutput()
	if t.log != nil && len(out) > 0 {
		t.log.Info("publish command output",
			zap.String("repo", repoName),
			zap.ByteString("output", bytes.TrimSpace(out)),
		)
	}
	if err != nil {
		return fmt.Errorf("publish command %s: %w", t.Command[0], err)
	}
	return nil
}
