package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const uploadAcceptedMessage = "Files received and upload scheduled."

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"pending_callbacks": s.scheduler.Pending(),
	})
}

// parseUploadRequest validates the multipart form. The returned message is
// meant for the caller; nothing is written to disk before it succeeds.
func (s *Server) parseUploadRequest(r *http.Request) (UploadRequest, string) {
	if err := r.ParseMultipartForm(s.cfg.Storage.MaxMemoryMB << 20); err != nil {
		return UploadRequest{}, "invalid multipart form"
	}

	// body fields only; query parameters are ignored
	repoName := r.PostFormValue("repoName")
	scheduleValue := r.PostFormValue("scheduleTime")
	if repoName == "" || scheduleValue == "" {
		return UploadRequest{}, "Missing repoName or scheduleTime"
	}
	if !validPathComponent(repoName) {
		return UploadRequest{}, "Invalid repoName"
	}

	scheduleTime, zoned, err := parseScheduleTime(scheduleValue, time.Local)
	if err != nil {
		return UploadRequest{}, "Invalid scheduleTime format"
	}

	readmes := r.MultipartForm.File["readmeFile"]
	if len(readmes) == 0 {
		return UploadRequest{}, "No README file provided"
	}

	return UploadRequest{
		RepoName:      repoName,
		ScheduleTime:  scheduleTime,
		ScheduleZoned: zoned,
		ReadmeFile:    readmes[0],
		MainFiles:     r.MultipartForm.File["mainFiles[]"],
	}, ""
}

func (s *Server) uploadBundle(w http.ResponseWriter, r *http.Request) {
	req, msg := s.parseUploadRequest(r)
	if msg != "" {
		s.metrics.upload("rejected")
		respondWithError(w, http.StatusBadRequest, msg)
		return
	}

	now := s.now()
	uploadID := fmt.Sprintf("%s_%d", req.RepoName, now.Unix())

	folderPath, err := createUploadDir(s.cfg.Storage.UploadRoot, uploadID)
	if err != nil {
		s.failUpload(w, uploadID, err)
		return
	}

	if _, err := saveUploadedFile(folderPath, req.ReadmeFile); err != nil {
		s.failUpload(w, uploadID, err)
		return
	}
	for _, fileHeader := range req.MainFiles {
		if _, err := saveUploadedFile(folderPath, fileHeader); err != nil {
			s.failUpload(w, uploadID, err)
			return
		}
	}

	schedule := formatScheduleTime(req.ScheduleTime, req.ScheduleZoned)
	if err := writeInstructions(folderPath, req.RepoName, schedule); err != nil {
		s.failUpload(w, uploadID, err)
		return
	}

	s.recordUpload(r.Context(), UploadRecord{
		UploadID:   uploadID,
		RepoName:   req.RepoName,
		Schedule:   schedule,
		FolderPath: folderPath,
		FileCount:  1 + len(req.MainFiles),
		ScheduleAt: req.ScheduleTime,
		CreatedAt:  now,
	})

	delay := s.scheduler.Schedule(ScheduledCallback{
		UploadID:   uploadID,
		FolderPath: folderPath,
		RepoName:   req.RepoName,
		FireAt:     req.ScheduleTime,
	})

	s.metrics.upload("accepted")
	s.log.Info("upload accepted",
		zap.String("upload_id", uploadID),
		zap.String("repo", req.RepoName),
		zap.Int("main_files", len(req.MainFiles)),
		zap.String("schedule", schedule),
		zap.Duration("delay", delay),
	)

	respondWithJSON(w, http.StatusOK, UploadResponse{
		Success:  true,
		Message:  uploadAcceptedMessage,
		UploadID: uploadID,
	})
}

// failUpload reports a storage failure. Files already written stay on disk.
func (s *Server) failUpload(w http.ResponseWriter, uploadID string, err error) {
	s.metrics.upload("error")
	s.log.Error("upload storage failed", zap.String("upload_id", uploadID), zap.Error(err))
	respondWithError(w, http.StatusInternalServerError, "Storage error")
}

func (s *Server) recordUpload(ctx context.Context, rec UploadRecord) {
	if s.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.store.RecordUpload(ctx, rec); err != nil {
		s.log.Warn("record upload failed", zap.String("upload_id", rec.UploadID), zap.Error(err))
	}
}

func (s *Server) listUploads(w http.ResponseWriter, r *http.Request) {
	records, err := listUploadRecords(s.cfg.Storage.UploadRoot)
	if err != nil {
		s.log.Error("list uploads failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Storage error")
		return
	}
	respondWithJSON(w, http.StatusOK, records)
}

func (s *Server) getUpload(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, err := readUploadRecord(s.cfg.Storage.UploadRoot, id, true)
	if errors.Is(err, errNotFound) {
		respondWithError(w, http.StatusNotFound, "Upload not found")
		return
	}
	if err != nil {
		s.log.Error("read upload failed", zap.String("upload_id", id), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Storage error")
		return
	}
	respondWithJSON(w, http.StatusOK, rec)
}
