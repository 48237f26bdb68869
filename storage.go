package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const instructionsFile = "instructions.txt"

var errNotFound = errors.New("upload not found")

// createUploadDir creates the directory for uploadID under root.
// Uploads of the same repo within the same second share a directory.
func createUploadDir(root, uploadID string) (string, error) {
	folderPath := filepath.Join(root, uploadID)
	if err := os.MkdirAll(folderPath, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	return folderPath, nil
}

// saveUploadedFile copies a multipart file into dir under its original base name.
// An existing file with the same name is overwritten.
func saveUploadedFile(dir string, fileHeader *multipart.FileHeader) (FileInfo, error) {
	name := filepath.Base(fileHeader.Filename)
	if name == "." || name == string(filepath.Separator) {
		return FileInfo{}, fmt.Errorf("invalid file name %q", fileHeader.Filename)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return FileInfo{}, fmt.Errorf("open %s: %w", name, err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return FileInfo{}, fmt.Errorf("create %s: %w", name, err)
	}
	written, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return FileInfo{}, fmt.Errorf("write %s: %w", name, err)
	}

	return FileInfo{Name: name, Size: written}, nil
}

// writeInstructions records repo name, normalized schedule and folder path.
func writeInstructions(folderPath, repoName, schedule string) error {
	content := fmt.Sprintf("repoName=%s\nschedule=%s\nfolder=%s\n", repoName, schedule, folderPath)
	if err := os.WriteFile(filepath.Join(folderPath, instructionsFile), []byte(content), 0o644); err != nil {
		return fmt.Errorf("write instructions: %w", err)
	}
	return nil
}

// readUploadRecord loads the record stored under root/uploadID.
func readUploadRecord(root, uploadID string, withFiles bool) (UploadRecord, error) {
	if !validPathComponent(uploadID) {
		return UploadRecord{}, errNotFound
	}
	folderPath := filepath.Join(root, uploadID)
	f, err := os.Open(filepath.Join(folderPath, instructionsFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return UploadRecord{}, errNotFound
		}
		return UploadRecord{}, err
	}
	defer f.Close()

	rec := UploadRecord{UploadID: uploadID, FolderPath: folderPath}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		switch key {
		case "repoName":
			rec.RepoName = value
		case "schedule":
			rec.Schedule = value
		case "folder":
			rec.FolderPath = value
		}
	}
	if err := scanner.Err(); err != nil {
		return UploadRecord{}, err
	}

	if !withFiles {
		return rec, nil
	}

	entries, err := os.ReadDir(filepath.Join(root, uploadID))
	if err != nil {
		return UploadRecord{}, err
	}
	rec.Files = []FileInfo{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		rec.Files = append(rec.Files, FileInfo{Name: entry.Name(), Size: info.Size()})
	}
	rec.FileCount = len(rec.Files)
	return rec, nil
}

// listUploadRecords returns every record under root, sorted by upload id.
// Directories without instructions are skipped.
func listUploadRecords(root string) ([]UploadRecord, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	records := []UploadRecord{}
	for _, name := range names {
		rec, err := readUploadRecord(root, name, false)
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func validPathComponent(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
