package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"subburn/internal/logging"
	"subburn/internal/queue"
)

// uploadExtensions lists the container formats accepted for ingestion.
var uploadExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".mkv":  {},
	".avi":  {},
	".mpg":  {},
	".mpeg": {},
	".webm": {},
}

// SupportedExtension reports whether the file name carries an accepted video
// container extension.
func SupportedExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	_, ok := uploadExtensions[ext]
	return ok
}

// SupportedExtensions returns the accepted extensions in sorted order.
func SupportedExtensions() []string {
	out := make([]string, 0, len(uploadExtensions))
	for ext := range uploadExtensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// AddFile enqueues a local video file for processing.
func (d *Daemon) AddFile(ctx context.Context, sourcePath, language string) (*queue.Item, error) {
	if d.store == nil {
		return nil, errors.New("queue store unavailable")
	}
	trimmed := strings.TrimSpace(sourcePath)
	if trimmed == "" {
		return nil, errors.New("source path is required")
	}
	absPath, err := filepath.Abs(trimmed)
	if err != nil {
		return nil, fmt.Errorf("resolve source path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat source file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("source path %q is a directory", absPath)
	}
	if !SupportedExtension(info.Name()) {
		return nil, fmt.Errorf("unsupported file extension %q", filepath.Ext(info.Name()))
	}
	item, err := d.store.NewFile(ctx, absPath, language)
	if err != nil {
		return nil, fmt.Errorf("enqueue file: %w", err)
	}
	d.logger.Info("file queued",
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String("source", absPath))
	if err := d.notifier.NotifyFileQueued(ctx, item.Title); err != nil {
		d.logger.Warn("queue notification failed", logging.Error(err))
	}
	return item, nil
}

// SaveUpload stages an uploaded video under the staging directory and
// enqueues it. The original file name is preserved inside a per-upload
// directory so titles stay readable.
func (d *Daemon) SaveUpload(ctx context.Context, originalName, language string, r io.Reader) (*queue.Item, error) {
	if d.store == nil {
		return nil, errors.New("queue store unavailable")
	}
	base := filepath.Base(strings.TrimSpace(originalName))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return nil, errors.New("upload file name is required")
	}
	if !SupportedExtension(base) {
		return nil, fmt.Errorf("unsupported file extension %q", filepath.Ext(base))
	}

	uploadDir := filepath.Join(d.cfg.Paths.StagingDir, "uploads", uuid.NewString())
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	stagedPath := filepath.Join(uploadDir, base)

	dest, err := os.Create(stagedPath)
	if err != nil {
		return nil, fmt.Errorf("create staged file: %w", err)
	}
	written, err := io.Copy(dest, r)
	closeErr := dest.Close()
	if err != nil {
		_ = os.RemoveAll(uploadDir)
		return nil, fmt.Errorf("write staged file: %w", err)
	}
	if closeErr != nil {
		_ = os.RemoveAll(uploadDir)
		return nil, fmt.Errorf("close staged file: %w", closeErr)
	}
	if written == 0 {
		_ = os.RemoveAll(uploadDir)
		return nil, errors.New("uploaded file is empty")
	}

	item, err := d.store.NewFile(ctx, stagedPath, language)
	if err != nil {
		_ = os.RemoveAll(uploadDir)
		return nil, fmt.Errorf("enqueue upload: %w", err)
	}
	d.logger.Info("upload queued",
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String("source", stagedPath),
		logging.Int64("bytes", written))
	if err := d.notifier.NotifyFileQueued(ctx, item.Title); err != nil {
		d.logger.Warn("queue notification failed", logging.Error(err))
	}
	return item, nil
}
