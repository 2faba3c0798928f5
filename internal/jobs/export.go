// SPDX-License-Identifier: MIT

package jobs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/sybila/biodivine/internal/store"
)

// exportResult writes the finished job as pretty-printed JSON into dir.
// The write is atomic, so observers of the directory never see partial
// files. The file name combines the model slug, the direction and a
// short job id to stay stable yet unique.
func exportResult(dir string, job Job) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	shortID := job.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s-%s.json", store.Slugify(job.ModelName), job.Direction, shortID))

	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode job %s: %w", job.ID, err)
	}

	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o640))
	if err != nil {
		return "", fmt.Errorf("stage result file: %w", err)
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := pending.Write(data); err != nil {
		return "", fmt.Errorf("write result file: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return "", fmt.Errorf("publish result file: %w", err)
	}
	return path, nil
}
