// Package ingest loads extracted-text documents from the filesystem for
// batch runs. Mailbox and cloud retrieval live outside this module; by the
// time text reaches the pipeline it is already extracted.
package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/finvoice-bridge/internal/entity"
)

type FileResult struct {
	Path         string
	DocumentID   string
	Deduplicated bool
	HashHex      string
	Err          string
}

type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Loaded       uint32
	Deduplicated uint32
	Failed       uint32
}

// LoadDirectory walks root, filters by includeExts (or defaults to .txt),
// skips hidden entries if requested, and reads each file into a Document.
// Files with identical content hashes are loaded once. Returns per-file
// results plus aggregate stats; individual read failures never abort the
// walk.
func LoadDirectory(root string, includeExts []string, skipHidden bool, logger *slog.Logger) ([]entity.Document, []FileResult, DirStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(root) == "" {
		return nil, nil, DirStats{}, errors.New("root path is required")
	}

	exts := map[string]struct{}{}
	if len(includeExts) == 0 {
		exts = map[string]struct{}{"txt": {}}
	} else {
		for _, e := range includeExts {
			e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
			if e != "" {
				exts[e] = struct{}{}
			}
		}
	}

	var docs []entity.Document
	var results []FileResult
	var stats DirStats
	seen := map[string]struct{}{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			results = append(results, FileResult{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil // continue walking
		}
		if skipHidden && isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if _, ok := exts[ext]; !ok {
			return nil
		}
		stats.Matched++

		raw, err := os.ReadFile(path)
		if err != nil {
			results = append(results, FileResult{Path: path, Err: err.Error()})
			stats.Failed++
			return nil
		}

		sum := sha256.Sum256(raw)
		hashHex := hex.EncodeToString(sum[:])
		if _, dup := seen[hashHex]; dup {
			results = append(results, FileResult{Path: path, HashHex: hashHex, Deduplicated: true})
			stats.Deduplicated++
			return nil
		}
		seen[hashHex] = struct{}{}

		docID := filepath.Base(path)
		docs = append(docs, entity.Document{ID: docID, RawText: string(raw)})
		results = append(results, FileResult{Path: path, DocumentID: docID, HashHex: hashHex})
		stats.Loaded++
		return nil
	})
	if err != nil {
		return docs, results, stats, fmt.Errorf("walk: %w", err)
	}

	logger.Info("directory loaded",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"loaded", stats.Loaded,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed,
	)
	return docs, results, stats, nil
}

func isHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}
