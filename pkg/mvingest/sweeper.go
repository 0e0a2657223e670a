package mvingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/saracen/walker"
)

const (
	DefaultSweepInterval = 1 * time.Hour
	DefaultStagingTTL    = 24 * time.Hour
)

// StagingSweeper removes staging areas for uploads that stalled out: no
// chunk written for longer than the TTL and no live in-memory session.
// Abandoned half-uploads otherwise pile up forever.
type StagingSweeper struct {
	assembler *ChunkAssembler
	interval  time.Duration
	ttl       time.Duration
}

func NewStagingSweeper(assembler *ChunkAssembler) *StagingSweeper {
	return &StagingSweeper{
		assembler: assembler,
		interval:  DefaultSweepInterval,
		ttl:       DefaultStagingTTL,
	}
}

func (s *StagingSweeper) WithInterval(interval time.Duration) *StagingSweeper {
	s.interval = interval
	return s
}

func (s *StagingSweeper) WithTTL(ttl time.Duration) *StagingSweeper {
	s.ttl = ttl
	return s
}

// Run sweeps on the configured interval until ctx is canceled.
func (s *StagingSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep performs one pass over the staging root. Each stale upload dir is
// removed under its upload lock so a chunk arriving mid-sweep is never
// raced.
func (s *StagingSweeper) Sweep() {
	newest := s.collectUploadDirTimes()
	cutoff := time.Now().Add(-s.ttl)

	for uploadDir, mtime := range newest {
		if mtime.After(cutoff) {
			continue
		}

		key := s.uploadKeyForDir(uploadDir)
		if key == "" || s.assembler.HasSession(key) {
			continue
		}

		_ = s.assembler.WithUploadLock(key, func() error {
			if s.assembler.HasSession(key) {
				return nil
			}

			log.Infof("removing stale staging dir %s", uploadDir)
			if err := os.RemoveAll(uploadDir); err != nil {
				log.Errorf("unable to remove stale staging dir %s: %s", uploadDir, err)
			}

			return nil
		})
	}
}

// collectUploadDirTimes walks the staging tree concurrently and records the
// newest mtime seen under each {owner}/{name} upload directory. The dir's
// own mtime counts too so an empty dir still ages out.
func (s *StagingSweeper) collectUploadDirTimes() map[string]time.Time {
	var mu sync.Mutex
	newest := make(map[string]time.Time)

	root := s.assembler.StagingRoot()

	walkFn := func(pathname string, fi os.FileInfo) error {
		uploadDir, ok := s.uploadDirFor(root, pathname)
		if !ok {
			return nil
		}

		mu.Lock()
		if fi.ModTime().After(newest[uploadDir]) {
			newest[uploadDir] = fi.ModTime()
		}
		mu.Unlock()

		return nil
	}

	errorFn := walker.WithErrorCallback(func(pathname string, err error) error {
		// Entries can vanish mid-walk when an upload completes.
		return nil
	})

	if err := walker.Walk(root, walkFn, errorFn); err != nil {
		if !os.IsNotExist(err) {
			log.Errorf("staging sweep walk failed: %s", err)
		}
	}

	return newest
}

// uploadDirFor maps an entry somewhere under the staging root to its
// enclosing {owner}/{name} upload directory. Entries above that depth (the
// per-owner level) are not upload dirs.
func (s *StagingSweeper) uploadDirFor(root, pathname string) (string, bool) {
	rel, err := filepath.Rel(root, pathname)
	if err != nil || rel == "." {
		return "", false
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return "", false
	}

	return filepath.Join(root, parts[0], parts[1]), true
}

// uploadKeyForDir recovers the assembler's upload key from an upload dir
// path.
func (s *StagingSweeper) uploadKeyForDir(uploadDir string) string {
	rel, err := filepath.Rel(s.assembler.StagingRoot(), uploadDir)
	if err != nil {
		return ""
	}

	return filepath.ToSlash(rel)
}
