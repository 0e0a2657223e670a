package mvingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/apex/log"
	"github.com/pkg/errors"

	"github.com/mediavault/vault/pkg/lock"
	"github.com/mediavault/vault/pkg/mvdb/mvmodel"
)

// ErrBadRequest marks chunk submissions that are rejected before any disk
// I/O happens: missing filename, empty payload, index out of range.
var ErrBadRequest = errors.New("bad request")

// UploadOutcome reports what happened to a submitted chunk. Filename and
// Path are only set once the final chunk arrived and assembly succeeded.
type UploadOutcome struct {
	ChunkReceived int
	Completed     bool
	Filename      string
	Path          string
}

// uploadSession tracks one in-flight upload keyed by (owner, original
// filename): the declared chunk count and the set of distinct in-range
// indices received so far. Counting staging files would misfire on
// duplicate or out-of-range indices, the set cannot.
type uploadSession struct {
	totalChunks int
	received    map[int]bool
}

// ChunkAssembler accepts numbered chunks, stages them on disk, and
// concatenates them into the final artifact once every index in
// [0, totalChunks) has arrived. All completion checking and assembly for
// one upload key runs under that key's lock; different keys never contend.
type ChunkAssembler struct {
	vaultDir string
	locker   *lock.KeyLocker

	mu       sync.Mutex
	sessions map[string]*uploadSession
}

func NewChunkAssembler(vaultDir string) *ChunkAssembler {
	return &ChunkAssembler{
		vaultDir: vaultDir,
		locker:   lock.NewKeyLocker(),
		sessions: make(map[string]*uploadSession),
	}
}

// StagingRoot is the directory all per-upload staging areas live under.
func (a *ChunkAssembler) StagingRoot() string {
	return filepath.Join(a.vaultDir, "staging")
}

func (a *ChunkAssembler) stagingDir(owner *mvmodel.User, originalName string) string {
	return filepath.Join(a.StagingRoot(), owner.UUID, originalName)
}

func uploadKey(owner *mvmodel.User, originalName string) string {
	return owner.UUID + "/" + originalName
}

func chunkFileName(index int) string {
	return fmt.Sprintf("chunk_%d", index)
}

// SubmitChunk persists one chunk for the upload keyed by (owner,
// originalName). Resubmitting an index overwrites the prior bytes, so
// clients can retry safely. When the distinct-index set covers
// [0, totalChunks) the chunks are concatenated in index order into the
// owner's directory and the staging area is removed. If assembly fails the
// staging area is kept so the client can retry without re-uploading.
func (a *ChunkAssembler) SubmitChunk(owner *mvmodel.User, originalName string, chunkIndex, totalChunks int, data []byte) (*UploadOutcome, error) {
	switch {
	case originalName == "" || originalName != filepath.Base(originalName):
		return nil, errors.Wrapf(ErrBadRequest, "invalid file name %q", originalName)
	case len(data) == 0:
		return nil, errors.Wrap(ErrBadRequest, "empty chunk payload")
	case totalChunks <= 0:
		return nil, errors.Wrapf(ErrBadRequest, "invalid total chunks %d", totalChunks)
	case chunkIndex < 0 || chunkIndex >= totalChunks:
		return nil, errors.Wrapf(ErrBadRequest, "chunk index %d out of range [0, %d)", chunkIndex, totalChunks)
	}

	key := uploadKey(owner, originalName)
	outcome := &UploadOutcome{ChunkReceived: chunkIndex}

	err := a.locker.WithLock(key, func() error {
		stagingDir := a.stagingDir(owner, originalName)

		if err := os.MkdirAll(stagingDir, 0755); err != nil {
			return errors.Wrap(err, "unable to create staging directory")
		}

		chunkPath := filepath.Join(stagingDir, chunkFileName(chunkIndex))
		if err := os.WriteFile(chunkPath, data, 0644); err != nil {
			return errors.Wrapf(err, "unable to write chunk %d", chunkIndex)
		}

		session := a.sessionFor(key, totalChunks, stagingDir)
		session.received[chunkIndex] = true

		if len(session.received) != session.totalChunks {
			return nil
		}

		finalPath, storedName, err := a.assemble(owner, originalName, stagingDir, session.totalChunks)
		if err != nil {
			// Staging stays intact, a retry with the same key picks
			// up where this attempt failed.
			return err
		}

		if err := os.RemoveAll(stagingDir); err != nil {
			log.Errorf("unable to remove staging dir %s: %s", stagingDir, err)
		}

		a.dropSession(key)

		outcome.Completed = true
		outcome.Filename = storedName
		outcome.Path = finalPath

		return nil
	})

	if err != nil {
		return nil, err
	}

	return outcome, nil
}

// HasSession tells whether an upload key has live in-memory state. The
// staging sweeper uses it to leave active uploads alone.
func (a *ChunkAssembler) HasSession(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.sessions[key]
	return ok
}

// WithUploadLock runs f while holding the given upload key's lock. It
// exists for the sweeper, which must not remove a staging directory while
// a chunk for that key is being written.
func (a *ChunkAssembler) WithUploadLock(key string, f func() error) error {
	return a.locker.WithLock(key, f)
}

// sessionFor returns the live session for key, creating it if needed. A
// freshly created session is seeded from the staging directory listing so
// an upload interrupted by a daemon restart resumes with the chunks that
// already made it to disk.
func (a *ChunkAssembler) sessionFor(key string, totalChunks int, stagingDir string) *uploadSession {
	a.mu.Lock()
	defer a.mu.Unlock()

	session, ok := a.sessions[key]
	if !ok {
		session = &uploadSession{
			totalChunks: totalChunks,
			received:    rescanStagedChunks(stagingDir, totalChunks),
		}
		a.sessions[key] = session
	}

	// The client declares the total on every chunk; the latest declaration
	// wins so a corrected retry isn't starved by a stale value.
	if session.totalChunks != totalChunks {
		session.totalChunks = totalChunks
		for index := range session.received {
			if index >= totalChunks {
				delete(session.received, index)
			}
		}
	}

	return session
}

func (a *ChunkAssembler) dropSession(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.sessions, key)
}

// rescanStagedChunks rebuilds the received-index set from the chunk files
// already on disk, ignoring anything that doesn't parse as an in-range
// chunk name.
func rescanStagedChunks(stagingDir string, totalChunks int) map[int]bool {
	received := make(map[int]bool)

	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		return received
	}

	for _, entry := range entries {
		name, found := strings.CutPrefix(entry.Name(), "chunk_")
		if !found {
			continue
		}

		index, err := strconv.Atoi(name)
		if err != nil || index < 0 || index >= totalChunks {
			continue
		}

		received[index] = true
	}

	return received
}

// assemble concatenates the staged chunks in ascending index order into a
// collision-resistant name in the owner's directory. On any failure the
// partially written artifact is removed and the staging directory is left
// untouched.
func (a *ChunkAssembler) assemble(owner *mvmodel.User, originalName, stagingDir string, totalChunks int) (string, string, error) {
	ownerDir := filepath.Join(a.vaultDir, owner.UUID)
	if err := os.MkdirAll(ownerDir, 0755); err != nil {
		return "", "", errors.Wrap(err, "unable to create owner directory")
	}

	storedName := StoredFilename(originalName)
	finalPath := filepath.Join(ownerDir, storedName)

	if err := concatChunks(stagingDir, finalPath, totalChunks); err != nil {
		_ = os.Remove(finalPath)
		return "", "", err
	}

	return finalPath, storedName, nil
}

func concatChunks(stagingDir, finalPath string, totalChunks int) error {
	out, err := os.OpenFile(finalPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrap(err, "unable to create artifact")
	}

	for index := 0; index < totalChunks; index++ {
		if err := appendChunk(out, filepath.Join(stagingDir, chunkFileName(index))); err != nil {
			_ = out.Close()
			return errors.Wrapf(err, "assembly failed at chunk %d", index)
		}
	}

	return out.Close()
}

func appendChunk(out io.Writer, chunkPath string) error {
	chunk, err := os.Open(chunkPath)
	if err != nil {
		return err
	}
	defer chunk.Close()

	_, err = io.Copy(out, chunk)
	return err
}
