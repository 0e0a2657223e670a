package mvingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mediavault/vault/pkg/mvdb/mvmodel"
)

func testOwner() *mvmodel.User {
	return &mvmodel.User{ID: 1, UUID: "owner-uuid-1"}
}

func TestSubmitChunkOutOfOrderAssembly(t *testing.T) {
	vaultDir := t.TempDir()
	assembler := NewChunkAssembler(vaultDir)
	owner := testOwner()

	chunks := [][]byte{[]byte("first-"), []byte("second-"), []byte("third")}

	// Chunks arrive out of order; only the last arrival completes.
	for _, index := range []int{1, 0} {
		outcome, err := assembler.SubmitChunk(owner, "clip.mp4", index, 3, chunks[index])
		require.NoError(t, err)
		require.False(t, outcome.Completed)
		require.Equal(t, index, outcome.ChunkReceived)
	}

	outcome, err := assembler.SubmitChunk(owner, "clip.mp4", 2, 3, chunks[2])
	require.NoError(t, err)
	require.True(t, outcome.Completed)
	require.NotEmpty(t, outcome.Filename)
	require.NotEmpty(t, outcome.Path)

	data, err := os.ReadFile(outcome.Path)
	require.NoError(t, err)
	require.Equal(t, "first-second-third", string(data))

	// Staging for this upload is gone once the artifact exists.
	_, err = os.Stat(filepath.Join(assembler.StagingRoot(), owner.UUID, "clip.mp4"))
	require.True(t, os.IsNotExist(err))
}

func TestSubmitChunkResubmissionIsIdempotent(t *testing.T) {
	vaultDir := t.TempDir()
	assembler := NewChunkAssembler(vaultDir)
	owner := testOwner()

	outcome, err := assembler.SubmitChunk(owner, "pic.jpg", 0, 2, []byte("garbled"))
	require.NoError(t, err)
	require.False(t, outcome.Completed)

	// A retry of the same index overwrites the earlier bytes and doesn't
	// double count toward completion.
	outcome, err = assembler.SubmitChunk(owner, "pic.jpg", 0, 2, []byte("hello-"))
	require.NoError(t, err)
	require.False(t, outcome.Completed)

	outcome, err = assembler.SubmitChunk(owner, "pic.jpg", 1, 2, []byte("world"))
	require.NoError(t, err)
	require.True(t, outcome.Completed)

	data, err := os.ReadFile(outcome.Path)
	require.NoError(t, err)
	require.Equal(t, "hello-world", string(data))
}

func TestSubmitChunkValidation(t *testing.T) {
	assembler := NewChunkAssembler(t.TempDir())
	owner := testOwner()

	tests := []struct {
		name        string
		fileName    string
		chunkIndex  int
		totalChunks int
		data        []byte
	}{
		{name: "empty filename", fileName: "", chunkIndex: 0, totalChunks: 1, data: []byte("x")},
		{name: "path traversal filename", fileName: "../../etc/passwd", chunkIndex: 0, totalChunks: 1, data: []byte("x")},
		{name: "empty payload", fileName: "a.jpg", chunkIndex: 0, totalChunks: 1, data: nil},
		{name: "zero total chunks", fileName: "a.jpg", chunkIndex: 0, totalChunks: 0, data: []byte("x")},
		{name: "negative index", fileName: "a.jpg", chunkIndex: -1, totalChunks: 2, data: []byte("x")},
		{name: "index past total", fileName: "a.jpg", chunkIndex: 2, totalChunks: 2, data: []byte("x")},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := assembler.SubmitChunk(owner, test.fileName, test.chunkIndex, test.totalChunks, test.data)
			require.ErrorIs(t, err, ErrBadRequest)
		})
	}
}

func TestSubmitChunkResumesFromStagedChunksAfterRestart(t *testing.T) {
	vaultDir := t.TempDir()
	owner := testOwner()

	first := NewChunkAssembler(vaultDir)
	_, err := first.SubmitChunk(owner, "song.mp3", 0, 2, []byte("intro-"))
	require.NoError(t, err)

	// A new assembler over the same vault dir stands in for a daemon
	// restart; the staged chunk on disk must still count.
	second := NewChunkAssembler(vaultDir)
	outcome, err := second.SubmitChunk(owner, "song.mp3", 1, 2, []byte("chorus"))
	require.NoError(t, err)
	require.True(t, outcome.Completed)

	data, err := os.ReadFile(outcome.Path)
	require.NoError(t, err)
	require.Equal(t, "intro-chorus", string(data))
}

func TestSubmitChunkSameNameDifferentOwnersDoNotCollide(t *testing.T) {
	vaultDir := t.TempDir()
	assembler := NewChunkAssembler(vaultDir)

	ownerA := &mvmodel.User{ID: 1, UUID: "owner-a"}
	ownerB := &mvmodel.User{ID: 2, UUID: "owner-b"}

	outcomeA, err := assembler.SubmitChunk(ownerA, "same.jpg", 0, 1, []byte("a-bytes"))
	require.NoError(t, err)
	require.True(t, outcomeA.Completed)

	outcomeB, err := assembler.SubmitChunk(ownerB, "same.jpg", 0, 1, []byte("b-bytes"))
	require.NoError(t, err)
	require.True(t, outcomeB.Completed)

	dataA, err := os.ReadFile(outcomeA.Path)
	require.NoError(t, err)
	require.Equal(t, "a-bytes", string(dataA))

	dataB, err := os.ReadFile(outcomeB.Path)
	require.NoError(t, err)
	require.Equal(t, "b-bytes", string(dataB))
}

func TestSweepRemovesStaleStagingKeepsFresh(t *testing.T) {
	vaultDir := t.TempDir()
	assembler := NewChunkAssembler(vaultDir)
	owner := testOwner()

	_, err := assembler.SubmitChunk(owner, "stale.jpg", 0, 2, []byte("x"))
	require.NoError(t, err)

	staleDir := filepath.Join(assembler.StagingRoot(), owner.UUID, "stale.jpg")

	// With a zero TTL everything qualifies, but the live session protects
	// the upload.
	sweeper := NewStagingSweeper(assembler).WithTTL(0)
	sweeper.Sweep()

	_, err = os.Stat(staleDir)
	require.NoError(t, err)

	// Drop the session, as if the daemon restarted and the upload never
	// resumed.
	assembler.dropSession(uploadKey(owner, "stale.jpg"))
	sweeper.Sweep()

	_, err = os.Stat(staleDir)
	require.True(t, os.IsNotExist(err))
}
