package mvingest

import (
	"os"

	"github.com/apex/log"
	"github.com/pkg/errors"

	"github.com/mediavault/vault/pkg/mvdb/mvmodel"
	"github.com/mediavault/vault/pkg/mvdb/stor"
	"github.com/mediavault/vault/pkg/mvmedia"
)

// Pipeline turns a freshly assembled artifact into catalog rows: sniff the
// mime type, fingerprint the content, run the kind-specific extractor, and
// insert the Media and MediaMetadata records. Ingestion succeeds when the
// artifact is assembled and the Media row exists; incomplete metadata is
// not a failure.
type Pipeline struct {
	mediaStor    stor.MediaStor
	metadataStor stor.MediaMetadataStor
}

func NewPipeline(mediaStor stor.MediaStor, metadataStor stor.MediaMetadataStor) *Pipeline {
	return &Pipeline{
		mediaStor:    mediaStor,
		metadataStor: metadataStor,
	}
}

// Finalize catalogs the assembled artifact described by outcome for owner.
func (p *Pipeline) Finalize(owner *mvmodel.User, originalName string, outcome *UploadOutcome) (*mvmodel.Media, error) {
	mimeType := mvmedia.SniffMimeType(outcome.Path)
	kind := mvmodel.MediaKindFromMime(mimeType)

	checksum, err := mvmedia.FileChecksum(outcome.Path)
	if err != nil {
		// The fingerprint is best effort; the artifact is still served
		// without one.
		log.Errorf("unable to fingerprint %s: %s", outcome.Path, err)
		checksum = ""
	}

	media, err := p.mediaStor.CreateMedia(owner, outcome.Filename, outcome.Path, kind, checksum)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create media record")
	}

	attrs := &mvmodel.MediaMetadata{
		OriginalFilename: &originalName,
		MimeType:         &mimeType,
	}

	if checksum != "" {
		attrs.Checksum = &checksum
	}

	if finfo, err := os.Stat(outcome.Path); err == nil {
		size := finfo.Size()
		attrs.Size = &size
	}

	mvmedia.ExtractorForKind(kind).Extract(outcome.Path, attrs)

	if _, err := p.metadataStor.CreateMetadata(media, attrs, owner.ID); err != nil {
		// The media row is in place and the artifact is on disk, a lost
		// metadata row degrades detail views but not ingestion.
		log.Errorf("unable to create metadata for media %d: %s", media.ID, err)
	}

	return media, nil
}
