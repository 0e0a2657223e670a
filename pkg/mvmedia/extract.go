package mvmedia

import (
	"time"

	"github.com/mediavault/vault/pkg/mvdb/mvmodel"
)

// subprocessTimeout bounds ffprobe/ffmpeg invocations so a wedged child
// process can't hold an ingestion worker forever.
const subprocessTimeout = 30 * time.Second

// Extractor probes an artifact and fills in whatever attributes it can
// determine. Extraction is best effort: a damaged file must never abort the
// upload pipeline, so failures are logged and the corresponding fields are
// simply left nil.
type Extractor interface {
	Extract(path string, attrs *mvmodel.MediaMetadata)
}

// ExtractorForKind selects the probe for a sniffed media kind. Unknown
// media gets a no-op extractor, its metadata row carries only the
// container-independent fields (size, mime type, checksum).
func ExtractorForKind(kind mvmodel.MediaKind) Extractor {
	switch kind {
	case mvmodel.MediaKindPhoto:
		return &PhotoExtractor{}
	case mvmodel.MediaKindVideo:
		return &VideoExtractor{Timeout: subprocessTimeout}
	default:
		return noopExtractor{}
	}
}

type noopExtractor struct{}

func (noopExtractor) Extract(string, *mvmodel.MediaMetadata) {}
