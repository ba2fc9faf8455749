package subtitles

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Track is an ordered caption list.
type Track struct {
	captions []Caption
}

// NewTrack wraps captions in file order.
func NewTrack(captions []Caption) *Track {
	return &Track{captions: captions}
}

// Len returns the number of captions.
func (t *Track) Len() int {
	return len(t.captions)
}

// Find returns the first caption, in file order, whose interval contains pos.
// Overlapping captions therefore resolve to the earlier block.
func (t *Track) Find(pos time.Duration) (Caption, bool) {
	for _, c := range t.captions {
		if c.Contains(pos) {
			return c, true
		}
	}
	return Caption{}, false
}

// FindSidecar looks for a caption file next to video sharing its base name.
// DJI writes uppercase extensions, so ".SRT" is tried first.
func FindSidecar(video string) (string, bool) {
	base := strings.TrimSuffix(video, filepath.Ext(video))
	for _, ext := range []string{".SRT", ".srt"} {
		candidate := base + ext
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
	}
	return "", false
}
