package commands

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// AudioExtensions lists the file extensions accepted for playback.
var AudioExtensions = []string{"mp3", "wav", "ogg", "flac", "m4a", "aac", "opus"}

// ValidateAudioPath canonicalizes raw and checks that it names a regular file
// with an allowed audio extension. Nothing is opened unless raw passes the
// syntactic checks first.
func ValidateAudioPath(raw string) (string, bool) {
	if raw == "" || strings.ContainsRune(raw, 0) {
		return "", false
	}
	abs, err := filepath.Abs(raw)
	if err != nil {
		return "", false
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", false
	}
	info, err := os.Stat(canonical)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(canonical), "."))
	if !slices.Contains(AudioExtensions, ext) {
		return "", false
	}
	return canonical, true
}
