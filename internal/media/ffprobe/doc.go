// Package ffprobe runs ffprobe against a media file and decodes the parts of
// its JSON report needed to decide whether the file is playable audio.
//
// Inspect is the entry point. Result exposes the audio stream count and the
// container duration, which is optional: streams piped through some muxers
// report no length at all.
package ffprobe
