package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// Characters kept in download filenames: word chars, whitespace, hyphen
var unsafeChars = regexp.MustCompile(`[^\w\s-]`)

// SanitizeTitle strips a video title down to a safe filename component
func SanitizeTitle(title string) string {
	return strings.TrimSpace(unsafeChars.ReplaceAllString(title, ""))
}

// VideoFilename builds the attachment name for a muxed video download.
// label falls back to the pixel height when the catalog gave no quality label.
func VideoFilename(title, qualityLabel string, height int) string {
	label := qualityLabel
	if label == "" {
		label = fmt.Sprintf("%dp", height)
	}
	return fmt.Sprintf("%s [%s].mp4", SanitizeTitle(title), label)
}

// AudioFilename builds the attachment name for an audio download
func AudioFilename(title string) string {
	return SanitizeTitle(title) + ".mp3"
}

// ContentTypeFromExt returns the media type for a download extension
func ContentTypeFromExt(ext string) string {
	switch ext {
	case "mp4":
		return "video/mp4"
	case "mp3":
		return "audio/mpeg"
	default:
		return "application/octet-stream"
	}
}
