package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Vibhav-y/streamix/models"

	"github.com/kkdai/youtube/v2"
)

// Extractor is the upstream video-platform collaborator. Injected into
// handlers so tests can substitute a fake.
type Extractor interface {
	// GetCatalog resolves the video title and every available rendition
	GetCatalog(ctx context.Context, videoID string) (*models.Catalog, error)
	// OpenStream opens the byte stream for one selection.
	// Returns the stream and its length in bytes (-1 when unknown).
	OpenStream(ctx context.Context, videoID string, sel models.StreamSelection) (io.ReadCloser, int64, error)
}

// YouTubeExtractor resolves catalogs and opens streams via the YouTube
// player API
type YouTubeExtractor struct {
	client youtube.Client
}

// NewYouTubeExtractor creates an extractor backed by the given HTTP client
func NewYouTubeExtractor(httpClient *http.Client) *YouTubeExtractor {
	return &YouTubeExtractor{
		client: youtube.Client{HTTPClient: httpClient},
	}
}

// GetCatalog fetches video metadata and maps every upstream format to a Rendition.
// The upstream error text reaches the client as-is, so no prefix is added here.
func (e *YouTubeExtractor) GetCatalog(ctx context.Context, videoID string) (*models.Catalog, error) {
	video, err := e.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, err
	}

	renditions := make([]models.Rendition, 0, len(video.Formats))
	for _, f := range video.Formats {
		renditions = append(renditions, toRendition(f))
	}

	return &models.Catalog{
		Title:      video.Title,
		Renditions: renditions,
	}, nil
}

// OpenStream re-resolves the video and opens the exact selected stream.
// The second resolution mirrors the upstream's short-lived stream URLs:
// a catalog fetched earlier cannot be trusted to still be streamable.
func (e *YouTubeExtractor) OpenStream(ctx context.Context, videoID string, sel models.StreamSelection) (io.ReadCloser, int64, error) {
	video, err := e.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch video info: %w", err)
	}

	var format *youtube.Format
	if sel.HighestAudio {
		format = bestAudio(video.Formats)
		if format == nil {
			return nil, 0, fmt.Errorf("no audio stream available")
		}
	} else {
		matches := video.Formats.Itag(sel.ItagNo)
		if len(matches) == 0 {
			return nil, 0, fmt.Errorf("format itag %d no longer available", sel.ItagNo)
		}
		format = &matches[0]
	}

	stream, size, err := e.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open stream: %w", err)
	}
	if size <= 0 {
		size = -1
	}
	return stream, size, nil
}

// toRendition maps an upstream format to the catalog model.
// Muxed formats carry a video mime type plus audio channels; audio-only
// formats carry an audio mime type.
func toRendition(f youtube.Format) models.Rendition {
	return models.Rendition{
		ItagNo:        f.ItagNo,
		MimeType:      f.MimeType,
		QualityLabel:  f.QualityLabel,
		Height:        f.Height,
		HasVideo:      strings.HasPrefix(f.MimeType, "video/"),
		HasAudio:      f.AudioChannels > 0 || strings.HasPrefix(f.MimeType, "audio/"),
		ContentLength: f.ContentLength,
	}
}

// bestAudio picks the highest-bitrate audio-only format
func bestAudio(formats youtube.FormatList) *youtube.Format {
	var best *youtube.Format
	for i := range formats {
		f := &formats[i]
		if !strings.HasPrefix(f.MimeType, "audio/") {
			continue
		}
		if best == nil || f.Bitrate > best.Bitrate {
			best = f
		}
	}
	return best
}
