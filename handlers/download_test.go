package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Vibhav-y/streamix/models"

	"github.com/gofiber/fiber/v2"
)

type fakeExtractor struct {
	catalog    *models.Catalog
	catalogErr error
	streamBody string
	stream     io.ReadCloser // takes precedence over streamBody when set
	streamErr  error

	catalogCalls  int
	streamCalls   int
	lastSelection models.StreamSelection
}

func (f *fakeExtractor) GetCatalog(ctx context.Context, videoID string) (*models.Catalog, error) {
	f.catalogCalls++
	if f.catalogErr != nil {
		return nil, f.catalogErr
	}
	return f.catalog, nil
}

func (f *fakeExtractor) OpenStream(ctx context.Context, videoID string, sel models.StreamSelection) (io.ReadCloser, int64, error) {
	f.streamCalls++
	f.lastSelection = sel
	if f.streamErr != nil {
		return nil, 0, f.streamErr
	}
	if f.stream != nil {
		return f.stream, -1, nil
	}
	return io.NopCloser(strings.NewReader(f.streamBody)), int64(len(f.streamBody)), nil
}

// brokenStream yields a few bytes, then fails mid-read
type brokenStream struct {
	data   []byte
	closed bool
}

func (s *brokenStream) Read(p []byte) (int, error) {
	if len(s.data) > 0 {
		n := copy(p, s.data)
		s.data = s.data[n:]
		return n, nil
	}
	return 0, errors.New("upstream connection reset")
}

func (s *brokenStream) Close() error {
	s.closed = true
	return nil
}

func newDownloadApp(ext *fakeExtractor) *fiber.App {
	app := fiber.New()
	app.Get("/api/download", NewDownloadHandler(ext).Handle)
	return app
}

func decodeError(t *testing.T, body io.Reader) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return resp
}

func muxedCatalog(title string, heights ...int) *models.Catalog {
	catalog := &models.Catalog{Title: title}
	for i, h := range heights {
		// Length left unknown so responses stream unbounded; the known-length
		// case has its own test
		catalog.Renditions = append(catalog.Renditions, models.Rendition{
			ItagNo:   100 + i,
			MimeType: "video/mp4",
			Height:   h,
			HasVideo: true,
			HasAudio: true,
		})
	}
	return catalog
}

func TestDownload_MissingVideoID(t *testing.T) {
	ext := &fakeExtractor{}
	app := newDownloadApp(ext)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/download", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if got := decodeError(t, resp.Body).Error; got != "Missing video ID (?v=...)" {
		t.Fatalf("error = %q", got)
	}
	if ext.catalogCalls != 0 || ext.streamCalls != 0 {
		t.Fatalf("upstream called %d/%d times, want zero", ext.catalogCalls, ext.streamCalls)
	}
}

func TestDownload_PicksRequestedHeight(t *testing.T) {
	ext := &fakeExtractor{
		catalog:    muxedCatalog("A Video", 144, 360, 480, 720),
		streamBody: "media-bytes",
	}
	app := newDownloadApp(ext)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/download?v=abc&quality=360&format=mp4", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	// itag 101 is the 360p rendition
	if ext.lastSelection.ItagNo != 101 {
		t.Fatalf("selected itag = %d, want 101 (360p)", ext.lastSelection.ItagNo)
	}
	if ext.lastSelection.HighestAudio {
		t.Fatal("video path must not request highest audio")
	}

	if got := resp.Header.Get(fiber.HeaderContentType); got != "video/mp4" {
		t.Fatalf("Content-Type = %q", got)
	}
	if got := resp.Header.Get(fiber.HeaderAccessControlAllowOrigin); got != "*" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}
	if got := resp.Header.Get(fiber.HeaderContentDisposition); got != `attachment; filename="A Video [360p].mp4"` {
		t.Fatalf("Content-Disposition = %q", got)
	}

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "media-bytes" {
		t.Fatalf("body = %q, want upstream bytes passed through", body)
	}
}

func TestDownload_ContentLengthFromCatalog(t *testing.T) {
	catalog := &models.Catalog{
		Title: "Sized",
		Renditions: []models.Rendition{
			{ItagNo: 18, MimeType: "video/mp4", QualityLabel: "360p", Height: 360, HasVideo: true, HasAudio: true, ContentLength: 11},
		},
	}
	ext := &fakeExtractor{catalog: catalog, streamBody: "0123456789X"}
	app := newDownloadApp(ext)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/download?v=abc", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get(fiber.HeaderContentLength); got != "11" {
		t.Fatalf("Content-Length = %q, want 11", got)
	}
	if got := resp.Header.Get(fiber.HeaderContentDisposition); got != `attachment; filename="Sized [360p].mp4"` {
		t.Fatalf("Content-Disposition = %q", got)
	}
}

func TestDownload_FallsBackToHighestAvailable(t *testing.T) {
	ext := &fakeExtractor{
		catalog:    muxedCatalog("Small Video", 144, 360),
		streamBody: "bytes",
	}
	app := newDownloadApp(ext)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/download?v=abc&quality=1080", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200 (fallback, not failure)", resp.StatusCode)
	}
	// itag 101 is the 360p rendition, the global max here
	if ext.lastSelection.ItagNo != 101 {
		t.Fatalf("selected itag = %d, want 101", ext.lastSelection.ItagNo)
	}
}

func TestDownload_NoCombinedRendition(t *testing.T) {
	ext := &fakeExtractor{
		catalog: &models.Catalog{
			Title: "Split Only",
			Renditions: []models.Rendition{
				{ItagNo: 137, MimeType: "video/mp4", Height: 1080, HasVideo: true},
				{ItagNo: 251, MimeType: "audio/webm", HasAudio: true},
			},
		},
	}
	app := newDownloadApp(ext)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/download?v=abc", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if got := decodeError(t, resp.Body).Error; got != "No suitable video format found" {
		t.Fatalf("error = %q", got)
	}
	if ext.streamCalls != 0 {
		t.Fatalf("stream opened %d times, want zero", ext.streamCalls)
	}
}

func TestDownload_ResolutionFailed(t *testing.T) {
	ext := &fakeExtractor{catalogErr: errors.New("Video unavailable")}
	app := newDownloadApp(ext)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/download?v=gone", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if got := decodeError(t, resp.Body).Error; got != "Video unavailable" {
		t.Fatalf("error = %q, want upstream message verbatim", got)
	}
	if ext.streamCalls != 0 {
		t.Fatalf("stream opened %d times, want zero", ext.streamCalls)
	}
}

func TestDownload_AudioPath(t *testing.T) {
	// Catalog deliberately holds no combined rendition: the audio path must
	// not consult the selector at all
	ext := &fakeExtractor{
		catalog: &models.Catalog{
			Title: "A Song (Live)",
			Renditions: []models.Rendition{
				{ItagNo: 137, MimeType: "video/mp4", Height: 1080, HasVideo: true},
			},
		},
		streamBody: "audio-bytes",
	}
	app := newDownloadApp(ext)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/download?v=abc&format=mp3", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !ext.lastSelection.HighestAudio {
		t.Fatal("audio path must request highest available audio")
	}
	if got := resp.Header.Get(fiber.HeaderContentType); got != "audio/mpeg" {
		t.Fatalf("Content-Type = %q", got)
	}
	if got := resp.Header.Get(fiber.HeaderContentDisposition); got != `attachment; filename="A Song Live.mp3"` {
		t.Fatalf("Content-Disposition = %q", got)
	}

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "audio-bytes" {
		t.Fatalf("body = %q", body)
	}
}

func TestDownload_StreamOpenFailed(t *testing.T) {
	ext := &fakeExtractor{
		catalog:   muxedCatalog("A Video", 360),
		streamErr: errors.New("upstream refused"),
	}
	app := newDownloadApp(ext)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/download?v=abc", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	// Failure before any payload byte: still a clean JSON error
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if got := decodeError(t, resp.Body).Error; got != "upstream refused" {
		t.Fatalf("error = %q", got)
	}
}

func TestBodySize(t *testing.T) {
	if got := bodySize(11); got != 11 {
		t.Fatalf("bodySize(11) = %d", got)
	}
	if got := bodySize(0); got != -1 {
		t.Fatalf("bodySize(0) = %d, want -1 (unknown)", got)
	}
	if got := bodySize(-5); got != -1 {
		t.Fatalf("bodySize(-5) = %d, want -1", got)
	}
}

func TestDownload_FailureAfterHeadersTruncates(t *testing.T) {
	stream := &brokenStream{data: []byte("partial-bytes")}
	ext := &fakeExtractor{
		catalog: muxedCatalog("Cut Short", 360),
		stream:  stream,
	}
	app := newDownloadApp(ext)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/download?v=abc", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	// Headers were committed before the failure: the status cannot change
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200 (already committed)", resp.StatusCode)
	}
	if got := resp.Header.Get(fiber.HeaderContentType); got != "video/mp4" {
		t.Fatalf("Content-Type = %q", got)
	}

	// The download is truncated, never patched up with a JSON error.
	// The read itself may fail: the connection is simply dropped.
	body, _ := io.ReadAll(resp.Body)
	if strings.Contains(string(body), `"error"`) {
		t.Fatalf("error body appended after headers: %q", body)
	}

	if !stream.closed {
		t.Fatal("upstream stream not closed after abort")
	}
}

func TestDownload_InvalidQualityUsesDefault(t *testing.T) {
	ext := &fakeExtractor{
		catalog:    muxedCatalog("A Video", 360, 720, 1080),
		streamBody: "bytes",
	}
	app := newDownloadApp(ext)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/download?v=abc&quality=best", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	// Default threshold 720: itag 101 is the 720p rendition
	if ext.lastSelection.ItagNo != 101 {
		t.Fatalf("selected itag = %d, want 101 (720p)", ext.lastSelection.ItagNo)
	}
}
