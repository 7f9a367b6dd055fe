package handlers

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"

	"github.com/Vibhav-y/streamix/config"
	"github.com/Vibhav-y/streamix/models"
	"github.com/Vibhav-y/streamix/services"
	"github.com/Vibhav-y/streamix/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/jaevor/go-nanoid"
)

var generateRequestID func() string

func init() {
	// Initialize nanoid generator for log tags
	var err error
	generateRequestID, err = nanoid.Standard(config.RequestIDLength)
	if err != nil {
		panic(err)
	}
}

// DownloadHandler serves streamed media downloads
type DownloadHandler struct {
	extractor services.Extractor
}

// NewDownloadHandler creates the handler with an injected upstream extractor
func NewDownloadHandler(extractor services.Extractor) *DownloadHandler {
	return &DownloadHandler{extractor: extractor}
}

// Handle handles GET /api/download?v=VIDEO_ID&quality=360|480|720|1080&format=mp4|mp3
//
// Per request: resolve the catalog, select one rendition, pipe its bytes
// through. Failures before the first byte return JSON; a failure mid-stream
// can only truncate the download, the response is already committed.
func (h *DownloadHandler) Handle(c *fiber.Ctx) error {
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	c.Set(fiber.HeaderAccessControlAllowMethods, "GET")

	videoID := c.Query("v")
	if videoID == "" {
		return utils.BadRequest(c, "Missing video ID (?v=...)")
	}

	query := parseDownloadQuery(c, videoID)
	reqID := generateRequestID()

	// Bound resolution so a hung upstream call cannot pin the request forever
	resolveCtx, cancel := context.WithTimeout(c.Context(), config.ResolveTimeout)
	defer cancel()

	catalog, err := h.extractor.GetCatalog(resolveCtx, videoID)
	if err != nil {
		log.Printf("[Download %s] resolve failed for %s: %v\n", reqID, videoID, err)
		return utils.InternalError(c, err.Error())
	}

	if query.Audio() {
		return h.streamAudio(c, reqID, query, catalog.Title)
	}
	return h.streamVideo(c, reqID, query, catalog)
}

func (h *DownloadHandler) streamVideo(c *fiber.Ctx, reqID string, query models.DownloadQuery, catalog *models.Catalog) error {
	chosen, err := services.SelectRendition(catalog.Renditions, query.Quality)
	if err != nil {
		return utils.NotFound(c, "No suitable video format found")
	}

	label := chosen.QualityLabel
	if label == "" {
		label = fmt.Sprintf("%dp", chosen.Height)
	}
	log.Printf("[Download %s] %q at %s (itag %d)\n", reqID, catalog.Title, label, chosen.ItagNo)

	// On client disconnect fasthttp closes the body stream, which closes
	// this reader and releases the upstream fetch
	stream, _, err := h.extractor.OpenStream(c.Context(), query.VideoID, models.StreamSelection{ItagNo: chosen.ItagNo})
	if err != nil {
		log.Printf("[Download %s] open stream failed: %v\n", reqID, err)
		return utils.InternalError(c, err.Error())
	}

	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, utils.VideoFilename(catalog.Title, chosen.QualityLabel, chosen.Height)))
	c.Set(fiber.HeaderContentType, utils.ContentTypeFromExt("mp4"))

	// Content-Length only when the catalog reported it; otherwise the
	// client sees an unbounded chunked body
	c.Context().SetBodyStream(&upstreamBody{rc: stream, reqID: reqID}, bodySize(chosen.ContentLength))
	return nil
}

// bodySize converts a catalog byte count to a fasthttp body size.
// Unknown lengths, and lengths a 32-bit int cannot hold, stream unbounded.
func bodySize(contentLength int64) int {
	if contentLength <= 0 || contentLength > math.MaxInt {
		return -1
	}
	return int(contentLength)
}

func (h *DownloadHandler) streamAudio(c *fiber.Ctx, reqID string, query models.DownloadQuery, title string) error {
	log.Printf("[Download %s] %q highest audio\n", reqID, title)

	stream, _, err := h.extractor.OpenStream(c.Context(), query.VideoID, models.StreamSelection{HighestAudio: true})
	if err != nil {
		log.Printf("[Download %s] open audio stream failed: %v\n", reqID, err)
		return utils.InternalError(c, err.Error())
	}

	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, utils.AudioFilename(title)))
	c.Set(fiber.HeaderContentType, utils.ContentTypeFromExt("mp3"))
	c.Context().SetBodyStream(&upstreamBody{rc: stream, reqID: reqID}, -1)
	return nil
}

// parseDownloadQuery defaults and validates the query string once at the
// boundary. Any format other than mp3 is the video path; an unparseable
// quality falls back to the default threshold.
func parseDownloadQuery(c *fiber.Ctx, videoID string) models.DownloadQuery {
	quality := config.DefaultQuality
	if q := c.Query("quality"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 {
			quality = n
		}
	}

	format := config.DefaultFormat
	if c.Query("format") == "mp3" {
		format = "mp3"
	}

	return models.DownloadQuery{VideoID: videoID, Quality: quality, Format: format}
}

// upstreamBody forwards the upstream byte stream to the response writer.
// A read error here happens after headers were sent, so the only possible
// outcome is a truncated download; it is logged and the connection drops.
type upstreamBody struct {
	rc    io.ReadCloser
	reqID string
}

func (b *upstreamBody) Read(p []byte) (int, error) {
	n, err := b.rc.Read(p)
	if err != nil && err != io.EOF {
		log.Printf("[Download %s] stream aborted: %v\n", b.reqID, err)
	}
	return n, err
}

func (b *upstreamBody) Close() error {
	return b.rc.Close()
}
