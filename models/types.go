package models

// Rendition is one encoded variant of a video, as reported by the catalog
type Rendition struct {
	ItagNo        int
	MimeType      string
	QualityLabel  string
	Height        int
	HasVideo      bool
	HasAudio      bool
	ContentLength int64
}

// Combined reports whether the rendition carries both tracks muxed together,
// i.e. downloadable as a single file with no further processing
func (r Rendition) Combined() bool {
	return r.HasVideo && r.HasAudio
}

// Catalog is the full set of renditions available for one video
type Catalog struct {
	Title      string
	Renditions []Rendition
}

// DownloadQuery is the parsed and defaulted /api/download query string
type DownloadQuery struct {
	VideoID string
	Quality int    // height threshold, e.g. 720
	Format  string // "mp4" or "mp3"
}

// Audio reports whether the audio-only path was requested
func (q DownloadQuery) Audio() bool {
	return q.Format == "mp3"
}

// StreamSelection tells the upstream which byte stream to open:
// either one exact rendition by itag, or the highest available audio
type StreamSelection struct {
	ItagNo       int
	HighestAudio bool
}

// Video is a browse-API item shaped for the client
type Video struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Thumbnail     string   `json:"thumbnail"`
	ThumbnailHigh string   `json:"thumbnailHigh"`
	ChannelTitle  string   `json:"channelTitle"`
	ChannelID     string   `json:"channelId"`
	PublishedAt   string   `json:"publishedAt"`
	Duration      string   `json:"duration"` // ISO 8601, e.g. PT4M13S
	ViewCount     string   `json:"viewCount"`
	LikeCount     string   `json:"likeCount"`
	CommentCount  string   `json:"commentCount"`
	Tags          []string `json:"tags,omitempty"`

	// Pre-formatted companions for direct display
	DurationText  string `json:"durationText"`
	ViewCountText string `json:"viewCountText"`
	PublishedText string `json:"publishedText"`
}

// Category is a video category usable as a browse filter
type Category struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// HistoryEntry is one watched video as the client stores it
type HistoryEntry struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	ChannelTitle string   `json:"channelTitle"`
	Tags         []string `json:"tags,omitempty"`
	Timestamp    int64    `json:"timestamp"`
}

// RecommendationRequest carries the client-owned watch history
type RecommendationRequest struct {
	History []HistoryEntry `json:"history"`
}

// RecommendationResponse carries the derived search query
type RecommendationResponse struct {
	Query string `json:"query"`
}

// ErrorResponse for API errors
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse for health check
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}
