package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Vibhav-y/streamix/config"
	"github.com/Vibhav-y/streamix/models"
	"github.com/Vibhav-y/streamix/utils"
)

// ErrAPIKeyMissing means no Data API key was configured or supplied
var ErrAPIKeyMissing = fmt.Errorf("API key missing")

// MetadataClient proxies the YouTube Data API v3 for the browsing UI
type MetadataClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewMetadataClient creates a Data API client. apiKey may be empty when
// every request carries its own key.
func NewMetadataClient(httpClient *http.Client, apiKey string) *MetadataClient {
	return &MetadataClient{
		httpClient: httpClient,
		baseURL:    config.DataAPIBase,
		apiKey:     apiKey,
	}
}

// WithKey returns a client using the given key instead of the configured one.
// Empty override keeps the current client.
func (m *MetadataClient) WithKey(key string) *MetadataClient {
	if key == "" {
		return m
	}
	clone := *m
	clone.apiKey = key
	return &clone
}

// Popular fetches the mostPopular chart, optionally filtered by category.
// categoryID "0" means all categories.
func (m *MetadataClient) Popular(ctx context.Context, maxResults int, categoryID string) ([]models.Video, error) {
	params := url.Values{}
	params.Set("part", "snippet,contentDetails,statistics")
	params.Set("chart", "mostPopular")
	params.Set("regionCode", config.DefaultRegion)
	params.Set("maxResults", strconv.Itoa(maxResults))
	if categoryID != "" && categoryID != "0" {
		params.Set("videoCategoryId", categoryID)
	}

	var resp videoListResponse
	if err := m.get(ctx, "/videos", params, &resp); err != nil {
		return nil, err
	}
	return shapeVideos(resp.Items), nil
}

// Search runs a keyword search and resolves full details for every hit.
// Two upstream calls: the search endpoint only returns snippets.
func (m *MetadataClient) Search(ctx context.Context, query string, maxResults int) ([]models.Video, error) {
	if strings.TrimSpace(query) == "" {
		return []models.Video{}, nil
	}

	ids, err := m.searchIDs(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Video{}, nil
	}
	return m.videosByIDs(ctx, ids)
}

// VideoByID fetches one video with full details; nil when it does not exist
func (m *MetadataClient) VideoByID(ctx context.Context, videoID string) (*models.Video, error) {
	params := url.Values{}
	params.Set("part", "snippet,contentDetails,statistics")
	params.Set("id", videoID)

	var resp videoListResponse
	if err := m.get(ctx, "/videos", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, nil
	}
	v := shapeVideo(resp.Items[0])
	return &v, nil
}

// Related searches by keywords taken from the video's title, since the
// upstream API dropped its related-videos parameter. Any failure falls back
// to the popular chart so the watch page never renders an empty rail.
func (m *MetadataClient) Related(ctx context.Context, videoID string, maxResults int) ([]models.Video, error) {
	videos, err := m.related(ctx, videoID, maxResults)
	if err != nil || len(videos) == 0 {
		return m.Popular(ctx, maxResults, "0")
	}
	return videos, nil
}

func (m *MetadataClient) related(ctx context.Context, videoID string, maxResults int) ([]models.Video, error) {
	video, err := m.VideoByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, fmt.Errorf("video %s not found", videoID)
	}

	keywords := titleKeywords(video.Title)
	if keywords == "" {
		return nil, fmt.Errorf("no usable keywords in title")
	}

	// +1 so the current video can be filtered back out
	ids, err := m.searchIDs(ctx, keywords, maxResults+1)
	if err != nil {
		return nil, err
	}

	filtered := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != videoID {
			filtered = append(filtered, id)
		}
	}
	if len(filtered) > maxResults {
		filtered = filtered[:maxResults]
	}
	if len(filtered) == 0 {
		return nil, fmt.Errorf("no related videos found")
	}
	return m.videosByIDs(ctx, filtered)
}

// Categories fetches the assignable video categories
func (m *MetadataClient) Categories(ctx context.Context) ([]models.Category, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("regionCode", config.DefaultRegion)

	var resp categoryListResponse
	if err := m.get(ctx, "/videoCategories", params, &resp); err != nil {
		return nil, err
	}

	categories := make([]models.Category, 0, len(resp.Items))
	for _, item := range resp.Items {
		if !item.Snippet.Assignable {
			continue
		}
		categories = append(categories, models.Category{
			ID:    item.ID,
			Title: item.Snippet.Title,
		})
	}
	return categories, nil
}

func (m *MetadataClient) searchIDs(ctx context.Context, query string, maxResults int) ([]string, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(maxResults))

	var resp searchListResponse
	if err := m.get(ctx, "/search", params, &resp); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	return ids, nil
}

func (m *MetadataClient) videosByIDs(ctx context.Context, ids []string) ([]models.Video, error) {
	params := url.Values{}
	params.Set("part", "snippet,contentDetails,statistics")
	params.Set("id", strings.Join(ids, ","))

	var resp videoListResponse
	if err := m.get(ctx, "/videos", params, &resp); err != nil {
		return nil, err
	}
	return shapeVideos(resp.Items), nil
}

func (m *MetadataClient) get(ctx context.Context, path string, params url.Values, out any) error {
	if m.apiKey == "" {
		return ErrAPIKeyMissing
	}
	params.Set("key", m.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach YouTube API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("YouTube API error: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Raw Data API shapes

type videoListResponse struct {
	Items []videoItem `json:"items"`
}

type videoItem struct {
	ID      string `json:"id"`
	Snippet struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		ChannelID    string `json:"channelId"`
		ChannelTitle string `json:"channelTitle"`
		PublishedAt  string `json:"publishedAt"`
		Thumbnails   struct {
			Default thumbnail `json:"default"`
			Medium  thumbnail `json:"medium"`
			High    thumbnail `json:"high"`
		} `json:"thumbnails"`
		Tags []string `json:"tags"`
	} `json:"snippet"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
	Statistics struct {
		ViewCount    string `json:"viewCount"`
		LikeCount    string `json:"likeCount"`
		CommentCount string `json:"commentCount"`
	} `json:"statistics"`
}

type thumbnail struct {
	URL string `json:"url"`
}

type searchListResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

type categoryListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title      string `json:"title"`
			Assignable bool   `json:"assignable"`
		} `json:"snippet"`
	} `json:"items"`
}

func shapeVideos(items []videoItem) []models.Video {
	videos := make([]models.Video, 0, len(items))
	for _, item := range items {
		videos = append(videos, shapeVideo(item))
	}
	return videos
}

func shapeVideo(item videoItem) models.Video {
	viewCount := item.Statistics.ViewCount
	if viewCount == "" {
		viewCount = "0"
	}
	likeCount := item.Statistics.LikeCount
	if likeCount == "" {
		likeCount = "0"
	}
	commentCount := item.Statistics.CommentCount
	if commentCount == "" {
		commentCount = "0"
	}

	thumb := item.Snippet.Thumbnails.Medium.URL
	if thumb == "" {
		thumb = item.Snippet.Thumbnails.Default.URL
	}
	thumbHigh := item.Snippet.Thumbnails.High.URL
	if thumbHigh == "" {
		thumbHigh = item.Snippet.Thumbnails.Medium.URL
	}

	publishedText := ""
	if published, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
		publishedText = utils.FormatTimeAgo(published)
	}

	return models.Video{
		ID:            item.ID,
		Title:         item.Snippet.Title,
		Description:   item.Snippet.Description,
		Thumbnail:     thumb,
		ThumbnailHigh: thumbHigh,
		ChannelTitle:  item.Snippet.ChannelTitle,
		ChannelID:     item.Snippet.ChannelID,
		PublishedAt:   item.Snippet.PublishedAt,
		Duration:      item.ContentDetails.Duration,
		ViewCount:     viewCount,
		LikeCount:     likeCount,
		CommentCount:  commentCount,
		Tags:          item.Snippet.Tags,
		DurationText:  utils.FormatDuration(item.ContentDetails.Duration),
		ViewCountText: utils.FormatViewCount(viewCount),
		PublishedText: publishedText,
	}
}

var nonWordOrSpace = regexp.MustCompile(`[^\w\s]`)

// titleKeywords takes the first few meaningful words of a title as a search query
func titleKeywords(title string) string {
	cleaned := nonWordOrSpace.ReplaceAllString(title, "")
	words := strings.Fields(cleaned)
	if len(words) > 4 {
		words = words[:4]
	}
	return strings.Join(words, " ")
}
