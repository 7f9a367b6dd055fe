package services

import (
	"sort"
	"strings"

	"github.com/Vibhav-y/streamix/models"
)

const (
	recommendTopTags     = 3
	recommendTopChannels = 2
)

// BuildRecommendationQuery derives a search query from the client's watch
// history: the most frequent tags and channel names, joined with "|".
// Pure function over the request payload; history is never stored here.
// Returns "" when the history yields nothing to search for.
func BuildRecommendationQuery(history []models.HistoryEntry) string {
	if len(history) == 0 {
		return ""
	}

	tagCounts := newFrequency()
	channelCounts := newFrequency()

	for _, entry := range history {
		for _, tag := range entry.Tags {
			tagCounts.add(strings.ToLower(tag))
		}
		if entry.ChannelTitle != "" {
			channelCounts.add(entry.ChannelTitle)
		}
	}

	parts := append(tagCounts.top(recommendTopTags), channelCounts.top(recommendTopChannels)...)
	return strings.Join(parts, "|")
}

// frequency counts keys while remembering first-seen order, so ties rank
// by insertion rather than map iteration order
type frequency struct {
	counts map[string]int
	order  []string
}

func newFrequency() *frequency {
	return &frequency{counts: make(map[string]int)}
}

func (f *frequency) add(key string) {
	if _, seen := f.counts[key]; !seen {
		f.order = append(f.order, key)
	}
	f.counts[key]++
}

func (f *frequency) top(n int) []string {
	keys := make([]string, len(f.order))
	copy(keys, f.order)
	sort.SliceStable(keys, func(i, j int) bool {
		return f.counts[keys[i]] > f.counts[keys[j]]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
