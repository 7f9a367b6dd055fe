package services

import (
	"errors"
	"sort"

	"github.com/Vibhav-y/streamix/models"
)

// ErrNoSuitableFormat means the catalog holds no combined rendition at any
// resolution, so nothing can be served as a single muxed file
var ErrNoSuitableFormat = errors.New("no suitable video format found")

// SelectRendition picks the combined rendition to download for a video request.
//
// Policy: among renditions carrying both tracks, take the highest one whose
// height does not exceed maxHeight. When every combined rendition is taller
// than requested, fall back to the overall highest rather than failing -
// the product serves a better file instead of nothing. Renditions with
// unknown height sort as height 0. Equal heights keep catalog order.
func SelectRendition(renditions []models.Rendition, maxHeight int) (models.Rendition, error) {
	var combined []models.Rendition
	for _, r := range renditions {
		if r.Combined() {
			combined = append(combined, r)
		}
	}
	if len(combined) == 0 {
		return models.Rendition{}, ErrNoSuitableFormat
	}

	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Height > combined[j].Height
	})

	for _, r := range combined {
		if r.Height <= maxHeight {
			return r, nil
		}
	}
	return combined[0], nil
}
