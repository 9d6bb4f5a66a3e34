package stats

import (
	"time"

	"flocksync/internal/model"
)

// Reduce aggregates tweet counters over the trailing window of
// windowDays days ending at now. A tweet is included iff its creation
// time is strictly after the window start; a tweet created exactly at
// the boundary is excluded.
func Reduce(tweets []model.Tweet, windowDays int, now time.Time) model.Stats {
	var s model.Stats
	cutoff := now.AddDate(0, 0, -windowDays)
	for _, t := range tweets {
		if !t.CreatedAt.After(cutoff) {
			continue
		}
		s.RetweetsRecent += t.RetweetCount
		s.FavoritesRecent += t.FavoriteCount
		s.TweetsRecent++
	}
	return s
}
