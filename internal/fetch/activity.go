package fetch

import (
	"context"
	"time"

	"flocksync/internal/model"
	"flocksync/internal/stats"
	"flocksync/internal/xclient"
)

// ActivityFetcher retrieves an account's recent original tweets and
// reduces them to lookback-window aggregates.
type ActivityFetcher struct {
	client     xclient.Client
	windowDays int
	nowFn      func() time.Time
}

func NewActivityFetcher(client xclient.Client, windowDays int) *ActivityFetcher {
	return &ActivityFetcher{client: client, windowDays: windowDays, nowFn: time.Now}
}

// Fetch requires a twitter id resolved by a prior profile sync. On
// success the aggregates, window length, and status "OK" are set; on
// failure only the status changes.
func (f *ActivityFetcher) Fetch(ctx context.Context, a model.Account) model.Account {
	if a.TwitterID == "" {
		a.Status = "missing twitter id"
		return a
	}
	tweets, err := f.client.GetUserTimeline(ctx, a.TwitterID)
	if err != nil {
		a.Status = status(err)
		return a
	}
	s := stats.Reduce(tweets, f.windowDays, f.nowFn().UTC())
	a.RetweetsRecent = s.RetweetsRecent
	a.FavoritesRecent = s.FavoritesRecent
	a.TweetsRecent = s.TweetsRecent
	a.Cycle = f.windowDays
	a.Status = model.StatusOK
	return a
}
