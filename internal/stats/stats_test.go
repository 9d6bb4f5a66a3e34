package stats

import (
	"testing"
	"time"

	"flocksync/internal/model"
)

func TestReduceWindow(t *testing.T) {
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	tweets := []model.Tweet{
		{CreatedAt: now.AddDate(0, 0, -2), RetweetCount: 3, FavoriteCount: 5},
		{CreatedAt: now.AddDate(0, 0, -40), RetweetCount: 1, FavoriteCount: 1},
	}
	s := Reduce(tweets, 7, now)
	if s.RetweetsRecent != 3 || s.FavoritesRecent != 5 || s.TweetsRecent != 1 {
		t.Fatalf("unexpected aggregate: %+v", s)
	}
}

func TestReduceEmpty(t *testing.T) {
	s := Reduce(nil, 7, time.Now().UTC())
	if s != (model.Stats{}) {
		t.Fatalf("expected zero aggregate, got %+v", s)
	}
}

func TestReduceBoundaryExcluded(t *testing.T) {
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	tweets := []model.Tweet{
		{CreatedAt: now.AddDate(0, 0, -7), RetweetCount: 9, FavoriteCount: 9},
		{CreatedAt: now.AddDate(0, 0, -7).Add(time.Second), RetweetCount: 1, FavoriteCount: 2},
	}
	s := Reduce(tweets, 7, now)
	if s.TweetsRecent != 1 {
		t.Fatalf("boundary tweet should be excluded, got count %d", s.TweetsRecent)
	}
	if s.RetweetsRecent != 1 || s.FavoritesRecent != 2 {
		t.Fatalf("unexpected sums: %+v", s)
	}
}

func TestReduceCountMatchesIncluded(t *testing.T) {
	now := time.Now().UTC()
	var tweets []model.Tweet
	included := 0
	for i := 0; i < 30; i++ {
		age := time.Duration(i*10) * time.Hour
		tweets = append(tweets, model.Tweet{CreatedAt: now.Add(-age), RetweetCount: i, FavoriteCount: 1})
		if now.Add(-age).After(now.AddDate(0, 0, -7)) {
			included++
		}
	}
	s := Reduce(tweets, 7, now)
	if s.TweetsRecent != included {
		t.Fatalf("count %d != included %d", s.TweetsRecent, included)
	}
}
