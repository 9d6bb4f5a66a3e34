package model

import "time"

// StatusOK is the status recorded after a successful fetch. Any other
// value is the human-readable description of the last failure.
const StatusOK = "OK"

// Account is a tracked Twitter identity plus the synced profile and
// stats fields. ID is assigned by the store; TwitterID and TwitterName
// are the two alternative keys on the Twitter side.
type Account struct {
	ID          string
	TwitterID   string
	TwitterName string

	Followers int
	Tweets    int
	PicURL    string

	RetweetsRecent  int
	FavoritesRecent int
	TweetsRecent    int
	Cycle           int // lookback window in days the stats were computed over

	Status string
}

// Eligible reports whether the account qualifies for sync.
func (a Account) Eligible() bool { return a.TwitterName != "" }

// Tweet represents a subset of v1.1 tweet fields used by the sync.
type Tweet struct {
	ID            string
	CreatedAt     time.Time
	RetweetCount  int
	FavoriteCount int
}

// User represents a subset of v1.1 user fields used by the sync.
type User struct {
	ID         string
	ScreenName string
	Followers  int
	TweetCount int
	PicURL     string
}

// Stats are aggregates over tweets inside the lookback window.
type Stats struct {
	RetweetsRecent  int
	FavoritesRecent int
	TweetsRecent    int
}
