package fetch

import (
	"context"

	"flocksync/internal/model"
	"flocksync/internal/xclient"
)

// ProfileFetcher retrieves current profile attributes for one account.
type ProfileFetcher struct {
	client xclient.Client
}

func NewProfileFetcher(client xclient.Client) *ProfileFetcher {
	return &ProfileFetcher{client: client}
}

// Fetch looks the account up by twitter id when known, falling back to
// the handle. On success the profile fields and status "OK" are set;
// on failure only the status changes.
func (f *ProfileFetcher) Fetch(ctx context.Context, a model.Account) model.Account {
	var u model.User
	var err error
	if a.TwitterID != "" {
		u, err = f.client.GetUserByID(ctx, a.TwitterID)
	} else {
		u, err = f.client.GetUserByScreenName(ctx, a.TwitterName)
	}
	if err != nil {
		a.Status = status(err)
		return a
	}
	a.TwitterID = u.ID
	a.TwitterName = u.ScreenName
	a.Followers = u.Followers
	a.Tweets = u.TweetCount
	a.PicURL = u.PicURL
	a.Status = model.StatusOK
	return a
}
