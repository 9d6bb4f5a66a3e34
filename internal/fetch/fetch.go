// Package fetch implements the per-account Twitter fetch steps of the
// sync pipelines. Fetchers never return errors: a failure is recorded
// in the account's status field so sibling accounts are unaffected and
// the outcome still gets persisted.
package fetch

import (
	"errors"

	"flocksync/internal/xclient"
)

// status converts a fetch error into the human-readable description
// stored on the account. API errors carry the message from the Twitter
// error envelope.
func status(err error) string {
	var apiErr *xclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
