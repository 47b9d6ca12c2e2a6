package towertrack

import (
	"errors"
	"fmt"

	"github.com/towerkit/towertrack/blobstore"
	"github.com/towerkit/towertrack/store"
)

var (
	// ErrNotFound is returned when a user, badge, or cached entry is not
	// known to the tracker.
	ErrNotFound = errors.New("not found")

	// ErrNoFetcher is returned by Sync when the tracker was built without
	// a remote fetcher.
	ErrNoFetcher = errors.New("no fetcher configured")
)

// translateError unifies errors from the underlying layers so callers only
// need to check the tracker's sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, store.ErrKeyNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if errors.Is(err, blobstore.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	return err
}
