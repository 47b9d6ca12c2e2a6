package towertrack

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/towerkit/towertrack/badge"
	"github.com/towerkit/towertrack/blobstore"
	"github.com/towerkit/towertrack/codec"
	"github.com/towerkit/towertrack/fetch"
	"github.com/towerkit/towertrack/snapshot"
	"github.com/towerkit/towertrack/store"
)

// Fetcher resolves a user's awarded badges from the remote data source.
// fetch.Client implements it; tests substitute stubs.
type Fetcher interface {
	UserBadges(ctx context.Context, userID int64) ([]fetch.UserBadge, error)
	AwardedDates(ctx context.Context, userID int64, badgeIDs []int64) (map[int64]time.Time, error)
}

// Tracker is the application-level owner of the badge, area, and user
// managers. Instances are constructed explicitly at startup and passed to
// consumers by reference; there are no package-level singletons.
//
// The managers themselves are synchronous and perform no I/O. The tracker
// resolves all remote and cached data first, then feeds records into the
// managers one at a time.
type Tracker struct {
	badges *badge.BadgeManager
	areas  *badge.AreaManager
	users  *badge.UserManager

	mu          sync.RWMutex
	completions map[int64]*roaring64.Bitmap

	store   store.Store
	fetcher Fetcher
	codec   codec.Codec
	logger  *Logger
	metrics MetricsCollector
}

// SyncResult summarizes a completion sync.
type SyncResult struct {
	UserID      int64
	Awarded     int
	Uncompleted int
}

// CatalogStats summarizes a catalog load.
type CatalogStats struct {
	Badges  int
	Areas   int
	Users   int
	Skipped int
}

// Catalog is the community-maintained badge taxonomy fed into the tracker
// at startup.
type Catalog struct {
	Badges []badge.Badge `json:"badges"`
	Areas  []badge.Area  `json:"areas,omitempty"`
	Users  []badge.User  `json:"users,omitempty"`
}

// New creates a Tracker with empty managers.
func New(optFns ...Option) *Tracker {
	o := applyOptions(optFns)

	return &Tracker{
		badges:      badge.NewBadgeManager(),
		areas:       badge.NewAreaManager(),
		users:       badge.NewUserManager(),
		completions: make(map[int64]*roaring64.Bitmap),
		store:       o.store,
		fetcher:     o.fetcher,
		codec:       o.codec,
		logger:      o.logger,
		metrics:     o.metrics,
	}
}

// Badges returns the badge manager. The pointer is only swapped by
// LoadSnapshot, so reads go through the tracker mutex.
func (t *Tracker) Badges() *badge.BadgeManager {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.badges
}

// Areas returns the area manager.
func (t *Tracker) Areas() *badge.AreaManager {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.areas
}

// Users returns the user manager.
func (t *Tracker) Users() *badge.UserManager {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.users
}

// LoadCatalog feeds a catalog into the managers. Records rejected by the
// manager guards are skipped and logged; a rejected record never leaves
// partial index entries behind.
func (t *Tracker) LoadCatalog(ctx context.Context, c Catalog) (CatalogStats, error) {
	start := time.Now()

	t.mu.RLock()
	badges, areas, users := t.badges, t.areas, t.users
	t.mu.RUnlock()

	var stats CatalogStats
	for _, b := range c.Badges {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if _, err := badges.AddBadge(b); err != nil {
			stats.Skipped++
			t.logger.WarnContext(ctx, "badge skipped", "badge_id", b.ID, "error", err)
			continue
		}
		stats.Badges++
	}
	for _, a := range c.Areas {
		if _, err := areas.AddArea(a); err != nil {
			stats.Skipped++
			t.logger.WarnContext(ctx, "area skipped", "area", a.Name, "error", err)
			continue
		}
		stats.Areas++
	}
	for _, u := range c.Users {
		if _, err := users.AddUser(u); err != nil {
			stats.Skipped++
			t.logger.WarnContext(ctx, "user skipped", "user_id", u.ID, "error", err)
			continue
		}
		stats.Users++
	}

	loaded := stats.Badges + stats.Areas + stats.Users
	t.metrics.RecordCatalogLoad(loaded, stats.Skipped, time.Since(start))
	t.logger.LogCatalogLoad(ctx, stats.Badges, stats.Areas, stats.Skipped)

	return stats, nil
}

// Sync fetches the user's awarded badges from the remote source, rebuilds
// the user's completion set, and caches both for the next session.
func (t *Tracker) Sync(ctx context.Context, userID int64) (SyncResult, error) {
	start := time.Now()

	if t.fetcher == nil {
		return SyncResult{}, ErrNoFetcher
	}

	awarded, err := t.fetcher.UserBadges(ctx, userID)
	if err != nil {
		t.metrics.RecordSync(0, time.Since(start), err)
		t.logger.LogSync(ctx, userID, 0, err)
		return SyncResult{}, fmt.Errorf("sync user %d: %w", userID, err)
	}

	ids := make([]int64, 0, len(awarded))
	for _, b := range awarded {
		ids = append(ids, b.ID)
	}
	completion := badge.NewCompletion(ids...)

	if err := t.cacheUser(ctx, userID, awarded, completion); err != nil {
		t.metrics.RecordSync(len(awarded), time.Since(start), err)
		t.logger.LogSync(ctx, userID, len(awarded), err)
		return SyncResult{}, err
	}

	t.mu.Lock()
	t.completions[userID] = completion
	t.mu.Unlock()

	t.metrics.RecordSync(len(awarded), time.Since(start), nil)
	t.logger.LogSync(ctx, userID, len(awarded), nil)

	return SyncResult{
		UserID:      userID,
		Awarded:     len(ids),
		Uncompleted: len(t.Badges().Uncompleted(completion)),
	}, nil
}

func (t *Tracker) cacheUser(ctx context.Context, userID int64, awarded []fetch.UserBadge, completion *roaring64.Bitmap) error {
	data, err := t.codec.Marshal(awarded)
	if err != nil {
		return fmt.Errorf("encode awarded badges: %w", err)
	}
	if err := t.store.Put(ctx, userBadgesKey(userID), data); err != nil {
		return err
	}

	bm, err := completion.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode completion set: %w", err)
	}
	return t.store.Put(ctx, userCompletionKey(userID), bm)
}

// RestoreUser loads a user's cached completion set from the local store.
func (t *Tracker) RestoreUser(ctx context.Context, userID int64) error {
	data, err := t.store.Get(ctx, userCompletionKey(userID))
	if err != nil {
		return translateError(err)
	}

	completion := roaring64.New()
	if err := completion.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("decode completion set for user %d: %w", userID, err)
	}

	t.mu.Lock()
	t.completions[userID] = completion
	t.mu.Unlock()

	return nil
}

// Restore loads every cached completion set. Call it once at startup,
// before serving queries.
func (t *Tracker) Restore(ctx context.Context) (int, error) {
	keys, err := t.store.List(ctx, "user:")
	if err != nil {
		t.logger.LogRestore(ctx, 0, err)
		return 0, err
	}

	restored := 0
	for _, key := range keys {
		userID, ok := parseCompletionKey(key)
		if !ok {
			continue
		}
		if err := t.RestoreUser(ctx, userID); err != nil {
			t.logger.LogRestore(ctx, restored, err)
			return restored, err
		}
		restored++
	}

	t.logger.LogRestore(ctx, restored, nil)
	return restored, nil
}

// CachedUserBadges returns the raw awarded-badge records cached for a user.
func (t *Tracker) CachedUserBadges(ctx context.Context, userID int64) ([]fetch.UserBadge, error) {
	data, err := t.store.Get(ctx, userBadgesKey(userID))
	if err != nil {
		return nil, translateError(err)
	}

	var awarded []fetch.UserBadge
	if err := t.codec.Unmarshal(data, &awarded); err != nil {
		return nil, fmt.Errorf("decode cached badges for user %d: %w", userID, err)
	}
	return awarded, nil
}

// Completion returns a copy of the user's completion set.
func (t *Tracker) Completion(userID int64) (*roaring64.Bitmap, bool) {
	t.mu.RLock()
	completion, ok := t.completions[userID]
	t.mu.RUnlock()

	if !ok {
		return nil, false
	}
	return completion.Clone(), true
}

// Uncompleted returns every indexed badge id the user has not completed,
// in index key order.
func (t *Tracker) Uncompleted(userID int64) ([]int64, error) {
	t.mu.RLock()
	completion, ok := t.completions[userID]
	badges := t.badges
	t.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: no completion data for user %d", ErrNotFound, userID)
	}
	return badges.Uncompleted(completion), nil
}

// UncompletedBadges resolves the user's uncompleted ids to badge records,
// de-duplicating badges reachable under several historical ids.
func (t *Tracker) UncompletedBadges(userID int64) ([]badge.Badge, error) {
	ids, err := t.Uncompleted(userID)
	if err != nil {
		return nil, err
	}

	badges := t.Badges()
	seen := make(map[int64]struct{}, len(ids))
	out := make([]badge.Badge, 0, len(ids))
	for _, id := range ids {
		b, ok := badges.ByID(id)
		if !ok {
			continue
		}
		if _, dup := seen[b.ID]; dup {
			continue
		}
		seen[b.ID] = struct{}{}
		out = append(out, b)
	}
	return out, nil
}

// snapshotState is the persisted shape of a tracker snapshot. Completion
// bitmaps are serialized per user, keyed by the user id in decimal.
type snapshotState struct {
	Badges      []badge.Badge     `json:"badges"`
	Areas       []badge.Area      `json:"areas,omitempty"`
	Users       []badge.User      `json:"users,omitempty"`
	Completions map[string][]byte `json:"completions,omitempty"`
}

// SaveSnapshot writes the tracker's full state into the blob store.
func (t *Tracker) SaveSnapshot(ctx context.Context, bs blobstore.BlobStore, name string) error {
	start := time.Now()

	t.mu.RLock()
	state := snapshotState{
		Badges:      t.badges.Badges(),
		Areas:       t.areas.Areas(),
		Users:       t.users.Users(),
		Completions: make(map[string][]byte, len(t.completions)),
	}
	for userID, completion := range t.completions {
		bm, err := completion.MarshalBinary()
		if err != nil {
			t.mu.RUnlock()
			return fmt.Errorf("encode completion set for user %d: %w", userID, err)
		}
		state.Completions[strconv.FormatInt(userID, 10)] = bm
	}
	t.mu.RUnlock()

	err := snapshot.Save(ctx, bs, name, state, snapshot.Options{Codec: t.codec})
	t.metrics.RecordSnapshot("save", time.Since(start), err)
	t.logger.LogSnapshot(ctx, "save", name, err)

	return err
}

// LoadSnapshot replaces the tracker's state with the named snapshot,
// rebuilding every index by repeated insertion.
func (t *Tracker) LoadSnapshot(ctx context.Context, bs blobstore.BlobStore, name string) error {
	start := time.Now()

	var state snapshotState
	if err := snapshot.Load(ctx, bs, name, &state); err != nil {
		t.metrics.RecordSnapshot("load", time.Since(start), err)
		t.logger.LogSnapshot(ctx, "load", name, err)
		return translateError(err)
	}

	badges := badge.NewBadgeManager()
	areas := badge.NewAreaManager()
	users := badge.NewUserManager()

	for _, b := range state.Badges {
		if _, err := badges.AddBadge(b); err != nil {
			return fmt.Errorf("snapshot %q: %w", name, err)
		}
	}
	for _, a := range state.Areas {
		if _, err := areas.AddArea(a); err != nil {
			return fmt.Errorf("snapshot %q: %w", name, err)
		}
	}
	for _, u := range state.Users {
		if _, err := users.AddUser(u); err != nil {
			return fmt.Errorf("snapshot %q: %w", name, err)
		}
	}

	completions := make(map[int64]*roaring64.Bitmap, len(state.Completions))
	for rawID, bm := range state.Completions {
		userID, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			return fmt.Errorf("snapshot %q: bad user id %q", name, rawID)
		}
		completion := roaring64.New()
		if err := completion.UnmarshalBinary(bm); err != nil {
			return fmt.Errorf("snapshot %q: decode completion set for user %d: %w", name, userID, err)
		}
		completions[userID] = completion
	}

	t.mu.Lock()
	t.badges = badges
	t.areas = areas
	t.users = users
	t.completions = completions
	t.mu.Unlock()

	t.metrics.RecordSnapshot("load", time.Since(start), nil)
	t.logger.LogSnapshot(ctx, "load", name, nil)

	return nil
}

// Close releases the tracker's resources.
func (t *Tracker) Close() error {
	return t.store.Close()
}

func userBadgesKey(userID int64) string {
	return fmt.Sprintf("user:%d:badges", userID)
}

func userCompletionKey(userID int64) string {
	return fmt.Sprintf("user:%d:completion", userID)
}

func parseCompletionKey(key string) (int64, bool) {
	rest, ok := strings.CutPrefix(key, "user:")
	if !ok {
		return 0, false
	}
	raw, ok := strings.CutSuffix(rest, ":completion")
	if !ok {
		return 0, false
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return userID, true
}
