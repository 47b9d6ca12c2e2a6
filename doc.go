// Package towertrack tracks badge completion for tower-climbing game
// profiles.
//
// A Tracker owns three indexed collections: the badge catalog, the area
// taxonomy, and the known users. All three are built on the generic
// multi-index collection in the collection package, so every record is
// reachable under each of its identifiers, current and historical.
//
// # Quick Start
//
//	ctx := context.Background()
//
//	db, _ := store.OpenBadger("./data")
//	client := fetch.NewClient("https://badges.example.com")
//
//	tracker := towertrack.New(
//	    towertrack.WithStore(db),
//	    towertrack.WithFetcher(client),
//	)
//	defer tracker.Close()
//
//	tracker.LoadCatalog(ctx, catalog)
//	tracker.Sync(ctx, 12345)
//
//	badges, _ := tracker.UncompletedBadges(12345)
//	for _, b := range badges {
//	    fmt.Println(b.Name, b.Area, b.Difficulty)
//	}
//
// # Lookups
//
// Badges renamed or re-issued under new ids stay reachable under every
// identifier they ever carried:
//
//	b, ok := tracker.Badges().ByID(5) // a legacy id
//	matches := tracker.Badges().ByName("Old Name")
//
// # Completion Sets
//
// Per-user completion is a compressed bitmap over badge ids. Sync rebuilds
// it from the remote source and caches it locally; Restore reloads every
// cached set at startup so the tracker works offline.
//
// # Snapshots
//
// SaveSnapshot and LoadSnapshot move the full tracker state through any
// BlobStore (local directory, memory, S3, MinIO) in a checksummed,
// compressed, self-describing container.
package towertrack
