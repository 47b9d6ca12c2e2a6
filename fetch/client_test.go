package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(baseURL string, optFns ...Option) *Client {
	opts := append([]Option{
		WithRateLimit(1000, 1000),
		WithRetryBase(time.Millisecond),
	}, optFns...)
	return NewClient(baseURL, opts...)
}

func TestClient_UserBadgesPagination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/users/7/badges", r.URL.Path)

		switch r.URL.Query().Get("cursor") {
		case "":
			json.NewEncoder(w).Encode(badgePage{
				Data:           []UserBadge{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}},
				NextPageCursor: "page2",
			})
		case "page2":
			json.NewEncoder(w).Encode(badgePage{
				Data: []UserBadge{{ID: 3, Name: "c"}},
			})
		default:
			t.Errorf("unexpected cursor %q", r.URL.Query().Get("cursor"))
		}
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	badges, err := c.UserBadges(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, badges, 3)
	assert.Equal(t, int64(1), badges[0].ID)
	assert.Equal(t, int64(3), badges[2].ID)
}

func TestClient_RetriesOn429(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(badgePage{Data: []UserBadge{{ID: 1}}})
	}))
	defer srv.Close()

	c := testClient(srv.URL, WithMaxRetries(3))
	badges, err := c.UserBadges(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, badges, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testClient(srv.URL, WithMaxRetries(2))
	_, err := c.UserBadges(context.Background(), 1)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
}

func TestClient_NoRetryOn404(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := testClient(srv.URL, WithMaxRetries(3))
	_, err := c.UserBadges(context.Background(), 1)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_AwardedDatesBatches(t *testing.T) {
	awarded := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "/v1/users/7/badges/awarded-dates", r.URL.Path)

		var dates []AwardedDate
		for _, raw := range strings.Split(r.URL.Query().Get("badgeIds"), ",") {
			var id int64
			fmt.Sscanf(raw, "%d", &id)
			dates = append(dates, AwardedDate{BadgeID: id, AwardedAt: awarded})
		}
		json.NewEncoder(w).Encode(awardedPage{Data: dates})
	}))
	defer srv.Close()

	c := testClient(srv.URL, WithBatchSize(2), WithParallelism(2))

	ids := []int64{1, 2, 3, 4, 5}
	got, err := c.AwardedDates(context.Background(), 7, ids)
	require.NoError(t, err)

	require.Len(t, got, 5)
	for _, id := range ids {
		assert.Equal(t, awarded, got[id], "badge %d", id)
	}
	// 5 ids with a batch size of 2 means 3 requests.
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_AwardedDatesEmpty(t *testing.T) {
	c := testClient("http://unused.invalid")
	got, err := c.AwardedDates(context.Background(), 7, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := testClient(srv.URL)
	_, err := c.UserBadges(ctx, 1)
	assert.Error(t, err)
}
