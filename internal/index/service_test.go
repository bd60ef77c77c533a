package index

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogsite/internal/search"
)

type countingBuilder struct {
	calls atomic.Int32
	items []search.Item
	err   error
	gate  chan struct{}
}

func (b *countingBuilder) Build(_ context.Context, _ string) ([]search.Item, error) {
	b.calls.Add(1)
	if b.gate != nil {
		<-b.gate
	}
	return b.items, b.err
}

var snapshotCols = []string{"items", "built_at"}

func TestService_LoadBuildsOnMiss(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	cache, mr := newTestCache(t, time.Minute)

	builder := &countingBuilder{items: []search.Item{{ID: "product-1", Title: "Red Shoe"}}}
	svc := NewService(builder, NewStore(mock), cache)

	mock.ExpectQuery(`SELECT items, built_at`).WithArgs("en").WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(`INSERT INTO search_index_snapshots`).
		WithArgs("en", pgxmock.AnyArg(), 1, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	items, err := svc.Load(context.Background(), "en")
	require.NoError(t, err)
	assert.Equal(t, builder.items, items)
	assert.True(t, mr.Exists("search_index:en"))

	// Second load is served from redis without touching Postgres.
	items, err = svc.Load(context.Background(), "en")
	require.NoError(t, err)
	assert.Equal(t, builder.items, items)
	assert.Equal(t, int32(1), builder.calls.Load())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_LoadFromStore(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	cache, mr := newTestCache(t, time.Minute)

	builder := &countingBuilder{}
	svc := NewService(builder, NewStore(mock), cache)

	mock.ExpectQuery(`SELECT items, built_at`).WithArgs("zh").
		WillReturnRows(pgxmock.NewRows(snapshotCols).AddRow([]byte(`[{"id":"news-1","title":"发布"}]`), time.Now()))

	items, err := svc.Load(context.Background(), "zh")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "发布", items[0].Title)
	assert.Zero(t, builder.calls.Load())
	assert.True(t, mr.Exists("search_index:zh"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_StaleSnapshot(t *testing.T) {
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("rebuilds when possible", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		builder := &countingBuilder{items: []search.Item{{ID: "fresh"}}}
		svc := NewService(builder, NewStore(mock), nil)
		svc.MaxAge = time.Hour
		svc.now = func() time.Time { return old.Add(2 * time.Hour) }

		mock.ExpectQuery(`SELECT items, built_at`).WithArgs("en").
			WillReturnRows(pgxmock.NewRows(snapshotCols).AddRow([]byte(`[{"id":"old"}]`), old))
		mock.ExpectExec(`INSERT INTO search_index_snapshots`).
			WithArgs("en", pgxmock.AnyArg(), 1, old.Add(2*time.Hour)).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		items, err := svc.Load(context.Background(), "en")
		require.NoError(t, err)
		assert.Equal(t, "fresh", items[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("serves stale snapshot when build fails", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		builder := &countingBuilder{err: errors.New("cms down")}
		svc := NewService(builder, NewStore(mock), nil)
		svc.MaxAge = time.Hour
		svc.now = func() time.Time { return old.Add(2 * time.Hour) }

		mock.ExpectQuery(`SELECT items, built_at`).WithArgs("en").
			WillReturnRows(pgxmock.NewRows(snapshotCols).AddRow([]byte(`[{"id":"old"}]`), old))

		items, err := svc.Load(context.Background(), "en")
		require.NoError(t, err)
		assert.Equal(t, "old", items[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestService_LoadFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	down := errors.New("cms down")
	svc := NewService(&countingBuilder{err: down}, NewStore(mock), nil)
	mock.ExpectQuery(`SELECT items, built_at`).WithArgs("en").WillReturnError(pgx.ErrNoRows)

	_, err = svc.Load(context.Background(), "en")
	assert.ErrorIs(t, err, down)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_ConcurrentLoadsBuildOnce(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	cache, _ := newTestCache(t, time.Minute)

	builder := &countingBuilder{items: []search.Item{{ID: "a"}}, gate: make(chan struct{})}
	svc := NewService(builder, NewStore(mock), cache)

	mock.ExpectQuery(`SELECT items, built_at`).WithArgs("en").WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(`INSERT INTO search_index_snapshots`).
		WithArgs("en", pgxmock.AnyArg(), 1, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			items, err := svc.Load(context.Background(), "en")
			assert.NoError(t, err)
			assert.Len(t, items, 1)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(builder.gate)
	wg.Wait()

	assert.Equal(t, int32(1), builder.calls.Load())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_LoadCallerCanceled(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	builder := &countingBuilder{items: []search.Item{{ID: "a"}}, gate: make(chan struct{})}
	svc := NewService(builder, NewStore(mock), nil)
	mock.ExpectQuery(`SELECT items, built_at`).WithArgs("en").WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(`INSERT INTO search_index_snapshots`).
		WithArgs("en", pgxmock.AnyArg(), 1, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = svc.Load(ctx, "en")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The shared load still completes and persists.
	close(builder.gate)
	assert.Eventually(t, func() bool {
		return mock.ExpectationsWereMet() == nil
	}, time.Second, 5*time.Millisecond)
}

func TestService_Rebuild(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	cache, mr := newTestCache(t, time.Minute)

	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	builder := &countingBuilder{items: []search.Item{{ID: "a"}, {ID: "b"}}}
	svc := NewService(builder, NewStore(mock), cache)
	svc.now = func() time.Time { return now }

	mock.ExpectExec(`INSERT INTO search_index_snapshots`).
		WithArgs("zh", pgxmock.AnyArg(), 2, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO search_index_snapshots`).
		WithArgs("en", pgxmock.AnyArg(), 2, now).
		WillReturnError(errors.New("disk full"))

	built, err := svc.Rebuild(context.Background(), []string{"zh", "en"})
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, []SnapshotInfo{{Locale: "zh", ItemCount: 2, BuiltAt: now}}, built)
	assert.True(t, mr.Exists("search_index:zh"))
	assert.False(t, mr.Exists("search_index:en"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
