package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/repository/sqlstore"
)

// =========================================================================
// MOCK MEDIA STORE AND HELPERS
// =========================================================================

const managedPrefix = "https://res.cloudinary.com/demo/image/upload/v1/portfolio/"

// mockStore records every Delete and can be told to fail. URLs starting with
// managedPrefix are managed; anything else is external.
type mockStore struct {
	mu        sync.Mutex
	deleted   []string
	uploads   int
	failAll   bool
	failURLs  map[string]bool
	uploadErr error
	ctxErrs   int
}

func newMockStore() *mockStore {
	return &mockStore{failURLs: map[string]bool{}}
}

func (m *mockStore) Upload(_ context.Context, data []byte, contentType, folder string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	m.uploads++
	return fmt.Sprintf("%s%s-%d.png", managedPrefix, folder, m.uploads), nil
}

func (m *mockStore) Delete(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, url)
	if ctx.Err() != nil {
		m.ctxErrs++
		return ctx.Err()
	}
	if m.failAll || m.failURLs[url] {
		return errors.New("host refused")
	}
	return nil
}

func (m *mockStore) Manages(url string) bool {
	return strings.HasPrefix(url, managedPrefix)
}

// deletes returns the attempted deletes, sorted; cleanup runs concurrently.
func (m *mockStore) deletes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := slices.Clone(m.deleted)
	slices.Sort(out)
	return out
}

func managed(name string) string { return managedPrefix + name }

func newTestDB(t *testing.T) *sqlstore.DB {
	t.Helper()
	db, err := sqlstore.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

// =========================================================================
// HELPER TESTS
// =========================================================================

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2024-01-31", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), false},
		{" 2023-06-01 ", time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), false},
		{"2024-01-31T10:00:00+02:00", time.Date(2024, 1, 31, 8, 0, 0, 0, time.UTC), false},
		{"", time.Time{}, true},
		{"31/01/2024", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDate("startDate", tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperror.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
		})
	}
}

func TestParseOptionalDate_EmptyIsNil(t *testing.T) {
	got, err := parseOptionalDate("endDate", "  ")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFlexInt(t *testing.T) {
	tests := []struct {
		in      string
		want    FlexInt
		wantErr bool
	}{
		{`3`, 3, false},
		{`"7"`, 7, false},
		{`" 12 "`, 12, false},
		{`""`, 0, false},
		{`"abc"`, 0, true},
		{`1.5`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var f FlexInt
			err := json.Unmarshal([]byte(tt.in), &f)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f)
		})
	}
}

func TestCleanList(t *testing.T) {
	assert.Equal(t, []string{"Go", "SQL"}, cleanList([]string{" Go ", "", "  ", "SQL"}))
	assert.Empty(t, cleanList(nil))
}

// =========================================================================
// IMAGE CLEANER TESTS
// =========================================================================

func TestImageCleaner_Replaced(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
		want     []string
	}{
		{"managed replaced", managed("a.png"), managed("b.png"), []string{managed("a.png")}},
		{"unchanged", managed("a.png"), managed("a.png"), nil},
		{"no previous", "", managed("b.png"), nil},
		{"external previous", "https://example.com/a.png", managed("b.png"), nil},
		{"cleared", managed("a.png"), "", []string{managed("a.png")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockStore()
			newImageCleaner(store, testLogger()).replaced(context.Background(), tt.old, tt.new)
			assert.ElementsMatch(t, tt.want, store.deletes())
		})
	}
}

func TestImageCleaner_RemoveAttemptsAllDespiteFailures(t *testing.T) {
	store := newMockStore()
	store.failAll = true

	newImageCleaner(store, testLogger()).remove(context.Background(),
		managed("a.png"), "", managed("b.png"), managed("a.png"), "https://example.com/x.png")

	assert.Equal(t, []string{managed("a.png"), managed("b.png")}, store.deletes())
}

func TestImageCleaner_IgnoresCancelledRequest(t *testing.T) {
	store := newMockStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	newImageCleaner(store, testLogger()).remove(ctx, managed("a.png"))

	assert.Equal(t, []string{managed("a.png")}, store.deletes())
	assert.Zero(t, store.ctxErrs, "cleanup must not inherit request cancellation")
}
