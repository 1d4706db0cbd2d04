package messaging

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-booking/internal/repository/flatfile"
)

func TestLogSenderAppends(t *testing.T) {
	repo := flatfile.NewCommunicationRepository(flatfile.MustOpen(filepath.Join(t.TempDir(), "communications_log.csv")))
	now := time.Date(2025, 3, 4, 10, 15, 0, 0, time.Local)
	s := NewLogSender(repo, 0, nil).WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, s.Send(ctx, &Message{Email: "a@example.com", Phone: "+1", Subject: "[Clinic] One", Body: "first"}))
	require.NoError(t, s.Send(ctx, &Message{Email: "a@example.com", Phone: "+1", Subject: "[Clinic] Two", Body: "second"}))

	entries, found, err := repo.List(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, entries, 2)
	assert.Equal(t, "2025-03-04T10:15:00", entries[0].Timestamp)
	assert.Equal(t, "[Clinic] One", entries[0].Subject)
	assert.Equal(t, "second", entries[1].Body)
}

func TestLogSenderStampKeepsMicroseconds(t *testing.T) {
	repo := flatfile.NewCommunicationRepository(flatfile.MustOpen(filepath.Join(t.TempDir(), "log.csv")))
	now := time.Date(2025, 3, 4, 10, 15, 0, 250000000, time.Local)
	s := NewLogSender(repo, 0, nil).WithClock(func() time.Time { return now })

	require.NoError(t, s.Send(context.Background(), &Message{Subject: "s", Body: "b"}))

	entries, _, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2025-03-04T10:15:00.25", entries[0].Timestamp)
}

func TestLogSenderTruncatesBody(t *testing.T) {
	repo := flatfile.NewCommunicationRepository(flatfile.MustOpen(filepath.Join(t.TempDir(), "log.csv")))
	s := NewLogSender(repo, 10, nil)

	require.NoError(t, s.Send(context.Background(), &Message{Subject: "s", Body: strings.Repeat("é", 25)}))

	entries, _, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, strings.Repeat("é", 10), entries[0].Body)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 4000))
	assert.Equal(t, "ab", truncate("abc", 2))
}
