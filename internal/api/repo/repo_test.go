package repo

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"courier/internal/api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskRepository_Memory(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(nil, time.Minute)

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	record := models.TaskRecord{ID: "t1", Kind: models.TaskKindHTTP, Status: models.TaskStatusPending}
	require.NoError(t, repo.Save(ctx, record))

	got, err := repo.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusPending, got.Status)

	record.Status = models.TaskStatusSucceeded
	record.StatusCode = 200
	require.NoError(t, repo.Save(ctx, record))
	got, err = repo.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 200, got.StatusCode)
	assert.True(t, got.Done())

	require.NoError(t, repo.Delete(ctx, "t1"))
	_, err = repo.Get(ctx, "t1")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskRepository_MemoryExpiry(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(nil, time.Minute)
	now := time.Now()
	repo.now = func() time.Time { return now }

	require.NoError(t, repo.Save(ctx, models.TaskRecord{ID: "old"}))

	now = now.Add(2 * time.Minute)
	_, err := repo.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	require.NoError(t, repo.Save(ctx, models.TaskRecord{ID: "new"}))
	assert.NotContains(t, repo.memory, "old", "expired records are evicted on write")
}

func TestFileUserDirectory_List(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.toml")
	content := `
[[users]]
user = "support"
email = "support@example.com"
password = "s3cret"
sender_name = "Support Team"
email_service = "OUTLOOK"

[[users]]
user = "alerts"
email = "alerts@example.com"
password = "pw"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	entries, err := NewFileUserDirectory(path).List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "support", entries[0].User)
	assert.Equal(t, "Support Team", entries[0].SenderName)
	assert.Equal(t, models.ProviderOutlook, entries[0].EmailService)
	assert.Equal(t, "alerts", entries[1].User)
	assert.Equal(t, models.ProviderGmail, entries[1].EmailService, "provider defaults to gmail")
}

func TestFileUserDirectory_MissingFile(t *testing.T) {
	_, err := NewFileUserDirectory(filepath.Join(t.TempDir(), "nope.toml")).List(context.Background())
	assert.Error(t, err)
}
