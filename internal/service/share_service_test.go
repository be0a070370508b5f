package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filevault/internal/domain"
)

func newShareFixture(t *testing.T) (*ShareService, *fakeShareStore, *fakeFileStore, *fakeFolderStore) {
	t.Helper()
	shares := newFakeShareStore()
	files := newFakeFileStore()
	folders := newFakeFolderStore()
	return NewShareService(shares, files, folders), shares, files, folders
}

func TestParseShareDuration(t *testing.T) {
	tests := []struct {
		name string
		spec string
		want time.Duration
	}{
		{"hours", "2h", 2 * time.Hour},
		{"days", "1d", 24 * time.Hour},
		{"multiple days", "7d", 7 * 24 * time.Hour},
		{"uppercase", "3H", 3 * time.Hour},
		{"surrounding spaces", "  5h  ", 5 * time.Hour},
		{"space before unit", "12 h", 12 * time.Hour},
		{"empty defaults", "", 24 * time.Hour},
		{"garbage defaults", "abc", 24 * time.Hour},
		{"zero defaults", "0h", 24 * time.Hour},
		{"negative defaults", "-2h", 24 * time.Hour},
		{"unknown unit defaults", "5m", 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseShareDuration(tt.spec))
		})
	}
}

func TestGenerateShareToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := generateShareToken()
		require.NoError(t, err)
		assert.Len(t, token, shareTokenLength)
		for _, r := range token {
			assert.True(t, strings.ContainsRune(shareTokenAlphabet, r),
				"token contains symbol outside alphabet: %q", r)
		}
		assert.False(t, seen[token], "duplicate token generated")
		seen[token] = true
	}
}

func TestCreateShareLink_File(t *testing.T) {
	svc, shares, files, _ := newShareFixture(t)

	ownerID := uuid.New()
	file := &domain.File{UUID: uuid.New(), Name: "report.pdf", OwnerID: ownerID}
	require.NoError(t, files.Create(context.Background(), file))

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }

	link, err := svc.CreateShareLink(context.Background(), domain.ResourceTypeFile, file.UUID.String(), ownerID, "2h")
	require.NoError(t, err)

	assert.Len(t, link.Token, shareTokenLength)
	require.NotNil(t, link.FileUUID)
	assert.Equal(t, file.UUID, *link.FileUUID)
	assert.Nil(t, link.FolderID)
	assert.Equal(t, start.Add(2*time.Hour), link.ExpiresAt)

	stored, err := shares.GetByToken(context.Background(), link.Token)
	require.NoError(t, err)
	assert.Equal(t, link.Token, stored.Token)
}

func TestCreateShareLink_Folder(t *testing.T) {
	svc, _, _, folders := newShareFixture(t)

	ownerID := uuid.New()
	folder := &domain.Folder{Name: "photos", OwnerID: ownerID}
	require.NoError(t, folders.Create(context.Background(), folder))

	link, err := svc.CreateShareLink(context.Background(), domain.ResourceTypeFolder, "1", ownerID, "1d")
	require.NoError(t, err)

	require.NotNil(t, link.FolderID)
	assert.Equal(t, folder.ID, *link.FolderID)
	assert.Nil(t, link.FileUUID)
}

func TestCreateShareLink_Errors(t *testing.T) {
	svc, _, files, _ := newShareFixture(t)

	ownerID := uuid.New()
	file := &domain.File{UUID: uuid.New(), OwnerID: ownerID}
	require.NoError(t, files.Create(context.Background(), file))

	t.Run("foreign file", func(t *testing.T) {
		_, err := svc.CreateShareLink(context.Background(), domain.ResourceTypeFile, file.UUID.String(), uuid.New(), "")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := svc.CreateShareLink(context.Background(), domain.ResourceTypeFile, uuid.New().String(), ownerID, "")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("malformed file id", func(t *testing.T) {
		_, err := svc.CreateShareLink(context.Background(), domain.ResourceTypeFile, "not-a-uuid", ownerID, "")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("malformed folder id", func(t *testing.T) {
		_, err := svc.CreateShareLink(context.Background(), domain.ResourceTypeFolder, "abc", ownerID, "")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unknown resource type", func(t *testing.T) {
		_, err := svc.CreateShareLink(context.Background(), "album", file.UUID.String(), ownerID, "")
		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "resource_type", vErr.Field)
	})
}

func TestResolve_ExpiryBoundary(t *testing.T) {
	svc, _, files, _ := newShareFixture(t)

	ownerID := uuid.New()
	file := &domain.File{UUID: uuid.New(), Name: "demo.mp4", OwnerID: ownerID}
	require.NoError(t, files.Create(context.Background(), file))

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }

	link, err := svc.CreateShareLink(context.Background(), domain.ResourceTypeFile, file.UUID.String(), ownerID, "2h")
	require.NoError(t, err)
	require.Equal(t, start.Add(2*time.Hour), link.ExpiresAt)

	// За миллисекунду до истечения ссылка еще действует
	svc.now = func() time.Time { return link.ExpiresAt.Add(-time.Millisecond) }
	resource, err := svc.Resolve(context.Background(), link.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.ResourceTypeFile, resource.ResourceType)
	require.NotNil(t, resource.File)
	assert.Equal(t, file.UUID, resource.File.UUID)

	// Через миллисекунду после — уже нет, и неотличима от несуществующей
	svc.now = func() time.Time { return link.ExpiresAt.Add(time.Millisecond) }
	_, err = svc.Resolve(context.Background(), link.Token)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolve_UnknownToken(t *testing.T) {
	svc, _, _, _ := newShareFixture(t)

	_, err := svc.Resolve(context.Background(), "deadbeefdeadbeefdeadbe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolve_Folder(t *testing.T) {
	svc, _, files, folders := newShareFixture(t)

	ownerID := uuid.New()
	parent := &domain.Folder{Name: "docs", OwnerID: ownerID}
	require.NoError(t, folders.Create(context.Background(), parent))

	child := &domain.Folder{Name: "archive", OwnerID: ownerID, ParentID: &parent.ID}
	require.NoError(t, folders.Create(context.Background(), child))

	file := &domain.File{UUID: uuid.New(), Name: "notes.txt", OwnerID: ownerID, FolderID: &parent.ID}
	require.NoError(t, files.Create(context.Background(), file))

	link, err := svc.CreateShareLink(context.Background(), domain.ResourceTypeFolder, "1", ownerID, "")
	require.NoError(t, err)

	resource, err := svc.Resolve(context.Background(), link.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.ResourceTypeFolder, resource.ResourceType)
	require.NotNil(t, resource.Folder)
	assert.Equal(t, parent.ID, resource.Folder.Folder.ID)
	require.Len(t, resource.Folder.Folders, 1)
	assert.Equal(t, child.ID, resource.Folder.Folders[0].ID)
	require.Len(t, resource.Folder.Files, 1)
	assert.Equal(t, file.UUID, resource.Folder.Files[0].UUID)
}

func TestResolve_IndependentLinksForSameResource(t *testing.T) {
	svc, _, files, _ := newShareFixture(t)

	ownerID := uuid.New()
	file := &domain.File{UUID: uuid.New(), Name: "shared.png", OwnerID: ownerID}
	require.NoError(t, files.Create(context.Background(), file))

	first, err := svc.CreateShareLink(context.Background(), domain.ResourceTypeFile, file.UUID.String(), ownerID, "1h")
	require.NoError(t, err)
	second, err := svc.CreateShareLink(context.Background(), domain.ResourceTypeFile, file.UUID.String(), ownerID, "1d")
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)

	// Истечение короткой ссылки не задевает длинную
	svc.now = func() time.Time { return first.ExpiresAt.Add(time.Minute) }

	_, err = svc.Resolve(context.Background(), first.Token)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	resource, err := svc.Resolve(context.Background(), second.Token)
	require.NoError(t, err)
	assert.Equal(t, file.UUID, resource.File.UUID)
}

func TestShareDownloadURL(t *testing.T) {
	svc, _, files, folders := newShareFixture(t)

	ownerID := uuid.New()
	file := &domain.File{
		UUID:    uuid.New(),
		Name:    "video.mp4",
		URL:     "https://storage.test/bucket/uploads/video",
		OwnerID: ownerID,
	}
	require.NoError(t, files.Create(context.Background(), file))

	folder := &domain.Folder{Name: "media", OwnerID: ownerID}
	require.NoError(t, folders.Create(context.Background(), folder))

	fileLink, err := svc.CreateShareLink(context.Background(), domain.ResourceTypeFile, file.UUID.String(), ownerID, "")
	require.NoError(t, err)
	folderLink, err := svc.CreateShareLink(context.Background(), domain.ResourceTypeFolder, "1", ownerID, "")
	require.NoError(t, err)

	url, err := svc.DownloadURL(context.Background(), fileLink.Token)
	require.NoError(t, err)
	assert.Equal(t, file.URL, url)

	// Папочная ссылка прямого скачивания не дает
	_, err = svc.DownloadURL(context.Background(), folderLink.Token)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
