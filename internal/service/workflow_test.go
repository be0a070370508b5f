package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filevault/internal/domain"
)

// Сквозной сценарий: регистрация → логин → папка → загрузка →
// крошки → публичная ссылка → истечение срока.
func TestUserWorkflow(t *testing.T) {
	ctx := context.Background()

	users := newFakeUserStore()
	sessions := newFakeSessionStore()
	folders := newFakeFolderStore()
	files := newFakeFileStore()
	shares := newFakeShareStore()
	storage := newFakeStorage()

	authSvc := NewAuthService(users, sessions, 7*24*time.Hour)
	folderSvc := NewFolderService(folders, files)
	fileSvc := NewFileService(files, folders, storage, "uploads")
	shareSvc := NewShareService(shares, files, folders)

	_, err := authSvc.Register(ctx, "a@x.com", "Val1d!pass")
	require.NoError(t, err)

	user, session, err := authSvc.Login(ctx, "a@x.com", "Val1d!pass")
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)

	docs, err := folderSvc.CreateFolder(ctx, "Docs", nil, user.ID)
	require.NoError(t, err)

	uploaded, err := fileSvc.Upload(ctx, user.ID, &docs.ID,
		strings.NewReader("content"), "notes.txt", "text/plain", 7)
	require.NoError(t, err)

	crumbs, err := folderSvc.Breadcrumbs(ctx, docs.ID, user.ID)
	require.NoError(t, err)
	require.Len(t, crumbs, 1)
	assert.Equal(t, "Docs", crumbs[0].Name)

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	shareSvc.now = func() time.Time { return created }

	link, err := shareSvc.CreateShareLink(ctx, domain.ResourceTypeFile, uploaded.UUID.String(), user.ID, "1d")
	require.NoError(t, err)

	resource, err := shareSvc.Resolve(ctx, link.Token)
	require.NoError(t, err)
	assert.Equal(t, uploaded.UUID, resource.File.UUID)

	// Через 25 часов ссылка мертва
	shareSvc.now = func() time.Time { return created.Add(25 * time.Hour) }
	_, err = shareSvc.Resolve(ctx, link.Token)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
