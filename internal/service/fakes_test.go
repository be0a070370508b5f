package service

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/google/uuid"

	"filevault/internal/domain"
	"filevault/internal/service/s3"
)

// Ин-мемори заглушки репозиториев и хранилища для юнит-тестов сервисов.

type fakeFolderStore struct {
	folders map[int64]*domain.Folder
	nextID  int64
}

func newFakeFolderStore() *fakeFolderStore {
	return &fakeFolderStore{folders: make(map[int64]*domain.Folder)}
}

func (f *fakeFolderStore) Create(_ context.Context, folder *domain.Folder) error {
	f.nextID++
	folder.ID = f.nextID
	clone := *folder
	f.folders[folder.ID] = &clone
	return nil
}

func (f *fakeFolderStore) GetByID(_ context.Context, id int64) (*domain.Folder, error) {
	folder, ok := f.folders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *folder
	return &clone, nil
}

func (f *fakeFolderStore) GetByIDAndOwner(_ context.Context, id int64, ownerID uuid.UUID) (*domain.Folder, error) {
	folder, ok := f.folders[id]
	if !ok || folder.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	clone := *folder
	return &clone, nil
}

func (f *fakeFolderStore) Rename(_ context.Context, id int64, ownerID uuid.UUID, newName string) error {
	folder, ok := f.folders[id]
	if !ok || folder.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	folder.Name = newName
	return nil
}

func (f *fakeFolderStore) Delete(_ context.Context, id int64, ownerID uuid.UUID) error {
	folder, ok := f.folders[id]
	if !ok || folder.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(f.folders, id)
	return nil
}

func (f *fakeFolderStore) ListChildren(_ context.Context, ownerID uuid.UUID, parentID *int64) ([]domain.Folder, error) {
	var result []domain.Folder
	for _, folder := range f.folders {
		if folder.OwnerID != ownerID {
			continue
		}
		if parentID == nil && folder.ParentID == nil {
			result = append(result, *folder)
		} else if parentID != nil && folder.ParentID != nil && *folder.ParentID == *parentID {
			result = append(result, *folder)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type fakeFileStore struct {
	files       map[uuid.UUID]*domain.File
	createErr   error
	createCalls int
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{files: make(map[uuid.UUID]*domain.File)}
}

func (f *fakeFileStore) Create(_ context.Context, file *domain.File) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	clone := *file
	f.files[file.UUID] = &clone
	return nil
}

func (f *fakeFileStore) GetByUUID(_ context.Context, fileUUID uuid.UUID) (*domain.File, error) {
	file, ok := f.files[fileUUID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *file
	return &clone, nil
}

func (f *fakeFileStore) GetByUUIDAndOwner(_ context.Context, fileUUID, ownerID uuid.UUID) (*domain.File, error) {
	file, ok := f.files[fileUUID]
	if !ok || file.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	clone := *file
	return &clone, nil
}

func (f *fakeFileStore) ListRecent(_ context.Context, ownerID uuid.UUID, limit int) ([]domain.File, error) {
	var result []domain.File
	for _, file := range f.files {
		if file.OwnerID == ownerID {
			result = append(result, *file)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (f *fakeFileStore) ListByFolder(_ context.Context, ownerID uuid.UUID, folderID *int64) ([]domain.File, error) {
	var result []domain.File
	for _, file := range f.files {
		if file.OwnerID != ownerID {
			continue
		}
		if folderID == nil && file.FolderID == nil {
			result = append(result, *file)
		} else if folderID != nil && file.FolderID != nil && *file.FolderID == *folderID {
			result = append(result, *file)
		}
	}
	return result, nil
}

func (f *fakeFileStore) UpdateName(_ context.Context, file *domain.File) error {
	stored, ok := f.files[file.UUID]
	if !ok || stored.OwnerID != file.OwnerID {
		return domain.ErrNotFound
	}
	stored.Name = file.Name
	stored.StorageKey = file.StorageKey
	stored.URL = file.URL
	return nil
}

func (f *fakeFileStore) Delete(_ context.Context, fileUUID, ownerID uuid.UUID) error {
	file, ok := f.files[fileUUID]
	if !ok || file.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(f.files, fileUUID)
	return nil
}

type fakeShareStore struct {
	links map[string]*domain.ShareLink
}

func newFakeShareStore() *fakeShareStore {
	return &fakeShareStore{links: make(map[string]*domain.ShareLink)}
}

func (f *fakeShareStore) Create(_ context.Context, link *domain.ShareLink) error {
	if _, exists := f.links[link.Token]; exists {
		return fmt.Errorf("duplicate token")
	}
	clone := *link
	f.links[link.Token] = &clone
	return nil
}

func (f *fakeShareStore) GetByToken(_ context.Context, token string) (*domain.ShareLink, error) {
	link, ok := f.links[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *link
	return &clone, nil
}

type fakeUserStore struct {
	users map[string]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*domain.User)}
}

func (f *fakeUserStore) Create(_ context.Context, user *domain.User) error {
	if _, exists := f.users[user.Email]; exists {
		return domain.NewValidationError("email", "email already in use")
	}
	clone := *user
	f.users[user.Email] = &clone
	return nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

type fakeSessionStore struct {
	sessions map[string]*domain.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*domain.Session)}
}

func (f *fakeSessionStore) Create(_ context.Context, session *domain.Session) error {
	clone := *session
	f.sessions[session.ID] = &clone
	return nil
}

func (f *fakeSessionStore) Delete(_ context.Context, id string) error {
	delete(f.sessions, id)
	return nil
}

// fakeStorage реализует s3.Storage без сети.
type fakeStorage struct {
	uploadErr error
	deleteErr error
	renameErr error

	objects     map[string]bool
	deletedKeys []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string]bool)}
}

func (f *fakeStorage) Upload(_ context.Context, key, contentType string, _ io.Reader) (*s3.UploadResult, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.objects[key] = true
	return &s3.UploadResult{
		URL:  f.ObjectURL(key),
		Key:  key,
		Kind: s3.ClassifyMIME(contentType),
	}, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.deletedKeys = append(f.deletedKeys, key)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) Rename(_ context.Context, oldKey, newKey string) (string, error) {
	if f.renameErr != nil {
		return "", f.renameErr
	}
	delete(f.objects, oldKey)
	f.objects[newKey] = true
	return f.ObjectURL(newKey), nil
}

func (f *fakeStorage) ObjectURL(key string) string {
	return "https://storage.test/bucket/" + key
}
