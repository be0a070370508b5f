package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"filevault/internal/domain"
	"filevault/internal/logger"
	"filevault/internal/service/s3"
)

const (
	maxFileSize      = 100 * 1024 * 1024 // 100MB максимальный размер файла
	defaultListLimit = 100
)

type fileKeeper interface {
	Create(ctx context.Context, file *domain.File) error
	GetByUUIDAndOwner(ctx context.Context, fileUUID, ownerID uuid.UUID) (*domain.File, error)
	ListRecent(ctx context.Context, ownerID uuid.UUID, limit int) ([]domain.File, error)
	UpdateName(ctx context.Context, file *domain.File) error
	Delete(ctx context.Context, fileUUID, ownerID uuid.UUID) error
}

type fileFolderKeeper interface {
	GetByIDAndOwner(ctx context.Context, id int64, ownerID uuid.UUID) (*domain.Folder, error)
}

// FileService — метаданные файлов плюс делегирование бинарного
// содержимого внешнему объектному хранилищу.
type FileService struct {
	files        fileKeeper
	folders      fileFolderKeeper
	storage      s3.Storage
	uploadFolder string
}

func NewFileService(files fileKeeper, folders fileFolderKeeper, storage s3.Storage, uploadFolder string) *FileService {
	return &FileService{
		files:        files,
		folders:      folders,
		storage:      storage,
		uploadFolder: uploadFolder,
	}
}

// Upload сначала пишет содержимое в хранилище и только после успеха —
// строку метаданных: упавшая загрузка не оставляет осиротевшей записи.
// Если упала уже запись метаданных, объект в хранилище убирается
// компенсирующим удалением (best-effort).
func (s *FileService) Upload(
	ctx context.Context,
	ownerID uuid.UUID,
	folderID *int64,
	body io.Reader,
	originalName string,
	mimeType string,
	size int64,
) (*domain.File, error) {
	if originalName == "" || body == nil {
		return nil, domain.NewValidationError("file", "file is required")
	}
	if size > maxFileSize {
		return nil, domain.NewValidationError("file", fmt.Sprintf("file exceeds maximum size of %d bytes", maxFileSize))
	}

	// Папка назначения должна принадлежать владельцу
	if folderID != nil {
		if _, err := s.folders.GetByIDAndOwner(ctx, *folderID, ownerID); err != nil {
			return nil, err
		}
	}

	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	// Ключ в хранилище — непрозрачный идентификатор, не связанный
	// с исходным именем файла
	fileUUID := uuid.New()
	key := fmt.Sprintf("%s/%s/%s", s.uploadFolder, ownerID, fileUUID)

	result, err := s.storage.Upload(ctx, key, mimeType, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	file := &domain.File{
		UUID:         fileUUID,
		Name:         originalName,
		MIMEType:     mimeType,
		SizeBytes:    size,
		URL:          result.URL,
		StorageKey:   result.Key,
		ResourceKind: result.Kind,
		OwnerID:      ownerID,
		FolderID:     folderID,
	}

	if err := s.files.Create(ctx, file); err != nil {
		if delErr := s.storage.Delete(ctx, result.Key); delErr != nil {
			logger.Log.Errorw("failed to delete object after metadata error",
				"key", result.Key, "error", delErr)
		}
		return nil, fmt.Errorf("failed to save file metadata: %w", err)
	}

	return file, nil
}

// List возвращает последние файлы пользователя, не больше defaultListLimit.
func (s *FileService) List(ctx context.Context, ownerID uuid.UUID, limit int) ([]domain.File, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}

	return s.files.ListRecent(ctx, ownerID, limit)
}

func (s *FileService) Get(ctx context.Context, fileUUID, ownerID uuid.UUID) (*domain.File, error) {
	return s.files.GetByUUIDAndOwner(ctx, fileUUID, ownerID)
}

// Delete удаляет объект из хранилища best-effort, а метаданные —
// безусловно: метаданные здесь источник истины, недоудаленный объект
// доживает до ручной или фоновой чистки.
func (s *FileService) Delete(ctx context.Context, fileUUID, ownerID uuid.UUID) error {
	file, err := s.files.GetByUUIDAndOwner(ctx, fileUUID, ownerID)
	if err != nil {
		return err
	}

	if file.StorageKey != "" {
		if err := s.storage.Delete(ctx, file.StorageKey); err != nil {
			logger.Log.Errorw("failed to delete object from storage, removing metadata anyway",
				"key", file.StorageKey, "error", err)
		}
	}

	return s.files.Delete(ctx, fileUUID, ownerID)
}

// Rename переименовывает файл. Если у файла есть объект в хранилище,
// сначала перекладываем его под новый ключ: хранилище — источник истины
// для идентичности, ошибка отменяет операцию до каких-либо правок метаданных.
func (s *FileService) Rename(ctx context.Context, fileUUID uuid.UUID, newName string, ownerID uuid.UUID) (*domain.File, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, domain.NewValidationError("name", "file name is required")
	}
	if strings.ContainsAny(newName, `/\`) {
		return nil, domain.NewValidationError("name", "file name must not contain path separators")
	}

	file, err := s.files.GetByUUIDAndOwner(ctx, fileUUID, ownerID)
	if err != nil {
		return nil, err
	}

	newName = ensureExtension(newName, file.Name)

	if file.StorageKey != "" {
		newKey := replaceKeyBase(file.StorageKey, uuid.New().String())
		newURL, err := s.storage.Rename(ctx, file.StorageKey, newKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
		}
		file.StorageKey = newKey
		file.URL = newURL
	}

	file.Name = newName
	if err := s.files.UpdateName(ctx, file); err != nil {
		return nil, err
	}

	return file, nil
}

// DownloadURL возвращает URL объекта для редиректа.
func (s *FileService) DownloadURL(ctx context.Context, fileUUID, ownerID uuid.UUID) (string, error) {
	file, err := s.files.GetByUUIDAndOwner(ctx, fileUUID, ownerID)
	if err != nil {
		return "", err
	}
	if file.URL == "" {
		return "", domain.ErrNotFound
	}

	return file.URL, nil
}

// ensureExtension сохраняет исходное расширение, когда новое имя
// его не содержит; при совпадении расширение не дублируется.
func ensureExtension(newName, oldName string) string {
	oldExt := filepath.Ext(oldName)
	if oldExt == "" {
		return newName
	}
	if strings.EqualFold(filepath.Ext(newName), oldExt) {
		return newName
	}
	return newName + oldExt
}

// replaceKeyBase меняет последний сегмент ключа, сохраняя префикс.
func replaceKeyBase(key, base string) string {
	idx := strings.LastIndex(key, "/")
	if idx < 0 {
		return base
	}
	return key[:idx+1] + base
}
