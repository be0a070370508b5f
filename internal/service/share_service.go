package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"filevault/internal/domain"
)

const (
	// 62 символа на 22 позициях — около 131 бита энтропии,
	// коллизии на практике исключены.
	shareTokenAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	shareTokenLength   = 22

	defaultShareDuration = 24 * time.Hour
)

var shareDurationRe = regexp.MustCompile(`^(\d+)\s*([hd])$`)

type shareKeeper interface {
	Create(ctx context.Context, link *domain.ShareLink) error
	GetByToken(ctx context.Context, token string) (*domain.ShareLink, error)
}

type shareFileKeeper interface {
	GetByUUID(ctx context.Context, fileUUID uuid.UUID) (*domain.File, error)
	GetByUUIDAndOwner(ctx context.Context, fileUUID, ownerID uuid.UUID) (*domain.File, error)
	ListByFolder(ctx context.Context, ownerID uuid.UUID, folderID *int64) ([]domain.File, error)
}

type shareFolderKeeper interface {
	GetByID(ctx context.Context, id int64) (*domain.Folder, error)
	GetByIDAndOwner(ctx context.Context, id int64, ownerID uuid.UUID) (*domain.Folder, error)
	ListChildren(ctx context.Context, ownerID uuid.UUID, parentID *int64) ([]domain.Folder, error)
}

// ShareService выпускает публичные ссылки и резолвит их обратно в ресурс.
type ShareService struct {
	shares  shareKeeper
	files   shareFileKeeper
	folders shareFolderKeeper
	now     func() time.Time
}

func NewShareService(shares shareKeeper, files shareFileKeeper, folders shareFolderKeeper) *ShareService {
	return &ShareService{
		shares:  shares,
		files:   files,
		folders: folders,
		now:     time.Now,
	}
}

// CreateShareLink выпускает токен на файл или папку владельца.
// durationSpec — "<число><h|d>"; пустая или нераспознанная строка
// молча дает срок по умолчанию (24 часа).
func (s *ShareService) CreateShareLink(
	ctx context.Context,
	resourceType domain.ResourceType,
	resourceID string,
	ownerID uuid.UUID,
	durationSpec string,
) (*domain.ShareLink, error) {
	link := &domain.ShareLink{
		ExpiresAt: s.now().Add(parseShareDuration(durationSpec)),
	}

	// Ресурс должен существовать и принадлежать владельцу
	switch resourceType {
	case domain.ResourceTypeFile:
		fileUUID, err := uuid.Parse(resourceID)
		if err != nil {
			return nil, domain.ErrNotFound
		}
		file, err := s.files.GetByUUIDAndOwner(ctx, fileUUID, ownerID)
		if err != nil {
			return nil, err
		}
		link.FileUUID = &file.UUID

	case domain.ResourceTypeFolder:
		folderID, err := strconv.ParseInt(resourceID, 10, 64)
		if err != nil {
			return nil, domain.ErrNotFound
		}
		folder, err := s.folders.GetByIDAndOwner(ctx, folderID, ownerID)
		if err != nil {
			return nil, err
		}
		link.FolderID = &folder.ID

	default:
		return nil, domain.NewValidationError("resource_type", "must be file or folder")
	}

	token, err := generateShareToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	link.Token = token

	if err := s.shares.Create(ctx, link); err != nil {
		return nil, err
	}

	return link, nil
}

// Resolve возвращает ресурс по действующему токену. Просроченный и
// несуществующий токен неразличимы для вызывающего.
func (s *ShareService) Resolve(ctx context.Context, token string) (*domain.SharedResource, error) {
	link, err := s.activeLink(ctx, token)
	if err != nil {
		return nil, err
	}

	if link.FileUUID != nil {
		file, err := s.files.GetByUUID(ctx, *link.FileUUID)
		if err != nil {
			return nil, err
		}
		return &domain.SharedResource{
			ResourceType: domain.ResourceTypeFile,
			File:         file,
		}, nil
	}

	folder, err := s.folders.GetByID(ctx, *link.FolderID)
	if err != nil {
		return nil, err
	}

	// Анонимному посетителю отдаем папку с непосредственным содержимым
	subfolders, err := s.folders.ListChildren(ctx, folder.OwnerID, &folder.ID)
	if err != nil {
		return nil, err
	}
	files, err := s.files.ListByFolder(ctx, folder.OwnerID, &folder.ID)
	if err != nil {
		return nil, err
	}

	return &domain.SharedResource{
		ResourceType: domain.ResourceTypeFolder,
		Folder: &domain.FolderContent{
			Folder:  *folder,
			Folders: subfolders,
			Files:   files,
		},
	}, nil
}

// DownloadURL возвращает URL файла по токену. Ссылки на папки прямого
// скачивания не поддерживают — только пофайловое внутри просмотра.
func (s *ShareService) DownloadURL(ctx context.Context, token string) (string, error) {
	link, err := s.activeLink(ctx, token)
	if err != nil {
		return "", err
	}

	if link.FileUUID == nil {
		return "", domain.ErrNotFound
	}

	file, err := s.files.GetByUUID(ctx, *link.FileUUID)
	if err != nil {
		return "", err
	}
	if file.URL == "" {
		return "", domain.ErrNotFound
	}

	return file.URL, nil
}

// activeLink достает ссылку и лениво проверяет срок действия.
// Просроченные строки не удаляются, они просто мертвы.
func (s *ShareService) activeLink(ctx context.Context, token string) (*domain.ShareLink, error) {
	link, err := s.shares.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if s.now().After(link.ExpiresAt) {
		return nil, domain.ErrNotFound
	}

	return link, nil
}

func parseShareDuration(spec string) time.Duration {
	m := shareDurationRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(spec)))
	if m == nil {
		return defaultShareDuration
	}

	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return defaultShareDuration
	}

	if m[2] == "h" {
		return time.Duration(n) * time.Hour
	}
	return time.Duration(n) * 24 * time.Hour
}

func generateShareToken() (string, error) {
	alphabetLen := big.NewInt(int64(len(shareTokenAlphabet)))

	b := make([]byte, shareTokenLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		b[i] = shareTokenAlphabet[n.Int64()]
	}

	return string(b), nil
}
