package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"filevault/internal/domain"
)

// maxBreadcrumbDepth ограничивает подъем по цепочке родителей:
// испорченная ссылка parent_id (цикл, самоссылка) не должна
// приводить к бесконечному обходу.
const maxBreadcrumbDepth = 64

type folderKeeper interface {
	Create(ctx context.Context, folder *domain.Folder) error
	GetByIDAndOwner(ctx context.Context, id int64, ownerID uuid.UUID) (*domain.Folder, error)
	Rename(ctx context.Context, id int64, ownerID uuid.UUID, newName string) error
	Delete(ctx context.Context, id int64, ownerID uuid.UUID) error
	ListChildren(ctx context.Context, ownerID uuid.UUID, parentID *int64) ([]domain.Folder, error)
}

type folderFileLister interface {
	ListByFolder(ctx context.Context, ownerID uuid.UUID, folderID *int64) ([]domain.File, error)
}

// FolderService — CRUD по иерархии папок и построение хлебных крошек.
type FolderService struct {
	folders folderKeeper
	files   folderFileLister
}

func NewFolderService(folders folderKeeper, files folderFileLister) *FolderService {
	return &FolderService{
		folders: folders,
		files:   files,
	}
}

func (s *FolderService) CreateFolder(ctx context.Context, name string, parentID *int64, ownerID uuid.UUID) (*domain.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name", "folder name is required")
	}

	// Родительская папка должна существовать и принадлежать владельцу
	if parentID != nil {
		if _, err := s.folders.GetByIDAndOwner(ctx, *parentID, ownerID); err != nil {
			return nil, err
		}
	}

	folder := &domain.Folder{
		Name:     name,
		OwnerID:  ownerID,
		ParentID: parentID,
	}

	if err := s.folders.Create(ctx, folder); err != nil {
		return nil, err
	}

	return folder, nil
}

func (s *FolderService) RenameFolder(ctx context.Context, id int64, newName string, ownerID uuid.UUID) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return domain.NewValidationError("name", "folder name is required")
	}

	return s.folders.Rename(ctx, id, ownerID, newName)
}

// DeleteFolder удаляет папку вместе со всеми вложенными папками и файлами.
func (s *FolderService) DeleteFolder(ctx context.Context, id int64, ownerID uuid.UUID) error {
	return s.folders.Delete(ctx, id, ownerID)
}

// Breadcrumbs возвращает цепочку {id, name} от корневого предка до
// указанной папки включительно. Несуществующая или чужая папка дает
// пустую цепочку, а не ошибку: вызывающий просто не показывает навигацию.
func (s *FolderService) Breadcrumbs(ctx context.Context, folderID int64, ownerID uuid.UUID) ([]domain.Breadcrumb, error) {
	crumbs := make([]domain.Breadcrumb, 0, 4)

	folder, err := s.folders.GetByIDAndOwner(ctx, folderID, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return crumbs, nil
		}
		return nil, err
	}

	for depth := 0; ; depth++ {
		if depth >= maxBreadcrumbDepth {
			return nil, fmt.Errorf("folder %d: parent chain exceeds %d levels", folderID, maxBreadcrumbDepth)
		}

		crumbs = append(crumbs, domain.Breadcrumb{ID: folder.ID, Name: folder.Name})
		if folder.ParentID == nil {
			break
		}

		// Каждый шаг заново ограничен владельцем
		folder, err = s.folders.GetByIDAndOwner(ctx, *folder.ParentID, ownerID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				break
			}
			return nil, err
		}
	}

	// Накопили снизу вверх, отдаем от корня
	for i, j := 0, len(crumbs)-1; i < j; i, j = i+1, j-1 {
		crumbs[i], crumbs[j] = crumbs[j], crumbs[i]
	}

	return crumbs, nil
}

// GetContent возвращает папку, ее хлебные крошки, подпапки и файлы.
func (s *FolderService) GetContent(ctx context.Context, folderID int64, ownerID uuid.UUID) (*domain.FolderContent, error) {
	folder, err := s.folders.GetByIDAndOwner(ctx, folderID, ownerID)
	if err != nil {
		return nil, err
	}

	crumbs, err := s.Breadcrumbs(ctx, folderID, ownerID)
	if err != nil {
		return nil, err
	}

	subfolders, err := s.folders.ListChildren(ctx, ownerID, &folder.ID)
	if err != nil {
		return nil, err
	}

	files, err := s.files.ListByFolder(ctx, ownerID, &folder.ID)
	if err != nil {
		return nil, err
	}

	return &domain.FolderContent{
		Folder:      *folder,
		Breadcrumbs: crumbs,
		Folders:     subfolders,
		Files:       files,
	}, nil
}

// ListRoot возвращает папки и файлы верхнего уровня пользователя.
func (s *FolderService) ListRoot(ctx context.Context, ownerID uuid.UUID) ([]domain.Folder, []domain.File, error) {
	folders, err := s.folders.ListChildren(ctx, ownerID, nil)
	if err != nil {
		return nil, nil, err
	}

	files, err := s.files.ListByFolder(ctx, ownerID, nil)
	if err != nil {
		return nil, nil, err
	}

	return folders, files, nil
}
