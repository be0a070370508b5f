package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"filevault/internal/domain"
)

type FolderRepository struct {
	db *sqlx.DB
}

func NewFolderRepository(db *sqlx.DB) *FolderRepository {
	return &FolderRepository{db: db}
}

func (r *FolderRepository) Create(ctx context.Context, folder *domain.Folder) error {
	query := `
        INSERT INTO folders (name, owner_id, parent_id)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		folder.Name,
		folder.OwnerID,
		folder.ParentID,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}

	return nil
}

func (r *FolderRepository) GetByID(ctx context.Context, id int64) (*domain.Folder, error) {
	var folder domain.Folder
	query := `SELECT * FROM folders WHERE id = $1`

	err := r.db.GetContext(ctx, &folder, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}

	return &folder, nil
}

// GetByIDAndOwner возвращает папку только если она принадлежит ownerID.
// Чужая и несуществующая папка неразличимы для вызывающего.
func (r *FolderRepository) GetByIDAndOwner(ctx context.Context, id int64, ownerID uuid.UUID) (*domain.Folder, error) {
	var folder domain.Folder
	query := `SELECT * FROM folders WHERE id = $1 AND owner_id = $2`

	err := r.db.GetContext(ctx, &folder, query, id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}

	return &folder, nil
}

func (r *FolderRepository) Rename(ctx context.Context, id int64, ownerID uuid.UUID, newName string) error {
	query := `
        UPDATE folders
        SET name = $1, updated_at = CURRENT_TIMESTAMP
        WHERE id = $2 AND owner_id = $3`

	result, err := r.db.ExecContext(ctx, query, newName, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to rename folder: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Delete удаляет папку; подпапки и файлы уходят каскадом по FK
// (ON DELETE CASCADE в схеме), одной атомарной операцией.
func (r *FolderRepository) Delete(ctx context.Context, id int64, ownerID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM folders WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// ListChildren возвращает непосредственные подпапки. parentID == nil —
// папки верхнего уровня пользователя.
func (r *FolderRepository) ListChildren(ctx context.Context, ownerID uuid.UUID, parentID *int64) ([]domain.Folder, error) {
	var folders []domain.Folder
	var err error

	if parentID == nil {
		query := `
            SELECT * FROM folders
            WHERE owner_id = $1 AND parent_id IS NULL
            ORDER BY updated_at DESC`
		err = r.db.SelectContext(ctx, &folders, query, ownerID)
	} else {
		query := `
            SELECT * FROM folders
            WHERE owner_id = $1 AND parent_id = $2
            ORDER BY name`
		err = r.db.SelectContext(ctx, &folders, query, ownerID, *parentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}

	return folders, nil
}
