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

type FileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(ctx context.Context, file *domain.File) error {
	query := `
        INSERT INTO files (uuid, name, mime_type, size_bytes, url, storage_key, resource_kind, owner_id, folder_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		file.UUID,
		file.Name,
		file.MIMEType,
		file.SizeBytes,
		file.URL,
		file.StorageKey,
		file.ResourceKind,
		file.OwnerID,
		file.FolderID,
	).Scan(&file.CreatedAt, &file.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	return nil
}

func (r *FileRepository) GetByUUID(ctx context.Context, fileUUID uuid.UUID) (*domain.File, error) {
	var file domain.File
	query := `SELECT * FROM files WHERE uuid = $1`

	err := r.db.GetContext(ctx, &file, query, fileUUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	return &file, nil
}

func (r *FileRepository) GetByUUIDAndOwner(ctx context.Context, fileUUID, ownerID uuid.UUID) (*domain.File, error) {
	var file domain.File
	query := `SELECT * FROM files WHERE uuid = $1 AND owner_id = $2`

	err := r.db.GetContext(ctx, &file, query, fileUUID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	return &file, nil
}

// ListRecent возвращает последние загруженные файлы пользователя.
func (r *FileRepository) ListRecent(ctx context.Context, ownerID uuid.UUID, limit int) ([]domain.File, error) {
	var files []domain.File
	query := `
        SELECT * FROM files
        WHERE owner_id = $1
        ORDER BY created_at DESC
        LIMIT $2`

	err := r.db.SelectContext(ctx, &files, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return files, nil
}

// ListByFolder возвращает файлы папки. folderID == nil — файлы в корне.
func (r *FileRepository) ListByFolder(ctx context.Context, ownerID uuid.UUID, folderID *int64) ([]domain.File, error) {
	var files []domain.File
	var err error

	if folderID == nil {
		query := `
            SELECT * FROM files
            WHERE owner_id = $1 AND folder_id IS NULL
            ORDER BY created_at DESC`
		err = r.db.SelectContext(ctx, &files, query, ownerID)
	} else {
		query := `
            SELECT * FROM files
            WHERE owner_id = $1 AND folder_id = $2
            ORDER BY name`
		err = r.db.SelectContext(ctx, &files, query, ownerID, *folderID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return files, nil
}

// UpdateName обновляет имя файла и, при смене ключа в хранилище,
// его storage_key и url.
func (r *FileRepository) UpdateName(ctx context.Context, file *domain.File) error {
	query := `
        UPDATE files
        SET name = $1, storage_key = $2, url = $3, updated_at = CURRENT_TIMESTAMP
        WHERE uuid = $4 AND owner_id = $5
        RETURNING updated_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		file.Name,
		file.StorageKey,
		file.URL,
		file.UUID,
		file.OwnerID,
	).Scan(&file.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to update file: %w", err)
	}

	return nil
}

func (r *FileRepository) Delete(ctx context.Context, fileUUID, ownerID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM files WHERE uuid = $1 AND owner_id = $2`, fileUUID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
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
