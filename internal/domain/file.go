package domain

import (
	"time"

	"github.com/google/uuid"
)

// ResourceKind — классификация объекта в хранилище (image/video/raw),
// определяет как провайдер обрабатывает и отдает загруженный объект.
type ResourceKind string

const (
	ResourceKindImage ResourceKind = "image"
	ResourceKindVideo ResourceKind = "video"
	ResourceKindRaw   ResourceKind = "raw"
)

type File struct {
	UUID         uuid.UUID    `json:"uuid" db:"uuid"`
	Name         string       `json:"name" db:"name"`
	MIMEType     string       `json:"mime_type" db:"mime_type"`
	SizeBytes    int64        `json:"size_bytes" db:"size_bytes"`
	URL          string       `json:"url" db:"url"`
	StorageKey   string       `json:"storage_key" db:"storage_key"`
	ResourceKind ResourceKind `json:"resource_kind" db:"resource_kind"`
	OwnerID      uuid.UUID    `json:"owner_id" db:"owner_id"`
	FolderID     *int64       `json:"folder_id,omitempty" db:"folder_id"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}
