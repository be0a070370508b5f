package domain

import (
	"time"

	"github.com/google/uuid"
)

type Folder struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	OwnerID   uuid.UUID `json:"owner_id" db:"owner_id"`
	ParentID  *int64    `json:"parent_id,omitempty" db:"parent_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Breadcrumb — элемент навигационной цепочки от корня до текущей папки.
type Breadcrumb struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type FolderContent struct {
	Folder      Folder       `json:"folder"`
	Breadcrumbs []Breadcrumb `json:"breadcrumbs"`
	Folders     []Folder     `json:"subfolders"`
	Files       []File       `json:"files"`
}
