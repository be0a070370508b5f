package domain

import (
	"time"

	"github.com/google/uuid"
)

type ResourceType string

const (
	ResourceTypeFile   ResourceType = "file"
	ResourceTypeFolder ResourceType = "folder"
)

// ShareLink — анонимная read-only ссылка на файл или папку.
// Ровно одно из полей FileUUID/FolderID заполнено (CHECK в схеме).
// Просроченные ссылки не удаляются, проверка срока выполняется лениво
// при каждом обращении по токену.
type ShareLink struct {
	Token     string     `json:"token" db:"token"`
	FileUUID  *uuid.UUID `json:"file_uuid,omitempty" db:"file_uuid"`
	FolderID  *int64     `json:"folder_id,omitempty" db:"folder_id"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// SharedResource — то, что видит анонимный посетитель по действующему токену.
type SharedResource struct {
	ResourceType ResourceType   `json:"resource_type"`
	File         *File          `json:"file,omitempty"`
	Folder       *FolderContent `json:"folder,omitempty"`
}
