package s3

import (
	"context"
	"io"
	"strings"

	"filevault/internal/domain"
)

// UploadResult — ответ хранилища на успешную загрузку.
type UploadResult struct {
	URL  string
	Key  string
	Kind domain.ResourceKind
}

// Storage определяет интерфейс S3-совместимого хранилища.
type Storage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	// Rename перекладывает объект под новый ключ и возвращает его новый URL.
	Rename(ctx context.Context, oldKey, newKey string) (string, error)
	ObjectURL(key string) string
}

// ClassifyMIME определяет класс ресурса по MIME-типу.
func ClassifyMIME(contentType string) domain.ResourceKind {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return domain.ResourceKindImage
	case strings.HasPrefix(contentType, "video/"):
		return domain.ResourceKindVideo
	default:
		return domain.ResourceKindRaw
	}
}
