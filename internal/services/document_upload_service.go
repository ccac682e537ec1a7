package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nurseryhub/nursery-api/internal/models"
	"github.com/nurseryhub/nursery-api/pkg/logger"
	"github.com/nurseryhub/nursery-api/pkg/metrics"
	"github.com/nurseryhub/nursery-api/pkg/slug"
	"github.com/nurseryhub/nursery-api/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var contentTypesByExt = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// DocumentUploadService stores enrollment documents in object storage and records them
type DocumentUploadService struct {
	storage   DocumentStorage
	children  ChildReader
	documents DocumentRecordRepository
}

// NewDocumentUploadService creates a new document upload service
func NewDocumentUploadService(storage DocumentStorage, children ChildReader, documents DocumentRecordRepository) *DocumentUploadService {
	return &DocumentUploadService{
		storage:   storage,
		children:  children,
		documents: documents,
	}
}

// UploadDocument uploads file for the child ownerID and records its metadata.
// If the metadata cannot be saved the uploaded object is removed again.
func (s *DocumentUploadService) UploadDocument(ctx context.Context, file models.DocumentFile, documentType models.DocumentType, ownerID string) (*models.StoredDocument, error) {
	ctx, span := tracing.StartSpan(ctx, "documents.upload",
		attribute.String("document.type", string(documentType)),
		attribute.String("document.owner_id", ownerID),
	)
	defer span.End()

	key := s.storageKey(ctx, file.FileName, documentType, ownerID)
	contentType := resolveContentType(file)

	url, err := s.storage.Upload(ctx, key, file.Content, contentType)
	if err != nil {
		metrics.DocumentUploads.WithLabelValues(string(documentType), "storage_error").Inc()
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("failed to upload %s: %w", documentType.Label(), err)
	}

	doc := &models.StoredDocument{
		DocumentType: documentType,
		OwnerID:      ownerID,
		FileName:     file.FileName,
		ContentType:  contentType,
		SizeBytes:    int64(len(file.Content)),
		StorageKey:   key,
		URL:          url,
	}

	if err := s.documents.Create(ctx, doc); err != nil {
		metrics.DocumentUploads.WithLabelValues(string(documentType), "db_error").Inc()
		tracing.RecordError(span, err)
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			logger.Error("Failed to remove orphaned document object",
				zap.Error(delErr),
				zap.String("key", key))
		}
		return nil, fmt.Errorf("failed to record %s: %w", documentType.Label(), err)
	}

	metrics.DocumentUploads.WithLabelValues(string(documentType), "success").Inc()
	logger.Info("Enrollment document uploaded",
		zap.String("document_id", doc.DocumentID),
		zap.String("document_type", string(documentType)),
		zap.String("owner_id", ownerID),
		zap.Int64("size_bytes", doc.SizeBytes))

	return doc, nil
}

// storageKey builds children/{child-slug}/{document_type}{ext}; the slug falls back to the raw id
func (s *DocumentUploadService) storageKey(ctx context.Context, fileName string, documentType models.DocumentType, ownerID string) string {
	prefix := ownerID
	if child, err := s.children.GetByID(ctx, ownerID); err == nil {
		prefix = slug.ChildSlug(child.FirstName, child.LastName, ownerID)
	} else {
		logger.Warn("Could not load child for document key, using id",
			zap.Error(err),
			zap.String("owner_id", ownerID))
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("children/%s/%s%s", prefix, strings.ToLower(string(documentType)), ext)
}

func resolveContentType(file models.DocumentFile) string {
	if ct, ok := contentTypesByExt[strings.ToLower(filepath.Ext(file.FileName))]; ok {
		return ct
	}
	if file.ContentType != "" {
		return file.ContentType
	}
	return "application/octet-stream"
}
