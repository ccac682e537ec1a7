package models

import (
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// DocumentType identifies one of the proof-document slots of an enrollment
type DocumentType string

const (
	DocumentCarnetMedical     DocumentType = "CARNET_MEDICAL"
	DocumentActeNaissance     DocumentType = "ACTE_NAISSANCE"
	DocumentCertificatMedical DocumentType = "CERTIFICAT_MEDICAL"
)

// AllDocumentTypes lists the slots in the order they are shown to parents
var AllDocumentTypes = []DocumentType{
	DocumentCarnetMedical,
	DocumentActeNaissance,
	DocumentCertificatMedical,
}

var documentKeywords = map[DocumentType][]string{
	DocumentCarnetMedical:     {"carnet", "medical"},
	DocumentActeNaissance:     {"naissance", "acte"},
	DocumentCertificatMedical: {"certificat", "medical"},
}

var documentLabels = map[DocumentType]string{
	DocumentCarnetMedical:     "medical booklet",
	DocumentActeNaissance:     "birth certificate",
	DocumentCertificatMedical: "medical certificate",
}

// IsValid reports whether t is one of the known slots
func (t DocumentType) IsValid() bool {
	_, ok := documentKeywords[t]
	return ok
}

// Required is true for every slot in the enrollment flow
func (t DocumentType) Required() bool {
	return t.IsValid()
}

// Keywords returns the filename hints expected for this document type
func (t DocumentType) Keywords() []string {
	return documentKeywords[t]
}

// Label returns a human readable name
func (t DocumentType) Label() string {
	if label, ok := documentLabels[t]; ok {
		return label
	}
	return string(t)
}

// ParseDocumentType accepts the upper-case enum value or its lower-case form (as used in URLs)
func ParseDocumentType(raw string) (DocumentType, bool) {
	for _, t := range AllDocumentTypes {
		if string(t) == raw || string(t) == strings.ToUpper(raw) {
			return t, true
		}
	}
	return "", false
}

// DocumentFile is a candidate file chosen by the parent, held in memory until submit
type DocumentFile struct {
	FileName    string `json:"fileName"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
	Content     []byte `json:"-"`
}

// ValidationResult is the outcome of checking a file against a document type policy
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// StoredDocument is a document that landed in object storage
type StoredDocument struct {
	DocumentID   string       `json:"documentId"`
	DocumentType DocumentType `json:"documentType"`
	OwnerID      string       `json:"ownerId"`
	FileName     string       `json:"fileName"`
	ContentType  string       `json:"contentType"`
	SizeBytes    int64        `json:"sizeBytes"`
	StorageKey   string       `json:"-"`
	URL          string       `json:"url"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// ScanStoredDocument scans a single PostgreSQL row into a StoredDocument
// Expected columns: id, owner_id, document_type, file_name, content_type, size_bytes,
// storage_key, url, created_at
func ScanStoredDocument(row pgx.Row) (*StoredDocument, error) {
	var d StoredDocument
	err := row.Scan(
		&d.DocumentID,
		&d.OwnerID,
		&d.DocumentType,
		&d.FileName,
		&d.ContentType,
		&d.SizeBytes,
		&d.StorageKey,
		&d.URL,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ScanStoredDocuments scans multiple rows into a slice of StoredDocument
func ScanStoredDocuments(rows pgx.Rows) ([]*StoredDocument, error) {
	defer rows.Close()

	docs := []*StoredDocument{}
	for rows.Next() {
		doc, err := ScanStoredDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}
