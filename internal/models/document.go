package models

import "time"

// SyncRecord is the Firestore manifest entry for one synchronized output
// file. The file hash is the dedup key: re-running a sync against the same
// content is a no-op.
type SyncRecord struct {
	FileHash         string    `firestore:"fileHash,omitempty"`
	OriginalFilename string    `firestore:"originalFilename,omitempty"`
	ObjectPath       string    `firestore:"objectPath,omitempty"`
	SizeBytes        int64     `firestore:"sizeBytes,omitempty"`
	Status           string    `firestore:"status,omitempty"`
	ErrorDetails     string    `firestore:"errorDetails,omitempty"`
	SyncedAt         time.Time `firestore:"syncedAt,omitempty"`
}
