// Package syncer pushes processed output PDFs to a Cloud Storage bucket,
// keeping a Firestore manifest so re-runs skip content that was already
// synchronized.
package syncer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	executions "cloud.google.com/go/workflows/executions/apiv1"
	"cloud.google.com/go/workflows/executions/apiv1/executionspb"
	"golang.org/x/sync/errgroup"

	"github.com/Limewood-Innovations/pdf-tools/internal/batch"
	"github.com/Limewood-Innovations/pdf-tools/internal/gcs"
	"github.com/Limewood-Innovations/pdf-tools/internal/models"
)

// Config for one sync run.
type Config struct {
	ProjectID  string
	Bucket     string
	Collection string

	// WorkflowID, when set, triggers a downstream workflow execution after
	// a successful sync.
	WorkflowID       string
	WorkflowLocation string

	SourceDir string
	// Prefix is prepended to every object name.
	Prefix string
	// Concurrency bounds parallel uploads.
	Concurrency int
}

// Summary of a sync run.
type Summary struct {
	Uploaded          int `json:"uploaded"`
	SkippedDuplicates int `json:"skippedDuplicates"`
	Failed            int `json:"failed"`
}

// Service holds the clients of the sync tooling.
type Service struct {
	storageClient    *storage.Client
	firestoreClient  *firestore.Client
	executionsClient *executions.Client
	config           Config
	log              *slog.Logger

	mu         sync.Mutex
	runSummary *Summary
}

// New validates the configuration and creates the cloud clients.
func New(ctx context.Context, config Config, log *slog.Logger) (*Service, error) {
	if config.ProjectID == "" {
		return nil, fmt.Errorf("project ID must be set")
	}
	if config.Bucket == "" {
		return nil, fmt.Errorf("sync bucket must be set")
	}
	if config.SourceDir == "" {
		return nil, fmt.Errorf("source directory must be set")
	}
	if config.Collection == "" {
		config.Collection = "synced-documents"
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 10
	}
	if log == nil {
		log = slog.Default()
	}

	firestoreClient, err := gcs.NewFirestoreClient(ctx, config.ProjectID)
	if err != nil {
		return nil, err
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}

	s := &Service{
		storageClient:   storageClient,
		firestoreClient: firestoreClient,
		config:          config,
		log:             log,
	}
	if config.WorkflowID != "" {
		executionsClient, err := executions.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create Workflows Executions client: %w", err)
		}
		s.executionsClient = executionsClient
	}
	log.Info("Syncer initialized.", "bucket", config.Bucket, "collection", config.Collection)
	return s, nil
}

// Close releases all clients.
func (s *Service) Close() error {
	var firstErr error
	if err := s.firestoreClient.Close(); err != nil {
		firstErr = err
	}
	if err := s.storageClient.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if s.executionsClient != nil {
		if err := s.executionsClient.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Run synchronizes every PDF in the source directory and returns a summary.
// Individual upload failures are counted, not fatal.
func (s *Service) Run(ctx context.Context) (*Summary, error) {
	files, err := batch.ListPDFs(s.config.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("list source directory %s: %w", s.config.SourceDir, err)
	}

	summary := &Summary{}
	s.mu.Lock()
	s.runSummary = summary
	s.mu.Unlock()
	if len(files) == 0 {
		s.log.Warn("No PDF found in source directory.", "sourceDir", s.config.SourceDir)
		return summary, nil
	}
	s.log.Info("Starting sync.", "files", len(files), "concurrency", s.config.Concurrency)

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.config.Concurrency)
	for _, file := range files {
		file := file
		eg.Go(func() error {
			switch err := s.syncFile(gctx, file); {
			case err == nil:
			case gctx.Err() != nil:
				return gctx.Err()
			default:
				s.log.Error("Failed to sync file.", "file", filepath.Base(file), "error", err)
				s.count(func(sum *Summary) { sum.Failed++ })
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return summary, err
	}

	s.log.Info("Sync complete.",
		"uploaded", summary.Uploaded,
		"skippedDuplicates", summary.SkippedDuplicates,
		"failed", summary.Failed,
	)

	if s.executionsClient != nil && summary.Uploaded > 0 {
		if err := s.triggerWorkflow(ctx, summary); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

func (s *Service) count(fn func(*Summary)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.runSummary)
}

func (s *Service) syncFile(ctx context.Context, file string) error {
	fileHash, size, err := hashFile(file)
	if err != nil {
		return fmt.Errorf("hash %s: %w", file, err)
	}
	logCtx := s.log.With("file", filepath.Base(file), "fileHash", fileHash)

	isDuplicate, docID, err := s.isDuplicate(ctx, fileHash)
	if err != nil {
		return err
	}
	if isDuplicate {
		logCtx.Info("Duplicate content detected, skipping.", "existingDocId", docID)
		s.count(func(sum *Summary) { sum.SkippedDuplicates++ })
		return nil
	}

	objectName := path.Join(s.config.Prefix, filepath.Base(file))
	if err := s.uploadFile(ctx, file, objectName); err != nil {
		s.recordFailure(ctx, file, fileHash, err)
		return err
	}
	logCtx.Info("Uploaded.", "object", objectName)

	record := models.SyncRecord{
		FileHash:         fileHash,
		OriginalFilename: filepath.Base(file),
		ObjectPath:       fmt.Sprintf("gs://%s/%s", s.config.Bucket, objectName),
		SizeBytes:        size,
		Status:           "SYNCED",
		SyncedAt:         time.Now(),
	}
	if _, _, err := s.firestoreClient.Collection(s.config.Collection).Add(ctx, record); err != nil {
		return fmt.Errorf("write manifest record: %w", err)
	}
	s.count(func(sum *Summary) { sum.Uploaded++ })
	return nil
}

func (s *Service) isDuplicate(ctx context.Context, fileHash string) (bool, string, error) {
	docs, err := s.firestoreClient.Collection(s.config.Collection).
		Where("fileHash", "==", fileHash).
		Where("status", "==", "SYNCED").
		Limit(1).
		Documents(ctx).
		GetAll()
	if err != nil {
		return false, "", fmt.Errorf("failed to query manifest for duplicates: %w", err)
	}
	if len(docs) > 0 {
		return true, docs[0].Ref.ID, nil
	}
	return false, "", nil
}

func (s *Service) recordFailure(ctx context.Context, file, fileHash string, cause error) {
	record := models.SyncRecord{
		FileHash:         fileHash,
		OriginalFilename: filepath.Base(file),
		Status:           "FAILED",
		ErrorDetails:     cause.Error(),
		SyncedAt:         time.Now(),
	}
	if _, _, err := s.firestoreClient.Collection(s.config.Collection).Add(ctx, record); err != nil {
		s.log.Error("Failed to record sync failure in manifest.", "file", filepath.Base(file), "error", err)
	}
}

func (s *Service) uploadFile(ctx context.Context, localPath, objectName string) error {
	const maxRetries = 4
	backoff := 1 * time.Second
	var lastErr error

	bucket := s.storageClient.Bucket(s.config.Bucket)
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := func() error {
			f, err := os.Open(localPath)
			if err != nil {
				return fmt.Errorf("could not open local file %s: %w", localPath, err)
			}
			defer f.Close()

			writeCtx, cancel := context.WithTimeout(ctx, 50*time.Second)
			defer cancel()
			return gcs.SaveObjectIfAbsent(writeCtx, bucket, objectName, f)
		}()
		if err == nil {
			return nil
		}

		lastErr = err
		s.log.Warn("Upload failed, will retry.",
			"object", objectName,
			"attempt", attempt,
			"maxRetries", maxRetries,
			"backoff", backoff.String(),
			"error", err,
		)
		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("upload for %s failed after all retries: %w", objectName, lastErr)
}

func (s *Service) triggerWorkflow(ctx context.Context, summary *Summary) error {
	s.log.Info("Triggering workflow.", "workflowId", s.config.WorkflowID)
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow payload: %w", err)
	}
	req := &executionspb.CreateExecutionRequest{
		Parent: fmt.Sprintf("projects/%s/locations/%s/workflows/%s",
			s.config.ProjectID, s.config.WorkflowLocation, s.config.WorkflowID),
		Execution: &executionspb.Execution{
			Argument: string(payload),
		},
	}
	if _, err := s.executionsClient.CreateExecution(ctx, req); err != nil {
		return fmt.Errorf("failed to trigger workflow execution: %w", err)
	}
	return nil
}

func hashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()
	hash := sha256.New()
	size, err := io.Copy(hash, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(hash.Sum(nil)), size, nil
}
