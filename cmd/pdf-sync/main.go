// Command pdf-sync uploads processed output PDFs to a Cloud Storage bucket
// with Firestore-backed deduplication. Flags fall back to the environment so
// cron entries stay short; credentials come from Application Default
// Credentials.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Limewood-Innovations/pdf-tools/internal/gcs"
	"github.com/Limewood-Innovations/pdf-tools/internal/logging"
	"github.com/Limewood-Innovations/pdf-tools/internal/syncer"
)

func main() {
	sourceDir := flag.String("source-dir", "", "directory of PDFs to synchronize (required)")
	bucket := flag.String("bucket", gcs.GetEnv("SYNC_BUCKET", ""), "destination Cloud Storage bucket")
	prefix := flag.String("prefix", "", "object name prefix inside the bucket")
	projectID := flag.String("project", gcs.GetEnv("PROJECT_ID", ""), "Google Cloud project ID")
	collection := flag.String("collection", gcs.GetEnv("FIRESTORE_COLLECTION", "synced-documents"), "Firestore manifest collection")
	workflowID := flag.String("workflow", gcs.GetEnv("WORKFLOW_ID", ""), "workflow to trigger after a successful sync (optional)")
	workflowLocation := flag.String("workflow-location", gcs.GetEnv("WORKFLOW_LOCATION", "us-central1"), "workflow location")
	concurrency := flag.Int("concurrency", 10, "parallel uploads")
	logFile := flag.String("log-file", "", "redirect diagnostics to a rotating log file")
	flag.Parse()

	log, err := logging.Setup(*logFile, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	service, err := syncer.New(ctx, syncer.Config{
		ProjectID:        *projectID,
		Bucket:           *bucket,
		Collection:       *collection,
		WorkflowID:       *workflowID,
		WorkflowLocation: *workflowLocation,
		SourceDir:        *sourceDir,
		Prefix:           *prefix,
		Concurrency:      *concurrency,
	}, log)
	if err != nil {
		log.Error("Invalid configuration.", "error", err)
		os.Exit(1)
	}
	defer service.Close()

	summary, err := service.Run(ctx)
	if err != nil {
		log.Error("Sync aborted.", "error", err)
		os.Exit(1)
	}
	if summary.Failed > 0 {
		os.Exit(1)
	}
}
