package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/yeti47/reelpress/config"
	"github.com/yeti47/reelpress/logging"
	"github.com/yeti47/reelpress/media"
	"github.com/yeti47/reelpress/processing"
	"github.com/yeti47/reelpress/publish"
	"github.com/yeti47/reelpress/storage"
)

// StatsSnapshot is a point-in-time copy of the process-wide counters.
type StatsSnapshot struct {
	Processed int64 `json:"processed"`
	Published int64 `json:"published"`
	Failed    int64 `json:"failed"`
}

// Orchestrator drives candidates end-to-end through the pipeline. One sweep
// lists the source folder and processes every candidate sequentially; a
// failed candidate is skipped, its temp state released, and the sweep
// continues.
type Orchestrator struct {
	logger     logging.Logger
	cfg        *config.Config
	store      storage.RemoteStore
	prober     processing.Prober
	transcoder processing.Transcoder
	publisher  publish.Publisher
	ledger     *Ledger

	processed atomic.Int64
	published atomic.Int64
	failed    atomic.Int64
}

// NewOrchestrator creates a new pipeline orchestrator. ledger may be nil to
// disable outcome recording.
func NewOrchestrator(
	logger logging.Logger,
	cfg *config.Config,
	store storage.RemoteStore,
	prober processing.Prober,
	transcoder processing.Transcoder,
	publisher publish.Publisher,
	ledger *Ledger,
) *Orchestrator {
	if logger == nil {
		logger = logging.NopLogger
	}

	return &Orchestrator{
		logger:     logger,
		cfg:        cfg,
		store:      store,
		prober:     prober,
		transcoder: transcoder,
		publisher:  publisher,
		ledger:     ledger,
	}
}

// Stats returns a snapshot of the process-wide counters.
func (o *Orchestrator) Stats() StatsSnapshot {
	return StatsSnapshot{
		Processed: o.processed.Load(),
		Published: o.published.Load(),
		Failed:    o.failed.Load(),
	}
}

// checkSweepConfig verifies the settings a sweep cannot run without.
func (o *Orchestrator) checkSweepConfig() error {
	var missing []string
	if o.cfg.SourceFolderID == "" {
		missing = append(missing, "source_folder_id")
	}
	if o.cfg.ProcessedFolderID == "" {
		missing = append(missing, "processed_folder_id")
	}
	if o.cfg.PublishAccountID == "" {
		missing = append(missing, "publish_account_id")
	}
	if o.cfg.PublishAccessToken == "" {
		missing = append(missing, "publish_access_token")
	}
	if o.cfg.WatermarkPath == "" {
		missing = append(missing, "watermark_path")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigMissing, strings.Join(missing, ", "))
	}
	return nil
}

// RunSweep performs one full pass over the source folder. Candidates are
// processed in listed order, one at a time. The returned error is non-nil
// only for sweep-level failures (missing config, listing failure); per-job
// failures are logged and absorbed.
func (o *Orchestrator) RunSweep(ctx context.Context) error {
	if err := o.checkSweepConfig(); err != nil {
		o.logger.Error("Sweep aborted", "error", err.Error())
		return err
	}

	candidates, err := o.store.List(ctx, o.cfg.SourceFolderID)
	if err != nil {
		o.logger.Error("Failed to list source folder", "error", err.Error())
		return fmt.Errorf("failed to list source folder: %w", err)
	}

	if len(candidates) == 0 {
		o.logger.Info("No files found in source folder")
		return nil
	}

	o.logger.Info("Starting sweep", "candidates", len(candidates))

	for _, candidate := range candidates {
		job := o.processCandidate(ctx, candidate)

		o.processed.Add(1)
		if job.Succeeded() {
			o.published.Add(1)
		} else {
			o.failed.Add(1)
		}

		o.record(ctx, job)
	}

	return nil
}

// processCandidate runs one candidate through the full state machine. Every
// temp path the job creates is released before this returns, regardless of
// outcome. The original is only deleted after both publish phases succeed.
func (o *Orchestrator) processCandidate(ctx context.Context, candidate media.Candidate) *Job {
	o.logger.Info("Processing candidate", "id", candidate.ID, "title", candidate.Title)

	job, err := newJob(candidate, o.cfg.TempDir)
	if err != nil {
		job = &Job{ID: "", Candidate: candidate, Stage: StageListed}
		job.fail(StageListed, ErrDownloadFailed, err)
		o.logFailure(job)
		return job
	}
	defer job.cleanup()

	// Download the source bytes to the job-local input path.
	if err := o.store.Download(ctx, candidate.ID, job.InputPath); err != nil {
		job.fail(StageDownloaded, ErrDownloadFailed, err)
		o.logFailure(job)
		return job
	}
	job.Stage = StageDownloaded

	// Probe the duration and select the segment window. A probe failure is
	// treated as duration 0, which yields an empty window and fails the job.
	duration, err := o.prober.Duration(job.InputPath)
	if err != nil {
		duration = 0
	}
	window := media.SelectWindow(duration, o.cfg.MaxSegmentSeconds)
	if window.IsEmpty() {
		job.fail(StageSegmentExtracted, ErrProbeFailed,
			fmt.Errorf("no usable segment in %.1fs source: %v", duration, err))
		o.logFailure(job)
		return job
	}

	o.logger.Info("Selected segment", "id", candidate.ID,
		"duration", duration, "start", window.Start, "end", window.End)

	if err := o.transcoder.Run(ctx, processing.SegmentSpec(job.InputPath, window), job.SegmentPath); err != nil {
		job.fail(StageSegmentExtracted, ErrTranscodeFailed, err)
		o.logFailure(job)
		return job
	}
	job.Stage = StageSegmentExtracted

	overlay := processing.OverlayBuilder{
		CanvasWidth:    o.cfg.CanvasWidth,
		CanvasHeight:   o.cfg.CanvasHeight,
		LiveHeight:     o.cfg.LiveHeight,
		WatermarkPath:  o.cfg.WatermarkPath,
		WatermarkWidth: o.cfg.WatermarkWidth,
		BounceCap:      o.cfg.BounceCapSeconds,
	}
	if err := o.transcoder.Run(ctx, overlay.Spec(job.SegmentPath), job.FinalPath); err != nil {
		job.fail(StageOverlayApplied, ErrTranscodeFailed, err)
		o.logFailure(job)
		return job
	}
	job.Stage = StageOverlayApplied

	publicURL, err := o.store.Upload(ctx, job.FinalPath, o.cfg.ProcessedFolderID)
	if err != nil {
		job.fail(StageUploaded, ErrUploadFailed, err)
		o.logFailure(job)
		return job
	}
	job.PublicURL = publicURL
	job.Stage = StageUploaded

	mediaID, err := o.publisher.Create(ctx, publicURL, o.caption())
	if err != nil {
		job.fail(StageCreated, ErrPublishFailed, err)
		o.logFailure(job)
		return job
	}
	job.MediaID = mediaID
	job.Stage = StageCreated

	if err := o.publisher.Publish(ctx, mediaID); err != nil {
		job.fail(StagePublished, ErrPublishFailed, err)
		o.logFailure(job)
		return job
	}
	job.Stage = StagePublished

	o.logger.Info("Posted reel", "id", candidate.ID, "mediaID", mediaID, "url", publicURL)

	// Best-effort cleanup of the original. Failure here is logged but does
	// not undo the already-completed publish; the job still counts as
	// published.
	if err := o.store.Delete(ctx, candidate.ID); err != nil {
		o.logger.Warn("Failed to delete original", "id", candidate.ID, "error", err.Error())
		return job
	}
	job.Stage = StageOriginalDeleted

	o.logger.Info("Deleted original file", "id", candidate.ID, "title", candidate.Title)

	return job
}

// caption renders the configured caption template with today's date.
func (o *Orchestrator) caption() string {
	template := o.cfg.CaptionTemplate
	if strings.Contains(template, "%s") {
		return fmt.Sprintf(template, time.Now().Format("2006-01-02"))
	}
	return template
}

func (o *Orchestrator) logFailure(job *Job) {
	o.logger.Error("Candidate failed",
		"id", job.Candidate.ID,
		"title", job.Candidate.Title,
		"stage", string(job.FailedAt),
		"error", job.Err.Error())
}

// record writes the job outcome to the ledger, if one is configured.
func (o *Orchestrator) record(ctx context.Context, job *Job) {
	if o.ledger == nil {
		return
	}

	entry := &Entry{
		ID:          job.ID,
		CandidateID: job.Candidate.ID,
		Title:       job.Candidate.Title,
		Stage:       string(job.Stage),
		PublicURL:   job.PublicURL,
		MediaID:     job.MediaID,
		CreatedAt:   time.Now().UTC(),
	}
	if job.Err != nil {
		entry.FailedStage = string(job.FailedAt)
		entry.Error = job.Err.Error()
	}

	if err := o.ledger.Record(ctx, entry); err != nil {
		o.logger.Warn("Failed to record job outcome", "id", job.ID, "error", err.Error())
	}
}
