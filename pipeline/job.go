package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/yeti47/reelpress/media"
)

// Stage identifies how far a job has progressed. Transitions are strictly
// sequential; StageFailed is terminal and reachable from any non-terminal
// stage.
type Stage string

const (
	StageListed           Stage = "listed"
	StageDownloaded       Stage = "downloaded"
	StageSegmentExtracted Stage = "segment_extracted"
	StageOverlayApplied   Stage = "overlay_applied"
	StageUploaded         Stage = "uploaded"
	StageCreated          Stage = "created"
	StagePublished        Stage = "published"
	StageOriginalDeleted  Stage = "original_deleted"
	StageFailed           Stage = "failed"
)

// Job is one in-flight processing attempt, owned exclusively by the
// orchestrator for its duration. All temp paths live inside WorkDir, which
// carries the job's unique id so concurrent sweeps never share a file.
type Job struct {
	ID        string
	Candidate media.Candidate

	WorkDir     string
	InputPath   string
	SegmentPath string
	FinalPath   string

	Stage    Stage
	FailedAt Stage // stage that was being attempted when the job failed
	Err      error

	PublicURL string
	MediaID   string
}

// newJob allocates a job with a unique working directory under tempRoot.
func newJob(candidate media.Candidate, tempRoot string) (*Job, error) {
	id := uuid.NewString()
	workDir := filepath.Join(tempRoot, "reelpress-"+id)

	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create job work directory: %w", err)
	}

	return &Job{
		ID:          id,
		Candidate:   candidate,
		WorkDir:     workDir,
		InputPath:   filepath.Join(workDir, "input.mp4"),
		SegmentPath: filepath.Join(workDir, "segment.mp4"),
		FinalPath:   filepath.Join(workDir, "final.mp4"),
		Stage:       StageListed,
	}, nil
}

// cleanup removes every temp path the job created. Called on every exit
// path, success or failure.
func (j *Job) cleanup() {
	os.RemoveAll(j.WorkDir)
}

// fail marks the job as failed at the given stage with a classified cause.
func (j *Job) fail(at Stage, kind, cause error) {
	j.FailedAt = at
	j.Stage = StageFailed
	j.Err = fmt.Errorf("%w: %v", kind, cause)
}

// Succeeded reports whether the job got through both publish phases.
func (j *Job) Succeeded() bool {
	return j.Stage == StagePublished || j.Stage == StageOriginalDeleted
}
