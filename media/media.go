package media

import (
	"time"
)

// Candidate is a reference to an unprocessed source video in the remote store.
// It is produced at scan time and consumed exactly once per sweep; there is no
// persisted identity after processing.
type Candidate struct {
	ID       string
	Title    string
	MimeType string
}

// Draft carries everything the publish client needs for one post.
// PublicMediaURL is filled in by the remote store client after upload.
type Draft struct {
	CaptionText    string
	PublicMediaURL string
	ScheduledTime  time.Time
}

// PublishResult reports the outcome of the two-phase publish protocol.
// MediaID is returned by the create call; Published is only true if the
// publish call succeeded as well.
type PublishResult struct {
	MediaID   string
	Published bool
}
