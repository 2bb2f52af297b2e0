package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yeti47/reelpress/logging"
)

// Publisher handles the two-phase create/publish protocol against the social
// endpoint. A post is only live after both calls succeed; callers must not
// treat a successful Create alone as completion.
type Publisher interface {
	// Create registers a media object for the video at the given public URL
	// and returns its creation id.
	Create(ctx context.Context, videoURL, caption string) (string, error)

	// Publish finalizes a previously created media object.
	Publish(ctx context.Context, creationID string) error
}

// graphPublisher implements Publisher against a Graph-style REST API.
type graphPublisher struct {
	baseURL     string
	accountID   string
	accessToken string
	httpClient  *http.Client
	logger      logging.Logger
}

// NewGraphPublisher creates a new publish client for the given account.
func NewGraphPublisher(logger logging.Logger, baseURL, accountID, accessToken string, timeout time.Duration) Publisher {
	if logger == nil {
		logger = logging.NopLogger
	}

	return &graphPublisher{
		baseURL:     baseURL,
		accountID:   accountID,
		accessToken: accessToken,
		logger:      logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// createResponse is the endpoint's response to a media creation call.
type createResponse struct {
	ID string `json:"id"`
}

// Create registers a media object for the video. A response without an id
// field is a failure, not something to silently skip.
func (p *graphPublisher) Create(ctx context.Context, videoURL, caption string) (string, error) {
	form := url.Values{}
	form.Set("media_type", "REELS")
	form.Set("video_url", videoURL)
	form.Set("caption", caption)
	form.Set("access_token", p.accessToken)

	body, err := p.postForm(ctx, fmt.Sprintf("%s/%s/media", p.baseURL, p.accountID), form)
	if err != nil {
		return "", fmt.Errorf("media creation failed: %w", err)
	}

	var created createResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("failed to decode creation response: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("creation response contained no id: %s", string(body))
	}

	p.logger.Info("Created media object", "mediaID", created.ID, "videoURL", videoURL)

	return created.ID, nil
}

// Publish finalizes a previously created media object.
func (p *graphPublisher) Publish(ctx context.Context, creationID string) error {
	form := url.Values{}
	form.Set("creation_id", creationID)
	form.Set("access_token", p.accessToken)

	if _, err := p.postForm(ctx, fmt.Sprintf("%s/%s/media_publish", p.baseURL, p.accountID), form); err != nil {
		return fmt.Errorf("media publish failed: %w", err)
	}

	p.logger.Info("Published media object", "mediaID", creationID)

	return nil
}

// postForm sends a form-encoded POST and returns the response body for any
// 2xx status.
func (p *graphPublisher) postForm(ctx context.Context, reqURL string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", reqURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
