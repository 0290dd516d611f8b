package audit

import (
	"context"
	"time"

	appctx "msana/internal/core/context"
	"msana/internal/core/id"
	"msana/pkg/logger"
)

// recordTimeout bounds the background insert so a wedged database cannot
// accumulate goroutines.
const recordTimeout = 5 * time.Second

// Recorder writes audit entries fire-and-forget. Failures are logged and
// swallowed: audit is a best-effort side channel and must never abort the
// parent business operation.
type Recorder struct {
	repo Repository
	log  *logger.Logger
}

// NewRecorder creates an audit recorder.
func NewRecorder(repo Repository, log *logger.Logger) *Recorder {
	return &Recorder{repo: repo, log: log.WithComponent("audit")}
}

// Record captures an audit entry asynchronously. Actor identity and request
// metadata are taken from ctx; the entry is persisted on a detached context so
// request cancellation cannot lose the record mid-flight.
func (r *Recorder) Record(ctx context.Context, action Action, resourceType ResourceType, resourceID *id.ID, details map[string]any) {
	entry := &Entry{
		ID:           id.New(),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
		CreatedAt:    time.Now().UTC(),
	}

	if user := appctx.GetUser(ctx); user != nil {
		if uid, err := id.Parse(user.UserID); err == nil {
			entry.UserID = uid
		}
		entry.UserName = user.Name
		entry.UserEmail = user.Email
	}
	if trace := appctx.GetTrace(ctx); trace != nil {
		entry.IPAddress = trace.ClientIP
		entry.UserAgent = trace.UserAgent
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()

		if err := r.repo.Create(bgCtx, entry); err != nil {
			r.log.Warnw("audit record failed",
				"action", action,
				"resource_type", resourceType,
				"error", err,
			)
		}
	}()
}
