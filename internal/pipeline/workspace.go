package pipeline

import (
	"context"

	"filmsuite/internal/artifacts"
	"filmsuite/internal/logging"
)

// Workspace keeps the session for the video currently being worked on.
type Workspace struct {
	pipeline *Pipeline
	current  *Session
}

// NewWorkspace returns an empty workspace.
func NewWorkspace(p *Pipeline) *Workspace {
	return &Workspace{pipeline: p}
}

// Select returns the session for the video named by arg. Selecting the
// current video reuses its session; selecting another discards it first.
func (w *Workspace) Select(ctx context.Context, arg string) (*Session, error) {
	name := artifacts.VideoName(arg)
	if w.current != nil && w.current.Asset.Name == name {
		return w.current, nil
	}
	if w.current != nil {
		w.pipeline.logger.Info("session discarded",
			logging.String(logging.FieldEventType, "session_discarded"),
			logging.String(logging.FieldSessionID, w.current.ID),
			logging.String(logging.FieldVideoKey, w.current.Asset.Key))
		w.current = nil
	}
	session, err := w.pipeline.Open(ctx, arg)
	if err != nil {
		return nil, err
	}
	w.current = session
	return session, nil
}

// Current returns the active session, or nil.
func (w *Workspace) Current() *Session {
	return w.current
}
