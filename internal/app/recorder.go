package app

import (
	"context"
	"log/slog"

	"webprint-client/internal/model"
	"webprint-client/internal/notification"
	"webprint-client/internal/session"
	"webprint-client/internal/store"
	"webprint-client/internal/upload"
)

// recorder keeps a receipt of every accepted submission and announces it to
// the user's devices.
type recorder struct {
	session *session.State
	store   store.Store
	workers *notification.WorkerPool
}

func (r *recorder) RecordSubmission(ctx context.Context, s upload.Submission) {
	email := r.session.Email()
	if email == "" {
		slog.Debug("submission recorded without a signed-in user", "file", s.FileName)
		return
	}

	if r.store != nil {
		receipt := &model.PrintReceipt{
			ID:          s.ID,
			Email:       email,
			FileName:    s.FileName,
			DocumentID:  s.DocumentID,
			Color:       s.Options.Color,
			DoubleSided: s.Options.DoubleSided,
			Staple:      s.Options.Staple,
			Collate:     s.Options.Collate,
			Copies:      s.Options.Copies,
			SubmittedAt: s.SubmittedAt,
		}
		if err := r.store.SaveReceipt(ctx, receipt); err != nil {
			slog.Error("failed to save print receipt", "file", s.FileName, "error", err)
		}
	}

	if r.workers != nil {
		r.workers.Dispatch(notification.Job{Email: email, FileName: s.FileName, Copies: s.Options.Copies})
	}
}
