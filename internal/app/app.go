// Package app builds the client core and connects its components.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"webprint-client/config"
	"webprint-client/internal/api"
	"webprint-client/internal/directory"
	"webprint-client/internal/gateway"
	"webprint-client/internal/notification"
	"webprint-client/internal/selection"
	"webprint-client/internal/session"
	"webprint-client/internal/store"
	"webprint-client/internal/upload"
)

// App is the application state. It is created once at startup and handed to
// the HTTP layer.
type App struct {
	Config    *config.Config
	Gateway   *gateway.Client
	Hub       *api.Hub
	Session   *session.State
	Pipeline  *upload.Pipeline
	Selection *selection.Synchronizer
	Directory *directory.Directory
	Store     store.Store
	Workers   *notification.WorkerPool
	Webpush   *webpush.Options
}

// New wires the components. db may be nil, which disables print history and
// push notifications. A printer directory that fails to load is reported on
// the list surface and does not stop the app.
func New(cfg *config.Config, db *gorm.DB) (*App, error) {
	gw, err := gateway.New(&cfg.API)
	if err != nil {
		return nil, fmt.Errorf("failed to create print API client: %w", err)
	}

	a := &App{
		Config:  cfg,
		Gateway: gw,
		Hub:     api.NewHub(),
	}

	a.Session = session.New(gw, session.Options{
		DefaultDomain:   cfg.Session.DefaultDomain,
		AllowedDomains:  cfg.Session.AllowedDomains,
		RefreshInterval: cfg.Session.RefreshInterval,
		OnSignedOut:     a.Hub.SignedOut,
		OnChange:        a.Hub.SessionChanged,
	})

	if db != nil {
		a.Store = store.NewGormStore(db)
		if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
			a.Webpush = &webpush.Options{
				VAPIDPublicKey:  cfg.Push.PublicKey,
				VAPIDPrivateKey: cfg.Push.PrivateKey,
				Subscriber:      cfg.Push.Subject,
				TTL:             cfg.Push.TTL,
			}
			a.Workers = notification.NewWorkerPool(cfg.WorkerPool.Size, a.Store, a.Webpush)
		} else {
			slog.Warn("VAPID keys are not configured; push notifications are disabled")
		}
	}

	a.Pipeline = upload.New(gw, upload.Config{
		MaxBytes:          cfg.Upload.MaxBytes,
		AllowedExtensions: cfg.Upload.AllowedExtensions,
		Refresher:         a.Session,
		Recorder:          &recorder{session: a.Session, store: a.Store, workers: a.Workers},
		OnChange:          a.Hub.UploadChanged,
		OnFailure:         a.Hub.Failed,
		ClearInput:        a.Hub.ClearFileInput,
	})

	a.Selection = selection.New(a.Hub, a.Hub, selection.Config{
		DefaultGroup: cfg.Directory.DefaultGroup,
		HoverDelay:   cfg.Map.HoverDelay,
		Colors: selection.Colors{
			Default:  cfg.Map.DefaultColor,
			Hovered:  cfg.Map.HoverColor,
			Selected: cfg.Map.SelectedColor,
		},
	})

	dir, err := directory.LoadFile(cfg.Directory.Path)
	if err != nil {
		a.Selection.DirectoryFailed(err)
	} else {
		a.Directory = dir
		a.Selection.DirectoryLoaded(dir)
	}

	return a, nil
}

// Router returns the local view API.
func (a *App) Router() *gin.Engine {
	return api.NewRouter(api.Deps{
		Session:    a.Session,
		Pipeline:   a.Pipeline,
		Selection:  a.Selection,
		Directory:  a.Directory,
		CloudPrint: a.Gateway,
		Store:      a.Store,
		Hub:        a.Hub,
		Webpush:    a.Webpush,
	}, &a.Config.Server)
}

// Start launches the background loops. They stop when ctx is done.
func (a *App) Start(ctx context.Context) {
	if a.Workers != nil {
		a.Workers.Start(ctx)
	}
	go a.Session.Run(ctx)
}

// Close ends the server session of a signed-in user and closes the history
// database.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Session.Authenticated() {
		errs = append(errs, a.Session.SignOut(ctx))
	}
	if a.Store != nil && a.Store.DB() != nil {
		if sqlDB, err := a.Store.DB().DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
