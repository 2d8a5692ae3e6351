// Package app wires one photobooth run: capture, layout, scripted edits and
// export.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"photobooth/internal/capture"
	"photobooth/internal/config"
	"photobooth/internal/export"
	"photobooth/internal/render"
	"photobooth/internal/script"
	"photobooth/internal/session"
)

// ErrCaptureStalled is returned when the sequence stops before every photo
// is taken, e.g. after a camera failure.
var ErrCaptureStalled = errors.New("capture stalled")

// OpenCamera resolves a camera setting: "dir:<path>" replays stills from a
// directory, anything else is a video device. The closer is nil when there
// is nothing to release.
func OpenCamera(setting string) (capture.Camera, io.Closer, error) {
	if dir, ok := strings.CutPrefix(setting, "dir:"); ok {
		cam, err := capture.NewDirCamera(dir)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("app: replaying %d stills from %s", cam.Len(), dir)
		return cam, nil, nil
	}
	cam, err := capture.OpenWebcam(setting)
	if err != nil {
		return nil, nil, err
	}
	return cam, cam, nil
}

// App holds the components of a run.
type App struct {
	Config    config.Config
	Session   *session.Session
	Renderer  *render.Renderer
	Sequencer *capture.Sequencer
	Exporter  *export.Flattener
}

// New builds the components for cfg around cam. A nil scheduler uses real
// timers.
func New(cfg config.Config, cam capture.Camera, sched capture.Scheduler) *App {
	renderer := render.New(render.WithLabel(cfg.Label))
	opts := append(cfg.SessionOptions(), session.WithFrameSizer(renderer.FrameSize))
	sess := session.New(opts...)

	a := &App{
		Config:    cfg,
		Session:   sess,
		Renderer:  renderer,
		Sequencer: capture.NewSequencer(sess, cam, sched, cfg.Timing()),
		Exporter: export.New(renderer, cfg.OutputDir,
			export.WithScale(cfg.ExportScale),
			export.WithPrefix(cfg.FilePrefix),
		),
	}

	sess.On(session.EventPhotoAdded, func(data interface{}) {
		log.Printf("app: photo %v of %d", data, sess.PhotoCount())
	})
	sess.On(session.EventLayoutSelected, func(data interface{}) {
		log.Printf("app: layout %v", data)
	})
	return a
}

// Capture takes every photo and waits for the sequence to finish.
func (a *App) Capture(ctx context.Context) error {
	if err := a.Session.SetPhotoCount(a.Config.PhotoCount); err != nil {
		return err
	}
	a.Sequencer.Start()
	st, err := a.Sequencer.Wait(ctx)
	if err != nil {
		a.Sequencer.Cancel()
		return fmt.Errorf("capture: %w", err)
	}
	if st.State != capture.StateDone {
		return fmt.Errorf("%w after %d of %d photos", ErrCaptureStalled, st.Taken, st.Total)
	}
	return nil
}

// ChooseLayout selects the configured layout, falling back to vertical when
// it is not offered for the photo count.
func (a *App) ChooseLayout() error {
	layout, err := session.ParseLayout(a.Config.Layout)
	if err != nil {
		return err
	}
	err = a.Session.SelectLayout(layout)
	if errors.Is(err, session.ErrLayoutUnavailable) {
		log.Printf("app: %s layout needs %d photos, using vertical", layout, session.MaxPhotoCount)
		err = a.Session.SelectLayout(session.LayoutVertical)
	}
	return err
}

// Run captures, lays out, applies sc (which may be nil) and exports. It
// returns the exported file path.
func (a *App) Run(ctx context.Context, sc *script.Script) (string, error) {
	if err := a.Capture(ctx); err != nil {
		return "", err
	}
	if err := a.ChooseLayout(); err != nil {
		return "", err
	}
	if sc != nil {
		if _, err := sc.Apply(a.Session); err != nil {
			return "", err
		}
	}
	return a.Exporter.Export(ctx, a.Session.Snapshot())
}
