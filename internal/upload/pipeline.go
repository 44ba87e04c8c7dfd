// Package upload drives a document from file selection through upload to a
// submitted print job.
package upload

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"webprint-client/internal/failure"
	"webprint-client/internal/gateway"
	"webprint-client/internal/parse"
)

// DefaultMaxBytes is the largest document accepted for upload.
const DefaultMaxBytes int64 = 100 << 20

// DefaultExtensions are the document types the print server converts.
var DefaultExtensions = []string{"txt", "pdf", "docx", "doc", "odt", "xps", "png", "jpg", "jpeg", "gif"}

// Phase is a step of the upload-to-print lifecycle.
type Phase string

const (
	PhaseEmpty      Phase = "empty"
	PhaseSelected   Phase = "selected"
	PhaseValidating Phase = "validating"
	PhaseUploading  Phase = "uploading"
	PhaseReady      Phase = "ready"
	PhaseSubmitting Phase = "submitting"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
)

// Gateway is the part of the print API the pipeline needs.
type Gateway interface {
	Upload(ctx context.Context, fileName string, size int64, content io.Reader, progress gateway.ProgressFunc) (string, error)
	Print(ctx context.Context, p gateway.PrintRequest) error
}

// Refresher reloads budget and queue after a job is accepted.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Recorder is told about every accepted submission.
type Recorder interface {
	RecordSubmission(ctx context.Context, s Submission)
}

// File is a document picked by the user. Content is closed after the upload
// when it implements io.Closer.
type File struct {
	Name    string
	Size    int64
	Content io.Reader
}

// Submission describes a print job the server accepted.
type Submission struct {
	ID          string
	FileName    string
	DocumentID  string
	Options     Options
	SubmittedAt time.Time
}

// Config configures a Pipeline. Zero limits fall back to the defaults.
//
// OnChange and ClearInput run with the pipeline locked and must not call
// back into it.
type Config struct {
	MaxBytes          int64
	AllowedExtensions []string
	Refresher         Refresher
	Recorder          Recorder
	OnChange          func(Snapshot)
	OnFailure         func(error)
	ClearInput        func()
}

// Snapshot is a copy of the pipeline state with its derived values.
type Snapshot struct {
	Phase              Phase   `json:"phase"`
	FileName           string  `json:"fileName"`
	DocumentID         string  `json:"documentId"`
	Progress           float64 `json:"progress"`
	Options            Options `json:"options"`
	CollateEligible    bool    `json:"collateEligible"`
	ReadyToSubmit      bool    `json:"readyToSubmit"`
	StapleEnabled      bool    `json:"stapleEnabled"`
	DoubleSidedEnabled bool    `json:"doubleSidedEnabled"`
}

// Pipeline owns the single live upload job.
type Pipeline struct {
	gw      Gateway
	cfg     Config
	allowed []string

	wg sync.WaitGroup

	mu         sync.Mutex
	phase      Phase
	token      string // identifies the live job; late results for other tokens are dropped
	fileName   string
	documentID string
	progress   float64
	options    Options
}

// New creates an empty pipeline.
func New(gw Gateway, cfg Config) *Pipeline {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if len(cfg.AllowedExtensions) == 0 {
		cfg.AllowedExtensions = DefaultExtensions
	}
	allowed := make([]string, 0, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		allowed = append(allowed, strings.ToLower(strings.TrimPrefix(ext, ".")))
	}
	return &Pipeline{
		gw:      gw,
		cfg:     cfg,
		allowed: allowed,
		phase:   PhaseEmpty,
		options: DefaultOptions(),
	}
}

// AcceptAttribute lists the allowed extensions for a file input, e.g. ".txt, .pdf".
func (p *Pipeline) AcceptAttribute() string {
	exts := make([]string, len(p.allowed))
	for i, ext := range p.allowed {
		exts[i] = "." + ext
	}
	return strings.Join(exts, ", ")
}

// Validate checks a file against the size limit and the extension list
// without touching pipeline state.
func (p *Pipeline) Validate(f File) error {
	if f.Size > p.cfg.MaxBytes {
		return fmt.Errorf("%w: %s is %d bytes", failure.ErrFileTooLarge, f.Name, f.Size)
	}
	ext := parse.FileExtension(f.Name)
	if ext == "" || !slices.Contains(p.allowed, ext) {
		return fmt.Errorf("%w: %q", failure.ErrUnsupportedFileType, f.Name)
	}
	return nil
}

// SelectFile validates f and starts uploading it. A file that fails
// validation leaves the pipeline untouched. The upload keeps running after
// ctx is cancelled; use Cancel to drop interest in it.
func (p *Pipeline) SelectFile(ctx context.Context, f File) error {
	if err := p.Validate(f); err != nil {
		return err
	}

	p.mu.Lock()
	if p.phase != PhaseEmpty && p.phase != PhaseReady {
		phase := p.phase
		p.mu.Unlock()
		return fmt.Errorf("select file while %s: %w", phase, failure.ErrInvalidPhase)
	}

	token := uuid.NewString()
	p.token = token
	p.fileName = f.Name
	p.documentID = ""
	p.progress = 0
	p.setPhaseLocked(PhaseSelected)
	p.setPhaseLocked(PhaseValidating)
	p.setPhaseLocked(PhaseUploading)
	p.wg.Add(1)
	p.mu.Unlock()

	slog.Info("upload started", "file", f.Name, "size", f.Size, "job", token)
	go p.upload(context.WithoutCancel(ctx), token, f)
	return nil
}

func (p *Pipeline) upload(ctx context.Context, token string, f File) {
	defer p.wg.Done()
	if c, ok := f.Content.(io.Closer); ok {
		defer c.Close()
	}

	id, err := p.gw.Upload(ctx, f.Name, f.Size, f.Content, func(loaded, total int64) {
		p.reportProgress(token, loaded, total)
	})

	p.mu.Lock()
	if p.token != token || p.phase != PhaseUploading {
		p.mu.Unlock()
		slog.Debug("discarding result of cancelled upload", "job", token, "error", err)
		return
	}

	if err != nil {
		p.resetLocked()
		p.mu.Unlock()
		err = fmt.Errorf("upload %s: %w", f.Name, gateway.Classify(err, failure.ErrTransient))
		slog.Warn("upload failed", "job", token, "error", err)
		p.fail(err)
		return
	}

	p.documentID = id
	p.progress = 1
	p.setPhaseLocked(PhaseReady)
	p.mu.Unlock()
	slog.Info("upload finished", "file", f.Name, "job", token, "file_id", id)
}

// reportProgress applies one byte-progress event of the job identified by token.
func (p *Pipeline) reportProgress(token string, loaded, total int64) {
	if total <= 0 {
		return
	}
	v := math.Round((float64(loaded)/float64(total)+0.00001)*100) / 100
	v = min(max(v, 0), 1)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token != token || p.phase != PhaseUploading || v <= p.progress {
		return
	}
	p.progress = v
	p.publishLocked()
}

// Submit sends the uploaded document to the printer with the current options
// and waits for the answer. Copies go back to 1 whatever the outcome.
func (p *Pipeline) Submit(ctx context.Context) error {
	p.mu.Lock()
	if p.phase != PhaseReady {
		phase := p.phase
		p.mu.Unlock()
		return fmt.Errorf("submit while %s: %w", phase, failure.ErrInvalidPhase)
	}
	token := p.token
	fileName := p.fileName
	opts := p.options
	req := opts.printRequest(p.documentID)
	p.setPhaseLocked(PhaseSubmitting)
	p.mu.Unlock()

	err := p.gw.Print(ctx, req)

	p.mu.Lock()
	if p.token != token || p.phase != PhaseSubmitting {
		p.mu.Unlock()
		slog.Debug("discarding result of cancelled submission", "job", token, "error", err)
		return fmt.Errorf("submit %s: %w", fileName, failure.ErrJobDiscarded)
	}

	if err != nil {
		p.setPhaseLocked(PhaseFailed)
		p.options.Copies = 1
		p.resetLocked()
		p.mu.Unlock()
		err = fmt.Errorf("print %s: %w", fileName, gateway.Classify(err, failure.ErrTransient))
		slog.Warn("print rejected", "job", token, "error", err)
		return err
	}

	p.setPhaseLocked(PhaseSucceeded)
	p.options.Copies = 1
	p.resetLocked()
	p.mu.Unlock()

	slog.Info("print job submitted", "file", fileName, "file_id", req.FileID, "copies", req.Copies, "color", req.Color)

	if p.cfg.Recorder != nil {
		p.cfg.Recorder.RecordSubmission(ctx, Submission{
			ID:          uuid.NewString(),
			FileName:    fileName,
			DocumentID:  req.FileID,
			Options:     opts,
			SubmittedAt: time.Now(),
		})
	}
	if p.cfg.Refresher != nil {
		if err := p.cfg.Refresher.Refresh(ctx); err != nil {
			slog.Warn("refresh after print failed", "error", err)
		}
	}
	return nil
}

// Cancel drops the live job, from any phase. Requests already sent are not
// aborted; their results are ignored when they arrive.
func (p *Pipeline) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token != "" {
		slog.Info("upload cancelled", "file", p.fileName, "job", p.token, "phase", p.phase)
	}
	p.resetLocked()
}

// SetOptions replaces the print options. Staple and double-sided disable each
// other, so asking for both fails and changes nothing.
func (p *Pipeline) SetOptions(o Options) error {
	if err := o.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.options == o {
		return nil
	}
	p.options = o
	p.publishLocked()
	return nil
}

// Snapshot returns a copy of the pipeline state.
func (p *Pipeline) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// CollateEligible reports whether collation matters for the current copies.
func (p *Pipeline) CollateEligible() bool {
	return p.Snapshot().CollateEligible
}

// ReadyToSubmit reports whether the uploaded document can be printed.
func (p *Pipeline) ReadyToSubmit() bool {
	return p.Snapshot().ReadyToSubmit
}

// Wait blocks until in-flight uploads have returned.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

func (p *Pipeline) snapshotLocked() Snapshot {
	return Snapshot{
		Phase:              p.phase,
		FileName:           p.fileName,
		DocumentID:         p.documentID,
		Progress:           p.progress,
		Options:            p.options,
		CollateEligible:    p.options.CollateEligible(),
		ReadyToSubmit:      p.progress == 1 && p.phase == PhaseReady,
		StapleEnabled:      !p.options.DoubleSided,
		DoubleSidedEnabled: !p.options.Staple,
	}
}

func (p *Pipeline) setPhaseLocked(phase Phase) {
	p.phase = phase
	p.publishLocked()
}

func (p *Pipeline) resetLocked() {
	p.token = ""
	p.fileName = ""
	p.documentID = ""
	p.progress = 0
	p.setPhaseLocked(PhaseEmpty)
	if p.cfg.ClearInput != nil {
		p.cfg.ClearInput()
	}
}

func (p *Pipeline) publishLocked() {
	if p.cfg.OnChange != nil {
		p.cfg.OnChange(p.snapshotLocked())
	}
}

func (p *Pipeline) fail(err error) {
	if p.cfg.OnFailure != nil {
		p.cfg.OnFailure(err)
	}
}
