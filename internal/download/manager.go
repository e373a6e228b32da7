package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/geodata-downloader/internal/config"
	"github.com/handiism/geodata-downloader/internal/dataset"
	"github.com/handiism/geodata-downloader/internal/http"
	ioutils "github.com/handiism/geodata-downloader/internal/io"
	"github.com/handiism/geodata-downloader/internal/model"
)

// ErrLengthMismatch is returned by FetchAll when urls and localNames differ
// in length.
var ErrLengthMismatch = errors.New("urls and local names differ in length")

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Getter retrieves remote resources. *http.Client implements it.
type Getter interface {
	Download(ctx context.Context, url string, w io.Writer, onProgress func(written, total int64)) (int64, error)
	GetFileSize(ctx context.Context, url string) (int64, error)
}

// Observer is notified of every finished item.
type Observer interface {
	ObserveResult(model.Result)
}

// Manager fetches batches of dataset files into one destination directory.
type Manager struct {
	settings *config.Settings
	destDir  string
	getter   Getter
	fs       afero.Fs
	observer Observer

	receivedBytes   int64
	totalFiles      int32
	downloadedFiles int32
	failedFiles     int32

	onProgress func(ProgressEvent)
}

// Option customises a Manager.
type Option func(*Manager)

// WithGetter replaces the HTTP client.
func WithGetter(g Getter) Option {
	return func(m *Manager) { m.getter = g }
}

// WithFs replaces the file system artifacts are written to.
func WithFs(fs afero.Fs) Option {
	return func(m *Manager) { m.fs = fs }
}

// WithObserver registers an Observer, e.g. a metrics recorder.
func WithObserver(o Observer) Option {
	return func(m *Manager) { m.observer = o }
}

// WithDestDir overrides the destination directory computed from settings.
func WithDestDir(dir string) Option {
	return func(m *Manager) { m.destDir = dir }
}

// NewManager creates a new download Manager.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent), opts ...Option) *Manager {
	m := &Manager{
		settings: settings,
		destDir:  settings.DestDir(),
		getter: http.NewClient(
			http.WithTimeout(settings.Timeout()),
			http.WithUserAgent(settings.UserAgent),
		),
		fs:         afero.NewOsFs(),
		onProgress: onProgress,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DestDir returns the directory artifacts are written to.
func (m *Manager) DestDir() string {
	return m.destDir
}

// FetchTemplate builds the URLs and local names for tokens and fetches them.
func (m *Manager) FetchTemplate(ctx context.Context, t model.Template, tokens []string) ([]model.Result, error) {
	return m.FetchAll(ctx, dataset.BuildPaths(t, tokens), dataset.LocalNames(t, tokens))
}

// FetchAll retrieves urls[i] into the destination directory as localNames[i],
// overwriting existing files, and returns one Result per index in input order.
//
// A failed item never stops the batch. The returned error is reserved for
// problems with the batch itself: mismatched input lengths or a destination
// directory that cannot be created. In both cases nothing is fetched.
func (m *Manager) FetchAll(ctx context.Context, urls, localNames []string) ([]model.Result, error) {
	if len(urls) != len(localNames) {
		return nil, fmt.Errorf("%w: %d urls, %d local names", ErrLengthMismatch, len(urls), len(localNames))
	}

	if err := ioutils.EnsureDir(m.fs, m.destDir); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating directory %s: %v", m.destDir, err), Level: LevelError})
		return nil, fmt.Errorf("creating destination %s: %w", m.destDir, err)
	}

	items := dataset.Items(urls, localNames, m.destDir)
	results := make([]model.Result, len(items))
	for i, item := range items {
		results[i] = model.NewResult(item)
	}

	atomic.StoreInt64(&m.receivedBytes, 0)
	atomic.StoreInt32(&m.downloadedFiles, 0)
	atomic.StoreInt32(&m.failedFiles, 0)
	atomic.StoreInt32(&m.totalFiles, int32(len(items)))

	m.progress(ProgressEvent{Message: fmt.Sprintf("Fetching %d file(s) into %s", len(items), m.destDir), Level: LevelInfo})

	// Not errgroup.WithContext: one failed item must not cancel the others.
	var g errgroup.Group
	g.SetLimit(m.concurrency())

	for i, item := range items {
		g.Go(func() error {
			m.fetchItem(ctx, item, &results[i])
			return nil
		})
	}
	g.Wait()

	failed := atomic.LoadInt32(&m.failedFiles)
	if failed == 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Fetched all %d file(s)", len(items)), Level: LevelSuccess})
	} else {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Finished, %d of %d file(s) failed", failed, len(items)), Level: LevelWarning})
	}

	return results, nil
}

// List returns the contents of the destination directory.
func (m *Manager) List() ([]ioutils.Entry, error) {
	return ioutils.ListDir(m.fs, m.destDir)
}

// GetProgress returns current download progress.
func (m *Manager) GetProgress() (received int64, filesDone, filesFailed, filesTotal int32) {
	return atomic.LoadInt64(&m.receivedBytes),
		atomic.LoadInt32(&m.downloadedFiles),
		atomic.LoadInt32(&m.failedFiles),
		atomic.LoadInt32(&m.totalFiles)
}

func (m *Manager) fetchItem(ctx context.Context, item model.Item, r *model.Result) {
	start := time.Now()
	defer func() {
		r.Duration = time.Since(start)
		if r.Status == model.StatusFailed {
			atomic.AddInt32(&m.failedFiles, 1)
		} else {
			atomic.AddInt32(&m.downloadedFiles, 1)
		}
		if m.observer != nil {
			m.observer.ObserveResult(*r)
		}
	}()

	if err := ctx.Err(); err != nil {
		r.Failed(model.KindCancelled, err)
		return
	}

	if err := ioutils.CheckFileName(item.LocalName); err != nil {
		r.Failed(model.KindInvalidInput, err)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Refusing %s: %v", item.URL, err), Level: LevelError})
		return
	}

	if m.settings.SkipExisting {
		if size, ok := m.upToDate(ctx, item); ok {
			r.Skipped(size)
			m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping existing: %s", item.LocalName), Level: LevelVerbose})
			return
		}
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Fetching %s", item.URL), Level: LevelVerbose})

	var (
		n   int64
		err error
	)
	maxRetries := max(m.settings.DownloadMaxRetries, 0)
	for tries := 0; tries <= maxRetries; tries++ {
		r.Attempts++
		n, err = m.download(ctx, item)
		if err == nil {
			break
		}
		if tries == maxRetries || Classify(ctx, err) != model.KindNetworkFailure {
			break
		}
		m.progress(ProgressEvent{Message: fmt.Sprintf("Retry %d/%d for %s: %v", tries+1, maxRetries, item.LocalName, err), Level: LevelWarning})
		m.waitForRetry(ctx, tries)
	}

	if err != nil {
		kind := Classify(ctx, err)
		r.Failed(kind, err)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error fetching %s (%s): %v", item.LocalName, kind, err), Level: LevelError})
		return
	}

	r.Fetched(n)
	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded: %s", item.LocalName), Level: LevelVerbose})
}

// download performs one attempt. Bytes of a failed attempt are taken back
// out of the received counter.
func (m *Manager) download(ctx context.Context, item model.Item) (int64, error) {
	var (
		n       int64
		written int64
		fillErr error
	)

	err := ioutils.WriteFileAtomic(m.fs, item.Path, func(w io.Writer) error {
		n, fillErr = m.getter.Download(ctx, item.URL, w, func(soFar, _ int64) {
			atomic.AddInt64(&m.receivedBytes, soFar-written)
			written = soFar
		})
		return fillErr
	})

	if err != nil {
		atomic.AddInt64(&m.receivedBytes, -written)
		if fillErr == nil {
			// The temporary file could not be created, synced or renamed.
			return 0, &LocalWriteError{Path: item.Path, Err: err}
		}
		return 0, err
	}

	return n, nil
}

// upToDate reports whether the artifact already exists with the remote size,
// within AllowedFileSizeDifference.
func (m *Manager) upToDate(ctx context.Context, item model.Item) (int64, bool) {
	localSize, err := ioutils.FileSize(m.fs, item.Path)
	if err != nil || localSize < 0 {
		return 0, false
	}

	expectedSize, err := m.getter.GetFileSize(ctx, item.URL)
	if err != nil || expectedSize <= 0 {
		return 0, false
	}

	sizeDiff := float64(localSize-expectedSize) / float64(expectedSize)
	if math.Abs(sizeDiff) > m.settings.AllowedFileSizeDifference {
		return 0, false
	}
	return localSize, true
}

func (m *Manager) concurrency() int {
	return max(m.settings.MaxConcurrentDownloads, 1)
}

func (m *Manager) waitForRetry(ctx context.Context, tries int) {
	cooldown := m.settings.DownloadRetryCooldown * math.Pow(m.settings.DownloadRetryExponent, float64(tries))
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(cooldown * float64(time.Second))):
	}
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
