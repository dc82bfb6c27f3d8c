package snapshot

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/marketgap-io/marketgap/internal/application/analysis"
	"github.com/marketgap-io/marketgap/internal/infrastructure/monitoring/logging"
	apperrors "github.com/marketgap-io/marketgap/pkg/errors"
)

// Publisher is notified after every successful rebuild.  Implementations
// must not block rebuilds on delivery.
type Publisher interface {
	SnapshotRebuilt(ctx context.Context, buildID string, builtAt time.Time, zipsAnalyzed, records int) error
}

// Metrics receives snapshot gauges after every successful rebuild.
type Metrics interface {
	SnapshotRebuilt(zipsAnalyzed int, builtAt time.Time)
}

// watchDebounce coalesces the write bursts editors and atomic-rename copies
// produce into one rebuild.
const watchDebounce = 500 * time.Millisecond

// Store owns the current snapshot.  Readers get it lock-free from an atomic
// pointer; rebuilds are serialized and swap the pointer only on success, so
// a broken dataset never takes down a serving process.
type Store struct {
	source    Source
	builder   *analysis.Builder
	publisher Publisher
	metrics   Metrics
	log       logging.Logger

	cur       atomic.Pointer[analysis.Snapshot]
	rebuildMu sync.Mutex
}

// NewStore wires a Store; publisher and metrics may be nil.
func NewStore(source Source, builder *analysis.Builder, publisher Publisher, metrics Metrics, log logging.Logger) *Store {
	return &Store{
		source:    source,
		builder:   builder,
		publisher: publisher,
		metrics:   metrics,
		log:       log.Named("snapshot"),
	}
}

// Current returns the latest snapshot, nil before the first successful
// Rebuild.
func (s *Store) Current() *analysis.Snapshot {
	return s.cur.Load()
}

// Rebuild loads the source, builds a fresh snapshot, and swaps it in
// atomically.  On failure the previous snapshot stays current.
func (s *Store) Rebuild(ctx context.Context) (*analysis.Snapshot, error) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	records, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := s.builder.Build(records)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSnapshotLoad, "build snapshot")
	}
	s.cur.Store(snap)

	if s.metrics != nil {
		s.metrics.SnapshotRebuilt(snap.TotalAnalyzed(), snap.BuiltAt)
	}
	if s.publisher != nil {
		if err := s.publisher.SnapshotRebuilt(ctx, snap.BuildID.String(), snap.BuiltAt,
			snap.TotalAnalyzed(), snap.RecordCount); err != nil {
			s.log.Warn("snapshot rebuild event not published", logging.Err(err))
		}
	}
	return snap, nil
}

// Watch rebuilds the snapshot whenever the dataset file changes, until ctx
// is done.  Failed rebuilds keep the previous snapshot and are logged.
func (s *Store) Watch(ctx context.Context, path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "create dataset watcher")
	}
	// Watch the directory: editors and rename-into-place writers replace the
	// file, which drops a watch set on the file itself.
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "watch dataset directory")
	}

	go func() {
		defer w.Close()
		var timer *time.Timer
		fire := make(chan struct{}, 1)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(path) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(watchDebounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.log.Warn("dataset watcher error", logging.Err(err))
			case <-fire:
				s.log.Info("dataset changed, rebuilding snapshot", logging.String("path", path))
				if _, err := s.Rebuild(ctx); err != nil {
					s.log.Error("snapshot rebuild failed, keeping previous snapshot", logging.Err(err))
				}
			}
		}
	}()
	return nil
}
