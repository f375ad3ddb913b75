package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/joacominatel/studiodb/internal/config"
	"github.com/joacominatel/studiodb/internal/database"
	"github.com/joacominatel/studiodb/internal/history"
	"github.com/joacominatel/studiodb/internal/watch"
)

// ChangeEvent notifies subscribers that the open database file changed.
type ChangeEvent = watch.Event

// Options tune the service.
type Options struct {
	// ReadOnly opens every database with writes disabled.
	ReadOnly bool
	// QueryTimeout bounds page reads and ad-hoc statements. Zero means no limit.
	QueryTimeout time.Duration
	// PageSize is used when a page request leaves it unset.
	PageSize int
}

const subscriberBuffer = 16

// ownWriteQuiet is how long after one of the session's own writes file
// events are attributed to that write rather than to another process.
const ownWriteQuiet = 500 * time.Millisecond

// Service coordinates application-level operations between the presentation
// layer and the database.
type Service struct {
	conns   *database.Manager
	schema  *database.Inspector
	exec    *database.Executor
	mutate  *database.Mutator
	watcher *watch.Watcher
	history *history.Store
	log     logrus.FieldLogger
	opts    Options

	subMu   sync.Mutex
	subs    map[int]chan ChangeEvent
	nextSub int

	writing   atomic.Int32
	lastWrite atomic.Int64 // unix nanos
}

// NewService creates a new application service.
func NewService(opener database.Opener, hist *history.Store, log logrus.FieldLogger, opts Options) *Service {
	if opts.PageSize <= 0 {
		opts.PageSize = database.DefaultPageSize
	}
	conns := database.NewManager(opener, log)
	return &Service{
		conns:   conns,
		schema:  database.NewInspector(conns),
		exec:    database.NewExecutor(conns, hist, log),
		mutate:  database.NewMutator(conns, log),
		watcher: watch.New(log),
		history: hist,
		log:     log,
		opts:    opts,
		subs:    make(map[int]chan ChangeEvent),
	}
}

// OpenInstallation opens the database of the installation rooted at root,
// records the installation, and returns the resolved database path.
func (s *Service) OpenInstallation(ctx context.Context, root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", &ErrConnection{Path: root, Cause: err}
	}
	inst := config.NewInstallation(abs)

	conn, err := s.open(ctx, inst.DBPath)
	if err != nil {
		return "", err
	}

	inst.DBPath = conn.Path
	if err := s.history.RecordInstallation(inst); err != nil {
		s.log.WithError(err).Warn("could not save recent installation")
	}
	return conn.Path, nil
}

// OpenRecent reopens a database by its stored path.
func (s *Service) OpenRecent(ctx context.Context, dbPath string) (bool, error) {
	conn, err := s.open(ctx, dbPath)
	if err != nil {
		return false, err
	}
	if inst, ok := s.history.InstallationByPath(conn.Path); ok {
		if err := s.history.RecordInstallation(inst); err != nil {
			s.log.WithError(err).Warn("could not save recent installation")
		}
	}
	return true, nil
}

func (s *Service) open(ctx context.Context, path string) (*database.Conn, error) {
	s.watcher.Stop()

	conn, err := s.conns.Open(ctx, path, s.opts.ReadOnly)
	if err != nil {
		return nil, &ErrConnection{Path: path, Cause: err}
	}

	if err := s.watcher.Watch(conn.ID, conn.Path, s.dispatch); err != nil {
		s.log.WithError(err).Warn("change notifications unavailable")
	}
	return conn, nil
}

// Close releases the current connection and its watch.
func (s *Service) Close() error {
	s.watcher.Stop()
	return s.conns.Close()
}

// Connected returns the open database path, if any.
func (s *Service) Connected() (string, bool) {
	conn, err := s.conns.Current()
	if err != nil {
		return "", false
	}
	return conn.Path, true
}

// PageSize is the page size used when a request leaves it unset.
func (s *Service) PageSize() int {
	return s.opts.PageSize
}

// RecentInstallations returns the recent installation log, newest first.
func (s *Service) RecentInstallations() []config.Installation {
	return s.history.Installations()
}

// RemoveRecentInstallation forgets the installation rooted at root.
func (s *Service) RemoveRecentInstallation(root string) ([]config.Installation, error) {
	if err := s.history.RemoveInstallation(root); err != nil {
		return s.history.Installations(), &ErrConfig{Op: "forget installation", Cause: err}
	}
	return s.history.Installations(), nil
}

// ListTables returns the table names of the open database.
func (s *Service) ListTables(ctx context.Context) ([]string, error) {
	return s.schema.ListTables(ctx)
}

// DescribeTable returns the columns of table.
func (s *Service) DescribeTable(ctx context.Context, table string) (database.TableSchema, error) {
	return s.schema.DescribeTable(ctx, table)
}

// FetchPage reads one page of a table.
func (s *Service) FetchPage(ctx context.Context, req database.PageRequest) (*database.QueryResult, error) {
	if req.PageSize <= 0 {
		req.PageSize = s.opts.PageSize
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.exec.FetchPage(ctx, req)
}

// Execute runs an ad-hoc SQL statement.
func (s *Service) Execute(ctx context.Context, query string) (*database.QueryResult, error) {
	if database.Classify(query) == database.Write {
		defer s.beginWrite()()
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.exec.Execute(ctx, query)
	if err != nil {
		return nil, &ErrQuery{Query: query, Cause: err}
	}
	return result, nil
}

// UpdateRecord writes rec into the row identified by its key column.
func (s *Service) UpdateRecord(ctx context.Context, table string, rec database.Record, key string) (int64, error) {
	defer s.beginWrite()()
	res, err := s.mutate.Update(ctx, table, rec, key)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}

// InsertRecord adds rec as a new row of table.
func (s *Service) InsertRecord(ctx context.Context, table string, rec database.Record) (database.MutationResult, error) {
	defer s.beginWrite()()
	return s.mutate.Insert(ctx, table, rec)
}

// QueryHistory returns this session's executed statements, newest first.
func (s *Service) QueryHistory() []history.Entry {
	return s.history.Queries()
}

// DatabaseInfo describes the open database file.
func (s *Service) DatabaseInfo(ctx context.Context) (*database.DatabaseInfo, error) {
	conn, err := s.conns.Current()
	if err != nil {
		return nil, err
	}

	st, err := os.Stat(conn.Path)
	if err != nil {
		return nil, fmt.Errorf("stat database: %w", err)
	}
	version, err := s.schema.EngineVersion(ctx)
	if err != nil {
		return nil, err
	}
	count, err := s.schema.CountTables(ctx)
	if err != nil {
		return nil, err
	}

	return &database.DatabaseInfo{
		Path:          conn.Path,
		Size:          st.Size(),
		ModTime:       st.ModTime(),
		EngineVersion: version,
		TableCount:    count,
		ReadOnly:      conn.ReadOnly,
	}, nil
}

// Subscribe registers for change notifications. The returned function
// unsubscribes and closes the channel. Events are dropped for subscribers
// that fall behind.
func (s *Service) Subscribe() (<-chan ChangeEvent, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan ChangeEvent, subscriberBuffer)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

// beginWrite marks one of the session's own writes as in progress. Calling
// the returned function marks it finished.
func (s *Service) beginWrite() func() {
	s.writing.Add(1)
	return func() {
		s.lastWrite.Store(time.Now().UnixNano())
		s.writing.Add(-1)
	}
}

// ownWrite reports whether ev was caused by this session.
func (s *Service) ownWrite(ev ChangeEvent) bool {
	if s.writing.Load() > 0 {
		return true
	}
	last := s.lastWrite.Load()
	return last != 0 && ev.At.Sub(time.Unix(0, last)) < ownWriteQuiet
}

// dispatch forwards an event when it still refers to the open connection and
// was not caused by this session.
func (s *Service) dispatch(ev ChangeEvent) {
	conn, err := s.conns.Current()
	if err != nil || conn.ID != ev.ConnectionID || conn.Path != ev.Path {
		s.log.WithField("path", ev.Path).Debug("dropping change event for stale connection")
		return
	}
	if s.ownWrite(ev) {
		s.log.WithField("path", ev.Path).Debug("dropping change event for own write")
		return
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.QueryTimeout > 0 {
		return context.WithTimeout(ctx, s.opts.QueryTimeout)
	}
	return ctx, func() {}
}
