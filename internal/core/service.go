package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noor-ul-masajid/console/internal/history"
	"github.com/noor-ul-masajid/console/internal/sheet"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("import session not found")

// DefaultSessionTTL is how long an untouched session is kept.
const DefaultSessionTTL = 30 * time.Minute

// ServiceConfig tunes the import service. Zero values select defaults.
type ServiceConfig struct {
	MaxFileSize   int64         // Largest accepted upload in bytes
	MaxConcurrent int           // Parallel parses
	MaxWait       time.Duration // Wait for a parse slot before ErrTooManyImports
	SessionTTL    time.Duration // Idle time before a session is reaped
	PreviewRows   int           // Rows returned by Preview
}

// Service owns every open import session.
//
// Each session is guarded by its own mutex so a slow parse in one session
// never blocks another.
type Service struct {
	cfg     ServiceConfig
	parser  sheet.Parser
	limiter *ImportLimiter
	history history.Store
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	id        string
	schemaKey string

	mu       sync.Mutex
	session  *Session
	lastUsed time.Time
	closed   bool
}

// NewService creates a Service. A nil store keeps history in memory.
func NewService(cfg ServiceConfig, store history.Store) *Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.PreviewRows <= 0 {
		cfg.PreviewRows = DefaultPreviewRows
	}
	if store == nil {
		store = history.NewMemoryStore(history.DefaultMemoryEntries)
	}

	return &Service{
		cfg:      cfg,
		parser:   sheet.Parser{MaxFileSize: cfg.MaxFileSize},
		limiter:  NewImportLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		history:  store,
		now:      time.Now,
		sessions: make(map[string]*sessionEntry),
	}
}

// Limiter returns the parse limiter for status reporting and shutdown.
func (s *Service) Limiter() *ImportLimiter {
	return s.limiter
}

// ListSchemas returns information about all registered schemas.
func (s *Service) ListSchemas() []SchemaInfo {
	defs := All()
	infos := make([]SchemaInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// WriteTemplate writes the template workbook of a schema and returns its
// download file name.
func (s *Service) WriteTemplate(schemaKey string, w io.Writer) (string, error) {
	def, err := Lookup(schemaKey)
	if err != nil {
		return "", err
	}
	if err := WriteTemplate(w, def.Info); err != nil {
		return "", fmt.Errorf("write template: %w", err)
	}
	return sheet.TemplateFileName(def.Info.Title), nil
}

// OpenSession starts an idle session for schemaKey. Params are handed to the
// schema's Bind function.
func (s *Service) OpenSession(ctx context.Context, schemaKey string, params map[string]string) (SessionInfo, error) {
	def, err := Lookup(schemaKey)
	if err != nil {
		return SessionInfo{}, err
	}

	accept, err := def.Bind(params)
	if err != nil {
		return SessionInfo{}, fmt.Errorf("bind %s: %w", schemaKey, err)
	}

	entry := &sessionEntry{
		id:        uuid.New().String(),
		schemaKey: schemaKey,
		session:   NewSession(def.Info, accept, WithParser(s.parser), WithPreviewRows(s.cfg.PreviewRows)),
		lastUsed:  s.now(),
	}

	s.mu.Lock()
	s.sessions[entry.id] = entry
	s.mu.Unlock()

	slog.InfoContext(ctx, "import session opened", "session_id", entry.id, "schema", schemaKey)
	return entry.snapshot(), nil
}

// SessionInfo returns a snapshot of a session.
func (s *Service) SessionInfo(id string) (SessionInfo, error) {
	var info SessionInfo
	err := s.withSession(id, func(e *sessionEntry) error {
		info = e.snapshot()
		return nil
	})
	return info, err
}

// SelectFile parses a file into the session. Only a bounded number of parses
// run at once across all sessions.
func (s *Service) SelectFile(ctx context.Context, id, name string, r io.Reader) (SessionInfo, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return SessionInfo{}, err
	}
	defer s.limiter.Release()

	var info SessionInfo
	err := s.withSession(id, func(e *sessionEntry) error {
		start := time.Now()
		if err := e.session.SelectFile(ctx, name, r); err != nil {
			slog.WarnContext(ctx, "import file rejected",
				"session_id", id,
				"file", name,
				"error", err,
			)
			return err
		}

		info = e.snapshot()
		slog.InfoContext(ctx, "import file parsed",
			"session_id", id,
			"file", name,
			"rows", info.RowCount,
			"headers", len(info.Headers),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	})
	return info, err
}

// SetMapping points one template field at a source header.
func (s *Service) SetMapping(id string, index int, header string) (SessionInfo, error) {
	var info SessionInfo
	err := s.withSession(id, func(e *sessionEntry) error {
		if err := e.session.SetMapping(index, header); err != nil {
			return err
		}
		info = e.snapshot()
		return nil
	})
	return info, err
}

// Preview returns the review data of a session.
func (s *Service) Preview(id string) (PreviewData, error) {
	var data PreviewData
	err := s.withSession(id, func(e *sessionEntry) error {
		var err error
		data, err = e.session.Preview()
		return err
	})
	return data, err
}

// ProcessImport runs an import attempt and records it in history.
// A result with errors is returned with a nil error.
func (s *Service) ProcessImport(ctx context.Context, id string) (*ImportResult, error) {
	var result *ImportResult
	err := s.withSession(id, func(e *sessionEntry) error {
		var err error
		result, err = e.session.ProcessImport(ctx)
		if err != nil {
			slog.WarnContext(ctx, "import not processed", "session_id", id, "error", err)
			return err
		}

		slog.InfoContext(ctx, "import processed",
			"session_id", id,
			"schema", e.schemaKey,
			"accepted", result.OK(),
			"total_rows", result.TotalRows,
			"added", result.NewRecordsAdded,
			"updated", result.RecordsUpdated,
			"errors", len(result.Errors),
		)
		s.recordHistory(ctx, e, result)
		return nil
	})
	return result, err
}

// CloseSession resets and forgets a session.
func (s *Service) CloseSession(ctx context.Context, id string) error {
	s.mu.Lock()
	entry, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	entry.mu.Lock()
	entry.session.Reset()
	entry.closed = true
	entry.mu.Unlock()

	slog.InfoContext(ctx, "import session closed", "session_id", id)
	return nil
}

// History returns recent attempts for a schema, newest first.
func (s *Service) History(ctx context.Context, schemaKey string, limit int) ([]history.Entry, error) {
	if _, err := Lookup(schemaKey); err != nil {
		return nil, err
	}
	return s.history.List(ctx, schemaKey, limit)
}

// SessionCount returns the number of open sessions.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// withSession runs fn with the session locked and marks it used.
func (s *Service) withSession(id string, fn func(e *sessionEntry) error) error {
	s.mu.RLock()
	entry, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	// Closed or reaped while we waited for the lock
	if entry.closed {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	entry.lastUsed = s.now()
	return fn(entry)
}

func (s *Service) recordHistory(ctx context.Context, e *sessionEntry, result *ImportResult) {
	errs := make([]history.RowError, len(result.Errors))
	for i, re := range result.Errors {
		errs[i] = history.RowError{Row: re.Row, Message: re.Message}
	}

	err := s.history.Record(ctx, history.Entry{
		SchemaKey:       e.schemaKey,
		SessionID:       e.id,
		FileName:        e.session.FileName(),
		TotalRows:       result.TotalRows,
		NewRecordsAdded: result.NewRecordsAdded,
		RecordsUpdated:  result.RecordsUpdated,
		Accepted:        result.OK(),
		Errors:          errs,
	})
	if err != nil {
		// History is best-effort; the import itself already happened
		slog.ErrorContext(ctx, "record import history failed", "session_id", e.id, "error", err)
	}
}

// snapshot must be called with e.mu held.
func (e *sessionEntry) snapshot() SessionInfo {
	sess := e.session
	info := SessionInfo{
		ID:         e.id,
		SchemaKey:  e.schemaKey,
		Title:      sess.Schema().Title,
		State:      sess.State(),
		FileName:   sess.FileName(),
		Headers:    sess.Headers(),
		Mappings:   sess.Mappings(),
		CanProcess: sess.CanProcess(),
		Missing:    MissingRequired(sess.mappings),
		Result:     sess.Result(),
		LastUsed:   e.lastUsed,
	}
	if sess.parsed != nil {
		info.RowCount = len(sess.parsed.Rows)
	}
	if info.Headers == nil {
		info.Headers = []string{}
	}
	return info
}
