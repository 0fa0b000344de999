// Package workspace reads and writes files under the server root for the
// /files endpoints.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/google/renameio/v2"

	"github.com/pddkit/pddserve/internal/audit"
	"github.com/pddkit/pddserve/internal/clog"
	"github.com/pddkit/pddserve/internal/dispatch"
	"github.com/pddkit/pddserve/internal/metrics"
	"github.com/pddkit/pddserve/internal/pathutil"
)

// ErrNotUTF8 is returned for files that cannot be served as text.
var ErrNotUTF8 = errors.New("file is not valid UTF-8 text")

// FileContent is the result of a read. Error is null on success.
type FileContent struct {
	Content string  `json:"content"`
	Success bool    `json:"success"`
	Error   *string `json:"error"`
}

func fileFailure(msg string) FileContent {
	return FileContent{Error: &msg}
}

// Store gives confined access to the files under a root directory.
type Store struct {
	root  string
	audit *audit.Logger
}

// New creates a Store for root. auditLog may be nil.
func New(root string, auditLog *audit.Logger) *Store {
	return &Store{root: root, audit: auditLog}
}

// Root returns the directory the store is confined to.
func (s *Store) Root() string { return s.root }

// Write saves content at path relative to the root, creating parent
// directories. The file is replaced atomically.
func (s *Store) Write(path, content string) dispatch.Response {
	err := s.write(path, content)
	metrics.RecordFileOp("write", err == nil)
	if err != nil {
		clog.Error("error saving file %s: %v", path, err)
		s.logAudit(s.audit.LogFileWrite(path, err.Error()))
		return dispatch.Failure(err.Error())
	}
	clog.Info("file saved: %s", path)
	s.logAudit(s.audit.LogFileWrite(path, ""))
	return dispatch.Success("File saved successfully: " + path)
}

// Read returns the content of path relative to the root.
func (s *Store) Read(path string) FileContent {
	content, err := s.read(path)
	metrics.RecordFileOp("read", err == nil)
	if err != nil {
		clog.Debug("error reading file %s: %v", path, err)
		s.logAudit(s.audit.LogFileRead(path, err.Error()))
		return fileFailure(err.Error())
	}
	return FileContent{Content: content, Success: true}
}

func (s *Store) write(path, content string) error {
	target, err := pathutil.ResolveWithin(s.root, path)
	if err != nil {
		return filesystemError(err, "Failed to save file: %v", err)
	}
	if err := writeAtomic(target, []byte(content)); err != nil {
		return filesystemError(err, "Failed to save file: %v", err)
	}
	return nil
}

func (s *Store) read(path string) (string, error) {
	target, err := pathutil.ResolveWithin(s.root, path)
	if err != nil {
		return "", filesystemError(err, "Failed to read file: %v", err)
	}
	data, err := os.ReadFile(target)
	if errors.Is(err, fs.ErrNotExist) {
		return "", filesystemError(err, "File not found: %s", path)
	}
	if err != nil {
		return "", filesystemError(err, "Failed to read file: %v", err)
	}
	if !utf8.Valid(data) {
		return "", filesystemError(ErrNotUTF8, "Failed to read file: %v", ErrNotUTF8)
	}
	return string(data), nil
}

func filesystemError(cause error, format string, args ...any) *dispatch.Error {
	return &dispatch.Error{Kind: dispatch.KindFilesystemError, Message: fmt.Sprintf(format, args...), Err: cause}
}

// writeAtomic creates the parent directories of path and replaces the file
// atomically with renameio.
func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return renameio.WriteFile(path, data, 0o644)
}

func (s *Store) logAudit(err error) {
	if err != nil {
		clog.Warn("audit: %v", err)
	}
}
