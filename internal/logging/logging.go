// Package logging builds the structured logger and manages per-run log files.
package logging

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/retrotodo/internal/utils"
)

// Prefix is attached to every log line.
const Prefix = "retrotodo"

// Options configures New.
type Options struct {
	Level           string
	Format          string
	ReportTimestamp bool
	ReportCaller    bool
}

// New builds a charmbracelet logger writing to w.
func New(w io.Writer, opts Options) (*log.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	formatter, err := ParseFormatter(opts.Format)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: opts.ReportTimestamp,
		ReportCaller:    opts.ReportCaller,
		TimeFormat:      time.RFC3339,
		Prefix:          Prefix,
	}), nil
}

// ParseLevel parses a level name. Empty means info.
func ParseLevel(level string) (log.Level, error) {
	name := utils.NormalizeName(level)
	switch name {
	case "":
		return log.InfoLevel, nil
	case "warning":
		return log.WarnLevel, nil
	}
	l, err := log.ParseLevel(name)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("unknown log level %q (expected debug|info|warn|error)", level)
	}
	return l, nil
}

// ParseFormatter parses a formatter name. Empty means text.
func ParseFormatter(format string) (log.Formatter, error) {
	switch utils.NormalizeName(format) {
	case "", "text":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	default:
		return log.TextFormatter, fmt.Errorf("unknown log format %q (expected text|json|logfmt)", format)
	}
}

// RunLogger owns the log file of a single run.
type RunLogger struct {
	Dir     string
	RunID   string
	LogPath string
	file    *os.File
}

// NewRunLogger creates <baseDir>/<backend-slug>/<runID>.log.
func NewRunLogger(baseDir, baseURL string) (*RunLogger, error) {
	logDir, err := FindLogDir(baseDir, baseURL)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	id := runID()
	logPath := filepath.Join(logDir, id+logExt)
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	return &RunLogger{
		Dir:     logDir,
		RunID:   id,
		LogPath: logPath,
		file:    file,
	}, nil
}

// Writer returns the underlying log file writer.
func (r *RunLogger) Writer() io.Writer {
	return r.file
}

// Close closes the log file.
func (r *RunLogger) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	return r.file.Close()
}

const logExt = ".log"

func resolveBaseDir(baseDir string) string {
	if filepath.IsAbs(baseDir) {
		return filepath.Clean(baseDir)
	}
	if abs, err := filepath.Abs(baseDir); err == nil {
		return abs
	}
	return filepath.Clean(baseDir)
}

// backendSlug names the log directory of a backend: a readable host part
// plus a short hash of the full base URL.
func backendSlug(baseURL string) string {
	name := baseURL
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		name = u.Host
	}
	return fmt.Sprintf("%s-%s", slugify(name), hashPath(strings.TrimRight(baseURL, "/")))
}

func slugify(input string) string {
	if strings.TrimSpace(input) == "" {
		return "backend"
	}

	var b strings.Builder
	lastUnderscore := false
	for i := 0; i < len(input); i++ {
		c := input[i]
		valid := (c >= 'A' && c <= 'Z') ||
			(c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') ||
			c == '.' || c == '_' || c == '-'
		if !valid {
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
			continue
		}
		b.WriteByte(c)
		lastUnderscore = false
	}

	slug := strings.Trim(b.String(), "_")
	if slug == "" {
		return "backend"
	}
	return slug
}

func hashPath(input string) string {
	sum := sha1.Sum([]byte(input))
	return hex.EncodeToString(sum[:])[:8]
}

func runID() string {
	return fmt.Sprintf("%s-%d", time.Now().UTC().Format("20060102-150405"), os.Getpid())
}

// FindLogDir returns the log directory used for baseURL.
func FindLogDir(baseDir, baseURL string) (string, error) {
	if baseDir == "" {
		return "", fmt.Errorf("log base dir is empty")
	}
	return filepath.Join(resolveBaseDir(baseDir), backendSlug(baseURL)), nil
}

// FindLatestLog returns the newest log file in logDir, or "" if none.
func FindLatestLog(logDir string) (string, error) {
	runs, err := FindLogRuns(logDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	if len(runs) == 0 {
		return "", nil
	}
	return runs[0].Path, nil
}

// TailLog copies a log file to w, optionally starting at the last n lines
// and following new writes until done is closed.
func TailLog(w io.Writer, path string, n int, follow bool, done <-chan struct{}) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if n > 0 {
		if err := tailSeek(file, n); err != nil {
			return fmt.Errorf("seek to tail position: %w", err)
		}
	}

	if follow {
		return tailFollow(w, file, done)
	}

	_, err = io.Copy(w, file)
	return err
}

// tailSeek positions file at the start of its last n lines.
func tailSeek(file *os.File, n int) error {
	const chunk = 4096

	stat, err := file.Stat()
	if err != nil {
		return err
	}
	size := stat.Size()

	// A trailing newline ends the last line rather than starting a new one.
	end := size
	if end > 0 {
		var last [1]byte
		if _, err := file.ReadAt(last[:], end-1); err != nil {
			return err
		}
		if last[0] == '\n' {
			end--
		}
	}

	found := 0
	buf := make([]byte, chunk)
	for pos := end; pos > 0; {
		readSize := int64(chunk)
		if pos < readSize {
			readSize = pos
		}
		pos -= readSize
		if _, err := file.ReadAt(buf[:readSize], pos); err != nil && err != io.EOF {
			return err
		}
		for i := readSize - 1; i >= 0; i-- {
			if buf[i] != '\n' {
				continue
			}
			found++
			if found == n {
				_, err := file.Seek(pos+i+1, io.SeekStart)
				return err
			}
		}
	}

	_, err = file.Seek(0, io.SeekStart)
	return err
}

// tailFollow follows a file like tail -f.
func tailFollow(w io.Writer, file *os.File, done <-chan struct{}) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if _, err := io.Copy(w, file); err != nil {
			return err
		}
		select {
		case <-done:
			return nil
		case <-ticker.C:
		}
	}
}

// LogRun is one log file in a backend log directory.
type LogRun struct {
	RunID   string
	Path    string
	ModTime time.Time
	Size    int64
}

// FindLogRuns lists the runs in logDir, newest first.
func FindLogRuns(logDir string) ([]LogRun, error) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return nil, fmt.Errorf("read log dir: %w", err)
	}

	var runs []LogRun
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id := extractRunID(entry.Name())
		if id == "" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		runs = append(runs, LogRun{
			RunID:   id,
			Path:    filepath.Join(logDir, entry.Name()),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].ModTime.Equal(runs[j].ModTime) {
			return runs[i].RunID > runs[j].RunID
		}
		return runs[i].ModTime.After(runs[j].ModTime)
	})

	return runs, nil
}

// extractRunID returns the run ID of a log filename, or "" for other files.
func extractRunID(filename string) string {
	if !strings.HasSuffix(filename, logExt) {
		return ""
	}
	return strings.TrimSuffix(filename, logExt)
}
