package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"remindd/internal/task"
	logx "remindd/pkg/logx"
)

// fileStore is a dependency-free persistence backend.
//
// Files:
//   - <path>             task set, one "id|title|category|priority|deadline" line per task
//   - <path>.fired.jsonl append-only JSON Lines audit of fired reminders
//
// The task file format is the legacy one; deadlines are unix seconds.
type fileStore struct {
	log logx.Logger

	mu sync.Mutex

	path      string
	firedPath string
	firedFile *os.File
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required")
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	firedPath := path + ".fired.jsonl"
	f, err := os.OpenFile(firedPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &fileStore{log: log, path: path, firedPath: firedPath, firedFile: f}, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.firedFile != nil {
		err := s.firedFile.Close()
		s.firedFile = nil
		return err
	}
	return nil
}

func (s *fileStore) LoadAll(ctx context.Context) ([]task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var out []task.Task
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		t, ok := parseTaskLine(sc.Text())
		if !ok {
			s.log.Warn("skipping malformed task line", logx.String("file", s.path))
			continue
		}
		out = append(out, t)
	}
	return out, sc.Err()
}

func (s *fileStore) SaveAll(ctx context.Context, tasks []task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, t := range tasks {
		// The line format cannot carry '|' inside fields.
		fmt.Fprintf(w, "%d|%s|%s|%d|%d\n",
			t.ID, sanitizeField(t.Title), sanitizeField(t.Category), t.Priority, t.Deadline.Unix())
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

type firedRecord struct {
	At       int64  `json:"at"`
	TaskID   int64  `json:"task_id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Priority int    `json:"priority"`
	Deadline int64  `json:"deadline"`
}

func (s *fileStore) AppendFired(ctx context.Context, t task.Task, firedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.firedFile == nil {
		return ErrDisabled
	}
	if firedAt.IsZero() {
		firedAt = time.Now()
	}
	b, err := json.Marshal(firedRecord{
		At: firedAt.Unix(), TaskID: t.ID, Title: t.Title,
		Category: t.Category, Priority: t.Priority, Deadline: t.Deadline.Unix(),
	})
	if err != nil {
		return err
	}
	_, err = s.firedFile.Write(append(b, '\n'))
	return err
}

// PruneFired rewrites the audit file keeping only entries at or after the
// cutoff.
func (s *fileStore) PruneFired(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.firedFile == nil {
		return 0, ErrDisabled
	}

	in, err := os.Open(s.firedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	tmp := s.firedPath + ".tmp"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		_ = in.Close()
		return 0, err
	}

	var removed int64
	w := bufio.NewWriter(out)
	sc := bufio.NewScanner(in)
	cutoff := olderThan.Unix()
	for sc.Scan() {
		line := sc.Text()
		var rec firedRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil || rec.At < cutoff {
			removed++
			continue
		}
		w.WriteString(line)
		w.WriteByte('\n')
	}
	_ = in.Close()
	if err := sc.Err(); err != nil {
		_ = out.Close()
		return 0, err
	}
	if err := w.Flush(); err != nil {
		_ = out.Close()
		return 0, err
	}
	if err := out.Close(); err != nil {
		return 0, err
	}

	_ = s.firedFile.Close()
	if err := os.Rename(tmp, s.firedPath); err != nil {
		return 0, err
	}
	f, err := os.OpenFile(s.firedPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		s.firedFile = nil
		return removed, err
	}
	s.firedFile = f
	return removed, nil
}

func (s *fileStore) Checkpoint(ctx context.Context) error { return nil }

func parseTaskLine(line string) (task.Task, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return task.Task{}, false
	}
	parts := strings.Split(line, "|")
	if len(parts) != 5 {
		return task.Task{}, false
	}
	id, err1 := strconv.ParseInt(parts[0], 10, 64)
	priority, err2 := strconv.Atoi(parts[3])
	deadline, err3 := strconv.ParseInt(parts[4], 10, 64)
	if err1 != nil || err2 != nil || err3 != nil || id <= 0 {
		return task.Task{}, false
	}
	return task.Task{
		ID:       id,
		Title:    parts[1],
		Category: parts[2],
		Priority: priority,
		Deadline: time.Unix(deadline, 0),
	}, true
}

func sanitizeField(s string) string {
	return strings.ReplaceAll(s, "|", "/")
}
