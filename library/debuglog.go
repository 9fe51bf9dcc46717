package library

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DebugEntry is one captured log line.
type DebugEntry struct {
	Time    time.Time
	Level   logrus.Level
	Message string
	Fields  logrus.Fields
}

// String formats the entry as "15:04:05 LEVEL message key=value ...".
func (e DebugEntry) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %-5s %s", e.Time.Format("15:04:05"), strings.ToUpper(e.Level.String()), e.Message)
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, e.Fields[k])
	}
	return sb.String()
}

// DebugLog is a logrus hook that keeps the most recent entries in memory.
type DebugLog struct {
	mu      sync.Mutex
	entries []DebugEntry
	next    int
	full    bool
}

// NewDebugLog returns a hook retaining up to size entries. A size below
// one retains nothing.
func NewDebugLog(size int) *DebugLog {
	if size < 0 {
		size = 0
	}
	return &DebugLog{entries: make([]DebugEntry, size)}
}

// Levels implements logrus.Hook.
func (d *DebugLog) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook.
func (d *DebugLog) Fire(e *logrus.Entry) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.entries) == 0 {
		return nil
	}
	fields := make(logrus.Fields, len(e.Data))
	for k, v := range e.Data {
		fields[k] = v
	}
	d.entries[d.next] = DebugEntry{Time: e.Time, Level: e.Level, Message: e.Message, Fields: fields}
	d.next = (d.next + 1) % len(d.entries)
	if d.next == 0 {
		d.full = true
	}
	return nil
}

// Entries returns the retained entries, oldest first.
func (d *DebugLog) Entries() []DebugEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.full {
		return append([]DebugEntry(nil), d.entries[:d.next]...)
	}
	out := make([]DebugEntry, 0, len(d.entries))
	out = append(out, d.entries[d.next:]...)
	return append(out, d.entries[:d.next]...)
}

// Clear drops every retained entry.
func (d *DebugLog) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.entries {
		d.entries[i] = DebugEntry{}
	}
	d.next, d.full = 0, false
}
