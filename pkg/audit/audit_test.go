package audit

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/newtron-network/lanemap/pkg/portdb"
)

func newTestLogger(t *testing.T, rotation RotationConfig) *FileLogger {
	t.Helper()
	logger, err := NewFileLogger(filepath.Join(t.TempDir(), "audit.log"), rotation)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	t.Cleanup(func() { logger.Close() })
	return logger
}

func TestEvent_New(t *testing.T) {
	event := NewEvent("alice", "wedge400", "10.0.0.1:6379", OperationPublish)

	if event.User != "alice" {
		t.Errorf("User = %q, want %q", event.User, "alice")
	}
	if event.Platform != "wedge400" {
		t.Errorf("Platform = %q, want %q", event.Platform, "wedge400")
	}
	if event.Target != "10.0.0.1:6379" {
		t.Errorf("Target = %q", event.Target)
	}
	if event.ID == "" {
		t.Error("ID should not be empty")
	}
	if event.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestEvent_Chaining(t *testing.T) {
	changes := []portdb.Change{
		{Name: "eth1/1/1", Desired: portdb.PortEntry{Lanes: "0,1,2,3"}},
	}

	event := NewEvent("alice", "wedge400", "sw1", OperationPublish).
		WithChanges(changes).
		WithSuccess().
		WithDuration(time.Second).
		WithExecuteMode(true)

	if len(event.Changes) != 1 {
		t.Errorf("Expected 1 change, got %d", len(event.Changes))
	}
	if !event.Success {
		t.Error("Success should be true")
	}
	if event.Duration != time.Second {
		t.Errorf("Duration = %v", event.Duration)
	}
	if !event.ExecuteMode || event.DryRun {
		t.Error("ExecuteMode should be true and DryRun false")
	}
	if !event.touches("eth1/1/1") || event.touches("eth1/2/1") {
		t.Error("touches() should match only changed ports")
	}
}

func TestEvent_WithError(t *testing.T) {
	event := NewEvent("alice", "wedge400", "sw1", OperationPublish).
		WithSuccess().
		WithError(errors.New("connection refused"))

	if event.Success {
		t.Error("Success should be false")
	}
	if event.Error != "connection refused" {
		t.Errorf("Error = %q", event.Error)
	}
}

func TestFileLogger_Basic(t *testing.T) {
	logger := newTestLogger(t, RotationConfig{})

	event := NewEvent("alice", "wedge400", "sw1", OperationPublish).WithSuccess()
	if err := logger.Log(event); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := logger.Query(Filter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].User != "alice" || events[0].Platform != "wedge400" {
		t.Errorf("event = %+v", events[0])
	}
}

func TestFileLogger_QueryFilters(t *testing.T) {
	logger := newTestLogger(t, RotationConfig{})

	port := func(name string) []portdb.Change { return []portdb.Change{{Name: name}} }
	events := []*Event{
		NewEvent("alice", "wedge400", "sw1", OperationPublish).WithChanges(port("eth1/1/1")).WithSuccess(),
		NewEvent("bob", "wedge400", "sw2", OperationPublish).WithChanges(port("eth1/2/1")).WithSuccess(),
		NewEvent("alice", "minipack", "sw3", OperationPublish).WithError(errors.New("failed")),
		NewEvent("charlie", "minipack", "sw1", OperationDelete).WithChanges(port("eth1/1/1")).WithSuccess(),
	}
	for _, e := range events {
		if err := logger.Log(e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"by user", Filter{User: "alice"}, 2},
		{"by platform", Filter{Platform: "wedge400"}, 2},
		{"by target", Filter{Target: "sw1"}, 2},
		{"by operation", Filter{Operation: OperationDelete}, 1},
		{"by port", Filter{Port: "eth1/1/1"}, 2},
		{"success only", Filter{SuccessOnly: true}, 3},
		{"failure only", Filter{FailureOnly: true}, 1},
		{"limit", Filter{Limit: 2}, 2},
		{"offset", Filter{Offset: 2}, 2},
		{"offset beyond", Filter{Offset: 10}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := logger.Query(tt.filter)
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			if len(results) != tt.want {
				t.Errorf("Query(%+v) returned %d events, want %d", tt.filter, len(results), tt.want)
			}
		})
	}
}

func TestFileLogger_Last(t *testing.T) {
	logger := newTestLogger(t, RotationConfig{})
	for _, user := range []string{"a", "b", "c"} {
		if err := logger.Log(NewEvent(user, "wedge400", "sw1", OperationPublish)); err != nil {
			t.Fatal(err)
		}
	}

	events, err := logger.Last(2, Filter{Limit: 1})
	if err != nil {
		t.Fatalf("Last failed: %v", err)
	}
	if len(events) != 2 || events[0].User != "c" || events[1].User != "b" {
		t.Errorf("Last(2) users = %v, want [c b]", users(events))
	}
}

func users(events []*Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.User
	}
	return out
}

func TestFileLogger_QueryTimeFilter(t *testing.T) {
	logger := newTestLogger(t, RotationConfig{})
	logger.Log(NewEvent("alice", "wedge400", "sw1", OperationPublish).WithSuccess())

	results, _ := logger.Query(Filter{
		StartTime: time.Now().Add(-time.Hour),
		EndTime:   time.Now().Add(time.Hour),
	})
	if len(results) != 1 {
		t.Errorf("Expected 1 event in time range, got %d", len(results))
	}

	results, _ = logger.Query(Filter{StartTime: time.Now().Add(time.Hour)})
	if len(results) != 0 {
		t.Errorf("Expected 0 events after range, got %d", len(results))
	}

	results, _ = logger.Query(Filter{EndTime: time.Now().Add(-time.Hour)})
	if len(results) != 0 {
		t.Errorf("Expected 0 events before range, got %d", len(results))
	}
}

func TestFileLogger_CreatesDirectory(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "audit.log")
	logger, err := NewFileLogger(logPath, RotationConfig{})
	if err != nil {
		t.Fatalf("NewFileLogger should create directories: %v", err)
	}
	defer logger.Close()
	if logger.Path() != logPath {
		t.Errorf("Path() = %q, want %q", logger.Path(), logPath)
	}
}

func TestFileLogger_QueryMissingFile(t *testing.T) {
	logger := newTestLogger(t, RotationConfig{})
	os.Remove(logger.Path())

	results, err := logger.Query(Filter{})
	if err != nil {
		t.Errorf("Query on missing file should not error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected 0 events, got %d", len(results))
	}
}

func TestFileLogger_QueryMalformedJSON(t *testing.T) {
	logger := newTestLogger(t, RotationConfig{})
	logger.Log(NewEvent("alice", "wedge400", "sw1", OperationPublish))

	f, err := os.OpenFile(logger.Path(), os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("not json\n")
	f.Close()

	logger.Log(NewEvent("bob", "wedge400", "sw1", OperationPublish))

	results, err := logger.Query(Filter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Expected 2 valid events, got %d", len(results))
	}
}

func TestDefaultLogger(t *testing.T) {
	SetDefaultLogger(nil)

	if err := Log(NewEvent("test", "test", "test", OperationPublish)); err != nil {
		t.Errorf("Log with nil default should not error: %v", err)
	}
	results, err := Query(Filter{})
	if err != nil {
		t.Errorf("Query with nil default should not error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected 0 results, got %d", len(results))
	}

	logger := newTestLogger(t, RotationConfig{})
	SetDefaultLogger(logger)
	defer SetDefaultLogger(nil)

	if err := Log(NewEvent("alice", "wedge400", "sw1", OperationPublish).WithSuccess()); err != nil {
		t.Errorf("Log failed: %v", err)
	}
	results, err = Query(Filter{})
	if err != nil {
		t.Errorf("Query failed: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("Expected 1 result, got %d", len(results))
	}
}

func TestFileLogger_Rotation(t *testing.T) {
	logger := newTestLogger(t, RotationConfig{
		MaxSize:    50, // bytes; every event exceeds it
		MaxBackups: 2,
	})

	for i := 0; i < 10; i++ {
		if err := logger.Log(NewEvent("alice", "wedge400", "sw1", OperationPublish)); err != nil {
			t.Fatalf("Log failed on iteration %d: %v", i, err)
		}
	}

	matches, err := filepath.Glob(logger.Path() + ".*")
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(matches) == 0 {
		t.Error("Expected rotation to create backup files")
	}
	if len(matches) > 2 {
		t.Errorf("Expected at most 2 backup files, got %d", len(matches))
	}
}
