package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	mdwerror "github.com/msto63/spi/foundation/core/error"
	mdwlog "github.com/msto63/spi/foundation/core/log"
	"github.com/msto63/spi/foundation/pascal"
	mdwinterp "github.com/msto63/spi/foundation/pascal/interpreter"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(Config{Path: filepath.Join(t.TempDir(), "nested", "history.db")})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func int64Ptr(v int64) *int64 { return &v }

func TestRecordAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	entries := []*Entry{
		{Timestamp: base, Source: SourceCLI, Mode: pascal.ModeCalc, Input: "1 + 1", OK: true, Value: int64Ptr(2)},
		{Timestamp: base.Add(time.Second), Source: SourceREPL, Mode: pascal.ModeProgram, Input: "BEGIN a := 2 END.", OK: true,
			Bindings: []mdwinterp.Binding{{Name: "a", Value: 2}}, Duration: 3 * time.Millisecond},
		{Timestamp: base.Add(2 * time.Second), Source: SourceGRPC, Mode: pascal.ModeCalc, Input: "3 @ 4",
			ErrorCode: string(mdwerror.CodePascalLex), Error: "lexical error"},
	}
	for _, e := range entries {
		if err := store.Record(ctx, e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
		if len(e.ID) != 36 {
			t.Errorf("Expected generated UUID, got %q", e.ID)
		}
	}

	all, err := store.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(all))
	}
	if all[0].Input != "3 @ 4" || all[2].Input != "1 + 1" {
		t.Errorf("Expected newest first, got %q ... %q", all[0].Input, all[2].Input)
	}

	failed := all[0]
	if failed.OK || failed.ErrorCode != "PASCAL_LEX" || failed.Value != nil {
		t.Errorf("Unexpected failed entry: %+v", failed)
	}

	program := all[1]
	if len(program.Bindings) != 1 || program.Bindings[0].Name != "a" || program.Bindings[0].Value != 2 {
		t.Errorf("Expected bindings [a=2], got %v", program.Bindings)
	}
	if program.Duration != 3*time.Millisecond {
		t.Errorf("Expected 3ms, got %v", program.Duration)
	}

	calc := all[2]
	if calc.Value == nil || *calc.Value != 2 {
		t.Errorf("Expected value 2, got %v", calc.Value)
	}
	if !calc.Timestamp.Equal(base) {
		t.Errorf("Expected %v, got %v", base, calc.Timestamp)
	}
}

func TestListFilter(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i, src := range []Source{SourceCLI, SourceCLI, SourceWebsocket, SourceGRPC} {
		entry := &Entry{Source: src, Mode: pascal.ModeCalc, Input: "1", OK: i%2 == 0, Value: int64Ptr(1)}
		if err := store.Record(ctx, entry); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	tests := []struct {
		name     string
		filter   Filter
		expected int
	}{
		{"all", Filter{}, 4},
		{"limit", Filter{Limit: 2}, 2},
		{"by source", Filter{Source: SourceCLI}, 2},
		{"failed only", Filter{FailedOnly: true}, 2},
		{"by mode", Filter{Mode: pascal.ModeProgram}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(got) != tt.expected {
				t.Errorf("Expected %d entries, got %d", tt.expected, len(got))
			}
		})
	}
}

func TestGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	entry := &Entry{Source: SourceCLI, Mode: pascal.ModeCalc, Input: "7 / 2", OK: true, Value: int64Ptr(3)}
	if err := store.Record(ctx, entry); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	got, err := store.Get(ctx, entry.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Input != "7 / 2" || *got.Value != 3 {
		t.Errorf("Unexpected entry: %+v", got)
	}

	_, err = store.Get(ctx, "missing")
	if !mdwerror.HasCode(err, mdwerror.CodeNotFound) {
		t.Errorf("Expected CodeNotFound, got %v", err)
	}
}

func TestClearAndCount(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := store.Record(ctx, &Entry{Source: SourceCLI, Mode: pascal.ModeCalc, Input: "1", OK: true}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	n, err := store.Count(ctx)
	if err != nil || n != 3 {
		t.Fatalf("Count() = %d, %v; want 3", n, err)
	}

	removed, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if removed != 3 {
		t.Errorf("Expected 3 removed, got %d", removed)
	}

	n, _ = store.Count(ctx)
	if n != 0 {
		t.Errorf("Expected empty journal, got %d", n)
	}
}

func TestPingAndClosed(t *testing.T) {
	store, err := Open(Config{Path: filepath.Join(t.TempDir(), "history.db")})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}

	store.Close()
	err = store.Record(context.Background(), &Entry{Source: SourceCLI, Mode: pascal.ModeCalc, Input: "1"})
	if !mdwerror.HasCode(err, mdwerror.CodeDatabaseError) {
		t.Errorf("Expected CodeDatabaseError after Close, got %v", err)
	}
}

func TestNewEntry(t *testing.T) {
	engine := pascal.New(pascal.Options{Logger: mdwlog.New().WithLevel(mdwlog.LevelFatal)})
	ctx := context.Background()

	res, err := engine.Execute(ctx, pascal.ModeCalc, "7 + 3 * (10 / (12 / (3 + 1) - 1))")
	entry := NewEntry(SourceCLI, pascal.ModeCalc, "expr", res, err)
	if !entry.OK || entry.Value == nil || *entry.Value != 22 {
		t.Errorf("Expected ok entry with 22, got %+v", entry)
	}

	res, err = engine.Execute(ctx, pascal.ModeProgram, "BEGIN a := b + 1 END.")
	entry = NewEntry(SourceREPL, pascal.ModeProgram, "prog", res, err)
	if entry.OK || entry.ErrorCode != string(mdwerror.CodePascalRuntime) {
		t.Errorf("Expected runtime failure entry, got %+v", entry)
	}
	if entry.Error == "" {
		t.Error("Expected error message")
	}
}
