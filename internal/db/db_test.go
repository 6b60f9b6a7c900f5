package db

import (
	"path/filepath"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	if err := d.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return d
}

func TestMigrate_Idempotent(t *testing.T) {
	d := testDB(t)
	if err := d.Migrate(); err != nil {
		t.Errorf("second migrate: %v", err)
	}
}

func TestInsertRunAndGetRun(t *testing.T) {
	d := testDB(t)

	err := d.InsertRun(Run{
		RunID:        "20250309-143005",
		Reference:    "octocat/Hello-World",
		Repo:         "octocat/Hello-World",
		Branch:       "master",
		Status:       "ok",
		Score:        92,
		Verdict:      "Healthy",
		FilesScanned: 14,
		Fixes:        2,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	r, err := d.GetRun("20250309-143005")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if r == nil {
		t.Fatal("expected a run")
	}
	if r.Score != 92 || r.Verdict != "Healthy" || r.FilesScanned != 14 {
		t.Errorf("run = %+v", r)
	}
	if r.Timestamp == "" {
		t.Error("timestamp should be set by the schema default")
	}
}

func TestGetRun_Unknown(t *testing.T) {
	d := testDB(t)
	r, err := d.GetRun("nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if r != nil {
		t.Errorf("expected nil for unknown run, got %+v", r)
	}
}

func TestInsertRun_DuplicateRunID(t *testing.T) {
	d := testDB(t)
	row := Run{RunID: "dup", Reference: "a/b", Status: "ok"}
	if err := d.InsertRun(row); err != nil {
		t.Fatal(err)
	}
	if err := d.InsertRun(row); err == nil {
		t.Error("expected unique constraint violation")
	}
}

func TestInsertRun_RejectsUnknownStatus(t *testing.T) {
	d := testDB(t)
	if err := d.InsertRun(Run{RunID: "x", Reference: "a/b", Status: "maybe"}); err == nil {
		t.Error("expected status check violation")
	}
}

func TestListRuns_NewestFirst(t *testing.T) {
	d := testDB(t)
	for _, id := range []string{"run-1", "run-2", "run-3"} {
		if err := d.InsertRun(Run{RunID: id, Reference: "a/b", Status: "ok"}); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := d.ListRuns(0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("got %d runs", len(runs))
	}
	if runs[0].RunID != "run-3" || runs[2].RunID != "run-1" {
		t.Errorf("order = %s, %s, %s", runs[0].RunID, runs[1].RunID, runs[2].RunID)
	}

	limited, err := d.ListRuns(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("limit ignored, got %d runs", len(limited))
	}
}

func TestStageEvents(t *testing.T) {
	d := testDB(t)

	for _, ev := range []struct {
		stage, status, detail string
		ms                    int
	}{
		{"discover", "ok", "", 120},
		{"retrieve", "ok", "", 800},
		{"assess", "error", "boom", 40},
	} {
		if err := d.LogStageEvent("run-1", ev.stage, ev.status, ev.detail, ev.ms); err != nil {
			t.Fatalf("log %s: %v", ev.stage, err)
		}
	}
	// Another run's events must not leak in.
	if err := d.LogStageEvent("run-2", "discover", "ok", "", 99); err != nil {
		t.Fatal(err)
	}

	events, err := d.StageEvents("run-1")
	if err != nil {
		t.Fatalf("stage events: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events", len(events))
	}
	if events[0].Stage != "discover" || events[2].Stage != "assess" {
		t.Errorf("order = %s, %s, %s", events[0].Stage, events[1].Stage, events[2].Stage)
	}
	if events[2].Status != "error" || events[2].Detail != "boom" {
		t.Errorf("third event = %+v", events[2])
	}
}
