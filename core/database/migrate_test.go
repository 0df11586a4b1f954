package database

import (
	"testing"
	"testing/fstest"
)

func TestListMigrationFilesFiltersAndSorts(t *testing.T) {
	fsys := fstest.MapFS{
		"sqlite/000002_meetings.up.sql":   {Data: []byte("--")},
		"sqlite/000001_requests.up.sql":   {Data: []byte("--")},
		"sqlite/000001_requests.down.sql": {Data: []byte("--")},
		"postgres/000001_x.up.sql":        {Data: []byte("--")},
	}
	got := listMigrationFiles(fsys, "sqlite")
	want := []string{"000001_requests.up.sql", "000002_meetings.up.sql"}
	if len(got) != len(want) {
		t.Fatalf("files = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("files = %v, want %v", got, want)
		}
	}
	if files := listMigrationFiles(fsys, "missing"); files != nil {
		t.Fatalf("expected nil for missing dir, got %v", files)
	}
}

func TestSelectApplied(t *testing.T) {
	files := []string{"000001_a.up.sql", "000002_b.up.sql", "000003_c.up.sql"}
	cases := []struct {
		from, to uint64
		want     int
	}{
		{0, 3, 3},
		{1, 3, 2},
		{3, 3, 0},
		{2, 1, 0},
	}
	for _, tc := range cases {
		if got := selectApplied(files, tc.from, tc.to); len(got) != tc.want {
			t.Fatalf("selectApplied(%d,%d) = %v, want %d files", tc.from, tc.to, got, tc.want)
		}
	}
	if v := parseVersion("000042_name.up.sql"); v != 42 {
		t.Fatalf("parseVersion = %d", v)
	}
}

func TestConfigNormalize(t *testing.T) {
	cfg := Config{}
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Driver != DriverSQLite || cfg.Path != "hrbot.db" || cfg.MaxConnections != 1 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.Persistent() {
		t.Fatal("sqlite must be persistent")
	}

	pg := Config{Driver: "Postgres", Host: "db", Name: "hr", User: "u", Password: "p@ss"}
	if err := pg.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if pg.MigrateURL() != "postgres://u:p%40ss@db:5432/hr?sslmode=disable" {
		t.Fatalf("migrate url = %q", pg.MigrateURL())
	}

	mem := Config{Driver: DriverMemory}
	if err := mem.Normalize(); err != nil || mem.Persistent() {
		t.Fatalf("memory driver: err=%v persistent=%v", err, mem.Persistent())
	}

	bad := Config{Driver: "mongo"}
	if err := bad.Normalize(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
