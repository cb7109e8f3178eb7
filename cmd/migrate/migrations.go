package main

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

var migrationFileRE = regexp.MustCompile(`^([0-9]+)_([a-z0-9_]+)\.(up|down)\.sql$`)

type migration struct {
	Version int64
	Name    string
	UpSQL   string
	DownSQL string
}

// appliedVersion is one row of schema_migrations.
type appliedVersion struct {
	Version   int64
	AppliedAt time.Time
}

// loadMigrations pairs NNNN_name.up.sql and NNNN_name.down.sql files under
// migrations/ and returns them ordered by version.
func loadMigrations(fsys fs.FS) ([]migration, error) {
	paths, err := fs.Glob(fsys, "migrations/*.sql")
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.New("no migration files found")
	}

	byVersion := make(map[int64]*migration)
	for _, p := range paths {
		m := migrationFileRE.FindStringSubmatch(path.Base(p))
		if m == nil {
			return nil, fmt.Errorf("invalid migration filename: %s", p)
		}
		version, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse version in %s: %w", p, err)
		}
		body, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", p, err)
		}
		sql := strings.TrimSpace(string(body))
		if sql == "" {
			return nil, fmt.Errorf("empty migration file: %s", p)
		}

		entry, ok := byVersion[version]
		if !ok {
			entry = &migration{Version: version, Name: m[2]}
			byVersion[version] = entry
		}
		if entry.Name != m[2] {
			return nil, fmt.Errorf("version %d has two names: %s and %s", version, entry.Name, m[2])
		}

		target := &entry.UpSQL
		if m[3] == "down" {
			target = &entry.DownSQL
		}
		if *target != "" {
			return nil, fmt.Errorf("duplicate %s migration for version %d", m[3], version)
		}
		*target = sql
	}

	out := make([]migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.UpSQL == "" || m.DownSQL == "" {
			return nil, fmt.Errorf("migration version %d must include both up and down files", m.Version)
		}
		out = append(out, *m)
	}
	slices.SortFunc(out, func(a, b migration) int { return cmpInt64(a.Version, b.Version) })
	return out, nil
}

// pendingUp returns the migrations not yet recorded, in version order.
func pendingUp(all []migration, applied []appliedVersion) []migration {
	done := make(map[int64]bool, len(applied))
	for _, a := range applied {
		done[a.Version] = true
	}
	var out []migration
	for _, m := range all {
		if !done[m.Version] {
			out = append(out, m)
		}
	}
	return out
}

// planDown picks the newest steps applied versions and resolves their
// sources. An applied version with no embedded file is an error.
func planDown(all []migration, applied []appliedVersion, steps int) ([]migration, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("steps must be > 0")
	}
	byVersion := make(map[int64]migration, len(all))
	for _, m := range all {
		byVersion[m.Version] = m
	}

	newest := slices.Clone(applied)
	slices.SortFunc(newest, func(a, b appliedVersion) int { return cmpInt64(b.Version, a.Version) })
	if len(newest) > steps {
		newest = newest[:steps]
	}

	out := make([]migration, 0, len(newest))
	for _, a := range newest {
		m, ok := byVersion[a.Version]
		if !ok {
			return nil, fmt.Errorf("cannot find migration source for applied version %d", a.Version)
		}
		out = append(out, m)
	}
	return out, nil
}

type statusLine struct {
	Version   int64
	Name      string
	Applied   bool
	AppliedAt time.Time
}

// migrationStatus lists every embedded migration with its applied state.
func migrationStatus(all []migration, applied []appliedVersion) []statusLine {
	at := make(map[int64]time.Time, len(applied))
	for _, a := range applied {
		at[a.Version] = a.AppliedAt
	}
	out := make([]statusLine, 0, len(all))
	for _, m := range all {
		ts, ok := at[m.Version]
		out = append(out, statusLine{Version: m.Version, Name: m.Name, Applied: ok, AppliedAt: ts})
	}
	return out
}

// parseSteps reads the optional rollback count, defaulting to one.
func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("steps must be a positive integer, got %q", args[0])
	}
	return n, nil
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
