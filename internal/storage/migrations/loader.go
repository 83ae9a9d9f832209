// Package migrations загружает и применяет версионированные up/down SQL-миграции
// для SQL-хранилищ заказов.
package migrations

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var fileNamePattern = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_]+)\.(up|down)\.sql$`)

// Migration: одна версия схемы с SQL для наката и отката.
type Migration struct {
	Version int64
	Name    string
	UpSQL   string
	DownSQL string
}

// Load читает файлы вида 0001_name.up.sql / 0001_name.down.sql по glob
// и возвращает миграции, отсортированные по версии.
func Load(fsys fs.FS, glob string) ([]Migration, error) {
	files, err := fs.Glob(fsys, glob)
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no migration files found")
	}

	byVersion := make(map[int64]*Migration)
	for _, file := range files {
		base := path.Base(file)
		m := fileNamePattern.FindStringSubmatch(base)
		if len(m) != 4 {
			return nil, fmt.Errorf("invalid migration file name: %s", base)
		}

		version, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse migration version from %s: %w", base, err)
		}

		raw, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("read migration file %s: %w", file, err)
		}
		body := strings.TrimSpace(string(raw))
		if body == "" {
			return nil, fmt.Errorf("migration file is empty: %s", base)
		}

		entry, ok := byVersion[version]
		if !ok {
			entry = &Migration{Version: version, Name: m[2]}
			byVersion[version] = entry
		} else if entry.Name != m[2] {
			return nil, fmt.Errorf("migration name mismatch for version %d: %s vs %s", version, entry.Name, m[2])
		}

		target := &entry.UpSQL
		if m[3] == "down" {
			target = &entry.DownSQL
		}
		if *target != "" {
			return nil, fmt.Errorf("duplicate %s migration for version %d", m[3], version)
		}
		*target = body
	}

	result := make([]Migration, 0, len(byVersion))
	for _, entry := range byVersion {
		if entry.UpSQL == "" || entry.DownSQL == "" {
			return nil, fmt.Errorf("migration %d_%s must have both up and down files", entry.Version, entry.Name)
		}
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Version < result[j].Version })

	return result, nil
}
