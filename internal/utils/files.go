package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// EnsureDir ensures the provided directory exists.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// SafeWriteFile writes data to a temp file and atomically renames it into place.
func SafeWriteFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}

// PrettyJSON marshals a value as indented JSON.
func PrettyJSON(v any) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return b, nil
}

// ExpandGlobs resolves shell-style patterns into a sorted, de-duplicated
// file list. An argument that matches nothing is kept when it names an
// existing path.
func ExpandGlobs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// UniquePath returns dir/name, or dir/stem__N.ext with the smallest N >= 2
// that is neither on disk nor in claimed. The result is added to claimed.
func UniquePath(dir, name string, claimed map[string]struct{}) string {
	taken := func(p string) bool {
		if _, ok := claimed[p]; ok {
			return true
		}
		_, err := os.Stat(p)
		return err == nil
	}
	path := filepath.Join(dir, name)
	if taken(path) {
		ext := filepath.Ext(name)
		stem := strings.TrimSuffix(name, ext)
		for idx := 2; ; idx++ {
			cand := filepath.Join(dir, fmt.Sprintf("%s__%d%s", stem, idx, ext))
			if !taken(cand) {
				path = cand
				break
			}
		}
	}
	if claimed != nil {
		claimed[path] = struct{}{}
	}
	return path
}
