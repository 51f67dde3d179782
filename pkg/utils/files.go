package utils

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// AbsPath resolves relPath against the working directory and cleans it.
func AbsPath(relPath string) (string, error) {
	fullPath, err := filepath.Abs(relPath)
	if err != nil {
		return "", errors.Wrapf(err, "resolve %s", relPath)
	}
	return fullPath, nil
}

// Source is one input buffer. Name is the path as the user gave it, which is
// what diagnostics print.
type Source struct {
	Name string
	Path string
	Data []byte
}

// ReadSource loads a source buffer from disk.
func ReadSource(relPath string) (*Source, error) {
	fullPath, err := AbsPath(relPath)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, errors.Wrap(err, "stat source")
	}
	if info.IsDir() {
		return nil, errors.Errorf("%s is a directory", relPath)
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, errors.Wrap(err, "read source")
	}
	return &Source{Name: relPath, Path: fullPath, Data: data}, nil
}

// ExpandInputs resolves args to a sorted, de-duplicated list of files.
// Glob patterns are expanded; a directory contributes every file in it with
// the given extension.
func ExpandInputs(args []string, ext string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "bad pattern %q", arg)
		}
		if len(matches) == 0 {
			// keep it so the caller reports the missing file
			add(arg)
			continue
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || !info.IsDir() {
				add(m)
				continue
			}
			files, err := filepath.Glob(filepath.Join(m, "*"+ext))
			if err != nil {
				return nil, errors.Wrapf(err, "list %s", m)
			}
			for _, f := range files {
				add(f)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}
