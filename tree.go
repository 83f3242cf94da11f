package coveragerc

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// vcsDirs are version-control metadata directories, never descended into.
var vcsDirs = map[string]bool{".git": true, ".hg": true}

// SelectFiles walks the tree under root and returns the slash-separated
// paths, relative to root, of regular files that survive the omit set, in
// lexical walk order. A directory whose relative path the omit set matches
// is pruned without descending, so an omitted tests tree costs nothing to
// skip. Symbolic links are not followed. A nil matcher omits nothing.
//
// Each top-level directory walks on its own goroutine; the first error
// aborts the walk and is returned with the offending path.
func SelectFiles(root string, m *Matcher) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read root %s: %w", root, err)
	}

	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())

	// One result slot per root entry keeps the concatenated output in the
	// same order a sequential walk would produce.
	results := make([][]string, len(entries))
	for i, ent := range entries {
		name := ent.Name()
		switch {
		case ent.Type()&fs.ModeSymlink != 0:
			continue
		case ent.IsDir():
			if vcsDirs[name] || (m != nil && m.Match(name)) {
				continue
			}
			i := i
			g.Go(func() error {
				sub, err := walkSubtree(root, name, m)
				if err != nil {
					return err
				}
				results[i] = sub
				return nil
			})
		default:
			if ent.Type().IsRegular() && (m == nil || !m.Match(name)) {
				results[i] = []string{name}
			}
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var files []string
	for _, sub := range results {
		files = append(files, sub...)
	}
	return files, nil
}

func walkSubtree(root, top string, m *Matcher) ([]string, error) {
	base := filepath.Join(root, top)
	var out []string
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", path, err)
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			return fmt.Errorf("walk %s: %w", path, rerr)
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path != base && (vcsDirs[d.Name()] || (m != nil && m.Match(rel))) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if m == nil || !m.Match(rel) {
			out = append(out, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
