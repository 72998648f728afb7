package runner

import (
	"context"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/yaklabco/gorazor/pkg/langdetect"
)

// Matcher decides which files and directories under a working directory take part in a run.
// Discover walks with it; the watch command reuses it to filter file system events.
type Matcher struct {
	workDir    string
	extensions []string
	include    []string
	exclude    []string
	vendored   bool
}

// NewMatcher resolves opts.WorkingDir and captures the selection rules from opts.
func NewMatcher(opts Options) (*Matcher, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	return &Matcher{
		workDir:    workDir,
		extensions: opts.effectiveExtensions(),
		include:    opts.IncludeGlobs,
		exclude:    opts.ExcludeGlobs,
		vendored:   opts.IncludeVendored,
	}, nil
}

// WorkingDir returns the absolute directory that relative paths and globs are resolved against.
func (m *Matcher) WorkingDir() string {
	return m.workDir
}

// MatchFile reports whether the file at path is a template to parse. Hidden files never match.
func (m *Matcher) MatchFile(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	return m.matchTemplate(path)
}

// SkipDir reports whether the directory at path is left out: hidden, excluded or vendored.
func (m *Matcher) SkipDir(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return true
	}
	rel := m.rel(path)
	if anyGlob(rel, m.exclude) {
		return true
	}
	return !m.vendored && langdetect.IsVendored(rel+"/")
}

// matchTemplate applies the extension and glob rules without the hidden-name check, so
// a file named explicitly on the command line is parsed even when it starts with a dot.
func (m *Matcher) matchTemplate(path string) bool {
	if !langdetect.IsTemplatePath(path, m.extensions) {
		return false
	}
	rel := m.rel(path)
	if anyGlob(rel, m.exclude) {
		return false
	}
	return len(m.include) == 0 || anyGlob(rel, m.include)
}

func (m *Matcher) rel(path string) string {
	rel, err := filepath.Rel(m.workDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// Discover finds template files matching opts.
// It returns a deterministically sorted list of absolute file paths.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	matcher, err := NewMatcher(opts)
	if err != nil {
		return nil, err
	}

	found := make(map[string]struct{})
	for _, input := range opts.effectivePaths() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery cancelled: %w", err)
		}

		abs := input
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(matcher.workDir, abs)
		}
		abs = filepath.Clean(abs)

		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", input, err)
		}

		if !info.IsDir() {
			if matcher.matchTemplate(abs) {
				found[abs] = struct{}{}
			}
			continue
		}
		if err := matcher.walk(ctx, abs, opts.FollowSymlinks, found); err != nil {
			return nil, err
		}
	}

	return slices.Sorted(maps.Keys(found)), nil
}

// walk adds every matching file below root to found.
func (m *Matcher) walk(ctx context.Context, root string, followSymlinks bool, found map[string]struct{}) error {
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if os.IsPermission(walkErr) {
				return nil
			}
			return walkErr
		}

		if entry.IsDir() {
			if path != root && m.SkipDir(path) {
				return filepath.SkipDir
			}
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(path)
			if err != nil {
				return nil //nolint:nilerr // Broken or unreadable links are skipped.
			}
			if target.IsDir() {
				if !followSymlinks || m.SkipDir(path) {
					return nil
				}
				// Walk the resolved target; WalkDir does not descend through a link root.
				real, err := filepath.EvalSymlinks(path)
				if err != nil {
					return nil //nolint:nilerr // Unresolvable links are skipped.
				}
				return m.walk(ctx, real, followSymlinks, found)
			}
		}

		if m.MatchFile(path) {
			found[path] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk directory %s: %w", root, err)
	}
	return nil
}

// resolveWorkDir resolves the working directory, defaulting to os.Getwd().
func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	absPath, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return absPath, nil
}

func anyGlob(rel string, patterns []string) bool {
	return slices.ContainsFunc(patterns, func(pattern string) bool {
		return matchGlob(rel, pattern)
	})
}

// matchGlob reports whether the slash-separated rel matches pattern. A "**" segment matches
// any number of path segments, and a pattern without a slash is also tried on the base name.
func matchGlob(rel, pattern string) bool {
	pattern = filepath.ToSlash(pattern)
	if !strings.Contains(pattern, "/") && pattern != "**" {
		if ok, err := path.Match(pattern, path.Base(rel)); err == nil && ok {
			return true
		}
	}
	return matchSegments(strings.Split(pattern, "/"), strings.Split(rel, "/"))
}

func matchSegments(pattern, parts []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			for skip := 0; skip <= len(parts); skip++ {
				if matchSegments(pattern[1:], parts[skip:]) {
					return true
				}
			}
			return false
		}
		if len(parts) == 0 {
			return false
		}
		if ok, err := path.Match(pattern[0], parts[0]); err != nil || !ok {
			return false
		}
		pattern, parts = pattern[1:], parts[1:]
	}
	return len(parts) == 0
}
