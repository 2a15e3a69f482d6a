package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"assetyaml/internal/assetfile"
	"assetyaml/internal/config"
	"assetyaml/internal/inspect"
)

type app struct {
	out    io.Writer
	cfg    *config.Config
	logger *slog.Logger
	debug  bool
}

func (a *app) isAsset(name string) bool {
	return slices.Contains(a.cfg.Extensions, strings.ToLower(filepath.Ext(name)))
}

// files expands directories into the asset files below them. Files named
// explicitly are kept whatever their extension.
func (a *app) files(paths []string) ([]string, error) {
	var out []string

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, &ExitError{Code: 2, Message: err.Error()}
		}

		if !info.IsDir() {
			out = append(out, p)
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if !d.IsDir() && a.isAsset(path) {
				out = append(out, path)
			}

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", p, err)
		}
	}

	return out, nil
}

func (a *app) check(paths []string) error {
	files, err := a.files(paths)
	if err != nil {
		return err
	}

	failed := 0

	for _, f := range files {
		if !a.checkFile(f) {
			failed++
		}
	}

	if failed > 0 {
		return &ExitError{Code: 1, Message: fmt.Sprintf("%d of %d documents have identity errors", failed, len(files))}
	}

	return nil
}

// checkFile prints the findings of one document and reports whether it has
// no errors.
func (a *app) checkFile(path string) bool {
	r, err := inspect.File(path)
	if err != nil {
		fmt.Fprintf(a.out, "%s: error: %v\n", path, err)
		return false
	}

	a.logger.Debug("document checked", "path", path, "items", len(r.Items), "diagnostics", r.Diagnostics.Len())

	if r.Diagnostics.Len() == 0 {
		fmt.Fprintf(a.out, "%s: ok, items: %d\n", path, len(r.Items))
		return true
	}

	for _, d := range r.Diagnostics.All() {
		fmt.Fprintf(a.out, "%s: %s: %s\n", path, d.Severity, d)
	}

	return r.Diagnostics.IsValid()
}

func (a *app) ids(paths []string) error {
	files, err := a.files(paths)
	if err != nil {
		return err
	}

	for _, f := range files {
		r, err := inspect.File(f)
		if err != nil {
			return err
		}

		if len(files) > 1 {
			fmt.Fprintf(a.out, "# %s\n", f)
		}

		if a.debug {
			spew.Fdump(a.out, r)
			continue
		}

		for _, it := range r.Items {
			switch {
			case it.Deleted:
				fmt.Fprintf(a.out, "%s\t%s\tdeleted\n", it.Path, it.ID)
			case it.Dictionary:
				fmt.Fprintf(a.out, "%s\t%s\tkey=%s\n", it.Path, it.ID, it.Key)
			default:
				fmt.Fprintf(a.out, "%s\t%s\n", it.Path, it.ID)
			}
		}
	}

	return nil
}

func (a *app) cid(paths []string) error {
	files, err := a.files(paths)
	if err != nil {
		return err
	}

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", f, err)
		}

		id, err := assetfile.ContentID(data)
		if err != nil {
			return err
		}

		fmt.Fprintf(a.out, "%s  %s\n", id, f)
	}

	return nil
}

// format re-indents documents. Files already in shape are left untouched.
func (a *app) format(paths []string) error {
	files, err := a.files(paths)
	if err != nil {
		return err
	}

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", f, err)
		}

		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse %s: %w", f, err)
		}

		var buf bytes.Buffer

		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(a.cfg.Indent)

		if err := enc.Encode(&doc); err != nil {
			return fmt.Errorf("failed to encode %s: %w", f, err)
		}

		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to encode %s: %w", f, err)
		}

		if bytes.Equal(buf.Bytes(), data) {
			continue
		}

		if err := assetfile.WriteFile(f, buf.Bytes()); err != nil {
			return err
		}

		fmt.Fprintf(a.out, "formatted %s\n", f)
	}

	return nil
}

func (a *app) printConfig() error {
	data, err := config.Marshal(a.cfg)
	if err != nil {
		return err
	}

	_, err = a.out.Write(data)

	return err
}

// watch checks the asset files under paths each time they are written,
// until ctx is done. Events for one file within the debounce delay are
// checked once.
func (a *app) watch(ctx context.Context, paths []string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Close()

	for _, p := range paths {
		if err := w.Add(p); err != nil {
			return &ExitError{Code: 2, Message: fmt.Sprintf("cannot watch %s: %v", p, err)}
		}
	}

	a.logger.Info("watching for changes", "paths", paths)

	delay := time.Duration(a.cfg.WatchDebounceMillis) * time.Millisecond
	timer := time.NewTimer(delay)
	timer.Stop()

	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if (!ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create)) || !a.isAsset(ev.Name) {
				continue
			}

			pending[ev.Name] = struct{}{}
			timer.Reset(delay)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}

			a.logger.Warn("watch error", "error", err)
		case <-timer.C:
			names := make([]string, 0, len(pending))
			for name := range pending {
				names = append(names, name)
			}

			slices.Sort(names)
			clear(pending)

			for _, name := range names {
				a.checkFile(name)
			}
		}
	}
}
