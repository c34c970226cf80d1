package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

const defaultDebounce = 100 * time.Millisecond

// WatchOptions holds options for the watch command.
type WatchOptions struct {
	Debounce time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	opts := &WatchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <paths...>",
		Short: "Re-check SQL files whenever they change",
		Long: `Check the given files, and the *.sql files below the given directories,
then keep watching them and report errors again on every change.
Stop with Ctrl-C.`,
		Example: `  sqlparse watch migrations/`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			return watchPaths(ctx, cmdCtx, args, opts.Debounce)
		},
	}

	cmd.Flags().DurationVar(&opts.Debounce, "debounce", defaultDebounce, "Quiet period before re-checking changed files")

	return cmd
}

// watchPaths checks every file once, then re-checks files as they change
// until ctx is done.
func watchPaths(ctx context.Context, cmdCtx *CommandContext, args []string, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, arg := range args {
		if err := watchPath(watcher, arg); err != nil {
			return fmt.Errorf("failed to watch %s: %w", arg, err)
		}
	}

	files, err := expandPaths(args)
	if err != nil {
		return err
	}
	checkAndReport(ctx, cmdCtx, files)
	cmdCtx.Renderer.Muted(fmt.Sprintf("watching %d files", len(files)))

	pending := make(map[string]bool)
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || !isSQLFile(event.Name) {
				continue
			}
			cmdCtx.Logger.Debug("change detected", "file", event.Name, "op", event.Op.String())
			pending[event.Name] = true
			timer.Reset(debounce)

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for name := range pending {
				changed = append(changed, name)
			}
			sort.Strings(changed)
			clear(pending)
			checkAndReport(ctx, cmdCtx, changed)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cmdCtx.Logger.Warn("watcher error", "error", err)
		}
	}
}

// watchPath adds a file's directory, or a directory tree, to the watcher.
// Directories are watched instead of files so editors that replace files
// on save keep being followed.
func watchPath(watcher *fsnotify.Watcher, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return watcher.Add(filepath.Dir(path))
	}
	return filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != path && len(d.Name()) > 0 && d.Name()[0] == '.' {
			return filepath.SkipDir
		}
		return watcher.Add(p)
	})
}

func checkAndReport(ctx context.Context, cmdCtx *CommandContext, files []string) {
	r := cmdCtx.Renderer
	reports, err := checkFiles(ctx, cmdCtx, files, 1)
	if err != nil {
		r.Error(err.Error())
		return
	}
	for _, rep := range reports {
		if len(rep.Errors) == 0 {
			r.Success(fmt.Sprintf("%s: ok (%d statements)", rep.File, rep.Statements))
			continue
		}
		for _, e := range rep.Errors {
			r.Error(fmt.Sprintf("%s:%d:%d: %s", rep.File, e.Line, e.Column, e.Message))
		}
	}
}
