package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"argbind/internal/diag"
	"argbind/internal/ffi"
	"argbind/internal/funcinfo"
	"argbind/internal/trace"
)

// FileExt is the extension of function info files picked up from directories.
const FileExt = ".ffi"

// ListFiles expands directories into their *.ffi files (recursively, sorted)
// and keeps plain file arguments as given. Duplicates are dropped.
func ListFiles(paths []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, p := range paths {
		st, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !st.IsDir() {
			add(p)
			continue
		}
		var found []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, FileExt) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		for _, f := range found {
			add(f)
		}
	}
	return out, nil
}

// LoadOptions configures LoadFiles.
type LoadOptions struct {
	// Jobs bounds parallel decodes; <= 0 means GOMAXPROCS.
	Jobs           int
	MaxDiagnostics int
	Strict         bool
	// Cache is optional; nil disables caching.
	Cache    *ProgramCache
	Progress ProgressSink
}

// FileResult is the outcome of loading one file.
type FileResult struct {
	Path      string
	Functions []funcinfo.FunctionInfo
	Bag       *diag.Bag
	// Err is the load or decode error, also recorded in Bag.
	Err     error
	Cached  bool
	Elapsed time.Duration
}

// Program wraps the decoded functions.
func (r *FileResult) Program() *funcinfo.Program {
	return &funcinfo.Program{Functions: r.Functions}
}

// LoadFile loads a single file. See LoadFiles.
func LoadFile(ctx context.Context, path string, opts LoadOptions) FileResult {
	return loadOne(ctx, path, opts)
}

// LoadFiles decodes every file in parallel. Results keep the order of paths.
// A failing file does not stop the others; the returned error is only set
// when ctx is canceled.
func LoadFiles(ctx context.Context, paths []string, opts LoadOptions) ([]FileResult, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "load")
	defer span.WithExtra("files", strconv.Itoa(len(paths))).End("")

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	for _, p := range paths {
		emit(opts.Progress, Event{File: p, Stage: StageRead, Status: StatusQueued})
	}

	// each worker writes only its own index
	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = loadOne(gctx, path, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func loadOne(ctx context.Context, path string, opts LoadOptions) FileResult {
	start := time.Now()
	res := FileResult{Path: path, Bag: diag.NewBag(maxDiagnostics(opts))}
	finish := func(stage Stage, status Status, err error) FileResult {
		res.Elapsed = time.Since(start)
		res.Err = err
		emit(opts.Progress, Event{File: path, Stage: stage, Status: status, Err: err, Elapsed: res.Elapsed})
		return res
	}

	emit(opts.Progress, Event{File: path, Stage: StageRead, Status: StatusWorking})
	content, err := os.ReadFile(path)
	if err != nil {
		res.Bag.Add(diag.NewError(diag.IOLoadFileError, diag.Pos{Source: path}, err.Error()))
		return finish(StageRead, StatusError, err)
	}

	key := Key(content, opts.Strict)
	if opts.Cache != nil {
		payload, ok, err := opts.Cache.Get(key)
		switch {
		case err != nil:
			res.Bag.Add(diag.New(diag.SevWarning, diag.IOCacheError, diag.Pos{Source: path}, err.Error()))
		case ok:
			res.Functions = payload.Functions
			res.Cached = true
			for _, d := range payload.Warnings {
				d.Primary.Source = path
				res.Bag.Add(d)
			}
			trace.Point(trace.FromContext(ctx), trace.ScopeProgram, trace.CurrentSpan(ctx), "cache-hit", path, nil)
			return finish(StageCache, StatusCached, nil)
		}
	}

	emit(opts.Progress, Event{File: path, Stage: StageDecode, Status: StatusWorking})
	lines, err := ffi.ReadLines(ctx, bytes.NewReader(content))
	if err != nil {
		res.Bag.Add(diag.NewError(diag.IOLoadFileError, diag.Pos{Source: path}, err.Error()))
		return finish(StageDecode, StatusError, err)
	}
	// decoder warnings go to their own bag so they can be cached without the
	// cache diagnostics of this run
	warnings := diag.NewBag(maxDiagnostics(opts))
	fns, err := ffi.DecodeContext(ctx, lines, ffi.Options{
		Strict:   opts.Strict,
		Reporter: diag.BagReporter{Bag: warnings},
		Source:   path,
	})
	res.Bag.Merge(warnings)
	if err != nil {
		res.Bag.Add(ErrorDiagnostic(err, path))
		return finish(StageDecode, StatusError, err)
	}
	res.Functions = fns

	if opts.Cache != nil {
		payload := &ProgramPayload{Source: path, Functions: fns, Warnings: warnings.Items()}
		if err := opts.Cache.Put(key, payload); err != nil {
			res.Bag.Add(diag.New(diag.SevWarning, diag.IOCacheError, diag.Pos{Source: path}, fmt.Sprintf("failed to store program: %v", err)))
		}
	}
	return finish(StageDecode, StatusDone, nil)
}

// ErrorDiagnostic converts a decode error into an error diagnostic.
func ErrorDiagnostic(err error, source string) diag.Diagnostic {
	var de *ffi.DecodeError
	if errors.As(err, &de) {
		return diag.NewError(de.Code(), de.Pos(), de.Message())
	}
	return diag.NewError(diag.IOLoadFileError, diag.Pos{Source: source}, err.Error())
}

func maxDiagnostics(opts LoadOptions) int {
	if opts.MaxDiagnostics <= 0 {
		return 100
	}
	return opts.MaxDiagnostics
}
