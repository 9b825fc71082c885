package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"impulse/internal/diag"
	"impulse/internal/source"
)

// CompileDir compiles every source file under srcRoot in parallel. Results
// are positional, in the sorted file order. Files that fail to load yield a
// Failed result whose bag carries an IO diagnostic, so one unreadable file
// never aborts the build.
func CompileDir(ctx context.Context, srcRoot, projectRoot, outDir string, opts Options) (*source.FileSet, []FileResult, error) {
	files, err := ListSourceFiles(srcRoot, projectRoot, outDir)
	if err != nil {
		return nil, nil, err
	}

	fileSet := source.NewFileSetWithBase(srcRoot)
	if len(files) == 0 {
		return fileSet, nil, nil
	}

	fileIDs := make(map[string]source.FileID, len(files))
	loadErrors := make(map[string]error, len(files))
	for _, path := range files {
		id, loadErr := fileSet.Load(path)
		if loadErr != nil {
			loadErrors[path] = loadErr
			continue
		}
		fileIDs[path] = id
	}

	results, err := compileFiles(ctx, fileSet, files, fileIDs, loadErrors, opts)
	return fileSet, results, err
}

// compileFiles fans the per-file pipeline out over an errgroup. Each
// goroutine writes only its own index, so no mutex guards results.
func compileFiles(
	ctx context.Context,
	fileSet *source.FileSet,
	files []string,
	fileIDs map[string]source.FileID,
	loadErrors map[string]error,
	opts Options,
) ([]FileResult, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			if loadErr, failed := loadErrors[path]; failed {
				bag := diag.NewBag(opts.maxDiagnostics())
				bag.Add(diag.NewError(diag.IOLoadFile, source.Span{},
					"failed to load file: "+loadErr.Error()))
				results[i] = FileResult{Path: path, Bag: bag, Failed: true}
				return nil
			}

			res, err := CompileFile(fileSet, fileIDs[path], opts)
			if err != nil {
				return err
			}
			results[i] = *res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
