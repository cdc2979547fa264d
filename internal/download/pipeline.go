package download

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	gocid "github.com/ipfs/go-cid"
	"github.com/judgeabook/judge-a-book/internal/chain"
	"github.com/judgeabook/judge-a-book/internal/config"
	ioutils "github.com/judgeabook/judge-a-book/internal/io"
	"github.com/judgeabook/judge-a-book/internal/ipfs"
	"github.com/judgeabook/judge-a-book/internal/model"
	"github.com/judgeabook/judge-a-book/internal/resolver"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Registry is the chain registry the pipeline enumerates assets from.
// It is implemented by *chain.Client.
type Registry interface {
	ValidateCollection(ctx context.Context, collectionID string) (bool, error)
	ListAssets(ctx context.Context, collectionID string) ([]string, error)
	GetAssetMetadata(ctx context.Context, assetID string) (*model.AssetMetadata, bool)
}

// CoverStore downloads a cover by CID and writes it under prefix.
// It is implemented by *ipfs.Client.
type CoverStore interface {
	DownloadCover(ctx context.Context, cid, prefix string) (string, error)
}

// Options tunes pipeline concurrency.
type Options struct {
	// Workers bounds concurrent metadata lookups. Values below 1 mean 1.
	Workers int

	// DownloadWorkers bounds concurrent downloads. 1 downloads sequentially.
	DownloadWorkers int

	// StrictCIDs drops resolved strings that do not parse as IPFS CIDs.
	StrictCIDs bool
}

// Request describes one caller-side fetch.
type Request struct {
	CollectionID string
	OutDir       string
	Count        int
	Resolution   model.Resolution
}

// Pipeline fetches covers for a collection.
type Pipeline struct {
	registry Registry
	store    CoverStore
	opts     Options
	log      *zap.Logger

	assetsTotal    atomic.Int32
	assetsResolved atomic.Int32
	coversSelected atomic.Int32
	coversWritten  atomic.Int32
	receivedBytes  atomic.Int64

	onProgress func(ProgressEvent)
}

// NewPipeline creates a Pipeline over the given registry and store.
// onProgress may be nil.
func NewPipeline(registry Registry, store CoverStore, opts Options, log *zap.Logger, onProgress func(ProgressEvent)) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	opts.Workers = max(opts.Workers, 1)
	opts.DownloadWorkers = max(opts.DownloadWorkers, 1)
	return &Pipeline{
		registry:   registry,
		store:      store,
		opts:       opts,
		log:        log,
		onProgress: onProgress,
	}
}

// New wires a Pipeline to the chain registry and IPFS gateway described by
// settings.
func New(settings *config.Settings, log *zap.Logger, onProgress func(ProgressEvent)) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	endpoints := settings.Endpoints()

	p := NewPipeline(chain.NewClient(endpoints, log.Named("chain")), nil, Options{
		Workers:         settings.Workers,
		DownloadWorkers: settings.DownloadWorkers,
		StrictCIDs:      settings.StrictCIDs,
	}, log.Named("pipeline"), onProgress)

	p.store = ipfs.NewClient(endpoints, ipfs.Options{
		MaxSize: settings.Covers.MaxSize,
		OnBytes: p.addBytes,
	}, log.Named("ipfs"))

	return p
}

// Fetch brings OutDir up to req.Count covers for the collection.
//
// Covers already present under the collection's prefix count towards the
// total and are never downloaded again. Only newly written paths are
// returned.
func (p *Pipeline) Fetch(ctx context.Context, req Request) ([]string, error) {
	if err := ioutils.EnsureDir(req.OutDir); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	prefix := model.CoverPrefix(req.OutDir, req.CollectionID, req.Resolution)
	existing, err := ioutils.ExistingCovers(prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to scan existing covers: %w", err)
	}

	remaining := max(req.Count-len(existing), 0)
	if remaining == 0 {
		p.progress(ProgressEvent{Message: fmt.Sprintf("Already have %d covers, nothing to do", len(existing)), Level: LevelSuccess})
		return nil, nil
	}

	p.progress(ProgressEvent{Message: fmt.Sprintf("Found %d existing covers, fetching %d more", len(existing), remaining), Level: LevelInfo})
	return p.FetchCovers(ctx, req.CollectionID, existing, remaining, req.Resolution, prefix)
}

// FetchCovers downloads up to count covers that are not in existing and
// returns the written paths in completion order.
//
// Which covers are picked is not deterministic: the first count CIDs to
// clear the filters win. An unknown collection yields no files and no
// error. The first failed download aborts the run; paths written before
// it are returned alongside the error and left on disk.
func (p *Pipeline) FetchCovers(ctx context.Context, collectionID string, existing map[string]struct{}, count int, res model.Resolution, prefix string) ([]string, error) {
	if count <= 0 {
		return nil, nil
	}
	p.resetProgress()

	valid, err := p.registry.ValidateCollection(ctx, collectionID)
	if err != nil {
		p.progress(ProgressEvent{Message: fmt.Sprintf("Error validating collection %s: %v", collectionID, err), Level: LevelError})
		return nil, err
	}
	if !valid {
		p.log.Info("collection not found", zap.String("collection", collectionID))
		p.progress(ProgressEvent{Message: fmt.Sprintf("Collection %s is not registered", collectionID), Level: LevelWarning})
		return nil, nil
	}

	assets, err := p.registry.ListAssets(ctx, collectionID)
	if err != nil {
		p.progress(ProgressEvent{Message: fmt.Sprintf("Error listing assets: %v", err), Level: LevelError})
		return nil, err
	}
	p.assetsTotal.Store(int32(len(assets)))
	p.progress(ProgressEvent{Message: fmt.Sprintf("Found %d assets in collection %s", len(assets), collectionID), Level: LevelInfo})

	cids, err := p.selectCIDs(ctx, assets, existing, count, res)
	if err != nil {
		return nil, err
	}
	p.log.Info("selected covers",
		zap.String("collection", collectionID),
		zap.Stringer("resolution", res),
		zap.Int("selected", len(cids)),
		zap.Int("requested", count))

	files, err := p.download(ctx, cids, prefix)
	if err != nil {
		return files, err
	}

	p.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded %d covers", len(files)), Level: LevelSuccess})
	return files, nil
}

// selectCIDs resolves assets concurrently and returns the first count CIDs
// that pass the filters. Outstanding lookups are cancelled once enough
// CIDs are found and their results are discarded.
func (p *Pipeline) selectCIDs(ctx context.Context, assets []string, existing map[string]struct{}, count int, res model.Resolution) ([]string, error) {
	poolCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(poolCtx)
	g.SetLimit(p.opts.Workers)

	found := make(chan string)

	go func() {
		defer close(found)
		for _, asset := range assets {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				meta, ok := p.registry.GetAssetMetadata(gctx, asset)
				p.assetsResolved.Add(1)
				if !ok {
					return nil
				}
				cid, ok := resolver.ResolveCID(meta, res)
				if !ok {
					return nil
				}
				select {
				case found <- cid:
				case <-gctx.Done():
				}
				return nil
			})
		}
		g.Wait()
	}()

	selected := make([]string, 0, count)
	seen := make(map[string]struct{}, count)
	for cid := range found {
		if len(selected) == count || !p.accept(cid, existing, seen) {
			continue
		}
		seen[cid] = struct{}{}
		selected = append(selected, cid)
		p.coversSelected.Add(1)
		p.progress(ProgressEvent{Message: fmt.Sprintf("Selected %s", cid), Level: LevelVerbose})
		if len(selected) == count {
			cancel()
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return selected, nil
}

// accept reports whether cid is new to both the output directory and this run.
func (p *Pipeline) accept(cid string, existing, seen map[string]struct{}) bool {
	if _, ok := existing[cid]; ok {
		return false
	}
	if _, ok := seen[cid]; ok {
		return false
	}
	if p.opts.StrictCIDs {
		if _, err := gocid.Parse(cid); err != nil {
			p.log.Warn("skipping malformed CID", zap.String("cid", cid), zap.Error(err))
			p.progress(ProgressEvent{Message: fmt.Sprintf("Skipping malformed CID %q", cid), Level: LevelWarning})
			return false
		}
	}
	return true
}

// download writes the selected covers, sequentially or through a bounded
// pool. Either way the first failure stops further downloads.
func (p *Pipeline) download(ctx context.Context, cids []string, prefix string) ([]string, error) {
	if p.opts.DownloadWorkers == 1 {
		files := make([]string, 0, len(cids))
		for _, cid := range cids {
			path, err := p.downloadCover(ctx, cid, prefix)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return files, ctxErr
				}
				return files, err
			}
			files = append(files, path)
		}
		return files, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.DownloadWorkers)

	var mu sync.Mutex
	files := make([]string, 0, len(cids))
	for _, cid := range cids {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path, err := p.downloadCover(gctx, cid, prefix)
			if err != nil {
				return err
			}
			mu.Lock()
			files = append(files, path)
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	return files, err
}

func (p *Pipeline) downloadCover(ctx context.Context, cid, prefix string) (string, error) {
	path, err := p.store.DownloadCover(ctx, cid, prefix)
	if err != nil {
		p.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading %s: %v", cid, err), Level: LevelError})
		return "", err
	}
	p.coversWritten.Add(1)
	p.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded: %s", path), Level: LevelVerbose})
	return path, nil
}
