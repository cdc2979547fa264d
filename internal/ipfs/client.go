package ipfs

import (
	"context"
	"fmt"
	nethttp "net/http"
	"net/url"
	"strings"

	"github.com/judgeabook/judge-a-book/internal/config"
	"github.com/judgeabook/judge-a-book/internal/http"
	ioutils "github.com/judgeabook/judge-a-book/internal/io"
	"github.com/judgeabook/judge-a-book/internal/model"
	"go.uber.org/zap"
)

const apiKeyHeader = "project_id"

// Options tunes how downloaded covers are handled.
type Options struct {
	// MaxSize scales covers down to fit MaxSize x MaxSize before writing.
	// Zero writes the downloaded bytes unchanged.
	MaxSize int

	// OnBytes is called as cover bytes arrive with the bytes received
	// since the previous call. It may be called from several goroutines.
	OnBytes func(n int64)
}

// Client fetches blobs by CID and persists them as cover files.
type Client struct {
	http    *http.Client
	baseURL string
	header  nethttp.Header
	images  *ioutils.ImageService
	opts    Options
	log     *zap.Logger
}

// NewClient creates a gateway client from the shared endpoint
// configuration. The asset API key is only sent when one is configured.
func NewClient(endpoints config.Endpoints, opts Options, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	header := nethttp.Header{}
	if endpoints.AssetAPIKey != "" {
		header[apiKeyHeader] = []string{endpoints.AssetAPIKey}
	}
	return &Client{
		http:    http.NewClient(endpoints.Timeout, endpoints.UserAgent),
		baseURL: endpoints.AssetBaseURL,
		header:  header,
		images:  ioutils.NewImageService(),
		opts:    opts,
		log:     log,
	}
}

// DownloadCover fetches the blob named cid and writes it to
// prefix + cid + ".png", creating or truncating the file.
//
// A non-2xx status or a write failure is returned as an error; nothing is
// written when the request fails.
func (c *Client) DownloadCover(ctx context.Context, cid, prefix string) (string, error) {
	reqURL := c.coverURL(cid)

	var onProgress func(written, total int64)
	if c.opts.OnBytes != nil {
		var reported int64
		onProgress = func(written, _ int64) {
			c.opts.OnBytes(written - reported)
			reported = written
		}
	}

	data, err := c.http.Download(ctx, reqURL, c.header, onProgress)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", cid, err)
	}

	data = c.process(ctx, cid, data)

	path := model.CoverPath(prefix, cid)
	if err := ioutils.WriteFile(ctx, path, data); err != nil {
		return "", fmt.Errorf("failed to write cover %s: %w", cid, err)
	}

	c.log.Debug("cover written", zap.String("cid", cid), zap.String("path", path), zap.Int("bytes", len(data)))
	return path, nil
}

// coverURL joins cid onto the gateway base URL. Path references such as
// "Qm.../cover.png" keep their slashes; each segment is escaped on its own.
func (c *Client) coverURL(cid string) string {
	segments := strings.Split(cid, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return c.baseURL + "/" + strings.Join(segments, "/")
}

// process applies the configured resize. Covers that cannot be decoded
// are kept byte for byte.
func (c *Client) process(ctx context.Context, cid string, data []byte) []byte {
	info, err := c.images.Probe(data)
	if err != nil {
		c.log.Warn("downloaded cover is not a recognised image", zap.String("cid", cid), zap.Error(err))
		return data
	}
	c.log.Debug("probed cover", zap.String("cid", cid), zap.String("format", info.Format), zap.Int("width", info.Width), zap.Int("height", info.Height))

	if c.opts.MaxSize <= 0 {
		return data
	}

	resized, err := c.images.FitPNG(ctx, data, c.opts.MaxSize, c.opts.MaxSize)
	if err != nil {
		c.log.Warn("failed to resize cover, keeping original", zap.String("cid", cid), zap.Error(err))
		return data
	}
	return resized
}
