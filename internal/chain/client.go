package chain

import (
	"context"
	"fmt"
	nethttp "net/http"
	"net/url"

	"github.com/judgeabook/judge-a-book/internal/chain/dto"
	"github.com/judgeabook/judge-a-book/internal/config"
	"github.com/judgeabook/judge-a-book/internal/http"
	"github.com/judgeabook/judge-a-book/internal/model"
	"go.uber.org/zap"
)

const (
	// CollectionsURL lists every registered book collection. It is fixed
	// and does not follow the configured chain base URL.
	CollectionsURL = "https://api.book.io/api/v0/collections"

	// pageSize is the chain API's maximum page length.
	pageSize = 100

	apiKeyHeader = "project_id"
)

// Client queries the collection registry and the chain API.
//
// Example usage:
//
//	client := chain.NewClient(settings.Endpoints(), log.Named("chain"))
//
//	ok, err := client.ValidateCollection(ctx, policyID)
//	assets, err := client.ListAssets(ctx, policyID)
//	meta, found := client.GetAssetMetadata(ctx, assets[0])
type Client struct {
	http           *http.Client
	baseURL        string
	collectionsURL string
	header         nethttp.Header
	log            *zap.Logger
}

// NewClient creates a chain client from the shared endpoint configuration.
func NewClient(endpoints config.Endpoints, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		http:           http.NewClient(endpoints.Timeout, endpoints.UserAgent),
		baseURL:        endpoints.ChainBaseURL,
		collectionsURL: CollectionsURL,
		header:         nethttp.Header{apiKeyHeader: {endpoints.ChainAPIKey}},
		log:            log,
	}
}

// ValidateCollection reports whether collectionID is a registered collection.
//
// The registry is queried without credentials. A non-2xx status, a
// transport failure or a malformed body is returned as an error.
func (c *Client) ValidateCollection(ctx context.Context, collectionID string) (bool, error) {
	var resp dto.CollectionsResponse
	if err := c.http.GetJSON(ctx, c.collectionsURL, nil, &resp); err != nil {
		return false, err
	}

	found := resp.Contains(collectionID)
	c.log.Debug("validated collection", zap.String("collection", collectionID), zap.Bool("found", found), zap.Int("registered", len(resp.Data)))
	return found, nil
}

// ListAssets returns the ids of every asset minted under collectionID.
//
// Pages are requested in order until one comes back with other than
// exactly the page size. A page that repeats the previous one ends the
// listing too, since some chain APIs ignore the page parameter. Any failing
// page fails the whole listing.
func (c *Client) ListAssets(ctx context.Context, collectionID string) ([]string, error) {
	var assets []string
	var lastFirst string
	for page := 1; ; page++ {
		reqURL := fmt.Sprintf("%s/assets/policy/%s?page=%d", c.baseURL, url.PathEscape(collectionID), page)

		var batch []dto.Asset
		if err := c.http.GetJSON(ctx, reqURL, c.header, &batch); err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			return assets, nil
		}
		if page > 1 && batch[0].Asset == lastFirst {
			c.log.Warn("chain API repeated a page, paging ignored", zap.String("collection", collectionID), zap.Int("page", page))
			return assets, nil
		}
		lastFirst = batch[0].Asset

		for _, a := range batch {
			assets = append(assets, a.Asset)
		}

		c.log.Debug("listed assets", zap.String("collection", collectionID), zap.Int("page", page), zap.Int("count", len(batch)))
		if len(batch) != pageSize {
			return assets, nil
		}
	}
}

// GetAssetMetadata fetches and decodes assetID's on-chain metadata.
//
// Lookups are best effort: any failure is logged and reported as
// found == false, so one broken asset never aborts a batch.
func (c *Client) GetAssetMetadata(ctx context.Context, assetID string) (*model.AssetMetadata, bool) {
	reqURL := fmt.Sprintf("%s/assets/%s", c.baseURL, url.PathEscape(assetID))

	var resp dto.AssetResponse
	if err := c.http.GetJSON(ctx, reqURL, c.header, &resp); err != nil {
		c.log.Debug("asset metadata unavailable", zap.String("asset", assetID), zap.Error(err))
		return nil, false
	}

	meta := resp.ToAssetMetadata()
	if meta == nil {
		c.log.Debug("asset has no on-chain metadata", zap.String("asset", assetID))
		return nil, false
	}
	return meta, true
}
