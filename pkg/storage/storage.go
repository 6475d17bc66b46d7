// Package storage persists and retrieves ticket metadata on decentralized
// storage. Metadata documents are uploaded to IPFS via a Kubo HTTP API client
// and referenced by ipfs:// URIs from the TicketNFT contract; http(s) token
// URIs are resolved through a configurable gateway.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/ipfs/kubo/client/rpc"
	"go.uber.org/zap"
)

// IpfsPrefix is the URI scheme prefix recognized for IPFS content.
const IpfsPrefix = "ipfs://"

const requestTimeout = 60 * time.Second

// Client aggregates the metadata storage backends: a Kubo node for uploads
// and content-addressed reads, and an HTTP gateway for token URIs that point
// at public gateways instead of raw CIDs.
type Client struct {
	api        *rpc.HttpApi
	gatewayURL string
	httpClient *http.Client
}

// New constructs a storage client against the given Kubo API endpoint and
// HTTP gateway. A failed IPFS client init is logged and leaves uploads
// unavailable; gateway reads still work.
func New(ipfsURL, gatewayURL string) *Client {
	c := &Client{
		gatewayURL: gatewayURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
	api, err := newIPFSClient(ipfsURL)
	if err != nil {
		zap.L().Warn("ipfs client unavailable, metadata uploads disabled",
			zap.String("url", ipfsURL), zap.Error(err))
		return c
	}
	c.api = api
	return c
}

// ReadURI fetches the document behind a token URI. ipfs:// URIs go through
// the Kubo node with CID verification; http(s) URIs through a plain gateway
// GET.
func (c *Client) ReadURI(ctx context.Context, uri string) ([]byte, error) {
	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		return c.fetchGateway(ctx, uri)
	}
	return c.fetchIPFS(ctx, formatHash(uri))
}

// fetchGateway performs a plain HTTP GET for gateway-addressed metadata.
func (c *Client) fetchGateway(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway fetch %s: %w", url, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			zap.L().Error("error closing gateway response", zap.Error(err))
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway fetch %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// GatewayURL converts an ipfs:// URI into a link resolvable by a browser.
func (c *Client) GatewayURL(uri string) string {
	if !strings.HasPrefix(uri, IpfsPrefix) {
		return uri
	}
	return strings.TrimSuffix(c.gatewayURL, "/") + "/" + formatHash(uri)
}

// formatHash strips the URI scheme prefix and any non-alphanumeric characters
// (except '=') to produce a clean CID string.
func formatHash(hash string) string {
	hash = strings.Replace(hash, IpfsPrefix, "", -1)
	return removeSpecialCharacters(hash)
}

func removeSpecialCharacters(pString string) string {
	reg := regexp.MustCompile("[^a-zA-Z0-9=]")
	return reg.ReplaceAllString(pString, "")
}
