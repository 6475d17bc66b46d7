package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/ipfs/kubo/client/rpc"
	"go.uber.org/zap"
)

// fetchIPFS retrieves content by CID via `ipfs cat` and performs a
// best-effort verification by recomputing a CID from (original CID bytes +
// content) and comparing it with the requested one. A mismatch is logged, not
// fatal: gateway-pinned content sometimes re-chunks differently.
func (c *Client) fetchIPFS(ctx context.Context, hash string) ([]byte, error) {
	if c.api == nil {
		return nil, fmt.Errorf("ipfs client not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	cID, err := cid.Parse(hash)
	if err != nil {
		return nil, fmt.Errorf("parse cid %q: %w", hash, err)
	}

	resp, err := c.api.Request("cat", cID.String()).Send(ctx)
	if err != nil {
		return nil, fmt.Errorf("ipfs cat %s: %w", hash, err)
	}
	defer func() {
		if err := resp.Close(); err != nil {
			zap.L().Error("error closing ipfs response", zap.String("cid", hash), zap.Error(err))
		}
	}()
	if resp.Error != nil {
		return nil, fmt.Errorf("ipfs cat %s: %w", hash, resp.Error)
	}

	content, err := io.ReadAll(resp.Output)
	if err != nil {
		return nil, fmt.Errorf("read ipfs content %s: %w", hash, err)
	}

	if _, check, err := cid.CidFromBytes(append(cID.Bytes(), content...)); err == nil && !check.Equals(cID) {
		zap.L().Warn("ipfs content hash mismatch",
			zap.String("expected", cID.String()),
			zap.String("computed", check.String()))
	}

	return content, nil
}

// upload adds raw bytes to IPFS and returns the ipfs:// URI.
func (c *Client) upload(ctx context.Context, data []byte) (string, error) {
	if c.api == nil {
		return "", fmt.Errorf("ipfs client not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req := c.api.Request("add")
	req.Body(bytes.NewReader(data))

	resp, err := req.Send(ctx)
	if err != nil {
		return "", fmt.Errorf("ipfs add: %w", err)
	}
	defer func() {
		if err := resp.Close(); err != nil {
			zap.L().Error("error closing ipfs response", zap.Error(err))
		}
	}()
	if resp.Error != nil {
		return "", fmt.Errorf("ipfs add: %w", resp.Error)
	}

	body, err := io.ReadAll(resp.Output)
	if err != nil {
		return "", fmt.Errorf("read ipfs add response: %w", err)
	}

	var addResp struct {
		Hash string `json:"Hash"`
	}
	if err := json.Unmarshal(body, &addResp); err != nil {
		return "", fmt.Errorf("parse ipfs add response: %w", err)
	}

	zap.L().Debug("uploaded to ipfs", zap.String("hash", addResp.Hash))
	return IpfsPrefix + addResp.Hash, nil
}

// newIPFSClient constructs a Kubo HTTP API client pointed at url. The short
// dial timeout keeps startup fast when no node is running.
func newIPFSClient(url string) (*rpc.HttpApi, error) {
	httpClient := http.Client{
		Timeout: 5 * time.Second,
	}
	return rpc.NewURLApiWithClient(url, &httpClient)
}
