package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// Attribute is one trait in an ERC-721 metadata document.
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

// TicketMetadata is the JSON document stored behind a ticket's token URI,
// shaped to the ERC-721 metadata convention so marketplaces render it.
type TicketMetadata struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image,omitempty"`
	EventID     int64       `json:"event_id"`
	TicketType  string      `json:"ticket_type"`
	SeatInfo    string      `json:"seat_info"`
	Attributes  []Attribute `json:"attributes,omitempty"`
}

// UploadTicketMetadata serializes the metadata document and uploads it to
// IPFS, returning the ipfs:// URI to mint into the token.
func (c *Client) UploadTicketMetadata(ctx context.Context, meta *TicketMetadata) (string, error) {
	data, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal ticket metadata: %w", err)
	}
	return c.upload(ctx, data)
}

// ReadTicketMetadata fetches and decodes the metadata document behind a token
// URI.
func (c *Client) ReadTicketMetadata(ctx context.Context, uri string) (*TicketMetadata, error) {
	raw, err := c.ReadURI(ctx, uri)
	if err != nil {
		return nil, err
	}
	var meta TicketMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("decode ticket metadata %s: %w", uri, err)
	}
	return &meta, nil
}
