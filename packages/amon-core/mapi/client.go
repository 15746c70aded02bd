// Package mapi is the HTTP facade for the cloud machine-info API: the
// external collaborator spec.md §1 calls out as "interface-only" (list
// servers/VMs, used for authz/bootstrap). It follows the usual small
// HTTP-client idiom: an interface-typed client, a newRequest/doJSON pair,
// and basic-auth-style headers injected once per request.
package mapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/arc-self/amon/packages/amon-core/amonerr"
)

// Client is the interface spec.md §4.C's authorizer depends on —
// ownership/operator/existence checks only, nothing else this core
// needs from the cloud's machine inventory.
type Client interface {
	// MachineOwner returns the account UUID that owns machine, or
	// ResourceNotFound if the machine does not exist in the cloud at all.
	MachineOwner(ctx context.Context, machine string) (account string, err error)
	// ServerExists reports whether server is a known compute node.
	ServerExists(ctx context.Context, server string) (bool, error)
}

// Config holds spec.md §6's mapi.{url,username,password} keys.
type Config struct {
	URL      string
	Username string
	Password string
}

type httpClient struct {
	cfg  Config
	http *http.Client
}

func New(cfg Config) Client {
	return &httpClient{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *httpClient) newRequest(ctx context.Context, method, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.URL+path, bytes.NewReader(nil))
	if err != nil {
		return nil, fmt.Errorf("mapi: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.Username != "" {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}
	return req, nil
}

func (c *httpClient) doJSON(req *http.Request, dest any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return amonerr.Wrap(amonerr.Unavailable, "mapi: request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return amonerr.New(amonerr.ResourceNotFound, "mapi: resource not found")
	}
	if resp.StatusCode >= 500 {
		return amonerr.New(amonerr.Unavailable, fmt.Sprintf("mapi: upstream status %d", resp.StatusCode))
	}
	if resp.StatusCode >= 400 {
		return amonerr.New(amonerr.InvalidArgument, fmt.Sprintf("mapi: upstream status %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return amonerr.Wrap(amonerr.Unavailable, "mapi: read body failed", err)
	}
	if dest != nil {
		if err := json.Unmarshal(raw, dest); err != nil {
			return amonerr.Wrap(amonerr.InternalError, "mapi: decode response failed", err)
		}
	}
	return nil
}

type machineResponse struct {
	OwnerUUID string `json:"owner_uuid"`
}

func (c *httpClient) MachineOwner(ctx context.Context, machine string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/machines/"+machine)
	if err != nil {
		return "", err
	}
	var resp machineResponse
	if err := c.doJSON(req, &resp); err != nil {
		return "", err
	}
	return resp.OwnerUUID, nil
}

func (c *httpClient) ServerExists(ctx context.Context, server string) (bool, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/servers/"+server)
	if err != nil {
		return false, err
	}
	if err := c.doJSON(req, nil); err != nil {
		if amonerr.KindOf(err) == amonerr.ResourceNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
