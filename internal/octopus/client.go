// Package octopus is a read-mostly client for the deployment system's REST
// API: project and release catalogs, release progression, queued server
// tasks, and deployment create/cancel.
package octopus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sunieldevarapu/deployment-scheduler/internal/config"
)

// pageSize bounds every list call. The per-run task volume is far below it.
const pageSize = 999

// Client calls the Octopus Deploy REST API. It is safe for concurrent use.
type Client struct {
	cfg        config.Octopus
	HTTPClient *http.Client // optional; nil uses http.DefaultClient
}

func New(cfg config.Octopus, httpClient *http.Client) *Client {
	return &Client{cfg: cfg, HTTPClient: httpClient}
}

func (c *Client) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, bodyReader)
	if err != nil {
		return err
	}
	req.Header.Set("X-Octopus-ApiKey", c.cfg.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client().Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("octopus %s %s: status %d", method, req.URL.Path, resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Projects returns the project catalog. The catalog may change between runs,
// so callers snapshot it once per run and never cache it further.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	var out struct {
		Items []Project `json:"Items"`
	}
	path := fmt.Sprintf("%s?take=%d", c.cfg.ProjectsEndpoint, pageSize)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Releases lists a project's releases, most recent first.
func (c *Client) Releases(ctx context.Context, projectID string) ([]Release, error) {
	var out struct {
		Items []Release `json:"Items"`
	}
	path := fmt.Sprintf("%s/%s/releases?take=%d", c.cfg.ProjectsEndpoint, url.PathEscape(projectID), pageSize)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Progression returns the environment-progression phases for a release.
func (c *Client) Progression(ctx context.Context, releaseID string) (Progression, error) {
	var out Progression
	path := c.cfg.ReleasesEndpoint + "/" + url.PathEscape(releaseID) + "/progression"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return Progression{}, err
	}
	return out, nil
}

// ServerTasks lists in-flight and recent server tasks, queued deployments
// included.
func (c *Client) ServerTasks(ctx context.Context) ([]ServerTask, error) {
	var out struct {
		Items []ServerTask `json:"Items"`
	}
	path := fmt.Sprintf("%s?take=%d", c.cfg.TasksEndpoint, pageSize)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// CreateDeployment schedules a deployment and returns the created resource.
func (c *Client) CreateDeployment(ctx context.Context, req DeploymentRequest) (Deployment, error) {
	var out Deployment
	if err := c.doJSON(ctx, http.MethodPost, c.cfg.DeploymentsEndpoint, req, &out); err != nil {
		return Deployment{}, err
	}
	return out, nil
}

// CancelTask cancels a queued server task by id.
func (c *Client) CancelTask(ctx context.Context, id string) error {
	path := c.cfg.TasksEndpoint + "/" + url.PathEscape(id) + "/cancel"
	return c.doJSON(ctx, http.MethodPost, path, nil, nil)
}
