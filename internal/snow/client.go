// Package snow reads and updates change tasks in the ticketing system's
// Table API.
package snow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sunieldevarapu/deployment-scheduler/internal/config"
)

// Client calls the ServiceNow Table API. It is safe for concurrent use.
type Client struct {
	cfg        config.ServiceNow
	HTTPClient *http.Client // optional; nil uses http.DefaultClient
}

// New returns a client for the given ServiceNow settings.
func New(cfg config.ServiceNow, httpClient *http.Client) *Client {
	return &Client{cfg: cfg, HTTPClient: httpClient}
}

func (c *Client) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) do(ctx context.Context, method, rawURL string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, bodyReader)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.client().Do(req)
}

func (c *Client) doJSON(ctx context.Context, method, rawURL string, body, out any) error {
	resp, err := c.do(ctx, method, rawURL, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("servicenow %s %s: status %d", method, resp.Request.URL.Path, resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// queryString builds the caret-joined sysparm_query selecting active tasks of
// the automation's assignment group with a planned window, partitioned by
// whether they are already claimed by the automation identity.
func (c *Client) queryString(assigned bool) string {
	parts := []string{
		"assigned_toISEMPTY",
		"active=true",
		"assignment_group=" + c.cfg.AssignmentGroupID,
		"planned_start_dateISNOTEMPTY",
		"planned_end_dateISNOTEMPTY",
	}
	if assigned {
		parts[0] = "assigned_to=" + c.cfg.AutomationUserID
	}
	return url.QueryEscape(strings.Join(parts, "^"))
}

// ChangeTasks lists change tasks, claimed (assigned=true) or unclaimed.
// Tasks whose description contains IGNORE in any case are dropped so the
// lifecycle controller never sees them.
func (c *Client) ChangeTasks(ctx context.Context, assigned bool) ([]ChangeTask, error) {
	var out struct {
		Result []ChangeTask `json:"result"`
	}
	u := c.cfg.BaseURL + c.cfg.QueryEndpoint + "?sysparm_query=" + c.queryString(assigned)
	if err := c.doJSON(ctx, http.MethodGet, u, nil, &out); err != nil {
		return nil, err
	}

	tasks := out.Result[:0]
	for _, t := range out.Result {
		if strings.Contains(strings.ToUpper(t.ShortDescription), "IGNORE") {
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Assign claims a task for the automation identity or returns it to the human
// queue. Claiming flips the task to Implementation/Ready and appends the
// PROCESSED marker; returning flips it to Planning/Open, clears the assignee
// and strips the marker. Standard changes never get a description write.
func (c *Client) Assign(ctx context.Context, task ChangeTask, toQueue bool) error {
	std, err := c.IsStandardChange(ctx, task)
	if err != nil {
		return err
	}

	body := map[string]string{
		"change_task_type": "Implementation",
		"state":            "Ready",
		"assigned_to":      c.cfg.AutomationUserID,
	}
	if toQueue {
		body["change_task_type"] = "Planning"
		body["state"] = "Open"
		body["assigned_to"] = ""
	}
	if !std {
		if toQueue {
			body["short_description"] = StripProcessed(task.ShortDescription)
		} else {
			body["short_description"] = SetProcessed(task.ShortDescription)
		}
	}

	u := c.cfg.BaseURL + c.cfg.UpdateEndpoint + "/" + url.PathEscape(task.SysID)
	return c.doJSON(ctx, http.MethodPut, u, body, nil)
}

// IsStandardChange reports whether a task belongs to an immutable standard
// change: its description carries the standard-change content marker and its
// parent change record has type "standard". The parent is only fetched when
// the content marker is present.
func (c *Client) IsStandardChange(ctx context.Context, task ChangeTask) (bool, error) {
	if !hasStandardChangeMarker(task.ShortDescription) {
		return false, nil
	}
	if task.ChangeRequest.Link == "" {
		return false, nil
	}
	var out struct {
		Result changeRecord `json:"result"`
	}
	if err := c.doJSON(ctx, http.MethodGet, task.ChangeRequest.Link, nil, &out); err != nil {
		return false, err
	}
	return out.Result.Type == "standard", nil
}
