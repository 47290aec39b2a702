package octopus

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sunieldevarapu/deployment-scheduler/internal/config"
)

func testConfig(baseURL string) config.Octopus {
	return config.Octopus{
		BaseURL:                 baseURL,
		APIKey:                  "API-KEY",
		ProductionEnvironmentID: "Environments-1",
		TasksEndpoint:           "/api/tasks",
		ProjectsEndpoint:        "/api/projects/all",
		ReleasesEndpoint:        "/api/releases",
		DeploymentsEndpoint:     "/api/deployments",
	}
}

func TestProjects(t *testing.T) {
	t.Parallel()

	var gotKey, gotTake string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Octopus-ApiKey")
		gotTake = r.URL.Query().Get("take")
		_, _ = w.Write([]byte(`{"Items":[{"Id":"Projects-1","Name":"OrderService"}]}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), nil)
	projects, err := c.Projects(context.Background())
	if err != nil {
		t.Fatalf("Projects: %v", err)
	}
	if len(projects) != 1 || projects[0].ID != "Projects-1" || projects[0].Name != "OrderService" {
		t.Fatalf("Projects = %+v", projects)
	}
	if gotKey != "API-KEY" {
		t.Errorf("X-Octopus-ApiKey = %q", gotKey)
	}
	if gotTake != "999" {
		t.Errorf("take = %q", gotTake)
	}
}

func TestReleases(t *testing.T) {
	t.Parallel()

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"Items":[
			{"Id":"Releases-9","Version":"2.3.1","ProjectId":"Projects-1","ChannelId":"Channels-1"}
		]}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), nil)
	releases, err := c.Releases(context.Background(), "Projects-1")
	if err != nil {
		t.Fatalf("Releases: %v", err)
	}
	if gotPath != "/api/projects/all/Projects-1/releases" {
		t.Errorf("path = %q", gotPath)
	}
	if len(releases) != 1 || releases[0].Version != "2.3.1" {
		t.Fatalf("Releases = %+v", releases)
	}
}

func TestProgression(t *testing.T) {
	t.Parallel()

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"Phases":[{"Name":"Prod","Blocked":false,"Progress":"Current"}]}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), nil)
	prog, err := c.Progression(context.Background(), "Releases-9")
	if err != nil {
		t.Fatalf("Progression: %v", err)
	}
	if gotPath != "/api/releases/Releases-9/progression" {
		t.Errorf("path = %q", gotPath)
	}
	if len(prog.Phases) != 1 || prog.Phases[0].Name != "Prod" {
		t.Fatalf("Progression = %+v", prog)
	}
}

func TestCreateDeployment(t *testing.T) {
	t.Parallel()

	var gotBody DeploymentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"Id":"Deployments-77"}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), nil)
	req := DeploymentRequest{
		ReleaseID:       "Releases-9",
		ProjectID:       "Projects-1",
		ChannelID:       "Channels-1",
		EnvironmentID:   "Environments-1",
		QueueTime:       "2024-01-15T06:00:00-06:00",
		QueueTimeExpiry: "2024-01-15T06:30:00-06:00",
	}
	d, err := c.CreateDeployment(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateDeployment: %v", err)
	}
	if d.ID != "Deployments-77" {
		t.Errorf("ID = %q", d.ID)
	}
	if gotBody != req {
		t.Errorf("body = %+v, want %+v", gotBody, req)
	}
}

func TestCreateDeployment_failure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), nil)
	if _, err := c.CreateDeployment(context.Background(), DeploymentRequest{}); err == nil {
		t.Fatal("expected error from 400")
	}
}

func TestCancelTask(t *testing.T) {
	t.Parallel()

	var gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), nil)
	if err := c.CancelTask(context.Background(), "ServerTasks-5"); err != nil {
		t.Fatalf("CancelTask: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/api/tasks/ServerTasks-5/cancel" {
		t.Errorf("request = %s %s", gotMethod, gotPath)
	}
}

func TestServerTasks(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Items":[
			{"Id":"ServerTasks-5","Description":"Deploy OrderService release 2.3.1 to Prod","State":"Queued","QueueTime":"2024-01-15T12:00:00.000+00:00"}
		]}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), nil)
	tasks, err := c.ServerTasks(context.Background())
	if err != nil {
		t.Fatalf("ServerTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].State != StateQueued {
		t.Fatalf("ServerTasks = %+v", tasks)
	}
}
