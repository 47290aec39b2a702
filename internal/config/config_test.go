package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_fileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
environment: prod
servicenow:
  base_url: https://snow.example.com
  username: autooctopus
  password: secret
  automation_user_id: user-1
  assignment_group_id: group-1
octopus:
  base_url: https://octopus.example.com
  api_key: API-KEY
  production_environment_id: Environments-1
webex:
  url: https://webexapis.com/v1/messages
  room_id: room-1
  token: tok
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Environment != "prod" {
		t.Errorf("Environment = %q", cfg.Environment)
	}
	if cfg.ServiceNow.QueryEndpoint != "/api/now/table/change_task" {
		t.Errorf("QueryEndpoint default = %q", cfg.ServiceNow.QueryEndpoint)
	}
	if cfg.Octopus.ProjectsEndpoint != "/api/projects/all" {
		t.Errorf("ProjectsEndpoint default = %q", cfg.Octopus.ProjectsEndpoint)
	}
	if cfg.ExpiryDeltaMinutes != 30 {
		t.Errorf("ExpiryDeltaMinutes default = %d", cfg.ExpiryDeltaMinutes)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if !cfg.NotifyConfigured() {
		t.Error("NotifyConfigured = false")
	}
}

func TestLoad_envOverridesFile(t *testing.T) {
	path := writeConfig(t, `
servicenow:
  base_url: https://from-file.example.com
`)
	t.Setenv("SNOW_BASE_URL", "https://from-env.example.com")
	t.Setenv("OCTOPUS_DEPLOY_API_KEY", "API-ENV")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServiceNow.BaseURL != "https://from-env.example.com" {
		t.Errorf("BaseURL = %q, want env override", cfg.ServiceNow.BaseURL)
	}
	if cfg.Octopus.APIKey != "API-ENV" {
		t.Errorf("APIKey = %q", cfg.Octopus.APIKey)
	}
}

func TestLoad_missingFileIsFine(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Environment != "development" {
		t.Errorf("Environment = %q", cfg.Environment)
	}
}

func TestValidate_listsEveryMissingKey(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	err = cfg.Validate()
	if err == nil {
		t.Fatal("Validate: expected error")
	}
	for _, key := range []string{
		"SNOW_BASE_URL", "SNOW_USERNAME", "SNOW_PASSWORD",
		"SNOW_AUTOMATION_USER_ID", "SNOW_ASSIGNMENT_GROUP_ID",
		"OCTOPUS_DEPLOY_BASE_URL", "OCTOPUS_DEPLOY_API_KEY",
		"OCTOPUS_PRODUCTION_ENVIRONMENT_ID",
	} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("Validate error missing %s: %v", key, err)
		}
	}
}

func TestLoad_badYAML(t *testing.T) {
	path := writeConfig(t, "environment: [unclosed")
	if _, err := Load(path); err == nil {
		t.Error("Load accepted malformed yaml")
	}
}
