// Package config loads scheduler configuration from an optional YAML file
// with environment-variable overrides. Validation failures are fatal: the
// engine must not start a run with missing credentials or endpoints.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ServiceNow holds ticketing-system connection settings.
type ServiceNow struct {
	BaseURL           string `yaml:"base_url"`
	Username          string `yaml:"username"`
	Password          string `yaml:"password"`
	AutomationUserID  string `yaml:"automation_user_id"`
	AssignmentGroupID string `yaml:"assignment_group_id"`
	QueryEndpoint     string `yaml:"query_endpoint"`
	UpdateEndpoint    string `yaml:"update_endpoint"`
}

// Octopus holds deployment-system connection settings.
type Octopus struct {
	BaseURL                 string `yaml:"base_url"`
	APIKey                  string `yaml:"api_key"`
	ProductionEnvironmentID string `yaml:"production_environment_id"`
	TasksEndpoint           string `yaml:"tasks_endpoint"`
	ProjectsEndpoint        string `yaml:"projects_endpoint"`
	ReleasesEndpoint        string `yaml:"releases_endpoint"`
	DeploymentsEndpoint     string `yaml:"deployments_endpoint"`
}

// Webex holds the notification sink settings. All three must be set for
// notifications to be delivered; otherwise a no-op sink is used.
type Webex struct {
	URL    string `yaml:"url"`
	RoomID string `yaml:"room_id"`
	Token  string `yaml:"token"`
}

type Config struct {
	Environment        string     `yaml:"environment"`
	Timezone           string     `yaml:"timezone"`
	ExpiryDeltaMinutes int        `yaml:"expiry_delta_minutes"`
	ServiceNow         ServiceNow `yaml:"servicenow"`
	Octopus            Octopus    `yaml:"octopus"`
	Webex              Webex      `yaml:"webex"`
}

// Load reads the config file at path (skipped when path is empty or the file
// is missing), applies defaults, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setenv := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setenv(&c.Environment, "DEPLOYSCHED_ENV")
	setenv(&c.Timezone, "DEPLOYSCHED_TIMEZONE")
	if v := os.Getenv("DEPLOYSCHED_EXPIRY_DELTA_MINUTES"); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			c.ExpiryDeltaMinutes = m
		}
	}

	setenv(&c.ServiceNow.BaseURL, "SNOW_BASE_URL")
	setenv(&c.ServiceNow.Username, "SNOW_USERNAME")
	setenv(&c.ServiceNow.Password, "SNOW_PASSWORD")
	setenv(&c.ServiceNow.AutomationUserID, "SNOW_AUTOMATION_USER_ID")
	setenv(&c.ServiceNow.AssignmentGroupID, "SNOW_ASSIGNMENT_GROUP_ID")
	setenv(&c.ServiceNow.QueryEndpoint, "SNOW_QUERY_CHANGE_TASK_ENDPOINT")
	setenv(&c.ServiceNow.UpdateEndpoint, "SNOW_UPDATE_CHANGE_TASK_ENDPOINT")

	setenv(&c.Octopus.BaseURL, "OCTOPUS_DEPLOY_BASE_URL")
	setenv(&c.Octopus.APIKey, "OCTOPUS_DEPLOY_API_KEY")
	setenv(&c.Octopus.ProductionEnvironmentID, "OCTOPUS_PRODUCTION_ENVIRONMENT_ID")
	setenv(&c.Octopus.TasksEndpoint, "OCTOPUS_TASKS_ENDPOINT")
	setenv(&c.Octopus.ProjectsEndpoint, "OCTOPUS_PROJECTS_ENDPOINT")
	setenv(&c.Octopus.ReleasesEndpoint, "OCTOPUS_RELEASE_ENDPOINT")
	setenv(&c.Octopus.DeploymentsEndpoint, "OCTOPUS_DEPLOYMENT_ENDPOINT")

	setenv(&c.Webex.URL, "WEBEX_URL")
	setenv(&c.Webex.RoomID, "WEBEX_ROOM_ID")
	setenv(&c.Webex.Token, "WEBEX_TOKEN")
}

func (c *Config) applyDefaults() {
	def := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	def(&c.Environment, "development")
	def(&c.ServiceNow.QueryEndpoint, "/api/now/table/change_task")
	def(&c.ServiceNow.UpdateEndpoint, "/api/now/table/change_task")
	def(&c.Octopus.TasksEndpoint, "/api/tasks")
	def(&c.Octopus.ProjectsEndpoint, "/api/projects/all")
	def(&c.Octopus.ReleasesEndpoint, "/api/releases")
	def(&c.Octopus.DeploymentsEndpoint, "/api/deployments")
	if c.ExpiryDeltaMinutes <= 0 {
		c.ExpiryDeltaMinutes = 30
	}
}

// Validate reports every missing required setting at once, named by its
// environment key so operators can fix the deployment in one pass.
func (c *Config) Validate() error {
	var missing []string
	req := func(v, key string) {
		if v == "" {
			missing = append(missing, key)
		}
	}
	req(c.ServiceNow.BaseURL, "SNOW_BASE_URL")
	req(c.ServiceNow.Username, "SNOW_USERNAME")
	req(c.ServiceNow.Password, "SNOW_PASSWORD")
	req(c.ServiceNow.AutomationUserID, "SNOW_AUTOMATION_USER_ID")
	req(c.ServiceNow.AssignmentGroupID, "SNOW_ASSIGNMENT_GROUP_ID")
	req(c.Octopus.BaseURL, "OCTOPUS_DEPLOY_BASE_URL")
	req(c.Octopus.APIKey, "OCTOPUS_DEPLOY_API_KEY")
	req(c.Octopus.ProductionEnvironmentID, "OCTOPUS_PRODUCTION_ENVIRONMENT_ID")
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// NotifyConfigured reports whether the Webex sink is fully configured.
func (c *Config) NotifyConfigured() bool {
	return c.Webex.URL != "" && c.Webex.RoomID != "" && c.Webex.Token != ""
}
