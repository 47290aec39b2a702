package octopus

// Wire models follow the deployment system's field casing.

type Project struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
}

type Release struct {
	ID        string `json:"Id"`
	Version   string `json:"Version"`
	ProjectID string `json:"ProjectId"`
	ChannelID string `json:"ChannelId"`
}

// Phase is one stage of a release's environment progression.
type Phase struct {
	Name     string `json:"Name"`
	Blocked  bool   `json:"Blocked"`
	Progress string `json:"Progress"`
}

type Progression struct {
	Phases []Phase `json:"Phases"`
}

// ServerTask is an in-flight or completed server-side operation; queued
// deployments appear here.
type ServerTask struct {
	ID          string `json:"Id"`
	Description string `json:"Description"`
	State       string `json:"State"`
	QueueTime   string `json:"QueueTime"`
}

// DeploymentRequest creates a scheduled promotion.
type DeploymentRequest struct {
	ReleaseID       string `json:"ReleaseId"`
	ProjectID       string `json:"ProjectId"`
	ChannelID       string `json:"ChannelId"`
	EnvironmentID   string `json:"EnvironmentId"`
	QueueTime       string `json:"QueueTime"`
	QueueTimeExpiry string `json:"QueueTimeExpiry"`
}

type Deployment struct {
	ID string `json:"Id"`
}

const (
	StateQueued   = "Queued"
	StateCanceled = "Canceled"

	ProgressCurrent  = "Current"
	ProgressComplete = "Complete"
)
