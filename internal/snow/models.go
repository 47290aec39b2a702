package snow

import (
	"bytes"
	"encoding/json"
)

// Reference is a ServiceNow reference field. The Table API renders it as an
// object {link, value} when set and as an empty string when not, so it needs
// a tolerant unmarshaler.
type Reference struct {
	Link  string `json:"link"`
	Value string `json:"value"`
}

func (r *Reference) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] == '"' {
		*r = Reference{}
		return nil
	}
	type plain Reference
	return json.Unmarshal(data, (*plain)(r))
}

// ChangeTask is a change-management work item. The engine reads it and writes
// back only assignment, state, type and the description marker.
type ChangeTask struct {
	SysID            string    `json:"sys_id"`
	Number           string    `json:"task_effective_number"`
	ShortDescription string    `json:"short_description"`
	State            string    `json:"state"`
	PlannedStart     string    `json:"planned_start_date"`
	PlannedEnd       string    `json:"planned_end_date"`
	ChangeRequest    Reference `json:"change_request"`
}

// changeRecord is the parent change of a change task; only its type matters
// to the engine.
type changeRecord struct {
	Type string `json:"type"`
}
