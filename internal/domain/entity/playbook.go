package entity

import "time"

// Playbook step types understood by the executor.
const (
	StepSendEmail   = "send_email"
	StepRecordGoal  = "record_goal"
	StepAdjustPrice = "adjust_price"
	StepNotify      = "notify"
)

// PlaybookTrigger names the event a playbook reacts to, with optional
// equality filters on the event payload.
type PlaybookTrigger struct {
	Event   string            `json:"event" yaml:"event" firestore:"event"`
	Filters map[string]string `json:"filters,omitempty" yaml:"filters,omitempty" firestore:"filters,omitempty"`
}

// PlaybookStep is a single automation action with free-form parameters.
type PlaybookStep struct {
	Type   string            `json:"type" yaml:"type" firestore:"type"`
	Name   string            `json:"name,omitempty" yaml:"name,omitempty" firestore:"name,omitempty"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty" firestore:"params,omitempty"`
}

// Playbook is a YAML-described automation owned by an org.
type Playbook struct {
	ID    string `json:"id" firestore:"id"`
	OrgID string `json:"org_id" firestore:"orgId"`
	Name  string `json:"name" firestore:"name"`

	// Source is the raw YAML as the author wrote it; Trigger and Steps
	// are the parsed form.
	Source  string          `json:"source" firestore:"source"`
	Trigger PlaybookTrigger `json:"trigger" firestore:"trigger"`
	Steps   []PlaybookStep  `json:"steps" firestore:"steps"`

	Enabled   bool       `json:"enabled" firestore:"enabled"`
	LastRunAt *time.Time `json:"last_run_at,omitempty" firestore:"lastRunAt,omitempty"`
	CreatedAt time.Time  `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time  `json:"updated_at" firestore:"updatedAt"`
}

// StepResult records the outcome of one executed step.
type StepResult struct {
	Step   string `json:"step"`
	Type   string `json:"type"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// PlaybookRun is the record of one execution.
type PlaybookRun struct {
	ID         string       `json:"id" firestore:"id"`
	PlaybookID string       `json:"playbook_id" firestore:"playbookId"`
	OrgID      string       `json:"org_id" firestore:"orgId"`
	Succeeded  bool         `json:"succeeded" firestore:"succeeded"`
	Results    []StepResult `json:"results" firestore:"results"`
	StartedAt  time.Time    `json:"started_at" firestore:"startedAt"`
	FinishedAt time.Time    `json:"finished_at" firestore:"finishedAt"`
}
