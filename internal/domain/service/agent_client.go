package service

import "context"

// AgentClient defines the interface to the hosted LLM used by agent
// features (playbook notify steps, packaging analysis, churn digests).
type AgentClient interface {
	// Complete sends a system + user prompt pair and returns the text
	// of the first completion.
	Complete(ctx context.Context, system, user string) (string, error)
}
