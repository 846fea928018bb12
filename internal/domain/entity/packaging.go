package entity

import "time"

// PackagingStatus is the lifecycle of a packaging analysis record.
type PackagingStatus string

const (
	PackagingPending  PackagingStatus = "pending"
	PackagingComplete PackagingStatus = "complete"
	PackagingFailed   PackagingStatus = "failed"
)

// ComplianceFlag is a single pass/fail check on packaging artwork.
type ComplianceFlag struct {
	Check  string `json:"check" firestore:"check"`
	Passed bool   `json:"passed" firestore:"passed"`
	Note   string `json:"note,omitempty" firestore:"note,omitempty"`
}

// PackagingAnalysis records an AI-vision compliance review of a product
// packaging image.
type PackagingAnalysis struct {
	ID      string `json:"id" firestore:"id"`
	OrgID   string `json:"org_id" firestore:"orgId"`
	BlobKey string `json:"blob_key" firestore:"blobKey"`

	Status  PackagingStatus  `json:"status" firestore:"status"`
	Flags   []ComplianceFlag `json:"flags,omitempty" firestore:"flags,omitempty"`
	Summary string           `json:"summary,omitempty" firestore:"summary,omitempty"`
	Error   string           `json:"error,omitempty" firestore:"error,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}
