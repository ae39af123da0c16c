package models

import "time"

type TransformationStatus string

const (
	TransformationStatusPending    TransformationStatus = "pending"
	TransformationStatusProcessing TransformationStatus = "processing"
	TransformationStatusCompleted  TransformationStatus = "completed"
	TransformationStatusFailed     TransformationStatus = "failed"
)

// Terminal reports whether no further status transition is allowed.
func (s TransformationStatus) Terminal() bool {
	return s == TransformationStatusCompleted || s == TransformationStatusFailed
}

// Transformation is one user-submitted request to convert a source photo
// into a styled painting. PredictionID carries the provider's job handle;
// a "local-" prefix marks a synthetic fallback result.
type Transformation struct {
	ID           string
	UserID       string
	SourceURL    string
	ResultURL    *string
	Style        string
	PredictionID *string
	Status       TransformationStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Synthetic reports whether the result came from the fallback path rather
// than the prediction provider.
func (t Transformation) Synthetic() bool {
	return t.PredictionID != nil && len(*t.PredictionID) > 6 && (*t.PredictionID)[:6] == "local-"
}
