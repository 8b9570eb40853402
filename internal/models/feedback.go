package models

import "time"

// FeedbackType classifies a feedback event.
type FeedbackType string

const (
	// FeedbackClicked means the user opened the recommended item.
	FeedbackClicked FeedbackType = "clicked"
	// FeedbackSaved means the user saved the item for later.
	FeedbackSaved FeedbackType = "saved"
	// FeedbackDismissed means the user closed the recommendation.
	FeedbackDismissed FeedbackType = "dismissed"
	// FeedbackNotRelevant means the user flagged the item as off-target.
	FeedbackNotRelevant FeedbackType = "not_relevant"
	// FeedbackHelpful means the user marked the item as useful.
	FeedbackHelpful FeedbackType = "helpful"
	// FeedbackCompleted means the user finished the item.
	FeedbackCompleted FeedbackType = "completed"
)

// IsPositive reports whether the feedback type counts as a positive signal.
func (f FeedbackType) IsPositive() bool {
	switch f {
	case FeedbackClicked, FeedbackSaved, FeedbackHelpful, FeedbackCompleted:
		return true
	}
	return false
}

// IsNegative reports whether the feedback type counts as a negative signal.
func (f FeedbackType) IsNegative() bool {
	return f == FeedbackDismissed || f == FeedbackNotRelevant
}

// Valid reports whether f is one of the known feedback types.
func (f FeedbackType) Valid() bool {
	return f.IsPositive() || f.IsNegative()
}

// FeedbackEvent is one append-only feedback record.
type FeedbackEvent struct {
	ID        string       `json:"id" db:"id"`
	UserID    string       `json:"user_id" db:"user_id"`
	ContentID string       `json:"content_id" db:"content_id"`
	SessionID string       `json:"session_id,omitempty" db:"session_id"`
	Type      FeedbackType `json:"type" db:"type"`
	// Context is the free-form query context the recommendation was made in.
	Context   string    `json:"context,omitempty" db:"context"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
