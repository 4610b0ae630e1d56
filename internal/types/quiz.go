package types

// Known quiz question keys. The client quiz flow produces a flat
// key -> selected value mapping; values are closed enumerations
// rendered to prose by the prompt builder.
const (
	QuizKeyMood           = "mood"
	QuizKeyActivityType   = "activity_type"
	QuizKeyLocation       = "location"
	QuizKeyBudget         = "budget"
	QuizKeyDuration       = "duration"
	QuizKeyMobilityRadius = "mobility_radius"
)

// QuizAnswers maps a quiz question key to the value the user picked.
// Immutable once submitted.
type QuizAnswers map[string]string

// Mood returns the requested mood answer, empty when the user skipped it.
func (q QuizAnswers) Mood() string {
	return q[QuizKeyMood]
}

// City returns the free-text city answer, empty when not provided.
func (q QuizAnswers) City() string {
	return q[QuizKeyLocation]
}

// Clone returns a shallow copy so callers can annotate suggestions
// without sharing the original map.
func (q QuizAnswers) Clone() QuizAnswers {
	if q == nil {
		return nil
	}
	out := make(QuizAnswers, len(q))
	for k, v := range q {
		out[k] = v
	}
	return out
}

// CoupleContext carries both partners' answers for room (couple mode)
// generation plus the shared room metadata.
type CoupleContext struct {
	User1  QuizAnswers `json:"user1"`
	User2  QuizAnswers `json:"user2"`
	Common struct {
		City   string `json:"city,omitempty"`
		RoomID string `json:"room_id"`
	} `json:"common"`
}
