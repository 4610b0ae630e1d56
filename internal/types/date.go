package types

import "time"

// Categories the solo prompt contract allows. The room prompt uses the
// broader set below; the mood enforcer understands both.
const (
	CategoryRomantic    = "romantic"
	CategoryFun         = "fun"
	CategoryRelaxed     = "relaxed"
	CategoryAdventurous = "adventurous"

	// Room-prompt variant categories.
	CategoryOutdoor  = "outdoor"
	CategoryFood     = "food"
	CategoryCulture  = "culture"
	CategoryActive   = "active"
	CategoryRelax    = "relax"
	CategorySurprise = "surprise"
)

// GeneratedBy values.
const (
	GeneratedByAI        = "ai"
	GeneratedByCommunity = "community"
	GeneratedByMock      = "mock"
)

// DateSuggestion is the central output entity of the generation
// pipeline. Never persisted server-side; MatchScore and
// CompatibilityScore are optional (the latter only set in room mode)
// and lie in [0,100] when present.
type DateSuggestion struct {
	ID                 string        `json:"id"`
	Title              string        `json:"title"`
	Description        string        `json:"description"`
	Category           string        `json:"category"`
	Duration           string        `json:"duration"`
	Cost               string        `json:"cost"`
	LocationType       string        `json:"location_type"`
	Area               string        `json:"area,omitempty"`
	ImageURL           string        `json:"image_url,omitempty"`
	GeneratedBy        string        `json:"generated_by"`
	MatchScore         *int          `json:"match_score,omitempty"`
	CompatibilityScore *int          `json:"compatibility_score,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	QuizAnswersUsed    QuizAnswers   `json:"quiz_answers_used,omitempty"`
	UserLocation       *UserLocation `json:"user_location,omitempty"`
}

// BucketedSuggestions partitions room-mode suggestions by
// compatibility score tier. All preserves the original order.
type BucketedSuggestions struct {
	High   []DateSuggestion `json:"high"`
	Medium []DateSuggestion `json:"medium"`
	Low    []DateSuggestion `json:"low"`
	All    []DateSuggestion `json:"all"`
}

// GenerateRequest is the body of POST /api/dates/generate.
type GenerateRequest struct {
	QuizAnswers QuizAnswers `json:"quizAnswers"`
}

// GenerateResponse is the success body of POST /api/dates/generate.
type GenerateResponse struct {
	Success            bool             `json:"success"`
	Dates              []DateSuggestion `json:"dates"`
	RelaxedSuggestions []DateSuggestion `json:"relaxed_suggestions"`
}

// GenerateRoomRequest is the body of POST /api/dates/generate-room.
type GenerateRoomRequest struct {
	User1Answers QuizAnswers `json:"user1Answers"`
	User2Answers QuizAnswers `json:"user2Answers"`
	RoomID       string      `json:"roomId"`
}

// GenerateRoomResponse is the success body of POST /api/dates/generate-room.
type GenerateRoomResponse struct {
	Success bool                `json:"success"`
	Dates   BucketedSuggestions `json:"dates"`
}
