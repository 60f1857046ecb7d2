package domain

// Question is a single trivia prompt. Parts > 1 means the question expects
// that many distinct correct sub-answers before it counts as fully answered.
type Question struct {
	Text     string   `json:"text"`
	Answers  []string `json:"answers"`
	Parts    int      `json:"parts"` // defaults to 1 if zero
	ImageURL string   `json:"imageUrl,omitempty"`
}

// PartCount returns Parts, treating the zero value as a single-part question.
func (q Question) PartCount() int {
	if q.Parts < 1 {
		return 1
	}
	return q.Parts
}

// QuestionSet is a named, ordered list of questions.
type QuestionSet struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Questions   []Question `json:"questions"`
}

// Team holds the roster and raw counters for one team slot.
type Team struct {
	ID        string
	Name      string
	Members   map[string]struct{}
	Correct   int
	Incorrect int
	Timeout   int
}

// Player is a participant assigned to exactly one team.
type Player struct {
	ID        string
	Name      string
	TeamID    string
	Correct   int
	Incorrect int
	Timeout   int
}

// Score derives the point total from the raw counters. With losePoints,
// incorrect answers and timeouts each cost a point.
func Score(correct, incorrect, timeout int, losePoints bool) int {
	if losePoints {
		return correct - incorrect - timeout
	}
	return correct
}

// Standing is one row of a leaderboard snapshot.
type Standing struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Correct   int    `json:"correct"`
	Incorrect int    `json:"incorrect"`
	Timeout   int    `json:"timeout"`
}

// Board identifies one of the persistent cross-session leaderboards.
type Board string

const (
	BoardAllTime Board = "alltime"
	BoardDaily   Board = "daily"
	BoardWeekly  Board = "weekly"
	BoardMonthly Board = "monthly"
)

// Boards lists every persistent leaderboard, in display order.
func Boards() []Board {
	return []Board{BoardAllTime, BoardDaily, BoardWeekly, BoardMonthly}
}

// ValidBoard reports whether b names a known leaderboard.
func ValidBoard(b Board) bool {
	switch b {
	case BoardAllTime, BoardDaily, BoardWeekly, BoardMonthly:
		return true
	}
	return false
}

// TallyEntry carries one player's raw counters from a finished ranked game
// into the persistent leaderboards. Merges are additive.
type TallyEntry struct {
	PlayerID  string `json:"playerId"`
	Name      string `json:"name"`
	Correct   int    `json:"correct"`
	Incorrect int    `json:"incorrect"`
	Timeout   int    `json:"timeout"`
}
