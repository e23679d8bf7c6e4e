package leaderboard

// Entry is a user's position on the leaderboard.
type Entry struct {
	Rank     int    `json:"rank" db:"rank"`
	UserID   string `json:"user_id" db:"user_id"`
	Name     string `json:"name" db:"name"`
	Username string `json:"username" db:"username"`
	Score    int    `json:"score" db:"score"`
}

// Board is a page of the leaderboard, best scores first.
type Board struct {
	Entries    []Entry `json:"leaderboard"`
	TotalUsers int     `json:"total_users"`
}

// Standing is a single user's rank; Rank is 0 when the user has no stored score.
type Standing struct {
	UserID string `json:"user_id" db:"user_id"`
	Rank   int    `json:"rank" db:"rank"`
	Score  int    `json:"score" db:"score"`
}
