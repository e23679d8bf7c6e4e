package echoapi

type (
	RecomputeRequest struct {
		UserIDs []string `json:"user_ids" validate:"required,min=1,dive,uuid"`
	}

	RecomputeResponse struct {
		Results []ScoreResponse `json:"results"`
	}

	ScoreResponse struct {
		UserID    string `json:"user_id"`
		Score     int    `json:"score"`
		Outcome   string `json:"outcome"`
		Persisted bool   `json:"persisted"`
	}

	TrackerResponse struct {
		Score   int    `json:"score"`
		Loading bool   `json:"loading"`
		Outcome string `json:"outcome,omitempty"`
	}

	LeaderboardQuery struct {
		Limit int `query:"limit" validate:"omitempty,min=1"`
	}
)
