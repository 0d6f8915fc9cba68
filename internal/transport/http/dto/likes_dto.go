package dto

type SwipeRequest struct {
	DogID string `json:"dogId" validate:"required"`
	Liked *bool  `json:"liked" validate:"required"`
}

type SwipeResponse struct {
	Success bool `json:"success"`
}

// MergeSwipeRequest mirrors one ledger record. Timestamp is a client epoch
// in milliseconds and may carry a fraction.
type MergeSwipeRequest struct {
	DogID     string   `json:"dogId" validate:"required,min=1"`
	Liked     *bool    `json:"liked" validate:"required"`
	Timestamp *float64 `json:"timestamp" validate:"required"`
}

type MergeRequest struct {
	Swipes []MergeSwipeRequest `json:"swipes" validate:"required,dive"`
}

type MergeResponse struct {
	Merged  int `json:"merged"`
	Skipped int `json:"skipped"`
}

type LikedDogsResponse struct {
	Items []DogCardResponse `json:"items"`
}
