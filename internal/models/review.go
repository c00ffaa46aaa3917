package models

// Review is a user's text and star rating for a place.
type Review struct {
	// ID is the database-generated identifier.
	ID int64

	ReviewText string
	RatedStars int

	PlaceID int64
	UserID  int64

	// PlaceName and Username are filled by read queries only and are ignored on writes.
	PlaceName string
	Username  string
}

// NewReview creates a new Review ready to be persisted.
func NewReview(placeID, userID int64, text string, stars int) *Review {
	return &Review{
		ReviewText: text,
		RatedStars: stars,
		PlaceID:    placeID,
		UserID:     userID,
	}
}
