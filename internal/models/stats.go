package models

// Stats summarises a user's travel list.
type Stats struct {
	// WishlistCount is the number of the user's places with Visited == false.
	WishlistCount int64

	// TravelledCount is the number of the user's places with Visited == true.
	TravelledCount int64

	// CountriesCount is the number of distinct countries across all users' places.
	CountriesCount int64
}
