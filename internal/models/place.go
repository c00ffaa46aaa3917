package models

// Place represents a location on a user's list, either already visited or on the wishlist.
type Place struct {
	// ID is the database-generated identifier.
	ID int64

	Name    string
	Country string
	City    string

	// Priority is a free-form label such as "High", "Medium" or "Low".
	Priority string

	Note string

	// Visited is true for travelled places and false for wishlist entries.
	Visited bool

	// Image is an opaque encoded payload (typically base64). Nil means no image.
	Image *string

	// UserID is the owning user. It is required and set at creation.
	UserID int64
}

// PlaceFilter selects a subset of a user's places.
// Only one dimension is ever applied; see Effective.
type PlaceFilter struct {
	Visited  *bool
	City     *string
	Country  *string
	Priority *string
}

// Effective returns a copy of the filter with only the highest-precedence dimension kept.
// Precedence is Visited, City, Country, Priority. An empty filter lists every place.
func (f PlaceFilter) Effective() PlaceFilter {
	switch {
	case f.Visited != nil:
		return PlaceFilter{Visited: f.Visited}
	case f.City != nil:
		return PlaceFilter{City: f.City}
	case f.Country != nil:
		return PlaceFilter{Country: f.Country}
	case f.Priority != nil:
		return PlaceFilter{Priority: f.Priority}
	default:
		return PlaceFilter{}
	}
}

// PlaceUpdate carries the fields of a place update.
// Name is always written. Nil optional strings keep the stored value.
// A nil Visited is written as false. Image is only replaced when non-empty.
type PlaceUpdate struct {
	Name     string
	Country  *string
	City     *string
	Priority *string
	Note     *string
	Visited  *bool
	Image    string

	// Rating is accepted from clients but not stored; places carry no rating.
	Rating *int
}
