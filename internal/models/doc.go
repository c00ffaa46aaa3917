// Package models defines the core domain models for Wanderlist.
//
// # Models
//
//   - User: an account that owns places and reviews
//   - Place: a visited or wishlist location owned by exactly one user
//   - Review: text and a star rating attached to a place by a user
//   - Stats: per-user aggregate counts
//
// # Design Principles
//
// 1. **No object graphs**: relationships are foreign-key IDs (Place.UserID, Review.PlaceID,
// Review.UserID), never pointers back to the owning struct
// 2. **Opaque images**: Place.Image is stored and returned verbatim
// 3. **Optional fields are pointers**: filters and partial updates use nil for "not supplied"
package models
