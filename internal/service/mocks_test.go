package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mmynk/wanderlist/internal/models"
)

type mockReviewStore struct {
	mock.Mock
}

func (m *mockReviewStore) CreateReview(ctx context.Context, review *models.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *mockReviewStore) GetReview(ctx context.Context, id int64) (*models.Review, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*models.Review)
	return r, args.Error(1)
}

func (m *mockReviewStore) UpdateReview(ctx context.Context, review *models.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *mockReviewStore) DeleteReview(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockReviewStore) ListReviewsByPlace(ctx context.Context, placeID int64) ([]*models.Review, error) {
	args := m.Called(ctx, placeID)
	r, _ := args.Get(0).([]*models.Review)
	return r, args.Error(1)
}

func (m *mockReviewStore) ListReviewsByUser(ctx context.Context, userID int64) ([]*models.Review, error) {
	args := m.Called(ctx, userID)
	r, _ := args.Get(0).([]*models.Review)
	return r, args.Error(1)
}

func (m *mockReviewStore) ListReviewsByPlaceIDs(ctx context.Context, placeIDs []int64) ([]*models.Review, error) {
	args := m.Called(ctx, placeIDs)
	r, _ := args.Get(0).([]*models.Review)
	return r, args.Error(1)
}
