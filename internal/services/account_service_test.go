package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccountService_IsAdminIsCached(t *testing.T) {
	userRepo := &MockUserRepository{}
	userID := uuid.New()
	userRepo.On("IsAdmin", mock.Anything, userID).Return(true, nil).Once()

	service := NewAccountService(userRepo, time.Minute, 10)
	for i := 0; i < 3; i++ {
		isAdmin, err := service.IsAdmin(context.Background(), userID)
		require.NoError(t, err)
		assert.True(t, isAdmin)
	}
	userRepo.AssertExpectations(t)
}

func TestAccountService_LookupErrorNotCached(t *testing.T) {
	userRepo := &MockUserRepository{}
	userID := uuid.New()
	userRepo.On("IsAdmin", mock.Anything, userID).Return(false, errors.New("timeout")).Once()
	userRepo.On("IsAdmin", mock.Anything, userID).Return(false, nil).Once()

	service := NewAccountService(userRepo, time.Minute, 10)
	_, err := service.IsAdmin(context.Background(), userID)
	assert.Error(t, err)

	isAdmin, err := service.IsAdmin(context.Background(), userID)
	require.NoError(t, err)
	assert.False(t, isAdmin)
	userRepo.AssertExpectations(t)
}

func TestAccountService_EnsureRegisteredOnce(t *testing.T) {
	userRepo := &MockUserRepository{}
	user := &models.User{ID: uuid.New(), Email: "ada@example.com"}
	userRepo.On("Upsert", mock.Anything, user).Return(nil).Once()

	service := NewAccountService(userRepo, time.Minute, 10)
	require.NoError(t, service.EnsureRegistered(context.Background(), user))
	require.NoError(t, service.EnsureRegistered(context.Background(), user))
	assert.Equal(t, 1, service.PurgeExpired())
	userRepo.AssertExpectations(t)
}

func TestReviewService_SubmitValidatesAndSanitizes(t *testing.T) {
	reviewRepo := &MockReviewRepository{}
	productRepo := &MockProductRepository{}
	service := NewReviewService(reviewRepo, productRepo)
	userID, productID := uuid.New(), uuid.New()

	_, err := service.Submit(context.Background(), userID, productID, 6, nil)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "rating", validationErr.Field)

	comment := "<b>great</b>"
	productRepo.On("GetByID", mock.Anything, productID).Return(&models.Product{ID: productID, IsActive: true}, nil).Once()
	reviewRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*models.Review")).Return(nil).Once()

	review, err := service.Submit(context.Background(), userID, productID, 5, &comment)
	require.NoError(t, err)
	assert.Equal(t, "&lt;b&gt;great&lt;/b&gt;", *review.Comment)
	reviewRepo.AssertExpectations(t)
	productRepo.AssertExpectations(t)
}

func TestReviewService_List(t *testing.T) {
	reviewRepo := &MockReviewRepository{}
	productID := uuid.New()
	reviewRepo.On("Summary", mock.Anything, productID).Return(2, 3.5, nil).Once()
	reviewRepo.On("ListByProduct", mock.Anything, productID, 20, 0).Return([]*models.Review{{Rating: 3}, {Rating: 4}}, nil).Once()

	summary, err := NewReviewService(reviewRepo, nil).List(context.Background(), productID, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	assert.Equal(t, 3.5, summary.AverageRating)
	assert.Len(t, summary.Reviews, 2)
}
