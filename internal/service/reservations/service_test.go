package reservations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ParkingService/internal/service/reservations/models"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type mockRepo struct {
	reservation *domain.Reservation
	getErr      error

	updatedStatus *domain.ReservationStatus
	cancelled     bool
	cancelReason  string
	deleted       bool
}

func (m *mockRepo) GetByID(_ context.Context, _ int64) (*domain.Reservation, error) {
	return m.reservation, m.getErr
}

func (m *mockRepo) GetByUserID(_ context.Context, _ int64, _ *domain.ReservationStatus) ([]*domain.Reservation, error) {
	return []*domain.Reservation{m.reservation}, nil
}

func (m *mockRepo) GetByLotWithFilter(_ context.Context, _ domain.LotReservationsFilter) ([]*domain.Reservation, error) {
	return []*domain.Reservation{m.reservation}, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, _ int64, status domain.ReservationStatus) error {
	m.updatedStatus = &status
	return nil
}

func (m *mockRepo) Cancel(_ context.Context, _ int64, reason string) error {
	m.cancelled = true
	m.cancelReason = reason
	return nil
}

func (m *mockRepo) SoftDelete(_ context.Context, _ int64) error {
	m.deleted = true
	return nil
}

func confirmedReservation(userID int64) *domain.Reservation {
	return &domain.Reservation{
		ID:     1,
		UserID: userID,
		LotID:  2,
		Status: domain.StatusConfirmed,
	}
}

func TestGetByID_OwnerAllowed(t *testing.T) {
	repo := &mockRepo{reservation: confirmedReservation(7)}
	svc := NewService(repo, nopLogger{})

	resp, err := svc.GetByID(context.Background(), 1, 7, false)

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
}

func TestGetByID_StrangerDenied(t *testing.T) {
	repo := &mockRepo{reservation: confirmedReservation(7)}
	svc := NewService(repo, nopLogger{})

	_, err := svc.GetByID(context.Background(), 1, 8, false)

	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetByID_AdminAllowed(t *testing.T) {
	repo := &mockRepo{reservation: confirmedReservation(7)}
	svc := NewService(repo, nopLogger{})

	resp, err := svc.GetByID(context.Background(), 1, 8, true)

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
}

func TestGetByID_NotFound(t *testing.T) {
	repo := &mockRepo{getErr: reservationRepo.ErrReservationNotFound}
	svc := NewService(repo, nopLogger{})

	_, err := svc.GetByID(context.Background(), 1, 7, false)

	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestCancel_OwnerCancelsConfirmed(t *testing.T) {
	repo := &mockRepo{reservation: confirmedReservation(7)}
	svc := NewService(repo, nopLogger{})

	err := svc.Cancel(context.Background(), 1, &models.CancelReservationRequest{
		UserID:             7,
		CancellationReason: "планы изменились",
	})

	require.NoError(t, err)
	assert.True(t, repo.cancelled)
	assert.Equal(t, "планы изменились", repo.cancelReason)
}

func TestCancel_CheckedInNotCancellable(t *testing.T) {
	res := confirmedReservation(7)
	res.Status = domain.StatusCheckedIn
	repo := &mockRepo{reservation: res}
	svc := NewService(repo, nopLogger{})

	err := svc.Cancel(context.Background(), 1, &models.CancelReservationRequest{UserID: 7})

	assert.ErrorIs(t, err, ErrCannotCancel)
	assert.False(t, repo.cancelled)
}

func TestCancel_StrangerDenied(t *testing.T) {
	repo := &mockRepo{reservation: confirmedReservation(7)}
	svc := NewService(repo, nopLogger{})

	err := svc.Cancel(context.Background(), 1, &models.CancelReservationRequest{UserID: 8})

	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestUpdateStatus_AllowedTransition(t *testing.T) {
	repo := &mockRepo{reservation: confirmedReservation(7)}
	svc := NewService(repo, nopLogger{})

	err := svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{
		UserID: 100,
		Status: "checked_in",
	})

	require.NoError(t, err)
	require.NotNil(t, repo.updatedStatus)
	assert.Equal(t, domain.StatusCheckedIn, *repo.updatedStatus)
}

func TestUpdateStatus_ForbiddenTransition(t *testing.T) {
	res := confirmedReservation(7)
	res.Status = domain.StatusCancelled
	repo := &mockRepo{reservation: res}
	svc := NewService(repo, nopLogger{})

	err := svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{
		UserID: 100,
		Status: "confirmed",
	})

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Nil(t, repo.updatedStatus)
}

func TestUpdateStatus_ForceRevertsTerminal(t *testing.T) {
	res := confirmedReservation(7)
	res.Status = domain.StatusCancelled
	repo := &mockRepo{reservation: res}
	svc := NewService(repo, nopLogger{})

	err := svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{
		UserID: 100,
		Status: "confirmed",
		Force:  true,
	})

	require.NoError(t, err)
	require.NotNil(t, repo.updatedStatus)
	assert.Equal(t, domain.StatusConfirmed, *repo.updatedStatus)
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	repo := &mockRepo{reservation: confirmedReservation(7)}
	svc := NewService(repo, nopLogger{})

	err := svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{
		UserID: 100,
		Status: "parked",
	})

	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestDelete_SoftDeletes(t *testing.T) {
	repo := &mockRepo{reservation: confirmedReservation(7)}
	svc := NewService(repo, nopLogger{})

	err := svc.Delete(context.Background(), 1)

	require.NoError(t, err)
	assert.True(t, repo.deleted)
}

func TestGetLotReservations_InvalidStatusRejected(t *testing.T) {
	repo := &mockRepo{reservation: confirmedReservation(7)}
	svc := NewService(repo, nopLogger{})

	badStatus := "parked"
	_, err := svc.GetLotReservations(context.Background(), &models.GetLotReservationsRequest{
		LotID:  2,
		Status: &badStatus,
	})

	assert.ErrorIs(t, err, ErrInvalidInput)
}
