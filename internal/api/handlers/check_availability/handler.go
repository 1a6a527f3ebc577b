package check_availability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/domain"
	checkAvailability "github.com/m04kA/SMC-ParkingService/internal/usecase/check_availability"
)

const (
	msgInvalidLotID    = "некорректный ID парковки"
	msgInvalidParams   = "некорректные параметры запроса"
	msgInvalidInterval = "некорректный интервал: ожидаются check_in и check_out в формате RFC3339"
	msgLotNotFound     = "парковка не найдена"
	msgLotInactive     = "парковка недоступна для бронирования"
)

type Handler struct {
	useCase CheckAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase CheckAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/lots/{lotId}/availability
// Query params: check_in, check_out (RFC3339), vehicle_count (опционально, по умолчанию 1)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	lotID, err := strconv.ParseInt(vars["lotId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /lots/{id}/availability - Invalid lot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidLotID)
		return
	}

	checkIn, err := time.Parse(time.RFC3339, r.URL.Query().Get("check_in"))
	if err != nil {
		h.logger.Warn("GET /lots/{id}/availability - Invalid check_in: %v", err)
		handlers.RespondBadRequest(w, msgInvalidInterval)
		return
	}

	checkOut, err := time.Parse(time.RFC3339, r.URL.Query().Get("check_out"))
	if err != nil {
		h.logger.Warn("GET /lots/{id}/availability - Invalid check_out: %v", err)
		handlers.RespondBadRequest(w, msgInvalidInterval)
		return
	}

	vehicleCount := domain.DefaultVehicleCount
	if countStr := r.URL.Query().Get("vehicle_count"); countStr != "" {
		vehicleCount, err = strconv.Atoi(countStr)
		if err != nil {
			h.logger.Warn("GET /lots/{id}/availability - Invalid vehicle_count: %v", err)
			handlers.RespondBadRequest(w, msgInvalidParams)
			return
		}
	}

	result, err := h.useCase.Execute(r.Context(), checkAvailability.Request{
		LotID:        lotID,
		CheckIn:      checkIn,
		CheckOut:     checkOut,
		VehicleCount: vehicleCount,
	})
	if err != nil {
		switch {
		case errors.Is(err, checkAvailability.ErrLotNotFound):
			h.logger.Warn("GET /lots/{id}/availability - Lot not found: lot_id=%d", lotID)
			handlers.RespondNotFound(w, msgLotNotFound)

		case errors.Is(err, checkAvailability.ErrLotInactive):
			h.logger.Warn("GET /lots/{id}/availability - Lot inactive: lot_id=%d", lotID)
			handlers.RespondError(w, http.StatusConflict, msgLotInactive)

		case errors.Is(err, checkAvailability.ErrInvalidInput):
			h.logger.Warn("GET /lots/{id}/availability - Invalid input: lot_id=%d, error=%v", lotID, err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		default:
			h.logger.Error("GET /lots/{id}/availability - Failed to check availability: lot_id=%d, error=%v", lotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /lots/{id}/availability - Availability checked: lot_id=%d, fits=%t", lotID, result.Fits)
	handlers.RespondJSON(w, http.StatusOK, result)
}
