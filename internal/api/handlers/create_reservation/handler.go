package create_reservation

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	createReservation "github.com/m04kA/SMC-ParkingService/internal/usecase/create_reservation"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidParams       = "некорректные параметры запроса"
	msgMissingUserID       = "отсутствует ID пользователя"
	msgLotNotFound         = "парковка не найдена"
	msgLotInactive         = "парковка недоступна для бронирования"
	msgNoCapacity          = "нет свободных машиномест на запрошенные даты"
	msgBlackoutConflict    = "бронирование запрещено на часть запрошенных дат"
	msgAddonNotFound       = "дополнительная услуга не найдена"
	msgCodeNotFound        = "промокод не найден"
	msgCodeNotApplicable   = "промокод неприменим: истёк, исчерпан или не достигнут минимальный чек"
	msgConcurrencyConflict = "не удалось завершить бронирование из-за конкурентных запросов, повторите попытку"
)

type Handler struct {
	useCase CreateReservationUseCase
	logger  Logger
}

func NewHandler(useCase CreateReservationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/reservations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /reservations - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(userID))
	if err != nil {
		switch {
		case errors.Is(err, createReservation.ErrLotNotFound):
			h.logger.Warn("POST /reservations - Lot not found: lot_id=%d, user_id=%d", req.LotID, userID)
			handlers.RespondNotFound(w, msgLotNotFound)

		case errors.Is(err, createReservation.ErrLotInactive):
			h.logger.Warn("POST /reservations - Lot inactive: lot_id=%d, user_id=%d", req.LotID, userID)
			handlers.RespondError(w, http.StatusConflict, msgLotInactive)

		case errors.Is(err, createReservation.ErrNoCapacity):
			h.logger.Warn("POST /reservations - No capacity: lot_id=%d, user_id=%d", req.LotID, userID)
			handlers.RespondError(w, http.StatusConflict, msgNoCapacity)

		case errors.Is(err, createReservation.ErrBlackoutConflict):
			h.logger.Warn("POST /reservations - Blackout conflict: lot_id=%d, user_id=%d", req.LotID, userID)
			handlers.RespondError(w, http.StatusConflict, msgBlackoutConflict)

		case errors.Is(err, createReservation.ErrAddonNotFound):
			h.logger.Warn("POST /reservations - Addon not found: lot_id=%d, addon_ids=%v", req.LotID, req.AddonIDs)
			handlers.RespondNotFound(w, msgAddonNotFound)

		case errors.Is(err, createReservation.ErrCodeNotFound):
			h.logger.Warn("POST /reservations - Discount code not found: lot_id=%d, user_id=%d", req.LotID, userID)
			handlers.RespondNotFound(w, msgCodeNotFound)

		case errors.Is(err, createReservation.ErrCodeNotApplicable):
			h.logger.Warn("POST /reservations - Discount code not applicable: lot_id=%d, user_id=%d", req.LotID, userID)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgCodeNotApplicable)

		case errors.Is(err, createReservation.ErrConcurrencyConflict):
			h.logger.Warn("POST /reservations - Concurrency conflict: lot_id=%d, user_id=%d", req.LotID, userID)
			handlers.RespondError(w, http.StatusConflict, msgConcurrencyConflict)

		case errors.Is(err, createReservation.ErrInvalidInput):
			h.logger.Warn("POST /reservations - Invalid input: lot_id=%d, user_id=%d, error=%v", req.LotID, userID, err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		default:
			h.logger.Error("POST /reservations - Failed to create reservation: lot_id=%d, user_id=%d, error=%v",
				req.LotID, userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /reservations - Reservation created successfully: reservation_id=%d, lot_id=%d, user_id=%d",
		result.ID, req.LotID, userID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
