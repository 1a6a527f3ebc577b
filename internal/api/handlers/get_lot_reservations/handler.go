package get_lot_reservations

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	"github.com/m04kA/SMC-ParkingService/internal/service/reservations"
)

const (
	msgInvalidLotID  = "некорректный ID парковки"
	msgMissingUserID = "отсутствует ID пользователя"
	msgInvalidParams = "некорректные параметры запроса"
	msgForbidden     = "доступ запрещен"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/lots/{lotId}/reservations
// Query params: start_date, end_date (YYYY-MM-DD), status, include_inactive (опционально)
// Доступно только администраторам
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	lotID, err := strconv.ParseInt(vars["lotId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /lots/{id}/reservations - Invalid lot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidLotID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /lots/{id}/reservations - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	if !middleware.IsAdmin(r.Context()) {
		h.logger.Warn("GET /lots/{id}/reservations - Access denied: lot_id=%d, user_id=%d", lotID, userID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	query := r.URL.Query()
	serviceReq, err := ToServiceRequest(
		lotID,
		query.Get("start_date"),
		query.Get("end_date"),
		query.Get("status"),
		query.Get("include_inactive"),
	)
	if err != nil {
		h.logger.Warn("GET /lots/{id}/reservations - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.service.GetLotReservations(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrInvalidInput):
			h.logger.Warn("GET /lots/{id}/reservations - Invalid parameters: lot_id=%d, error=%v", lotID, err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		default:
			h.logger.Error("GET /lots/{id}/reservations - Failed to get reservations: lot_id=%d, error=%v", lotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /lots/{id}/reservations - Reservations retrieved successfully: lot_id=%d, count=%d",
		lotID, len(result.Reservations))
	handlers.RespondJSON(w, http.StatusOK, result.Reservations)
}
