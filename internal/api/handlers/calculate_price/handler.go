package calculate_price

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	calculatePrice "github.com/m04kA/SMC-ParkingService/internal/usecase/calculate_price"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidParams      = "некорректные параметры запроса"
	msgLotNotFound        = "парковка не найдена"
	msgLotInactive        = "парковка недоступна для бронирования"
	msgAddonNotFound      = "дополнительная услуга не найдена"
	msgCodeNotFound       = "промокод не найден"
	msgCodeNotApplicable  = "промокод неприменим: истёк, исчерпан или не достигнут минимальный чек"
)

type Handler struct {
	useCase CalculatePriceUseCase
	logger  Logger
}

func NewHandler(useCase CalculatePriceUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/reservations/quote
// Маршрут публичный: X-User-ID опционален, без него расчёт анонимный
// (без VIP скидок и персональных правил)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations/quote - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Пользователь опционален: берём из контекста, если запрос прошёл
	// через Auth middleware, иначе из заголовка напрямую
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		if headerID := r.Header.Get(middleware.HeaderUserID); headerID != "" {
			userID, _ = strconv.ParseInt(headerID, 10, 64)
		}
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(userID))
	if err != nil {
		switch {
		case errors.Is(err, calculatePrice.ErrLotNotFound):
			h.logger.Warn("POST /reservations/quote - Lot not found: lot_id=%d", req.LotID)
			handlers.RespondNotFound(w, msgLotNotFound)

		case errors.Is(err, calculatePrice.ErrLotInactive):
			h.logger.Warn("POST /reservations/quote - Lot inactive: lot_id=%d", req.LotID)
			handlers.RespondError(w, http.StatusConflict, msgLotInactive)

		case errors.Is(err, calculatePrice.ErrAddonNotFound):
			h.logger.Warn("POST /reservations/quote - Addon not found: lot_id=%d, addon_ids=%v", req.LotID, req.AddonIDs)
			handlers.RespondNotFound(w, msgAddonNotFound)

		case errors.Is(err, calculatePrice.ErrCodeNotFound):
			h.logger.Warn("POST /reservations/quote - Discount code not found: lot_id=%d", req.LotID)
			handlers.RespondNotFound(w, msgCodeNotFound)

		case errors.Is(err, calculatePrice.ErrCodeNotApplicable):
			h.logger.Warn("POST /reservations/quote - Discount code not applicable: lot_id=%d", req.LotID)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgCodeNotApplicable)

		case errors.Is(err, calculatePrice.ErrInvalidInput):
			h.logger.Warn("POST /reservations/quote - Invalid input: lot_id=%d, error=%v", req.LotID, err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		default:
			h.logger.Error("POST /reservations/quote - Failed to calculate price: lot_id=%d, error=%v", req.LotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /reservations/quote - Price calculated: lot_id=%d, user_id=%d, final=%.2f",
		req.LotID, userID, result.FinalAmount)
	handlers.RespondJSON(w, http.StatusOK, result)
}
