package calculate_price

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/integrations/userservice"
)

// LotsStorage - интерфейс для работы с хранилищем парковок
type LotsStorage interface {
	GetByID(ctx context.Context, id int64) (*domain.Lot, error)
}

// AddonsStorage - интерфейс для работы с хранилищем дополнительных услуг
type AddonsStorage interface {
	GetActiveByIDs(ctx context.Context, ids []int64) ([]*domain.AddOnService, error)
}

// DiscountsStorage - интерфейс для работы с хранилищем скидок
type DiscountsStorage interface {
	GetCodeByCode(ctx context.Context, code string) (*domain.DiscountCode, error)
	GetActiveRulesForLot(ctx context.Context, lotID int64, now time.Time) ([]*domain.AutomaticDiscountRule, error)
}

// UserServiceClient - интерфейс для получения профиля лояльности
type UserServiceClient interface {
	GetLoyaltyProfileWithGracefulDegradation(ctx context.Context, userID int64) (*userservice.LoyaltyProfile, error)
}

// TimeProvider - интерфейс для получения текущего времени (подменяется в тестах)
type TimeProvider interface {
	Now() time.Time
}

// Logger - интерфейс для логирования
type Logger interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}
