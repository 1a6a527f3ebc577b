package userservice

// LoyaltyProfile VIP атрибуты пользователя из UserService
type LoyaltyProfile struct {
	UserID             int64   `json:"userId"`
	IsVIP              bool    `json:"isVip"`
	VIPDiscountPercent float64 `json:"vipDiscountPercent"`
	IsNewUser          bool    `json:"isNewUser"`
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
