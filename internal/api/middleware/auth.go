package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/handlers"
)

type contextKey string

const userIDKey contextKey = "userID"

// Auth извлекает идентификатор пользователя из заголовка X-User-ID
// Аутентификацию выполняет API-шлюз; сервис доверяет заголовку внутри
// периметра. Запрос без корректного заголовка отклоняется с 401.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-User-ID")
		if raw == "" {
			handlers.RespondUnauthorized(w)
			return
		}

		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondUnauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID возвращает идентификатор пользователя из контекста запроса
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}
