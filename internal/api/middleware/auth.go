package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// HeaderUserID заголовок с идентификатором пользователя от API-gateway
const HeaderUserID = "X-User-ID"

// Auth проверяет наличие валидного X-User-ID
// Сервис доверяет gateway и не проверяет подпись, только формат
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(HeaderUserID)
		if raw == "" {
			respondUnauthorized(w, "отсутствует заголовок X-User-ID")
			return
		}

		if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
			respondUnauthorized(w, "некорректный заголовок X-User-ID")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
