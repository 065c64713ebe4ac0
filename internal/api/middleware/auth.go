package middleware

import (
	"net/http"
	"strings"

	"directory/pkg/crypto"
	"directory/pkg/utils"
)

// WriteAuth - middleware для защиты записи в каталог
//
// Требует заголовок Authorization: Bearer <token>, токен сверяется
// с bcrypt хешем (WRITE_TOKEN_HASH, см. directoryctl token hash).
// Пустой tokenHash закрывает доступ полностью.
func WriteAuth(tokenHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok || tokenHash == "" {
				unauthorized(w)
				return
			}

			if err := crypto.VerifyToken(token, tokenHash); err != nil {
				utils.Warn("write token rejected", utils.String("remote", r.RemoteAddr), utils.Err(err))
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="directory"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"message":"Unauthorized"}`))
}
