package middleware

import (
	"net/http"
	"runtime/debug"

	"directory/pkg/utils"
)

// Recovery - middleware для восстановления после паники в handlers
//
// Логирует панику со stack trace и отвечает 500 в формате {"message": "..."}.
// Детали паники клиенту не отдаются.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}

				utils.Error("panic in handler",
					utils.Any("panic", err),
					utils.String("path", r.URL.Path),
					utils.String("stack", string(debug.Stack())),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"message":"Internal Server Error"}`))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
