package middleware

import (
	"fmt"
	"net/http"
)

// errorJSON пишет ошибку в том же JSON-конверте, что и handlers,
// чтобы клиенту не приходилось парсить два формата ошибок.
// %q экранирует кавычки в message, конверт остается валидным JSON.
func errorJSON(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"error":%q,"message":%q}`, http.StatusText(status), message)
}
