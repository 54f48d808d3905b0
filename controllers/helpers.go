package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"creditbank/services"
	"creditbank/utils"

	"github.com/gorilla/mux"
)

// writeJSON отправляет ответ в формате JSON
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		utils.LogError("Ошибка кодирования ответа: %v", err)
	}
}

// writeFieldErrors отправляет ошибки валидации по полям
func writeFieldErrors(w http.ResponseWriter, fieldErrors services.FieldErrors) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": fieldErrors})
}

// internalError логирует ошибку и отвечает 500 без подробностей
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	utils.LogError("Ошибка обработки %s %s: %v", r.Method, r.URL.Path, err)
	utils.GetMetrics().RecordError(err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

// pathID извлекает числовой параметр {id} из пути
func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func jsonNumber(s string) json.Number {
	return json.Number(strings.TrimSpace(s))
}

func uintString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
