package server

import (
	"encoding/json"
	"net/http"
)

const encodeFailureBody = `{"success":false,"error":"internal server error"}`

type envelope struct {
	Success bool     `json:"success"`
	Data    any      `json:"data,omitempty"`
	Error   string   `json:"error,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v envelope) {
	body, err := json.Marshal(v)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(encodeFailureBody + "\n"))
		return
	}
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Error: msg})
}

func writeValidation(w http.ResponseWriter, errs []string) {
	writeJSON(w, http.StatusBadRequest, envelope{Error: "validation failed", Errors: errs})
}
