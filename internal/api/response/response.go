// Package response renders the uniform command-surface envelope. Error
// codes and HTTP statuses derive from the fault taxonomy in
// internal/utils, so handlers never pick a status by hand.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/neowatch/neowatch/internal/utils"
)

// Envelope is the reply shape shared by every command.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Page    *PageMeta   `json:"page,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error is the projected fault.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PageMeta describes where a paginated reply sits in the NeoWs catalogue.
type PageMeta struct {
	Page       int  `json:"page"`
	TotalPages int  `json:"total_pages"`
	Count      int  `json:"count"`
	HasMore    bool `json:"has_more"`
}

// Success sends a successful reply.
func Success(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, Envelope{Success: true, Data: data})
}

// Paginated sends a successful reply carrying catalogue page position.
func Paginated(w http.ResponseWriter, data interface{}, meta PageMeta) {
	meta.HasMore = meta.Page+1 < meta.TotalPages
	write(w, http.StatusOK, Envelope{Success: true, Data: data, Page: &meta})
}

// Fail projects a classified fault; status and code come from its kind.
func Fail(w http.ResponseWriter, f *utils.Fault) {
	write(w, f.Kind.HTTPStatus(), Envelope{
		Success: false,
		Error:   &Error{Code: f.Kind.Code(), Message: f.Error()},
	})
}

func write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}
