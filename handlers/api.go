// handlers/api.go
package handlers

import (
	"encoding/json"
	"net/http"
)

// The marketplace clients consume a {success, message?, ...} envelope.
// Domain failures ride a 200 with success:false so the client can show
// the message verbatim; transport-level problems use real status codes.

func respond(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func respondFail(w http.ResponseWriter, message string) {
	respond(w, map[string]interface{}{"success": false, "message": message})
}
