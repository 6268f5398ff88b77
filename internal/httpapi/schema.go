package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/invopop/jsonschema"
)

// SchemaHandler serves the JSON Schema for the admin API's request
// bodies, so operator tooling can validate payloads client-side before
// calling RegisterExtConfig.
func SchemaHandler(w http.ResponseWriter, r *http.Request) {
	reflector := &jsonschema.Reflector{}
	schema := reflector.Reflect(&registerExtConfigRequest{})
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(schema)
}
