package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nimasrn/card-gateway/internal/services"
	xhttp "github.com/nimasrn/card-gateway/pkg/http"
)

// readJSON decodes the request body into dst. An empty body leaves dst at
// its zero value, the same as `{}`.
func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := bytes.TrimSpace(ctx.PostBody())
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		status = xhttp.StatusInternalServerError
		b = []byte(`{"success":false,"message":"failed to encode response","status":500}`)
	}
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

// writeError answers with the APIError envelope. Unshaped errors become a
// generic 500 so internals never reach the client.
func writeError(ctx *xhttp.RequestCtx, err error) {
	var apiErr *services.APIError
	if !errors.As(err, &apiErr) {
		apiErr = &services.APIError{
			Success: false,
			Message: xhttp.StatusText(xhttp.StatusInternalServerError),
			Status:  xhttp.StatusInternalServerError,
		}
	}
	writeJSON(ctx, apiErr.Status, apiErr)
}

func badRequest(ctx *xhttp.RequestCtx, msg string) {
	writeError(ctx, &services.APIError{Success: false, Message: msg, Status: xhttp.StatusBadRequest})
}

func pathParam(ctx *xhttp.RequestCtx, name string) string {
	return fmt.Sprint(ctx.UserValue(name))
}
