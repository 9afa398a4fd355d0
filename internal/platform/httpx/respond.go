package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/menuboard/api/internal/platform/requestctx"

	"go.uber.org/zap"
)

// WriteJSON encodes the payload as JSON with the provided status code.
func WriteJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		requestctx.Logger(ctx).Warn("response encode failed", zap.Error(err))
	}
}
