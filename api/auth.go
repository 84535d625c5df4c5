package api

import (
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/banking-core/internal/logging"
	"github.com/carson-networks/banking-core/internal/sandbox"
)

type tokenParser interface {
	Parse(token string) (string, error)
}

// BearerAuth authenticates every Huma operation with a sandbox JWT and
// places the owner in the request context.
func BearerAuth(api huma.API, tokens tokenParser) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		token, ok := strings.CutPrefix(ctx.Header("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "missing bearer token")
			return
		}

		ownerID, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "invalid bearer token", err)
			return
		}

		if logData := logging.GetLogData(ctx.Context()); logData != nil {
			logData.AddData("ownerID", ownerID)
		}
		next(huma.WithContext(ctx, sandbox.WithOwner(ctx.Context(), ownerID)))
	}
}
