package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerMatchRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/matches", handler.ListMatches)
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatch)
	mux.HandleFunc("GET /v1/matches/{matchID}/stats", handler.GetMatchStats)
}

func registerSettlementRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.HandleFunc("GET /v1/posts/{postID}/settlement", handler.GetSettlement)
	mux.Handle("POST /v1/posts/{postID}/settlement", RequireInternalJobToken(internalJobToken, RequireActor(http.HandlerFunc(handler.SettlePost))))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/settle-finished", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSettleFinishedJob)))
}
