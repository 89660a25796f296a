package server

import (
	"context"
	"net/http"

	"usuarios-service/auth"
	"usuarios-service/handlers"

	"github.com/umakantv/go-utils/httpserver"
)

const authNone = "none"

type endpoint struct {
	route   httpserver.Route
	handler httpserver.HandlerFunc
}

// routes is the route table of the service. /usuarios/all is listed before
// /usuarios/{id} and the id is numeric-only so the two never overlap.
func routes(userHandler *handlers.UserHandler) []endpoint {
	return []endpoint{
		{
			route: httpserver.Route{Name: "HealthCheck", Method: http.MethodGet, Path: "/health", AuthType: authNone},
			handler: httpserver.HandlerFunc(func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(`{"status": "healthy", "service": "usuarios-service"}`))
			}),
		},
		{
			route:   httpserver.Route{Name: "RegisterUser", Method: http.MethodPost, Path: "/usuarios/cadastrar", AuthType: authNone},
			handler: httpserver.HandlerFunc(userHandler.Register),
		},
		{
			route:   httpserver.Route{Name: "LoginUser", Method: http.MethodPost, Path: "/usuarios/logar", AuthType: authNone},
			handler: httpserver.HandlerFunc(userHandler.Login),
		},
		{
			route:   httpserver.Route{Name: "UpdateUser", Method: http.MethodPut, Path: "/usuarios/atualizar", AuthType: auth.TypeBasic},
			handler: httpserver.HandlerFunc(userHandler.Update),
		},
		{
			route:   httpserver.Route{Name: "ListUsers", Method: http.MethodGet, Path: "/usuarios/all", AuthType: auth.TypeBasic},
			handler: httpserver.HandlerFunc(userHandler.GetAll),
		},
		{
			route:   httpserver.Route{Name: "GetUser", Method: http.MethodGet, Path: "/usuarios/{id:[0-9]+}", AuthType: auth.TypeBasic},
			handler: httpserver.HandlerFunc(userHandler.GetByID),
		},
	}
}
