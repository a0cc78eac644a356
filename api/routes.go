package main

import (
	"net/http"
)

func composeRoutes(app *application) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthcheck", app.healthCheckHandler)

	mux.HandleFunc("POST /auth/register", app.registerUserHandler)
	mux.HandleFunc("POST /auth/login", app.loginUserHandler)

	mux.HandleFunc("GET /tasks", app.requireAuthenticatedUser(app.getTasksHandler))
	mux.HandleFunc("POST /tasks", app.requireAuthenticatedUser(app.createTaskHandler))
	mux.HandleFunc("GET /tasks/{id}", app.requireAuthenticatedUser(app.getTaskHandler))
	mux.HandleFunc("PUT /tasks/{id}", app.requireAuthenticatedUser(app.updateTaskHandler))
	mux.HandleFunc("DELETE /tasks/{id}", app.requireAuthenticatedUser(app.deleteTaskHandler))

	if len(app.config.cors.trustedOrigins) > 0 {
		return app.enableCORS(mux)
	}
	return mux
}
