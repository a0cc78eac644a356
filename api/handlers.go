package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
)

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	healthCheck := struct {
		Status      string `json:"status"`
		Environment string `json:"environment"`
		Version     string `json:"version"`
	}{
		Status:      "available",
		Environment: app.config.env,
		Version:     version,
	}
	writeJSON(w, http.StatusOK, healthCheck)
}

func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	v := newValidator()
	v.checkUsername(input.Username)
	v.checkPassword(input.Password)
	if v.hasErrors() {
		writeError(w, v.toError(), http.StatusBadRequest)
		return
	}
	hash, err := hashPassword(input.Password)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	u := &user{
		Username:     input.Username,
		PasswordHash: hash,
	}
	err = app.storage.insertUser(u)
	if err != nil {
		switch {
		case errors.Is(err, errConflict):
			writeError(w, errors.New("user already exists"), http.StatusBadRequest)
		default:
			log.Println(err)
			writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User created successfully"})
}

func (app *application) loginUserHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	u, err := app.storage.getUserByUsername(input.Username)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	if u == nil || !verifyPassword(input.Password, u.PasswordHash) {
		writeError(w, errors.New("invalid credentials"), http.StatusUnauthorized)
		return
	}
	token, err := issueToken(u.ID, []byte(app.config.jwt.secret), app.config.jwt.ttl)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": token})
}

func (app *application) getTasksHandler(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromRequest(r)
	tasks, err := app.storage.getTasks(userID)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (app *application) getTaskHandler(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromRequest(r)
	taskID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, errors.New("task not found"), http.StatusNotFound)
		return
	}
	t, err := app.storage.getTask(userID, taskID)
	if err != nil {
		switch {
		case errors.Is(err, errNotFound):
			writeError(w, errors.New("task not found"), http.StatusNotFound)
		default:
			log.Println(err)
			writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (app *application) createTaskHandler(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromRequest(r)
	var input struct {
		Title       string  `json:"title"`
		Description *string `json:"description"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	v := newValidator()
	v.checkTitle(input.Title)
	if v.hasErrors() {
		writeError(w, v.toError(), http.StatusBadRequest)
		return
	}
	t := &task{
		Title:       input.Title,
		Description: input.Description,
		UserID:      userID,
	}
	err = app.storage.insertTask(t)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (app *application) updateTaskHandler(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromRequest(r)
	taskID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, errors.New("task not found"), http.StatusNotFound)
		return
	}
	var input struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Completed   *bool   `json:"completed"`
	}
	err = json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	t, err := app.storage.getTask(userID, taskID)
	if err != nil {
		switch {
		case errors.Is(err, errNotFound):
			writeError(w, errors.New("task not found"), http.StatusNotFound)
		default:
			log.Println(err)
			writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		}
		return
	}
	// partial update: only supplied fields overwrite existing values
	if input.Title != nil {
		t.Title = *input.Title
	}
	if input.Description != nil {
		t.Description = input.Description
	}
	if input.Completed != nil {
		t.Completed = *input.Completed
	}
	v := newValidator()
	v.checkTitle(t.Title)
	if v.hasErrors() {
		writeError(w, v.toError(), http.StatusBadRequest)
		return
	}
	err = app.storage.updateTask(t)
	if err != nil {
		switch {
		case errors.Is(err, errNotFound):
			writeError(w, errors.New("task not found"), http.StatusNotFound)
		default:
			log.Println(err)
			writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (app *application) deleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromRequest(r)
	taskID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, errors.New("task not found"), http.StatusNotFound)
		return
	}
	err = app.storage.deleteTask(userID, taskID)
	if err != nil {
		switch {
		case errors.Is(err, errNotFound):
			writeError(w, errors.New("task not found"), http.StatusNotFound)
		default:
			log.Println(err)
			writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(data)
}

func composeJSONError(err error) string {
	jsonError := map[string]string{
		"error": err.Error(),
	}
	result, err := json.Marshal(jsonError)
	if err != nil {
		log.Println(err)
		return ""
	}
	return string(result)
}

func writeError(w http.ResponseWriter, err error, statusCode int) {
	h := w.Header()
	h.Del("Content-Length")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(statusCode)
	fmt.Fprintln(w, composeJSONError(err))
}
