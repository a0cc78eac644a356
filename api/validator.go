package main

import (
	"encoding/json"
	"errors"
)

type validator struct {
	errors map[string]string
}

func newValidator() *validator {
	return &validator{
		errors: make(map[string]string),
	}
}

func (v *validator) toError() error {
	if v == nil {
		return errors.New("")
	}
	data, err := json.Marshal(v.errors)
	if err != nil {
		return err
	}
	return errors.New(string(data))
}

func (v *validator) hasErrors() bool {
	return len(v.errors) != 0
}

func (v *validator) checkCond(cond bool, key, msg string) {
	if cond {
		return
	}
	if _, ok := v.errors[key]; !ok {
		v.errors[key] = msg
	}
}

func (v *validator) checkUsername(username string) {
	v.checkCond(username != "", "username", "must be provided")
	v.checkCond(len(username) <= 255, "username", "must be atmost 255 characters")
}

func (v *validator) checkPassword(password string) {
	v.checkCond(password != "", "password", "must be provided")
	v.checkCond(len(password) >= 8, "password", "must be atleast 8 characters long")
	v.checkCond(len(password) <= 72, "password", "must be atmost 72 characters long")
}

func (v *validator) checkTitle(title string) {
	v.checkCond(title != "", "title", "must be provided")
	v.checkCond(len(title) <= 500, "title", "must be atmost 500 characters")
}
