package main

import "errors"

var (
	ErrValidation = errors.New("validation failed")
	ErrExists     = errors.New("already exists")
	ErrNotMember  = errors.New("not a member")
)
