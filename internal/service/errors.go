package service

import "errors"

var (
	ErrInvalidURL        = errors.New("url must be an absolute http or https URL")
	ErrTextTooLong       = errors.New("text exceeds the maximum length")
	ErrEmptyText         = errors.New("text must not be empty")
	ErrUnsupportedSource = errors.New("source must be text or ocr")
	ErrPageFetch         = errors.New("failed to fetch page")
	ErrBlockedHost       = errors.New("url resolves to a non-public address")
	ErrObjectNotFound    = errors.New("object not found")
	ErrUnsafePath        = errors.New("storage path is not allowed")
	ErrInvalidImage      = errors.New("invalid image data")
	ErrImageTooLarge     = errors.New("image exceeds the maximum size")
	ErrInvalidOwner      = errors.New("userId and recipeId may only contain letters, digits, '-' and '_'")
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")
)
