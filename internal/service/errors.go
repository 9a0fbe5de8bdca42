package service

import "errors"

var (
	ErrIdentityRequired = errors.New("select an identity before sending messages")
	ErrEmptyMessage     = errors.New("message content is empty")
	ErrResourceNotFound = errors.New("resource not found")
	ErrInvalidDataURI   = errors.New("resource data is not a base64 data URI")
	ErrFileTooLarge     = errors.New("uploaded file exceeds the size limit")
	ErrNoFiles          = errors.New("no files uploaded")
)
