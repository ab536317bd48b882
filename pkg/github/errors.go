package github

import "errors"

var (
	ErrGraphQL      = errors.New("github graphql error")
	ErrInvalidInput = errors.New("invalid input")
)
