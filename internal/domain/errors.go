package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product already exists")
)

// ProductNotFoundError reports a missing product. It matches
// ErrProductNotFound with errors.Is.
type ProductNotFoundError struct {
	ID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found with id: %s", e.ID)
}

func (e *ProductNotFoundError) Is(target error) bool {
	return target == ErrProductNotFound
}

// DuplicateProductError reports a create that would repeat an existing
// name and description pair. It matches ErrProductAlreadyExists.
type DuplicateProductError struct {
	Name        string
	Description string
}

func (e *DuplicateProductError) Error() string {
	return fmt.Sprintf("product with name '%s' and description '%s' already exists", e.Name, e.Description)
}

func (e *DuplicateProductError) Is(target error) bool {
	return target == ErrProductAlreadyExists
}
