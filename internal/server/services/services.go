// Package services contains the server-side business logic. Every exported
// operation returns either nil or a *common.Error whose Kind decides the HTTP
// status and whose Message is shown to the caller.
package services

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/recipeshare/internal/common"
	"github.com/google/uuid"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 50
)

// Caller is the authenticated user behind a request. The zero value is an
// anonymous caller.
type Caller struct {
	ProfileID string
}

func (c Caller) Authenticated() bool {
	return c.ProfileID != ""
}

// Page selects a window of a list. Zero values mean the first page of
// DefaultPageSize items.
type Page struct {
	Number int
	Size   int
}

func (p Page) limitOffset() (limit, offset int, err error) {
	number, size := p.Number, p.Size
	if number == 0 {
		number = 1
	}
	if size == 0 {
		size = DefaultPageSize
	}
	if number < 1 || size < 1 || size > MaxPageSize {
		return 0, 0, common.NewError(common.ErrorValidation, common.MsgInvalidPage)
	}
	return size, (number - 1) * size, nil
}

func requireCaller(c Caller) error {
	if !c.Authenticated() {
		return common.NewError(common.ErrorUnauthorized, common.MsgUnauthorized)
	}
	return nil
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.NewError(common.ErrorValidation, common.MsgInvalidID)
	}
	return nil
}

// storeMessage returns the innermost message of err, which is what the
// database or object store reported.
func storeMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return strings.TrimSpace(err.Error())
		}
		err = next
	}
}

// asError keeps an existing *common.Error and otherwise wraps err as kind
// with a message built from format and the store message.
func asError(err error, kind error, format string) error {
	var ce *common.Error
	if errors.As(err, &ce) {
		return err
	}
	return common.NewError(kind, format, storeMessage(err))
}

// loadError maps a failed read: not found becomes notFoundMsg, anything else
// an internal error.
func loadError(err error, notFoundMsg string) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.NewError(common.ErrorNotFound, "%s", notFoundMsg)
	}
	return asError(err, common.ErrorInternal, common.MsgLoadData)
}

func isNotFound(err error) bool {
	return errors.Is(err, common.ErrorNotFound)
}
