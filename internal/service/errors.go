package service

import (
	"errors"

	"gorm.io/gorm"
)

// Ошибки сервисного слоя. Хендлеры маппят их в HTTP-статусы через errors.Is.
var (
	ErrNotFound               = errors.New("not found")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("forbidden")
	ErrConflict               = errors.New("conflict")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInvalidInput           = errors.New("invalid input")
)

// Identity — вызывающий пользователь. UserID == 0 означает отсутствие аутентификации.
type Identity struct {
	UserID  int64
	IsAdmin bool
}

// Authenticated — true, если пользователь известен.
func (id Identity) Authenticated() bool {
	return id.UserID != 0
}

// IsOwnerOrAdmin — единственная проверка прав для всех изменяющих операций.
func IsOwnerOrAdmin(callerID, ownerID int64, callerIsAdmin bool) bool {
	if callerIsAdmin {
		return true
	}
	return callerID != 0 && callerID == ownerID
}

// notFound переводит gorm.ErrRecordNotFound в ErrNotFound, прочие ошибки не трогает.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
