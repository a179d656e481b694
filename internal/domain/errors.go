package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrNegativeStock      = errors.New("la operación dejaría stock negativo")
	ErrPasswordMismatch   = errors.New("las contraseñas no coinciden")
)

// RuleError rechazo de una regla de negocio con el mensaje que se devuelve al cliente.
// Envuelve uno de los errores centinela para que se pueda usar errors.Is.
type RuleError struct {
	Err     error
	Message string
}

func (e *RuleError) Error() string { return e.Message }

func (e *RuleError) Unwrap() error { return e.Err }

// NewRuleError construye un RuleError.
func NewRuleError(err error, message string) *RuleError {
	return &RuleError{Err: err, Message: message}
}
