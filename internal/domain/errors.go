package domain

import "errors"

// Errores de dominio (sin dependencias externas).
//
// Taxonomía: validación (se rechaza antes de mutar nada), conflicto (se rechaza
// tras una verificación de consistencia; reintentar sin releer estado no cambia
// el resultado) y agotamiento de secuencia (techo numérico documentado del
// generador de seriales).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrProductInactive   = errors.New("producto inactivo")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrAlreadySold       = errors.New("la unidad ya fue vendida")
	ErrUnitWithdrawn     = errors.New("la unidad fue retirada de stock")
	ErrSequenceExhausted = errors.New("secuencia de seriales agotada")
)
