package importer

import "errors"

// Configuration-level errors abort the batch before any row is processed.
var (
	ErrMapeoVacio       = errors.New("especificación de mapeo vacía")
	ErrMapeoSinDNI      = errors.New("ninguna regla produce el campo dni")
	ErrColumnaVacia     = errors.New("nombre de columna vacío")
	ErrSeparadorVacio   = errors.New("separador vacío en regla de división")
	ErrCampoDesconocido = errors.New("campo canónico desconocido")
)
