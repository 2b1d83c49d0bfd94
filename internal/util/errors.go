package util

import "errors"

var (
	ErrFormNotFound         = errors.New("formulario no encontrado")
	ErrFormInactive         = errors.New("este formulario ya no está disponible")
	ErrResponseNotFound     = errors.New("respuesta no encontrada")
	ErrAttemptLimitReached  = errors.New("has alcanzado el número máximo de intentos")
	ErrAlreadyPassed        = errors.New("ya aprobaste este examen")
	ErrInvalidPointsConfig  = errors.New("el examen tiene una configuración de puntaje inválida")
	ErrStudentNotRegistered = errors.New("no estás registrado en WE Online")
	ErrCertificateNotFound  = errors.New("certificado no encontrado")
	ErrOdooUnavailable      = errors.New("odoo service unavailable")
)
