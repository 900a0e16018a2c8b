package remote

import (
	"errors"
)

// Таксономия отказов удаленного источника. Транспортные ошибки не имеют
// сентинела и оборачиваются через %w как есть.
var (
	// ErrUnauthorized - admin-возможность отсутствует или истекла; вызывающий
	// должен пройти повторную авторизацию, а не повторять запрос
	ErrUnauthorized = errors.New("remote: unauthorized")

	// ErrNotFound - идентификатор сущности неизвестен удаленному источнику
	ErrNotFound = errors.New("remote: entity not found")

	// ErrValidation - некорректная отправка (например, отсутствует обязательная категория)
	ErrValidation = errors.New("remote: validation failed")

	// ErrUnsupported - операция недоступна у удаленного коллаборатора
	ErrUnsupported = errors.New("remote: operation not supported")
)
