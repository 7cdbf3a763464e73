package utils

import "go.uber.org/zap"

// Err wraps err as a structured log field.
func Err(err error) zap.Field {
	return zap.Error(err)
}
