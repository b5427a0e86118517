// Package logger provides structured logging on top of zerolog.
//
// Components obtain a tagged logger via WithComponent and log with
// optional field maps:
//
//	log := logger.NewDefault("marketdata").WithComponent("cache")
//	log.Info("record stored", map[string]interface{}{"key": key})
package logger
