package utils

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

var (
	InfoLogger  = log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime)
	ErrorLogger = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime)
	DebugLogger = log.New(os.Stdout, "DEBUG: ", log.Ldate|log.Ltime)
)

// InitLogger перенаправляет логи в файлы info.log, error.log и debug.log каталога dir.
// Без вызова логи пишутся в stdout и stderr.
func InitLogger(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	open := func(name string) (*os.File, error) {
		return os.OpenFile(filepath.Join(dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	}

	infoFile, err := open("info.log")
	if err != nil {
		return fmt.Errorf("failed to open info log file: %w", err)
	}
	errorFile, err := open("error.log")
	if err != nil {
		return fmt.Errorf("failed to open error log file: %w", err)
	}
	debugFile, err := open("debug.log")
	if err != nil {
		return fmt.Errorf("failed to open debug log file: %w", err)
	}

	InfoLogger = log.New(infoFile, "INFO: ", log.Ldate|log.Ltime)
	ErrorLogger = log.New(errorFile, "ERROR: ", log.Ldate|log.Ltime)
	DebugLogger = log.New(debugFile, "DEBUG: ", log.Ldate|log.Ltime)
	return nil
}

// LogInfo логирует информационное сообщение
func LogInfo(format string, v ...interface{}) {
	_, file, line, _ := runtime.Caller(1)
	InfoLogger.Printf("%s:%d - %s", filepath.Base(file), line, fmt.Sprintf(format, v...))
}

// LogError логирует сообщение об ошибке
func LogError(format string, v ...interface{}) {
	_, file, line, _ := runtime.Caller(1)
	ErrorLogger.Printf("%s:%d - %s", filepath.Base(file), line, fmt.Sprintf(format, v...))
}

// LogDebug логирует отладочное сообщение
func LogDebug(format string, v ...interface{}) {
	_, file, line, _ := runtime.Caller(1)
	DebugLogger.Printf("%s:%d - %s", filepath.Base(file), line, fmt.Sprintf(format, v...))
}

// LogOperation логирует операцию с длительностью
func LogOperation(operation string, startTime time.Time, err error) {
	duration := time.Since(startTime)
	if err != nil {
		ErrorLogger.Printf("Operation %s failed after %v: %v", operation, duration, err)
	} else {
		InfoLogger.Printf("Operation %s completed in %v", operation, duration)
	}
}
