package server

import (
	"errors"
	"syscall"
)

var (
	ErrPortInUse       = errors.New("address already in use")
	ErrStartup         = errors.New("failed to start server")
	ErrRootUnavailable = errors.New("site root unavailable")
)

const (
	ExitOK           = 0
	ExitStartupError = 1
	ExitUsageError   = 2
	ExitPortInUse    = 3
)

// ExitCode はエラーをプロセスの終了コードに変換する
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrPortInUse):
		return ExitPortInUse
	default:
		return ExitStartupError
	}
}

func isAddrInUse(err error) bool {
	return errors.Is(err, syscall.EADDRINUSE)
}
