package log

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"
)

// logWriter implements an io.Writer that outputs to both standard output and
// the write-end pipe of an initialized log rotator.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	os.Stdout.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

var (
	// backendLog is the logging backend used to create all subsystem loggers.
	backendLog = btclog.NewBackend(logWriter{})

	// logRotator is one of the logging outputs.  It should be closed on
	// application shutdown.
	logRotator *rotator.Rotator

	// Log is the general purpose logger of the command line tools.
	Log = backendLog.Logger("CUST")
	// Insc logs commit/reveal construction and broadcast.
	Insc = backendLog.Logger("INSC")
	// Keys logs the master seed lifecycle and key derivation.
	Keys = backendLog.Logger("KEYS")
	// Srv logs the key server http api.
	Srv = backendLog.Logger("SRVR")
	// DB logs the seed stores and inscribe records.
	DB = backendLog.Logger("DBST")
)

// subsystemLoggers maps each subsystem identifier to its associated logger.
var subsystemLoggers = map[string]btclog.Logger{
	"CUST": Log,
	"INSC": Insc,
	"KEYS": Keys,
	"SRVR": Srv,
	"DBST": DB,
}

// InitLogRotator initializes the logging rotater to write logs to logFile and
// create roll files in the same directory.  It must be called before the
// package-global log rotater variables are used.
func InitLogRotator(logFile string) {
	logDir, _ := filepath.Split(logFile)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log directory: %v\n", err)
		os.Exit(1)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create file rotator: %v\n", err)
		os.Exit(1)
	}
	logRotator = r
}

// CloseLogRotator flushes and closes the rotator, if any.
func CloseLogRotator() {
	if logRotator != nil {
		logRotator.Close()
	}
}

// SetLogLevels sets the log level for all subsystem loggers. An unknown
// level falls back to info.
func SetLogLevels(logLevel string) {
	level, ok := btclog.LevelFromString(logLevel)
	if !ok {
		level = btclog.LevelInfo
	}
	for _, logger := range subsystemLoggers {
		logger.SetLevel(level)
	}
}
