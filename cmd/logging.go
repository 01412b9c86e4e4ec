package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lmittmann/tint"
)

var logLevelMap = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func logReplacements(groups []string, a slog.Attr) slog.Attr {
	// Remove time.
	if a.Key == slog.TimeKey && len(groups) == 0 && !logTimeFlag {
		return slog.Attr{}
	}

	// Remove the directory from the source's filename.
	if a.Key == slog.SourceKey {
		source := a.Value.Any().(*slog.Source)
		source.File = filepath.Base(source.File)
	}

	return a
}

func setupLogging() {
	level, ok := logLevelMap[logLevelFlag]
	if !ok {
		level = slog.LevelInfo
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		AddSource:   level == slog.LevelDebug,
		Level:       level,
		ReplaceAttr: logReplacements,
	}))
	slog.SetDefault(logger)
}
