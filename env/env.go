package env

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	LogLevelKey     = "CPN_LOG_LEVEL"
	SearchDirsKey   = "CPN_SEARCH_DIRS"
	FontKey         = "CPN_FONT"
	RankDirKey      = "CPN_RANKDIR"
	HistoryLimitKey = "CPN_HISTORY_LIMIT"
)

const (
	DefaultFont         = "Helvetica"
	DefaultRankDir      = "LR"
	DefaultHistoryLimit = 100
)

type Environment struct {
	LogLevel zapcore.Level
	// SearchDirs are where petrifile includes are looked up, in order.
	SearchDirs   []string
	Font         string
	RankDir      string
	HistoryLimit int
}

// Load reads an optional .env file from each of files (".env" when none are
// given) and then the process environment. Missing files are not an error.
func Load(files ...string) (*Environment, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	e := &Environment{
		LogLevel:     zapcore.InfoLevel,
		SearchDirs:   []string{"."},
		Font:         DefaultFont,
		RankDir:      DefaultRankDir,
		HistoryLimit: DefaultHistoryLimit,
	}
	if lvl, ok := os.LookupEnv(LogLevelKey); ok {
		parsed, err := zapcore.ParseLevel(lvl)
		if err != nil {
			return nil, err
		}
		e.LogLevel = parsed
	}
	if dirs, ok := os.LookupEnv(SearchDirsKey); ok && dirs != "" {
		e.SearchDirs = filepath.SplitList(dirs)
	}
	if font, ok := os.LookupEnv(FontKey); ok && font != "" {
		e.Font = font
	}
	if dir, ok := os.LookupEnv(RankDirKey); ok && dir != "" {
		e.RankDir = strings.ToUpper(dir)
	}
	if limit, ok := os.LookupEnv(HistoryLimitKey); ok {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return nil, err
		}
		e.HistoryLimit = n
	}
	return e, nil
}

// Logger builds a development logger at the configured level.
func (e *Environment) Logger() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(e.LogLevel)
	return cfg.Build()
}

// Log writes the loaded settings to logger at debug level.
func (e *Environment) Log(logger *zap.Logger) {
	logger.Debug("Loaded environment",
		zap.Stringer("logLevel", e.LogLevel),
		zap.Strings("searchDirs", e.SearchDirs),
		zap.String("font", e.Font),
		zap.String("rankDir", e.RankDir),
		zap.Int("historyLimit", e.HistoryLimit),
	)
}
