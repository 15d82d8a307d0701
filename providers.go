package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/fx"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/moa-works/moa-cli/storage"
)

// LoggerResult holds the configured logger
type LoggerResult struct {
	fx.Out
	Logger *slog.Logger
}

// ProvideLogger creates and returns a logger instance
func ProvideLogger() (LoggerResult, error) {
	logPath, err := getLogFilePath()
	if err != nil {
		return LoggerResult{}, err
	}

	// Set up lumberjack for log rotation
	logFile := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	logLevel := slog.LevelInfo
	if cli.Debug {
		logLevel = slog.LevelDebug
	}

	fileHandler := slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: logLevel})

	logger := slog.New(fileHandler)
	slog.SetDefault(logger)

	return LoggerResult{
		Logger: logger,
	}, nil
}

// ProvideConfig loads and returns the application configuration
func ProvideConfig(logger *slog.Logger) (*Config, error) {
	logger.Info("loading configuration")
	config, err := LoadConfig()
	if err != nil {
		logger.Info("using default configuration due to load failure")
		logger.Debug("config load failure", "error", err)
		defaults := defaultConfig()
		config = &defaults
	}
	logger.Info("configuration loaded", "server", config.Server.BaseURL)
	return config, nil
}

// StorageParams holds parameters for storage initialization
type StorageParams struct {
	fx.In
	Lifecycle fx.Lifecycle
	Config    *Config
	Logger    *slog.Logger
}

// StorageResult holds the storage initialization result
type StorageResult struct {
	fx.Out
	DB *storage.DB
}

// ProvideStorage initializes the SQLite storage database
func ProvideStorage(params StorageParams) (StorageResult, error) {
	params.Logger.Info("initializing storage", "database_path", params.Config.Storage.DatabasePath)
	db, err := storage.InitDB(params.Config.Storage.DatabasePath)
	if err != nil {
		params.Logger.Error("failed to initialize storage", "error", err)
		return StorageResult{}, fmt.Errorf("failed to initialize storage: %w", err)
	}
	params.Logger.Info("storage initialized successfully")

	// Register cleanup on shutdown
	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			params.Logger.Info("closing storage")
			if err := db.Close(); err != nil {
				params.Logger.Error("failed to close storage", "error", err)
				return err
			}
			return nil
		},
	})

	return StorageResult{DB: db}, nil
}

// ProvideKVStore creates the key-value store over the database
func ProvideKVStore(db *storage.DB) *storage.KVStore {
	return storage.NewKVStore(db)
}

// ProvideHistoryStore creates the prompt history store
func ProvideHistoryStore(db *storage.DB, config *Config, logger *slog.Logger) *storage.HistoryStore {
	if !config.History.Enabled {
		return nil
	}
	logger.Info("loading prompt history")
	store := storage.NewHistoryStore(db, &storage.HistoryConfig{
		Enabled:    config.History.Enabled,
		MaxEntries: config.History.MaxEntries,
		MaxAgeDays: config.History.MaxAgeDays,
	})
	if err := store.Cleanup(); err != nil {
		logger.Warn("prompt history cleanup failed", "error", err)
	}
	return store
}

// ProvideAPIClient creates the backend API client
func ProvideAPIClient(config *Config, logger *slog.Logger) *APIClient {
	timeout := time.Duration(config.Server.TimeoutSeconds) * time.Second
	return NewAPIClient(config.Server.BaseURL, timeout, logger)
}

// ProvideAuthSession restores the previous sign-in, if any
func ProvideAuthSession(kv *storage.KVStore, api *APIClient, logger *slog.Logger) *AuthSession {
	auth := NewAuthSession(kv, logger)
	if auth.SignedIn() {
		logger.Info("restored session", "user", auth.User().Email)
		api.SetToken(auth.Token())
	}
	return auth
}

// ProvideTabManager restores the saved conversation tabs
func ProvideTabManager(kv *storage.KVStore, logger *slog.Logger) *TabManager {
	return NewTabManager(kv, logger)
}

// TUIModelParams holds parameters for TUI model creation
type TUIModelParams struct {
	fx.In
	Config  *Config
	API     *APIClient
	Auth    *AuthSession
	Tabs    *TabManager
	History *storage.HistoryStore `optional:"true"`
	Logger  *slog.Logger
}

// ProvideTUIModel creates and returns the TUI model
func ProvideTUIModel(params TUIModelParams) *TUIModel {
	return NewTUIModel(params.Config, params.API, params.Auth, params.Tabs, params.History, params.Logger)
}

// TUIProgramParams holds parameters for TUI program initialization
type TUIProgramParams struct {
	fx.In
	Model  *TUIModel
	Logger *slog.Logger
}

// StartTUI creates the TUI program
func StartTUI(params TUIProgramParams) *tea.Program {
	params.Logger.Info("creating TUI program")

	prog := tea.NewProgram(params.Model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Set global program reference so async operations can send messages
	program = prog

	return prog
}
