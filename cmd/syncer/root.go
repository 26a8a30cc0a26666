package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	"contacts-sync-service/internal/accounts"
	"contacts-sync-service/internal/config"
	"contacts-sync-service/internal/database"
	"contacts-sync-service/internal/directory"
	"contacts-sync-service/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	cfgDirectoryURL string
	cfgDBPath       string
	cfgAccountsFile string
	cfgLogLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "syncer",
	Short: "Syncer - coworker contacts sync client",
	Long: `Syncer copies the contacts of your office coworkers from the company
directory into the local contact store, one group per account.

Contacts that already exist locally are never overwritten.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDirectoryURL, "directory-url", "", "URL of the company directory (default: $DIRECTORY_URL)")
	rootCmd.PersistentFlags().StringVar(&cfgDBPath, "db-path", "", "Path to local contact store (default: $SYNC_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&cfgAccountsFile, "accounts-file", "", "Path to accounts file (default: $SYNC_ACCOUNTS_FILE)")
	rootCmd.PersistentFlags().StringVar(&cfgLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(contactsCmd)
}

// loadConfig: значения по умолчанию < переменные окружения (.env) < флаги.
func loadConfig() config.SyncConfig {
	cfg, _ := config.LoadSyncConfig()

	if cfgDirectoryURL != "" {
		cfg.DirectoryURL = cfgDirectoryURL
	}
	if cfgDBPath != "" {
		cfg.DBPath = cfgDBPath
	}
	if cfgAccountsFile != "" {
		cfg.AccountsFile = cfgAccountsFile
	}
	if cfgLogLevel != "" {
		cfg.LogLevel = cfgLogLevel
	}

	return cfg
}

func newLogger(cfg config.SyncConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.LogFile != "" {
		logger.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}))
	}

	return logger
}

// app - зависимости команд синхронизации.
type app struct {
	cfg       config.SyncConfig
	logger    *logrus.Logger
	accounts  *accounts.Store
	directory *directory.HTTPClient

	db    *sql.DB
	store *repository.LocalContactStore
}

func newApp() (*app, error) {
	cfg := loadConfig()
	logger := newLogger(cfg)

	accountStore, err := accounts.Open(cfg.AccountsFile, cfg.AccountType)
	if err != nil {
		return nil, fmt.Errorf("open accounts: %w", err)
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		accounts:  accountStore,
		directory: directory.NewHTTPClient(cfg.DirectoryURL, accountStore, cfg.DirectoryTimeout),
	}, nil
}

// openStore открывает локальное хранилище контактов.
func (a *app) openStore() (*repository.LocalContactStore, error) {
	if a.store != nil {
		return a.store, nil
	}

	db, err := database.NewSQLiteDB(a.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open contact store: %w", err)
	}
	a.db = db
	a.store = repository.NewLocalContactStore(db)

	return a.store, nil
}

func (a *app) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}
