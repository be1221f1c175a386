package main

import (
	"database/sql"
	"log/slog"
	"net/http"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/viper"

	"github.com/ponyo877/flychat/server/adaptor"
	"github.com/ponyo877/flychat/server/domain"
	"github.com/ponyo877/flychat/server/repository"
	"github.com/ponyo877/flychat/server/usecase"
)

func loadConfig() domain.Config {
	viper.SetDefault("listen_addr", ":8000")
	viper.SetDefault("database_path", "./flychat.db")
	viper.SetDefault("token_secret", "your-secret-key")
	viper.SetDefault("token_ttl", "168h")

	viper.SetConfigName("flychat")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("flychat")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("failed to read config file", "error", err)
		}
	}

	return domain.NewConfig(
		viper.GetString("listen_addr"),
		viper.GetString("database_path"),
		viper.GetString("token_secret"),
		viper.GetDuration("token_ttl"),
	)
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg := loadConfig()

	db, err := sql.Open("sqlite3", cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open db", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := repository.NewRepository(db)
	if err := repo.Migrate(); err != nil {
		logger.Error("failed to migrate db", "error", err)
		os.Exit(1)
	}

	registry := domain.NewSessionRegistry(logger)
	tracker := domain.NewMembershipTracker()
	router := domain.NewBroadcastRouter(tracker, logger)

	authUc := usecase.NewAuthUsecase(repo, []byte(cfg.TokenSecret), cfg.TokenTTL)
	roomUc := usecase.NewRoomUsecase(repo, tracker, registry)
	sessionUc := usecase.NewSessionUsecase(repo, registry, tracker, router, logger)

	ad := adaptor.NewAdaptor(authUc, roomUc, sessionUc, logger)

	logger.Info("server is running", "addr", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, ad.Router()); err != nil {
		logger.Error("failed to serve", "error", err)
		os.Exit(1)
	}
}
