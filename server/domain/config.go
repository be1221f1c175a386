package domain

import "time"

type Config struct {
	ListenAddr   string
	DatabasePath string
	TokenSecret  string
	TokenTTL     time.Duration
}

func NewConfig(listenAddr, databasePath, tokenSecret string, tokenTTL time.Duration) Config {
	return Config{
		ListenAddr:   listenAddr,
		DatabasePath: databasePath,
		TokenSecret:  tokenSecret,
		TokenTTL:     tokenTTL,
	}
}
