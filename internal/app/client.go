package app

import (
	"sync"

	"github.com/samvad-hq/bitflyer-go/internal/config"
	"github.com/samvad-hq/bitflyer-go/internal/logger"
	"github.com/samvad-hq/bitflyer-go/pkg/bitflyer"
)

// NewClient builds an API client from config.
func NewClient(cfg *config.Config, log logger.Logger) *bitflyer.Client {
	opts := []bitflyer.Option{
		bitflyer.WithBaseURL(cfg.BaseURL),
		bitflyer.WithTimeout(cfg.RequestTimeout),
		bitflyer.WithRetry(cfg.RetryCount),
		bitflyer.WithKeepSession(cfg.KeepSession),
		bitflyer.WithLogger(log),
	}
	if cfg.HasCredentials() {
		opts = append(opts, bitflyer.WithCredentials(cfg.APIKey, cfg.APISecret))
	}
	if cfg.SerializeRequests {
		opts = append(opts, bitflyer.WithLock(&sync.Mutex{}))
	}
	if logger.S != nil {
		opts = append(opts, bitflyer.WithTransportLogger(logger.S))
	}
	return bitflyer.New(opts...)
}
