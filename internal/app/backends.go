package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dungpham-npc/storefront/internal/config"
	"github.com/dungpham-npc/storefront/internal/mail"
	"github.com/dungpham-npc/storefront/internal/search"
	"github.com/dungpham-npc/storefront/internal/service"
	"github.com/dungpham-npc/storefront/internal/storage"
	"github.com/dungpham-npc/storefront/pkg/httpclient"
)

func newMailSender(cfg *config.Config, logger *slog.Logger) (mail.Sender, error) {
	switch cfg.MailBackend {
	case config.MailSMTP:
		logger.Info("mail backend: smtp", slog.String("host", cfg.SMTPHost))
		return mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			SSL:      cfg.SMTPSSL,
			Timeout:  cfg.SMTPTimeout,
		}, logger), nil
	case config.MailLog:
		return mail.NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail backend %q", cfg.MailBackend)
	}
}

func newAssetStore(cfg *config.Config, reg prometheus.Registerer, logger *slog.Logger) (service.AssetStore, error) {
	switch cfg.AssetBackend {
	case config.AssetS3:
		store, err := storage.NewS3Store(storage.S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, fmt.Errorf("init s3 asset store: %w", err)
		}
		logger.Info("asset backend: s3", slog.String("bucket", cfg.S3Bucket))
		return store, nil
	case config.AssetRemote:
		client := httpclient.NewCircuitBreakerClient(
			httpclient.New(httpclient.DefaultConfig()),
			httpclient.DefaultCircuitBreakerConfig("asset-host"),
			httpclient.NewBreakerMetrics(reg),
			logger,
		)
		logger.Info("asset backend: remote", slog.String("url", cfg.AssetHostURL))
		return storage.NewRemoteStore(client, cfg.AssetHostURL, cfg.AssetHostAPIKey, logger), nil
	case config.AssetMemory:
		logger.Warn("asset backend: memory, uploaded images are lost on restart")
		return storage.NewMemoryStore(cfg.AssetPublicURL), nil
	default:
		return nil, fmt.Errorf("unknown asset backend %q", cfg.AssetBackend)
	}
}

// newProductIndex returns the configured index. The second result is set only
// for Elasticsearch so the caller can register its health check.
func newProductIndex(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.ProductIndex, *search.ElasticsearchIndex, error) {
	switch cfg.SearchBackend {
	case config.SearchES:
		index, err := search.NewElasticsearchIndex(cfg.ElasticsearchAddresses, cfg.ElasticsearchIndex, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := index.EnsureIndex(ctx); err != nil {
			return nil, nil, fmt.Errorf("ensure search index: %w", err)
		}
		logger.Info("search backend: elasticsearch", slog.Any("addresses", cfg.ElasticsearchAddresses))
		return index, index, nil
	case config.SearchMemory:
		return search.NewMemoryIndex(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown search backend %q", cfg.SearchBackend)
	}
}
