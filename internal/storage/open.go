// Package storage selects the hotel repository and picture store from config.
package storage

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"hotel_listings/internal/domain"
	"hotel_listings/internal/shared"
	"hotel_listings/internal/storage/local"
	"hotel_listings/internal/storage/memory"
	miniostore "hotel_listings/internal/storage/minio"
	mysqlrepo "hotel_listings/internal/storage/mysql"
)

// OpenRepo returns the configured repository and a close func.
func OpenRepo(ctx context.Context, cfg shared.Config) (domain.HotelRepository, func() error, error) {
	switch cfg.DBDriver {
	case "memory":
		log.Warn().Msg("using in-memory repository, data is lost on exit")
		return memory.New(), func() error { return nil }, nil
	case "mysql", "":
		db, err := mysqlrepo.Open(ctx, cfg.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Msg("database connection ok")
		return mysqlrepo.New(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}

// Files is the picture store plus, for the local disk, a handler that serves
// it publicly. Public is nil when the files live elsewhere.
type Files struct {
	Store  domain.FileStore
	Public http.Handler
}

func OpenFiles(ctx context.Context, cfg shared.Config) (Files, error) {
	switch cfg.StorageDriver {
	case "local", "":
		st, err := local.New(cfg.StorageRoot)
		if err != nil {
			return Files{}, err
		}
		log.Info().Str("root", st.Root()).Msg("local picture storage ready")
		return Files{Store: st, Public: st.Handler()}, nil
	case "minio":
		st, err := miniostore.New(ctx, miniostore.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccess,
			SecretKey: cfg.MinioSecret,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioSSL,
		})
		if err != nil {
			return Files{}, err
		}
		log.Info().Str("bucket", cfg.MinioBucket).Msg("minio picture storage ready")
		return Files{Store: st}, nil
	default:
		return Files{}, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}
