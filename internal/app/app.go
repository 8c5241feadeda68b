// Package app wires configuration into storage, optional backends and
// services. The server and the admin CLI build on it.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Priya-753/notion-clone/internal/config"
	"github.com/Priya-753/notion-clone/internal/domain/repositories"
	docsysRepo "github.com/Priya-753/notion-clone/internal/domain/repositories/docsystem"
	docsysSvc "github.com/Priya-753/notion-clone/internal/domain/services/docsystem"
	"github.com/Priya-753/notion-clone/internal/export"
	"github.com/Priya-753/notion-clone/internal/extract"
	"github.com/Priya-753/notion-clone/internal/repository/postgres"
	postgresDocsys "github.com/Priya-753/notion-clone/internal/repository/postgres/docsystem"
	"github.com/Priya-753/notion-clone/internal/repository/sqlite"
	sqliteDocsys "github.com/Priya-753/notion-clone/internal/repository/sqlite/docsystem"
	"github.com/Priya-753/notion-clone/internal/search"
	serviceDocsys "github.com/Priya-753/notion-clone/internal/service/docsystem"
	"github.com/Priya-753/notion-clone/internal/service/docsystem/converter"
	"github.com/Priya-753/notion-clone/internal/storage"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Storage is an open document store.
type Storage struct {
	Driver    string
	Documents docsysRepo.DocumentRepository
	Images    docsysRepo.ImageRepository
	Tx        repositories.TransactionManager

	tables *postgres.TableNames
	pool   *pgxpool.Pool
	db     *sql.DB
}

// OpenStorage connects to the store selected by cfg.DatabaseDriver.
func OpenStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Storage, error) {
	tables := postgres.NewTableNames(cfg.TablePrefix)

	switch cfg.DatabaseDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL or SUPABASE_DB_URL is required for the postgres driver")
		}
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		repoConfig := &postgres.RepositoryConfig{Pool: pool, Tables: tables, Logger: logger}
		logger.Info("database connected", "driver", DriverPostgres, "table_prefix", tables.Prefix)
		return &Storage{
			Driver:    DriverPostgres,
			Documents: postgresDocsys.NewDocumentRepository(repoConfig),
			Images:    postgresDocsys.NewImageRepository(repoConfig),
			Tx:        postgres.NewTransactionManager(pool, logger),
			tables:    tables,
			pool:      pool,
		}, nil

	case DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		repoConfig := &sqlite.RepositoryConfig{DB: db, Tables: tables, Logger: logger}
		logger.Info("database connected", "driver", DriverSQLite, "path", cfg.SQLitePath, "table_prefix", tables.Prefix)
		return &Storage{
			Driver:    DriverSQLite,
			Documents: sqliteDocsys.NewDocumentRepository(repoConfig),
			Images:    sqliteDocsys.NewImageRepository(repoConfig),
			Tx:        sqlite.NewTransactionManager(db, logger),
			tables:    tables,
			db:        db,
		}, nil
	}
	return nil, fmt.Errorf("unknown DATABASE_DRIVER %q (want postgres or sqlite)", cfg.DatabaseDriver)
}

// Migrate creates the tables and indexes.
func (s *Storage) Migrate(ctx context.Context) error {
	if s.pool != nil {
		return postgres.Migrate(ctx, s.pool, s.tables)
	}
	return sqlite.Migrate(ctx, s.db, s.tables)
}

// Close releases the connections.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
}

// App holds the services built on one Storage.
type App struct {
	Storage   *Storage
	Search    *search.Service
	Documents docsysSvc.DocumentService
	Images    docsysSvc.ImageService
	Imports   docsysSvc.ImportService
	Exporter  *export.Exporter
	Parser    extract.Extractor

	closers []func()
}

// New opens storage and the optional backends configured in cfg. Optional
// backends that cannot be reached are logged and left out.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	store, err := OpenStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a := &App{Storage: store}
	a.closers = append(a.closers, store.Close)

	var blobs docsysRepo.BlobStore
	if cfg.BlobStorageEnabled() {
		minioStore, err := storage.NewMinioStore(ctx, storage.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MinioPublicURL,
		}, logger)
		if err != nil {
			logger.Warn("blob storage unavailable, image uploads disabled", "endpoint", cfg.MinioEndpoint, "error", err)
		} else {
			blobs = minioStore
			logger.Info("blob storage connected", "endpoint", cfg.MinioEndpoint, "bucket", cfg.MinioBucket)
		}
	} else {
		logger.Info("blob storage not configured, image uploads disabled")
	}

	var meili *search.Meili
	if cfg.MeiliURL != "" {
		meili = search.NewMeili(cfg.MeiliURL, cfg.MeiliAPIKey, cfg.TablePrefix, logger)
		a.closers = append(a.closers, meili.Close)
	}
	a.Search = search.NewService(meili, store.Documents, logger)

	var parser extract.Extractor = extract.NewHTTPExtractor(cfg.ExtractTimeout, logger)
	if cfg.RedisURL != "" {
		client, err := extract.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, parse-url results will not be cached", "error", err)
		} else {
			parser = extract.NewCachedExtractor(parser, client, cfg.ExtractTTL, logger)
			a.closers = append(a.closers, func() { client.Close() })
		}
	}
	a.Parser = parser

	a.Documents = serviceDocsys.NewDocumentService(store.Documents, store.Images, store.Tx,
		serviceDocsys.DocumentDeps{Blobs: blobs, Searcher: a.Search, Indexer: a.Search}, logger)
	a.Images = serviceDocsys.NewImageService(store.Documents, store.Images, blobs, logger)
	a.Imports = serviceDocsys.NewImportService(a.Documents, converter.NewConverterRegistry(), logger)

	var pdf export.PDFRenderer
	if chrome, err := export.NewChromePDF(cfg.ChromePath); err != nil {
		logger.Info("pdf export disabled", "error", err)
	} else {
		pdf = chrome
	}
	a.Exporter = export.NewExporter(pdf, logger)

	return a, nil
}

// Close releases every backend in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
