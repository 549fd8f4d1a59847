package main

import (
	"context"
	"expvar"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	_ "net/http/pprof" // registers the /debug/pprof handlers
	"os"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/cddtech/lessonhub/apps/api/echo"
	"github.com/cddtech/lessonhub/apps/shared"
	"github.com/cddtech/lessonhub/core"
	"github.com/cddtech/lessonhub/services/filestorage"
	logsvc "github.com/cddtech/lessonhub/services/logger"
	"github.com/cddtech/lessonhub/storage/database"
	inmemdb "github.com/cddtech/lessonhub/storage/database/inmem"
)

func main() {
	inmem := flag.Bool("inmem", false, "keep data in memory instead of Postgres")
	flag.Parse()

	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewLogger(conf)
	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	// set up DB
	var repos shared.Repositories
	if *inmem {
		logger.Info("Using the in-memory database")
		repos = shared.NewInmemRepositories(inmemdb.Open())
	} else {
		db, err := setUpDB(conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		defer func() {
			if err = db.Close(); err != nil {
				dbLogger.Error("Failed to close", err)
			}
		}()
		repos = shared.NewSQLRepositories(db)
	}

	// set up file storage
	storage, filesDir, err := setUpStorage(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up file storage: %v", err), err)
	}
	if closer, ok := storage.(io.Closer); ok {
		defer func() {
			if err = closer.Close(); err != nil {
				logger.Error("Failed to close file storage", err)
			}
		}()
	}

	validate, translator := shared.NewValidator()
	svcs := shared.NewServices(repos, storage, conf, validate, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : %s", conf))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddress, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Svcs:       svcs,
		Validate:   validate,
		Translator: translator,
		FilesDir:   filesDir,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if conf.Debug {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// setUpStorage returns the configured file storage, and the directory to serve files from when stored on disk.
func setUpStorage(conf *core.Config) (core.FileStorage, string, error) {
	switch conf.Storage.Backend {
	case core.StorageBackendGCS:
		s, err := filestorage.NewGCSStorage(context.Background(), conf)
		return s, "", err
	case core.StorageBackendDisk, "":
		s, err := filestorage.NewDiskStorage(conf.Storage.Dir, conf.Storage.PublicBaseURL)
		if err != nil {
			return nil, "", err
		}
		return s, s.Dir(), nil
	default:
		return nil, "", fmt.Errorf("unknown storage backend %q", conf.Storage.Backend)
	}
}
