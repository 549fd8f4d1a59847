package main

import (
	"fmt"
	"log"
	"os"

	"github.com/cddtech/lessonhub/apps/shared"
	"github.com/cddtech/lessonhub/core"
	"github.com/cddtech/lessonhub/services/filestorage"
	logsvc "github.com/cddtech/lessonhub/services/logger"
	"github.com/cddtech/lessonhub/storage/database"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(false)

	// set up DB
	if conf.Debug {
		if err := database.CreateIfNotExist(conf); err != nil {
			logger.Fatal(fmt.Sprintf("creating database: %v", err), err)
		}
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}

	// the admin never uploads: the disk storage is enough to build the services
	storage, err := filestorage.NewDiskStorage(conf.Storage.Dir, conf.Storage.PublicBaseURL)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up file storage: %v", err), err)
	}

	repos := shared.NewSQLRepositories(db)
	validate, _ := shared.NewValidator()

	// start CLI
	cli := commandLine{
		db:    db.DB,
		repos: repos,
		svcs:  shared.NewServices(repos, storage, conf, validate, logger),
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("\nerror: %s", err))
		}
		os.Exit(1)
	}
}
