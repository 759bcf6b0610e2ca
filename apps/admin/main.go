package main

import (
	"context"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/report"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/core/subject"
	logsvc "github.com/trezcool/gradebook/services/logger"
	"github.com/trezcool/gradebook/storage/database"
	"github.com/trezcool/gradebook/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	ctx := context.Background()
	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		logger.Fatal("setting up database", errors.Wrap(err, "creating database"))
	}
	db, err := database.Open(ctx, conf)
	if err != nil {
		logger.Fatal("setting up database", err)
	}

	stRepo := sqlxrepos.NewStudentRepository(db)
	subRepo := sqlxrepos.NewSubjectRepository(db)
	grRepo := sqlxrepos.NewGradeRepository(db)
	validate := core.NewValidator(core.NewTranslator())

	// start CLI
	cli := commandLine{
		db:         db,
		out:        os.Stdout,
		validate:   validate,
		studentSvc: student.NewService(stRepo),
		subjectSvc: subject.NewService(subRepo),
		gradeSvc:   grade.NewService(grRepo, stRepo, subRepo, validate, logger),
		reportSvc:  report.NewService(stRepo, subRepo, grRepo),
	}
	err = cli.run(os.Args)
	_ = db.Close()
	logger.Close()
	if err != nil {
		if err != errHelp {
			log.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
