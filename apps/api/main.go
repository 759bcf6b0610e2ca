package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/pkg/errors"

	echoapi "github.com/trezcool/gradebook/apps/api/echo"
	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/report"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/core/subject"
	logsvc "github.com/trezcool/gradebook/services/logger"
	"github.com/trezcool/gradebook/storage/database"
	"github.com/trezcool/gradebook/storage/database/inmem"
	"github.com/trezcool/gradebook/storage/database/sqlx"
)

type repositories struct {
	students student.Repository
	subjects subject.Repository
	grades   grade.Repository
	close    func() error
}

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)
	defer logger.Close()

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	repos, err := setUpRepositories(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = repos.close(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)

	// set up services
	studentSvc := student.NewService(repos.students)
	subjectSvc := subject.NewService(repos.subjects)
	gradeSvc := grade.NewService(repos.grades, repos.students, repos.subjects, validate, logger)
	reportSvc := report.NewService(repos.students, repos.subjects, repos.grades)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			StudentSvc: studentSvc,
			SubjectSvc: subjectSvc,
			GradeSvc:   gradeSvc,
			ReportSvc:  reportSvc,
			Validate:   validate,
			Translator: translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

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

// setUpRepositories returns the in-memory store when configured, PostgreSQL otherwise.
// The PostgreSQL database is created and migrated if needed.
func setUpRepositories(ctx context.Context, conf *core.Config) (repositories, error) {
	if conf.Database.InMemory {
		db := inmemdb.Open()
		return repositories{
			students: inmemdb.NewStudentRepository(db),
			subjects: inmemdb.NewSubjectRepository(db),
			grades:   inmemdb.NewGradeRepository(db),
			close:    func() error { return nil },
		}, nil
	}

	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		return repositories{}, err
	}
	db, err := database.Open(ctx, conf)
	if err != nil {
		return repositories{}, err
	}
	if err = database.Migrate(ctx, db, "up"); err != nil {
		_ = db.Close()
		return repositories{}, errors.Wrap(err, "migrating database")
	}

	return repositories{
		students: sqlxrepos.NewStudentRepository(db),
		subjects: sqlxrepos.NewSubjectRepository(db),
		grades:   sqlxrepos.NewGradeRepository(db),
		close:    db.Close,
	}, nil
}
