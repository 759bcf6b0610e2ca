package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/report"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/core/subject"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db         *sqlx.DB
	out        io.Writer
	validate   *validator.Validate
	studentSvc *student.Service
	subjectSvc *subject.Service
	gradeSvc   *grade.Service
	reportSvc  *report.Service
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command: up, up-by-one, up-to, down, down-to, redo, reset, status, version")
	fmt.Fprintln(cli.out, "  seed [-grades -year YEAR] - add the sample students and subjects, optionally with random grades for every term")
	fmt.Fprintln(cli.out, "  ranking -class CLASS -term TERM -year YEAR - print the ranking of a class")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	seedCmd := flag.NewFlagSet("seed", flag.ContinueOnError)
	seedCmd.SetOutput(cli.out)
	seedGrades := seedCmd.Bool("grades", false, "Also generate random grades for every term of -year. Existing grades of that year are replaced.")
	seedYear := seedCmd.Int("year", core.CurrentYear(), "The year of the generated grades.")

	rankingCmd := flag.NewFlagSet("ranking", flag.ContinueOnError)
	rankingCmd.SetOutput(cli.out)
	rankingClass := rankingCmd.String("class", "", "The class level: 7, 8 or 9.")
	rankingTerm := rankingCmd.String("term", core.Term1, "The term: 1, 2 or 3.")
	rankingYear := rankingCmd.Int("year", core.CurrentYear(), "The academic year.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "seed":
		if err := seedCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.seed(*seedGrades, *seedYear)
	case "ranking":
		if err := rankingCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *rankingClass == "" {
			rankingCmd.Usage()
			return errHelp
		}
		return cli.ranking(core.Period{ClassLevel: *rankingClass, Term: *rankingTerm, Year: *rankingYear})
	default:
		cli.printUsage()
		return errHelp
	}
}
