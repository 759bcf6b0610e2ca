package main

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/fatih/color"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/report"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/core/subject"
	"github.com/trezcool/gradebook/storage/database/inmem"
	"github.com/trezcool/gradebook/tests"
)

type cliFixture struct {
	*commandLine
	out     *bytes.Buffer
	stRepo  student.Repository
	subRepo subject.Repository
	grRepo  grade.Repository
}

func setup(t *testing.T) cliFixture {
	color.NoColor = true

	// set up DB & repos
	db := inmemdb.Open()
	f := cliFixture{
		out:     new(bytes.Buffer),
		stRepo:  inmemdb.NewStudentRepository(db),
		subRepo: inmemdb.NewSubjectRepository(db),
		grRepo:  inmemdb.NewGradeRepository(db),
	}
	validate := core.NewValidator(core.NewTranslator())

	// start CLI
	f.commandLine = &commandLine{
		out:        f.out,
		validate:   validate,
		studentSvc: student.NewService(f.stRepo),
		subjectSvc: subject.NewService(f.subRepo),
		gradeSvc:   grade.NewService(f.grRepo, f.stRepo, f.subRepo, validate, new(testutil.Logger)),
		reportSvc:  report.NewService(f.stRepo, f.subRepo, f.grRepo),
	}
	return f
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func (tt cliTest) check(t *testing.T, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Equal(t, tt.wantErrStr, err.Error())
		}
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_usage(t *testing.T) {
	f := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "ranking without class", args: []string{"ranking"}, wantErr: errHelp},
		{name: "ranking unknown flag", args: []string{"ranking", "-lol"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, f.run(args))
		})
	}
	assert.Contains(t, f.out.String(), "Usage:")
}

func Test_commandLine_migrate(t *testing.T) {
	f := setup(t)

	gooseRunFunc = func(ctx context.Context, db *sqlx.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "add_remarks", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, f.run(args))
		})
	}
}

func Test_commandLine_seed(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// already there
	testutil.CreateStudent(t, f.stRepo, "JS8-001", "Kate White", core.ClassLevel8)
	testutil.CreateSubject(t, f.subRepo, "Mathematics", core.ClassLevel8)

	require.NoError(t, f.run([]string{"admin", "seed"}))
	assert.Contains(t, f.out.String(), "students: 29 created")
	assert.Contains(t, f.out.String(), "subjects: 28 created")

	cnt, err := f.stRepo.CountStudents(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 30, cnt)
	cnt, err = f.subRepo.CountSubjects(ctx, core.ClassLevel9)
	require.NoError(t, err)
	assert.Equal(t, 12, cnt)

	t.Run("idempotent", func(t *testing.T) {
		f.out.Reset()
		require.NoError(t, f.run([]string{"admin", "seed"}))
		assert.Contains(t, f.out.String(), "students: 0 created")
		assert.Contains(t, f.out.String(), "subjects: 0 created")
	})

	t.Run("grades", func(t *testing.T) {
		randomScore = func() float64 { return 75 }

		f.out.Reset()
		require.NoError(t, f.run([]string{"admin", "seed", "-grades", "-year", "2024"}))
		// 10 students per class: 8 + 9 + 12 subjects, 3 terms
		assert.Contains(t, f.out.String(), "grades: 870 saved for 2024")

		grades, err := f.grRepo.FindByClassTermYear(ctx, core.ClassLevel8, core.Term3, 2024)
		require.NoError(t, err)
		assert.Len(t, grades, 90)
		assert.Equal(t, 75.0, grades[0].Score)
	})

	t.Run("invalid year", func(t *testing.T) {
		err := f.run([]string{"admin", "seed", "-grades", "-year", "1999"})
		assert.EqualError(t, err, "year must be between 2020 and 2030")
	})
}

func Test_commandLine_ranking(t *testing.T) {
	f := setup(t)

	amani := testutil.CreateStudent(t, f.stRepo, "JS8-001", "Amani", core.ClassLevel8)
	neema := testutil.CreateStudent(t, f.stRepo, "JS8-002", "Neema", core.ClassLevel8)
	math := testutil.CreateSubject(t, f.subRepo, "Mathematics", core.ClassLevel8)
	testutil.CreateGrade(t, f.grRepo, amani.ID, math.ID, core.Term1, 2024, 65)
	testutil.CreateGrade(t, f.grRepo, neema.ID, math.ID, core.Term1, 2024, 90)

	require.NoError(t, f.run([]string{"admin", "ranking", "-class", "8", "-term", "1", "-year", "2024"}))
	out := f.out.String()
	assert.Contains(t, out, "Grade 8 Ranking Report")
	assert.Contains(t, out, "Term 1, Academic Year 2024")
	assert.Contains(t, out, "JS8-002")
	assert.Contains(t, out, "90.00%")
	assert.Contains(t, out, "Class Average: 77.50%")
	assert.Less(t, bytes.Index(f.out.Bytes(), []byte("Neema")), bytes.Index(f.out.Bytes(), []byte("Amani")))

	t.Run("no grades", func(t *testing.T) {
		f.out.Reset()
		require.NoError(t, f.run([]string{"admin", "ranking", "-class", "9", "-term", "2", "-year", "2024"}))
		assert.Contains(t, f.out.String(), "No grades recorded")
	})

	t.Run("invalid class", func(t *testing.T) {
		err := f.run([]string{"admin", "ranking", "-class", "12", "-year", "2024"})
		assert.Error(t, err)
	})
}
