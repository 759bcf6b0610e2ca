package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/gradebook/apps/api/echo"
	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/report"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/core/subject"
	"github.com/trezcool/gradebook/storage/database/inmem"
	"github.com/trezcool/gradebook/tests"
)

const schoolName = "Test School"

type testApp struct {
	Server
	stRepo  student.Repository
	subRepo subject.Repository
	grRepo  grade.Repository
	logger  *testutil.Logger
}

func setup(t *testing.T) *testApp {
	t.Helper()

	// set up DB & repos
	db := inmemdb.Open()
	app := &testApp{
		stRepo:  inmemdb.NewStudentRepository(db),
		subRepo: inmemdb.NewSubjectRepository(db),
		grRepo:  inmemdb.NewGradeRepository(db),
		logger:  new(testutil.Logger),
	}

	// set up services
	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	conf := &core.Config{
		TestMode: true,
		AppName:  "Masomo Grades",
		Server:   core.ServerConfig{DisableReqLogs: true},
		School:   core.SchoolConfig{Name: schoolName},
	}

	// set up server
	app.Server = NewServer(ServerDeps{
		Conf:       conf,
		Logger:     app.logger,
		StudentSvc: student.NewService(app.stRepo),
		SubjectSvc: subject.NewService(app.subRepo),
		GradeSvc:   grade.NewService(app.grRepo, app.stRepo, app.subRepo, validate, app.logger),
		ReportSvc:  report.NewService(app.stRepo, app.subRepo, app.grRepo),
		Validate:   validate,
		Translator: translator,
	})
	t.Cleanup(func() { _ = app.Close() })
	return app
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func (app *testApp) do(method, path string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newRequest(method, path, data...)
	app.ServeHTTP(rec, req)
	return rec
}

func (app *testApp) run(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			checkCodeAndData(t, tt, app.do(method, tt.path, tt.body))
		})
	}
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func unmarshall(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData != nil {
		assert.JSONEq(t, string(tt.wantData), rec.Body.String())
	}
}
