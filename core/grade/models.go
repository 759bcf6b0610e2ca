package grade

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grading"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/core/subject"
)

const (
	minScore = 0
	maxScore = 100
)

type Grade struct {
	ID          int       `json:"id"`
	StudentID   int       `json:"student_id"`
	SubjectID   int       `json:"subject_id"`
	SubjectName string    `json:"subject_name,omitempty"` // resolved by the store on reads
	Term        string    `json:"term"`
	Year        int       `json:"year"`
	Score       float64   `json:"score"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

func (g Grade) Key() Key {
	return Key{StudentID: g.StudentID, SubjectID: g.SubjectID, Term: g.Term, Year: g.Year}
}

func (g Grade) Letter() string { return grading.Letter(g.Score) }

func (g Grade) Points() float64 { return grading.Points(g.Score) }

// Key identifies at most one Grade.
type Key struct {
	StudentID int
	SubjectID int
	Term      string
	Year      int
}

// View is a Grade with its derived letter and points.
type View struct {
	Grade
	Letter string  `json:"letter"`
	Points float64 `json:"points"`
}

func NewView(g Grade) View {
	return View{Grade: g, Letter: g.Letter(), Points: g.Points()}
}

func NewViews(grades []Grade) []View {
	views := make([]View, 0, len(grades))
	for _, g := range grades {
		views = append(views, NewView(g))
	}
	return views
}

// RawScore holds a score as submitted: a JSON number or a numeric string.
type RawScore struct {
	raw string
	set bool
}

func NewRawScore(s string) RawScore {
	return RawScore{raw: s, set: true}
}

func (s *RawScore) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*s = RawScore{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = NewRawScore(str)
		return nil
	}
	*s = NewRawScore(string(data))
	return nil
}

func (s RawScore) MarshalJSON() ([]byte, error) {
	if !s.set {
		return []byte("null"), nil
	}
	return json.Marshal(s.raw)
}

func (s RawScore) IsSet() bool { return s.set }

// Float parses the score; ok is false when it is absent or not a finite number.
func (s RawScore) Float() (score float64, ok bool) {
	if !s.set {
		return 0, false
	}
	score, err := strconv.ParseFloat(strings.TrimSpace(s.raw), 64)
	if err != nil || math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, false
	}
	return score, true
}

// Valid reports whether the score is numeric and within [0,100].
func (s RawScore) Valid() (float64, bool) {
	score, ok := s.Float()
	if !ok || score < minScore || score > maxScore {
		return 0, false
	}
	return grading.Round2(score), true
}

// Entry is one cell of a grade entry sheet.
type Entry struct {
	StudentID int      `json:"student_id"`
	SubjectID int      `json:"subject_id"`
	Score     RawScore `json:"score"`
}

// UnmarshalJSON accepts ids as JSON numbers or numeric strings.
// Any other id decodes as 0, which ValidGrades drops.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw struct {
		StudentID json.RawMessage `json:"student_id"`
		SubjectID json.RawMessage `json:"subject_id"`
		Score     RawScore        `json:"score"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.StudentID = parseID(raw.StudentID)
	e.SubjectID = parseID(raw.SubjectID)
	e.Score = raw.Score
	return nil
}

func parseID(data json.RawMessage) int {
	s := strings.TrimSpace(string(data))
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
	}
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

// BatchSave replaces the grades of every student it names for one term of a year.
type BatchSave struct {
	core.Period
	Grades []Entry `json:"grades" validate:"required"`
}

func (bs *BatchSave) Clean() {
	bs.Period.Clean()
}

// ValidGrades drops invalid entries and returns the rest as Grades.
// When a (student, subject) pair appears more than once, the last entry wins.
func (bs BatchSave) ValidGrades() []Grade {
	grades := make([]Grade, 0, len(bs.Grades))
	index := make(map[[2]int]int, len(bs.Grades))
	for _, e := range bs.Grades {
		if e.StudentID <= 0 || e.SubjectID <= 0 {
			continue
		}
		score, ok := e.Score.Valid()
		if !ok {
			continue
		}
		g := Grade{StudentID: e.StudentID, SubjectID: e.SubjectID, Term: bs.Term, Year: bs.Year, Score: score}
		k := [2]int{e.StudentID, e.SubjectID}
		if i, dup := index[k]; dup {
			grades[i] = g
			continue
		}
		index[k] = len(grades)
		grades = append(grades, g)
	}
	return grades
}

// SingleSave is one auto-saved cell. Term and Year come from the request query.
type SingleSave struct {
	StudentID int      `json:"student_id" validate:"required,min=1"`
	SubjectID int      `json:"subject_id" validate:"required,min=1"`
	Score     RawScore `json:"score"`
	Term      string   `json:"term" validate:"required,term"`
	Year      int      `json:"year" validate:"required,min=2020,max=2030"`
}

// SetDefaults fills the term and year a request did not name.
func (ss *SingleSave) SetDefaults() {
	ss.Term = core.CleanString(ss.Term)
	if ss.Term == "" {
		ss.Term = core.Term1
	}
	if ss.Year == 0 {
		ss.Year = core.CurrentYear()
	}
}

// EntrySheet is what a grade entry form needs for one class, term and year.
type EntrySheet struct {
	core.Period
	Students []student.Student `json:"students"`
	Subjects []subject.Subject `json:"subjects"`
	// Scores of existing grades keyed by EntryKey.
	Scores map[string]float64 `json:"scores"`
}

// EntryKey keys EntrySheet.Scores.
func EntryKey(studentID, subjectID int) string {
	return strconv.Itoa(studentID) + "-" + strconv.Itoa(subjectID)
}

// StudentGrades are the grades of one student for a term of a year.
type StudentGrades struct {
	Student student.Student `json:"student"`
	Term    string          `json:"term"`
	Year    int             `json:"year"`
	Grades  []View          `json:"grades"`
}
