package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/core/subject"
)

func CreateStudent(t *testing.T, repo student.Repository, admissionNo, name, classLevel string) student.Student {
	t.Helper()
	now := time.Now().UTC()
	st, err := repo.CreateStudent(context.Background(), student.Student{
		AdmissionNo: admissionNo,
		Name:        name,
		ClassLevel:  classLevel,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return st
}

func CreateSubject(t *testing.T, repo subject.Repository, name, classLevel string) subject.Subject {
	t.Helper()
	now := time.Now().UTC()
	sub, err := repo.CreateSubject(context.Background(), subject.Subject{
		Name:       name,
		ClassLevel: classLevel,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return sub
}

func CreateGrade(t *testing.T, repo grade.Repository, studentID, subjectID int, term string, year int, score float64) grade.Grade {
	t.Helper()
	key := grade.Key{StudentID: studentID, SubjectID: subjectID, Term: term, Year: year}
	g, err := repo.UpsertGrade(context.Background(), key, score)
	if err != nil {
		t.Fatalf("CreateGrade() failed: %v", err)
	}
	return g
}

// Logger records messages instead of printing them.
type Logger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
}

func (l *Logger) Debug(msg string, args ...interface{}) {}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *Logger) Warn(msg string, args ...interface{}) {}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.Error(msg, args...)
}
