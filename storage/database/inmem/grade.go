package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/grade"
)

var (
	errTxDone       = errors.New("transaction has already been committed or rolled back")
	errGradeExists  = errors.New("duplicate grade for student, subject, term and year")
	errUnknownRefer = errors.New("grade references an unknown student or subject")
)

type gradeRepository struct {
	db *DB
}

func NewGradeRepository(db *DB) grade.Repository {
	return &gradeRepository{db: db}
}

// view copies g and resolves its subject name. The caller holds the lock.
func (repo *gradeRepository) view(g *grade.Grade) grade.Grade {
	res := *g
	if sub, ok := repo.db.subjects[g.SubjectID]; ok {
		res.SubjectName = sub.Name
	}
	return res
}

func (repo *gradeRepository) find(match func(g *grade.Grade) bool) []grade.Grade {
	grades := make([]grade.Grade, 0)
	for _, g := range repo.db.grades {
		if match(g) {
			grades = append(grades, repo.view(g))
		}
	}
	return grades
}

func (repo *gradeRepository) studentName(id int) string {
	if st, ok := repo.db.students[id]; ok {
		return st.Name
	}
	return ""
}

func (repo *gradeRepository) inClass(studentID int, classLevel string) bool {
	st, ok := repo.db.students[studentID]
	return ok && st.ClassLevel == classLevel
}

func sortBySubjectName(grades []grade.Grade) {
	sort.Slice(grades, func(i, j int) bool {
		if grades[i].SubjectName != grades[j].SubjectName {
			return grades[i].SubjectName < grades[j].SubjectName
		}
		return grades[i].ID < grades[j].ID
	})
}

func (repo *gradeRepository) FindByStudentTermYear(_ context.Context, studentID int, term string, year int) ([]grade.Grade, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	grades := repo.find(func(g *grade.Grade) bool {
		return g.StudentID == studentID && g.Term == term && g.Year == year
	})
	sortBySubjectName(grades)
	return grades, nil
}

func (repo *gradeRepository) FindByClassTermYear(_ context.Context, classLevel, term string, year int) ([]grade.Grade, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	grades := repo.find(func(g *grade.Grade) bool {
		return g.Term == term && g.Year == year && repo.inClass(g.StudentID, classLevel)
	})
	sort.Slice(grades, func(i, j int) bool {
		a, b := grades[i], grades[j]
		if na, nb := repo.studentName(a.StudentID), repo.studentName(b.StudentID); na != nb {
			return na < nb
		}
		if a.StudentID != b.StudentID {
			return a.StudentID < b.StudentID
		}
		if a.SubjectName != b.SubjectName {
			return a.SubjectName < b.SubjectName
		}
		return a.ID < b.ID
	})
	return grades, nil
}

func (repo *gradeRepository) FindBySubjectClassTermYear(_ context.Context, subjectID int, classLevel, term string, year int) ([]grade.Grade, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	grades := repo.find(func(g *grade.Grade) bool {
		return g.SubjectID == subjectID && g.Term == term && g.Year == year && repo.inClass(g.StudentID, classLevel)
	})
	sort.Slice(grades, func(i, j int) bool { return grades[i].ID < grades[j].ID })
	return grades, nil
}

func (repo *gradeRepository) GetGrade(_ context.Context, key grade.Key) (grade.Grade, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, g := range repo.db.grades {
		if g.Key() == key {
			return repo.view(g), nil
		}
	}
	return grade.Grade{}, grade.ErrNotFound
}

func (repo *gradeRepository) UpsertGrade(_ context.Context, key grade.Key, score float64) (grade.Grade, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if !repo.refsExist(key.StudentID, key.SubjectID) {
		return grade.Grade{}, errUnknownRefer
	}

	now := time.Now().UTC()
	for id, g := range repo.db.grades {
		if g.Key() == key {
			updated := *g
			updated.Score = score
			updated.UpdatedAt = now
			repo.db.grades[id] = &updated
			return repo.view(&updated), nil
		}
	}

	repo.db.pk.grade++
	g := &grade.Grade{
		ID:        repo.db.pk.grade,
		StudentID: key.StudentID,
		SubjectID: key.SubjectID,
		Term:      key.Term,
		Year:      key.Year,
		Score:     score,
		CreatedAt: now,
		UpdatedAt: now,
	}
	repo.db.grades[g.ID] = g
	return repo.view(g), nil
}

func (repo *gradeRepository) refsExist(studentID, subjectID int) bool {
	_, stOk := repo.db.students[studentID]
	_, subOk := repo.db.subjects[subjectID]
	return stOk && subOk
}

// BeginTx locks the whole store until the transaction ends.
func (repo *gradeRepository) BeginTx(_ context.Context) (grade.Tx, error) {
	repo.db.mutex.Lock()

	work := make(map[int]*grade.Grade, len(repo.db.grades))
	for id, g := range repo.db.grades {
		work[id] = g
	}
	return &gradeTx{repo: repo, grades: work, pk: repo.db.pk.grade}, nil
}

// gradeTx writes to a copy of the grades table, swapped in on Commit.
type gradeTx struct {
	repo   *gradeRepository
	grades map[int]*grade.Grade
	pk     int
	done   bool
}

func (tx *gradeTx) DeleteByStudents(_ context.Context, term string, year int, studentIDs []int) (int, error) {
	if tx.done {
		return 0, errTxDone
	}
	ids := make(map[int]bool, len(studentIDs))
	for _, id := range studentIDs {
		ids[id] = true
	}

	deleted := 0
	for id, g := range tx.grades {
		if g.Term == term && g.Year == year && ids[g.StudentID] {
			delete(tx.grades, id)
			deleted++
		}
	}
	return deleted, nil
}

func (tx *gradeTx) BulkInsert(_ context.Context, grades []grade.Grade) error {
	if tx.done {
		return errTxDone
	}
	keys := make(map[grade.Key]bool, len(tx.grades))
	for _, g := range tx.grades {
		keys[g.Key()] = true
	}

	now := time.Now().UTC()
	for _, g := range grades {
		if !tx.repo.refsExist(g.StudentID, g.SubjectID) {
			return errUnknownRefer
		}
		if keys[g.Key()] {
			return errGradeExists
		}
		keys[g.Key()] = true

		tx.pk++
		row := g
		row.ID = tx.pk
		row.SubjectName = ""
		row.CreatedAt = now
		row.UpdatedAt = now
		tx.grades[row.ID] = &row
	}
	return nil
}

func (tx *gradeTx) Commit() error {
	if tx.done {
		return errTxDone
	}
	tx.done = true
	tx.repo.db.grades = tx.grades
	tx.repo.db.pk.grade = tx.pk
	tx.repo.db.mutex.Unlock()
	return nil
}

func (tx *gradeTx) Rollback() error {
	if tx.done {
		return errTxDone
	}
	tx.done = true
	tx.repo.db.mutex.Unlock()
	return nil
}
