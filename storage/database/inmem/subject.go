package inmemdb

import (
	"context"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/subject"
)

var subjectFields = map[string]func(a, b subject.Subject) int{
	"id":          func(a, b subject.Subject) int { return compareInts(a.ID, b.ID) },
	"name":        func(a, b subject.Subject) int { return compareStrings(a.Name, b.Name) },
	"class_level": func(a, b subject.Subject) int { return compareStrings(a.ClassLevel, b.ClassLevel) },
	"created_at":  func(a, b subject.Subject) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"updated_at":  func(a, b subject.Subject) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
}

type subjectRepository struct {
	db *DB
}

func NewSubjectRepository(db *DB) subject.Repository {
	return &subjectRepository{db: db}
}

func (repo *subjectRepository) nameTaken(name, classLevel string, excludedIDs ...int) bool {
	for _, sub := range repo.db.subjects {
		if sub.Name == name && sub.ClassLevel == classLevel && !isExcluded(sub.ID, excludedIDs) {
			return true
		}
	}
	return false
}

func (repo *subjectRepository) CheckNameUniqueness(_ context.Context, name, classLevel string, excludedIDs ...int) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if repo.nameTaken(name, classLevel, excludedIDs...) {
		return subject.ErrSubjectExists
	}
	return nil
}

func (repo *subjectRepository) CreateSubject(_ context.Context, sub subject.Subject) (subject.Subject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.nameTaken(sub.Name, sub.ClassLevel) {
		return subject.Subject{}, subject.ErrSubjectExists
	}
	repo.db.pk.subject++
	sub.ID = repo.db.pk.subject
	repo.db.subjects[sub.ID] = &sub
	return sub, nil
}

func (repo *subjectRepository) QuerySubjects(_ context.Context, filter *subject.QueryFilter, ordering []core.DBOrdering) ([]subject.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	subjects := make([]subject.Subject, 0, len(repo.db.subjects))
	for _, sub := range repo.db.subjects {
		if filter != nil && filter.ClassLevel != "" && sub.ClassLevel != filter.ClassLevel {
			continue
		}
		subjects = append(subjects, *sub)
	}
	sortBy(subjects, ordering, subjectFields, func(sub subject.Subject) int { return sub.ID })
	return subjects, nil
}

func (repo *subjectRepository) GetSubjectByID(_ context.Context, id int) (subject.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if sub, ok := repo.db.subjects[id]; ok {
		return *sub, nil
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (repo *subjectRepository) UpdateSubject(_ context.Context, sub subject.Subject) (subject.Subject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.subjects[sub.ID]
	if !ok {
		return subject.Subject{}, subject.ErrNotFound
	}
	if repo.nameTaken(sub.Name, sub.ClassLevel, sub.ID) {
		return subject.Subject{}, subject.ErrSubjectExists
	}
	orig.Name = sub.Name
	orig.ClassLevel = sub.ClassLevel
	orig.UpdatedAt = sub.UpdatedAt
	return *orig, nil
}

func (repo *subjectRepository) DeleteSubject(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.subjects[id]; !ok {
		return subject.ErrNotFound
	}
	for _, g := range repo.db.grades {
		if g.SubjectID == id {
			return subject.ErrHasGrades
		}
	}
	delete(repo.db.subjects, id)
	return nil
}

func (repo *subjectRepository) CountSubjects(_ context.Context, classLevel string) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	cnt := 0
	for _, sub := range repo.db.subjects {
		if classLevel == "" || sub.ClassLevel == classLevel {
			cnt++
		}
	}
	return cnt, nil
}

func (repo *subjectRepository) CountSubjectGrades(_ context.Context, id int) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	cnt := 0
	for _, g := range repo.db.grades {
		if g.SubjectID == id {
			cnt++
		}
	}
	return cnt, nil
}
