package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/student"
)

var studentFields = map[string]func(a, b student.Student) int{
	"id":           func(a, b student.Student) int { return compareInts(a.ID, b.ID) },
	"admission_no": func(a, b student.Student) int { return compareStrings(a.AdmissionNo, b.AdmissionNo) },
	"name":         func(a, b student.Student) int { return compareStrings(a.Name, b.Name) },
	"class_level":  func(a, b student.Student) int { return compareStrings(a.ClassLevel, b.ClassLevel) },
	"created_at":   func(a, b student.Student) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"updated_at":   func(a, b student.Student) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
}

type studentRepository struct {
	db *DB
}

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CheckAdmissionNoUniqueness(_ context.Context, admissionNo string, excludedIDs ...int) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, st := range repo.db.students {
		if st.AdmissionNo == admissionNo && !isExcluded(st.ID, excludedIDs) {
			return student.ErrAdmissionNoExists
		}
	}
	return nil
}

func (repo *studentRepository) CreateStudent(_ context.Context, st student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, s := range repo.db.students {
		if s.AdmissionNo == st.AdmissionNo {
			return student.Student{}, student.ErrAdmissionNoExists
		}
	}
	repo.db.pk.student++
	st.ID = repo.db.pk.student
	repo.db.students[st.ID] = &st
	return st, nil
}

func (repo *studentRepository) QueryStudents(_ context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]student.Student, 0, len(repo.db.students))
	for _, st := range repo.db.students {
		if filter != nil {
			if filter.ClassLevel != "" && st.ClassLevel != filter.ClassLevel {
				continue
			}
			if search := strings.ToLower(filter.Search); search != "" &&
				!strings.Contains(strings.ToLower(st.Name), search) &&
				!strings.Contains(strings.ToLower(st.AdmissionNo), search) {
				continue
			}
		}
		students = append(students, *st)
	}
	sortBy(students, ordering, studentFields, func(st student.Student) int { return st.ID })
	return students, nil
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id int) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if st, ok := repo.db.students[id]; ok {
		return *st, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByAdmissionNo(_ context.Context, admissionNo string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, st := range repo.db.students {
		if st.AdmissionNo == admissionNo {
			return *st, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(_ context.Context, st student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.students[st.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	orig.AdmissionNo = st.AdmissionNo
	orig.Name = st.Name
	orig.ClassLevel = st.ClassLevel
	orig.UpdatedAt = st.UpdatedAt
	return *orig, nil
}

func (repo *studentRepository) DeleteStudent(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.students[id]; !ok {
		return student.ErrNotFound
	}
	for _, g := range repo.db.grades {
		if g.StudentID == id {
			return student.ErrHasGrades
		}
	}
	delete(repo.db.students, id)
	return nil
}

func (repo *studentRepository) CountStudents(_ context.Context, classLevel string) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	cnt := 0
	for _, st := range repo.db.students {
		if classLevel == "" || st.ClassLevel == classLevel {
			cnt++
		}
	}
	return cnt, nil
}

func (repo *studentRepository) CountStudentGrades(_ context.Context, id int) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	cnt := 0
	for _, g := range repo.db.grades {
		if g.StudentID == id {
			cnt++
		}
	}
	return cnt, nil
}
