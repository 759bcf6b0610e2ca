package inmemdb

import (
	"sort"
	"strings"
	"sync"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/core/subject"
)

type (
	// DB is an in-memory store. A single lock guards every table so that
	// a grade transaction sees and writes a consistent snapshot.
	DB struct {
		mutex    sync.RWMutex
		students map[int]*student.Student
		subjects map[int]*subject.Subject
		grades   map[int]*grade.Grade
		pk       pkCounters
	}

	pkCounters struct {
		student int
		subject int
		grade   int
	}
)

func Open() *DB {
	return &DB{
		students: make(map[int]*student.Student),
		subjects: make(map[int]*subject.Subject),
		grades:   make(map[int]*grade.Grade),
	}
}

// Reset empties every table.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.students = make(map[int]*student.Student)
	db.subjects = make(map[int]*subject.Subject)
	db.grades = make(map[int]*grade.Grade)
	db.pk = pkCounters{}
}

func isExcluded(id int, excludedIDs []int) bool {
	for _, excl := range excludedIDs {
		if excl == id {
			return true
		}
	}
	return false
}

func compareStrings(a, b string) int {
	return strings.Compare(a, b)
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// sortBy orders items by ordering, comparing allowed fields with fields.
// Unknown fields are ignored and ties fall back to ID order.
func sortBy[T any](items []T, ordering []core.DBOrdering, fields map[string]func(a, b T) int, id func(T) int) {
	sort.SliceStable(items, func(i, j int) bool {
		for _, ord := range ordering {
			cmp, ok := fields[ord.Field]
			if !ok {
				continue
			}
			if c := cmp(items[i], items[j]); c != 0 {
				if ord.Ascending {
					return c < 0
				}
				return c > 0
			}
		}
		return id(items[i]) < id(items[j])
	})
}
