package core

// class levels
const (
	ClassLevel7 = "7"
	ClassLevel8 = "8"
	ClassLevel9 = "9"
)

// terms
const (
	Term1 = "1"
	Term2 = "2"
	Term3 = "3"
)

const (
	MinYear = 2020
	MaxYear = 2030
)

var (
	ClassLevels = []string{ClassLevel7, ClassLevel8, ClassLevel9}
	Terms       = []string{Term1, Term2, Term3}
)

func IsClassLevel(s string) bool { return contains(ClassLevels, s) }

func IsTerm(s string) bool { return contains(Terms, s) }

func IsYear(y int) bool { return y >= MinYear && y <= MaxYear }

// ClassName is the display name of a class level.
func ClassName(level string) string { return "Grade " + level }

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Period selects the grades of a class level for one term of a year.
type Period struct {
	ClassLevel string `json:"class_level" query:"class_level" validate:"required,classlevel"`
	Term       string `json:"term" query:"term" validate:"required,term"`
	Year       int    `json:"year" query:"year" validate:"required,min=2020,max=2030"`
}

func (p *Period) Clean() {
	p.ClassLevel = CleanString(p.ClassLevel)
	p.Term = CleanString(p.Term)
}
