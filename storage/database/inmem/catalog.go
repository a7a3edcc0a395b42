package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/dagmawi/collegehub/core/catalog"
)

type catalogRepository struct {
	db *catalogTables
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *DB) catalog.Repository {
	return &catalogRepository{db: db.catalog}
}

func (repo *catalogRepository) CreateDepartment(ctx context.Context, dept catalog.Department) (catalog.Department, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, d := range repo.db.departments {
		if strings.EqualFold(d.Name, dept.Name) || strings.EqualFold(d.DepartmentID, dept.DepartmentID) {
			return catalog.Department{}, catalog.ErrDeptExists
		}
	}
	repo.db.departments[dept.ID] = &dept
	return dept, nil
}

func (repo *catalogRepository) FilterDepartments(ctx context.Context) ([]catalog.Department, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	depts := make([]catalog.Department, 0, len(repo.db.departments))
	for _, d := range repo.db.departments {
		depts = append(depts, *d)
	}
	sort.Slice(depts, func(i, j int) bool { return depts[i].Name < depts[j].Name })
	return depts, nil
}

func (repo *catalogRepository) CreateCourse(ctx context.Context, c catalog.Course) (catalog.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.courses {
		if strings.EqualFold(existing.Code, c.Code) {
			return catalog.Course{}, catalog.ErrCourseExists
		}
	}
	repo.db.courses[c.ID] = &c
	return c, nil
}

func (repo *catalogRepository) FilterCourses(ctx context.Context, filter catalog.CourseFilter) ([]catalog.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]catalog.Course, 0, len(repo.db.courses))
	for _, c := range repo.db.courses {
		if filter.Department != "" && c.Department != filter.Department {
			continue
		}
		if filter.Semester != "" && c.Semester != filter.Semester {
			continue
		}
		if filter.Year != "" && c.Year != filter.Year {
			continue
		}
		courses = append(courses, *c)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Code < courses[j].Code })
	return courses, nil
}

func (repo *catalogRepository) GetCourseByCode(ctx context.Context, code string) (catalog.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, c := range repo.db.courses {
		if strings.EqualFold(c.Code, code) {
			return *c, nil
		}
	}
	return catalog.Course{}, catalog.ErrCourseNotFound
}
