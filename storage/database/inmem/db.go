// Package inmemdb provides map-backed repositories for tests and local
// development without a database server.
package inmemdb

import (
	"sync"

	"github.com/dagmawi/collegehub/core/applicant"
	"github.com/dagmawi/collegehub/core/attendance"
	"github.com/dagmawi/collegehub/core/catalog"
	"github.com/dagmawi/collegehub/core/material"
	"github.com/dagmawi/collegehub/core/payment"
	"github.com/dagmawi/collegehub/core/registration"
	"github.com/dagmawi/collegehub/core/result"
	"github.com/dagmawi/collegehub/core/user"
)

type (
	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}
	applicantTable struct {
		sync.RWMutex
		table map[string]*applicant.Applicant
	}
	registrationTable struct {
		sync.RWMutex
		table map[string]*registration.Registration
	}
	attendanceTables struct {
		sync.RWMutex
		sessions map[string]*attendance.Session
		records  map[string]*attendance.Record
	}
	resultTable struct {
		sync.RWMutex
		table map[string]*result.Result
	}
	paymentTable struct {
		sync.RWMutex
		table map[string]*payment.Payment
	}
	materialTables struct {
		sync.RWMutex
		materials   map[string]*material.Material
		submissions map[string]*material.Submission
	}
	catalogTables struct {
		sync.RWMutex
		departments map[string]*catalog.Department
		courses     map[string]*catalog.Course
	}
)

type DB struct {
	user         *userTable
	applicant    *applicantTable
	registration *registrationTable
	attendance   *attendanceTables
	result       *resultTable
	payment      *paymentTable
	material     *materialTables
	catalog      *catalogTables
}

func NewDB() *DB {
	return &DB{
		user:         &userTable{table: make(map[string]*user.User)},
		applicant:    &applicantTable{table: make(map[string]*applicant.Applicant)},
		registration: &registrationTable{table: make(map[string]*registration.Registration)},
		attendance: &attendanceTables{
			sessions: make(map[string]*attendance.Session),
			records:  make(map[string]*attendance.Record),
		},
		result:  &resultTable{table: make(map[string]*result.Result)},
		payment: &paymentTable{table: make(map[string]*payment.Payment)},
		material: &materialTables{
			materials:   make(map[string]*material.Material),
			submissions: make(map[string]*material.Submission),
		},
		catalog: &catalogTables{
			departments: make(map[string]*catalog.Department),
			courses:     make(map[string]*catalog.Course),
		},
	}
}
