package report

import (
	"context"
	"sort"

	"github.com/dagmawi/collegehub/core"
	"github.com/dagmawi/collegehub/core/attendance"
	"github.com/dagmawi/collegehub/core/grading"
	"github.com/dagmawi/collegehub/core/result"
	"github.com/dagmawi/collegehub/core/user"
	"github.com/dagmawi/collegehub/core/workflow"
)

// Placeholders for identity fields absent on legacy accounts.
const (
	unknownValue = "Unknown"
	naValue      = "N/A"
)

// Service assembles read-only reports from the other domains' data.
type Service struct {
	usrSvc  *user.Service
	resRepo result.Repository
	attRepo attendance.Repository
}

func NewService(usrSvc *user.Service, resRepo result.Repository, attRepo attendance.Repository) *Service {
	return &Service{usrSvc: usrSvc, resRepo: resRepo, attRepo: attRepo}
}

// student resolves the subject of a report and enforces self-only access for
// student callers.
func (svc *Service) student(ctx context.Context, actor user.Principal, studentID string) (user.User, error) {
	if actor.IsStudent() && actor.UserID != studentID {
		return user.User{}, core.NewAuthorizationError("not authorized to view this student's reports")
	}
	return svc.usrSvc.GetStudentByUserID(ctx, studentID)
}

func studentInfo(usr user.User) StudentInfo {
	info := StudentInfo{
		UserID:     usr.UserID,
		FullName:   usr.FirstName + " " + usr.LastName,
		Department: usr.Department,
		Email:      usr.Email,
	}
	if usr.FirstName == "" && usr.LastName == "" {
		info.FullName = unknownValue
	}
	if info.Department == "" {
		info.Department = unknownValue
	}
	if info.Email == "" {
		info.Email = naValue
	}
	return info
}

func courseRow(res result.Result, table map[string]float64) CourseRow {
	return CourseRow{
		CourseCode: res.CourseCode,
		CourseName: res.CourseName,
		CreditHour: res.CreditHour,
		Total:      res.Total,
		Grade:      res.Grade,
		GradePoint: grading.Point(res.Grade, table),
	}
}

// Transcript assembles the full academic record: approved results grouped by
// term, each with a term GPA, and the cumulative GPA, all on the transcript
// scale.
func (svc *Service) Transcript(ctx context.Context, actor user.Principal, studentID string) (Transcript, error) {
	usr, err := svc.student(ctx, actor, studentID)
	if err != nil {
		return Transcript{}, err
	}
	results, err := svc.resRepo.FilterResults(ctx, result.QueryFilter{
		StudentID: studentID,
		Status:    string(result.StatusApproved),
	})
	if err != nil {
		return Transcript{}, err
	}

	type termKey struct{ year, semester string }
	byTerm := make(map[termKey][]result.Result)
	keys := make([]termKey, 0)
	for _, res := range results {
		k := termKey{res.Year, res.Semester}
		if _, ok := byTerm[k]; !ok {
			keys = append(keys, k)
		}
		byTerm[k] = append(byTerm[k], res)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].semester < keys[j].semester
	})

	tr := Transcript{Student: studentInfo(usr), Terms: make([]TermGrades, 0, len(keys))}
	all := make([]grading.CourseGrade, 0, len(results))
	for _, k := range keys {
		term := TermGrades{Year: k.year, Semester: k.semester}
		grades := make([]grading.CourseGrade, 0, len(byTerm[k]))
		for _, res := range byTerm[k] {
			term.Courses = append(term.Courses, courseRow(res, grading.CGPATable))
			term.TotalCredit += res.CreditHour
			grades = append(grades, grading.CourseGrade{CreditHours: res.CreditHour, Letter: res.Grade})
		}
		term.GPA = grading.Format(grading.GPA(grades, grading.CGPATable))
		tr.Terms = append(tr.Terms, term)
		tr.TotalCredit += term.TotalCredit
		all = append(all, grades...)
	}
	tr.CGPA = grading.Format(grading.GPA(all, grading.CGPATable))
	return tr, nil
}

// Results assembles the flat approved-results report, optionally narrowed to
// one term. Grade points use the semester scale.
func (svc *Service) Results(ctx context.Context, actor user.Principal, studentID, semester, year string) (StudentResults, error) {
	usr, err := svc.student(ctx, actor, studentID)
	if err != nil {
		return StudentResults{}, err
	}
	results, err := svc.resRepo.FilterResults(ctx, result.QueryFilter{
		StudentID: studentID,
		Semester:  semester,
		Year:      year,
		Status:    string(result.StatusApproved),
	})
	if err != nil {
		return StudentResults{}, err
	}

	rep := StudentResults{
		Student:  studentInfo(usr),
		Semester: semester,
		Year:     year,
		Courses:  make([]CourseRow, 0, len(results)),
	}
	for _, res := range results {
		rep.Courses = append(rep.Courses, courseRow(res, grading.GPATable))
	}
	return rep, nil
}

// Attendance assembles a student's attendance summary over submitted and
// approved sessions in their department; drafts are invisible. A session
// without a record counts as absent; present and late both count as attended.
func (svc *Service) Attendance(ctx context.Context, actor user.Principal, studentID, semester, year string) (AttendanceStats, error) {
	usr, err := svc.student(ctx, actor, studentID)
	if err != nil {
		return AttendanceStats{}, err
	}
	sessions, err := svc.attRepo.FilterSessions(ctx, attendance.SessionFilter{
		Department: usr.Department,
		Semester:   semester,
		Year:       year,
		Statuses:   []workflow.Status{attendance.StatusSubmitted, attendance.StatusApproved},
	})
	if err != nil {
		return AttendanceStats{}, err
	}

	stats := AttendanceStats{Student: studentInfo(usr), TotalSessions: len(sessions)}
	if len(sessions) == 0 {
		stats.Courses = []CourseAttendance{}
		return stats, nil
	}

	ids := make([]string, 0, len(sessions))
	courseOf := make(map[string]string, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.ID)
		courseOf[s.ID] = s.Course
	}
	records, err := svc.attRepo.RecordsForStudent(ctx, usr.ID, ids)
	if err != nil {
		return AttendanceStats{}, err
	}
	statusOf := make(map[string]string, len(records))
	for _, rec := range records {
		statusOf[rec.SessionID] = rec.Status
	}

	byCourse := make(map[string]*CourseAttendance)
	order := make([]string, 0)
	for _, s := range sessions {
		ca, ok := byCourse[s.Course]
		if !ok {
			ca = &CourseAttendance{Course: s.Course}
			byCourse[s.Course] = ca
			order = append(order, s.Course)
		}
		ca.Sessions++
		switch statusOf[s.ID] {
		case attendance.Present:
			ca.Present++
			stats.Attended++
		case attendance.Late:
			ca.Late++
			stats.Attended++
		case attendance.Excused:
			ca.Excused++
		default:
			ca.Absent++
		}
	}
	sort.Strings(order)
	stats.Courses = make([]CourseAttendance, 0, len(order))
	for _, course := range order {
		ca := byCourse[course]
		if ca.Sessions > 0 {
			ca.Rate = float64(ca.Present+ca.Late) / float64(ca.Sessions) * 100
		}
		stats.Courses = append(stats.Courses, *ca)
	}
	stats.Rate = float64(stats.Attended) / float64(stats.TotalSessions) * 100
	return stats, nil
}
