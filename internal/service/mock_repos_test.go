package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"headta/backend/internal/model"
	"headta/backend/internal/repository"
	pkgerrors "headta/backend/pkg/errors"
	"headta/backend/pkg/semester"
)

// ── 测试仓库聚合 ──

// testRepos 聚合所有 mock repo 便于 seed 数据
type testRepos struct {
	user       *mockUserRepo
	professor  *mockProfessorRepo
	course     *mockCourseRepo
	offering   *mockCourseOfferingRepo
	assignment *mockTAAssignmentRepo
	invitation *mockInvitationRepo
}

func newTestRepos() *testRepos {
	r := &testRepos{
		user:       newMockUserRepo(),
		professor:  newMockProfessorRepo(),
		course:     newMockCourseRepo(),
		invitation: newMockInvitationRepo(),
	}
	r.offering = newMockCourseOfferingRepo(r.course, r.professor)
	r.assignment = newMockTAAssignmentRepo(r.offering, r.course, r.user)
	return r
}

func (r *testRepos) toRepository() *repository.Repository {
	return &repository.Repository{
		User:           r.user,
		Professor:      r.professor,
		Course:         r.course,
		CourseOffering: r.offering,
		TAAssignment:   r.assignment,
		Invitation:     r.invitation,
	}
}

// ── seed 辅助 ──

func intPtr(v int) *int { return &v }

func (r *testRepos) addUser(id, first, last, role string, gradYear *int) *model.User {
	u := &model.User{
		UserID:    id,
		FirstName: first,
		LastName:  last,
		Email:     strings.ToLower(first) + "." + strings.ToLower(last) + "@example.edu",
		Role:      role,
		GradYear:  gradYear,
	}
	u.Version = 1
	r.user.users[id] = u
	return u
}

func (r *testRepos) addCourse(id, number string) *model.Course {
	c := &model.Course{CourseID: id, CourseNumber: number, Title: "Course " + number}
	r.course.courses[id] = c
	return c
}

func (r *testRepos) addOffering(id, courseID string, year int, season semester.Season) *model.CourseOffering {
	o := &model.CourseOffering{
		CourseOfferingID: id,
		CourseID:         courseID,
		Semester:         semester.Format(year, season),
		Year:             year,
		Season:           string(season),
	}
	r.offering.offerings[id] = o
	return o
}

func (r *testRepos) addAssignment(userID, offeringID string, hours *int) *model.TAAssignment {
	a := &model.TAAssignment{
		AssignmentID:     fmt.Sprintf("a-%d", len(r.assignment.assignments)+1),
		UserID:           userID,
		CourseOfferingID: offeringID,
		HoursPerWeek:     hours,
	}
	a.Version = 1
	r.assignment.assignments = append(r.assignment.assignments, a)
	return a
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
	err   error // 非 nil 时所有读操作返回该错误
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("user-%d", len(m.users)+1)
	}
	user.Version = 1
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.User, error) {
	return m.GetByID(ctx, id)
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) sorted() []model.User {
	result := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].LastName != result[j].LastName {
			return result[i].LastName < result[j].LastName
		}
		if result[i].FirstName != result[j].FirstName {
			return result[i].FirstName < result[j].FirstName
		}
		return result[i].UserID < result[j].UserID
	})
	return result
}

func (m *mockUserRepo) List(_ context.Context, filter repository.UserFilter) ([]model.User, int64, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	var matched []model.User
	for _, u := range m.sorted() {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(strings.ToLower(u.FullName()+" "+u.Email), strings.ToLower(filter.Keyword)) {
			continue
		}
		matched = append(matched, u)
	}
	total := int64(len(matched))
	if filter.Limit > 0 {
		if filter.Offset >= len(matched) {
			return []model.User{}, total, nil
		}
		end := filter.Offset + filter.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[filter.Offset:end]
	}
	return matched, total, nil
}

func (m *mockUserRepo) ListByRole(_ context.Context, role string) ([]model.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.User
	for _, u := range m.sorted() {
		if u.Role == role {
			result = append(result, u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	stored, ok := m.users[user.UserID]
	if !ok || stored.Version != user.Version {
		return pkgerrors.ErrOptimisticLock
	}
	user.Version++
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.users, id)
	return nil
}

// ── Mock ProfessorRepository ──

type mockProfessorRepo struct {
	professors map[string]*model.Professor
}

func newMockProfessorRepo() *mockProfessorRepo {
	return &mockProfessorRepo{professors: make(map[string]*model.Professor)}
}

func (m *mockProfessorRepo) Create(_ context.Context, p *model.Professor) error {
	if p.ProfessorID == "" {
		p.ProfessorID = fmt.Sprintf("prof-%d", len(m.professors)+1)
	}
	m.professors[p.ProfessorID] = p
	return nil
}

func (m *mockProfessorRepo) GetByID(_ context.Context, id string) (*model.Professor, error) {
	if p, ok := m.professors[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfessorRepo) List(_ context.Context) ([]model.Professor, error) {
	var result []model.Professor
	for _, p := range m.professors {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LastName < result[j].LastName })
	return result, nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses map[string]*model.Course
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]*model.Course)}
}

func (m *mockCourseRepo) Create(_ context.Context, c *model.Course) error {
	if c.CourseID == "" {
		c.CourseID = fmt.Sprintf("course-%d", len(m.courses)+1)
	}
	m.courses[c.CourseID] = c
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) GetByNumber(_ context.Context, number string) (*model.Course, error) {
	for _, c := range m.courses {
		if strings.EqualFold(c.CourseNumber, number) {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) List(_ context.Context) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.courses {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CourseNumber < result[j].CourseNumber })
	return result, nil
}

// ── Mock CourseOfferingRepository ──

type mockCourseOfferingRepo struct {
	offerings  map[string]*model.CourseOffering
	courses    *mockCourseRepo
	professors *mockProfessorRepo
}

func newMockCourseOfferingRepo(courses *mockCourseRepo, professors *mockProfessorRepo) *mockCourseOfferingRepo {
	return &mockCourseOfferingRepo{
		offerings:  make(map[string]*model.CourseOffering),
		courses:    courses,
		professors: professors,
	}
}

// withRelations 模拟 Preload("Course").Preload("Professor")
func (m *mockCourseOfferingRepo) withRelations(o *model.CourseOffering) model.CourseOffering {
	cp := *o
	cp.Course = m.courses.courses[o.CourseID]
	if o.ProfessorID != nil {
		cp.Professor = m.professors.professors[*o.ProfessorID]
	}
	return cp
}

func (m *mockCourseOfferingRepo) Create(_ context.Context, o *model.CourseOffering) error {
	if o.CourseOfferingID == "" {
		o.CourseOfferingID = fmt.Sprintf("off-%d", len(m.offerings)+1)
	}
	cp := *o
	m.offerings[o.CourseOfferingID] = &cp
	return nil
}

func (m *mockCourseOfferingRepo) GetByID(_ context.Context, id string) (*model.CourseOffering, error) {
	if o, ok := m.offerings[id]; ok {
		cp := m.withRelations(o)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseOfferingRepo) GetByCourseAndSemester(_ context.Context, courseID string, year int, season string) (*model.CourseOffering, error) {
	for _, o := range m.offerings {
		if o.CourseID == courseID && o.Year == year && o.Season == season {
			cp := *o
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseOfferingRepo) List(_ context.Context, filter *repository.SemesterFilter) ([]model.CourseOffering, error) {
	var result []model.CourseOffering
	for _, o := range m.offerings {
		if filter != nil && (o.Year != filter.Year || o.Season != filter.Season) {
			continue
		}
		result = append(result, m.withRelations(o))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CourseOfferingID < result[j].CourseOfferingID })
	return result, nil
}

func (m *mockCourseOfferingRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.offerings, id)
	return nil
}

// ── Mock TAAssignmentRepository ──

type mockTAAssignmentRepo struct {
	assignments []*model.TAAssignment
	offerings   *mockCourseOfferingRepo
	courses     *mockCourseRepo
	users       *mockUserRepo
	err         error // 非 nil 时 ListRecords* 返回该错误
}

func newMockTAAssignmentRepo(offerings *mockCourseOfferingRepo, courses *mockCourseRepo, users *mockUserRepo) *mockTAAssignmentRepo {
	return &mockTAAssignmentRepo{offerings: offerings, courses: courses, users: users}
}

// record 模拟 ta_assignments ⋈ course_offerings ⋈ courses；开课不存在时返回 false
func (m *mockTAAssignmentRepo) record(a *model.TAAssignment) (model.TAAssignmentRecord, bool) {
	o, ok := m.offerings.offerings[a.CourseOfferingID]
	if !ok {
		return model.TAAssignmentRecord{}, false
	}
	rec := model.TAAssignmentRecord{
		AssignmentID:     a.AssignmentID,
		UserID:           a.UserID,
		CourseOfferingID: a.CourseOfferingID,
		CourseID:         o.CourseID,
		HoursPerWeek:     a.HoursPerWeek,
		Semester:         o.Semester,
		Year:             o.Year,
		Season:           o.Season,
	}
	if c, ok := m.courses.courses[o.CourseID]; ok {
		rec.CourseNumber = c.CourseNumber
		rec.CourseTitle = c.Title
	}
	return rec, true
}

func (m *mockTAAssignmentRepo) listRecords(match func(model.TAAssignmentRecord) bool) ([]model.TAAssignmentRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.TAAssignmentRecord
	for _, a := range m.assignments {
		if rec, ok := m.record(a); ok && match(rec) {
			result = append(result, rec)
		}
	}
	return result, nil
}

func (m *mockTAAssignmentRepo) Create(_ context.Context, a *model.TAAssignment) error {
	if a.AssignmentID == "" {
		a.AssignmentID = fmt.Sprintf("a-%d", len(m.assignments)+1)
	}
	a.Version = 1
	a.CreatedAt = time.Now()
	cp := *a
	m.assignments = append(m.assignments, &cp)
	return nil
}

func (m *mockTAAssignmentRepo) GetByID(_ context.Context, id string) (*model.TAAssignment, error) {
	for _, a := range m.assignments {
		if a.AssignmentID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTAAssignmentRepo) GetByUserAndOffering(_ context.Context, userID, offeringID string) (*model.TAAssignment, error) {
	for _, a := range m.assignments {
		if a.UserID == userID && a.CourseOfferingID == offeringID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTAAssignmentRepo) ListRecordsByUser(_ context.Context, userID string, filter *repository.SemesterFilter) ([]model.TAAssignmentRecord, error) {
	return m.listRecords(func(r model.TAAssignmentRecord) bool {
		if r.UserID != userID {
			return false
		}
		return filter == nil || (r.Year == filter.Year && r.Season == filter.Season)
	})
}

func (m *mockTAAssignmentRepo) ListRecordsByUserAndCourse(_ context.Context, userID, courseID string) ([]model.TAAssignmentRecord, error) {
	return m.listRecords(func(r model.TAAssignmentRecord) bool {
		return r.UserID == userID && r.CourseID == courseID
	})
}

func (m *mockTAAssignmentRepo) ListRecordsBySemester(_ context.Context, filter repository.SemesterFilter) ([]model.TAAssignmentRecord, error) {
	return m.listRecords(func(r model.TAAssignmentRecord) bool {
		return r.Year == filter.Year && r.Season == filter.Season
	})
}

func (m *mockTAAssignmentRepo) ListByCourseOffering(_ context.Context, offeringID string) ([]model.TAAssignment, error) {
	var result []model.TAAssignment
	for _, a := range m.assignments {
		if a.CourseOfferingID != offeringID {
			continue
		}
		cp := *a
		if u, ok := m.users.users[a.UserID]; ok {
			cp.User = u
		}
		result = append(result, cp)
	}
	return result, nil
}

func (m *mockTAAssignmentRepo) UpdateHours(_ context.Context, a *model.TAAssignment) error {
	for _, stored := range m.assignments {
		if stored.AssignmentID != a.AssignmentID {
			continue
		}
		if stored.Version != a.Version {
			return pkgerrors.ErrOptimisticLock
		}
		a.Version++
		stored.HoursPerWeek = a.HoursPerWeek
		stored.Version = a.Version
		return nil
	}
	return pkgerrors.ErrOptimisticLock
}

func (m *mockTAAssignmentRepo) Delete(_ context.Context, id string, _ string) error {
	for i, a := range m.assignments {
		if a.AssignmentID == id {
			m.assignments = append(m.assignments[:i], m.assignments[i+1:]...)
			return nil
		}
	}
	return nil
}

// ── Mock InvitationRepository ──

type mockInvitationRepo struct {
	invitations map[string]*model.Invitation
}

func newMockInvitationRepo() *mockInvitationRepo {
	return &mockInvitationRepo{invitations: make(map[string]*model.Invitation)}
}

func (m *mockInvitationRepo) Create(_ context.Context, inv *model.Invitation) error {
	if inv.InvitationID == "" {
		inv.InvitationID = fmt.Sprintf("inv-%d", len(m.invitations)+1)
	}
	m.invitations[inv.InvitationID] = inv
	return nil
}

func (m *mockInvitationRepo) GetByID(_ context.Context, id string) (*model.Invitation, error) {
	if inv, ok := m.invitations[id]; ok {
		return inv, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInvitationRepo) GetByCode(_ context.Context, code string) (*model.Invitation, error) {
	for _, inv := range m.invitations {
		if inv.Code == code {
			return inv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInvitationRepo) GetByCodeForUpdate(ctx context.Context, code string) (*model.Invitation, error) {
	return m.GetByCode(ctx, code)
}

func (m *mockInvitationRepo) ListPending(_ context.Context, now time.Time) ([]model.Invitation, error) {
	var result []model.Invitation
	for _, inv := range m.invitations {
		if inv.UsedAt == nil && inv.ExpiresAt.After(now) {
			result = append(result, *inv)
		}
	}
	return result, nil
}

func (m *mockInvitationRepo) MarkUsed(_ context.Context, id, userID string) error {
	inv, ok := m.invitations[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	inv.UsedAt = &now
	inv.UsedBy = &userID
	return nil
}

func (m *mockInvitationRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.invitations, id)
	return nil
}
