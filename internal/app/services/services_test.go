package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"sort"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	authz "github.com/KNyathi/thesis-review-system-sub002/internal/app/auth"
	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models"
	"github.com/KNyathi/thesis-review-system-sub002/internal/db"
	"github.com/KNyathi/thesis-review-system-sub002/internal/pkg/apperrors"
)

// fakeUserRepo is an in-memory IUserRepository.
type fakeUserRepo struct {
	nextID   int64
	users    map[int64]*models.User
	students map[int64]*models.Student // keyed by user id

	statusWrites []models.ThesisStatus
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		nextID:   1,
		users:    make(map[int64]*models.User),
		students: make(map[int64]*models.Student),
	}
}

func (f *fakeUserRepo) add(u *models.User) *models.User {
	if u.ID == 0 {
		u.ID = f.nextID
	}
	if u.ID >= f.nextID {
		f.nextID = u.ID + 1
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeUserRepo) addStudent(s *models.Student) *models.Student {
	f.students[s.UserID] = s
	return s
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return 0, apperrors.ErrEmailAlreadyExists
		}
	}
	f.add(u)
	return u.ID, nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.GetUserByEmail(ctx, email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (f *fakeUserRepo) ListUsers(ctx context.Context, role *models.Role) ([]*models.User, error) {
	var out []*models.User
	for _, u := range f.users {
		if role == nil || u.HasRole(*role) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUserRepo) SetApproved(ctx context.Context, userID int64, approved bool) error {
	u, ok := f.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.IsApproved = approved
	return nil
}

func (f *fakeUserRepo) SetActive(ctx context.Context, userID int64, active bool) error {
	u, ok := f.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.IsActive = active
	return nil
}

func (f *fakeUserRepo) CreateStudent(ctx context.Context, student *models.Student) error {
	for _, existing := range f.students {
		if existing.StudentNumber == student.StudentNumber {
			return apperrors.ErrStudentNumberAlreadyExists
		}
	}
	f.addStudent(student)
	return nil
}

func (f *fakeUserRepo) GetStudentByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	s, ok := f.students[userID]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	return s, nil
}

func (f *fakeUserRepo) StudentNumberExists(ctx context.Context, number string) (bool, error) {
	for _, s := range f.students {
		if s.StudentNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) UpdateStudentAssignmentsTx(ctx context.Context, tx pgx.Tx, student *models.Student) error {
	if _, ok := f.students[student.UserID]; !ok {
		return apperrors.ErrStudentNotFound
	}
	f.students[student.UserID] = student
	return nil
}

func (f *fakeUserRepo) UpdateStudentThesisStatusTx(ctx context.Context, tx pgx.Tx, userID int64, status models.ThesisStatus) error {
	s, ok := f.students[userID]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	s.ThesisStatus = status
	f.statusWrites = append(f.statusWrites, status)
	return nil
}

// fakeThesisRepo is an in-memory IThesisRepository.
type fakeThesisRepo struct {
	nextID       int64
	nextChildID  int64
	theses       map[int64]*models.Thesis
	deletedIDs   []int64
	updateCalls  int
	failUpdateTx error
}

func newFakeThesisRepo() *fakeThesisRepo {
	return &fakeThesisRepo{nextID: 1, nextChildID: 1, theses: make(map[int64]*models.Thesis)}
}

func (f *fakeThesisRepo) add(t *models.Thesis) *models.Thesis {
	if t.ID == 0 {
		t.ID = f.nextID
	}
	if t.ID >= f.nextID {
		f.nextID = t.ID + 1
	}
	if t.Version == 0 {
		t.Version = 1
	}
	f.theses[t.ID] = t
	return t
}

func (f *fakeThesisRepo) Create(ctx context.Context, thesis *models.Thesis) error {
	f.add(thesis)
	return nil
}

func (f *fakeThesisRepo) GetByID(ctx context.Context, id int64) (*models.Thesis, error) {
	t, ok := f.theses[id]
	if !ok {
		return nil, apperrors.ErrThesisNotFound
	}
	return t, nil
}

func (f *fakeThesisRepo) GetActiveByStudent(ctx context.Context, studentUserID int64) (*models.Thesis, error) {
	var newest *models.Thesis
	for _, t := range f.theses {
		if t.StudentID == studentUserID && (newest == nil || t.ID > newest.ID) {
			newest = t
		}
	}
	if newest == nil {
		return nil, apperrors.ErrThesisNotFound
	}
	return newest, nil
}

func (f *fakeThesisRepo) List(ctx context.Context, status *models.ThesisStatus) ([]*models.Thesis, error) {
	var out []*models.Thesis
	for _, t := range f.theses {
		if status == nil || t.Status == *status {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeThesisRepo) Update(ctx context.Context, thesis *models.Thesis) error {
	return f.UpdateTx(ctx, nil, thesis)
}

func (f *fakeThesisRepo) UpdateTx(ctx context.Context, tx pgx.Tx, thesis *models.Thesis) error {
	if f.failUpdateTx != nil {
		return f.failUpdateTx
	}
	stored, ok := f.theses[thesis.ID]
	if !ok || stored.Version != thesis.Version {
		return apperrors.ErrConflict
	}
	f.updateCalls++
	thesis.Version++
	f.theses[thesis.ID] = thesis
	return nil
}

func (f *fakeThesisRepo) DeleteTx(ctx context.Context, tx pgx.Tx, id int64) error {
	if _, ok := f.theses[id]; !ok {
		return apperrors.ErrThesisNotFound
	}
	delete(f.theses, id)
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

func (f *fakeThesisRepo) CreateIterationTx(ctx context.Context, tx pgx.Tx, iteration *models.ReviewIteration) error {
	iteration.ID = f.nextChildID
	f.nextChildID++
	return nil
}

func (f *fakeThesisRepo) UpdateIterationTx(ctx context.Context, tx pgx.Tx, iteration *models.ReviewIteration) error {
	if iteration.ID == 0 {
		return apperrors.ErrIterationNotFound
	}
	return nil
}

func (f *fakeThesisRepo) CreateReviewTx(ctx context.Context, tx pgx.Tx, review *models.Review) error {
	review.ID = f.nextChildID
	f.nextChildID++
	return nil
}

// fakeTx runs the transaction body without a database.
type fakeTx struct{}

func (fakeTx) WithTransaction(ctx context.Context, fn db.TransactionFn) error {
	return fn(ctx, nil)
}

// fakeStorage records saves and deletions instead of touching disk.
type fakeStorage struct {
	saves   int
	deleted []string
}

func (f *fakeStorage) SaveFile(fileHeader *multipart.FileHeader) (string, error) {
	return f.SaveFileWithPath(fileHeader, "files")
}

func (f *fakeStorage) SaveFileWithPath(fileHeader *multipart.FileHeader, path string) (string, error) {
	f.saves++
	return fmt.Sprintf("uploads/%s/doc-%d.pdf", path, f.saves), nil
}

func (f *fakeStorage) DeleteFile(filePath string) error {
	f.deleted = append(f.deleted, filePath)
	return nil
}

func (f *fakeStorage) GetFullPath(fileURL string) string {
	return "/srv/" + fileURL
}

// env wires fakes and the real authorization resolver into services.
type env struct {
	users   *fakeUserRepo
	theses  *fakeThesisRepo
	storage *fakeStorage
	authz   *authz.AuthorizationService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	registry, err := authz.NewRegistry()
	require.NoError(t, err)
	return &env{
		users:   newFakeUserRepo(),
		theses:  newFakeThesisRepo(),
		storage: &fakeStorage{},
		authz:   authz.NewAuthorizationService(authz.NewResolver(registry)),
	}
}

func (e *env) userService() *UserService {
	return NewUserService(e.users, e.authz, zerolog.Nop())
}

func (e *env) assignmentService() *AssignmentService {
	return NewAssignmentService(e.users, e.theses, e.authz, fakeTx{}, zerolog.Nop())
}

func (e *env) topicService() *TopicService {
	return NewTopicService(e.users, e.theses, e.authz, zerolog.Nop())
}

func (e *env) thesisService() *ThesisService {
	return NewThesisService(e.users, e.theses, e.authz, e.storage, fakeTx{}, zerolog.Nop())
}

func (e *env) reviewService() *ReviewService {
	return NewReviewService(e.users, e.theses, e.authz, e.storage, fakeTx{}, zerolog.Nop())
}

// seedStudent creates an approved student account with its profile.
func (e *env) seedStudent(id int64, faculty string) (*models.User, *models.Student) {
	u := e.users.add(&models.User{
		ID:         id,
		Email:      fmt.Sprintf("student%d@university.edu", id),
		FirstName:  "Stu",
		LastName:   "Dent",
		Role:       models.RoleStudent,
		Faculty:    faculty,
		IsActive:   true,
		IsApproved: true,
	})
	s := e.users.addStudent(&models.Student{
		ID:            id,
		UserID:        id,
		StudentNumber: fmt.Sprintf("2025%04d", id),
		ThesisStatus:  models.ThesisNotSubmitted,
	})
	return u, s
}

// seedStaff creates a staff account.
func (e *env) seedStaff(id int64, role models.Role, approved bool) *models.User {
	return e.users.add(&models.User{
		ID:         id,
		Email:      fmt.Sprintf("staff%d@university.edu", id),
		FirstName:  "Staff",
		LastName:   "Member",
		Role:       role,
		Faculty:    "Engineering",
		IsActive:   true,
		IsApproved: approved,
	})
}
