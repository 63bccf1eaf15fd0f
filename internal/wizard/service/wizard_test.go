package service

import (
	"context"
	"strings"
	"testing"

	"actibook/pkg/config"
	apperrors "actibook/pkg/errors"
	"actibook/pkg/logger"
	"actibook/pkg/model"
)

// ────────────────────────────────────────────────
// Mocks
// ────────────────────────────────────────────────

type mockStore struct {
	states map[string]*model.WizardState
}

func newMockStore() *mockStore {
	return &mockStore{states: make(map[string]*model.WizardState)}
}

func (m *mockStore) Get(studentID string) (*model.WizardState, bool) {
	state, ok := m.states[studentID]
	return state, ok
}

func (m *mockStore) Set(state *model.WizardState) {
	m.states[state.StudentID] = state
}

func (m *mockStore) Delete(studentID string) {
	delete(m.states, studentID)
}

func (m *mockStore) Stop() {}

type mockAllocator struct {
	createFunc func(ctx context.Context, studentID, activityID string) (*model.Booking, error)
	created    []string
}

func (m *mockAllocator) Create(ctx context.Context, studentID, activityID string) (*model.Booking, error) {
	m.created = append(m.created, activityID)
	if m.createFunc != nil {
		return m.createFunc(ctx, studentID, activityID)
	}
	return &model.Booking{ID: "b-" + activityID, StudentID: studentID, ActivityID: activityID}, nil
}

func (m *mockAllocator) Replace(ctx context.Context, studentID, activityID string) (*model.Booking, error) {
	return nil, nil
}

func (m *mockAllocator) Remove(ctx context.Context, studentID, activityID string) error {
	return nil
}

func (m *mockAllocator) MarkAttended(ctx context.Context, bookingID string, attended bool) error {
	return nil
}

func (m *mockAllocator) ListForStudent(ctx context.Context, studentID string) ([]*model.Booking, error) {
	return nil, nil
}

type mockCatalog struct {
	activities map[string]*model.Activity
	byDay      map[model.Weekday][]*model.Activity
}

func (m *mockCatalog) InsertGrade(ctx context.Context, grade *model.Grade) error { return nil }

func (m *mockCatalog) FindGradeByID(ctx context.Context, id string) (*model.Grade, error) {
	return nil, nil
}

func (m *mockCatalog) ListGrades(ctx context.Context) ([]*model.Grade, error) { return nil, nil }

func (m *mockCatalog) InsertActivity(ctx context.Context, activity *model.Activity) error {
	return nil
}

func (m *mockCatalog) UpdateActivity(ctx context.Context, id string, activity *model.Activity) error {
	return nil
}

func (m *mockCatalog) FindActivityByID(ctx context.Context, id string) (*model.Activity, error) {
	if a, ok := m.activities[id]; ok {
		return a, nil
	}
	return nil, context.Canceled
}

func (m *mockCatalog) ListActivities(ctx context.Context, day model.Weekday, gradeID string) ([]*model.Activity, error) {
	return m.byDay[day], nil
}

func (m *mockCatalog) ListAllActivities(ctx context.Context, limit int, offset int64) ([]*model.Activity, error) {
	return nil, nil
}

func (m *mockCatalog) CountActivities(ctx context.Context) (int64, error) { return 0, nil }

type mockStudents struct{}

func (m *mockStudents) Insert(ctx context.Context, profile *model.StudentProfile) error { return nil }

func (m *mockStudents) FindByID(ctx context.Context, id string) (*model.StudentProfile, error) {
	return &model.StudentProfile{ID: id, Name: "Dana", GradeID: "grade-5"}, nil
}

func (m *mockStudents) FindByAccount(ctx context.Context, accountID string) (*model.StudentProfile, error) {
	return nil, nil
}

type mockCounter struct {
	totalFunc    func(studentID string) (int64, error)
	activityFunc func(activityID string) (int64, error)
}

func (m *mockCounter) CountByActivity(ctx context.Context, activityID string) (int64, error) {
	if m.activityFunc != nil {
		return m.activityFunc(activityID)
	}
	return 0, nil
}

func (m *mockCounter) CountByStudent(ctx context.Context, studentID string) (int64, error) {
	if m.totalFunc != nil {
		return m.totalFunc(studentID)
	}
	return 0, nil
}

// ────────────────────────────────────────────────
// Fixtures
// ────────────────────────────────────────────────

const studentID = "507f1f77bcf86cd799439011"

func wizardConfig() *config.Config {
	return &config.Config{
		MinBookings: 3,
		MaxBookings: 7,
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
	}
}

func weekActivities() *mockCatalog {
	catalog := &mockCatalog{
		activities: make(map[string]*model.Activity),
		byDay:      make(map[model.Weekday][]*model.Activity),
	}
	for i, day := range model.Weekdays {
		a := &model.Activity{
			ID:            "activity-" + string(day),
			Name:          "Club " + string(day),
			Day:           day,
			Capacity:      10,
			AllowedGrades: []string{"grade-5"},
		}
		if i == 6 {
			a.Capacity = 0
		}
		catalog.activities[a.ID] = a
		catalog.byDay[day] = []*model.Activity{a}
	}
	return catalog
}

func fixtureWizard(store *mockStore, allocator *mockAllocator, counter *mockCounter) WizardService {
	return NewWizardService(store, allocator, weekActivities(), &mockStudents{}, counter, wizardConfig())
}

func chooseWholeWeek(t *testing.T, svc WizardService, picks map[model.Weekday]string) *model.WizardState {
	t.Helper()
	var state *model.WizardState
	var err error
	for _, day := range model.Weekdays {
		state, err = svc.Choose(context.Background(), studentID, picks[day])
		if err != nil {
			t.Fatalf("choose %s: unexpected error: %v", day, err)
		}
	}
	return state
}

// ────────────────────────────────────────────────
// Tests
// ────────────────────────────────────────────────

func TestStart_EntryGuard(t *testing.T) {
	counter := &mockCounter{
		totalFunc: func(string) (int64, error) { return 2, nil },
	}
	svc := fixtureWizard(newMockStore(), &mockAllocator{}, counter)

	_, err := svc.Start(context.Background(), studentID)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected conflict for already-enrolled student, got %s", appErr.Code)
	}
}

func TestStart_BeginsAtMonday(t *testing.T) {
	svc := fixtureWizard(newMockStore(), &mockAllocator{}, &mockCounter{})

	state, err := svc.Start(context.Background(), studentID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Phase != model.WizardCollecting {
		t.Errorf("expected collecting phase, got %s", state.Phase)
	}
	if state.Step != 0 {
		t.Errorf("expected step 0, got %d", state.Step)
	}
	if state.SessionID == "" {
		t.Error("expected a session ID")
	}
}

func TestChoose_WalksDaysInOrder(t *testing.T) {
	store := newMockStore()
	svc := fixtureWizard(store, &mockAllocator{}, &mockCounter{})

	if _, err := svc.Start(context.Background(), studentID); err != nil {
		t.Fatalf("start: %v", err)
	}

	state := chooseWholeWeek(t, svc, map[model.Weekday]string{
		model.Monday:    "activity-Monday",
		model.Wednesday: "activity-Wednesday",
		model.Friday:    "activity-Friday",
	})

	if state.Phase != model.WizardFinalizing {
		t.Errorf("expected finalizing after last day, got %s", state.Phase)
	}
	if state.ChosenCount() != 3 {
		t.Errorf("expected 3 selections, got %d", state.ChosenCount())
	}
}

func TestChoose_RejectsWrongDay(t *testing.T) {
	svc := fixtureWizard(newMockStore(), &mockAllocator{}, &mockCounter{})

	if _, err := svc.Start(context.Background(), studentID); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Step 0 is Monday; a Friday activity must not slot there.
	_, err := svc.Choose(context.Background(), studentID, "activity-Friday")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected invalid input, got %s", appErr.Code)
	}
}

func TestFinalize_BelowMinimumResets(t *testing.T) {
	store := newMockStore()
	allocator := &mockAllocator{}
	svc := fixtureWizard(store, allocator, &mockCounter{})

	if _, err := svc.Start(context.Background(), studentID); err != nil {
		t.Fatalf("start: %v", err)
	}
	chooseWholeWeek(t, svc, map[model.Weekday]string{
		model.Monday:  "activity-Monday",
		model.Tuesday: "activity-Tuesday",
	})

	_, err := svc.Finalize(context.Background(), studentID)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(apperrors.AsAppError(err).Message, "at least 3") {
		t.Errorf("expected minimum message, got %q", apperrors.AsAppError(err).Message)
	}
	if len(allocator.created) != 0 {
		t.Error("nothing may be committed below the minimum")
	}

	state, ok := store.Get(studentID)
	if !ok {
		t.Fatal("session must survive a failed finalize")
	}
	if state.Step != 0 || state.ChosenCount() != 0 {
		t.Errorf("expected reset to day one with no selections, got step %d, chosen %d", state.Step, state.ChosenCount())
	}
}

func TestFinalize_CommitsInDayOrder(t *testing.T) {
	store := newMockStore()
	allocator := &mockAllocator{}
	svc := fixtureWizard(store, allocator, &mockCounter{})

	if _, err := svc.Start(context.Background(), studentID); err != nil {
		t.Fatalf("start: %v", err)
	}
	chooseWholeWeek(t, svc, map[model.Weekday]string{
		model.Friday:  "activity-Friday",
		model.Monday:  "activity-Monday",
		model.Tuesday: "activity-Tuesday",
	})

	result, err := svc.Finalize(context.Background(), studentID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Created) != 3 || len(result.Failures) != 0 {
		t.Fatalf("expected 3 created and no failures, got %d/%d", len(result.Created), len(result.Failures))
	}

	want := []string{"activity-Monday", "activity-Tuesday", "activity-Friday"}
	for i, id := range want {
		if allocator.created[i] != id {
			t.Errorf("commit order: expected %s at %d, got %s", id, i, allocator.created[i])
		}
	}

	if _, ok := store.Get(studentID); ok {
		t.Error("session must be discarded after commit")
	}
}

func TestFinalize_CollectsPartialFailures(t *testing.T) {
	store := newMockStore()
	allocator := &mockAllocator{
		createFunc: func(ctx context.Context, sid, activityID string) (*model.Booking, error) {
			if activityID == "activity-Tuesday" {
				return nil, apperrors.Conflict("Club Tuesday is already full.")
			}
			return &model.Booking{ID: "b-" + activityID, StudentID: sid, ActivityID: activityID}, nil
		},
	}
	svc := fixtureWizard(store, allocator, &mockCounter{})

	if _, err := svc.Start(context.Background(), studentID); err != nil {
		t.Fatalf("start: %v", err)
	}
	chooseWholeWeek(t, svc, map[model.Weekday]string{
		model.Monday:  "activity-Monday",
		model.Tuesday: "activity-Tuesday",
		model.Friday:  "activity-Friday",
	})

	result, err := svc.Finalize(context.Background(), studentID)
	if err != nil {
		t.Fatalf("a raced-away seat must not abort the commit: %v", err)
	}
	if len(result.Created) != 2 {
		t.Errorf("expected 2 created, got %d", len(result.Created))
	}
	if len(result.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(result.Failures))
	}
	if result.Failures[0].Day != model.Tuesday {
		t.Errorf("expected Tuesday failure, got %s", result.Failures[0].Day)
	}
	if !strings.Contains(result.Failures[0].Reason, "already full") {
		t.Errorf("expected allocator reason, got %q", result.Failures[0].Reason)
	}
}

func TestOptions_SpotsLeftForCurrentDay(t *testing.T) {
	counter := &mockCounter{
		activityFunc: func(activityID string) (int64, error) { return 7, nil },
	}
	svc := fixtureWizard(newMockStore(), &mockAllocator{}, counter)

	if _, err := svc.Start(context.Background(), studentID); err != nil {
		t.Fatalf("start: %v", err)
	}

	options, err := svc.Options(context.Background(), studentID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(options) != 1 {
		t.Fatalf("expected 1 option, got %d", len(options))
	}
	if options[0].Activity.Day != model.Monday {
		t.Errorf("expected Monday options, got %s", options[0].Activity.Day)
	}
	if options[0].SpotsLeft == nil || *options[0].SpotsLeft != 3 {
		t.Errorf("expected 3 spots left, got %v", options[0].SpotsLeft)
	}
}

func TestAbort_DiscardsSession(t *testing.T) {
	store := newMockStore()
	svc := fixtureWizard(store, &mockAllocator{}, &mockCounter{})

	if _, err := svc.Start(context.Background(), studentID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := svc.Abort(context.Background(), studentID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.Get(studentID); ok {
		t.Error("session must be gone after abort")
	}

	if err := svc.Abort(context.Background(), studentID); err == nil {
		t.Error("aborting a missing session must error")
	}
}
