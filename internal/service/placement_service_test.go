package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/lingvoclub/placement-backend/internal/model"
)

// ----------------------------------------------------------------
// In-memory fakes
// ----------------------------------------------------------------

type fakeBank struct {
	questions []*model.Question
	nextID    int
}

func (b *fakeBank) add(level model.LanguageLevel, category model.QuestionCategory, topic string) *model.Question {
	b.nextID++
	options := `["a","b"]`
	q := &model.Question{
		ID:            b.nextID,
		Level:         level,
		Category:      category,
		TopicTitle:    topic,
		QuestionTitle: fmt.Sprintf("question %d", b.nextID),
		AnswerType:    model.AnswerTypeSelectOne,
		AnswerOptions: &options,
		CorrectAnswer: "0",
	}
	b.questions = append(b.questions, q)
	return q
}

func (b *fakeBank) ListGroups(_ context.Context, level model.LanguageLevel) ([]model.QuestionGroup, error) {
	counts := make(map[model.QuestionGroup]int)
	var order []model.QuestionGroup
	for _, q := range b.questions {
		if q.Level != level {
			continue
		}
		g := model.QuestionGroup{Category: q.Category, AnswerType: q.AnswerType, TopicTitle: q.TopicTitle}
		if counts[g] == 0 {
			order = append(order, g)
		}
		counts[g]++
	}
	groups := make([]model.QuestionGroup, 0, len(order))
	for _, g := range order {
		g.QuestionsCount = counts[g]
		groups = append(groups, g)
	}
	return groups, nil
}

func (b *fakeBank) PickFromGroup(_ context.Context, level model.LanguageLevel, group model.QuestionGroup, offset int) (*model.Question, error) {
	n := 0
	for _, q := range b.questions {
		if q.Level != level || q.Category != group.Category || q.AnswerType != group.AnswerType || q.TopicTitle != group.TopicTitle {
			continue
		}
		if n == offset {
			return q, nil
		}
		n++
	}
	return nil, ErrNotFound
}

func (b *fakeBank) GetByID(_ context.Context, id int) (*model.Question, error) {
	for _, q := range b.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, ErrNotFound
}

type fakeStore struct {
	bank     *fakeBank
	sessions map[uuid.UUID]*model.Session
	steps    map[uuid.UUID][]*model.ProgressStep
	results  map[uuid.UUID]*model.Result
}

func newFakeStore(bank *fakeBank) *fakeStore {
	return &fakeStore{
		bank:     bank,
		sessions: make(map[uuid.UUID]*model.Session),
		steps:    make(map[uuid.UUID][]*model.ProgressStep),
		results:  make(map[uuid.UUID]*model.Result),
	}
}

func (s *fakeStore) Create(_ context.Context, session *model.Session, steps []model.ProgressStep) error {
	cp := *session
	s.sessions[session.ID] = &cp
	for i := range steps {
		st := steps[i]
		s.steps[session.ID] = append(s.steps[session.ID], &st)
	}
	return nil
}

func (s *fakeStore) Get(_ context.Context, id uuid.UUID) (*model.Session, error) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *session
	return &cp, nil
}

func (s *fakeStore) Step(_ context.Context, sessionID uuid.UUID, stepNumber int) (*model.ProgressStep, error) {
	for _, st := range s.steps[sessionID] {
		if st.StepNumber == stepNumber {
			cp := *st
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStore) recordAnswer(sessionID uuid.UUID, stepNumber int, givenAnswer string, isCorrect bool) error {
	for _, st := range s.steps[sessionID] {
		if st.StepNumber == stepNumber {
			if st.GivenAnswer != nil {
				return errors.New("step already answered")
			}
			st.GivenAnswer = &givenAnswer
			st.IsCorrect = &isCorrect
			return nil
		}
	}
	return ErrNotFound
}

func (s *fakeStore) AdvanceStep(_ context.Context, sessionID uuid.UUID, stepNumber int, givenAnswer string, isCorrect bool) error {
	if err := s.recordAnswer(sessionID, stepNumber, givenAnswer, isCorrect); err != nil {
		return err
	}
	s.sessions[sessionID].CurrentStep++
	return nil
}

func (s *fakeStore) AdvanceAndAppend(_ context.Context, sessionID uuid.UUID, stepNumber int, givenAnswer string, isCorrect bool, nextLevel model.LanguageLevel, steps []model.ProgressStep) error {
	if err := s.recordAnswer(sessionID, stepNumber, givenAnswer, isCorrect); err != nil {
		return err
	}
	for i := range steps {
		st := steps[i]
		s.steps[sessionID] = append(s.steps[sessionID], &st)
	}
	session := s.sessions[sessionID]
	session.CurrentStep++
	session.CurrentLevel = nextLevel
	session.LevelEndStep = stepNumber + len(steps)
	return nil
}

func (s *fakeStore) FinalizeStep(_ context.Context, sessionID uuid.UUID, stepNumber int, givenAnswer string, isCorrect bool, result *model.Result) error {
	if err := s.recordAnswer(sessionID, stepNumber, givenAnswer, isCorrect); err != nil {
		return err
	}
	cp := *result
	s.results[result.ID] = &cp
	session := s.sessions[sessionID]
	session.Status = model.SessionStatusFinished
	session.CurrentStep++
	session.ResultID = &cp.ID
	return nil
}

func (s *fakeStore) History(_ context.Context, sessionID uuid.UUID) ([]model.AnsweredQuestion, error) {
	var history []model.AnsweredQuestion
	for _, st := range s.steps[sessionID] {
		if st.GivenAnswer == nil {
			continue
		}
		q, err := s.bank.GetByID(context.Background(), st.QuestionID)
		if err != nil {
			return nil, err
		}
		history = append(history, model.AnsweredQuestion{
			Question:    *q,
			StepNumber:  st.StepNumber,
			GivenAnswer: *st.GivenAnswer,
			IsCorrect:   *st.IsCorrect,
		})
	}
	return history, nil
}

// fakeResults adapts the fake store's result map to ResultStore.
type fakeResults struct{ store *fakeStore }

func (r fakeResults) Get(_ context.Context, id uuid.UUID) (*model.Result, error) {
	result, ok := r.store.results[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *result
	return &cp, nil
}

type fakeLock struct{ held bool }

func (l *fakeLock) Acquire(context.Context, uuid.UUID) (func(), bool, error) {
	if l.held {
		return nil, false, nil
	}
	return func() {}, true, nil
}

// ----------------------------------------------------------------
// Helpers
// ----------------------------------------------------------------

func seedLevel(bank *fakeBank, level model.LanguageLevel, groupCount int) {
	for i := 0; i < groupCount; i++ {
		bank.add(level, model.CategoryGrammar, fmt.Sprintf("topic %d", i))
	}
}

func newTestService(bank *fakeBank, store *fakeStore, lock SessionLocker) *PlacementService {
	if lock == nil {
		lock = &fakeLock{}
	}
	return NewPlacementService(bank, store, lock, zerolog.Nop())
}

// answerBatch submits the same answer for every remaining question of the
// current level batch and returns the last outcome.
func answerBatch(t *testing.T, svc *PlacementService, store *fakeStore, sessionID uuid.UUID, answer string) *StepOutcome {
	t.Helper()
	for {
		session := store.sessions[sessionID]
		atBoundary := session.CurrentStep == session.LevelEndStep
		outcome, err := svc.SubmitAnswer(context.Background(), sessionID, answer)
		if err != nil {
			t.Fatalf("SubmitAnswer: %v", err)
		}
		if atBoundary || outcome.Finished {
			return outcome
		}
	}
}

// ----------------------------------------------------------------
// Tests
// ----------------------------------------------------------------

func TestStartBuildsFirstBatch(t *testing.T) {
	bank := &fakeBank{}
	seedLevel(bank, model.MinLevel, 3)
	store := newFakeStore(bank)
	svc := newTestService(bank, store, nil)

	session, question, err := svc.Start(context.Background(), "Anna", "anna@example.com", model.LevelA0)
	if err != nil {
		t.Fatal(err)
	}
	if question == nil {
		t.Fatal("expected the first question")
	}
	if session.StartLevel != model.MinLevel || !session.ChoseDontKnow {
		t.Errorf("A0 start: level=%v chose_dont_know=%v", session.StartLevel, session.ChoseDontKnow)
	}
	if session.LevelEndStep != 3 || session.CurrentStep != 1 {
		t.Errorf("batch layout: end=%d step=%d, want end=3 step=1", session.LevelEndStep, session.CurrentStep)
	}
	if len(store.steps[session.ID]) != 3 {
		t.Errorf("stored %d steps, want 3", len(store.steps[session.ID]))
	}
}

func TestStartWithEmptyBankFails(t *testing.T) {
	bank := &fakeBank{}
	store := newFakeStore(bank)
	svc := newTestService(bank, store, nil)

	_, _, err := svc.Start(context.Background(), "Anna", "anna@example.com", model.LevelB1_1)
	if !errors.Is(err, ErrExhaustedBank) {
		t.Errorf("err = %v, want ErrExhaustedBank", err)
	}
}

func TestSubmitServesNextQuestionMidBatch(t *testing.T) {
	bank := &fakeBank{}
	seedLevel(bank, model.LevelA2_1, 2)
	store := newFakeStore(bank)
	svc := newTestService(bank, store, nil)

	session, _, err := svc.Start(context.Background(), "Anna", "anna@example.com", model.LevelA2_1)
	if err != nil {
		t.Fatal(err)
	}

	outcome, err := svc.SubmitAnswer(context.Background(), session.ID, "0")
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Finished || outcome.Question == nil {
		t.Fatalf("mid-batch submit: %+v", outcome)
	}
	if store.sessions[session.ID].CurrentStep != 2 {
		t.Errorf("current step = %d, want 2", store.sessions[session.ID].CurrentStep)
	}
}

func TestLadderClimbsAfterPassedBatch(t *testing.T) {
	bank := &fakeBank{}
	seedLevel(bank, model.LevelA2_1, 2)
	seedLevel(bank, model.LevelA2_2, 2)
	store := newFakeStore(bank)
	svc := newTestService(bank, store, nil)

	session, _, err := svc.Start(context.Background(), "Anna", "anna@example.com", model.LevelA2_1)
	if err != nil {
		t.Fatal(err)
	}

	outcome := answerBatch(t, svc, store, session.ID, "0") // all correct
	if outcome.Finished {
		t.Fatal("one passed batch should continue, not finish")
	}

	got := store.sessions[session.ID]
	if got.CurrentLevel != model.LevelA2_2 {
		t.Errorf("current level = %v, want A2_2", got.CurrentLevel)
	}
	if got.CurrentStep != 3 || got.LevelEndStep != 4 {
		t.Errorf("batch layout after climb: step=%d end=%d, want 3/4", got.CurrentStep, got.LevelEndStep)
	}
}

func TestFailAtMinLevelFinishesAtA0(t *testing.T) {
	bank := &fakeBank{}
	seedLevel(bank, model.MinLevel, 2)
	store := newFakeStore(bank)
	svc := newTestService(bank, store, nil)

	session, _, err := svc.Start(context.Background(), "Anna", "anna@example.com", model.MinLevel)
	if err != nil {
		t.Fatal(err)
	}

	outcome := answerBatch(t, svc, store, session.ID, "1") // all wrong
	if !outcome.Finished {
		t.Fatal("failing the bottom batch should finish the test")
	}
	result := store.results[outcome.ResultID]
	if result == nil || result.DetectedLevel != model.LevelA0 {
		t.Fatalf("result = %+v, want detected A0", result)
	}
	if store.sessions[session.ID].Status != model.SessionStatusFinished {
		t.Error("session should be FINISHED")
	}

	// The finished session accepts no further answers.
	if _, err := svc.SubmitAnswer(context.Background(), session.ID, "0"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("submit after finish: err = %v, want ErrInvalidState", err)
	}
}

func TestClimbThenFailSettlesBelow(t *testing.T) {
	bank := &fakeBank{}
	seedLevel(bank, model.LevelA1_2, 2)
	seedLevel(bank, model.LevelA2_1, 2)
	store := newFakeStore(bank)
	svc := newTestService(bank, store, nil)

	session, _, err := svc.Start(context.Background(), "Anna", "anna@example.com", model.LevelA1_2)
	if err != nil {
		t.Fatal(err)
	}

	if outcome := answerBatch(t, svc, store, session.ID, "0"); outcome.Finished {
		t.Fatal("pass at A1_2 should climb")
	}
	outcome := answerBatch(t, svc, store, session.ID, "1")
	if !outcome.Finished {
		t.Fatal("pass then fail should finish")
	}
	if result := store.results[outcome.ResultID]; result.DetectedLevel != model.LevelA1_2 {
		t.Errorf("detected = %v, want A1_2", result.DetectedLevel)
	}
}

func TestPassAtMaxLevelFinishesAtMax(t *testing.T) {
	bank := &fakeBank{}
	seedLevel(bank, model.MaxLevel, 2)
	store := newFakeStore(bank)
	svc := newTestService(bank, store, nil)

	session, _, err := svc.Start(context.Background(), "Anna", "anna@example.com", model.MaxLevel)
	if err != nil {
		t.Fatal(err)
	}

	outcome := answerBatch(t, svc, store, session.ID, "0")
	if !outcome.Finished {
		t.Fatal("pass at the top should finish")
	}
	if result := store.results[outcome.ResultID]; result.DetectedLevel != model.MaxLevel {
		t.Errorf("detected = %v, want MaxLevel", result.DetectedLevel)
	}
}

func TestExhaustedBankFinalizesEarly(t *testing.T) {
	// Only A2_1 has questions: passing it wants A2_2, which is empty.
	bank := &fakeBank{}
	seedLevel(bank, model.LevelA2_1, 2)
	store := newFakeStore(bank)
	svc := newTestService(bank, store, nil)

	session, _, err := svc.Start(context.Background(), "Anna", "anna@example.com", model.LevelA2_1)
	if err != nil {
		t.Fatal(err)
	}

	outcome := answerBatch(t, svc, store, session.ID, "0")
	if !outcome.Finished {
		t.Fatal("an exhausted bank should end the test")
	}
	if result := store.results[outcome.ResultID]; result.DetectedLevel != model.LevelA2_1 {
		t.Errorf("detected = %v, want the highest passed level A2_1", result.DetectedLevel)
	}
}

func TestMalformedAnswerLeavesSessionUntouched(t *testing.T) {
	bank := &fakeBank{}
	seedLevel(bank, model.MinLevel, 2)
	store := newFakeStore(bank)
	svc := newTestService(bank, store, nil)

	session, _, err := svc.Start(context.Background(), "Anna", "anna@example.com", model.MinLevel)
	if err != nil {
		t.Fatal(err)
	}

	for _, raw := range []string{"abc", "-1", "5", ""} {
		if _, err := svc.SubmitAnswer(context.Background(), session.ID, raw); !errors.Is(err, ErrMalformedAnswer) {
			t.Errorf("SubmitAnswer(%q): err = %v, want ErrMalformedAnswer", raw, err)
		}
	}

	got := store.sessions[session.ID]
	if got.CurrentStep != 1 || got.Status != model.SessionStatusInProgress {
		t.Errorf("session mutated by malformed answers: step=%d status=%s", got.CurrentStep, got.Status)
	}
	if step, _ := store.Step(context.Background(), session.ID, 1); step.GivenAnswer != nil {
		t.Error("step answer recorded despite malformed input")
	}
}

func TestConcurrentSubmitRejected(t *testing.T) {
	bank := &fakeBank{}
	seedLevel(bank, model.MinLevel, 1)
	store := newFakeStore(bank)
	svc := newTestService(bank, store, &fakeLock{held: true})

	_, err := svc.SubmitAnswer(context.Background(), uuid.New(), "0")
	if !errors.Is(err, ErrConcurrentModification) {
		t.Errorf("err = %v, want ErrConcurrentModification", err)
	}
}

func TestUnknownSessionReadsAsNotStarted(t *testing.T) {
	bank := &fakeBank{}
	store := newFakeStore(bank)
	svc := newTestService(bank, store, nil)

	view, err := svc.Status(context.Background(), uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if view.Status != model.SessionStatusNotStarted {
		t.Errorf("status = %s, want NOT_STARTED", view.Status)
	}
}

func TestStatusIsIdempotent(t *testing.T) {
	bank := &fakeBank{}
	seedLevel(bank, model.MinLevel, 2)
	store := newFakeStore(bank)
	svc := newTestService(bank, store, nil)

	session, first, err := svc.Start(context.Background(), "Anna", "anna@example.com", model.MinLevel)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		view, err := svc.Status(context.Background(), session.ID)
		if err != nil {
			t.Fatal(err)
		}
		if view.Status != model.SessionStatusInProgress {
			t.Fatalf("status = %s, want IN_PROGRESS", view.Status)
		}
		if view.Question.QuestionTitle != first.QuestionTitle {
			t.Errorf("status changed the current question: %q vs %q", view.Question.QuestionTitle, first.QuestionTitle)
		}
	}
}

func TestNoQuestionRepeatsAcrossLadder(t *testing.T) {
	bank := &fakeBank{}
	for _, level := range []model.LanguageLevel{model.LevelA1_2, model.LevelA2_1, model.LevelA2_2} {
		seedLevel(bank, level, 2)
	}
	store := newFakeStore(bank)
	svc := newTestService(bank, store, nil)

	session, _, err := svc.Start(context.Background(), "Anna", "anna@example.com", model.LevelA1_2)
	if err != nil {
		t.Fatal(err)
	}

	// Pass A1_2 and A2_1, fail A2_2: three levels visited.
	answerBatch(t, svc, store, session.ID, "0")
	answerBatch(t, svc, store, session.ID, "0")
	outcome := answerBatch(t, svc, store, session.ID, "1")
	if !outcome.Finished {
		t.Fatal("climb, climb, fail should finish")
	}

	seen := make(map[int]bool)
	for _, st := range store.steps[session.ID] {
		if seen[st.QuestionID] {
			t.Fatalf("question %d served twice", st.QuestionID)
		}
		seen[st.QuestionID] = true
	}
}

func TestResultRoundTrip(t *testing.T) {
	bank := &fakeBank{}
	seedLevel(bank, model.LevelA1_2, 2)
	seedLevel(bank, model.LevelA2_1, 2)
	store := newFakeStore(bank)
	svc := newTestService(bank, store, nil)
	results := NewResultService(fakeResults{store: store}, store)

	session, _, err := svc.Start(context.Background(), "Anna", "anna@example.com", model.LevelA1_2)
	if err != nil {
		t.Fatal(err)
	}
	answerBatch(t, svc, store, session.ID, "0")
	outcome := answerBatch(t, svc, store, session.ID, "1")
	if !outcome.Finished {
		t.Fatal("expected a finished test")
	}

	summary, err := results.LoadSummarized(context.Background(), outcome.ResultID)
	if err != nil {
		t.Fatal(err)
	}
	if summary.DetectedLevel != model.LevelA1_2 {
		t.Errorf("detected = %v, want A1_2", summary.DetectedLevel)
	}
	if summary.TotalQuestions != 4 || summary.TotalCorrectAnswers != 2 {
		t.Errorf("totals = %d/%d, want 2/4", summary.TotalCorrectAnswers, summary.TotalQuestions)
	}
	if summary.Recommendation == "" || summary.DetectedLevelName != "A1.2" {
		t.Errorf("presentation fields: %q / %q", summary.Recommendation, summary.DetectedLevelName)
	}

	detailed, err := results.LoadDetailed(context.Background(), outcome.ResultID)
	if err != nil {
		t.Fatal(err)
	}
	if len(detailed) != 4 {
		t.Fatalf("detailed has %d steps, want 4", len(detailed))
	}
	if detailed[0].GivenAnswer != "0" || detailed[3].GivenAnswer != "1" {
		t.Errorf("given answers out of order: first=%q last=%q", detailed[0].GivenAnswer, detailed[3].GivenAnswer)
	}

	if _, err := results.LoadSummarized(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown result: err = %v, want ErrNotFound", err)
	}
}
