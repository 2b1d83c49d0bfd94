package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/model"
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/repository"
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/util"
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/pkg/logger"
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// attemptLockTTL bounds how long a submission lock can block a retry if the
// holder dies mid-request.
const attemptLockTTL = 30 * time.Second

// CertificationEnqueuer hands a passed attempt off for asynchronous
// certificate issuance.
type CertificationEnqueuer interface {
	Enqueue(job CertificationJob) bool
}

// ResponseNotifier records that a new submission arrived. Failures are
// logged, never surfaced to the respondent.
type ResponseNotifier interface {
	NotifyNewResponse(form *model.Form, resp *model.FormResponse)
}

type ResponseService struct {
	Forms         *repository.FormRepository
	Responses     *repository.ResponseRepository
	Selector      *QuestionSelector
	Certification CertificationEnqueuer
	Notifications ResponseNotifier
	Redis         *redis.Client
}

func NewResponseService(
	forms *repository.FormRepository,
	responses *repository.ResponseRepository,
	selector *QuestionSelector,
	certification CertificationEnqueuer,
	notifications ResponseNotifier,
	rdb *redis.Client,
) *ResponseService {
	return &ResponseService{
		Forms:         forms,
		Responses:     responses,
		Selector:      selector,
		Certification: certification,
		Notifications: notifications,
		Redis:         rdb,
	}
}

type SubmitRequest struct {
	FormUUID            string      `json:"form_uuid" binding:"required"`
	RespondentEmail     string      `json:"respondent_email" binding:"required,email"`
	RespondentName      string      `json:"respondent_name"`
	Answers             []RawAnswer `json:"answers" binding:"required"`
	QuestionsShown      []uint      `json:"questions_shown"`
	TimeSpent           int         `json:"time_spent"`
	StartedAt           *time.Time  `json:"started_at"`
	OdooPartnerID       *int64      `json:"odoo_partner_id"`
	OdooStudentNames    string      `json:"odoo_student_names"`
	OdooStudentSurnames string      `json:"odoo_student_surnames"`
}

// GradingDetail is one question's outcome in a result view. Correctness
// fields are omitted when the form hides them.
type GradingDetail struct {
	QuestionID    uint    `json:"question_id"`
	QuestionText  string  `json:"question_text"`
	AnswerText    string  `json:"answer_text"`
	IsCorrect     *bool   `json:"is_correct,omitempty"`
	PointsEarned  float64 `json:"points_earned"`
	MaxPoints     float64 `json:"max_points"`
	CorrectAnswer string  `json:"correct_answer,omitempty"`
}

type GradingResult struct {
	ResponseUUID   string          `json:"response_uuid"`
	FormType       string          `json:"form_type"`
	AttemptNumber  int             `json:"attempt_number"`
	AttemptsLeft   int             `json:"attempts_left"`
	ShowScore      bool            `json:"show_score"`
	Score          *int            `json:"score,omitempty"`
	TotalScore     *float64        `json:"total_score,omitempty"`
	MaxScore       *float64        `json:"max_score,omitempty"`
	CorrectCount   *int            `json:"correct_count,omitempty"`
	TotalQuestions int             `json:"total_questions"`
	Passed         *bool           `json:"passed,omitempty"`
	Details        []GradingDetail `json:"details,omitempty"`
	SubmittedAt    time.Time       `json:"submitted_at"`
}

// AttemptDeniedError carries the attempt state so the transport layer can
// answer a rejected submission with the respondent's previous result.
type AttemptDeniedError struct {
	Status AttemptStatus
}

func (e *AttemptDeniedError) Error() string {
	if e.Status.State == AttemptedPass {
		return util.ErrAlreadyPassed.Error()
	}
	return util.ErrAttemptLimitReached.Error()
}

// Submit grades one submission end to end: locate the form, guard the
// attempt, resolve the graded set, evaluate and aggregate, persist
// transactionally, then hand off the side effects. The certificate handoff
// happens strictly after the commit so a rollback can never leave an issued
// certificate pointing at a response that does not exist.
func (s *ResponseService) Submit(ctx context.Context, req *SubmitRequest) (*GradingResult, error) {
	form, err := s.Forms.FindActiveByUUID(req.FormUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrFormNotFound
		}
		return nil, err
	}

	now := time.Now()
	if !form.AvailableAt(now) {
		return nil, util.ErrFormInactive
	}

	unlock := s.lockAttempt(ctx, form.ID, req.RespondentEmail)
	defer unlock()

	history, err := s.Responses.HistoryByFormAndEmail(form.ID, req.RespondentEmail)
	if err != nil {
		return nil, err
	}

	totalInBank, err := s.Forms.CountActiveQuestions(form.ID)
	if err != nil {
		return nil, err
	}

	var status AttemptStatus
	if form.IsExam() {
		tallies, err := s.talliesFor(history)
		if err != nil {
			return nil, err
		}
		status = EvaluateAttemptHistory(form, history, tallies, int(totalInBank))
		if !status.CanAttempt {
			return nil, &AttemptDeniedError{Status: status}
		}
	} else {
		status = AttemptStatus{State: NoAttempt, CanAttempt: true, AttemptsUsed: len(history), MaxAttempts: 0}
	}

	bank, err := s.Forms.ActiveQuestions(form.ID)
	if err != nil {
		return nil, err
	}

	gradedSet := s.resolveGradedSet(form, bank, req.QuestionsShown)

	graded, summary, err := gradeSubmission(form, gradedSet, req.Answers)
	if err != nil {
		return nil, err
	}

	startedAt := now
	if req.StartedAt != nil {
		startedAt = *req.StartedAt
	}

	resp := &model.FormResponse{
		ResponseUUID:        model.GenerateUUID(),
		FormID:              form.ID,
		RespondentEmail:     req.RespondentEmail,
		RespondentName:      req.RespondentName,
		AttemptNumber:       status.AttemptsUsed + 1,
		OdooPartnerID:       req.OdooPartnerID,
		OdooStudentNames:    req.OdooStudentNames,
		OdooStudentSurnames: req.OdooStudentSurnames,
		Status:              model.ResponseStatusSubmitted,
		TotalScore:          summary.TotalScore,
		MaxPossibleScore:    summary.MaxPossibleScore,
		PercentageScore:     summary.Percentage,
		Passed:              summary.Passed,
		TimeSpent:           req.TimeSpent,
		StartedAt:           startedAt,
		SubmittedAt:         now,
	}

	answerRows := make([]model.ResponseAnswer, 0, len(graded))
	for _, g := range graded {
		answerRows = append(answerRows, model.ResponseAnswer{
			QuestionID:   g.QuestionID,
			AnswerText:   g.AnswerText,
			IsCorrect:    g.IsCorrect,
			PointsEarned: g.PointsEarned,
		})
	}

	if err := s.Responses.CreateWithAnswers(resp, answerRows); err != nil {
		return nil, err
	}

	monitoring.SubmissionsGraded.WithLabelValues(form.FormType, verdictLabel(summary.Passed)).Inc()

	s.dispatchSideEffects(form, resp, summary)

	return s.buildResult(form, resp, gradedSet, graded, summary, status), nil
}

// lockAttempt takes a best-effort redis lock per (form, respondent). The
// unique index on attempt_number is the hard guarantee against double
// submission; the lock only narrows the window so concurrent duplicates
// usually fail fast instead of at commit. Redis being down never blocks a
// submission.
func (s *ResponseService) lockAttempt(ctx context.Context, formID uint, email string) func() {
	if s.Redis == nil {
		return func() {}
	}

	key := fmt.Sprintf("formswe:attempt_lock:%d:%s", formID, email)
	ok, err := s.Redis.SetNX(ctx, key, 1, attemptLockTTL).Result()
	if err != nil {
		logger.Log.Warn("attempt lock unavailable, relying on unique index", zap.Error(err))
		return func() {}
	}
	if !ok {
		// Another submission for this pair is in flight; fall through and
		// let the unique index arbitrate.
		logger.Log.Info("concurrent submission detected",
			zap.Uint("formId", formID), zap.String("email", email))
		return func() {}
	}

	return func() {
		if err := s.Redis.Del(context.Background(), key).Err(); err != nil {
			logger.Log.Warn("attempt lock release failed", zap.Error(err))
		}
	}
}

func (s *ResponseService) talliesFor(history []model.FormResponse) (map[uint]repository.AnswerTally, error) {
	ids := make([]uint, 0, len(history))
	for i := range history {
		ids = append(ids, history[i].ID)
	}
	return s.Responses.AnswerTallies(ids)
}

// resolveGradedSet decides which questions this submission is graded
// against. Without bank sampling the server recomputes the set itself and
// ignores the client's claim. With bank sampling the server cannot know
// which random subset the respondent saw, so it accepts questions_shown
// filtered against the active bank; absent that (legacy clients) it falls
// back to the full bank.
func (s *ResponseService) resolveGradedSet(form *model.Form, bank []model.Question, shown []uint) []model.Question {
	sampling := form.UseQuestionBank && form.QuestionsToShow != nil && *form.QuestionsToShow < len(bank)
	if !sampling {
		return s.Selector.Select(form, bank)
	}

	if len(shown) == 0 {
		return bank
	}

	shownSet := make(map[uint]bool, len(shown))
	for _, id := range shown {
		shownSet[id] = true
	}

	subset := make([]model.Question, 0, len(shown))
	for i := range bank {
		if shownSet[bank[i].ID] {
			subset = append(subset, bank[i])
		}
	}
	if len(subset) == 0 {
		return bank
	}
	return subset
}

// gradeSubmission is the pure core of a submission: evaluate every answer
// that maps to a question in the graded set, then aggregate. Answers for
// unknown questions are skipped, not failed; an exam whose graded set has
// gradable questions but zero total worth is a configuration error.
func gradeSubmission(form *model.Form, gradedSet []model.Question, answers []RawAnswer) ([]GradedAnswer, ScoreSummary, error) {
	byID := make(map[uint]*model.Question, len(gradedSet))
	maxPoints := make(map[uint]float64, len(gradedSet))
	gradable := 0
	for i := range gradedSet {
		q := &gradedSet[i]
		byID[q.ID] = q
		// Questions graded by hand (free text) or without a right answer
		// (scale) stay out of the automatic denominator, so a pending
		// review never blocks a pass.
		if isAutoGradable(q) {
			maxPoints[q.ID] = QuestionMaxPoints(q)
			gradable++
		}
	}

	graded := make([]GradedAnswer, 0, len(answers))
	seen := make(map[uint]bool, len(answers))
	for _, raw := range answers {
		q, ok := byID[raw.QuestionID]
		if !ok {
			logger.Log.Warn("answer for question outside graded set, skipping",
				zap.Uint("questionId", raw.QuestionID), zap.Uint("formId", form.ID))
			continue
		}
		if seen[q.ID] {
			continue
		}
		seen[q.ID] = true
		graded = append(graded, EvaluateAnswer(q, raw))
	}

	summary := AggregateScore(graded, maxPoints, form.PassingScore)

	if form.IsExam() && gradable > 0 && summary.MaxPossibleScore <= 0 {
		return nil, ScoreSummary{}, util.ErrInvalidPointsConfig
	}

	return graded, summary, nil
}

func isAutoGradable(q *model.Question) bool {
	switch q.Type() {
	case model.SingleChoice, model.MultiChoice, model.Boolean:
		return true
	default:
		return false
	}
}

// dispatchSideEffects runs strictly after the transaction commits. Both
// effects are fire-and-forget for the respondent; their failures surface in
// logs and metrics only.
func (s *ResponseService) dispatchSideEffects(form *model.Form, resp *model.FormResponse, summary ScoreSummary) {
	if s.Notifications != nil {
		go s.Notifications.NotifyNewResponse(form, resp)
	}

	passed := summary.Passed != nil && *summary.Passed
	if !passed || !form.RequiresOdooValidation || form.OdooCourseName == "" {
		return
	}
	if resp.OdooPartnerID == nil {
		logger.Log.Warn("passed attempt has no partner id, skipping certification",
			zap.String("responseUuid", resp.ResponseUUID))
		return
	}
	if s.Certification == nil {
		return
	}

	job := CertificationJob{
		ResponseID:   resp.ID,
		ResponseUUID: resp.ResponseUUID,
		Student: OdooStudent{
			PartnerID: *resp.OdooPartnerID,
			Email:     resp.RespondentEmail,
			Names:     resp.OdooStudentNames,
			Surnames:  resp.OdooStudentSurnames,
		},
		CourseName:  form.OdooCourseName,
		FinalScore:  float64(resp.PercentageScore),
		CompletedAt: resp.SubmittedAt,
	}
	if !s.Certification.Enqueue(job) {
		logger.Log.Error("certification queue full, job dropped",
			zap.String("responseUuid", resp.ResponseUUID))
	}
}

func (s *ResponseService) buildResult(form *model.Form, resp *model.FormResponse, gradedSet []model.Question, graded []GradedAnswer, summary ScoreSummary, status AttemptStatus) *GradingResult {
	result := &GradingResult{
		ResponseUUID:   resp.ResponseUUID,
		FormType:       form.FormType,
		AttemptNumber:  resp.AttemptNumber,
		ShowScore:      form.ShowScoreAfterSubmit,
		TotalQuestions: len(gradedSet),
		SubmittedAt:    resp.SubmittedAt,
	}

	if form.IsExam() && status.MaxAttempts > 0 {
		left := status.MaxAttempts - resp.AttemptNumber
		passed := summary.Passed != nil && *summary.Passed
		if left < 0 || passed {
			left = 0
		}
		result.AttemptsLeft = left
	}

	if !form.ShowScoreAfterSubmit {
		return result
	}

	score := summary.Percentage
	total := summary.TotalScore
	max := summary.MaxPossibleScore
	correct := summary.CorrectCount
	result.Score = &score
	result.TotalScore = &total
	result.MaxScore = &max
	result.CorrectCount = &correct
	result.Passed = summary.Passed

	questionText := make(map[uint]string, len(gradedSet))
	for i := range gradedSet {
		questionText[gradedSet[i].ID] = gradedSet[i].QuestionText
	}

	for _, g := range graded {
		detail := GradingDetail{
			QuestionID:   g.QuestionID,
			QuestionText: questionText[g.QuestionID],
			AnswerText:   g.AnswerText,
			PointsEarned: g.PointsEarned,
			MaxPoints:    g.MaxPoints,
		}
		if form.ShowCorrectAnswers {
			detail.IsCorrect = g.IsCorrect
			detail.CorrectAnswer = g.CorrectText
		}
		result.Details = append(result.Details, detail)
	}

	return result
}

// CheckAttemptStatus answers "can this respondent still take this exam" for
// the pre-submission UI.
func (s *ResponseService) CheckAttemptStatus(formUUID, email string) (*AttemptStatus, error) {
	form, err := s.Forms.FindActiveByUUID(formUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrFormNotFound
		}
		return nil, err
	}

	history, err := s.Responses.HistoryByFormAndEmail(form.ID, email)
	if err != nil {
		return nil, err
	}

	if !form.IsExam() {
		return &AttemptStatus{State: NoAttempt, CanAttempt: true, AttemptsUsed: len(history)}, nil
	}

	tallies, err := s.talliesFor(history)
	if err != nil {
		return nil, err
	}

	totalInBank, err := s.Forms.CountActiveQuestions(form.ID)
	if err != nil {
		return nil, err
	}

	status := EvaluateAttemptHistory(form, history, tallies, int(totalInBank))
	return &status, nil
}

// ResultView is a previously graded attempt as shown to its respondent,
// honoring the form's visibility flags.
type ResultView struct {
	ResponseUUID   string          `json:"response_uuid"`
	FormTitle      string          `json:"form_title"`
	FormType       string          `json:"form_type"`
	AttemptNumber  int             `json:"attempt_number"`
	ShowScore      bool            `json:"show_score"`
	Score          *int            `json:"score,omitempty"`
	TotalScore     *float64        `json:"total_score,omitempty"`
	MaxScore       *float64        `json:"max_score,omitempty"`
	Passed         *bool           `json:"passed,omitempty"`
	Details        []GradingDetail `json:"details,omitempty"`
	CertificateID  *int64          `json:"certificate_id,omitempty"`
	CertificatePDF *string         `json:"certificate_pdf,omitempty"`
	SubmittedAt    time.Time       `json:"submitted_at"`
}

func (s *ResponseService) GetResult(responseUUID string) (*ResultView, error) {
	resp, err := s.Responses.FindByUUID(responseUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrResponseNotFound
		}
		return nil, err
	}

	form, err := s.Forms.FindByID(resp.FormID)
	if err != nil {
		return nil, err
	}

	view := &ResultView{
		ResponseUUID:   resp.ResponseUUID,
		FormTitle:      form.Title,
		FormType:       form.FormType,
		AttemptNumber:  resp.AttemptNumber,
		ShowScore:      form.ShowScoreAfterSubmit,
		CertificateID:  resp.OdooCertificateID,
		CertificatePDF: resp.OdooCertificatePDF,
		SubmittedAt:    resp.SubmittedAt,
	}

	if !form.ShowScoreAfterSubmit {
		return view, nil
	}

	score := resp.PercentageScore
	total := resp.TotalScore
	max := resp.MaxPossibleScore
	view.Score = &score
	view.TotalScore = &total
	view.MaxScore = &max
	view.Passed = resp.Passed

	rows, err := s.Responses.ListAnswers(resp.ID)
	if err != nil {
		return nil, err
	}

	var correctTexts map[uint][]string
	if form.ShowCorrectAnswers {
		ids := make([]uint, 0, len(rows))
		for i := range rows {
			ids = append(ids, rows[i].QuestionID)
		}
		correctTexts, err = s.Forms.CorrectOptionTexts(ids)
		if err != nil {
			return nil, err
		}
	}

	for _, row := range rows {
		detail := GradingDetail{
			QuestionID:   row.QuestionID,
			QuestionText: row.QuestionText,
			AnswerText:   row.AnswerText,
			PointsEarned: row.PointsEarned,
			MaxPoints:    row.QuestionPoints,
		}
		if form.ShowCorrectAnswers {
			detail.IsCorrect = row.IsCorrect
			if texts, ok := correctTexts[row.QuestionID]; ok {
				detail.CorrectAnswer = strings.Join(texts, ", ")
			}
		}
		view.Details = append(view.Details, detail)
	}

	return view, nil
}

func verdictLabel(passed *bool) string {
	switch {
	case passed == nil:
		return "ungraded"
	case *passed:
		return "passed"
	default:
		return "failed"
	}
}
