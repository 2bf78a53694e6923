package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Dhrubajit-says/FormForge/internal/model"
	"github.com/Dhrubajit-says/FormForge/internal/scoring"
)

// AnswerScriptService handles submissions, grading and response statistics.
type AnswerScriptService struct {
	scripts   AnswerScriptRepository
	templates TemplateRepository
	attempts  AttemptStore
	events    EventQueue
	grace     time.Duration
	log       zerolog.Logger
	now       func() time.Time
}

// NewAnswerScriptService creates a new AnswerScriptService.
func NewAnswerScriptService(
	scripts AnswerScriptRepository,
	templates TemplateRepository,
	attempts AttemptStore,
	events EventQueue,
	grace time.Duration,
	log zerolog.Logger,
) *AnswerScriptService {
	return &AnswerScriptService{
		scripts:   scripts,
		templates: templates,
		attempts:  attempts,
		events:    events,
		grace:     grace,
		log:       log.With().Str("component", "answer_script_service").Logger(),
		now:       time.Now,
	}
}

// Submit records a respondent's answers against a shared template.
func (s *AnswerScriptService) Submit(ctx context.Context, templateID uuid.UUID, req *model.SubmissionRequest) (*model.AnswerScript, error) {
	t, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, notFound(err)
	}
	return s.submit(ctx, t, req, false)
}

// SubmitPreview records an owner's trial run. Preview scripts are excluded
// from statistics.
func (s *AnswerScriptService) SubmitPreview(ctx context.Context, actor Actor, templateID uuid.UUID, req *model.SubmissionRequest) (*model.AnswerScript, error) {
	t, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, notFound(err)
	}
	if !actor.CanManage(t.OwnerID) {
		return nil, ErrNotOwner
	}
	return s.submit(ctx, t, req, true)
}

func (s *AnswerScriptService) submit(ctx context.Context, t *model.Template, req *model.SubmissionRequest, preview bool) (*model.AnswerScript, error) {
	if len(req.Answers) != len(t.Questions) {
		return nil, newValidationError(ErrAnswerCountMismatch, map[string]string{
			"answers": fmt.Sprintf("expected %d answers, got %d", len(t.Questions), len(req.Answers)),
		})
	}

	answers := make([]model.Answer, len(t.Questions))
	fields := make(map[string]string)
	for i, q := range t.Questions {
		a, err := model.DecodeAnswer(q, req.Answers[i])
		if err != nil {
			fields[fmt.Sprintf("answers[%d]", i)] = err.Error()
			continue
		}
		answers[i] = a
	}
	if len(fields) > 0 {
		return nil, newValidationError(model.ErrAnswerShape, fields)
	}

	now := s.now().UTC()
	var startedAt *time.Time
	if req.AttemptID != nil {
		attempt, err := s.checkAttempt(ctx, t.ID, *req.AttemptID, now)
		if err != nil {
			return nil, err
		}
		startedAt = &attempt.StartedAt
	}

	manual := model.ManualScores{}
	summary := scoring.Aggregate(t.Questions, answers, manual)

	script := &model.AnswerScript{
		TemplateID:           t.ID,
		TemplateTitle:        t.Title,
		OwnerID:              t.OwnerID,
		Questions:            t.Questions,
		RespondentName:       strings.TrimSpace(req.RespondentName),
		RespondentExternalID: strings.TrimSpace(req.RespondentExternalID),
		Answers:              scoring.Mark(t.Questions, answers),
		AutoScore:            summary.AutoScore(),
		ManualScores:         manual,
		Summary:              summary,
		IsPreview:            preview,
		StartedAt:            startedAt,
	}
	if !summary.PendingManualGrading {
		script.GradedAt = &now
	}

	if err := s.scripts.Create(ctx, script); err != nil {
		return nil, fmt.Errorf("create answer script: %w", err)
	}

	s.log.Info().
		Str("answer_script_id", script.ID.String()).
		Str("template_id", t.ID.String()).
		Str("auto_score", script.AutoScore).
		Bool("preview", preview).
		Msg("Answer script submitted")

	s.publish(model.FeedEventSubmitted, script)
	return script, nil
}

func (s *AnswerScriptService) checkAttempt(ctx context.Context, templateID, attemptID uuid.UUID, now time.Time) (*model.Attempt, error) {
	attempt, err := s.attempts.Get(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	if attempt == nil || attempt.TemplateID != templateID {
		return nil, ErrAttemptNotFound
	}
	if attempt.Expired(now, s.grace) {
		return nil, ErrTimeLimitExceeded
	}
	return attempt, nil
}

// Get returns a script whose template the caller owns.
func (s *AnswerScriptService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.AnswerScript, error) {
	script, err := s.scripts.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if !actor.CanManage(script.OwnerID) {
		return nil, ErrNotOwner
	}
	return script, nil
}

// GetScoreSummary recomputes the summary from the stored answers and manual
// scores. It never writes.
func (s *AnswerScriptService) GetScoreSummary(ctx context.Context, actor Actor, id uuid.UUID) (model.ScoreSummary, error) {
	script, err := s.Get(ctx, actor, id)
	if err != nil {
		return model.ScoreSummary{}, err
	}
	return scoring.Aggregate(script.Questions, script.Responses(), script.ManualScores), nil
}

// GetResult returns the respondent-facing view of a script. The script ID
// is the only credential, like the share link.
func (s *AnswerScriptService) GetResult(ctx context.Context, id uuid.UUID) (*model.RespondentResult, error) {
	script, err := s.scripts.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return &model.RespondentResult{
		ID:             script.ID,
		TemplateTitle:  script.TemplateTitle,
		RespondentName: script.RespondentName,
		SubmittedAt:    script.SubmittedAt,
		Answers:        script.Answers,
		Summary:        scoring.Aggregate(script.Questions, script.Responses(), script.ManualScores),
		GradingState:   script.GradingState(),
	}, nil
}

// UpdateManualScore sets the points of one free-text answer and stores the
// recomputed summary.
func (s *AnswerScriptService) UpdateManualScore(ctx context.Context, actor Actor, id uuid.UUID, index, points int) (model.ScoreSummary, error) {
	return s.UpdateManualScores(ctx, actor, id, map[int]int{index: points})
}

// UpdateManualScores applies several manual scores at once. Either every
// score is valid and all are applied, or none is.
func (s *AnswerScriptService) UpdateManualScores(ctx context.Context, actor Actor, id uuid.UUID, scores map[int]int) (model.ScoreSummary, error) {
	script, err := s.Get(ctx, actor, id)
	if err != nil {
		return model.ScoreSummary{}, err
	}
	if len(scores) == 0 {
		return model.ScoreSummary{}, newValidationError(nil, map[string]string{"scores": "at least one score is required"})
	}

	for index, points := range scores {
		if err := validateManualScore(script.Questions, index, points); err != nil {
			return model.ScoreSummary{}, err
		}
	}

	manual := script.ManualScores.Clone()
	for index, points := range scores {
		manual[index] = points
	}

	summary := scoring.Aggregate(script.Questions, script.Responses(), manual)
	gradedAt := s.now().UTC()
	if err := s.scripts.UpdateGrading(ctx, script.ID, manual, summary, gradedAt); err != nil {
		return model.ScoreSummary{}, fmt.Errorf("update grading: %w", notFound(err))
	}

	script.ManualScores = manual
	script.Summary = summary
	s.log.Info().
		Str("answer_script_id", script.ID.String()).
		Str("score", summary.Display()).
		Msg("Manual scores updated")

	s.publish(model.FeedEventGraded, script)
	return summary, nil
}

func validateManualScore(questions []model.Question, index, points int) error {
	field := fmt.Sprintf("manual_scores[%d]", index)
	if index < 0 || index >= len(questions) {
		return newValidationError(ErrQuestionIndexOutOfRange, map[string]string{
			field: fmt.Sprintf("question index must be between 0 and %d", len(questions)-1),
		})
	}
	q := questions[index]
	if q.Type != model.QuestionTypeFreeText {
		return newValidationError(ErrNotFreeText, map[string]string{
			field: "only free-text questions take manual scores",
		})
	}
	if points < 0 || points > q.Points {
		return newValidationError(ErrScoreOutOfRange, map[string]string{
			field: fmt.Sprintf("points must be between 0 and %d", q.Points),
		})
	}
	return nil
}

// Delete removes a script.
func (s *AnswerScriptService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	script, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.scripts.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	s.log.Info().Str("answer_script_id", id.String()).Msg("Answer script deleted")
	s.publish(model.FeedEventDeleted, script)
	return nil
}

// ListForOwner returns scripts of the caller's templates, newest first.
func (s *AnswerScriptService) ListForOwner(ctx context.Context, actor Actor, page, perPage int) ([]model.AnswerScriptListItem, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	scripts, total, err := s.scripts.ListByOwnerPaginated(ctx, actor.UserID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list answer scripts: %w", err)
	}

	items := make([]model.AnswerScriptListItem, len(scripts))
	for i := range scripts {
		items[i] = scripts[i].ListItem()
	}
	return items, total, nil
}

// TemplateStats summarizes the non-preview responses of a template the
// caller manages. Percentages only consider fully graded scripts.
func (s *AnswerScriptService) TemplateStats(ctx context.Context, actor Actor, templateID uuid.UUID) (*model.TemplateStats, error) {
	t, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, notFound(err)
	}
	if !actor.CanManage(t.OwnerID) {
		return nil, ErrNotOwner
	}

	scripts, err := s.scripts.ListByTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("list answer scripts: %w", err)
	}

	stats := &model.TemplateStats{TemplateID: templateID}
	sum := 0
	for i := range scripts {
		script := &scripts[i]
		if script.IsPreview {
			continue
		}
		stats.ResponsesCount++

		summary := scoring.Aggregate(script.Questions, script.Responses(), script.ManualScores)
		if summary.Percentage == nil {
			stats.PendingCount++
			continue
		}
		stats.GradedCount++
		pct := *summary.Percentage
		sum += pct
		if stats.HighestPercentage == nil || pct > *stats.HighestPercentage {
			stats.HighestPercentage = &pct
		}
		if stats.LowestPercentage == nil || pct < *stats.LowestPercentage {
			low := pct
			stats.LowestPercentage = &low
		}
	}
	if stats.GradedCount > 0 {
		avg := float64(sum) / float64(stats.GradedCount)
		stats.AveragePercentage = &avg
	}
	return stats, nil
}

func (s *AnswerScriptService) publish(kind model.FeedEventType, script *model.AnswerScript) {
	if s.events == nil {
		return
	}
	s.events.Enqueue(model.FeedEvent{
		Type:           kind,
		TemplateID:     script.TemplateID,
		AnswerScriptID: script.ID,
		RespondentName: script.RespondentName,
		Score:          script.Summary.Display(),
		IsPreview:      script.IsPreview,
		At:             s.now().UTC(),
	})
}

