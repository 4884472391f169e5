package quiz

import (
	"context"
	"encoding/json"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"royalgate-platform/pkg/db/option"
	"royalgate-platform/pkg/errutil"
	"royalgate-platform/pkg/repository"
	"royalgate-platform/services/catalog"
	"royalgate-platform/services/ledger"
	"royalgate-platform/services/member"
	"royalgate-platform/services/quota"
)

var (
	ErrNoQuestions      = errutil.New(errutil.StatusNotFound, "no quiz questions loaded")
	ErrStaleQuestion    = errutil.New(errutil.StatusConflict, "answer does not match the current question")
	ErrChoiceOutOfRange = errutil.New(errutil.StatusBadRequest, "choice is out of range")
)

// Service walks each member through the question rotation. A right answer
// earns the question's reward through the daily quiz cap; a wrong answer
// debits the same amount. The cursor advances on every graded answer.
type Service struct {
	db        *gorm.DB
	node      *snowflake.Node
	questions repository.Repository[Question]
	members   repository.Repository[member.Member]
	ledger    *ledger.Service
	quota     *quota.Service
}

type ServiceParams struct {
	fx.In
	DB     *gorm.DB
	Node   *snowflake.Node
	Ledger *ledger.Service
	Quota  *quota.Service
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:        p.DB,
		node:      p.Node,
		questions: repository.ProvideStore[Question](p.DB),
		members:   repository.ProvideStore[member.Member](p.DB),
		ledger:    p.Ledger,
		quota:     p.Quota,
	}
}

func (s *Service) activeMember(ctx context.Context, memberID string) (*member.Member, error) {
	m, err := s.members.FindOne(ctx, &member.Member{ID: memberID})
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, member.ErrNotFound
	}
	if !m.Tier.Earning() {
		return nil, quota.ErrActivationRequired
	}
	return m, nil
}

func (s *Service) rotation(ctx context.Context) ([]*Question, error) {
	questions, err := s.questions.Find(ctx, &Question{}, option.WithSortBy(option.QuerySortBy{
		SortBy:  "position",
		OrderBy: "asc",
	}))
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	return questions, nil
}

// View is a question as shown to the member, with the answer key withheld.
type View struct {
	ID      string   `json:"id"`
	Section string   `json:"section"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Reward  int64    `json:"reward"`
	Number  int      `json:"number"`
	Total   int      `json:"total"`
}

func view(q *Question, number, total int) (*View, error) {
	var opts []string
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil, err
	}
	return &View{
		ID:      q.ID,
		Section: q.Section,
		Prompt:  q.Prompt,
		Options: opts,
		Reward:  q.Reward,
		Number:  number,
		Total:   total,
	}, nil
}

// Current returns the question at the member's cursor. The rotation wraps,
// so the cursor is taken modulo the rotation length.
func (s *Service) Current(ctx context.Context, memberID string) (*View, error) {
	m, err := s.activeMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	questions, err := s.rotation(ctx)
	if err != nil {
		return nil, err
	}
	idx := m.QuizIndex % len(questions)
	return view(questions[idx], idx+1, len(questions))
}

// Result grades one answer.
type Result struct {
	Correct      bool  `json:"correct"`
	CorrectIndex int   `json:"correct_index"`
	Amount       int64 `json:"amount"`
	Next         *View `json:"next,omitempty"`
}

// Answer grades the member's choice against the current question. Right
// answers are paid through the daily quiz cap; a capped attempt is rejected
// before grading, so nothing moves. Wrong answers debit the reward amount
// and still advance the cursor.
func (s *Service) Answer(ctx context.Context, memberID, questionID string, choice int) (*Result, error) {
	m, err := s.activeMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if err := s.quota.SyncEpoch(ctx, m); err != nil {
		return nil, err
	}
	if err := quota.CanEarn(m, catalog.Get(m.Tier), quota.ChannelQuiz); err != nil {
		return nil, err
	}

	questions, err := s.rotation(ctx)
	if err != nil {
		return nil, err
	}
	idx := m.QuizIndex % len(questions)
	q := questions[idx]
	if q.ID != questionID {
		return nil, ErrStaleQuestion
	}

	var opts []string
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil, err
	}
	if choice < 0 || choice >= len(opts) {
		return nil, ErrChoiceOutOfRange
	}

	result := &Result{
		Correct:      choice == q.CorrectIndex,
		CorrectIndex: q.CorrectIndex,
		Amount:       q.Reward,
	}

	if result.Correct {
		if _, err := s.quota.RecordEarn(ctx, memberID, quota.ChannelQuiz, q.Reward, "Quiz Reward"); err != nil {
			return nil, err
		}
		if err := s.members.Update(ctx, m.ID, map[string]any{"quiz_index": m.QuizIndex + 1}); err != nil {
			return nil, err
		}
	} else {
		err = s.db.Transaction(func(tx *gorm.DB) error {
			if _, err := s.ledger.WithTrx(tx).Debit(ctx, m.ID, q.Reward, "Quiz Penalty", ledger.StatusSuccess); err != nil {
				return err
			}
			return s.members.WithTrx(tx).Update(ctx, m.ID, map[string]any{"quiz_index": m.QuizIndex + 1})
		})
		if err != nil {
			return nil, err
		}
	}

	zap.L().Info("quiz answered",
		zap.String("member_id", m.ID),
		zap.String("question_id", q.ID),
		zap.Bool("correct", result.Correct),
	)

	m.QuizIndex++
	nextIdx := m.QuizIndex % len(questions)
	next, err := view(questions[nextIdx], nextIdx+1, len(questions))
	if err != nil {
		return nil, err
	}
	result.Next = next
	return result, nil
}

type AddQuestionParams struct {
	Section      string   `json:"section"`
	Prompt       string   `json:"prompt" binding:"required"`
	Options      []string `json:"options" binding:"required,min=2"`
	CorrectIndex int      `json:"correct_index"`
	Reward       int64    `json:"reward"`
}

// AddQuestion appends a question to the rotation. Reward defaults to the
// platform quiz reward when unset.
func (s *Service) AddQuestion(ctx context.Context, p AddQuestionParams) (*Question, error) {
	if p.CorrectIndex < 0 || p.CorrectIndex >= len(p.Options) {
		return nil, ErrChoiceOutOfRange
	}
	reward := p.Reward
	if reward <= 0 {
		reward = catalog.QuizReward
	}

	opts, err := json.Marshal(p.Options)
	if err != nil {
		return nil, err
	}

	count, err := s.questions.Count(ctx, &Question{})
	if err != nil {
		return nil, err
	}

	q := &Question{
		ID:           s.node.Generate().String(),
		Section:      p.Section,
		Position:     int(count) + 1,
		Prompt:       p.Prompt,
		Options:      datatypes.JSON(opts),
		CorrectIndex: p.CorrectIndex,
		Reward:       reward,
	}
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}
