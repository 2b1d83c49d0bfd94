package service

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/model"
)

// QuestionSelector decides which questions a respondent is graded against.
// With bank sampling the shuffle selects WHICH questions appear; the stored
// display order still governs how they are shown, so the retained subset is
// re-sorted before returning.
type QuestionSelector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewQuestionSelector() *QuestionSelector {
	return &QuestionSelector{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededQuestionSelector pins the permutation for tests.
func NewSeededQuestionSelector(seed int64) *QuestionSelector {
	return &QuestionSelector{rng: rand.New(rand.NewSource(seed))}
}

func (s *QuestionSelector) Select(form *model.Form, questions []model.Question) []model.Question {
	selected := make([]model.Question, len(questions))
	copy(selected, questions)

	if form.UseQuestionBank && form.QuestionsToShow != nil && *form.QuestionsToShow < len(selected) {
		// questions_to_show > available is an authoring-time error; cap
		// instead of failing the respondent's submission.
		n := *form.QuestionsToShow
		if n < 0 {
			n = 0
		}
		s.shuffle(selected)
		selected = selected[:n]
		sort.Slice(selected, func(i, j int) bool {
			if selected[i].DisplayOrder != selected[j].DisplayOrder {
				return selected[i].DisplayOrder < selected[j].DisplayOrder
			}
			return selected[i].ID < selected[j].ID
		})
		return selected
	}

	if form.ShuffleQuestions {
		s.shuffle(selected)
	}
	return selected
}

func (s *QuestionSelector) shuffle(qs []model.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(len(qs), func(i, j int) {
		qs[i], qs[j] = qs[j], qs[i]
	})
}
