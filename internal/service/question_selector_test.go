package service

import (
	"sort"
	"testing"

	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeBank(n int) []model.Question {
	bank := make([]model.Question, n)
	for i := range bank {
		bank[i] = model.Question{
			BaseModel:    model.BaseModel{ID: uint(i + 1)},
			DisplayOrder: i + 1,
		}
	}
	return bank
}

func intPtr(n int) *int { return &n }

func questionIDs(qs []model.Question) []uint {
	ids := make([]uint, len(qs))
	for i := range qs {
		ids[i] = qs[i].ID
	}
	return ids
}

func TestSelectBankSampling(t *testing.T) {
	bank := makeBank(10)
	form := &model.Form{
		UseQuestionBank: true,
		QuestionsToShow: intPtr(4),
	}

	for seed := int64(0); seed < 20; seed++ {
		selector := NewSeededQuestionSelector(seed)
		selected := selector.Select(form, bank)

		require.Len(t, selected, 4, "seed %d", seed)

		// No duplicates.
		seen := make(map[uint]bool)
		for _, q := range selected {
			assert.False(t, seen[q.ID], "seed %d repeated question %d", seed, q.ID)
			seen[q.ID] = true
		}

		// Subset retains the stored display order.
		assert.True(t, sort.SliceIsSorted(selected, func(i, j int) bool {
			return selected[i].DisplayOrder < selected[j].DisplayOrder
		}), "seed %d", seed)
	}
}

func TestSelectBankSamplingVariesAcrossDraws(t *testing.T) {
	bank := makeBank(10)
	form := &model.Form{UseQuestionBank: true, QuestionsToShow: intPtr(4)}
	selector := NewSeededQuestionSelector(1)

	first := questionIDs(selector.Select(form, bank))
	varied := false
	for i := 0; i < 10; i++ {
		next := questionIDs(selector.Select(form, bank))
		if !assert.ObjectsAreEqual(first, next) {
			varied = true
			break
		}
	}
	assert.True(t, varied, "10 draws of 4 from 10 should not all be identical")
}

func TestSelectQuestionsToShowCappedAtAvailable(t *testing.T) {
	bank := makeBank(3)
	form := &model.Form{UseQuestionBank: true, QuestionsToShow: intPtr(8)}

	selected := NewSeededQuestionSelector(1).Select(form, bank)
	assert.Len(t, selected, 3)
	assert.Equal(t, []uint{1, 2, 3}, questionIDs(selected))
}

func TestSelectShuffleWithoutBankPreservesSet(t *testing.T) {
	bank := makeBank(6)
	form := &model.Form{ShuffleQuestions: true}

	selected := NewSeededQuestionSelector(7).Select(form, bank)
	require.Len(t, selected, 6)

	ids := questionIDs(selected)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	assert.Equal(t, []uint{1, 2, 3, 4, 5, 6}, ids)
}

func TestSelectDoesNotMutateInput(t *testing.T) {
	bank := makeBank(6)
	form := &model.Form{ShuffleQuestions: true}

	NewSeededQuestionSelector(3).Select(form, bank)
	assert.Equal(t, []uint{1, 2, 3, 4, 5, 6}, questionIDs(bank))
}

func TestSelectPlainFormKeepsOrder(t *testing.T) {
	bank := makeBank(5)
	form := &model.Form{}

	selected := NewSeededQuestionSelector(3).Select(form, bank)
	assert.Equal(t, []uint{1, 2, 3, 4, 5}, questionIDs(selected))
}
