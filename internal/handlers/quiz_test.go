package handlers

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuizMarkup(t *testing.T) {
	h := &Handlers{}
	for q := range quizQuestions {
		markup := h.quizMarkup(q)
		// One row per option plus the menu row.
		require.Len(t, markup.InlineKeyboard, len(quizQuestions[q].Options)+1)
		for i, row := range markup.InlineKeyboard[:len(quizQuestions[q].Options)] {
			assert.Equal(t, quizQuestions[q].Options[i], row[0].Text)
			assert.Equal(t, cbQuizAns, row[0].Unique)
			assert.Equal(t, fmt.Sprintf("%d:%d", q, i), row[0].Data)
		}
	}
	menu := h.quizMarkup(0).InlineKeyboard[len(quizQuestions[0].Options)][0]
	assert.Equal(t, cbMenu, menu.Unique)
}

func TestQuizVerdictThresholds(t *testing.T) {
	cases := []struct {
		score int64
		want  string
	}{
		{0, quizVerdicts[0]},
		{2, quizVerdicts[0]},
		{3, quizVerdicts[1]},
		{4, quizVerdicts[1]},
		{5, quizVerdicts[2]},
		{6, quizVerdicts[2]},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, quizVerdict(tc.score), "score %d", tc.score)
	}
}
