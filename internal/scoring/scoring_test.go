package scoring

import (
	"errors"
	"testing"

	"exam-service/internal/models"
)

func mcSingle() *models.Question {
	return &models.Question{
		Type:           models.TypeMultipleChoiceSingle,
		TotalPointsMin: 0,
		TotalPointsMax: 5,
		MultipleChoiceQuestionList: []models.ChoiceOption{
			{ID: "a", Text: "go", Correct: false},
			{ID: "b", Text: "went", Correct: true},
			{ID: "c", Text: "gone", Correct: false},
		},
	}
}

func TestMultiChoiceSingle(t *testing.T) {
	q := mcSingle()

	mark, err := Score(q, "b")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if mark != 5 {
		t.Errorf("correct option: got %v, want 5", mark)
	}

	for _, wrong := range []string{"a", "c", "zzz"} {
		mark, err = Score(q, wrong)
		if err != nil {
			t.Fatalf("Score(%q): %v", wrong, err)
		}
		if mark != 0 {
			t.Errorf("wrong option %q: got %v, want 0", wrong, mark)
		}
	}
}

func TestMultiChoiceSingleJSONEncoded(t *testing.T) {
	q := mcSingle()
	mark, err := Score(q, `"b"`)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if mark != 5 {
		t.Errorf("json-encoded correct option: got %v, want 5", mark)
	}
}

func TestMultiChoiceMultiExact(t *testing.T) {
	q := &models.Question{
		Type:           models.TypeMultipleChoiceMulti,
		TotalPointsMin: 1,
		TotalPointsMax: 10,
		MultipleChoiceQuestionList: []models.ChoiceOption{
			{ID: "a", Correct: true},
			{ID: "b", Correct: true},
			{ID: "c", Correct: false},
			{ID: "d", Correct: false},
		},
	}

	tests := []struct {
		name     string
		response string
		want     float64
	}{
		{"exact match", `["a","b"]`, 10},
		{"exact match reordered", `["b","a"]`, 10},
		{"missing one", `["a"]`, 1},
		{"extra wrong", `["a","b","c"]`, 1},
		{"all wrong", `["c","d"]`, 1},
		{"empty", `[]`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mark, err := Score(q, tt.response)
			if err != nil {
				t.Fatalf("Score: %v", err)
			}
			if mark != tt.want {
				t.Errorf("got %v, want %v", mark, tt.want)
			}
		})
	}
}

func TestMultiChoiceMultiPartial(t *testing.T) {
	q := &models.Question{
		Type:           models.TypeMultipleChoiceMulti,
		PartialMarking: true,
		TotalPointsMin: 0,
		TotalPointsMax: 10,
		MultipleChoiceQuestionList: []models.ChoiceOption{
			{ID: "a", Correct: true},
			{ID: "b", Correct: true},
			{ID: "c", Correct: false},
		},
	}

	tests := []struct {
		name     string
		response string
		want     float64
	}{
		{"both correct", `["a","b"]`, 10},
		{"one correct", `["a"]`, 5},
		{"one correct one wrong cancels", `["a","c"]`, 0},
		{"only wrong floors at min", `["c"]`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mark, err := Score(q, tt.response)
			if err != nil {
				t.Fatalf("Score: %v", err)
			}
			if mark != tt.want {
				t.Errorf("got %v, want %v", mark, tt.want)
			}
		})
	}
}

func reorderQuestion(partial bool) *models.Question {
	return &models.Question{
		Type:           models.TypeReorderSentence,
		PartialMarking: partial,
		TotalPointsMin: 0,
		TotalPointsMax: 8,
		ReorderSentenceQuestionList: []models.SentenceItem{
			{Text: "I"}, {Text: "went"}, {Text: "home"}, {Text: "early"},
		},
	}
}

func TestReorderSentencePartial(t *testing.T) {
	q := reorderQuestion(true)

	// 2 of 4 positions match: 8 * 2/4 = 4
	mark, err := Score(q, `["I","went","early","home"]`)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if mark != 4 {
		t.Errorf("got %v, want 4", mark)
	}

	mark, err = Score(q, `["I","went","home","early"]`)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if mark != 8 {
		t.Errorf("full match: got %v, want 8", mark)
	}
}

func TestReorderSentenceBinary(t *testing.T) {
	q := reorderQuestion(false)
	mark, err := Score(q, `["I","went","early","home"]`)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if mark != 0 {
		t.Errorf("partial order without partial marking: got %v, want 0", mark)
	}
}

func TestReorderSentenceLengthMismatch(t *testing.T) {
	q := reorderQuestion(true)
	if _, err := Score(q, `["I","went"]`); err == nil {
		t.Error("length mismatch should be an error, not a zero score")
	}
}

func TestMatchOptions(t *testing.T) {
	q := &models.Question{
		Type:           models.TypeMatchOptions,
		PartialMarking: true,
		TotalPointsMin: 0,
		TotalPointsMax: 6,
		MatchOptionQuestionList: []models.MatchPair{
			{ID: "1", LeftOption: "cat", RightOption: "chat"},
			{ID: "2", LeftOption: "dog", RightOption: "chien"},
			{ID: "3", LeftOption: "bird", RightOption: "oiseau"},
		},
	}

	// 2 of 3 pairings correct: 6 * 2/3 = 4
	response := `[
		{"leftOption":{"id":"1"},"rightOption":{"id":"1"}},
		{"leftOption":{"id":"2"},"rightOption":{"id":"3"}},
		{"leftOption":{"id":"3"},"rightOption":{"id":"3"}}
	]`
	mark, err := Score(q, response)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if mark != 4 {
		t.Errorf("got %v, want 4", mark)
	}

	q.PartialMarking = false
	mark, err = Score(q, response)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if mark != 0 {
		t.Errorf("binary with one wrong pair: got %v, want 0", mark)
	}
}

func fillBlanksQuestion() *models.Question {
	return &models.Question{
		Type:           models.TypeFillInTheBlanks,
		PartialMarking: true,
		CaseSensitive:  false,
		TotalPointsMin: 0,
		TotalPointsMax: 10,
		FillBlanksQuestionList: []models.FillBlanksGroup{
			{Text: "1.__ is the capital of 2.__", Blanks: []models.Blank{{Text: "Paris"}, {Text: "France"}}},
		},
	}
}

func TestFillBlanksFullMatch(t *testing.T) {
	q := fillBlanksQuestion()
	mark, err := Score(q, `[["paris","france"]]`)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if mark != 10 {
		t.Errorf("got %v, want 10", mark)
	}
}

func TestFillBlanksHalfMatch(t *testing.T) {
	q := fillBlanksQuestion()
	mark, err := Score(q, `[["paris","germany"]]`)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if mark != 5 {
		t.Errorf("got %v, want 5", mark)
	}
}

func TestFillBlanksCaseInsensitiveEqualsExact(t *testing.T) {
	q := fillBlanksQuestion()

	exact, err := Score(q, `[["Paris","France"]]`)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	cased, err := Score(q, `[["pArIs","fRaNcE"]]`)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if exact != cased {
		t.Errorf("case variants should score identically: %v vs %v", exact, cased)
	}
}

func TestFillBlanksCaseSensitive(t *testing.T) {
	q := fillBlanksQuestion()
	q.CaseSensitive = true
	mark, err := Score(q, `[["paris","France"]]`)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if mark != 5 {
		t.Errorf("wrong case on one blank: got %v, want 5", mark)
	}
}

func TestFillBlanksTrimsWhitespace(t *testing.T) {
	q := fillBlanksQuestion()
	mark, err := Score(q, `[[" paris ","france "]]`)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if mark != 10 {
		t.Errorf("got %v, want 10", mark)
	}
}

func TestNotAutoScorableTypes(t *testing.T) {
	for _, typ := range []string{
		models.TypeWrittenQuestion,
		models.TypeAudioResponse,
		models.TypeRepeatSentence,
		models.TypeReadOutloud,
		models.TypeSection,
	} {
		q := &models.Question{Type: typ}
		if _, err := Score(q, "anything"); !errors.Is(err, ErrNotAutoScorable) {
			t.Errorf("type %s: got %v, want ErrNotAutoScorable", typ, err)
		}
	}
}

func TestBinaryModeUsesMinForPartialCredit(t *testing.T) {
	q := fillBlanksQuestion()
	q.PartialMarking = false
	q.TotalPointsMin = 2

	mark, err := Score(q, `[["paris","germany"]]`)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if mark != 2 {
		t.Errorf("got %v, want TotalPointsMin 2", mark)
	}
}
