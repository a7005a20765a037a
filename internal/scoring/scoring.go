package scoring

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"exam-service/internal/models"
)

// ErrNotAutoScorable is returned for question types without a single
// objectively correct answer (written, audio, repeat-sentence, read-outloud,
// section). Their mark stays nil pending the AI feedback pipeline or manual
// teacher entry.
var ErrNotAutoScorable = errors.New("question type is not auto-scorable")

// Score computes the totalMark for a student's raw response against the
// question's answer key. The response is the wire format the client
// submits: a JSON-encoded list for list-shaped types, a plain option id
// for single-choice.
//
// Shared policy: without partialMarking the student receives
// TotalPointsMax for a fully correct response and TotalPointsMin
// otherwise. With partialMarking a raw per-item score is rescaled via
// TotalPointsMax / rawTotal * raw, flooring at TotalPointsMin when the
// raw score is not positive.
func Score(q *models.Question, response string) (float64, error) {
	switch q.Type {
	case models.TypeMultipleChoiceSingle:
		return scoreMultiChoiceSingle(q, response), nil
	case models.TypeMultipleChoiceMulti:
		return scoreMultiChoiceMulti(q, response)
	case models.TypeReorderSentence:
		return scoreReorderSentence(q, response)
	case models.TypeMatchOptions:
		return scoreMatchOptions(q, response)
	case models.TypeFillInTheBlanks:
		return scoreFillBlanks(q, response)
	default:
		return 0, ErrNotAutoScorable
	}
}

func scoreMultiChoiceSingle(q *models.Question, response string) float64 {
	selected := decodeSingleID(response)
	for _, opt := range q.MultipleChoiceQuestionList {
		if opt.Correct {
			if opt.ID == selected {
				return q.TotalPointsMax
			}
			return q.TotalPointsMin
		}
	}
	return q.TotalPointsMin
}

func scoreMultiChoiceMulti(q *models.Question, response string) (float64, error) {
	var selected []string
	if err := json.Unmarshal([]byte(response), &selected); err != nil {
		return 0, fmt.Errorf("decode multi-choice response: %w", err)
	}

	correct := make(map[string]bool)
	for _, opt := range q.MultipleChoiceQuestionList {
		if opt.Correct {
			correct[opt.ID] = true
		}
	}

	if !q.PartialMarking {
		if len(selected) != len(correct) {
			return q.TotalPointsMin, nil
		}
		for _, id := range selected {
			if !correct[id] {
				return q.TotalPointsMin, nil
			}
		}
		return q.TotalPointsMax, nil
	}

	raw := 0.0
	for _, id := range selected {
		if correct[id] {
			raw++
		} else {
			raw--
		}
	}
	return scale(q, raw, float64(len(correct))), nil
}

func scoreReorderSentence(q *models.Question, response string) (float64, error) {
	var submitted []string
	if err := json.Unmarshal([]byte(response), &submitted); err != nil {
		return 0, fmt.Errorf("decode reorder response: %w", err)
	}
	canonical := q.ReorderSentenceQuestionList
	if len(submitted) != len(canonical) {
		return 0, fmt.Errorf("reorder response has %d items, expected %d", len(submitted), len(canonical))
	}

	matches := 0.0
	for i, item := range submitted {
		if item == canonical[i].Text {
			matches++
		}
	}

	if !q.PartialMarking {
		if int(matches) == len(canonical) {
			return q.TotalPointsMax, nil
		}
		return q.TotalPointsMin, nil
	}
	return scale(q, matches, float64(len(canonical))), nil
}

// matchedPair is the submitted pairing shape: the student joins a left
// option to a right option, each carrying the id of the pair it belongs to.
type matchedPair struct {
	LeftOption  struct {
		ID string `json:"id"`
	} `json:"leftOption"`
	RightOption struct {
		ID string `json:"id"`
	} `json:"rightOption"`
}

func scoreMatchOptions(q *models.Question, response string) (float64, error) {
	var pairs []matchedPair
	if err := json.Unmarshal([]byte(response), &pairs); err != nil {
		return 0, fmt.Errorf("decode match-options response: %w", err)
	}

	total := len(q.MatchOptionQuestionList)
	if total == 0 {
		total = len(pairs)
	}

	matches := 0.0
	for _, p := range pairs {
		if p.LeftOption.ID != "" && p.LeftOption.ID == p.RightOption.ID {
			matches++
		}
	}

	if !q.PartialMarking {
		if int(matches) == total {
			return q.TotalPointsMax, nil
		}
		return q.TotalPointsMin, nil
	}
	return scale(q, matches, float64(total)), nil
}

func scoreFillBlanks(q *models.Question, response string) (float64, error) {
	var groups [][]string
	if err := json.Unmarshal([]byte(response), &groups); err != nil {
		return 0, fmt.Errorf("decode fill-blanks response: %w", err)
	}

	var submitted []string
	for _, g := range groups {
		submitted = append(submitted, g...)
	}
	var correct []string
	for _, g := range q.FillBlanksQuestionList {
		for _, b := range g.Blanks {
			correct = append(correct, b.Text)
		}
	}

	total := len(correct)
	if len(submitted) < total {
		total = len(submitted)
	}

	matches := 0.0
	for i := 0; i < total; i++ {
		if normalizeBlank(submitted[i], q.CaseSensitive) == normalizeBlank(correct[i], q.CaseSensitive) {
			matches++
		}
	}

	if !q.PartialMarking {
		if len(submitted) == len(correct) && int(matches) == len(correct) {
			return q.TotalPointsMax, nil
		}
		return q.TotalPointsMin, nil
	}
	return scale(q, matches, float64(total)), nil
}

func normalizeBlank(s string, caseSensitive bool) string {
	s = strings.TrimSpace(s)
	if !caseSensitive {
		s = strings.ToLower(s)
	}
	return s
}

// decodeSingleID accepts the selected option id either as a plain string
// or JSON-encoded ("\"abc\"" or ["abc"]).
func decodeSingleID(response string) string {
	var s string
	if err := json.Unmarshal([]byte(response), &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal([]byte(response), &list); err == nil && len(list) == 1 {
		return list[0]
	}
	return response
}

// scale rescales a raw per-item score into the question's point range.
// A non-positive raw score floors at TotalPointsMin.
func scale(q *models.Question, raw, rawTotal float64) float64 {
	if raw <= 0 || rawTotal <= 0 {
		return q.TotalPointsMin
	}
	return q.TotalPointsMax / rawTotal * raw
}
