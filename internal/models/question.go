package models

// Question types. "section" is a container; every other type is a leaf.
const (
	TypeMultipleChoiceSingle = "multiple-choice-single"
	TypeMultipleChoiceMulti  = "multiple-choice-multi"
	TypeReorderSentence      = "reorder-sentence"
	TypeMatchOptions         = "match-options"
	TypeFillInTheBlanks      = "fill-in-the-blanks"
	TypeWrittenQuestion      = "written-question"
	TypeAudioResponse        = "audio-response"
	TypeRepeatSentence       = "repeat-sentence"
	TypeReadOutloud          = "read-outloud"
	TypeSection              = "section"
)

type ChoiceOption struct {
	ID      string `bson:"id" json:"id"`
	Text    string `bson:"text" json:"text"`
	Correct bool   `bson:"correct" json:"correct"`
}

type SentenceItem struct {
	Text string `bson:"text" json:"text"`
}

type Blank struct {
	Text string `bson:"text" json:"text"`
}

// FillBlanksGroup is one numbered passage with its ordered blanks.
type FillBlanksGroup struct {
	Text   string  `bson:"text" json:"text"`
	Blanks []Blank `bson:"blanks" json:"blanks"`
}

// MatchPair carries a shared id: a student pairing is correct when the
// left and right options they joined belong to the same pair id.
type MatchPair struct {
	ID          string `bson:"id" json:"id"`
	LeftOption  string `bson:"leftOption" json:"leftOption"`
	RightOption string `bson:"rightOption" json:"rightOption"`
}

// MediaPrompt is an attachment shown alongside the written prompt.
// Only "audio" is supported today; image prompts are deferred.
type MediaPrompt struct {
	URL  string `bson:"url" json:"url"`
	Type string `bson:"type" json:"type"`
}

// Mark holds the per-skill scores (0-4 scale) plus the aggregate totalMark.
type Mark struct {
	VocabMark         *int     `bson:"vocabMark,omitempty" json:"vocabMark,omitempty"`
	GrammarMark       *int     `bson:"grammarMark,omitempty" json:"grammarMark,omitempty"`
	ContentMark       *int     `bson:"contentMark,omitempty" json:"contentMark,omitempty"`
	FluencyMark       *int     `bson:"fluencyMark,omitempty" json:"fluencyMark,omitempty"`
	PronunciationMark *int     `bson:"pronunciationMark,omitempty" json:"pronunciationMark,omitempty"`
	AccuracyMark      *int     `bson:"accuracyMark,omitempty" json:"accuracyMark,omitempty"`
	TotalMark         *float64 `bson:"totalMark,omitempty" json:"totalMark,omitempty"`
}

type Feedback struct {
	Text    string `bson:"text" json:"text"`
	Teacher string `bson:"teacher,omitempty" json:"teacher,omitempty"`
}

// StudentResponse is one student's answer to one question. At most one
// entry exists per student per question; the feedback step mutates the
// existing entry rather than appending a second one.
type StudentResponse struct {
	StudentID string    `bson:"studentId" json:"studentId"`
	Response  string    `bson:"response" json:"response"`
	Mark      *Mark     `bson:"mark,omitempty" json:"mark,omitempty"`
	Feedback  *Feedback `bson:"feedback,omitempty" json:"feedback,omitempty"`
}

type Question struct {
	ID             string  `bson:"_id,omitempty" json:"_id"`
	Name           string  `bson:"name" json:"name"`
	Type           string  `bson:"type" json:"type"`
	WrittenPrompt  string  `bson:"writtenPrompt" json:"writtenPrompt"`
	PartialMarking bool    `bson:"partialMarking" json:"partialMarking"`
	CaseSensitive  bool    `bson:"caseSensitive" json:"caseSensitive"`
	TotalPointsMin float64 `bson:"totalPointsMin" json:"totalPointsMin"`
	TotalPointsMax float64 `bson:"totalPointsMax" json:"totalPointsMax"`

	MultipleChoiceQuestionList  []ChoiceOption    `bson:"multipleChoiceQuestionList,omitempty" json:"multipleChoiceQuestionList,omitempty"`
	ReorderSentenceQuestionList []SentenceItem    `bson:"reorderSentenceQuestionList,omitempty" json:"reorderSentenceQuestionList,omitempty"`
	FillBlanksQuestionList      []FillBlanksGroup `bson:"fillBlanksQuestionList,omitempty" json:"fillBlanksQuestionList,omitempty"`
	MatchOptionQuestionList     []MatchPair       `bson:"matchOptionQuestionList,omitempty" json:"matchOptionQuestionList,omitempty"`

	Prompt1 *MediaPrompt `bson:"prompt1,omitempty" json:"prompt1,omitempty"`
	Prompt2 *MediaPrompt `bson:"prompt2,omitempty" json:"prompt2,omitempty"`
	Prompt3 *MediaPrompt `bson:"prompt3,omitempty" json:"prompt3,omitempty"`

	// SubQuestions is populated only for type "section". Sections never nest.
	SubQuestions []string `bson:"subQuestions,omitempty" json:"subQuestions,omitempty"`
	Parent       string   `bson:"parent,omitempty" json:"parent,omitempty"`

	StudentResponse []StudentResponse `bson:"studentResponse" json:"studentResponse"`
}

func (q *Question) IsSection() bool {
	return q.Type == TypeSection
}

// RequiresAudioUpload reports whether the student's raw response is a
// recorded audio payload that must be moved to object storage at submit time.
func (q *Question) RequiresAudioUpload() bool {
	switch q.Type {
	case TypeAudioResponse, TypeRepeatSentence, TypeReadOutloud:
		return true
	}
	return false
}

// AutoScorable reports whether the question has a single objectively
// correct answer that the scoring engine can grade without external calls.
func (q *Question) AutoScorable() bool {
	switch q.Type {
	case TypeMultipleChoiceSingle, TypeMultipleChoiceMulti,
		TypeReorderSentence, TypeMatchOptions, TypeFillInTheBlanks:
		return true
	}
	return false
}

// ResponseFor returns the student's response entry, or nil if they have none.
func (q *Question) ResponseFor(studentID string) *StudentResponse {
	for i := range q.StudentResponse {
		if q.StudentResponse[i].StudentID == studentID {
			return &q.StudentResponse[i]
		}
	}
	return nil
}
