package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"exam-service/internal/models"
)

// Transcriber turns a spoken-audio URL into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioURL string) (string, error)
}

// Compositor assembles grading prompts per question type. Media prompt
// attachments of type "audio" are transcribed and inlined; a failed
// attachment transcription omits that attachment's contribution rather
// than aborting. Image attachments are not supported yet.
type Compositor struct {
	transcriber Transcriber
}

func NewCompositor(t Transcriber) *Compositor {
	return &Compositor{transcriber: t}
}

const markingScheme = `For reference, you can use the following marking scheme:
0 = a1 level (beginner English level),
1 = a2 level (lower-intermediate English level),
2 = b1 level (intermediate English level),
3 = b2 level (upper intermediate English level),
4 = c1 level or above (advanced or native speaker).

Please return whole numbers for the scores.`

const closedFeedbackInstructions = `Provide detailed feedback for the student. If they were correct, praise them and reiterate why it was correct (e.g. confirm the applicable English language rules etc.). If they were incorrect or partially correct, let them know what the correct response was and why, and consider why they may have chosen their response and explain why their response isn't correct (e.g. explain English language rules).

Provide suggestions in a single paragraph with detailed explanations of rules and examples where needed. Please limit your response to approximately 300 words (though you can use less if need be).

Return the feedback as an object. For example:
{
  "feedback": "Your detailed feedback here"
}`

// mediaPromptText transcribes an audio attachment into a prompt sentence.
// Returns "" when the attachment is absent, unsupported or untranscribable.
func (c *Compositor) mediaPromptText(ctx context.Context, mp *models.MediaPrompt) string {
	if mp == nil || mp.URL == "" || mp.Type != "audio" {
		return ""
	}
	transcript, err := c.transcriber.Transcribe(ctx, mp.URL)
	if err != nil || transcript == "" {
		return ""
	}
	return fmt.Sprintf("The student was also given the following audio file to accompany the written prompt (the following is a transcript of the audio file they were given): %s.", transcript)
}

func (c *Compositor) mediaPromptSection(ctx context.Context, media []*models.MediaPrompt) string {
	var parts []string
	for _, mp := range media {
		if text := c.mediaPromptText(ctx, mp); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "In addition, the student was also given the following media prompts (note audios have been converted to text):\n\n" + strings.Join(parts, "\n")
}

// WrittenQuestion builds the grading prompt for a free-text response.
func (c *Compositor) WrittenQuestion(ctx context.Context, prompt, text string, media ...*models.MediaPrompt) string {
	var sb strings.Builder
	sb.WriteString("You are an English teacher. Your student has been given the following prompt:\n\n")
	sb.WriteString(prompt + ".\n\n")
	if section := c.mediaPromptSection(ctx, media); section != "" {
		sb.WriteString(section + "\n\n")
	}
	sb.WriteString("This was the student's response:\n\n")
	sb.WriteString(`"` + text + `"` + "\n\n")
	sb.WriteString(`Provide detailed feedback on the following text:
1. Vocabulary and Spelling (vocabMark)
2. Grammar and Punctuation (grammarMark)
3. Content (contentMark) (i.e. how well they've understood and answered the prompt)

Provide suggestions in a single paragraph with detailed explanations of rules and examples where needed. Please limit your response to approximately 500 words (though if there are few mistakes, you can use less). If there are too many errors to address in 500 words, focus on the most important ones.

Finally, rate the text from 0-4 for each of the three categories (Vocabulary and Spelling, Grammar and Punctuation, Content).

Please return the feedback and mark in two separate objects. For example:

{
  "feedback": "Your detailed feedback here",
  "mark": {
    "vocabMark": 3,
    "grammarMark": 2,
    "contentMark": 3
  }
}

`)
	sb.WriteString(markingScheme)
	return sb.String()
}

// AudioQuestion transcribes the student's spoken response and builds the
// grading prompt. The transcript is the sole subject of grading, so a
// failed transcription aborts with an error.
func (c *Compositor) AudioQuestion(ctx context.Context, prompt, audioURL string, media ...*models.MediaPrompt) (string, error) {
	transcript, err := c.transcriber.Transcribe(ctx, audioURL)
	if err != nil {
		return "", fmt.Errorf("transcribe student response: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("You are an English teacher. Your student has been given the following prompt:\n\n")
	sb.WriteString(prompt + ".\n\n")
	if section := c.mediaPromptSection(ctx, media); section != "" {
		sb.WriteString(section + "\n\n")
	}
	sb.WriteString("This was the student's transcribed audio response:\n\n")
	sb.WriteString(`"` + transcript + `"` + "\n\n")
	sb.WriteString(`Provide detailed feedback on the following:
1. Vocabulary (vocabMark)
2. Grammar (grammarMark)
3. Content (contentMark) (i.e. how well they've understood and answered the prompt)
4. Fluency (fluencyMark)
5. Pronunciation (pronunciationMark)

Provide suggestions in a single paragraph with detailed explanations of rules and examples where needed. Please limit your response to approximately 500 words (though if there are few mistakes, you can use less). If there are too many errors to address in 500 words, focus on the most important ones.

Finally, rate the text from 0-4 for each of the 3 categories (Vocabulary, Grammar and Content). NOTE - because the transcript does not carry fluency or pronunciation information, just give fluencyMark and pronunciationMark a placeholder score of 4.

Return the feedback and mark in two separate objects. For example:
{
  "feedback": "Your detailed feedback here",
  "mark": {
    "vocabMark": 3,
    "grammarMark": 2,
    "contentMark": 3,
    "fluencyMark": 4,
    "pronunciationMark": 4
  }
}

`)
	sb.WriteString(markingScheme)
	return sb.String(), nil
}

// RepeatSentence builds the grading prompt for a repeat-the-audio task.
func (c *Compositor) RepeatSentence(ctx context.Context, prompt, audioURL string, media ...*models.MediaPrompt) (string, error) {
	transcript, err := c.transcriber.Transcribe(ctx, audioURL)
	if err != nil {
		return "", fmt.Errorf("transcribe student response: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("You are an English teacher. Your student has been given the following prompt:\n\n")
	sb.WriteString(prompt + ".\n\n")
	if section := c.mediaPromptSection(ctx, media); section != "" {
		sb.WriteString(section + "\n\n")
	}
	sb.WriteString("The student is required to listen to the audio prompt and repeat it, word for word.\n\n")
	sb.WriteString("This was the student's transcribed audio response:\n\n")
	sb.WriteString(`"` + transcript + `"` + "\n\n")
	sb.WriteString(repeatReadRubric)
	return sb.String(), nil
}

// ReadOutloud builds the grading prompt for a read-the-text-aloud task.
func (c *Compositor) ReadOutloud(ctx context.Context, prompt, audioURL string) (string, error) {
	transcript, err := c.transcriber.Transcribe(ctx, audioURL)
	if err != nil {
		return "", fmt.Errorf("transcribe student response: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("You are an English teacher. Your student is required to read the given text out loud, word for word. They will be marked on pronunciation, fluency and accuracy. Here is the text they have been given to read:\n\n")
	sb.WriteString(prompt + ".\n\n")
	sb.WriteString("This was the student's transcribed audio response:\n\n")
	sb.WriteString(`"` + transcript + `"` + "\n\n")
	sb.WriteString(repeatReadRubric)
	return sb.String(), nil
}

const repeatReadRubric = `Provide detailed feedback on the following:
1. Accuracy (accuracyMark) (i.e. how closely what the student said matches the prompt. Remember that they should repeat the prompt, word for word.)
2. Fluency (fluencyMark)
3. Pronunciation (pronunciationMark)

Provide suggestions in a single paragraph with detailed explanations of rules and examples where needed. Please limit your response to approximately 500 words (though if there are few mistakes, you can use less). If there are too many errors to address in 500 words, focus on the most important ones.

Finally, rate the text from 0-4 for each of the 3 categories (Accuracy, Fluency and Pronunciation). NOTE - because the transcript does not carry fluency or pronunciation information, just give fluencyMark and pronunciationMark a placeholder score of 4.

Return the feedback and mark in two separate objects. For example:
{
  "feedback": "Your detailed feedback here",
  "mark": {
    "accuracyMark": 3,
    "fluencyMark": 4,
    "pronunciationMark": 4
  }
}`

// MultiChoice builds the feedback prompt for a multiple-choice answer.
// The response is the JSON-encoded list of selected option ids; a bare
// option id is accepted too.
func (c *Compositor) MultiChoice(ctx context.Context, prompt, response string, options []models.ChoiceOption, media ...*models.MediaPrompt) string {
	var selectedIDs []string
	if err := json.Unmarshal([]byte(response), &selectedIDs); err != nil {
		selectedIDs = []string{response}
	}
	selected := make(map[string]bool, len(selectedIDs))
	for _, id := range selectedIDs {
		selected[id] = true
	}

	var all, correct, answers []string
	for i, opt := range options {
		numbered := fmt.Sprintf("%d) %s", i+1, opt.Text)
		all = append(all, numbered)
		if opt.Correct {
			correct = append(correct, numbered)
		}
		if selected[opt.ID] {
			answers = append(answers, opt.Text)
		}
	}

	var sb strings.Builder
	sb.WriteString("You are an English teacher. Your student has been given a multiple-choice question. Here is the prompt:\n\n")
	sb.WriteString(prompt + ".\n\n")
	sb.WriteString("Here are the options that they were given:\n\n")
	sb.WriteString(strings.Join(all, ", ") + "\n\n")
	sb.WriteString("Here are the correct answer(s):\n\n")
	sb.WriteString(strings.Join(correct, ", ") + "\n\n")
	sb.WriteString("Here are the student's answer(s):\n\n")
	sb.WriteString(`"` + strings.Join(answers, ", ") + `"` + "\n\n")
	sb.WriteString(closedFeedbackInstructions)
	if section := c.mediaPromptSection(ctx, media); section != "" {
		sb.WriteString("\n\n" + section)
	}
	return sb.String()
}

// ReorderSentence builds the feedback prompt for a reordering answer.
func (c *Compositor) ReorderSentence(ctx context.Context, prompt, response string, canonical []models.SentenceItem, media ...*models.MediaPrompt) (string, error) {
	var submitted []string
	if err := json.Unmarshal([]byte(response), &submitted); err != nil {
		return "", fmt.Errorf("decode reorder response: %w", err)
	}

	var correctOrder, studentOrder []string
	for i, item := range canonical {
		correctOrder = append(correctOrder, fmt.Sprintf("%d. %s", i+1, item.Text))
	}
	for i, item := range submitted {
		studentOrder = append(studentOrder, fmt.Sprintf("%d. %s", i+1, item))
	}

	var sb strings.Builder
	sb.WriteString("You are an English teacher. Your student has been given a series of sentences/words/paragraphs and they need to put them into the correct order. Here is the prompt:\n\n")
	sb.WriteString(prompt + ".\n\n")
	sb.WriteString("Here are the options that they were given, in the correct order:\n\n")
	sb.WriteString(strings.Join(correctOrder, " ") + "\n\n")
	sb.WriteString("Here are the options in the order the student placed them:\n\n")
	sb.WriteString(`"` + strings.Join(studentOrder, " ") + `"` + "\n\n")
	sb.WriteString(closedFeedbackInstructions)
	if section := c.mediaPromptSection(ctx, media); section != "" {
		sb.WriteString("\n\n" + section)
	}
	return sb.String(), nil
}

// MatchOptions builds the feedback prompt for a pair-matching answer. The
// response is inlined as submitted; the model checks pair ids itself.
func (c *Compositor) MatchOptions(ctx context.Context, prompt, response string, media ...*models.MediaPrompt) string {
	var sb strings.Builder
	sb.WriteString("You are an English teacher. Your student has been given a list of words/sentences in a left column (leftOptions) and a list of matching words/sentences on a right column (rightOptions). They were tasked with matching the rightOptions to the leftOptions.\n\n")
	sb.WriteString("They were given this prompt for context: " + prompt + ".\n\n")
	sb.WriteString("Here are how they matched the options:\n\n")
	sb.WriteString(response + ".\n\n")
	sb.WriteString("If the id of the leftOption matches the id of the rightOption, they got the pairing correct. If the ids do not match, however, they got the pairing incorrect.\n\n")
	sb.WriteString(closedFeedbackInstructions)
	if section := c.mediaPromptSection(ctx, media); section != "" {
		sb.WriteString("\n\n" + section)
	}
	return sb.String()
}

// FillBlanks builds the feedback prompt for a fill-in-the-blanks answer.
// The response is the JSON-encoded nested answer list, one inner list per
// blank group.
func (c *Compositor) FillBlanks(ctx context.Context, prompt, response string, groups []models.FillBlanksGroup, caseSensitive bool, media ...*models.MediaPrompt) (string, error) {
	var submitted [][]string
	if err := json.Unmarshal([]byte(response), &submitted); err != nil {
		return "", fmt.Errorf("decode fill-blanks response: %w", err)
	}

	var questionTexts, answerTexts, studentTexts []string
	for i, g := range groups {
		questionTexts = append(questionTexts, fmt.Sprintf("QUESTION#%d: %s", i+1, g.Text))
		var blanks []string
		for j, b := range g.Blanks {
			blanks = append(blanks, fmt.Sprintf("%d. %s", j+1, b.Text))
		}
		answerTexts = append(answerTexts, fmt.Sprintf("QUESTION#%d CORRECT ANSWERS: %s", i+1, strings.Join(blanks, ", ")))
	}
	for i, group := range submitted {
		var items []string
		for j, item := range group {
			items = append(items, fmt.Sprintf("%d. %s", j+1, item))
		}
		studentTexts = append(studentTexts, fmt.Sprintf("QUESTION#%d: %s", i+1, strings.Join(items, ", ")))
	}

	var sb strings.Builder
	sb.WriteString("You are an English teacher. Your student has been given a fill-in-the-blanks. Below you have the prompt, with the blanks represented by numbered spaces (e.g. 1.__________, 2.__________ etc.). Also note that there may be more than one question here, (if so, they've been separated by QUESTION#1. ... QUESTION#2. ... etc.):\n\n")
	sb.WriteString(strings.Join(questionTexts, " ... ") + "\n\n")
	sb.WriteString("They were given this prompt for context: " + prompt + ".\n\n")
	sb.WriteString("Here are the correct answers to each blank, in order (it's possible that there's more than one acceptable answer; in this case, acceptable answers are separated by a forward slash):\n\n")
	sb.WriteString(strings.Join(answerTexts, " ... ") + "\n\n")
	sb.WriteString("Here were the student's responses, in order:\n\n")
	sb.WriteString(strings.Join(studentTexts, " ... ") + "\n\n")
	if caseSensitive {
		sb.WriteString("Note that the answers are case sensitive - the student response should be in the correct case.\n\n")
	}
	sb.WriteString(closedFeedbackInstructions)
	if section := c.mediaPromptSection(ctx, media); section != "" {
		sb.WriteString("\n\n" + section)
	}
	return sb.String(), nil
}
