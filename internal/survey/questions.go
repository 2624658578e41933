// Package survey defines the fixed practice-survey questionnaire.
//
// The questionnaire is an ordered list: a question's position is its identity
// for the conversation flow, while its prompt text is what the answer store
// keys rows by.
package survey

// Kind tags how a question is asked and how its answer is persisted.
type Kind int

const (
	// KindText is a short free-form field stored as a fixed-form answer
	// (used for identity fields like full name and department).
	KindText Kind = iota
	// KindRating is a numeric self-assessment stored as a fixed-form answer
	// and eligible for clustering.
	KindRating
	// KindChoice offers a fixed option set as quick replies.
	KindChoice
	// KindComment is an open-ended comment sent to the enrichment service.
	KindComment
)

// Question is one step of the questionnaire. Options is non-nil only for
// KindChoice.
type Question struct {
	Prompt  string
	Kind    Kind
	Options []string
}

// IsFixed reports whether the answer belongs to the fixed-form facet
// (everything except enriched comments).
func (q Question) IsFixed() bool { return q.Kind != KindComment }

// Prompts used for respondent record creation and for the greeting flow.
const (
	PromptDepartment = "Укажите ваше подразделение"
	PromptFullName   = "ФИО"

	StartCommand = "/start"
	StartKeyword = "Начать"

	Greeting    = "Привет! Давай начнем опрос."
	ClosingText = "Спасибо за участие в опросе!"
)

// Questions is the questionnaire in ask order.
var Questions = []Question{
	{Prompt: PromptDepartment, Kind: KindText},
	{Prompt: PromptFullName, Kind: KindText},
	{Prompt: "Оцените практику в целом (1-10)", Kind: KindRating},
	{Prompt: "Оправдала ли практика ваши ожидания?", Kind: KindChoice, Options: []string{"Да", "Нет", "Частично"}},
	{Prompt: "Оцените уровень организации практики (1-10)", Kind: KindRating},
	{Prompt: "Была ли у вас достаточная поддержка от наставников? (1-10)", Kind: KindRating},
	{Prompt: "Как вы оцениваете полезность полученных заданий? (1-10)", Kind: KindRating},
	{Prompt: "Достаточно ли было информации для выполнения заданий?", Kind: KindChoice, Options: []string{"Да", "Нет, не хватало разъяснений", "Нет, было слишком сложно"}},
	{Prompt: "Рекомендовали бы вы эту практику другим студентам?", Kind: KindChoice, Options: []string{"Да", "Нет"}},
	{Prompt: "Что вам больше всего понравилось в практике?", Kind: KindComment},
	{Prompt: "Что можно улучшить?", Kind: KindComment},
	{Prompt: "Хотите добавить что-то еще о своем опыте?", Kind: KindComment},
}

// RatingPrompts returns the prompts of all rating questions, in ask order.
// The clustering job uses this instead of matching prompt text.
func RatingPrompts(questions []Question) []string {
	var out []string
	for _, q := range questions {
		if q.Kind == KindRating {
			out = append(out, q.Prompt)
		}
	}
	return out
}

// CountFixed returns how many questions produce fixed-form answers.
func CountFixed(questions []Question) int {
	n := 0
	for _, q := range questions {
		if q.IsFixed() {
			n++
		}
	}
	return n
}
