package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ieltsprep/exam-service/internal/models"
	"github.com/ieltsprep/exam-service/internal/scoring"
)

func defaultRegistry() *Registry {
	return Default(scoring.Config{SimilarityThreshold: 0.8, MinEssayLength: 100, BandScale: 9})
}

func TestDefault_RegistersAllQuestionTypes(t *testing.T) {
	reg := defaultRegistry()

	types := []models.QuestionType{
		models.MultipleChoice,
		models.Completion,
		models.Matching,
		models.MatchingHeadings,
		models.TrueFalseNotGiven,
		models.ShortAnswer,
		models.Labeling,
		models.PickFromList,
		models.WritingTask1,
		models.WritingTask2,
		models.WordForm,
		models.SentenceTranslation,
	}

	for _, qt := range types {
		d, ok := reg.Get(qt)
		assert.True(t, ok, "descriptor for %s", qt)
		assert.NotEmpty(t, d.DisplayName)
		assert.NotNil(t, d.Scorer, "scorer for %s", qt)
	}
	assert.Len(t, reg.All(), len(types))
}

func TestGet_UnknownType(t *testing.T) {
	reg := defaultRegistry()

	_, ok := reg.Get(models.QuestionType("crossword"))
	assert.False(t, ok)
}

func TestByModality(t *testing.T) {
	reg := defaultRegistry()

	writing := reg.ByModality(models.ModalityWriting)
	var tags []models.QuestionType
	for _, d := range writing {
		tags = append(tags, d.Type)
	}
	assert.Contains(t, tags, models.MultipleChoice)
	assert.Contains(t, tags, models.WritingTask1)
	assert.Contains(t, tags, models.WritingTask2)
	assert.NotContains(t, tags, models.TrueFalseNotGiven)

	reading := reg.ByModality(models.ModalityReading)
	var readingTags []models.QuestionType
	for _, d := range reading {
		readingTags = append(readingTags, d.Type)
	}
	assert.Contains(t, readingTags, models.MatchingHeadings)
	assert.NotContains(t, readingTags, models.WritingTask1)
}

func TestAll_RegistrationOrder(t *testing.T) {
	reg := defaultRegistry()

	all := reg.All()
	assert.Equal(t, models.MultipleChoice, all[0].Type)
	assert.Equal(t, models.SentenceTranslation, all[len(all)-1].Type)
}

func TestRegister_ReplaceKeepsOrder(t *testing.T) {
	reg := New()
	reg.Register(Descriptor{Type: models.MultipleChoice, DisplayName: "MC"})
	reg.Register(Descriptor{Type: models.Completion, DisplayName: "Completion"})
	reg.Register(Descriptor{Type: models.MultipleChoice, DisplayName: "Multiple Choice"})

	all := reg.All()
	assert.Len(t, all, 2)
	assert.Equal(t, "Multiple Choice", all[0].DisplayName)
	assert.Equal(t, models.Completion, all[1].Type)
}

func TestScorer_AdapterContract(t *testing.T) {
	reg := defaultRegistry()

	s, ok := reg.Scorer(models.MultipleChoice)
	assert.True(t, ok)
	assert.NotNil(t, s)

	_, ok = reg.Scorer(models.QuestionType("crossword"))
	assert.False(t, ok)

	bare := New()
	bare.Register(Descriptor{Type: models.MultipleChoice})
	_, ok = bare.Scorer(models.MultipleChoice)
	assert.False(t, ok, "descriptor without a scorer is not scorable")
}

func TestAIScoringFlags(t *testing.T) {
	reg := defaultRegistry()

	for _, qt := range []models.QuestionType{models.WritingTask1, models.WritingTask2} {
		d, _ := reg.Get(qt)
		assert.True(t, d.SupportsAIScoring, "%s", qt)
		assert.False(t, d.SupportsPartialScoring, "%s", qt)
	}

	d, _ := reg.Get(models.Completion)
	assert.True(t, d.SupportsPartialScoring)
	assert.True(t, d.HasSubQuestions)
	assert.False(t, d.SupportsAIScoring)
}
