package scoring

import "github.com/ieltsprep/exam-service/internal/models"

// Builtins returns the default scorer for every supported question
// type under the given policy config.
func Builtins(cfg Config) map[models.QuestionType]Scorer {
	return map[models.QuestionType]Scorer{
		models.MultipleChoice:    choiceScorer{},
		models.Completion:        unitScorer{name: "completion", decode: completionUnits},
		models.ShortAnswer:       unitScorer{name: "short answer", decode: shortAnswerUnits},
		models.Labeling:          unitScorer{name: "labeling", decode: labelingUnits},
		models.Matching:          unitScorer{name: "matching", decode: matchingUnits},
		models.MatchingHeadings:  unitScorer{name: "matching headings", decode: matchingHeadingsUnits},
		models.TrueFalseNotGiven: unitScorer{name: "true/false/not given", decode: trueFalseNotGivenUnits},
		models.PickFromList:      unitScorer{name: "pick from list", decode: pickFromListUnits},
		models.WritingTask1:      writingScorer{cfg: cfg},
		models.WritingTask2:      writingScorer{cfg: cfg},
		models.WordForm:          translationScorer{name: "word form", cfg: cfg},
		models.SentenceTranslation: translationScorer{
			name: "sentence translation",
			cfg:  cfg,
		},
	}
}
