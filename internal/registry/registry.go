// Package registry maps question type tags to their capability
// descriptors and scorer implementations. The table is populated once
// at startup and only read afterwards, so lookups take no lock.
package registry

import (
	"github.com/ieltsprep/exam-service/internal/models"
	"github.com/ieltsprep/exam-service/internal/scoring"
)

// Descriptor describes what a question type supports and how it is
// scored. Editor and renderer views live with the client; the service
// only carries display metadata for them.
type Descriptor struct {
	Type        models.QuestionType
	DisplayName string
	Modalities  []models.Modality

	SupportsPartialScoring bool
	HasSubQuestions        bool
	SupportsAIScoring      bool

	Scorer scoring.Scorer
}

type Registry struct {
	descriptors map[models.QuestionType]Descriptor
	order       []models.QuestionType
}

func New() *Registry {
	return &Registry{descriptors: make(map[models.QuestionType]Descriptor)}
}

// Register adds or replaces a descriptor. Intended for startup only.
func (r *Registry) Register(d Descriptor) {
	if _, exists := r.descriptors[d.Type]; !exists {
		r.order = append(r.order, d.Type)
	}
	r.descriptors[d.Type] = d
}

// Get returns the descriptor for a type tag. Unregistered types report
// ok=false; callers render a typed error state instead of crashing.
func (r *Registry) Get(t models.QuestionType) (Descriptor, bool) {
	d, ok := r.descriptors[t]
	return d, ok
}

// ByModality lists descriptors usable in tests of the given modality,
// in registration order.
func (r *Registry) ByModality(m models.Modality) []Descriptor {
	var out []Descriptor
	for _, t := range r.order {
		d := r.descriptors[t]
		for _, dm := range d.Modalities {
			if dm == m {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

// All lists every registered descriptor in registration order.
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.descriptors[t])
	}
	return out
}

// Scorer adapts the registry to the scoring engine's lookup contract.
func (r *Registry) Scorer(t models.QuestionType) (scoring.Scorer, bool) {
	d, ok := r.descriptors[t]
	if !ok || d.Scorer == nil {
		return nil, false
	}
	return d.Scorer, true
}

// Default builds the registry with every built-in question type under
// the given scoring policy.
func Default(cfg scoring.Config) *Registry {
	scorers := scoring.Builtins(cfg)
	r := New()

	all := []models.Modality{
		models.ModalityListening,
		models.ModalityReading,
		models.ModalityWriting,
		models.ModalitySpeaking,
	}
	receptive := []models.Modality{models.ModalityListening, models.ModalityReading}
	reading := []models.Modality{models.ModalityReading}
	writing := []models.Modality{models.ModalityWriting}
	speaking := []models.Modality{models.ModalitySpeaking}

	register := func(t models.QuestionType, name string, mods []models.Modality, partial, subs, ai bool) {
		r.Register(Descriptor{
			Type:                   t,
			DisplayName:            name,
			Modalities:             mods,
			SupportsPartialScoring: partial,
			HasSubQuestions:        subs,
			SupportsAIScoring:      ai,
			Scorer:                 scorers[t],
		})
	}

	register(models.MultipleChoice, "Multiple Choice", all, false, false, false)
	register(models.Completion, "Completion", receptive, true, true, false)
	register(models.Matching, "Matching", receptive, true, true, false)
	register(models.MatchingHeadings, "Matching Headings", reading, true, true, false)
	register(models.TrueFalseNotGiven, "True / False / Not Given", reading, true, true, false)
	register(models.ShortAnswer, "Short Answer", receptive, true, true, false)
	register(models.Labeling, "Labeling", receptive, true, true, false)
	register(models.PickFromList, "Pick From List", receptive, true, true, false)
	register(models.WritingTask1, "Writing Task 1", writing, false, false, true)
	register(models.WritingTask2, "Writing Task 2", writing, false, false, true)
	register(models.WordForm, "Word Form", speaking, true, true, true)
	register(models.SentenceTranslation, "Sentence Translation", speaking, true, true, true)

	return r
}
