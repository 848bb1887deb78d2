package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ieltsprep/exam-service/internal/models"
	"github.com/ieltsprep/exam-service/internal/registry"
	"github.com/ieltsprep/exam-service/internal/utils"
)

// QuestionTypeHandler lists the registered question types and their
// capabilities so authoring clients can drive their forms from it.
type QuestionTypeHandler struct {
	BaseHandler
	registry *registry.Registry
}

func NewQuestionTypeHandler(reg *registry.Registry, logger utils.Logger) *QuestionTypeHandler {
	return &QuestionTypeHandler{
		BaseHandler: NewBaseHandler(logger),
		registry:    reg,
	}
}

// QuestionTypeResponse is the wire shape of one registry descriptor.
type QuestionTypeResponse struct {
	Type                   models.QuestionType `json:"type"`
	DisplayName            string              `json:"display_name"`
	Modalities             []models.Modality   `json:"modalities"`
	SupportsPartialScoring bool                `json:"supports_partial_scoring"`
	HasSubQuestions        bool                `json:"has_sub_questions"`
	SupportsAIScoring      bool                `json:"supports_ai_scoring"`
}

func (h *QuestionTypeHandler) ListQuestionTypes(c *gin.Context) {
	var descriptors []registry.Descriptor
	if modality := c.Query("modality"); modality != "" {
		descriptors = h.registry.ByModality(models.Modality(modality))
	} else {
		descriptors = h.registry.All()
	}

	out := make([]QuestionTypeResponse, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, QuestionTypeResponse{
			Type:                   d.Type,
			DisplayName:            d.DisplayName,
			Modalities:             d.Modalities,
			SupportsPartialScoring: d.SupportsPartialScoring,
			HasSubQuestions:        d.HasSubQuestions,
			SupportsAIScoring:      d.SupportsAIScoring,
		})
	}
	c.JSON(http.StatusOK, gin.H{"question_types": out})
}
