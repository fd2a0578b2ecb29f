package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mindgarden/mindgarden/utils"
)

// SuggestionController serves AI-assisted coping suggestions.
type SuggestionController struct{}

// NewSuggestionController creates a SuggestionController instance.
func NewSuggestionController() *SuggestionController {
	return &SuggestionController{}
}

// Generate returns short coping suggestions for the caller's mood text. When
// the upstream model is unreachable a canned set is returned instead so the
// endpoint always answers.
func (c *SuggestionController) Generate(ctx *gin.Context) {
	var req struct {
		Input string `json:"input" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40100, "input text is required")
		return
	}

	input := strings.TrimSpace(req.Input)
	if input == "" {
		utils.Error(ctx, http.StatusBadRequest, 40100, "input text is required")
		return
	}
	if len(input) > 2000 {
		input = input[:2000]
	}

	text, err := utils.GenerateSuggestions(ctx.Request.Context(), input)
	if err != nil {
		if !errors.Is(err, utils.ErrGeminiUnavailable) && utils.Sugar != nil {
			utils.Sugar.Errorf("suggestion generation failed: %v", err)
		}
		utils.Success(ctx, gin.H{
			"suggestions": utils.FallbackSuggestions(),
			"source":      "fallback",
		})
		return
	}

	utils.Success(ctx, gin.H{
		"suggestions": text,
		"source":      "model",
	})
}
