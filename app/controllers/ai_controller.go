package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/vietscribe/vietscribe/internal/pkg/aitools"
	"github.com/vietscribe/vietscribe/internal/pkg/usercontext"
)

// HandleGenerateOutline creates a document outline for a topic.
func HandleGenerateOutline(c *fiber.Ctx) error {
	var req aitools.OutlineRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(req.Topic) == "" {
		return badRequest(c, "topic is required")
	}

	outline, err := services.AI.GenerateOutline(c.UserContext(), usercontext.GetUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(outline)
}

// HandleWritingAssist runs a free-form writing instruction.
func HandleWritingAssist(c *fiber.Ctx) error {
	var req aitools.AssistRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(req.Instruction) == "" {
		return badRequest(c, "instruction is required")
	}

	text, err := services.AI.Assist(c.UserContext(), usercontext.GetUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"text": text})
}

type textRequest struct {
	Text     string `json:"text"`
	MaxWords int    `json:"max_words"`
}

// HandleGrammarCheck analyzes a text for grammar problems.
func HandleGrammarCheck(c *fiber.Ctx) error {
	var req textRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return badRequest(c, "text is required")
	}

	report, err := services.AI.CheckGrammar(c.UserContext(), usercontext.GetUserID(c), req.Text)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// HandleSummarize condenses a document.
func HandleSummarize(c *fiber.Ctx) error {
	var req textRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return badRequest(c, "text is required")
	}

	summary, err := services.AI.Summarize(c.UserContext(), usercontext.GetUserID(c), req.Text, req.MaxWords)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"summary": summary})
}

// HandlePlagiarismCheck estimates plagiarism risk for a text.
func HandlePlagiarismCheck(c *fiber.Ctx) error {
	var req textRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return badRequest(c, "text is required")
	}

	report, err := services.AI.CheckPlagiarism(c.UserContext(), usercontext.GetUserID(c), req.Text)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}
