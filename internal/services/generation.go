package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IncDrops/breakup/internal/engine"
	"github.com/IncDrops/breakup/internal/errs"
	"github.com/IncDrops/breakup/internal/models"
)

// resultSchema constrains the engine to the GenerationResult shape
var resultSchema = json.RawMessage(`{
	"type": "OBJECT",
	"properties": {
		"text_body": {"type": "STRING"},
		"follow_up_tip": {"type": "STRING"},
		"recipient_name": {"type": "STRING"}
	},
	"required": ["text_body", "follow_up_tip", "recipient_name"]
}`)

const toxicTemplate = `You are a satirical Breakup Bot writing as a chaotic, gaslighting ex who loves drama.
MANDATORY STYLE RULES:
1. LOWERCASE ONLY. do not capitalize anything. ever.
2. NO PUNCTUATION. use run-on sentences, no periods.
3. EMOJIS: you MUST use at least 3 toxic emojis from this set: 🚩 💅 🙄 🗑️ 🤡.
4. VIBE: passive-aggressive, play the victim, use slang (tbh, rn, lol, whatever).
5. GOAL: make them feel bad but also confused.
Also write a short follow_up_tip in the same voice.`

const hrTemplate = `You are a cold, litigious Human Resources Director terminating a romantic relationship as if firing an employee.
MANDATORY STYLE RULES:
1. CORPORATE SPEAK: use terms like "Effective Immediately", "Termination of Contract", "Performance Review", "Severance".
2. TONE: zero emotion, purely bureaucratic.
3. FORMAT: the text_body MUST start with "RE: NOTICE OF TERMINATION".
4. GOAL: treat the relationship purely as a failed business arrangement.
Also write a short follow_up_tip in the same register.`

const recipientInstruction = `Analyze the user's stated reason. If it mentions a specific name (e.g. "Mike", "Jessica", "my bf Tom"), extract just the name and return it in recipient_name. If no name is found, return "Recipient".`

// GenerationService turns an Intent into a GenerationResult through a
// persona-selected prompt template. It never logs; failures come back as
// typed errors for the orchestrator boundary.
type GenerationService struct {
	engine engine.Engine
	model  string
}

// NewGenerationService creates a generation service. Model may be empty to
// use the engine default.
func NewGenerationService(eng engine.Engine, model string) *GenerationService {
	return &GenerationService{engine: eng, model: model}
}

// Generate produces exactly one result for the intent. No retry is attempted
// here: a single paid attempt is the product contract.
func (s *GenerationService) Generate(ctx context.Context, intent models.Intent) (*models.GenerationResult, error) {
	system, temperature := templateFor(intent.Persona)

	resp, err := s.engine.GenerateStructured(ctx, engine.Request{
		System:      system + "\n\n" + recipientInstruction,
		Prompt:      fmt.Sprintf("Reason for the breakup: %q. Generate the message now, adhering strictly to the style rules.", intent.Reason),
		Schema:      resultSchema,
		Model:       s.model,
		Temperature: temperature,
	})
	if err != nil {
		return nil, errs.FromEngine(err)
	}

	var result models.GenerationResult
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, errs.Wrap(errs.KindGeneration, "engine returned a malformed structured result", err)
	}

	if result.TextBody == "" {
		return nil, errs.New(errs.KindGeneration, "engine result is missing text_body")
	}
	if result.FollowUpTip == "" {
		return nil, errs.New(errs.KindGeneration, "engine result is missing follow_up_tip")
	}
	if result.RecipientName == "" {
		result.RecipientName = models.DefaultRecipient
	}

	return &result, nil
}

func templateFor(persona models.Persona) (system string, temperature float64) {
	switch persona {
	case models.PersonaHR:
		return hrTemplate, 0.4
	default:
		return toxicTemplate, 1.0
	}
}
