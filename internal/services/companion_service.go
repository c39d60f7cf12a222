package services

import (
	"context"
	"errors"
	"strings"

	"github.com/NewMtnGoat/new-status/internal/gemini"
	"github.com/sirupsen/logrus"
)

var (
	ErrEmptyMessage = errors.New("message cannot be empty")
	ErrEmptyTopic   = errors.New("please enter a topic for the message")
)

const companionSystemPrompt = "You are a calm, supportive, and empathetic AI companion. " +
	"Your user is seeking a safe space to talk about their feelings, potentially related to PTSD or high stress. " +
	"Your primary goals are: 1. Listen actively and validate their feelings without judgment. " +
	"2. If they express severe distress, gently guide them to use the app's 'Crisis Alert' feature or contact a professional resource from the 'Resources' tab. " +
	"3. Do NOT provide medical advice. 4. Keep responses concise and caring. Start your response now."

const checkInPrompt = "You are a caring friend. Based on the following theme, write one short, warm, " +
	"and supportive check-in message (under 25 words) to send to a friend. Theme: '%s'. " +
	"Respond with only the message itself, without any extra text or quotation marks."

const crisisGuidancePrompt = "A friend has sent a crisis alert indicating they are experiencing extreme distress, " +
	"possibly a PTSD episode. As a mental health first aid expert, provide 3 brief, actionable tips for the person " +
	"who is about to respond. The tips should be supportive, non-judgemental, and focus on immediate de-escalation " +
	"and safety. Start with 'Remember:'."

const crisisGuidanceFallback = "Could not load tips. Focus on listening and showing you care."

const groundingPrompt = "You are an expert in mindfulness. Generate a simple grounding exercise for someone in " +
	"intense anxiety. It must be short, easy, and focus on the senses. Use simple numbered steps. " +
	"Do not include a preamble."

// TextGenerator is the text bridge contract, satisfied by gemini.Client.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, history []gemini.Content) (string, error)
}

// CompanionService wraps the text bridge for the four generative
// features: companion chat, check-in drafting, crisis-response guidance
// and grounding exercises. Conversations are ephemeral; nothing here is
// persisted.
type CompanionService struct {
	bridge TextGenerator
}

// NewCompanionService creates a new CompanionService.
func NewCompanionService(bridge TextGenerator) *CompanionService {
	return &CompanionService{bridge: bridge}
}

// Chat sends the user's message with the running conversation history and
// returns the companion's reply.
func (s *CompanionService) Chat(ctx context.Context, history []gemini.Content, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}
	prompt := companionSystemPrompt + "\n\nMy current thought: " + message
	return s.bridge.Generate(ctx, prompt, history)
}

// DraftCheckIn turns a topic into one short supportive check-in message.
func (s *CompanionService) DraftCheckIn(ctx context.Context, topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", ErrEmptyTopic
	}
	result, err := s.bridge.Generate(ctx, strings.Replace(checkInPrompt, "%s", topic, 1), nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result), nil
}

// CrisisGuidance produces responder tips for an incoming crisis alert.
// On bridge failure it falls back to a fixed reminder rather than erroring.
func (s *CompanionService) CrisisGuidance(ctx context.Context) string {
	result, err := s.bridge.Generate(ctx, crisisGuidancePrompt, nil)
	if err != nil {
		logrus.WithError(err).Warn("Crisis guidance generation failed")
		return crisisGuidanceFallback
	}
	return result
}

// GroundingExercise produces a short sensory grounding exercise.
func (s *CompanionService) GroundingExercise(ctx context.Context) (string, error) {
	return s.bridge.Generate(ctx, groundingPrompt, nil)
}
