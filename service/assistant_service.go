package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"safevoice-backend/llm"
	"safevoice-backend/logger"
	"safevoice-backend/models"
	"safevoice-backend/observe"
	"safevoice-backend/repository"
	"safevoice-backend/search"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultGreeting opens every conversation
	DefaultGreeting = "Hello, I am your legal assistant. I can explain your rights under Indian law, " +
		"help you understand the protection available against domestic violence, and help you " +
		"prepare a First Information Report. Tell me what happened, in your own words."

	// DefaultFallback replaces the assistant reply when the model cannot be reached
	DefaultFallback = "I'm sorry, I couldn't process your request right now. Please try again in a moment. " +
		"If you are in immediate danger, call 112 or the women's helpline 181."

	// searchDirective is the line prefix the model uses to ask for a web search
	searchDirective = "SEARCH:"
)

// DefaultSystemPrompt instructs the model how to behave in the chat
const DefaultSystemPrompt = `You are a calm, supportive legal assistant for survivors of domestic violence in India.
Explain rights and remedies in plain language, citing the relevant law (for example the Protection of Women
from Domestic Violence Act 2005, the Indian Penal Code, the Dowry Prohibition Act, and the Code of Criminal
Procedure) where it helps. Ask gentle follow-up questions to learn what happened, when, where, who was involved,
who witnessed it, and what injuries or losses occurred, because these details are needed to draft an FIR.
Never invent facts about the user's situation.

If you need current information you do not know (for example a helpline number, a recent judgment or an
amendment), reply with a single line of the form:
SEARCH: <search query>
and nothing else. You will then receive search results to answer from.`

// AssistantService runs the legal assistant chat loop
type AssistantService struct {
	conversations ConversationStore
	generator     llm.Generator
	searcher      search.Searcher
	metrics       *observe.Metrics
	log           *logger.Logger
	systemPrompt  string
	greeting      string
	fallback      string
}

// AssistantServiceOption is a functional option for AssistantService
type AssistantServiceOption func(*AssistantService)

// AssistantWithConversationStore sets the conversation store
func AssistantWithConversationStore(store ConversationStore) AssistantServiceOption {
	return func(s *AssistantService) {
		s.conversations = store
	}
}

// AssistantWithGenerator sets the language model
func AssistantWithGenerator(g llm.Generator) AssistantServiceOption {
	return func(s *AssistantService) {
		s.generator = g
	}
}

// AssistantWithSearcher sets the web searcher
func AssistantWithSearcher(searcher search.Searcher) AssistantServiceOption {
	return func(s *AssistantService) {
		s.searcher = searcher
	}
}

// AssistantWithMetrics sets the metrics instruments
func AssistantWithMetrics(m *observe.Metrics) AssistantServiceOption {
	return func(s *AssistantService) {
		s.metrics = m
	}
}

// AssistantWithLogger sets the logger
func AssistantWithLogger(l *logger.Logger) AssistantServiceOption {
	return func(s *AssistantService) {
		s.log = l
	}
}

// AssistantWithSystemPrompt overrides the system prompt
func AssistantWithSystemPrompt(prompt string) AssistantServiceOption {
	return func(s *AssistantService) {
		s.systemPrompt = prompt
	}
}

// AssistantWithGreeting overrides the opening assistant turn
func AssistantWithGreeting(greeting string) AssistantServiceOption {
	return func(s *AssistantService) {
		s.greeting = greeting
	}
}

// AssistantWithFallback overrides the reply used when generation fails
func AssistantWithFallback(fallback string) AssistantServiceOption {
	return func(s *AssistantService) {
		s.fallback = fallback
	}
}

// NewAssistantService creates a new assistant service
func NewAssistantService(opts ...AssistantServiceOption) *AssistantService {
	s := &AssistantService{
		searcher:     search.Disabled{},
		log:          logger.Discard(),
		systemPrompt: DefaultSystemPrompt,
		greeting:     DefaultGreeting,
		fallback:     DefaultFallback,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartConversation creates a conversation opened by the assistant greeting
func (s *AssistantService) StartConversation(ctx context.Context, userID *uuid.UUID) (*models.Conversation, error) {
	if s.conversations == nil {
		return nil, errors.New("conversation store not set")
	}

	conv := &models.Conversation{
		UserID: userID,
		Turns:  []models.ChatTurn{s.greetingTurn()},
	}

	if err := s.conversations.Create(ctx, conv); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	return conv, nil
}

// GetConversation retrieves a conversation with its transcript
func (s *AssistantService) GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	if s.conversations == nil {
		return nil, errors.New("conversation store not set")
	}

	conv, err := s.conversations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	return conv, nil
}

// ResetConversation clears the transcript back to the greeting
func (s *AssistantService) ResetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	if s.conversations == nil {
		return nil, errors.New("conversation store not set")
	}

	err := s.conversations.ResetTurns(ctx, id, []models.ChatTurn{s.greetingTurn()})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to reset conversation: %w", err)
	}

	return s.GetConversation(ctx, id)
}

// SendMessageResult is the assistant's reply to one user message
type SendMessageResult struct {
	UserTurn      models.ChatTurn
	AssistantTurn models.ChatTurn
	Searched      bool
	Query         string
	Fallback      bool
}

// SendMessage appends the user's message, asks the model for a reply,
// runs one web search if the model requests it, and appends the reply.
// A model failure yields the fallback reply rather than an error.
func (s *AssistantService) SendMessage(ctx context.Context, id uuid.UUID, text string) (*SendMessageResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if s.generator == nil {
		return nil, errors.New("generator not set")
	}

	conv, err := s.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	history := conv.Turns

	userTurn := models.ChatTurn{
		ConversationID: id,
		Role:           models.RoleUser,
		Text:           text,
	}
	if err := s.conversations.AppendTurn(ctx, &userTurn); err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	result := &SendMessageResult{UserTurn: userTurn}
	reply, err := s.reply(ctx, history, text, result)
	if err != nil {
		s.log.Warn("assistant reply failed, using fallback", logrus.Fields{
			"conversation_id": id.String(),
			"error":           err.Error(),
		})
		if s.metrics != nil {
			s.metrics.RecordFallback(ctx)
		}
		reply = s.fallback
		result.Fallback = true
	}

	result.AssistantTurn = models.ChatTurn{
		ConversationID: id,
		Role:           models.RoleAssistant,
		Text:           reply,
	}
	if err := s.conversations.AppendTurn(ctx, &result.AssistantTurn); err != nil {
		return nil, fmt.Errorf("failed to save assistant reply: %w", err)
	}

	return result, nil
}

// reply produces the assistant text for prompt, following a search directive once
func (s *AssistantService) reply(ctx context.Context, history []models.ChatTurn, prompt string, result *SendMessageResult) (string, error) {
	req := llm.Request{
		SystemPrompt: s.systemPrompt,
		History:      history,
		Prompt:       prompt,
	}

	reply, err := s.generator.Generate(ctx, req)
	if err != nil {
		return "", err
	}

	query, ok := ParseSearchDirective(reply)
	if !ok {
		return finalReply(reply)
	}

	result.Searched = true
	result.Query = query

	var searchContext string
	results, err := s.searcher.Search(ctx, query)
	if err != nil {
		s.log.Warn("web search failed", logrus.Fields{
			"query": query,
			"error": err.Error(),
		})
		searchContext = "No search results are available for this question. Answer from what you already know and say so."
	} else {
		searchContext = search.FormatResults(results)
	}

	req.Prompt = augmentPrompt(prompt, query, searchContext)
	reply, err = s.generator.Generate(ctx, req)
	if err != nil {
		return "", err
	}

	return finalReply(reply)
}

func (s *AssistantService) greetingTurn() models.ChatTurn {
	return models.ChatTurn{
		Role: models.RoleAssistant,
		Text: s.greeting,
	}
}

// ParseSearchDirective returns the query of the first "SEARCH: <query>" line
// in reply. The prefix is matched case-insensitively; an empty query does
// not count as a directive.
func ParseSearchDirective(reply string) (string, bool) {
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < len(searchDirective) || !strings.EqualFold(line[:len(searchDirective)], searchDirective) {
			continue
		}
		query := strings.TrimSpace(line[len(searchDirective):])
		if query != "" {
			return query, true
		}
	}
	return "", false
}

// finalReply strips any leftover search directives from reply
func finalReply(reply string) (string, error) {
	lines := strings.Split(reply, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if _, ok := ParseSearchDirective(line); ok {
			continue
		}
		kept = append(kept, line)
	}

	text := strings.TrimSpace(strings.Join(kept, "\n"))
	if text == "" {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}

func augmentPrompt(prompt, query, searchContext string) string {
	var builder strings.Builder
	builder.WriteString(prompt)
	builder.WriteString("\n\nWeb search results for \"")
	builder.WriteString(query)
	builder.WriteString("\":\n")
	builder.WriteString(searchContext)
	builder.WriteString("\n\nAnswer my message using these results where they help. Do not ask for another search.")
	return builder.String()
}
