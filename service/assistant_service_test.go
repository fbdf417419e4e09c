package service

import (
	"context"
	"errors"
	"testing"

	"safevoice-backend/models"
	"safevoice-backend/search"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAssistant(t *testing.T, gen *scriptedGenerator, searcher search.Searcher) (*AssistantService, *memConversations, *models.Conversation) {
	t.Helper()

	store := newMemConversations()
	opts := []AssistantServiceOption{
		AssistantWithConversationStore(store),
		AssistantWithGenerator(gen),
	}
	if searcher != nil {
		opts = append(opts, AssistantWithSearcher(searcher))
	}
	svc := NewAssistantService(opts...)

	conv, err := svc.StartConversation(context.Background(), nil)
	require.NoError(t, err)
	return svc, store, conv
}

func TestStartConversation(t *testing.T) {
	userID := uuid.New()
	svc := NewAssistantService(
		AssistantWithConversationStore(newMemConversations()),
		AssistantWithGreeting("Namaste"),
	)

	conv, err := svc.StartConversation(context.Background(), &userID)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, conv.ID)
	assert.Equal(t, &userID, conv.UserID)
	require.Len(t, conv.Turns, 1)
	assert.Equal(t, models.RoleAssistant, conv.Turns[0].Role)
	assert.Equal(t, "Namaste", conv.Turns[0].Text)
	assert.False(t, conv.HasUserTurn())
}

func TestSendMessage_EmptyText(t *testing.T) {
	gen := &scriptedGenerator{}
	svc, store, conv := newTestAssistant(t, gen, nil)

	_, err := svc.SendMessage(context.Background(), conv.ID, "  \n\t ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, gen.requests)

	stored, err := store.GetByID(context.Background(), conv.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Turns, 1)
}

func TestSendMessage_UnknownConversation(t *testing.T) {
	svc, _, _ := newTestAssistant(t, &scriptedGenerator{}, nil)

	_, err := svc.SendMessage(context.Background(), uuid.New(), "hello")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestSendMessage_PlainReply(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"  You can file an FIR at any police station.  "}}
	searcher := &stubSearcher{}
	svc, store, conv := newTestAssistant(t, gen, searcher)

	result, err := svc.SendMessage(context.Background(), conv.ID, " Where do I file a complaint? ")
	require.NoError(t, err)

	assert.False(t, result.Searched)
	assert.False(t, result.Fallback)
	assert.Equal(t, "Where do I file a complaint?", result.UserTurn.Text)
	assert.Equal(t, "You can file an FIR at any police station.", result.AssistantTurn.Text)
	assert.Empty(t, searcher.queries)

	require.Len(t, gen.requests, 1)
	req := gen.requests[0]
	assert.Equal(t, DefaultSystemPrompt, req.SystemPrompt)
	assert.Equal(t, "Where do I file a complaint?", req.Prompt)
	require.Len(t, req.History, 1)
	assert.Equal(t, DefaultGreeting, req.History[0].Text)

	stored, err := store.GetByID(context.Background(), conv.ID)
	require.NoError(t, err)
	require.Len(t, stored.Turns, 3)
	assert.Equal(t, models.RoleUser, stored.Turns[1].Role)
	assert.Equal(t, models.RoleAssistant, stored.Turns[2].Role)
	assert.Equal(t, 2, stored.Turns[2].Position)
}

func TestSendMessage_SearchDirective(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		"SEARCH: women helpline number Delhi",
		"The Delhi women's helpline is 181.",
	}}
	searcher := &stubSearcher{results: []search.Result{
		{Title: "Delhi Commission for Women", Link: "https://dcw.example", Snippet: "Helpline 181"},
	}}
	svc, store, conv := newTestAssistant(t, gen, searcher)

	result, err := svc.SendMessage(context.Background(), conv.ID, "Which helpline can I call in Delhi?")
	require.NoError(t, err)

	assert.True(t, result.Searched)
	assert.Equal(t, "women helpline number Delhi", result.Query)
	assert.Equal(t, "The Delhi women's helpline is 181.", result.AssistantTurn.Text)
	assert.Equal(t, []string{"women helpline number Delhi"}, searcher.queries)

	require.Len(t, gen.requests, 2)
	second := gen.requests[1]
	assert.Contains(t, second.Prompt, "Which helpline can I call in Delhi?")
	assert.Contains(t, second.Prompt, "Delhi Commission for Women")
	assert.Contains(t, second.Prompt, "https://dcw.example")
	assert.Equal(t, gen.requests[0].History, second.History)

	stored, err := store.GetByID(context.Background(), conv.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Turns, 3)
}

func TestSendMessage_SearchFailure(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		"Let me check.\nsearch: dowry law amendment 2024",
		"I could not look that up, but the Dowry Prohibition Act 1961 still applies.",
	}}
	searcher := &stubSearcher{err: errors.New("quota exceeded")}
	svc, _, conv := newTestAssistant(t, gen, searcher)

	result, err := svc.SendMessage(context.Background(), conv.ID, "Was the dowry law changed?")
	require.NoError(t, err)

	assert.True(t, result.Searched)
	assert.False(t, result.Fallback)
	require.Len(t, gen.requests, 2)
	assert.Contains(t, gen.requests[1].Prompt, "No search results are available")
}

func TestSendMessage_DisabledSearch(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"SEARCH: protection officer Pune", "Contact the district protection officer."}}
	svc, _, conv := newTestAssistant(t, gen, nil)

	result, err := svc.SendMessage(context.Background(), conv.ID, "Who is my protection officer?")
	require.NoError(t, err)

	assert.True(t, result.Searched)
	assert.Equal(t, "Contact the district protection officer.", result.AssistantTurn.Text)
}

func TestSendMessage_GenerationFailureFallsBack(t *testing.T) {
	tests := []struct {
		name string
		gen  *scriptedGenerator
	}{
		{
			name: "first call fails",
			gen:  &scriptedGenerator{errs: []error{errors.New("503")}},
		},
		{
			name: "re-query fails",
			gen: &scriptedGenerator{
				replies: []string{"SEARCH: legal aid Mumbai"},
				errs:    []error{nil, errors.New("timeout")},
			},
		},
		{
			name: "only a directive comes back",
			gen:  &scriptedGenerator{replies: []string{"SEARCH: a", "SEARCH: b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, conv := newTestAssistant(t, tt.gen, &stubSearcher{})

			result, err := svc.SendMessage(context.Background(), conv.ID, "Help me")
			require.NoError(t, err)
			assert.True(t, result.Fallback)
			assert.Equal(t, DefaultFallback, result.AssistantTurn.Text)

			stored, err := store.GetByID(context.Background(), conv.ID)
			require.NoError(t, err)
			require.Len(t, stored.Turns, 3)
			assert.Equal(t, DefaultFallback, stored.Turns[2].Text)
		})
	}
}

func TestResetConversation(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"I'm here to help."}}
	svc, _, conv := newTestAssistant(t, gen, nil)

	_, err := svc.SendMessage(context.Background(), conv.ID, "My husband hit me")
	require.NoError(t, err)

	reset, err := svc.ResetConversation(context.Background(), conv.ID)
	require.NoError(t, err)
	require.Len(t, reset.Turns, 1)
	assert.Equal(t, DefaultGreeting, reset.Turns[0].Text)

	_, err = svc.ResetConversation(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestParseSearchDirective(t *testing.T) {
	tests := []struct {
		reply string
		query string
		ok    bool
	}{
		{"SEARCH: section 498A punishment", "section 498A punishment", true},
		{"Sure.\n  search:   zero FIR rules  \nThanks", "zero FIR rules", true},
		{"SEARCH:", "", false},
		{"You can search: the court website", "", false},
		{"No directive here", "", false},
	}

	for _, tt := range tests {
		query, ok := ParseSearchDirective(tt.reply)
		assert.Equal(t, tt.ok, ok, tt.reply)
		assert.Equal(t, tt.query, query, tt.reply)
	}
}
