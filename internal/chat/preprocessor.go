package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dayeon-dev/aria/internal/character"
	"github.com/dayeon-dev/aria/internal/conversation"
	"github.com/dayeon-dev/aria/internal/llm"
	"github.com/dayeon-dev/aria/internal/memory"
	"github.com/dayeon-dev/aria/internal/voice"
)

// Context is the fully assembled input for generation: persona prompt,
// format instructions, gathered memories and history, and the resolved
// voice profile.
type Context struct {
	Command       Command
	Character     character.Character
	Voice         *voice.Profile
	SystemMessage string
	Instructions  string
	MemoryContext []string
	History       []llm.HistoryMessage
	// MemoryCollection partitions long-term memories per user+character.
	MemoryCollection string
}

// Preprocessor gathers context for one run: memory search and history
// lookup, then the persona and instruction blocks.
type Preprocessor struct {
	characters   character.Store
	history      conversation.Store
	memories     memory.Client
	historyLimit int
	memoryTopK   int
	logger       *slog.Logger
}

func NewPreprocessor(characters character.Store, history conversation.Store, memories memory.Client, historyLimit, memoryTopK int, logger *slog.Logger) *Preprocessor {
	if historyLimit <= 0 {
		historyLimit = 20
	}
	if memoryTopK <= 0 {
		memoryTopK = 3
	}
	return &Preprocessor{
		characters:   characters,
		history:      history,
		memories:     memories,
		historyLimit: historyLimit,
		memoryTopK:   memoryTopK,
		logger:       logger.With(slog.String("component", "chat.preprocessor")),
	}
}

func (p *Preprocessor) Preprocess(ctx context.Context, cmd Command) (*Context, error) {
	ch, err := p.characters.Get(ctx, cmd.CharacterID)
	if err != nil {
		return nil, fmt.Errorf("load character: %w", err)
	}

	// Every character must resolve to a catalog voice at generation time.
	profile, ok := voice.LookupProfile(ch.VoiceName)
	if !ok {
		p.logger.Error("voice not in catalog",
			slog.String("character_id", ch.ID),
			slog.String("voice", ch.VoiceName))
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedVoice, ch.VoiceName)
	}

	collection := memoryCollection(cmd.UserID, cmd.CharacterID)

	memories, err := p.memories.Search(ctx, collection, cmd.Message, p.memoryTopK)
	if err != nil {
		p.logger.Warn("memory search failed, continuing without memories",
			slog.String("session_id", cmd.SessionID),
			slog.Any("error", err))
		memories = nil
	}
	memoryTexts := make([]string, 0, len(memories))
	for _, m := range memories {
		memoryTexts = append(memoryTexts, m.Text)
	}

	recent, err := p.history.Recent(ctx, cmd.UserID, cmd.CharacterID, p.historyLimit)
	if err != nil {
		p.logger.Warn("history lookup failed, continuing without history",
			slog.String("session_id", cmd.SessionID),
			slog.Any("error", err))
		recent = nil
	}
	history := make([]llm.HistoryMessage, 0, len(recent))
	for _, msg := range recent {
		role := llm.RoleUser
		if msg.Role == conversation.RoleAssistant {
			role = llm.RoleAssistant
		}
		history = append(history, llm.HistoryMessage{Role: role, Content: msg.Content})
	}

	return &Context{
		Command:          cmd,
		Character:        ch,
		Voice:            profile,
		SystemMessage:    buildSystemMessage(ch),
		Instructions:     buildInstructions(profile, cmd.Action),
		MemoryContext:    memoryTexts,
		History:          history,
		MemoryCollection: collection,
	}, nil
}

func memoryCollection(userID, characterID string) string {
	return userID + "_" + characterID
}

func buildSystemMessage(ch character.Character) string {
	var b strings.Builder
	b.WriteString("## Identity\n")
	b.WriteString("You are " + ch.Name + ".\n")
	if ch.Description != "" {
		b.WriteString(ch.Description + "\n")
	}
	if ch.Role != "" {
		b.WriteString("Role: " + ch.Role + "\n")
	}
	if ch.Personality != "" {
		b.WriteString("Personality: " + ch.Personality + "\n")
	}
	if ch.SpeechStyle != "" {
		b.WriteString("Speech style: " + ch.SpeechStyle + "\n")
	}
	b.WriteString("\nStay in character at all times.")
	return b.String()
}

// buildInstructions enumerates the emotion tags the resolved voice can
// render and the required reply format.
func buildInstructions(profile *voice.Profile, action string) string {
	allowed := allowedEmotions(profile)

	var b strings.Builder
	b.WriteString("Reply ONLY in this format:\n")
	b.WriteString("[emotion] text [emotion] text ...\n\n")
	b.WriteString("Emotion must be one of: " + strings.Join(allowed, ", ") + "\n")
	b.WriteString("Use the neutral emotion most of the time. Keep replies to one or two sentences.")
	if action != "" {
		b.WriteString("\nContext for this turn: " + action)
	}
	return b.String()
}

func allowedEmotions(profile *voice.Profile) []string {
	out := make([]string, 0, len(SupportedEmotions))
	for _, e := range SupportedEmotions {
		if _, supported := profile.ResolveStyle(e); supported {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		out = append(out, NeutralEmotion)
	}
	return out
}
