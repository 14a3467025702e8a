package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/agriconnect/backend/internal/domain/comms"
	"github.com/agriconnect/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	// translationTTL keeps translations warm for a month, message
	// texts repeat heavily across campaigns
	translationTTL = 30 * 24 * time.Hour

	generateMaxTokens  = 300
	translateMaxTokens = 600
	intentMaxTokens    = 20
)

// Intents an inbound farmer message can be classified into
const (
	IntentPriceInquiry = "price_inquiry"
	IntentOrderStatus  = "order_status"
	IntentComplaint    = "complaint"
	IntentWeather      = "weather"
	IntentGreeting     = "greeting"
	IntentOther        = "other"
)

var knownIntents = []string{
	IntentPriceInquiry,
	IntentOrderStatus,
	IntentComplaint,
	IntentWeather,
	IntentGreeting,
	IntentOther,
}

// AssistantService generates, translates and classifies message
// content with a language model. Every operation degrades gracefully,
// a model outage never blocks a send.
type AssistantService struct {
	client       ChatClient
	cache        TranslationCache
	templateRepo comms.SMSTemplateRepository
	logger       *zap.Logger
}

// NewAssistantService creates a new assistant service
func NewAssistantService(
	client ChatClient,
	cache TranslationCache,
	templateRepo comms.SMSTemplateRepository,
	logger *zap.Logger,
) *AssistantService {
	return &AssistantService{
		client:       client,
		cache:        cache,
		templateRepo: templateRepo,
		logger:       logger,
	}
}

// GenerateMessage produces localized content for a message type. When
// the model fails, the stored template for that type is rendered
// instead.
func (s *AssistantService) GenerateMessage(ctx context.Context, req GenerateMessageRequest) (*GenerateMessageResponse, error) {
	msgType := comms.MessageType(req.MessageType)
	if !msgType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MESSAGE_TYPE", "Unknown message type")
	}
	lang := comms.MatchLanguage(req.Language)

	content, err := s.client.Complete(ctx, ChatRequest{
		System:      "You write short SMS messages for smallholder farmers and produce buyers on an agricultural marketplace. Reply with the message text only, no quotes, at most 320 characters.",
		Prompt:      s.generatePrompt(msgType, lang, req.Variables),
		MaxTokens:   generateMaxTokens,
		Temperature: 0.7,
	})
	if err == nil && strings.TrimSpace(content) != "" {
		return &GenerateMessageResponse{Content: strings.TrimSpace(content), Source: "model"}, nil
	}
	if err != nil {
		s.logger.Warn("Model generation failed, falling back to template",
			zap.String("message_type", req.MessageType),
			zap.Error(err))
	}

	rendered, err := s.fallbackTemplate(ctx, msgType, lang, req.Variables)
	if err != nil {
		return nil, err
	}
	return &GenerateMessageResponse{Content: rendered, Source: "template"}, nil
}

// Translate translates message text into the target language. Results
// are cached by content hash, a cache hit never calls the model. On
// model failure the original text is returned untranslated.
func (s *AssistantService) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	lang := comms.MatchLanguage(req.TargetLanguage)
	key := translationKey(req.Text, lang)

	if cached, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("Translation cache read failed", zap.Error(err))
	} else if ok {
		return &TranslateResponse{Text: cached, TargetLanguage: lang, Cached: true}, nil
	}

	translated, err := s.client.Complete(ctx, ChatRequest{
		System:      fmt.Sprintf("You translate SMS messages into the language with BCP-47 tag %q. Reply with the translation only.", lang),
		Prompt:      req.Text,
		MaxTokens:   translateMaxTokens,
		Temperature: 0.2,
	})
	if err != nil || strings.TrimSpace(translated) == "" {
		s.logger.Warn("Translation failed, returning source text",
			zap.String("target_language", lang),
			zap.Error(err))
		return &TranslateResponse{Text: req.Text, TargetLanguage: lang}, nil
	}

	translated = strings.TrimSpace(translated)
	if err := s.cache.Set(ctx, key, translated, translationTTL); err != nil {
		s.logger.Warn("Translation cache write failed", zap.Error(err))
	}

	return &TranslateResponse{Text: translated, TargetLanguage: lang}, nil
}

// DetectIntent classifies an inbound farmer message. Unrecognized or
// failed classifications come back as "other".
func (s *AssistantService) DetectIntent(ctx context.Context, req DetectIntentRequest) (*IntentResponse, error) {
	reply, err := s.client.Complete(ctx, ChatRequest{
		System: fmt.Sprintf("You classify inbound SMS messages from farmers on an agricultural marketplace. Reply with exactly one of: %s.",
			strings.Join(knownIntents, ", ")),
		Prompt:      req.Text,
		MaxTokens:   intentMaxTokens,
		Temperature: 0,
	})
	if err != nil {
		s.logger.Warn("Intent detection failed", zap.Error(err))
		return &IntentResponse{Intent: IntentOther}, nil
	}

	reply = strings.ToLower(strings.TrimSpace(reply))
	for _, intent := range knownIntents {
		if strings.Contains(reply, intent) {
			return &IntentResponse{Intent: intent}, nil
		}
	}
	return &IntentResponse{Intent: IntentOther}, nil
}

func (s *AssistantService) generatePrompt(msgType comms.MessageType, lang string, vars map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a %s message in the language with BCP-47 tag %q.", strings.ReplaceAll(string(msgType), "_", " "), lang)

	if len(vars) > 0 {
		keys := make([]string, 0, len(vars))
		for k := range vars {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString(" Use these details:")
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%s;", k, vars[k])
		}
	}
	return b.String()
}

func (s *AssistantService) fallbackTemplate(ctx context.Context, msgType comms.MessageType, lang string, vars map[string]string) (string, error) {
	template, err := s.templateRepo.FindByTypeAndLanguage(ctx, msgType, lang)
	if err != nil {
		template, err = s.templateRepo.FindDefault(ctx, msgType)
		if err != nil {
			return "", shared.NewDomainError("NO_FALLBACK", "No template available for this message type")
		}
	}
	return template.Render(vars)
}

// translationKey hashes source text and target language so cache keys
// stay bounded regardless of message length
func translationKey(text, lang string) string {
	sum := sha256.Sum256([]byte(text + "|" + lang))
	return "ai:translation:" + hex.EncodeToString(sum[:])
}
