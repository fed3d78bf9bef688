package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/wolfman30/inmobiliaria-premium/internal/config"
	"github.com/wolfman30/inmobiliaria-premium/internal/conversation"
	"github.com/wolfman30/inmobiliaria-premium/internal/notify"
	"github.com/wolfman30/inmobiliaria-premium/internal/observability/metrics"
	"github.com/wolfman30/inmobiliaria-premium/pkg/logging"
)

// AWSConfigLoader loads the shared AWS configuration on demand so that
// deployments without Bedrock or SES never touch the credential chain.
type AWSConfigLoader func(ctx context.Context) (aws.Config, error)

// BuildLLMClient selects the language model backend from LLM_PROVIDER.
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, loadAWS AWSConfigLoader, logger *logging.Logger) (conversation.LLMClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.LLMProvider {
	case "", "gemini":
		client, err := conversation.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: gemini client: %w", err)
		}
		logger.Info("llm provider configured", "provider", "gemini", "model", cfg.GeminiModel)
		return client, nil

	case "openai":
		client, err := conversation.NewOpenAILLMClientFromKey(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: openai client: %w", err)
		}
		logger.Info("llm provider configured", "provider", "openai", "model", cfg.OpenAIModel)
		return client, nil

	case "bedrock":
		if strings.TrimSpace(cfg.BedrockModelID) == "" {
			return nil, fmt.Errorf("bootstrap: BEDROCK_MODEL_ID is required for the bedrock provider")
		}
		if loadAWS == nil {
			return nil, fmt.Errorf("bootstrap: aws config loader is required for the bedrock provider")
		}
		awsCfg, err := loadAWS(ctx)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		logger.Info("llm provider configured", "provider", "bedrock", "model", cfg.BedrockModelID)
		return conversation.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID), nil

	default:
		return nil, fmt.Errorf("bootstrap: unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
}

// BuildEmailSender returns the configured e-mail backend, falling back to a
// stub that only logs.
func BuildEmailSender(ctx context.Context, cfg *appconfig.Config, loadAWS AWSConfigLoader, logger *logging.Logger) notify.AlertSender {
	if logger == nil {
		logger = logging.Default()
	}
	switch cfg.EmailProvider {
	case "sendgrid":
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, logger); sender != nil {
			return sender
		}
		logger.Warn("EMAIL_PROVIDER=sendgrid but SENDGRID_API_KEY is empty; using stub sender")
	case "ses":
		if loadAWS != nil {
			awsCfg, err := loadAWS(ctx)
			if err == nil {
				return notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
					FromEmail:        cfg.EmailFrom,
					FromName:         cfg.EmailFromName,
					ConfigurationSet: cfg.SESConfigSet,
				}, logger)
			}
			logger.Warn("ses unavailable; using stub sender", "error", err)
		}
	}
	return notify.NewStubEmailSender(logger)
}

// ConversationDeps groups what the chat service needs from the rest of the app.
type ConversationDeps struct {
	LLM         conversation.LLMClient
	Sessions    conversation.SessionStore
	TurnLocker  conversation.TurnLocker
	Leads       conversation.LeadCreator
	Notifier    conversation.LeadNotifier
	Metrics     *metrics.ConversationMetrics
	LeadMetrics *metrics.LeadMetrics
}

// BuildConversationService assembles the qualification chat service.
func BuildConversationService(cfg *appconfig.Config, deps ConversationDeps, logger *logging.Logger) (*conversation.Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if deps.LLM == nil || deps.Sessions == nil || deps.Leads == nil {
		return nil, fmt.Errorf("bootstrap: llm, session store and lead store are required")
	}

	opts := []conversation.Option{
		conversation.WithModel("", int32(cfg.LLMMaxTokens), float32(cfg.LLMTemperature)),
		conversation.WithTopP(float32(cfg.LLMTopP)),
		conversation.WithMetrics(deps.Metrics),
		conversation.WithLeadMetrics(deps.LeadMetrics),
	}
	if deps.TurnLocker != nil {
		opts = append(opts, conversation.WithTurnLocker(deps.TurnLocker))
	}
	if deps.Notifier != nil {
		opts = append(opts, conversation.WithNotifier(deps.Notifier))
	}
	return conversation.NewService(deps.LLM, deps.Sessions, deps.Leads, logger, opts...), nil
}
