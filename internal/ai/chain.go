package ai

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spigell/liquidhire/internal/logger"
	"github.com/spigell/liquidhire/internal/utils"
	"go.uber.org/zap"
)

const defaultMaxLogLength = 200

// Chain tries providers in order until one returns non-empty text.
type Chain struct {
	providers []Provider
	logger    *zap.Logger
	maxLogLen int
	timeout   time.Duration
}

// ChainOption customizes a Chain.
type ChainOption func(*Chain)

// WithMaxLogLength limits prompt and response previews in debug logs.
func WithMaxLogLength(n int) ChainOption {
	return func(c *Chain) {
		if n > 0 {
			c.maxLogLen = n
		}
	}
}

// WithTimeout bounds every single provider call.
func WithTimeout(d time.Duration) ChainOption {
	return func(c *Chain) {
		c.timeout = d
	}
}

// NewChain returns a fallback chain over the given providers. An empty chain
// is valid and never produces a result.
func NewChain(log *zap.Logger, providers []Provider, opts ...ChainOption) *Chain {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Chain{
		providers: providers,
		logger:    log,
		maxLogLen: defaultMaxLogLength,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Len returns the number of candidates.
func (c *Chain) Len() int {
	return len(c.providers)
}

// Candidates returns "provider/model" labels in priority order.
func (c *Chain) Candidates() []string {
	labels := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		labels = append(labels, p.Name()+"/"+p.Model())
	}
	return labels
}

// Generate runs the chain sequentially. It never returns an error: when every
// candidate fails ok is false and the last error is only logged.
func (c *Chain) Generate(ctx context.Context, conv Conversation, opts Options) (string, bool) {
	if len(c.providers) == 0 {
		c.logger.Warn("no generation providers configured")
		return "", false
	}

	var lastErr error
	for i, p := range c.providers {
		log := logger.WithCommonFields(c.logger, p.Name(), p.Model())
		log.Debug("generate request",
			zap.Int("candidate", i+1),
			zap.Bool("json", opts.JSON),
			zap.Int("messages", len(conv.Messages)),
			zap.String("last_message_preview", utils.TruncateForLog(lastText(conv), c.maxLogLen)),
		)

		text, err := c.call(ctx, p, conv, opts)
		if err == nil && strings.TrimSpace(text) == "" {
			err = ErrEmptyResponse
		}
		if err != nil {
			lastErr = err
			log.Warn("candidate failed, trying next", zap.Int("candidate", i+1), zap.Error(err))
			continue
		}

		log.Debug("generate response",
			zap.Int("response_length", utf8.RuneCountInString(text)),
			zap.String("response_preview", utils.TruncateForLog(text, c.maxLogLen)),
		)
		return text, true
	}

	c.logger.Warn("all generation candidates failed",
		zap.Strings("candidates", c.Candidates()),
		zap.Error(lastErr),
	)
	return "", false
}

func (c *Chain) call(ctx context.Context, p Provider, conv Conversation, opts Options) (text string, err error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = errors.New("provider panicked")
			c.logger.Error("provider panic", zap.Any("panic", r))
		}
	}()

	return p.Generate(ctx, conv, opts)
}

func lastText(conv Conversation) string {
	if len(conv.Messages) == 0 {
		return ""
	}
	return conv.Messages[len(conv.Messages)-1].Text
}
