package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"watchflip/internal/domain"
	applog "watchflip/internal/log"
	"watchflip/internal/workers"
)

const (
	ProviderAnthropic  = "anthropic"
	ProviderPerplexity = "perplexity"

	anthropicURL  = "https://api.anthropic.com/v1/messages"
	perplexityURL = "https://api.perplexity.ai/chat/completions"
)

// Options configures a Live analyzer. Endpoint and Model fall back to the
// provider defaults when empty.
type Options struct {
	Provider string
	APIKey   string
	Endpoint string
	Model    string
	Timeout  time.Duration
	Retry    workers.Retry
}

// Live calls a hosted LLM and falls back to Heuristic when the call or the
// reply parsing fails.
type Live struct {
	opts Options
}

func NewLive(opts Options) (*Live, error) {
	switch opts.Provider {
	case ProviderAnthropic:
		if opts.Endpoint == "" {
			opts.Endpoint = anthropicURL
		}
		if opts.Model == "" {
			opts.Model = "claude-3-opus-20240229"
		}
	case ProviderPerplexity:
		if opts.Endpoint == "" {
			opts.Endpoint = perplexityURL
		}
		if opts.Model == "" {
			opts.Model = "llama-3.1-sonar-large-128k-online"
		}
	default:
		return nil, fmt.Errorf("unknown analyzer provider %q", opts.Provider)
	}
	if opts.APIKey == "" {
		return nil, errors.New("analyzer api key is empty")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Live{opts: opts}, nil
}

const systemPrompt = "You are an expert watch dealer and appraiser specializing in luxury timepieces. " +
	"Provide detailed, accurate analysis in JSON format."

func prompt(l domain.ListingSummary) string {
	price := "Not provided"
	if l.Price.IsPositive() {
		price = "$" + l.Price.StringFixed(2)
	}
	cond := l.Condition
	if cond == "" {
		cond = "Not specified"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this watch listing for a resale/flipping business:\n\n")
	fmt.Fprintf(&b, "Title: %s\nDescription: %s\nListed Price: %s\nCondition: %s\n", l.Title, l.Description, price, cond)
	if l.Brand != "" || l.Model != "" {
		fmt.Fprintf(&b, "Brand/Model: %s %s %s\n", l.Brand, l.Model, l.ReferenceNumber)
	}
	b.WriteString(`
Respond with JSON only, using this structure:
{
  "recommendation": "buy|pass|maybe",
  "confidence": 85,
  "explanation": "detailed explanation...",
  "estimatedMarketValue": {"asIs": 1200, "cleaned": 1400, "serviced": 1600},
  "maintenanceCost": 200,
  "estimatedROI": 25.5,
  "timeToSell": "3-5 weeks",
  "potentialIssues": ["issue1"],
  "comparableListings": ["ref1"]
}`)
	return b.String()
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicReply struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type chatReply struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

func (a *Live) request(l domain.ListingSummary) *fiber.Agent {
	agent := fiber.Post(a.opts.Endpoint).Timeout(a.opts.Timeout)
	if a.opts.Provider == ProviderAnthropic {
		agent.Set("x-api-key", a.opts.APIKey)
		agent.Set("anthropic-version", "2023-06-01")
		return agent.JSON(fiber.Map{
			"model":      a.opts.Model,
			"max_tokens": 2000,
			"system":     systemPrompt,
			"messages":   []message{{Role: "user", Content: prompt(l)}},
		})
	}
	agent.Set("Authorization", "Bearer "+a.opts.APIKey)
	return agent.JSON(fiber.Map{
		"model": a.opts.Model,
		"messages": []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt(l)},
		},
		"temperature": 0.2,
	})
}

func (a *Live) text(body []byte) (string, error) {
	if a.opts.Provider == ProviderAnthropic {
		var r anthropicReply
		if err := json.Unmarshal(body, &r); err != nil {
			return "", err
		}
		for _, c := range r.Content {
			if c.Type == "text" {
				return c.Text, nil
			}
		}
		return "", errors.New("no text content in reply")
	}
	var r chatReply
	if err := json.Unmarshal(body, &r); err != nil {
		return "", err
	}
	if len(r.Choices) == 0 {
		return "", errors.New("no choices in reply")
	}
	return r.Choices[0].Message.Content, nil
}

func (a *Live) call(ctx context.Context, l domain.ListingSummary) (domain.Analysis, error) {
	var out domain.Analysis
	err := a.opts.Retry.Do(ctx, "analyze."+a.opts.Provider, func(context.Context) error {
		code, body, errs := a.request(l).Bytes()
		if len(errs) > 0 {
			return errors.Join(errs...)
		}
		switch {
		case code == fiber.StatusUnauthorized || code == fiber.StatusForbidden || code == fiber.StatusBadRequest:
			return fmt.Errorf("analyzer returned %d: %w", code, workers.ErrPermanent)
		case code >= 300:
			return fmt.Errorf("analyzer returned %d", code)
		}
		txt, err := a.text(body)
		if err != nil {
			return fmt.Errorf("decode reply: %w", err)
		}
		out, err = ParseReply(txt)
		return err
	})
	return out, err
}

// Analyze never fails for transport errors; it degrades to Heuristic.
func (a *Live) Analyze(ctx context.Context, l domain.ListingSummary) (domain.Analysis, error) {
	start := time.Now()
	res, err := a.call(ctx, l)
	applog.Timed("analyzer."+a.opts.Provider, start, err, map[string]any{"title": l.Title})
	if err != nil {
		if ctx.Err() != nil {
			return domain.Analysis{}, ctx.Err()
		}
		h := Heuristic(l)
		h.Explanation = "Live analysis failed; showing an offline estimate. " + h.Explanation
		return h, nil
	}
	res.Source = a.opts.Provider
	return res, nil
}

var reJSON = regexp.MustCompile(`\{[\s\S]*\}`)

// ParseReply pulls the first JSON object out of free text and normalises it.
func ParseReply(txt string) (domain.Analysis, error) {
	m := reJSON.FindString(txt)
	if m == "" {
		return domain.Analysis{}, fmt.Errorf("could not parse AI response: %w", workers.ErrPermanent)
	}
	var a domain.Analysis
	if err := json.Unmarshal([]byte(m), &a); err != nil {
		return domain.Analysis{}, fmt.Errorf("could not parse AI response: %v: %w", err, workers.ErrPermanent)
	}
	a.Recommendation = domain.Recommendation(strings.ToLower(strings.TrimSpace(string(a.Recommendation))))
	if !a.Recommendation.Valid() {
		a.Recommendation = domain.RecommendMaybe
	}
	if a.Confidence < 0 {
		a.Confidence = 0
	}
	if a.Confidence > 100 {
		a.Confidence = 100
	}
	if a.PotentialIssues == nil {
		a.PotentialIssues = []string{}
	}
	if a.ComparableListings == nil {
		a.ComparableListings = []string{}
	}
	return a, nil
}
