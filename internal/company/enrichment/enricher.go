package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/insightdesk/internal/company/models"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrMalformedOutput reports a completion that is not a JSON object.
var ErrMalformedOutput = errors.New("malformed enrichment output")

// Config tunes throttling and retries of outbound enrichment calls.
type Config struct {
	RequestsPerSecond float64
	Burst             int
	MaxRetries        uint64
	InitialBackoff    time.Duration
}

// Enricher turns a company name into a profile by asking a Completer.
type Enricher struct {
	completer  Completer
	limiter    *rate.Limiter
	newBackOff func() backoff.BackOff
	logger     *zap.Logger
}

func NewEnricher(completer Completer, cfg Config, logger *zap.Logger) *Enricher {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Enricher{
		completer: completer,
		limiter:   rate.NewLimiter(limit, burst),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			if cfg.InitialBackoff > 0 {
				b.InitialInterval = cfg.InitialBackoff
			}
			return backoff.WithMaxRetries(b, cfg.MaxRetries)
		},
		logger: logger.Named("enricher"),
	}
}

// Enrich returns the profile the model reports for name. Unknown keys
// are dropped, values are coerced to each field's kind and the name is
// pinned to the one requested. Values are not checked for accuracy.
func (en *Enricher) Enrich(ctx context.Context, name string) (*models.Company, error) {
	var company *models.Company
	attempt := 0

	op := func() error {
		attempt++
		if err := en.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		raw, err := en.completer.Complete(ctx, systemPrompt, userPrompt(name))
		if err != nil {
			en.logger.Warn("Enrichment attempt failed",
				zap.String("name", name),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return err
		}

		company, err = decodeProfile(raw)
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(en.newBackOff(), ctx)); err != nil {
		return nil, fmt.Errorf("enrich %q: %w", name, err)
	}

	company.Name = name
	company.ClearBookkeeping()
	en.logger.Info("Company enriched", zap.String("name", name), zap.Int("attempts", attempt))
	return company, nil
}

var systemPrompt = buildSystemPrompt()

func buildSystemPrompt() string {
	var b strings.Builder
	b.WriteString("You are a business intelligence analyst. Reply with one JSON object describing the company ")
	b.WriteString("the user names, using only these keys:\n")
	for _, f := range models.Fields() {
		fmt.Fprintf(&b, "- %s (%s)\n", f.Name, kindHint(f.Kind))
	}
	b.WriteString("Use null when a value is unknown. Return only JSON.")
	return b.String()
}

func kindHint(k models.Kind) string {
	switch k {
	case models.KindInt:
		return "integer"
	case models.KindFloat:
		return "decimal rating"
	case models.KindList:
		return "array of strings"
	case models.KindSWOT:
		return "object with strengths, weaknesses, opportunities, threats arrays"
	case models.KindType:
		return "one of SUPPLIER, COMPETITOR, PARTNER, TARGET, CUSTOMER"
	default:
		return "string"
	}
}

func userPrompt(name string) string {
	return "Get comprehensive information for company: " + name
}

// decodeProfile parses a model reply into a Company, tolerating markdown
// fences and loosely typed values.
func decodeProfile(raw string) (*models.Company, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(stripFences(raw)), &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	clean := make(map[string]any, len(obj))
	for key, value := range obj {
		f, ok := models.LookupField(key)
		if !ok {
			continue
		}
		if v, ok := coerce(f.Kind, value); ok {
			clean[key] = v
		}
	}

	data, err := json.Marshal(clean)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	var company models.Company
	if err := json.Unmarshal(data, &company); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return &company, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// coerce converts a decoded JSON value to the shape of kind. The second
// result is false when the value cannot be represented and is dropped.
func coerce(kind models.Kind, v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	switch kind {
	case models.KindText:
		return asText(v)
	case models.KindType:
		s, ok := asText(v)
		if !ok {
			return nil, false
		}
		t := models.CompanyType(strings.ToUpper(s.(string)))
		return string(t), t.Valid()
	case models.KindInt:
		f, ok := asNumber(v)
		if !ok {
			return nil, false
		}
		return int(f), true
	case models.KindFloat:
		return asNumber(v)
	case models.KindList:
		return asList(v)
	case models.KindSWOT:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		out := map[string]any{}
		for _, key := range []string{"strengths", "weaknesses", "opportunities", "threats"} {
			if l, ok := asList(m[key]); ok {
				out[key] = l
			}
		}
		return out, true
	}
	return nil, false
}

func asText(v any) (any, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := asText(item); ok && s.(string) != "" {
				parts = append(parts, s.(string))
			}
		}
		return strings.Join(parts, ", "), true
	}
	return nil, false
}

func asNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

func asList(v any) ([]string, bool) {
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil, false
		}
		return []string{t}, true
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := asText(item); ok && s.(string) != "" {
				out = append(out, s.(string))
			}
		}
		return out, true
	}
	return nil, false
}
