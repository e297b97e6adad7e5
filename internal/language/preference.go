package language

import (
	"context"
	"errors"

	"github.com/serroba/linkclean/internal/store"
	"go.uber.org/zap"
)

// PreferenceKey is the storage key holding the selected language.
const PreferenceKey = "selectedLanguage"

// Preference persists the user's explicit language choice.
type Preference struct {
	kv     store.KV
	logger *zap.Logger
}

// NewPreference creates a preference backed by kv.
func NewPreference(kv store.KV, logger *zap.Logger) *Preference {
	return &Preference{kv: kv, logger: logger}
}

// Load returns the stored language, or false when none is stored or it is unusable.
func (p *Preference) Load(ctx context.Context) (Code, bool) {
	value, err := p.kv.Get(ctx, PreferenceKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			p.logger.Warn("failed to load language preference", zap.Error(err))
		}

		return "", false
	}

	c := Code(value)

	return c, IsSupported(c)
}

// Save stores c, normalised to a supported language.
func (p *Preference) Save(ctx context.Context, c Code) (Code, error) {
	c = Parse(string(c))

	if err := p.kv.Set(ctx, PreferenceKey, string(c)); err != nil {
		return c, err
	}

	return c, nil
}

// Resolve returns the stored preference when present, otherwise detects.
func Resolve(ctx context.Context, pref *Preference, detector *Detector, hint Hint) Result {
	if pref != nil {
		if c, ok := pref.Load(ctx); ok {
			return Result{Language: c, Source: SourcePreference}
		}
	}

	return detector.DetectWithSource(ctx, hint)
}
