package audio

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ErrSynthesisUnavailable is returned when narration is not cached and no
// synthesizer is configured.
var ErrSynthesisUnavailable = errors.New("speech synthesis unavailable")

// AssetRef points at a stored narration.
type AssetRef struct {
	Hash      string    `json:"hash"`
	Language  string    `json:"language"`
	City      string    `json:"city,omitempty"`
	URL       string    `json:"url"`
	Bytes     int       `json:"bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// Hash returns the hex SHA-256 of the exact narration text.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// NormalizeLanguage canonicalizes a language code to [a-z0-9-]: it is
// lowercased, '_' becomes '-', and every other character is dropped.
// "pt_BR" and " PT-br " both become "pt-br".
func NormalizeLanguage(lang string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-':
			return r
		case r == '_':
			return '-'
		}
		return -1
	}, strings.ToLower(lang))
}

// Key is the content address of text spoken in lang.
func Key(text, lang string) string {
	return Hash(text) + ":" + NormalizeLanguage(lang)
}

// Store is the content-addressed narration cache. Get returns nil, nil on
// a miss.
type Store interface {
	Get(ctx context.Context, text, lang string) (*AssetRef, error)
	Put(ctx context.Context, text, lang, cityHint string, pcm []byte) (*AssetRef, error)
}

// Synthesizer turns text into raw PCM16 audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}

// Observer receives narration outcomes.
type Observer interface {
	AudioRequested(result string)
}

// Narrator serves narration from the store, synthesizing on a miss.
type Narrator struct {
	store    Store
	synth    Synthesizer
	observer Observer
	log      *slog.Logger
}

// NewNarrator constructs a Narrator. synth and observer may be nil.
func NewNarrator(store Store, synth Synthesizer, observer Observer, log *slog.Logger) *Narrator {
	return &Narrator{store: store, synth: synth, observer: observer, log: log}
}

// Narrate returns the asset for text in lang, synthesizing and storing it
// once per unique pair.
func (n *Narrator) Narrate(ctx context.Context, text, lang, cityHint string) (*AssetRef, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("narration text is empty")
	}

	ref, err := n.store.Get(ctx, text, lang)
	if err != nil {
		n.log.Warn("audio cache lookup failed", "lang", lang, "err", err)
	}
	if ref != nil {
		n.observe("hit")
		return ref, nil
	}

	if n.synth == nil {
		n.observe("unavailable")
		return nil, ErrSynthesisUnavailable
	}

	pcm, err := n.synth.Synthesize(ctx, text, lang)
	if err != nil {
		n.observe("error")
		return nil, fmt.Errorf("synthesizing narration: %w", err)
	}

	ref, err = n.store.Put(context.WithoutCancel(ctx), text, lang, cityHint, pcm)
	if err != nil {
		n.observe("error")
		return nil, fmt.Errorf("storing narration: %w", err)
	}

	n.observe("synthesized")
	return ref, nil
}

func (n *Narrator) observe(result string) {
	if n.observer != nil {
		n.observer.AudioRequested(result)
	}
}
