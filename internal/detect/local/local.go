// Package local provides an offline Detector backed by whatlanggo. It is
// meant for development without an API key; its guesses are noticeably
// worse than the hosted service on short inputs.
package local

import (
	"context"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"

	"github.com/gonkalabs/detectlang-proxy-go/internal/detect"
)

// codeOverrides maps whatlanggo codes whose BCP 47 base differs from the code
// the hosted service reports.
var codeOverrides = map[string]string{
	"cmn": "zh",
}

// Detector guesses languages in-process.
type Detector struct {
	opts whatlanggo.Options
}

// New creates a Detector. When langs is non-empty only those languages are
// considered.
func New(langs ...whatlanggo.Lang) *Detector {
	d := &Detector{}
	if len(langs) == 0 {
		return d
	}
	d.opts.Whitelist = make(map[whatlanggo.Lang]bool, len(langs))
	for _, l := range langs {
		d.opts.Whitelist[l] = true
	}
	return d
}

// Detect returns at most one detection. Text whose script cannot be
// identified yields an empty slice.
func (d *Detector) Detect(ctx context.Context, text string) ([]detect.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info := whatlanggo.DetectWithOptions(text, d.opts)
	if info.Script == nil || info.Lang < 0 {
		return []detect.Detection{}, nil
	}

	return []detect.Detection{{
		Language:   normalizeCode(info.Lang.Iso6393()),
		IsReliable: info.IsReliable(),
		Confidence: info.Confidence * 100,
	}}, nil
}

// normalizeCode turns an ISO 639-3 code into the shortest BCP 47 base.
func normalizeCode(iso6393 string) string {
	if c, ok := codeOverrides[iso6393]; ok {
		return c
	}
	base, err := language.ParseBase(iso6393)
	if err != nil {
		return iso6393
	}
	return base.String()
}
