// Package embeddingstest provides deterministic embedders for tests.
package embeddingstest

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"
	"unicode"
)

// Concept projects text onto named concept axes: every token adds 1 to each axis listing it,
// tokens listed nowhere add OtherWeight to a trailing catch-all axis.
type Concept struct {
	Axes        [][]string
	OtherWeight float32
	calls       atomic.Int64
	texts       atomic.Int64
	lookup      map[string][]int
}

// NewConcept returns a Concept embedder tuned to the emergency taxonomy:
// a generic emergency axis followed by one axis per category in taxonomy order.
func NewConcept() *Concept {
	return NewConceptWithAxes([][]string{
		{"emergency", "emergencies", "disaster", "disasters", "safety", "safe", "preparedness", "prepare", "prepared",
			"response", "respond", "procedures", "evacuation", "evacuate", "rescue", "operations", "shelter",
			"drop", "cover", "hold", "hazard", "hazards", "danger", "warning", "survival", "first", "aid", "help"},
		{"earthquake", "earthquakes", "seismic", "tremor", "quake", "aftershock", "aftershocks", "shaking", "drop", "cover", "hold", "collapse"},
		{"flood", "floods", "flooded", "flooding", "flash", "drown", "inundation", "overflow", "rising", "water"},
		{"hurricane", "typhoon", "cyclone", "storm", "wind", "surge", "tropical"},
		{"wildfire", "fire", "forest", "brush", "smoke", "defensible"},
		{"tornado", "twister", "basement", "cellar", "cellars", "debris", "thunderstorms"},
		{"first", "aid", "bleeding", "wound", "injury", "cpr", "shock", "medical"},
		{"communication", "radio", "contacts", "alert", "broadcasting", "signals"},
		{"evacuation", "escape", "exits", "routes", "relocation", "zones"},
		{"purification", "drinking", "contamination", "hydration", "waterborne"},
		{"monsoon", "landslide", "tsunami", "regional", "local"},
	}, 0.05)
}

// NewConceptWithAxes returns a Concept embedder over custom axes.
func NewConceptWithAxes(axes [][]string, otherWeight float32) *Concept {
	c := &Concept{Axes: axes, OtherWeight: otherWeight, lookup: map[string][]int{}}
	for i, axis := range axes {
		for _, token := range axis {
			c.lookup[token] = append(c.lookup[token], i)
		}
	}
	return c
}

// Dim returns the vector dimension.
func (c *Concept) Dim() int { return len(c.Axes) + 1 }

// Model returns the embedder identifier.
func (c *Concept) Model() string { return "concept-test" }

// Calls returns the number of embedding calls served.
func (c *Concept) Calls() int { return int(c.calls.Load()) }

// Texts returns the number of texts embedded.
func (c *Concept) Texts() int { return int(c.texts.Load()) }

func (c *Concept) EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error) {
	c.calls.Add(1)
	c.texts.Add(int64(len(docs)))
	out := make([][]float32, len(docs))
	for i, doc := range docs {
		out[i] = c.embed(doc)
	}
	return out, nil
}

func (c *Concept) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	c.calls.Add(1)
	c.texts.Add(1)
	return c.embed(text), nil
}

func (c *Concept) embed(text string) []float32 {
	vec := make([]float32, c.Dim())
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool { return !unicode.IsLetter(r) })
	for _, token := range tokens {
		axes, ok := c.lookup[token]
		if !ok {
			vec[len(c.Axes)] += c.OtherWeight
			continue
		}
		for _, i := range axes {
			vec[i]++
		}
	}
	return vec
}

// ErrFailing is returned by Failing.
var ErrFailing = errors.New("embedding backend down")

// Failing always fails.
type Failing struct{}

func (Failing) EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error) {
	return nil, ErrFailing
}

func (Failing) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return nil, ErrFailing
}

// Static maps exact texts to vectors; unknown texts get Default.
type Static struct {
	Vectors map[string][]float32
	Default []float32
}

func (s *Static) EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error) {
	out := make([][]float32, len(docs))
	for i, doc := range docs {
		v, _ := s.EmbedQuery(ctx, doc)
		out[i] = v
	}
	return out, nil
}

func (s *Static) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	src, ok := s.Vectors[text]
	if !ok {
		src = s.Default
	}
	out := make([]float32, len(src))
	copy(out, src)
	return out, nil
}

// Blocking hangs until Release is closed, ignoring context cancellation.
type Blocking struct {
	Release chan struct{}
	Delay   time.Duration
}

func (b *Blocking) EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error) {
	b.wait()
	out := make([][]float32, len(docs))
	for i := range out {
		out[i] = []float32{1}
	}
	return out, nil
}

func (b *Blocking) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	b.wait()
	return []float32{1}, nil
}

func (b *Blocking) wait() {
	if b.Release != nil {
		<-b.Release
		return
	}
	time.Sleep(b.Delay)
}
