// Package similarity rates how close each posting is to a resume.
package similarity

import (
	"context"
	"fmt"
	"math"

	"github.com/amishk599/jobrank/internal/ai"
	"github.com/amishk599/jobrank/internal/scoring"
)

// Matcher scores each document against a resume. Results are in [0,1] and
// parallel to docs.
type Matcher interface {
	Similarity(ctx context.Context, resume string, docs []string) ([]float64, error)
}

// TFIDF fits a vocabulary over the resume and the documents on every call and
// compares l2-normalized TF-IDF vectors by cosine.
type TFIDF struct{}

// NewTFIDF returns a TF-IDF matcher.
func NewTFIDF() *TFIDF { return &TFIDF{} }

// Similarity implements Matcher.
func (TFIDF) Similarity(_ context.Context, resume string, docs []string) ([]float64, error) {
	corpus := make([][]string, 0, len(docs)+1)
	corpus = append(corpus, scoring.Tokenize(resume))
	for _, d := range docs {
		corpus = append(corpus, scoring.Tokenize(d))
	}

	// document frequency
	df := make(map[string]int)
	for _, toks := range corpus {
		seen := make(map[string]bool, len(toks))
		for _, tok := range toks {
			if !seen[tok] {
				seen[tok] = true
				df[tok]++
			}
		}
	}

	// smoothed idf: ln((1+n)/(1+df)) + 1
	n := float64(len(corpus))
	idf := make(map[string]float64, len(df))
	for tok, f := range df {
		idf[tok] = math.Log((1+n)/(1+float64(f))) + 1
	}

	vectors := make([]map[string]float64, len(corpus))
	for i, toks := range corpus {
		vectors[i] = tfidfVector(toks, idf)
	}

	out := make([]float64, len(docs))
	for i := range docs {
		out[i] = clamp01(sparseDot(vectors[0], vectors[i+1]))
	}
	return out, nil
}

func tfidfVector(tokens []string, idf map[string]float64) map[string]float64 {
	v := make(map[string]float64, len(tokens))
	for _, tok := range tokens {
		v[tok]++
	}
	var norm float64
	for tok, tf := range v {
		w := tf * idf[tok]
		v[tok] = w
		norm += w * w
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for tok := range v {
		v[tok] /= norm
	}
	return v
}

// sparseDot of two unit vectors is their cosine.
func sparseDot(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for tok, w := range a {
		dot += w * b[tok]
	}
	return dot
}

// Embedding compares provider embeddings by cosine.
type Embedding struct {
	provider ai.EmbeddingProvider
}

// NewEmbedding returns a matcher backed by provider.
func NewEmbedding(provider ai.EmbeddingProvider) *Embedding {
	return &Embedding{provider: provider}
}

// Similarity implements Matcher. Negative cosines are clamped to zero.
func (e *Embedding) Similarity(ctx context.Context, resume string, docs []string) ([]float64, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	inputs := make([]string, 0, len(docs)+1)
	inputs = append(inputs, resume)
	inputs = append(inputs, docs...)

	vecs, err := e.provider.Embed(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("embed resume and postings: %w", err)
	}
	if len(vecs) != len(inputs) {
		return nil, fmt.Errorf("embed resume and postings: got %d vectors for %d inputs", len(vecs), len(inputs))
	}

	out := make([]float64, len(docs))
	for i := range docs {
		out[i] = clamp01(cosine(vecs[0], vecs[i+1]))
	}
	return out, nil
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// clamp01 also absorbs float drift just past 1.
func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
