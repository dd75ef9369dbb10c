package webfonts

import (
	"golang.org/x/sync/errgroup"
)

// Normalizer flattens a theme typography configuration into font faces ready
// for registration.
//
// It never mutates its input and never registers anything itself; callers
// hand the returned faces to a registrar.
type Normalizer struct {
	resolve      BaseURIResolver
	onDiagnostic func(Diagnostic)
	workers      int
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithDiagnosticSink delivers every diagnostic to fn, in output order.
func WithDiagnosticSink(fn func(Diagnostic)) Option {
	return func(n *Normalizer) { n.onDiagnostic = fn }
}

// WithWorkers processes families on up to n goroutines. Output order does
// not depend on n.
func WithWorkers(n int) Option {
	return func(nz *Normalizer) { nz.workers = n }
}

// NewNormalizer returns a Normalizer that resolves theme-relative src entries
// through resolve.
func NewNormalizer(resolve BaseURIResolver, opts ...Option) *Normalizer {
	n := &Normalizer{resolve: resolve, workers: 1}
	for _, opt := range opts {
		opt(n)
	}
	if n.workers < 1 {
		n.workers = 1
	}
	return n
}

// familyResult holds the output of one family so parallel runs can be
// reassembled by index.
type familyResult struct {
	faces      []FontFace
	diagnostic *Diagnostic
}

type familyJob struct {
	origin string
	family FontFamilyEntry
}

// Normalize returns the normalized faces and diagnostics in traversal order:
// origins, then families, then faces.
func (n *Normalizer) Normalize(cfg *ThemeTypographyConfig) ([]FontFace, []Diagnostic) {
	if cfg.FamilyCount() == 0 {
		return nil, nil
	}

	jobs := make([]familyJob, 0, cfg.FamilyCount())
	for _, origin := range cfg.Origins {
		for _, family := range origin.Families {
			jobs = append(jobs, familyJob{origin: origin.Name, family: family})
		}
	}

	results := make([]familyResult, len(jobs))
	if n.workers == 1 || len(jobs) == 1 {
		for i, job := range jobs {
			results[i] = n.normalizeFamily(job.origin, job.family)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(n.workers)
		for i, job := range jobs {
			g.Go(func() error {
				results[i] = n.normalizeFamily(job.origin, job.family)
				return nil
			})
		}
		_ = g.Wait()
	}

	var faces []FontFace
	var diagnostics []Diagnostic
	for _, r := range results {
		faces = append(faces, r.faces...)
		if r.diagnostic != nil {
			diagnostics = append(diagnostics, *r.diagnostic)
			if n.onDiagnostic != nil {
				n.onDiagnostic(*r.diagnostic)
			}
		}
	}
	return faces, diagnostics
}

func (n *Normalizer) normalizeFamily(origin string, family FontFamilyEntry) familyResult {
	if family.Provider != nil {
		if len(family.FontFaces) == 0 {
			d := missingFontFaces(origin, family)
			return familyResult{diagnostic: &d}
		}
		faces := make([]FontFace, 0, len(family.FontFaces))
		for _, face := range family.FontFaces {
			face = face.Clone()
			face.Set(KeyProvider, *family.Provider)
			faces = append(faces, n.NormalizeFace(face))
		}
		return familyResult{faces: faces}
	}

	// Faces without a provider are locally hosted and registered elsewhere.
	var faces []FontFace
	for _, face := range family.FontFaces {
		if face.Declares(KeyProvider) {
			faces = append(faces, n.NormalizeFace(face))
		}
	}
	return familyResult{faces: faces}
}

// NormalizeFace resolves theme-relative src entries and kebab-cases keys.
// Applying it to an already normalized face is a no-op.
func (n *Normalizer) NormalizeFace(face FontFace) FontFace {
	return KebabCaseKeys(ResolveFontFaceURI(face, n.resolve))
}
