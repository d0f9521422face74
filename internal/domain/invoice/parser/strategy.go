package parser

import (
	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/issuer"
	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/record"
	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/sniffer"
)

// Strategy binds a template predicate to its extractors.
type Strategy struct {
	Name   string
	Match  func(text string) bool
	Header HeaderExtractor
	Lines  LineExtractor
}

type extractorPair struct {
	header HeaderExtractor
	lines  LineExtractor
}

var templateExtractors = map[string]extractorPair{
	sniffer.TemplateNavatec: {NavatecHeader, NavatecLines},
	sniffer.TemplateTribuCR: {TribuHeader, TribuLines},
	sniffer.TemplateSiigo:   {SiigoHeader, SiigoLines},
	sniffer.TemplateAlegra:  {AlegraHeader, AlegraLines},
}

// Registry is the ordered strategy table. Strategies are tried in the
// classifier's priority order and the first whose predicate holds wins;
// the generic strategy catches everything else.
type Registry struct {
	strategies []Strategy
	fallback   Strategy
}

// NewRegistry builds the strategy table from the classifier's templates.
// Templates without extractors are skipped. issuers may be nil.
func NewRegistry(classifier *sniffer.Classifier, issuers *issuer.Directory) *Registry {
	r := &Registry{
		fallback: Strategy{
			Name:   record.MethodGeneric,
			Match:  func(string) bool { return true },
			Header: GenericHeader(issuers),
			Lines:  GenericLines,
		},
	}
	for _, name := range classifier.Templates() {
		pair, ok := templateExtractors[name]
		if !ok {
			continue
		}
		r.strategies = append(r.strategies, Strategy{
			Name:   name,
			Match:  classifier.Predicate(name),
			Header: pair.header,
			Lines:  pair.lines,
		})
	}
	return r
}

// Select returns the strategy for text.
func (r *Registry) Select(text string) Strategy {
	for _, s := range r.strategies {
		if s.Match(text) {
			return s
		}
	}
	return r.fallback
}

// Strategies lists the template strategies in priority order.
func (r *Registry) Strategies() []Strategy {
	return append([]Strategy(nil), r.strategies...)
}

// Fallback returns the generic strategy.
func (r *Registry) Fallback() Strategy {
	return r.fallback
}
