package mlhttp

import "github.com/custodia-labs/pii-detect-core/internal/core/ports/driven"

var _ driven.MLClientFactory = (*Factory)(nil)

// defaultMaxSequenceLength and defaultMaxLabelsPerCall are used when the
// operator doesn't override them via runtime configuration; they match
// the batch/window sizes the detector adapters already assume.
const (
	defaultMaxSequenceLength = 512
	defaultMaxLabelsPerCall  = 32
)

// Factory builds TaggerClient/RecognizerClient instances bound to HTTP
// endpoints. A blank endpoint leaves the corresponding detector family
// unavailable rather than failing process startup.
type Factory struct {
	MaxSequenceLength int
	MaxLabelsPerCall  int
}

// NewFactory builds a Factory with default batch sizes.
func NewFactory() *Factory {
	return &Factory{
		MaxSequenceLength: defaultMaxSequenceLength,
		MaxLabelsPerCall:  defaultMaxLabelsPerCall,
	}
}

// CreateTaggerClient builds a TaggerClient from an endpoint URL. Returns
// nil, nil if endpoint is empty.
func (f *Factory) CreateTaggerClient(endpoint string) (driven.TaggerClient, error) {
	if endpoint == "" {
		return nil, nil
	}
	return NewTaggerClient(endpoint, f.MaxSequenceLength), nil
}

// CreateRecognizerClient builds a RecognizerClient from an endpoint URL.
// Returns nil, nil if endpoint is empty.
func (f *Factory) CreateRecognizerClient(endpoint string) (driven.RecognizerClient, error) {
	if endpoint == "" {
		return nil, nil
	}
	return NewRecognizerClient(endpoint, f.MaxLabelsPerCall), nil
}
