package zai

import "fmt"

const (
	MinTemperature     = 0.0
	MaxTemperature     = 2.0
	DefaultTemperature = 1.0

	MinMaxTokens     = 1
	MaxMaxTokens     = 32768
	DefaultMaxTokens = 4096

	MinTopP = 0.0
	MaxTopP = 1.0
)

// Options are the generation parameters accepted by the provider. Nil
// fields are omitted from the request body so the provider applies its own
// defaults. Stream is accepted for interface compatibility but is never
// sent; the adapter always waits for the full response body.
type Options struct {
	Temperature *float64
	MaxTokens   *int
	TopP        *float64
	Stream      bool
}

type OptionSetter func(*Options)

func WithTemperature(v float64) OptionSetter {
	return func(o *Options) { o.Temperature = &v }
}

func WithMaxTokens(v int) OptionSetter {
	return func(o *Options) { o.MaxTokens = &v }
}

func WithTopP(v float64) OptionSetter {
	return func(o *Options) { o.TopP = &v }
}

func WithStream(v bool) OptionSetter {
	return func(o *Options) { o.Stream = v }
}

// NewOptions builds a validated Options value. Bounds are enforced here,
// not at send time.
func NewOptions(setters ...OptionSetter) (Options, error) {
	var o Options
	for _, set := range setters {
		set(&o)
	}
	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

// DefaultOptions returns the documented defaults: temperature 1.0 and
// max_tokens 4096.
func DefaultOptions() Options {
	temperature := float64(DefaultTemperature)
	maxTokens := DefaultMaxTokens
	return Options{
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	}
}

func (o Options) Validate() error {
	if o.Temperature != nil && (*o.Temperature < MinTemperature || *o.Temperature > MaxTemperature) {
		return fmt.Errorf("temperature %v out of range [%v, %v]", *o.Temperature, MinTemperature, MaxTemperature)
	}
	if o.MaxTokens != nil && (*o.MaxTokens < MinMaxTokens || *o.MaxTokens > MaxMaxTokens) {
		return fmt.Errorf("max_tokens %d out of range [%d, %d]", *o.MaxTokens, MinMaxTokens, MaxMaxTokens)
	}
	if o.TopP != nil && (*o.TopP < MinTopP || *o.TopP > MaxTopP) {
		return fmt.Errorf("top_p %v out of range [%v, %v]", *o.TopP, MinTopP, MaxTopP)
	}
	return nil
}
