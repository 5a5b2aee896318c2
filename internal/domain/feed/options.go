// Package feed implements the rank/filter pipeline for the event list.
package feed

// Option applies a configuration option to the Processor.
type Option func(*Processor)

// WithProximityWindow sets the hysteresis band, in kilometers, within which
// two distances are treated as equal by the proximity tier.
func WithProximityWindow(km float64) Option {
	return func(p *Processor) {
		if km > 0 {
			p.proximityWindowKM = km
		}
	}
}

// WithDateLayouts sets the layouts tried when parsing event date strings.
func WithDateLayouts(layouts ...string) Option {
	return func(p *Processor) {
		if len(layouts) > 0 {
			p.dateLayouts = layouts
		}
	}
}
