package geolocation

import "context"

// StaticProvider wraps a fix the client already obtained on the device and
// shipped inside the request payload. A nil fix means the device reported
// location services unavailable.
type StaticProvider struct {
	fix *Position
}

func NewStaticProvider(fix *Position) *StaticProvider {
	return &StaticProvider{fix: fix}
}

func (p *StaticProvider) CurrentPosition(ctx context.Context) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, ErrPositionTimeout
	}
	if p.fix == nil {
		return Position{}, ErrPositionUnavailable
	}
	if err := p.fix.Validate(); err != nil {
		return Position{}, ErrPositionUnavailable
	}
	return *p.fix, nil
}
