// Package geocode turns coordinates into a human-readable address by trying
// an ordered list of reverse-geocoding providers.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"civic-portal/internal/apperr"
	"civic-portal/internal/complaint"
	"civic-portal/internal/models"
)

// DefaultMinComponents is how many address parts (road, suburb, city, ...)
// count as a complete answer.
const DefaultMinComponents = 3

type Address struct {
	Display    string
	Components int
}

type Provider interface {
	Name() string
	Reverse(ctx context.Context, lat, lon float64) (Address, error)
}

type Resolver struct {
	providers     []Provider
	minComponents int
	log           zerolog.Logger
}

func NewResolver(log zerolog.Logger, providers ...Provider) *Resolver {
	return &Resolver{
		providers:     providers,
		minComponents: DefaultMinComponents,
		log:           log.With().Str("component", "geocode").Logger(),
	}
}

// FallbackAddress is the address used when no provider answers.
func FallbackAddress(lat, lon float64) string {
	return fmt.Sprintf("GPS Location: %.6f, %.6f", lat, lon)
}

// Lookup tries providers in order. The first complete address wins; if
// none is complete the most detailed partial one is returned. When every
// provider fails the error is an *apperr.GeocodeError.
func (r *Resolver) Lookup(ctx context.Context, lat, lon float64) (Address, error) {
	var (
		best  Address
		errs  []error
		tried int
	)
	for _, p := range r.providers {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		tried++
		addr, err := p.Reverse(ctx, lat, lon)
		if err != nil {
			r.log.Debug().Err(err).Str("provider", p.Name()).Msg("reverse geocode failed")
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		addr.Display = strings.TrimSpace(addr.Display)
		if addr.Display == "" {
			errs = append(errs, fmt.Errorf("%s: empty address", p.Name()))
			continue
		}
		if addr.Components >= r.minComponents {
			return addr, nil
		}
		if addr.Components > best.Components || best.Display == "" {
			best = addr
		}
	}
	if best.Display != "" {
		return best, nil
	}
	if len(errs) == 0 {
		errs = append(errs, errors.New("no providers configured"))
	}
	return Address{}, &apperr.GeocodeError{Attempts: tried, Err: errors.Join(errs...)}
}

// Resolve always yields a usable location for valid coordinates: geocoding
// failure degrades to FallbackAddress and is only logged.
func (r *Resolver) Resolve(ctx context.Context, lat, lon float64) (models.Location, error) {
	if !complaint.ValidCoordinates(lat, lon) {
		return models.Location{}, apperr.Invalid("location", "latitude/longitude out of range")
	}
	loc := models.Location{Latitude: lat, Longitude: lon}
	addr, err := r.Lookup(ctx, lat, lon)
	if err != nil {
		r.log.Warn().Err(err).Float64("lat", lat).Float64("lon", lon).Msg("using coordinate fallback address")
		loc.Address = FallbackAddress(lat, lon)
		return loc, nil
	}
	loc.Address = addr.Display
	return loc, nil
}
