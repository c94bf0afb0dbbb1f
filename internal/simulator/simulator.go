// Package simulator generates synthetic stove telemetry and submits it to a
// running backend, for demos and load checks.
package simulator

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"cookstove_tracker/internal/logger"
	"cookstove_tracker/internal/usage"
)

// Household cooking profile.
const (
	MealsPerDay     = 3.0
	MinutesPerMeal  = 25.0
	FuelKgPerMinute = 0.03
	MaxFuelKg       = 999.99
)

// Device is a simulated stove. An empty APIKey submits over the open path.
type Device struct {
	StoveID string
	APIKey  string
}

// ParseDevices reads "STOVE_ID" or "STOVE_ID:API_KEY" entries.
func ParseDevices(specs []string) ([]Device, error) {
	out := make([]Device, 0, len(specs))
	for _, s := range specs {
		id, key, _ := strings.Cut(strings.TrimSpace(s), ":")
		if id == "" {
			return nil, fmt.Errorf("invalid device %q, expected STOVE_ID[:API_KEY]", s)
		}
		out = append(out, Device{StoveID: id, APIKey: key})
	}
	return out, nil
}

// Reading is the telemetry body accepted by the ingest endpoints.
type Reading struct {
	StoveID       string  `json:"stoveId"`
	Date          string  `json:"date"`
	CookingEvents int64   `json:"cookingEvents"`
	TotalMinutes  int64   `json:"totalMinutes"`
	FuelUsedKg    float64 `json:"fuelUsedKg"`
}

// Generator produces readings with a meal-time daily pattern.
type Generator struct {
	rng        *rand.Rand
	mealBias   float64 // household size effect on meal count
	efficiency float64 // stove efficiency effect on fuel per minute
}

func NewGenerator(seed uint64) *Generator {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return &Generator{
		rng:        rng,
		mealBias:   0.8 + rng.Float64()*0.4,
		efficiency: 0.85 + rng.Float64()*0.3,
	}
}

// mealFactor peaks around breakfast, lunch and dinner hours.
func mealFactor(hour int) float64 {
	best := 12.0
	for _, peak := range []float64{7, 13, 19} {
		best = math.Min(best, math.Abs(float64(hour)-peak))
	}
	return math.Exp(-best * best / 4)
}

// Next returns one reading for stoveID at t.
func (g *Generator) Next(stoveID string, t time.Time) Reading {
	expected := MealsPerDay / 3 * g.mealBias * (0.2 + mealFactor(t.Hour()))
	events := int64(math.Round(expected + (g.rng.Float64()-0.5)*0.8))
	if events < 0 {
		events = 0
	}

	var minutes int64
	for i := int64(0); i < events; i++ {
		minutes += int64(math.Round(MinutesPerMeal * (0.6 + g.rng.Float64()*0.8)))
	}

	fuel := float64(minutes) * FuelKgPerMinute / g.efficiency * (0.9 + g.rng.Float64()*0.2)
	fuel = math.Min(usage.Round2(fuel), MaxFuelKg)

	return Reading{
		StoveID:       stoveID,
		Date:          t.Format(usage.DateLayout),
		CookingEvents: events,
		TotalMinutes:  minutes,
		FuelUsedKg:    fuel,
	}
}

// Submitter delivers a reading on behalf of a device.
type Submitter interface {
	Submit(ctx context.Context, d Device, r Reading) error
}

// Simulator drives a set of devices on a ticker.
type Simulator struct {
	devices []Device
	gen     *Generator
	submit  Submitter
	log     *logger.Logger
}

func New(devices []Device, submit Submitter, gen *Generator, log *logger.Logger) *Simulator {
	return &Simulator{devices: devices, gen: gen, submit: submit, log: log}
}

// Run ticks at the given interval until ctx is canceled or rounds ticks have
// passed (rounds <= 0 means no limit).
func (s *Simulator) Run(ctx context.Context, tick time.Duration, rounds int) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for n := 0; rounds <= 0 || n < rounds; n++ {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.Tick(ctx, now)
		}
	}
}

// Tick submits one reading per device and returns how many were accepted.
// Failures are logged and do not stop the round.
func (s *Simulator) Tick(ctx context.Context, now time.Time) int {
	sent := 0
	for _, d := range s.devices {
		r := s.gen.Next(d.StoveID, now)
		if err := s.submit.Submit(ctx, d, r); err != nil {
			if s.log != nil {
				s.log.Warnw("simulate_submit_failed", "stove_id", d.StoveID, "err", err)
			}
			continue
		}
		sent++
		if s.log != nil {
			s.log.Debugw("simulate_submitted", "stove_id", d.StoveID, "date", r.Date,
				"cooking_events", r.CookingEvents, "fuel_used_kg", r.FuelUsedKg)
		}
	}
	return sent
}
