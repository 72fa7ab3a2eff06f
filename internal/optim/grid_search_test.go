package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/grainsim/internal/config"
)

func base() *config.Config {
	cfg := config.GetPreset("baseline")
	cfg.Run.FireTime = 0.5
	cfg.Ports[0].Segments = 48
	cfg.Outer.Segments = 48
	return cfg
}

func TestGridSize(t *testing.T) {
	g := NewGridSearch([]string{"a", "n"}, [][]float64{{1, 2, 3}, {4, 5}})
	if g.Size() != 6 {
		t.Errorf("size = %d, want 6", g.Size())
	}
	if NewGridSearch(nil, nil).Size() != 0 {
		t.Error("empty grid should have size 0")
	}
}

func TestSearchMaximizesImpulse(t *testing.T) {
	g := NewGridSearch([]string{"oxidizer_flow", "isp"}, [][]float64{{0.5, 1.0}, {160, 200}})
	g.Maximize = true
	params, best, candidates, err := g.Search(context.Background(), base(), "total_impulse")
	if err != nil {
		t.Fatal(err)
	}
	if len(candidates) != 4 {
		t.Fatalf("candidates = %d, want 4", len(candidates))
	}
	if params["oxidizer_flow"] != 1.0 || params["isp"] != 200 {
		t.Errorf("best params = %v", params)
	}
	for _, c := range candidates {
		if c.Value > best {
			t.Errorf("candidate %v beats best %v", c.Params, best)
		}
	}
}

func TestSearchMinimizes(t *testing.T) {
	g := NewGridSearch([]string{"oxidizer_flow"}, [][]float64{{0.4, 0.8, 1.2}})
	params, _, _, err := g.Search(context.Background(), base(), "peak_thrust")
	if err != nil {
		t.Fatal(err)
	}
	if params["oxidizer_flow"] != 0.4 {
		t.Errorf("best params = %v", params)
	}
}

func TestSearchSkipsInvalid(t *testing.T) {
	g := NewGridSearch([]string{"isp"}, [][]float64{{-1, 150}})
	g.Maximize = true
	params, _, candidates, err := g.Search(context.Background(), base(), "total_impulse")
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(candidates[0].Err, config.ErrInvalid) {
		t.Errorf("expected invalid config, got %v", candidates[0].Err)
	}
	if params["isp"] != 150 {
		t.Errorf("best params = %v", params)
	}
}

func TestSearchErrors(t *testing.T) {
	ctx := context.Background()
	if _, _, _, err := NewGridSearch([]string{"a"}, nil).Search(ctx, base(), "total_impulse"); err == nil {
		t.Error("expected range mismatch error")
	}
	if _, _, _, err := NewGridSearch([]string{"mass"}, [][]float64{{1}}).Search(ctx, base(), "total_impulse"); err == nil {
		t.Error("expected unknown parameter error")
	}
	if _, _, _, err := NewGridSearch([]string{"isp"}, [][]float64{{-1}}).Search(ctx, base(), "total_impulse"); !errors.Is(err, ErrNoFeasible) {
		t.Errorf("expected ErrNoFeasible, got %v", err)
	}
	if _, _, _, err := NewGridSearch([]string{"isp"}, [][]float64{{180}}).Search(ctx, base(), "bogus"); err == nil {
		t.Error("expected unknown metric error")
	}
}
