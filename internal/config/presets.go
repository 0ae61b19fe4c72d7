package config

import "sort"

var Presets = map[string]*Config{
	"drift": {
		Grid:   GridConfig{Width: 48, Height: 24},
		Solver: SolverConfig{Iterations: 4, Restitution: 0.5, WarmupPasses: 4},
		Scene: SceneConfig{Objects: []ObjectConfig{
			{Shape: "rect", X: 4, Y: 8, W: 5, H: 5, VX: 1},
		}},
		Run: RunConfig{Steps: 30},
	},
	"collide": {
		Grid:   GridConfig{Width: 48, Height: 24},
		Solver: SolverConfig{Iterations: 4, Restitution: 0.5, WarmupPasses: 4},
		Scene: SceneConfig{Objects: []ObjectConfig{
			{Shape: "rect", X: 10, Y: 9, W: 6, H: 6, VX: 1},
			{Shape: "rect", X: 30, Y: 10, W: 6, H: 6, VX: -1},
		}},
		Run: RunConfig{Steps: 40},
	},
	"spin": {
		Grid:   GridConfig{Width: 40, Height: 40, Wrap: true},
		Solver: SolverConfig{Iterations: 4, Restitution: 0.3, WarmupPasses: 6, Diagonal: true},
		Scene: SceneConfig{Objects: []ObjectConfig{
			{Shape: "rect", X: 12, Y: 18, W: 16, H: 4, Omega: 0.05},
			{Shape: "disc", X: 6, Y: 6, Radius: 3, VX: 0.5, VY: 0.5},
		}},
		Run: RunConfig{Steps: 120},
	},
	"billiards": {
		Grid:   GridConfig{Width: 64, Height: 32},
		Solver: SolverConfig{Iterations: 4, Restitution: 0.9, WarmupPasses: 4},
		Scene: SceneConfig{Objects: []ObjectConfig{
			{Shape: "disc", X: 8, Y: 16, Radius: 3, VX: 1.5},
			{Shape: "disc", X: 30, Y: 16, Radius: 3},
			{Shape: "disc", X: 37, Y: 12, Radius: 3},
			{Shape: "disc", X: 37, Y: 20, Radius: 3},
		}},
		Run: RunConfig{Steps: 80},
	},
	"crowd": {
		Grid:   GridConfig{Width: 96, Height: 64, Wrap: true},
		Solver: SolverConfig{Iterations: 4, Restitution: 0.5, WarmupPasses: 4, CollisionCapacity: 4096},
		Scene:  SceneConfig{Random: 24},
		Run:    RunConfig{Steps: 200, Seed: 7},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.Scene.Objects = append([]ObjectConfig(nil), p.Scene.Objects...)
	if cfg.Solver.MinChunk == 0 {
		cfg.Solver.MinChunk = DefaultMinChunk
	}
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
