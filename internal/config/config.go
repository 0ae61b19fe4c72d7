package config

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/cellbody/internal/dynamo"
	"github.com/san-kum/cellbody/internal/grid"
	"github.com/san-kum/cellbody/internal/scene"
	"github.com/san-kum/cellbody/internal/solver"
)

const (
	DefaultWidth        = 64
	DefaultHeight       = 48
	DefaultSteps        = 200
	DefaultIterations   = 4
	DefaultRestitution  = 0.5
	DefaultWarmupPasses = 4
	DefaultMinChunk     = 256
)

type Config struct {
	Grid   GridConfig   `yaml:"grid"`
	Solver SolverConfig `yaml:"solver"`
	Scene  SceneConfig  `yaml:"scene"`
	Run    RunConfig    `yaml:"run"`
}

type GridConfig struct {
	Width  int  `yaml:"width"`
	Height int  `yaml:"height"`
	Wrap   bool `yaml:"wrap"`
}

type SolverConfig struct {
	Iterations        int     `yaml:"iterations"`
	Restitution       float64 `yaml:"restitution"`
	CollisionCapacity int     `yaml:"collision_capacity"`
	Workers           int     `yaml:"workers"`
	MinChunk          int     `yaml:"min_chunk"`
	Diagonal          bool    `yaml:"diagonal"`
	WarmupPasses      int     `yaml:"warmup_passes"`
}

// SceneConfig lists objects explicitly, as a text map, or both. Map objects
// are numbered first.
type SceneConfig struct {
	Map     string         `yaml:"map,omitempty"`
	Objects []ObjectConfig `yaml:"objects,omitempty"`
	// Random adds this many 3x3 to 6x6 blocks at seeded positions.
	Random int `yaml:"random,omitempty"`
}

type ObjectConfig struct {
	Shape  string  `yaml:"shape"`
	X      int     `yaml:"x"`
	Y      int     `yaml:"y"`
	W      int     `yaml:"w,omitempty"`
	H      int     `yaml:"h,omitempty"`
	Radius float64 `yaml:"radius,omitempty"`
	VX     float64 `yaml:"vx"`
	VY     float64 `yaml:"vy"`
	Omega  float64 `yaml:"omega"`
}

type RunConfig struct {
	Steps int   `yaml:"steps"`
	Seed  int64 `yaml:"seed"`
}

func DefaultConfig() *Config {
	return &Config{
		Grid: GridConfig{Width: DefaultWidth, Height: DefaultHeight},
		Solver: SolverConfig{
			Iterations:   DefaultIterations,
			Restitution:  DefaultRestitution,
			MinChunk:     DefaultMinChunk,
			WarmupPasses: DefaultWarmupPasses,
		},
		Scene: SceneConfig{
			Objects: []ObjectConfig{
				{Shape: "rect", X: 8, Y: 20, W: 6, H: 6, VX: 1},
				{Shape: "rect", X: 40, Y: 21, W: 6, H: 6, VX: -1},
			},
		},
		Run: RunConfig{Steps: DefaultSteps},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Scene = SceneConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Scene.Map == "" && (c.Grid.Width <= 0 || c.Grid.Height <= 0) {
		return fmt.Errorf("%w: grid size must be positive, got %dx%d", dynamo.ErrInvalidConfig, c.Grid.Width, c.Grid.Height)
	}
	if c.Solver.Iterations < 0 {
		return fmt.Errorf("%w: iterations must be non-negative", dynamo.ErrInvalidConfig)
	}
	if c.Solver.Restitution < 0 || c.Solver.Restitution > 1 {
		return fmt.Errorf("%w: restitution must be in [0,1], got %v", dynamo.ErrInvalidConfig, c.Solver.Restitution)
	}
	if c.Solver.CollisionCapacity < 0 || c.Solver.WarmupPasses < 0 || c.Solver.Workers < 0 {
		return fmt.Errorf("%w: solver sizes must be non-negative", dynamo.ErrInvalidConfig)
	}
	if c.Run.Steps < 0 {
		return fmt.Errorf("%w: steps must be non-negative, got %d", dynamo.ErrInvalidConfig, c.Run.Steps)
	}
	for i, o := range c.Scene.Objects {
		switch o.Shape {
		case "rect":
			if o.W <= 0 || o.H <= 0 {
				return fmt.Errorf("%w: object %d: rect needs positive w and h", dynamo.ErrInvalidConfig, i)
			}
		case "disc":
			if o.Radius <= 0 {
				return fmt.Errorf("%w: object %d: disc needs positive radius", dynamo.ErrInvalidConfig, i)
			}
		case "empty":
		default:
			return fmt.Errorf("%w: object %d: unknown shape %q", dynamo.ErrInvalidConfig, i, o.Shape)
		}
	}
	return nil
}

// BuildScene lays out the configured objects. A text map, when present,
// sets the grid size.
func (c *Config) BuildScene() (*scene.Scene, error) {
	var sc *scene.Scene
	if c.Scene.Map != "" {
		var err error
		if sc, err = scene.Parse(c.Scene.Map, c.Grid.Wrap); err != nil {
			return nil, err
		}
	} else {
		sc = scene.New(c.Grid.Width, c.Grid.Height, c.Grid.Wrap)
	}

	for _, o := range c.Scene.Objects {
		m := scene.Motion{Linear: grid.Vec2{X: o.VX, Y: o.VY}, Angular: o.Omega}
		switch o.Shape {
		case "rect":
			sc.AddRect(o.X, o.Y, o.W, o.H, m)
		case "disc":
			sc.AddDisc(o.X, o.Y, o.Radius, m)
		default:
			sc.AddObject(m)
		}
	}

	if c.Scene.Random > 0 {
		rng := rand.New(rand.NewSource(c.Run.Seed))
		for i := 0; i < c.Scene.Random; i++ {
			w, h := 3+rng.Intn(4), 3+rng.Intn(4)
			x, y := rng.Intn(max(1, sc.Width-w)), rng.Intn(max(1, sc.Height-h))
			m := scene.Motion{
				Linear:  grid.Vec2{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1},
				Angular: (rng.Float64()*2 - 1) * 0.1,
			}
			sc.AddRect(x, y, w, h, m)
		}
	}
	return sc, sc.Validate()
}

// SolverOptions converts the solver section into solver.Options.
func (c *Config) SolverOptions(logger *slog.Logger) solver.Options {
	return solver.Options{
		Iterations:        c.Solver.Iterations,
		Restitution:       c.Solver.Restitution,
		CollisionCapacity: c.Solver.CollisionCapacity,
		Workers:           c.Solver.Workers,
		MinChunk:          c.Solver.MinChunk,
		Diagonal:          c.Solver.Diagonal,
		WarmupPasses:      c.Solver.WarmupPasses,
		ValidateState:     true,
		Logger:            logger,
	}
}

// NewWorld builds the scene and a world for it.
func (c *Config) NewWorld(logger *slog.Logger) (*solver.World, error) {
	sc, err := c.BuildScene()
	if err != nil {
		return nil, err
	}
	return solver.New(sc, c.SolverOptions(logger))
}
