// Package catalog loads the playable games and the engine settings each one
// starts with.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/alexnjoya/mindlink/internal/game/guesswhat"
	"github.com/alexnjoya/mindlink/internal/game/stroop"
	"github.com/alexnjoya/mindlink/internal/models"
	"github.com/alexnjoya/mindlink/internal/validation"
)

//go:embed games.yaml
var defaultCatalog []byte

// Game is one catalog entry
type Game struct {
	Key          string            `yaml:"key" json:"key"`
	Engine       models.Engine     `yaml:"engine" json:"engine"`
	Title        string            `yaml:"title" json:"title"`
	Type         string            `yaml:"type" json:"type"`
	Description  string            `yaml:"description" json:"description"`
	Rules        []string          `yaml:"rules" json:"rules"`
	TestingPhase bool              `yaml:"testingPhase" json:"testingPhase"`
	GuessWhat    *guesswhat.Config `yaml:"guessWhat,omitempty" json:"-"`
	Stroop       *StroopSettings   `yaml:"stroop,omitempty" json:"-"`
}

// StroopSettings configures a Stroop game. An explicit question list wins;
// otherwise QuestionCount questions are drawn from Colors at session start.
type StroopSettings struct {
	Duration      int               `yaml:"duration"` // ms
	Questions     []stroop.Question `yaml:"questions"`
	Colors        []string          `yaml:"colors"`
	QuestionCount int               `yaml:"questionCount"`
	MatchRatio    float64           `yaml:"matchRatio"`
}

type file struct {
	Games []Game `yaml:"games"`
}

// Catalog is the set of games that can be started
type Catalog struct {
	games []Game
	byKey map[string]int
}

// Load reads the catalog at path, or the built-in catalog when path is empty
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(defaultCatalog)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read game catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse game catalog: %w", err)
	}
	if len(f.Games) == 0 {
		return nil, errors.New("game catalog is empty")
	}

	c := &Catalog{byKey: make(map[string]int, len(f.Games))}
	for _, g := range f.Games {
		if err := g.validate(); err != nil {
			return nil, fmt.Errorf("game %q: %w", g.Key, err)
		}
		if _, dup := c.byKey[g.Key]; dup {
			return nil, fmt.Errorf("game %q is listed twice", g.Key)
		}
		c.byKey[g.Key] = len(c.games)
		c.games = append(c.games, g)
	}
	return c, nil
}

// Get looks a game up by key
func (c *Catalog) Get(key string) (Game, bool) {
	i, ok := c.byKey[key]
	if !ok {
		return Game{}, false
	}
	return c.games[i], true
}

// List returns the games in catalog order
func (c *Catalog) List() []Game {
	return slices.Clone(c.games)
}

func (g Game) validate() error {
	if err := validation.ValidateGameKey(g.Key); err != nil {
		return err
	}
	if g.Title == "" {
		return errors.New("title is required")
	}

	switch g.Engine {
	case models.EngineGuessWhat:
		return validateGuessWhat(g.GuessWhat)
	case models.EngineStroop:
		return validateStroop(g.Stroop)
	default:
		return fmt.Errorf("unknown engine %q", g.Engine)
	}
}

func validateGuessWhat(cfg *guesswhat.Config) error {
	switch {
	case cfg == nil:
		return errors.New("guessWhat settings are required")
	case cfg.MaxLevels < 1:
		return errors.New("maxLevels must be at least 1")
	case cfg.BasePairs < 0:
		return errors.New("basePairs must not be negative")
	case cfg.MinMemorizationTime < 0 || cfg.DefaultMemorizationTime < cfg.MinMemorizationTime:
		return errors.New("memorization times must satisfy 0 <= min <= default")
	case len(cfg.ImageSet) == 0:
		return errors.New("imageSet must not be empty")
	case cfg.StartLevel > cfg.MaxLevels:
		return errors.New("startLevel is past maxLevels")
	}
	seen := make(map[string]bool, len(cfg.ImageSet))
	for _, img := range cfg.ImageSet {
		if seen[img] {
			return fmt.Errorf("image %q is listed twice", img)
		}
		seen[img] = true
	}
	return nil
}

func validateStroop(s *StroopSettings) error {
	switch {
	case s == nil:
		return errors.New("stroop settings are required")
	case s.Duration <= 0:
		return errors.New("duration must be positive")
	case len(s.Questions) > 0:
		return nil
	case s.QuestionCount <= 0 || len(s.Colors) == 0:
		return errors.New("either questions or colors with a questionCount are required")
	case s.MatchRatio < 0 || s.MatchRatio > 1:
		return errors.New("matchRatio must be within [0, 1]")
	}
	if len(slices.Compact(slices.Sorted(slices.Values(s.Colors)))) != len(s.Colors) {
		return errors.New("colors must be distinct")
	}
	return nil
}

// GuessWhatConfig returns the engine config a new session starts with
func (g Game) GuessWhatConfig() guesswhat.Config {
	cfg := *g.GuessWhat
	cfg.ID = g.Key
	cfg.Type = g.Type
	cfg.Title = g.Title
	cfg.ImageSet = slices.Clone(cfg.ImageSet)
	return cfg
}

// StroopConfig returns the engine config a new session starts with, drawing
// a fresh question list from the palette when none is fixed
func (g Game) StroopConfig(rng *rand.Rand) stroop.Config {
	s := g.Stroop
	questions := slices.Clone(s.Questions)
	if len(questions) == 0 {
		questions = stroop.GenerateQuestions(s.Colors, s.QuestionCount, s.MatchRatio, rng)
	}
	return stroop.Config{
		ID:        g.Key,
		Type:      g.Type,
		Title:     g.Title,
		Duration:  s.Duration,
		Questions: questions,
	}
}
