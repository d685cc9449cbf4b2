package dataset

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	mrand "math/rand"
	"strconv"
)

// Generated is the name of the synthetic dataset produced by Generator.
const Generated = "generated"

// Tag count distributions understood by Generator.
const (
	DistributionPowerLaw    = "power-law"
	DistributionExponential = "exponential"
	DistributionUniform     = "uniform"
)

// GeneratedSchema describes the records emitted by Generator.
const GeneratedSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "name", "score", "active", "tags"],
    "properties": {
      "id": {"type": "string", "pattern": "^[0-9a-f]{32}$"},
      "name": {"type": "string", "minLength": 1, "maxLength": 64},
      "score": {"type": "number", "minimum": 0, "maximum": 100},
      "active": {"type": "boolean"},
      "tags": {
        "type": "array",
        "items": {"type": "string", "pattern": "^[a-z]+-[0-9]+$"}
      },
      "owner": {
        "oneOf": [
          {"type": "null"},
          {"type": "string", "minLength": 1}
        ]
      }
    },
    "additionalProperties": false
  }
}`

var tagWords = []string{
	"alpha", "bravo", "delta", "echo", "kilo", "lima", "oscar", "sierra",
}

// GeneratorConfig controls synthetic dataset generation.
type GeneratorConfig struct {
	Items        int
	MinTags      int
	MaxTags      int
	Distribution string
	Seed         int64
}

// Summary contains statistics about a generated dataset.
type Summary struct {
	Records int
	Tags    int
	Owned   int
	Bytes   int
}

type record struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Score  json.Number `json:"score"`
	Active bool        `json:"active"`
	Tags   []string    `json:"tags"`
	Owner  *string     `json:"owner"`
}

// Generator produces deterministic synthetic datasets from a config.
type Generator struct {
	cfg GeneratorConfig
	rng *mrand.Rand
}

// NewGenerator creates a Generator from the given config.
func NewGenerator(cfg GeneratorConfig) *Generator {
	return &Generator{
		cfg: cfg,
		rng: mrand.New(mrand.NewSource(cfg.Seed)),
	}
}

// Validate reports whether cfg can be generated.
func (cfg GeneratorConfig) Validate() error {
	if cfg.Items <= 0 {
		return fmt.Errorf("items must be positive, got %d", cfg.Items)
	}

	if cfg.MinTags < 0 || cfg.MaxTags < cfg.MinTags {
		return fmt.Errorf(
			"tag range [%d, %d] is invalid", cfg.MinTags, cfg.MaxTags,
		)
	}

	switch cfg.Distribution {
	case DistributionPowerLaw, DistributionExponential, DistributionUniform:
	default:
		return fmt.Errorf("unknown distribution %q", cfg.Distribution)
	}

	return nil
}

// Generate builds the generated dataset and returns it with a Summary.
// The instance always satisfies GeneratedSchema.
func (g *Generator) Generate() (Dataset, Summary, error) {
	var summary Summary

	if err := g.cfg.Validate(); err != nil {
		return Dataset{}, summary, fmt.Errorf("generator config: %w", err)
	}

	dist := g.tagDistribution()
	records := make([]record, 0, g.cfg.Items)

	for i := 0; i < g.cfg.Items; i++ {
		rec := record{
			ID:     g.randomID(),
			Name:   fmt.Sprintf("record-%d", i),
			Score:  json.Number(strconv.FormatFloat(g.rng.Float64()*100, 'f', 3, 64)),
			Active: g.rng.Intn(2) == 1,
			Tags:   make([]string, 0, dist[i]),
		}

		for j := 0; j < dist[i]; j++ {
			word := tagWords[g.rng.Intn(len(tagWords))]
			rec.Tags = append(rec.Tags, fmt.Sprintf("%s-%d", word, g.rng.Intn(1000)))
		}

		if g.rng.Intn(4) == 0 {
			owner := fmt.Sprintf("team-%d", g.rng.Intn(32))
			rec.Owner = &owner
			summary.Owned++
		}

		records = append(records, rec)
		summary.Records++
		summary.Tags += len(rec.Tags)
	}

	instance, err := json.Marshal(records)
	if err != nil {
		return Dataset{}, summary, fmt.Errorf("encode records: %w", err)
	}

	summary.Bytes = len(instance)

	ds, err := New(Generated, []byte(GeneratedSchema), instance)
	if err != nil {
		return Dataset{}, summary, err
	}

	return ds, summary, nil
}

func (g *Generator) randomID() string {
	var buf [16]byte
	g.rng.Read(buf[:])

	return hex.EncodeToString(buf[:])
}

func (g *Generator) tagDistribution() []int {
	dist := make([]int, g.cfg.Items)

	switch g.cfg.Distribution {
	case DistributionPowerLaw:
		alpha := 1.5
		floor := math.Max(1, float64(g.cfg.MinTags))
		for i := range dist {
			u := g.rng.Float64()
			tags := floor / math.Pow(1-u, 1/alpha)
			if tags > float64(g.cfg.MaxTags) {
				tags = float64(g.cfg.MaxTags)
			}
			dist[i] = max(g.cfg.MinTags, int(tags))
		}

	case DistributionExponential:
		lambda := math.Log(2) / float64(max(1, g.cfg.MaxTags/4))
		for i := range dist {
			u := g.rng.Float64()
			tags := -math.Log(1-u) / lambda
			clamped := math.Max(
				float64(g.cfg.MinTags),
				math.Min(tags, float64(g.cfg.MaxTags)),
			)
			dist[i] = int(clamped)
		}

	case DistributionUniform:
		span := g.cfg.MaxTags - g.cfg.MinTags + 1
		for i := range dist {
			dist[i] = g.cfg.MinTags + g.rng.Intn(span)
		}
	}

	return dist
}
