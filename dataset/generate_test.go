package dataset

import (
	"bytes"
	"testing"
)

func TestGenerateDeterministic(t *testing.T) {
	cfg := GeneratorConfig{
		Items:        50,
		MinTags:      0,
		MaxTags:      8,
		Distribution: DistributionUniform,
		Seed:         42,
	}

	ds1, sum1, err := NewGenerator(cfg).Generate()
	if err != nil {
		t.Fatalf("first generation failed: %v", err)
	}

	ds2, sum2, err := NewGenerator(cfg).Generate()
	if err != nil {
		t.Fatalf("second generation failed: %v", err)
	}

	if !bytes.Equal(ds1.InstanceJSON, ds2.InstanceJSON) {
		t.Error("instances are not deterministic for same seed")
	}

	if sum1 != sum2 {
		t.Errorf("summaries differ: %+v vs %+v", sum1, sum2)
	}

	if ds1.Name != Generated {
		t.Errorf("name = %q, want %q", ds1.Name, Generated)
	}
}

func TestGenerateCounts(t *testing.T) {
	tests := []struct {
		name string
		cfg  GeneratorConfig
	}{
		{
			name: "uniform",
			cfg: GeneratorConfig{
				Items: 20, MinTags: 1, MaxTags: 5,
				Distribution: DistributionUniform, Seed: 1,
			},
		},
		{
			name: "power-law",
			cfg: GeneratorConfig{
				Items: 20, MinTags: 1, MaxTags: 50,
				Distribution: DistributionPowerLaw, Seed: 2,
			},
		},
		{
			name: "exponential",
			cfg: GeneratorConfig{
				Items: 20, MinTags: 0, MaxTags: 3,
				Distribution: DistributionExponential, Seed: 3,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, sum, err := NewGenerator(tt.cfg).Generate()
			if err != nil {
				t.Fatalf("generation failed: %v", err)
			}

			if sum.Records != tt.cfg.Items {
				t.Errorf("records: got %d, want %d", sum.Records, tt.cfg.Items)
			}

			records, ok := ds.Instance.([]any)
			if !ok {
				t.Fatalf("instance is %T, want []any", ds.Instance)
			}

			if len(records) != tt.cfg.Items {
				t.Errorf("decoded records: got %d, want %d",
					len(records), tt.cfg.Items)
			}

			tags := 0
			for _, r := range records {
				rec := r.(map[string]any)
				n := len(rec["tags"].([]any))
				if n < tt.cfg.MinTags || n > tt.cfg.MaxTags {
					t.Errorf("tag count %d outside [%d, %d]",
						n, tt.cfg.MinTags, tt.cfg.MaxTags)
				}
				tags += n
			}

			if tags != sum.Tags {
				t.Errorf("tags: got %d, summary says %d", tags, sum.Tags)
			}

			if sum.Bytes != len(ds.InstanceJSON) {
				t.Errorf("bytes: got %d, want %d", sum.Bytes, len(ds.InstanceJSON))
			}
		})
	}
}

func TestGenerateRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  GeneratorConfig
	}{
		{"no items", GeneratorConfig{Items: 0, MaxTags: 1, Distribution: DistributionUniform}},
		{"inverted range", GeneratorConfig{Items: 1, MinTags: 5, MaxTags: 2, Distribution: DistributionUniform}},
		{"unknown distribution", GeneratorConfig{Items: 1, MaxTags: 1, Distribution: "zipf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := NewGenerator(tt.cfg).Generate(); err == nil {
				t.Error("expected error")
			}
		})
	}
}
