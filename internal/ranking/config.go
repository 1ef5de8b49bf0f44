package ranking

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DefaultMatchThreshold is the minimum score for answering straight from the
// knowledge base. Values between 0.4 and 0.6 behave sensibly on FAQ-style
// sheets; below 0.4 loosely related entries start to win, above 0.6 paraphrases
// fall through to the model.
const DefaultMatchThreshold = 0.45

// Defaults for the remaining matching options.
const (
	DefaultContextSize       = 3
	DefaultOverlapWeight     = 0.7
	DefaultFuzzyWeight       = 0.3
	DefaultMaxEntries        = 50000
	DefaultCacheSize         = 1024
	DefaultMaxScoringRetries = 3
)

// Config holds all configuration for matching and source selection.
type Config struct {
	MatchThreshold float64 `yaml:"match_threshold"` // default: 0.45
	ContextSize    int     `yaml:"context_size"`    // default: 3

	// Scorer weights; only their ratio matters.
	OverlapWeight float64 `yaml:"overlap_weight"` // default: 0.7
	FuzzyWeight   float64 `yaml:"fuzzy_weight"`   // default: 0.3

	// MaxEntries bounds the entries scored per call; larger sets fail with ErrResourceExceeded.
	MaxEntries int `yaml:"max_entries"` // default: 50000

	// CacheSize is the number of cached rankings; negative disables the cache.
	CacheSize int `yaml:"cache_size"` // default: 1024

	// MaxScoringRetries is how many failing entries the router drops before giving up on the sheet.
	MaxScoringRetries int `yaml:"max_scoring_retries"` // default: 3

	// thresholdSet records an explicit match_threshold so a configured 0 survives ApplyDefaults.
	thresholdSet bool
}

// DefaultConfig returns the default matching configuration.
func DefaultConfig() *Config {
	return &Config{
		MatchThreshold:    DefaultMatchThreshold,
		ContextSize:       DefaultContextSize,
		OverlapWeight:     DefaultOverlapWeight,
		FuzzyWeight:       DefaultFuzzyWeight,
		MaxEntries:        DefaultMaxEntries,
		CacheSize:         DefaultCacheSize,
		MaxScoringRetries: DefaultMaxScoringRetries,
	}
}

// ApplyDefaults fills in zero values with defaults.
// The weights are defaulted together so a single zero weight disables that term.
// A threshold of 0 read from YAML or set with SetMatchThreshold is kept.
func (c *Config) ApplyDefaults() {
	if c.MatchThreshold == 0 && !c.thresholdSet {
		c.MatchThreshold = DefaultMatchThreshold
	}
	if c.ContextSize == 0 {
		c.ContextSize = DefaultContextSize
	}
	if c.OverlapWeight == 0 && c.FuzzyWeight == 0 {
		c.OverlapWeight = DefaultOverlapWeight
		c.FuzzyWeight = DefaultFuzzyWeight
	}
	if c.MaxEntries == 0 {
		c.MaxEntries = DefaultMaxEntries
	}
	if c.CacheSize == 0 {
		c.CacheSize = DefaultCacheSize
	}
	if c.MaxScoringRetries == 0 {
		c.MaxScoringRetries = DefaultMaxScoringRetries
	}
}

// Validate reports configuration values that cannot work.
func (c *Config) Validate() error {
	if c.MatchThreshold < 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("match_threshold must be within [0,1], got %v", c.MatchThreshold)
	}
	if c.ContextSize < 0 {
		return fmt.Errorf("context_size must not be negative, got %d", c.ContextSize)
	}
	if c.OverlapWeight < 0 || c.FuzzyWeight < 0 {
		return fmt.Errorf("weights must not be negative (overlap=%v, fuzzy=%v)", c.OverlapWeight, c.FuzzyWeight)
	}
	if c.MaxEntries < 0 {
		return fmt.Errorf("max_entries must not be negative, got %d", c.MaxEntries)
	}
	if c.MaxScoringRetries < 0 {
		return fmt.Errorf("max_scoring_retries must not be negative, got %d", c.MaxScoringRetries)
	}
	return nil
}

// SetMatchThreshold sets the threshold and marks it explicit, so 0 means
// "always answer from the knowledge base" instead of "use the default".
func (c *Config) SetMatchThreshold(v float64) {
	c.MatchThreshold = v
	c.thresholdSet = true
}

// UnmarshalYAML decodes the matching section and remembers whether
// match_threshold was present.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type plain Config
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*c = Config(p)
	if value.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(value.Content); i += 2 {
			if value.Content[i].Value == "match_threshold" {
				c.thresholdSet = true
			}
		}
	}
	return nil
}
