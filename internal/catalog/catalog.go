// Package catalog loads and validates the static milestone catalog and level table.
// A catalog is loaded once at startup and is read-only afterwards.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/critiquest/critiquest/internal/domain"
)

//go:embed schema.json
var schemaJSON []byte

var (
	compiledSchema     *jsonschema.Schema
	compiledSchemaErr  error
	compiledSchemaOnce sync.Once
)

// Catalog is the process-wide milestone and level configuration
type Catalog struct {
	version     string
	milestones  []domain.MilestoneDefinition
	byID        map[string]int
	levels      *LevelTable
	dailyReward *domain.RewardSpec
}

// fileCatalog is the on-disk shape of a catalog document
type fileCatalog struct {
	Version     string                       `json:"version"`
	Levels      []fileLevel                  `json:"levels"`
	Milestones  []domain.MilestoneDefinition `json:"milestones"`
	DailyReward *domain.RewardSpec           `json:"dailyReward,omitempty"`
}

type fileLevel struct {
	Threshold int64              `json:"threshold"`
	Reward    *domain.RewardSpec `json:"reward,omitempty"`
}

// New validates and assembles a catalog from already-decoded parts
func New(levels *LevelTable, milestones []domain.MilestoneDefinition, dailyReward *domain.RewardSpec) (*Catalog, error) {
	if levels == nil {
		return nil, fmt.Errorf("%w: level table is missing", domain.ErrCatalogUnloaded)
	}

	c := &Catalog{
		milestones: make([]domain.MilestoneDefinition, 0, len(milestones)),
		byID:       make(map[string]int, len(milestones)),
		levels:     levels,
	}

	for i, m := range milestones {
		if m.ID == "" {
			return nil, fmt.Errorf("%w: milestone at index %d has empty id", domain.ErrInvalidCatalog, i)
		}
		if _, exists := c.byID[m.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate milestone id '%s'", domain.ErrInvalidCatalog, m.ID)
		}
		if !m.Metric.Valid() {
			return nil, fmt.Errorf("%w: milestone '%s' has unknown metric '%s'", domain.ErrInvalidCatalog, m.ID, m.Metric)
		}
		if m.RequiredValue < 0 {
			return nil, fmt.Errorf("%w: milestone '%s' has negative required value", domain.ErrInvalidCatalog, m.ID)
		}
		if m.Reward.Type == "" {
			m.Reward.Type = domain.RewardTypeMilestone
		}
		if m.Reward.Type != domain.RewardTypeMilestone {
			return nil, fmt.Errorf("%w: milestone '%s' reward must be %s, got %s",
				domain.ErrInvalidCatalog, m.ID, domain.RewardTypeMilestone, m.Reward.Type)
		}
		if err := validatePayload(m.Reward); err != nil {
			return nil, fmt.Errorf("milestone '%s': %w", m.ID, err)
		}
		if m.Reward.Message == "" {
			m.Reward.Message = fmt.Sprintf(DefaultMilestoneMessage, m.Name)
		}
		m.Reward.Rewards = m.Reward.Rewards.Clone()

		c.byID[m.ID] = len(c.milestones)
		c.milestones = append(c.milestones, m)
	}

	if dailyReward != nil {
		spec := *dailyReward
		if spec.Type == "" {
			spec.Type = domain.RewardTypeDailyReward
		}
		if spec.Type != domain.RewardTypeDailyReward {
			return nil, fmt.Errorf("%w: daily reward must be %s, got %s",
				domain.ErrInvalidCatalog, domain.RewardTypeDailyReward, spec.Type)
		}
		if err := validatePayload(spec); err != nil {
			return nil, fmt.Errorf("daily reward: %w", err)
		}
		spec.Rewards = spec.Rewards.Clone()
		c.dailyReward = &spec
	}

	return c, nil
}

// Load reads a YAML or JSON catalog file from disk
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read catalog file: %v", domain.ErrCatalogUnloaded, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ExtYAML, ExtYML:
		data, err = yamlToJSON(data)
		if err != nil {
			return nil, err
		}
	case ExtJSON:
	default:
		return nil, fmt.Errorf("%w: unsupported catalog extension '%s'", domain.ErrCatalogUnloaded, filepath.Ext(path))
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse validates a JSON catalog document against the embedded schema and builds the catalog
func Parse(data []byte) (*Catalog, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}

	var doc fileCatalog
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}

	levels := make([]Level, len(doc.Levels))
	for i, l := range doc.Levels {
		levels[i] = Level{Number: i + 1, Threshold: l.Threshold}
		if l.Reward != nil {
			levels[i].Reward = *l.Reward
		}
	}
	table, err := newLevelTable(levels)
	if err != nil {
		return nil, err
	}

	c, err := New(table, doc.Milestones, doc.DailyReward)
	if err != nil {
		return nil, err
	}
	c.version = doc.Version
	return c, nil
}

func yamlToJSON(data []byte) ([]byte, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML: %v", domain.ErrInvalidCatalog, err)
	}
	out, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: YAML is not representable as JSON: %v", domain.ErrInvalidCatalog, err)
	}
	return out, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compiledSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			compiledSchemaErr = fmt.Errorf("parse catalog schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compiledSchemaErr = fmt.Errorf("add catalog schema: %w", err)
			return
		}
		compiledSchema, compiledSchemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, compiledSchemaErr
}

func validateSchema(data []byte) error {
	schema, err := loadSchema()
	if err != nil {
		return err
	}

	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", domain.ErrInvalidCatalog, err)
	}
	if err := schema.Validate(parsed); err != nil {
		return fmt.Errorf("%w: schema validation failed: %v", domain.ErrInvalidCatalog, err)
	}
	return nil
}

// validatePayload enforces which payload fields each reward type may carry
func validatePayload(spec domain.RewardSpec) error {
	p := spec.Rewards
	if p.GachaTickets != nil && *p.GachaTickets < 0 {
		return fmt.Errorf("%w: gachaTickets must not be negative", domain.ErrInvalidCatalog)
	}
	if p.Experience != nil && *p.Experience < 0 {
		return fmt.Errorf("%w: experience must not be negative", domain.ErrInvalidCatalog)
	}

	switch spec.Type {
	case domain.RewardTypeMilestone:
		return nil
	case domain.RewardTypeLevelUp:
		if p.BadgeID != nil {
			return fmt.Errorf("%w: %s rewards cannot carry a badge", domain.ErrInvalidCatalog, spec.Type)
		}
	case domain.RewardTypeDailyReward:
		if p.BadgeID != nil || p.PhilosopherID != nil {
			return fmt.Errorf("%w: %s rewards may only carry tickets and experience", domain.ErrInvalidCatalog, spec.Type)
		}
	case domain.RewardTypeAchievement:
		if p.BadgeID == nil {
			return fmt.Errorf("%w: %s rewards require a badge", domain.ErrInvalidCatalog, spec.Type)
		}
	default:
		return fmt.Errorf("%w: unknown reward type '%s'", domain.ErrInvalidCatalog, spec.Type)
	}
	return nil
}

// Version returns the catalog document version
func (c *Catalog) Version() string {
	return c.version
}

// Milestones returns the milestone definitions in declaration order
func (c *Catalog) Milestones() []domain.MilestoneDefinition {
	out := make([]domain.MilestoneDefinition, len(c.milestones))
	copy(out, c.milestones)
	return out
}

// Milestone looks up a definition by id
func (c *Catalog) Milestone(id string) (domain.MilestoneDefinition, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return domain.MilestoneDefinition{}, false
	}
	return c.milestones[idx], true
}

// Levels returns the level table
func (c *Catalog) Levels() *LevelTable {
	return c.levels
}

// DailyReward returns the configured streak reward, if any
func (c *Catalog) DailyReward() (domain.RewardSpec, bool) {
	if c.dailyReward == nil {
		return domain.RewardSpec{}, false
	}
	spec := *c.dailyReward
	spec.Rewards = spec.Rewards.Clone()
	return spec, true
}
