// Package crew runs the scheduling pipeline as a set of configured role
// agents. It is an alternate execution strategy behind the same
// context-in/context-out interface as the deterministic stage sequence:
// agents and their order come from YAML instead of code, but each agent
// delegates to a registered stage, so results stay shape-compatible.
package crew

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arnavshah/orchestrator-api-go/pkg/pipeline"
)

//go:embed crews.yaml
var defaultConfig []byte

// AgentConfig defines one role agent and the stage it delegates to.
type AgentConfig struct {
	Name      string `yaml:"name"`
	Role      string `yaml:"role"`
	Goal      string `yaml:"goal"`
	Backstory string `yaml:"backstory"`
	Stage     string `yaml:"stage"`
}

// CrewConfig is an ordered set of agents forming one crew.
type CrewConfig struct {
	Description string        `yaml:"description"`
	Agents      []AgentConfig `yaml:"agents"`
}

// Config is the full crews file.
type Config struct {
	Crews map[string]CrewConfig `yaml:"crews"`
}

// LoadConfig reads crew definitions from path, or the embedded defaults
// when path is empty.
func LoadConfig(path string) (Config, error) {
	data := defaultConfig
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("crew: read config: %w", err)
		}
		data = b
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("crew: parse config: %w", err)
	}
	return cfg, nil
}

// Crew executes one configured crew. It implements pipeline.Runner.
type Crew struct {
	Name     string
	cfg      CrewConfig
	registry map[string]pipeline.Stage
	logger   *slog.Logger
}

// Build assembles a crew by name, binding each agent to its registered
// stage. Unknown crew or stage names are configuration errors.
func Build(cfg Config, name string, registry map[string]pipeline.Stage, logger *slog.Logger) (*Crew, error) {
	if logger == nil {
		logger = slog.Default()
	}
	crewCfg, ok := cfg.Crews[name]
	if !ok {
		return nil, fmt.Errorf("crew: no crew named %q", name)
	}
	for _, agent := range crewCfg.Agents {
		if _, ok := registry[agent.Stage]; !ok {
			return nil, fmt.Errorf("crew: agent %s references unknown stage %q", agent.Name, agent.Stage)
		}
	}
	return &Crew{Name: name, cfg: crewCfg, registry: registry, logger: logger}, nil
}

// Registry builds the stage registry the crew configs refer to.
func Registry(stages *pipeline.Stages) map[string]pipeline.Stage {
	reg := make(map[string]pipeline.Stage)
	for _, st := range []pipeline.Stage{
		stages.Availability(),
		stages.ShiftMatch(),
		stages.ShiftMatchEnhanced(),
		stages.ConflictResolve(),
		stages.Notify(),
		stages.AuditLog(),
	} {
		reg[st.Name] = st
	}
	return reg
}

// Run executes the crew's agents sequentially over the seed context,
// merging each agent's partial output before the next runs.
func (c *Crew) Run(ctx context.Context, seed pipeline.Context) (pipeline.Context, error) {
	pc := seed.Clone()
	for _, agent := range c.cfg.Agents {
		stage := c.registry[agent.Stage]
		c.logger.Info("crew agent running",
			"crew", c.Name, "agent", agent.Name, "role", agent.Role, "stage", agent.Stage)
		partial, err := stage.Run(ctx, pc)
		if err != nil {
			c.logger.Error("crew agent failed",
				"crew", c.Name, "agent", agent.Name, "error", err)
			return nil, fmt.Errorf("agent %s: %w", agent.Name, err)
		}
		pc.Merge(partial)
	}
	return pc, nil
}
