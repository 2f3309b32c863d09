package model

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/lequangloc/benchexec/internal/config"
	"github.com/lequangloc/benchexec/internal/tool"
)

// definition is the on-disk shape of a benchmark-definition file.
type definition struct {
	Tool         string `yaml:"tool" validate:"required"`
	PropertyFile string `yaml:"propertyfile"`

	TimeLimit   int `yaml:"timelimit"`
	MemoryLimit int `yaml:"memorylimit"`
	CoreLimit   int `yaml:"corelimit"`

	RunDefinitions []runDefinition `yaml:"rundefinitions" validate:"required,min=1,dive"`
	TaskSets       []taskSet       `yaml:"tasks" validate:"required,min=1,dive"`
}

// runDefinition is a template producing one run set.
type runDefinition struct {
	Name    string   `yaml:"name" validate:"required"`
	Options []string `yaml:"options"`
	// Tasks restricts this definition to the named task sets; empty
	// means all of them.
	Tasks []string `yaml:"tasks"`
}

type taskSet struct {
	Name  string   `yaml:"name" validate:"required"`
	Files []string `yaml:"files" validate:"required,min=1,dive,required"`
}

var validate = validator.New()

// Load builds the Benchmark model from a definition file, the
// configuration and a start timestamp. Command-line limits override
// the limits declared in the file; -1 disables a limit entirely.
func Load(file string, cfg *config.Config, startTime time.Time) (*Benchmark, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading benchmark definition: %w", err)
	}

	var def definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", file, err)
	}
	if err := validate.Struct(&def); err != nil {
		return nil, fmt.Errorf("invalid benchmark definition %s: %w", file, err)
	}

	adapter, err := tool.Get(def.Tool)
	if err != nil {
		return nil, err
	}

	name := cfg.Name
	if name == "" {
		base := filepath.Base(file)
		name = base[:len(base)-len(filepath.Ext(base))]
	}

	b := &Benchmark{
		Name:         name,
		ToolName:     adapter.Name(),
		Tool:         adapter,
		StartTime:    startTime,
		Limits:       resolveLimits(&def, cfg),
		NumOfThreads: max(cfg.NumOfThreads, 1),
	}

	outputBase := cfg.OutputPath + name + "." + startTime.Format("06-01-02_1504")
	b.OutputBase = outputBase
	b.LogFolder = outputBase + ".logfiles" + string(os.PathSeparator)

	taskSets, err := expandTaskSets(def.TaskSets, cfg.SelectedTaskSets, filepath.Dir(file))
	if err != nil {
		return nil, err
	}

	for _, rd := range def.RunDefinitions {
		if len(cfg.SelectedRunDefinitions) > 0 && !lo.Contains(cfg.SelectedRunDefinitions, rd.Name) {
			continue
		}
		rs := &RunSet{
			Name:         rd.Name,
			FullName:     name + "." + rd.Name,
			Options:      rd.Options,
			PropertyFile: def.PropertyFile,
		}
		for _, ts := range taskSets {
			if len(rd.Tasks) > 0 && !lo.Contains(rd.Tasks, ts.name) {
				continue
			}
			for _, task := range ts.files {
				rs.Runs = append(rs.Runs, &Run{Task: task})
			}
		}
		b.RunSets = append(b.RunSets, rs)
	}

	if len(b.RunSets) == 0 {
		return nil, fmt.Errorf("benchmark %s has no run sets after filtering", file)
	}
	return b, nil
}

// resolveLimits merges the definition's limits with the command-line
// overrides. A -1 on the command line disables the limit.
func resolveLimits(def *definition, cfg *config.Config) tool.Limits {
	limits := tool.Limits{
		TimeSeconds: def.TimeLimit,
		MemoryMB:    def.MemoryLimit,
		Cores:       def.CoreLimit,
	}
	applyOverride(&limits.TimeSeconds, cfg.TimeLimit)
	applyOverride(&limits.MemoryMB, cfg.MemoryLimit)
	applyOverride(&limits.Cores, cfg.CoreLimit)
	return limits
}

func applyOverride(limit *int, override int) {
	switch {
	case override == -1:
		*limit = 0
	case override != 0:
		*limit = override
	}
}

type expandedTaskSet struct {
	name  string
	files []string
}

// expandTaskSets resolves the file globs of the selected task sets,
// relative to the directory of the definition file. A pattern that
// matches nothing is only a warning.
func expandTaskSets(sets []taskSet, selected []string, baseDir string) ([]expandedTaskSet, error) {
	var expanded []expandedTaskSet
	for _, ts := range sets {
		if len(selected) > 0 && !lo.Contains(selected, ts.Name) {
			continue
		}
		var files []string
		for _, pattern := range ts.Files {
			if !filepath.IsAbs(pattern) {
				pattern = filepath.Join(baseDir, pattern)
			}
			matches, err := filepath.Glob(pattern)
			if err != nil {
				return nil, fmt.Errorf("bad file pattern %q in task set %q: %w", pattern, ts.Name, err)
			}
			if len(matches) == 0 {
				log.Warnf("No files found matching %q in task set %q", pattern, ts.Name)
			}
			files = append(files, matches...)
		}
		expanded = append(expanded, expandedTaskSet{name: ts.Name, files: files})
	}
	return expanded, nil
}
