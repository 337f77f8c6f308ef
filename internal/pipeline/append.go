package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/sopkre/johnstonsarchive-nucleartest-reader/internal/config"
	"github.com/sopkre/johnstonsarchive-nucleartest-reader/internal/domain"
)

// SupplementFile holds extra table-body lines for records missing from the
// archive pages. The lines use the same fixed-column layout as the state's
// sources and run through the identical processing stages.
type SupplementFile struct {
	State string   `yaml:"state"`
	Lines []string `yaml:"lines"`
}

// AppendSupplementary loads supplement files from path (a YAML file or a
// directory of them, read in sorted name order) and appends the processed
// records to the dataset. Each file's state must match a configured state.
func (r *Runner) AppendSupplementary(ds *domain.Dataset, states []*config.StateConfig, path string) error {
	files, err := supplementFiles(path)
	if err != nil {
		return err
	}
	byState := make(map[string]*config.StateConfig, len(states))
	for _, st := range states {
		byState[st.State] = st
	}

	for _, file := range files {
		sup, err := loadSupplement(file)
		if err != nil {
			return err
		}
		st, ok := byState[sup.State]
		if !ok {
			return fmt.Errorf("supplement %s: state %q is not configured", file, sup.State)
		}
		table, err := r.ProcessLines(st, sup.Lines)
		if err != nil {
			return fmt.Errorf("supplement %s: %w", file, err)
		}
		ds.Append(table.Records)
		r.logger.Info("supplementary records appended",
			"file", file, "state", sup.State, "records", len(table.Records))
	}
	return nil
}

func supplementFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("supplement path %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("supplement dir %s: %w", path, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func loadSupplement(file string) (*SupplementFile, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("supplement %s: %w", file, err)
	}
	var sup SupplementFile
	if err := yaml.Unmarshal(data, &sup); err != nil {
		return nil, fmt.Errorf("supplement %s: %w", file, err)
	}
	if sup.State == "" {
		return nil, fmt.Errorf("supplement %s: missing state", file)
	}
	return &sup, nil
}
