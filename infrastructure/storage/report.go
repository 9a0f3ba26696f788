package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"authflow_automation/domain/entities"
	"authflow_automation/infrastructure/config"
)

const (
	// EnvironmentFile is read by report viewers to describe the run
	EnvironmentFile = "environment.properties"
	// ReportFile holds the scenario results of the latest run
	ReportFile = "report.json"
)

// Report is the persisted summary of one run
type Report struct {
	StartedAt   time.Time                 `json:"started_at"`
	Environment string                    `json:"environment"`
	Browser     string                    `json:"browser"`
	Driver      string                    `json:"driver"`
	Results     []entities.ScenarioResult `json:"results"`
}

// Passed reports whether every scenario passed
func (r Report) Passed() bool {
	for _, res := range r.Results {
		if res.Status != entities.ScenarioStatusPassed {
			return false
		}
	}
	return true
}

// WriteEnvironment - writes environment.properties into dir
func WriteEnvironment(fs afero.Fs, dir string, props []config.Property) (string, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}

	var buf bytes.Buffer
	for _, p := range props {
		fmt.Fprintf(&buf, "%s=%s\n", escapeKey(p.Key), p.Value)
	}

	path := filepath.Join(dir, EnvironmentFile)
	if err := afero.WriteFile(fs, path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// SaveReport - saves the run report into dir
func SaveReport(fs afero.Fs, dir string, report Report) (string, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, ReportFile)
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// LoadReport - loads the run report from dir; a missing report is empty
func LoadReport(fs afero.Fs, dir string) (Report, error) {
	path := filepath.Join(dir, ReportFile)
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return Report{}, nil
		}
		return Report{}, err
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return Report{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return report, nil
}

// escapeKey escapes the separators of the java properties format
func escapeKey(key string) string {
	var buf bytes.Buffer
	for _, r := range key {
		switch r {
		case ' ', '=', ':':
			buf.WriteByte('\\')
		}
		buf.WriteRune(r)
	}
	return buf.String()
}
