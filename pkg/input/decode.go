// Package input decodes valuation case documents into engine inputs.
// A document is YAML, JSON (repaired when hand-edited) or Hjson.
package input

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"corpval/pkg/core/assumption"
	"corpval/pkg/core/scenario"
	"corpval/pkg/core/utils"
	"corpval/pkg/core/valuation"
	"corpval/pkg/models"
)

// Format of an input document.
type Format string

const (
	FormatYAML  Format = "yaml"
	FormatJSON  Format = "json"
	FormatHJSON Format = "hjson"
)

// Document is one valuation case as written by an analyst.
type Document struct {
	Company      string                   `json:"company" yaml:"company"`
	Statements   []models.StatementPeriod `json:"statements" yaml:"statements"`
	Assumptions  assumption.Assumptions   `json:"assumptions" yaml:"assumptions"`
	Models       []valuation.Kind         `json:"models,omitempty" yaml:"models,omitempty"`
	Scenarios    []string                 `json:"scenarios,omitempty" yaml:"scenarios,omitempty"`
	Transactions bool                     `json:"transactions,omitempty" yaml:"transactions,omitempty"`
	Sensitivity  *Sensitivity             `json:"sensitivity,omitempty" yaml:"sensitivity,omitempty"`
}

// Sensitivity names the two axes swept by the sensitivity command.
type Sensitivity struct {
	Model valuation.Kind `json:"model,omitempty" yaml:"model,omitempty"` // Default: dcf
	Axis1 valuation.Axis `json:"axis1" yaml:"axis1"`
	Axis2 valuation.Axis `json:"axis2" yaml:"axis2"`
}

// Request converts the document into a scenario engine request.
// The assumption set is named after the company unless it has a name.
func (d Document) Request() scenario.Request {
	a := d.Assumptions.Clone()
	if a.Name == "" {
		a.Name = d.Company
	}
	return scenario.Request{
		Statements:   d.Statements,
		Assumptions:  a,
		Models:       d.Models,
		Scenarios:    d.Scenarios,
		Transactions: d.Transactions,
	}
}

// SensitivityModel returns the model to sweep, defaulting to DCF.
func (d Document) SensitivityModel() valuation.Kind {
	if d.Sensitivity == nil || d.Sensitivity.Model == "" {
		return valuation.KindDCF
	}
	return d.Sensitivity.Model
}

// FormatFor infers the document format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".hjson":
		return FormatHJSON, nil
	}
	return "", fmt.Errorf("unsupported input file extension %q (want .yaml, .yml, .json or .hjson)", filepath.Ext(path))
}

// LoadFile reads and decodes the document at path.
func LoadFile(path string) (*Document, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	doc, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Decode parses data in the given format. Values are not validated here;
// the engines do that on entry.
func Decode(data []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid YAML document: %w", err)
		}
	case FormatHJSON:
		converted, err := utils.HJSONToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("invalid Hjson document: %w", err)
		}
		if _, err := utils.SmartParse(converted, &doc); err != nil {
			return nil, fmt.Errorf("invalid Hjson document: %w", err)
		}
	case FormatJSON:
		strategy, err := utils.SmartParse(data, &doc)
		if err != nil {
			return nil, fmt.Errorf("invalid JSON document: %w", err)
		}
		if strategy != utils.StrategyJSON {
			log.Printf("[INPUT] Document is not strict JSON, decoded with %s", strategy)
		}
	default:
		return nil, fmt.Errorf("unsupported input format %q", format)
	}
	return &doc, nil
}
