// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

package evaluate

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	cderr "github.com/cleardesk-hq/cleardesk/pkg/errors"
)

// GroundTruth pairs a query with the document IDs a perfect retriever
// would return for it. RelevantIDs may be empty; recall treats that as
// vacuously satisfied.
type GroundTruth struct {
	Query       string   `yaml:"query"`
	RelevantIDs []string `yaml:"relevant_ids"`
}

// Dataset is a ground-truth evaluation file.
type Dataset struct {
	Name    string        `yaml:"name"`
	K       int           `yaml:"k"`
	Queries []GroundTruth `yaml:"queries"`
}

// LoadDataset reads and validates a YAML ground-truth file.
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cderr.Wrap(err, cderr.CodeEvalDatasetInvalid, "reading dataset file")
	}

	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, cderr.Wrap(err, cderr.CodeEvalDatasetInvalid, "parsing dataset yaml")
	}
	if err := ds.validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

func (d *Dataset) validate() error {
	if len(d.Queries) == 0 {
		return cderr.New(cderr.CodeEvalDatasetInvalid, "dataset contains no queries")
	}
	for i, q := range d.Queries {
		if strings.TrimSpace(q.Query) == "" {
			return cderr.New(cderr.CodeEvalDatasetInvalid,
				fmt.Sprintf("dataset query %d has empty query text", i))
		}
	}
	return nil
}
