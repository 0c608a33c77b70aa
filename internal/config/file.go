/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the optional per-repository configuration file
const DefaultFileName = "groundwork.yaml"

// File is the optional groundwork.yaml override set. Every field is optional;
// anything unset falls back to a derived default.
type File struct {
	Project              string `yaml:"project,omitempty"`
	Environment          string `yaml:"environment,omitempty"`
	Owner                string `yaml:"owner,omitempty"`
	CostCentre           string `yaml:"cost_centre,omitempty"`
	DeploymentRole       string `yaml:"deployment_role,omitempty"`
	TargetRoleRepository string `yaml:"target_role_repository,omitempty"`
}

// LoadFile reads an optional configuration file. A missing file is not an
// error and yields the zero value.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &file, nil
}

// Build combines the optional file overrides with the ambient inputs into a
// complete parameter set.
func Build(file *File, repoURL, accountID, accountAlias, region string) *Parameters {
	if file == nil {
		file = &File{}
	}

	project := file.Project
	if project == "" {
		project = ProjectFromRepository(repoURL)
	}

	environment := file.Environment
	if environment == "" {
		environment = "production"
	}

	roleName := file.DeploymentRole
	if roleName == "" {
		roleName = fmt.Sprintf("%s-deploy", project)
	}

	targetRepo := file.TargetRoleRepository
	if targetRepo == "" {
		targetRepo = RepositoryPath(repoURL)
	}

	return &Parameters{
		AccountID:            accountID,
		AccountAlias:         accountAlias,
		Region:               region,
		RepositoryURL:        repoURL,
		Project:              project,
		Environment:          environment,
		Owner:                file.Owner,
		CostCentre:           file.CostCentre,
		DeploymentRoleName:   roleName,
		TargetRoleRepository: targetRepo,
	}
}
