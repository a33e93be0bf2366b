package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sfseed/sfseed/pkg/errors"
	"github.com/sfseed/sfseed/pkg/models"
)

// LoadPlanFile reads a seed plan from a YAML file. Flags given alongside
// --plan override the file's scalar settings; the caller merges them.
func LoadPlanFile(path string) (*models.SeedPlan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file: %w", err)
	}

	var plan models.SeedPlan
	if err := yaml.Unmarshal(raw, &plan); err != nil {
		return nil, fmt.Errorf("parsing plan file %s: %w", path, err)
	}
	if err := validatePlan(&plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func validatePlan(plan *models.SeedPlan) error {
	if plan.RootObject == "" {
		return errors.NewValidationError("object", "plan must name a root object")
	}
	for i, child := range plan.Children {
		if child.ObjectName == "" {
			return errors.NewValidationError("children",
				fmt.Sprintf("child %d is missing an object name", i+1))
		}
		if child.ParentLookupField == "" {
			return errors.NewValidationError("children",
				fmt.Sprintf("child %s is missing parent_lookup_field", child.ObjectName))
		}
		for _, gc := range child.Grandchildren {
			if gc.ObjectName == "" || gc.ParentLookupField == "" {
				return errors.NewValidationError("grandchildren",
					fmt.Sprintf("grandchild under %s needs both object and parent_lookup_field", child.ObjectName))
			}
		}
	}
	return nil
}
