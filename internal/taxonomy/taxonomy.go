// Package taxonomy holds the static subject/component topic table consumed
// by the selection pipeline. The table ships compiled in and can be replaced
// wholesale from a YAML file for corpora beyond the default subject.
package taxonomy

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Topic is one syllabus topic. Only the display name participates in
// filename matching; the id exists for stable references in external tools.
type Topic struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Component is one paper type within a subject.
type Component struct {
	Title  string  `yaml:"title" json:"title"`
	Topics []Topic `yaml:"topics" json:"topics"`
}

// Subject is one exam subject with its numbered components.
type Subject struct {
	Name       string               `yaml:"name" json:"name"`
	Components map[string]Component `yaml:"components" json:"components"`
}

// Table maps subject codes to subjects.
type Table map[string]Subject

// ComponentInfo pairs a component digit with its title, for listings.
type ComponentInfo struct {
	Component string `json:"component"`
	Title     string `json:"title"`
}

// Default returns the built-in table: Cambridge A Level Mathematics (9709),
// components 1-5.
func Default() Table {
	return Table{
		"9709": {
			Name: "Cambridge A Level Mathematics",
			Components: map[string]Component{
				"1": {
					Title: "Pure Mathematics 1 (P1)",
					Topics: []Topic{
						{ID: "quadratics", Name: "Quadratics"},
						{ID: "functions", Name: "Functions"},
						{ID: "coordinate_geometry", Name: "Coordinate geometry"},
						{ID: "circular_measure", Name: "Circular measure"},
						{ID: "trigonometry", Name: "Trigonometry"},
						{ID: "series", Name: "Series"},
						{ID: "differentiation", Name: "Differentiation"},
						{ID: "integration", Name: "Integration"},
					},
				},
				"2": {
					Title: "Pure Mathematics 2 (P2)",
					Topics: []Topic{
						{ID: "algebra", Name: "Algebra"},
						{ID: "log_exp", Name: "Logarithmic and exponential functions"},
						{ID: "trigonometry", Name: "Trigonometry"},
						{ID: "differentiation", Name: "Differentiation"},
						{ID: "integration", Name: "Integration"},
						{ID: "numerical_methods", Name: "Numerical methods"},
					},
				},
				"3": {
					Title: "Pure Mathematics 3 (P3)",
					Topics: []Topic{
						{ID: "algebra_functions", Name: "Algebra & functions"},
						{ID: "log_exp", Name: "Logarithmic and exponential functions"},
						{ID: "trigonometry", Name: "Trigonometry"},
						{ID: "differentiation", Name: "Differentiation"},
						{ID: "integration", Name: "Integration"},
						{ID: "numerical_equations", Name: "Numerical solution of equations"},
						{ID: "vectors", Name: "Vectors in 2D/3D"},
						{ID: "diff_eq", Name: "Differential equations"},
						{ID: "complex_numbers", Name: "Complex numbers"},
					},
				},
				"4": {
					Title: "Mechanics (M1)",
					Topics: []Topic{
						{ID: "forces_equilibrium", Name: "Forces and equilibrium"},
						{ID: "kinematics", Name: "Kinematics of motion in a straight line"},
						{ID: "energy_work_power", Name: "Energy, work and power"},
						{ID: "momentum_impulse", Name: "Momentum and impulse"},
						{ID: "projectile", Name: "Motion of a projectile"},
						{ID: "circular_motion", Name: "Uniform circular motion"},
						{ID: "centres_mass", Name: "Centres of mass"},
						{ID: "hooke_law", Name: "Hooke's law, elastic strings and springs"},
					},
				},
				"5": {
					Title: "Probability & Statistics 1 (S1)",
					Topics: []Topic{
						{ID: "data", Name: "Representation of data"},
						{ID: "permutations_combinations", Name: "Permutations and combinations"},
						{ID: "probability", Name: "Probability"},
						{ID: "discrete_rv", Name: "Discrete random variables"},
						{ID: "normal_distribution", Name: "The normal distribution"},
						{ID: "sampling", Name: "Sampling and estimation"},
						{ID: "hypothesis_testing", Name: "Hypothesis testing"},
					},
				},
			},
		},
	}
}

// LoadFile parses a YAML taxonomy file into a Table.
func LoadFile(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy file %s: %w", path, err)
	}
	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy file %s: %w", path, err)
	}
	return table, nil
}

// ListSubjects returns all subject codes in sorted order.
func (t Table) ListSubjects() []string {
	codes := make([]string, 0, len(t))
	for code := range t {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// ListComponents returns the components of a subject sorted by digit.
func (t Table) ListComponents(subject string) []ComponentInfo {
	subj, ok := t[subject]
	if !ok {
		return nil
	}
	out := make([]ComponentInfo, 0, len(subj.Components))
	for digit, comp := range subj.Components {
		out = append(out, ComponentInfo{Component: digit, Title: comp.Title})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Component < out[j].Component })
	return out
}

// Topics returns the ordered topic list for a subject and component digit.
// Unknown subjects or components yield an empty list.
func (t Table) Topics(subject, component string) []Topic {
	subj, ok := t[subject]
	if !ok {
		return nil
	}
	return subj.Components[component].Topics
}

// TopicNames returns just the display names for a subject and component.
func (t Table) TopicNames(subject, component string) []string {
	topics := t.Topics(subject, component)
	names := make([]string, len(topics))
	for i, topic := range topics {
		names[i] = topic.Name
	}
	return names
}
