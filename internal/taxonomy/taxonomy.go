// Package taxonomy holds the fixed hierarchical filter tree the dashboard
// exposes. Leaf identifiers are part of the public contract (stored and
// shared selections reference them) and must not change.
package taxonomy

import "github.com/sind-data/insecurity-dashboard/internal/model"

// Node is one entry in the filter tree. Leaves have no children.
type Node struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Children []Node `json:"children"`
}

// Subgroup identifiers. A subgroup is a cluster of sibling leaves under a
// top-level category; selection semantics treat each subgroup independently.
const (
	SubgroupIncidentType = "incident_type"
	SubgroupSector       = "sector_affected"
	SubgroupLaunch       = "launch_type"
	SubgroupTypeOfSV     = "type_of_sv"
	SubgroupSurvivorSex  = "survivor_sex"
	SubgroupAgeGroup     = "age_group"
)

// Aid worker incident-type leaves.
const (
	LeafKilled    = "killed"
	LeafInjured   = "injured"
	LeafKidnapped = "kidnapped"
	LeafArrested  = "arrested"
)

var tree = []Node{
	{
		Name: "Aid Workers (KIKA)", Value: string(model.CategoryAidWorkers),
		Children: []Node{
			{
				Name: "Incident Type", Value: SubgroupIncidentType,
				Children: []Node{
					{Name: "Killed", Value: LeafKilled},
					{Name: "Injured", Value: LeafInjured},
					{Name: "Kidnapped", Value: LeafKidnapped},
					{Name: "Arrested", Value: LeafArrested},
				},
			},
		},
	},
	{
		Name: "Explosive Weapons", Value: string(model.CategoryWeapons),
		Children: []Node{
			{
				Name: "Sector Affected", Value: SubgroupSector,
				Children: []Node{
					{Name: "Aid Operations", Value: "aid_operations"},
					{Name: "Health care", Value: "health_care"},
					{Name: "Food Security", Value: "food_security"},
					{Name: "Education", Value: "education"},
					{Name: "IDP/refugee protection", Value: "idp_refugee_protection"},
				},
			},
			{
				Name: "Launch Type", Value: SubgroupLaunch,
				Children: []Node{
					{Name: "Air launched", Value: "air_launched"},
					{Name: "Air-launched Plane", Value: "air_launched_plane"},
					{Name: "Air-launched Drone", Value: "air_launched_drone"},
					{Name: "Air-launched Helicopter", Value: "air_launched_helicopter"},
					{Name: "Ground-launched", Value: "ground_launched"},
					{Name: "Directly emplaced", Value: "directly_emplaced"},
					{Name: "Unspecified Launch Method", Value: "unspecified_launch_method"},
				},
			},
		},
	},
	{
		Name: "CRSV", Value: string(model.CategoryCRSV),
		Children: []Node{
			{
				Name: "Type of SV", Value: SubgroupTypeOfSV,
				Children: []Node{
					{Name: "Rape", Value: "rape"},
					{Name: "Sexual slavery", Value: "sexual_slavery"},
					{Name: "Forced prostitution", Value: "forced_prostitution"},
				},
			},
			{
				Name: "Survivor/Victim Sex", Value: SubgroupSurvivorSex,
				Children: []Node{
					{Name: "Male", Value: "male"},
					{Name: "Female", Value: "female"},
				},
			},
			{
				Name: "Adult or Minor", Value: SubgroupAgeGroup,
				Children: []Node{
					{Name: "Adult", Value: "adult"},
					{Name: "Minor", Value: "minor"},
				},
			},
		},
	},
}

// Tree returns the full filter tree for serialization to the frontend.
func Tree() []Node {
	return tree
}

// Leaves returns every leaf value in tree order. This is also the default
// selection: a fresh dashboard starts with everything selected.
func Leaves() []string {
	var out []string
	collectLeaves(tree, &out)
	return out
}

func collectLeaves(nodes []Node, out *[]string) {
	for _, n := range nodes {
		if len(n.Children) == 0 {
			*out = append(*out, n.Value)
			continue
		}
		collectLeaves(n.Children, out)
	}
}

// LeafCount returns the total number of leaves in the tree.
func LeafCount() int {
	return len(Leaves())
}

// SubgroupLeaves returns the leaf values under the named subgroup, in tree
// order, or nil if the subgroup is unknown.
func SubgroupLeaves(subgroup string) []string {
	n := findNode(tree, subgroup)
	if n == nil {
		return nil
	}
	var out []string
	collectLeaves(n.Children, &out)
	return out
}

// CategoryLeaves returns every leaf value under the given top-level category.
func CategoryLeaves(tag model.CategoryTag) []string {
	n := findNode(tree, string(tag))
	if n == nil {
		return nil
	}
	var out []string
	collectLeaves(n.Children, &out)
	return out
}

// LeafName returns the display name for a leaf or group value, or the value
// itself if it is not in the tree.
func LeafName(value string) string {
	if n := findNode(tree, value); n != nil {
		return n.Name
	}
	return value
}

func findNode(nodes []Node, value string) *Node {
	for i := range nodes {
		if nodes[i].Value == value {
			return &nodes[i]
		}
		if n := findNode(nodes[i].Children, value); n != nil {
			return n
		}
	}
	return nil
}
