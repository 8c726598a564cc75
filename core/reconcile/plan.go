package reconcile

import (
	"cosmos-isolation/core/docstore"
	"cosmos-isolation/core/envelope"
)

// BuildPlan marks each record as existing or to be created, keeping record
// order. Item totals always use the number of items present.
func BuildPlan(records []envelope.ContainerRecord, existing []string) *Plan {
	set := docstore.NameSet(existing)
	plan := &Plan{Containers: make([]ContainerPlan, 0, len(records))}

	for _, rec := range records {
		_, ok := set[rec.Name]
		cp := ContainerPlan{
			Name:         rec.Name,
			Items:        len(rec.Items),
			PartitionKey: rec.PartitionKey,
			Exists:       ok,
		}
		plan.Containers = append(plan.Containers, cp)

		plan.Summary.Containers++
		plan.Summary.TotalItems += cp.Items
		if ok {
			plan.Summary.Existing++
		} else {
			plan.Summary.ToCreate++
		}
	}
	return plan
}

// Missing returns the names of containers the plan would create.
func (p *Plan) Missing() []string {
	var names []string
	for _, c := range p.Containers {
		if !c.Exists {
			names = append(names, c.Name)
		}
	}
	return names
}
