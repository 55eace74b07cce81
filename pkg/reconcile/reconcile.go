package reconcile

import "github.com/leapstack-labs/trialrecon/pkg/core"

// Side is one source's grouped records plus how to read their validity.
type Side struct {
	Groups        *Groups
	ValidityField string
	// Truthy is the validity value meaning valid. Empty means DefaultTruthy.
	Truthy string
}

func (s Side) truthy() string {
	if s.Truthy == "" {
		return DefaultTruthy
	}
	return s.Truthy
}

func (s Side) valid(id string) bool {
	return IsValid(s.Groups.Get(id), s.ValidityField, s.truthy())
}

// Sets holds the outcome of reconciling two sides.
//
// Combined is the disjoint union of Both, OnlyA and OnlyB. BothValid and
// NeitherValid only contain ids present in both sources. MismatchValidity is
// a subset of Both.
type Sets struct {
	Combined         core.IDSet
	Both             core.IDSet
	OnlyA            core.IDSet
	OnlyB            core.IDSet
	ValidInA         core.IDSet
	ValidInB         core.IDSet
	BothValid        core.IDSet
	NeitherValid     core.IDSet
	OnlyAValid       core.IDSet
	OnlyBValid       core.IDSet
	MismatchValidity core.IDSet
	DuplicatesInB    core.IDSet

	// Order lists Combined in deterministic order: A ids first-seen, then B-only ids.
	Order []string
}

// Reconcile computes membership, validity and duplicate sets for two sides.
func Reconcile(a, b Side) *Sets {
	var (
		combined, both, onlyA, onlyB                  core.IDSetBuilder
		validA, validB                                core.IDSetBuilder
		bothValid, neitherValid, onlyAValid, onlyBVal core.IDSetBuilder
		mismatch                                      core.IDSetBuilder
	)

	order := make([]string, 0, a.Groups.Len()+b.Groups.Len())
	seen := make(map[string]struct{}, cap(order))
	for _, keys := range [][]string{a.Groups.Keys(), b.Groups.Keys()} {
		for _, id := range keys {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			order = append(order, id)
		}
	}

	for _, id := range order {
		combined.Add(id)

		inA, inB := a.Groups.Has(id), b.Groups.Has(id)
		switch {
		case inA && inB:
			both.Add(id)
		case inA:
			onlyA.Add(id)
		default:
			onlyB.Add(id)
		}

		va, vb := a.valid(id), b.valid(id)
		if va {
			validA.Add(id)
		}
		if vb {
			validB.Add(id)
		}

		switch {
		case va && vb:
			bothValid.Add(id)
		case va:
			onlyAValid.Add(id)
		case vb:
			onlyBVal.Add(id)
		case inA && inB:
			neitherValid.Add(id)
		}

		if inA && inB && va != vb {
			mismatch.Add(id)
		}
	}

	return &Sets{
		Combined:         combined.Build(),
		Both:             both.Build(),
		OnlyA:            onlyA.Build(),
		OnlyB:            onlyB.Build(),
		ValidInA:         validA.Build(),
		ValidInB:         validB.Build(),
		BothValid:        bothValid.Build(),
		NeitherValid:     neitherValid.Build(),
		OnlyAValid:       onlyAValid.Build(),
		OnlyBValid:       onlyBVal.Build(),
		MismatchValidity: mismatch.Build(),
		DuplicatesInB:    Duplicates(b.Groups),
		Order:            order,
	}
}

// Duplicates returns the ids whose group holds more than one record.
func Duplicates(g *Groups) core.IDSet {
	var dup core.IDSetBuilder
	for _, id := range g.Keys() {
		if len(g.Get(id)) > 1 {
			dup.Add(id)
		}
	}
	return dup.Build()
}

// Membership describes where an id was found.
type Membership struct {
	InBoth  bool
	InAOnly bool
	InBOnly bool
}

// MembershipOf returns the membership flags of an id.
func (s *Sets) MembershipOf(id string) Membership {
	return Membership{
		InBoth:  s.Both.Has(id),
		InAOnly: s.OnlyA.Has(id),
		InBOnly: s.OnlyB.Has(id),
	}
}
