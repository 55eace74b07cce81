package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/trialrecon/pkg/core"
	"github.com/leapstack-labs/trialrecon/pkg/reason"
	"github.com/leapstack-labs/trialrecon/pkg/reconcile"
)

// rec builds a record from alternating column names and values.
func rec(t *testing.T, kv ...string) *core.Record {
	t.Helper()
	require.Equal(t, 0, len(kv)%2)
	names := make([]string, 0, len(kv)/2)
	values := make([]string, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		names = append(names, kv[i])
		values = append(values, kv[i+1])
	}
	h, err := core.NewHeader(names)
	require.NoError(t, err)
	r, err := core.NewRecord(h, values)
	require.NoError(t, err)
	return r
}

func group(recs ...*core.Record) []*core.Record {
	return recs
}

var (
	inBoth  = reconcile.Membership{InBoth: true}
	inAOnly = reconcile.Membership{InAOnly: true}
	inBOnly = reconcile.Membership{InBOnly: true}
)

func may2016() core.DateRange {
	return core.DateRange{
		Start: time.Date(2016, 5, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2016, 5, 31, 0, 0, 0, 0, time.UTC),
	}
}

func input(m reconcile.Membership, a, b, feed []*core.Record) *reason.Input {
	return &reason.Input{
		TenantID:   "t1",
		Membership: m,
		A:          a,
		B:          b,
		Feed:       feed,
		Range:      may2016(),
		Fields:     reason.DefaultFields(),
	}
}

func TestTerritoryChange(t *testing.T) {
	tests := []struct {
		name   string
		in     *reason.Input
		want   string
		wantOK bool
	}{
		{
			name: "both sources disagree",
			in: input(inBoth,
				group(rec(t, "Marketing Territory", "1 - North America")),
				group(rec(t, "Group", "2 - LATAM")), nil),
			want:   "1:NAM in Amarillo, LATAM in SFDC",
			wantOK: true,
		},
		{
			name: "labels normalize to the same region",
			in: input(inBoth,
				group(rec(t, "Marketing Territory", "01 - North America")),
				group(rec(t, "Group", "US West")), nil),
			wantOK: false,
		},
		{
			name: "blank A region in both",
			in: input(inBoth,
				group(rec(t, "Marketing Territory", " ")),
				group(rec(t, "Group", "NAM")), nil),
			wantOK: false,
		},
		{
			name: "A only against B all-records",
			in: input(inAOnly,
				group(rec(t, "Marketing Territory", "NAM")),
				group(rec(t, "Group", "LATAM")), nil),
			want:   "2:NAM in Amarillo, LATAM in SFDC",
			wantOK: true,
		},
		{
			name: "A only against feed",
			in: input(inAOnly,
				group(rec(t, "Marketing Territory", "NAM")),
				nil,
				group(rec(t, "Sub-Region", "02 - LATAM"))),
			want:   "3:NAM in Amarillo, LATAM in SFDC Feed",
			wantOK: true,
		},
		{
			name: "B only",
			in: input(inBOnly,
				group(rec(t, "Marketing Territory", "LATAM")),
				group(rec(t, "Group", "NAM")), nil),
			want:   "4:LATAM in Amarillo, NAM in SFDC",
			wantOK: true,
		},
		{
			name: "B only without A records",
			in: input(inBOnly, nil,
				group(rec(t, "Group", "NAM")), nil),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TerritoryChange.Check(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, CategoryTerritoryChange, got.Category)
				assert.Equal(t, tt.want, got.Detail)
			}
		})
	}
}

func TestProductChange(t *testing.T) {
	tests := []struct {
		name   string
		in     *reason.Input
		want   string
		wantOK bool
	}{
		{
			name: "both sources disagree",
			in: input(inBoth,
				group(rec(t, "Fixed Product", "RM")),
				group(rec(t, "Core Product", "3 - Backup")), nil),
			want:   "1:RM in Amarillo, BU in SFDC",
			wantOK: true,
		},
		{
			name: "same product different labels",
			in: input(inBoth,
				group(rec(t, "Fixed Product", "RM")),
				group(rec(t, "Core Product", "1 - RM")), nil),
			wantOK: false,
		},
		{
			name: "A only against blank B product",
			in: input(inAOnly,
				group(rec(t, "Fixed Product", "RM")),
				group(rec(t, "Core Product", "")),
				group(rec(t, "Product", "LN - MAX Mail"))),
			want:   "3:RM in Amarillo, MM in SFDC Feed",
			wantOK: true,
		},
		{
			name: "A only against B",
			in: input(inAOnly,
				group(rec(t, "Fixed Product", "BU")),
				group(rec(t, "Core Product", "4 - MAX Mail")), nil),
			want:   "2:BU in Amarillo, MM in SFDC",
			wantOK: true,
		},
		{
			name: "B only",
			in: input(inBOnly,
				group(rec(t, "Fixed Product", "MM")),
				group(rec(t, "Core Product", "1 - RM")), nil),
			want:   "4:MM in Amarillo, RM in SFDC",
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ProductChange.Check(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, CategoryProductChange, got.Category)
				assert.Equal(t, tt.want, got.Detail)
			}
		})
	}
}

func TestReusedTenant(t *testing.T) {
	a := group(rec(t, "Fixed Product", "RM"))

	got, ok := ReusedTenant.Check(input(inAOnly, a, nil, nil))
	require.True(t, ok)
	assert.Equal(t, core.Reason{Category: "Not in SFDC Feed", Detail: "Validity not read from SFDC"}, got)

	_, ok = ReusedTenant.Check(input(inAOnly, a, nil, group(rec(t, "TenantID", "t1"))))
	assert.False(t, ok, "feed knows the tenant")

	_, ok = ReusedTenant.Check(input(inBoth, a, nil, nil))
	assert.False(t, ok, "only A-only tenants are considered")
}

func TestEmployeeTesting(t *testing.T) {
	got, ok := EmployeeTesting.Check(input(inAOnly,
		group(rec(t, "LN Attribution Group", "Employee Testing")), nil, nil))
	require.True(t, ok)
	assert.Equal(t, core.Reason{Category: "Employee Testing", Detail: "Amarillo identifies as Test Trial"}, got)

	_, ok = EmployeeTesting.Check(input(inAOnly,
		group(
			rec(t, "LN Attribution Group", "Employee Testing"),
			rec(t, "LN Attribution Group", "Marketing"),
		), nil, nil))
	assert.False(t, ok, "collapsed to multiple")
}

func TestDuplicateValidity(t *testing.T) {
	mixed := group(rec(t, "Is Valid", "1"), rec(t, "Is Valid", "0"))
	same := group(rec(t, "Is Valid", "1"), rec(t, "Is Valid", "1"))

	in := input(inBoth, nil, mixed, nil)
	in.DuplicateInB = true
	got, ok := DuplicateValidity.Check(in)
	require.True(t, ok)
	assert.Equal(t, core.Reason{Category: "Multiple entry in SFDC", Detail: "Different validity values"}, got)

	in = input(inBoth, nil, same, nil)
	in.DuplicateInB = true
	_, ok = DuplicateValidity.Check(in)
	assert.False(t, ok)

	_, ok = DuplicateValidity.Check(input(inBoth, nil, mixed, nil))
	assert.False(t, ok, "not flagged as duplicate")
}

func TestTimingIssue(t *testing.T) {
	tests := []struct {
		name   string
		start  []string
		wantOK bool
	}{
		{name: "before range", start: []string{"2016-04-30"}, wantOK: true},
		{name: "after range", start: []string{"06/01/2016"}, wantOK: true},
		{name: "range start inclusive", start: []string{"2016-05-01"}, wantOK: false},
		{name: "range end inclusive", start: []string{"2016-05-31 23:10:00.0000000"}, wantOK: false},
		{name: "unparseable", start: []string{"tomorrow"}, wantOK: false},
		{name: "multiple dates", start: []string{"2016-01-01", "2016-02-01"}, wantOK: false},
		{name: "no feed", start: nil, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var feed []*core.Record
			for _, s := range tt.start {
				feed = append(feed, rec(t, "Trial_Start", s))
			}
			got, ok := TimingIssue.Check(input(inAOnly, nil, nil, feed))
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, core.Reason{Category: "Timing Issue", Detail: "Trial Start out of Range in SFDC"}, got)
			}
		})
	}
}

func TestCustomerTrial(t *testing.T) {
	got, ok := CustomerTrial.Check(input(inAOnly, nil, nil, group(rec(t, "Source", "Customer Trial"))))
	require.True(t, ok)
	assert.Equal(t, core.Reason{Category: "Excluded from SFDC", Detail: "Source is Customer Trial"}, got)

	_, ok = CustomerTrial.Check(input(inAOnly, nil, nil, group(rec(t, "Source", "Web"))))
	assert.False(t, ok)
}

func TestOpportunityType(t *testing.T) {
	tests := []struct {
		value  string
		wantOK bool
	}{
		{"Renewal - Upsell", true},
		{"Platform MIGRATION", true},
		{"Existing Customer", true},
		{"New Business", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, ok := OpportunityType.Check(input(inAOnly, nil, nil, group(rec(t, "OpportunityType", tt.value))))
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, core.Reason{Category: "Excluded from SFDC", Detail: "Type " + tt.value}, got)
			}
		})
	}
}

func TestMissingTrialStart(t *testing.T) {
	got, ok := MissingTrialStart.Check(input(inAOnly,
		group(rec(t, "Fixed Product", "RM")), nil, group(rec(t, "Trial_Start", ""))))
	require.True(t, ok)
	assert.Equal(t, core.Reason{Category: "No Trial Start Date"}, got)

	_, ok = MissingTrialStart.Check(input(inAOnly, nil,
		group(rec(t, "Trial Start", "")), nil))
	assert.False(t, ok, "B carries the column")

	_, ok = MissingTrialStart.Check(input(inAOnly, nil, nil,
		group(rec(t, "Trial_Start", "2016-05-02"))))
	assert.False(t, ok, "feed has a date")
}

func TestDefaultChain_Order(t *testing.T) {
	var ids []string
	for _, r := range reason.DefaultChain().Rules() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"RC01", "RC02", "RC03", "RC04", "RC05", "RC06", "RC07", "RC08", "RC09"}, ids)
}

func TestDefaultChain_Precedence(t *testing.T) {
	chain := reason.DefaultChain()

	t.Run("territory beats employee testing", func(t *testing.T) {
		a := group(rec(t, "Marketing Territory", "NAM", "LN Attribution Group", "Employee Testing"))
		b := group(rec(t, "Group", "LATAM"))
		got := chain.Infer(input(inBoth, a, b, nil))
		assert.Equal(t, CategoryTerritoryChange, got.Category)
	})

	t.Run("territory beats product change", func(t *testing.T) {
		a := group(rec(t, "Marketing Territory", "1 - North America", "Fixed Product", "1 - RM"))
		b := group(rec(t, "Group", "2 - LATAM", "Core Product", "3 - Backup"))

		_, ok := ProductChange.Check(input(inBoth, a, b, nil))
		require.True(t, ok, "product change applies on its own")

		got := chain.Infer(input(inBoth, a, b, nil))
		assert.Equal(t, core.Reason{
			Category: CategoryTerritoryChange,
			Detail:   "1:NAM in Amarillo, LATAM in SFDC",
		}, got)
	})

	t.Run("reused tenant beats employee testing", func(t *testing.T) {
		a := group(rec(t, "LN Attribution Group", "Employee Testing"))
		got := chain.Infer(input(inAOnly, a, nil, nil))
		assert.Equal(t, CategoryNotInFeed, got.Category)
	})

	t.Run("employee testing when feed knows the tenant", func(t *testing.T) {
		a := group(rec(t, "LN Attribution Group", "Employee Testing"))
		feed := group(rec(t, "TenantID", "t1", "Trial_Start", "2016-05-03"))
		got := chain.Infer(input(inAOnly, a, nil, feed))
		assert.Equal(t, CategoryEmployeeTesting, got.Category)
	})

	t.Run("no auxiliary records", func(t *testing.T) {
		assert.Equal(t, core.NoReason, chain.Infer(input(inAOnly, nil, nil, nil)))
	})

	t.Run("nothing matches", func(t *testing.T) {
		b := group(rec(t, "Trial Start", "2016-05-03", "Is Valid", "1"))
		feed := group(rec(t, "TenantID", "t1", "Trial_Start", "2016-05-03", "Source", "Web"))
		got := chain.Infer(input(inBOnly, nil, b, feed))
		assert.False(t, got.Found())
	})
}

func TestDefaultChain_ProductChangeAcrossSources(t *testing.T) {
	aRecs := []*core.Record{rec(t, "Tenant", "t1", "Fixed Product", "1 - RM", "Is Valid", "1")}
	bRecs := []*core.Record{rec(t, "Tenant", "t1", "Core Product", "3 - Backup", "Is Valid", "1")}
	aGroups := reconcile.GroupByField(aRecs, "Tenant")
	bGroups := reconcile.GroupByField(bRecs, "Tenant")

	sets := reconcile.Reconcile(
		reconcile.Side{Groups: aGroups, ValidityField: "Is Valid"},
		reconcile.Side{Groups: bGroups, ValidityField: "Is Valid"},
	)
	assert.Equal(t, []string{"t1"}, sets.Both.Sorted())
	assert.Equal(t, []string{"t1"}, sets.BothValid.Sorted())
	assert.Zero(t, sets.OnlyA.Len())
	assert.Zero(t, sets.OnlyB.Len())

	in := input(sets.MembershipOf("t1"), aGroups.Get("t1"), bGroups.Get("t1"), nil)
	assert.Equal(t, core.Reason{
		Category: CategoryProductChange,
		Detail:   "1:RM in Amarillo, BU in SFDC",
	}, reason.DefaultChain().Infer(in))
}
