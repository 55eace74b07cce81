package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/trialrecon/pkg/core"
)

var fields = Fields{ID: "id", Tenant: "tenant", Product: "product"}

func record(t *testing.T, id, tenantID, product string) *core.Record {
	t.Helper()
	rec, err := core.NewRecord(core.MustHeader("id", "tenant", "product"), []string{id, tenantID, product})
	require.NoError(t, err)
	return rec
}

func TestResolveCanonicalID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		tenant  string
		product string
		want    string
	}{
		{name: "tenant field wins", id: "rm:x:1", tenant: "T-9", product: "RM", want: "T-9"},
		{name: "rm namespace", id: "rm:acme:42", product: "RM", want: "acme_42"},
		{name: "rm it label", id: "rm:acme:42", product: "6 - ControlNow / MAX IT", want: "acme_42"},
		{name: "salesforce id", id: "salesforce:0015000000abc", product: "RM", want: "0015000000abc"},
		{name: "backup namespace", id: "backup:b-77", product: "3 - Backup", want: "b-77"},
		{name: "mail passthrough", id: "mail:1", product: "MM", want: "mail:1"},
		{name: "unknown product passthrough", id: "x:1", product: "Widget", want: "x:1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveCanonicalID(record(t, tt.id, tt.tenant, tt.product), fields)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateAmarilloID(t *testing.T) {
	tests := []struct {
		canonical string
		product   string
		want      string
	}{
		{"acme_42", "RM", "rm:acme:42"},
		{"tenant1234", "RM", "tenant1234"},
		{"acme_42", "RM(IT)", "rm:acme:42"},
		{"b-77", "BU", "backup:b-77"},
		{"mail_1", "MM", "mail_1"},
		{"mail_1", "MM(IT)", "mail_1"},
	}

	for _, tt := range tests {
		t.Run(tt.product+"/"+tt.canonical, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateAmarilloID(tt.canonical, tt.product))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	ids := []string{"tenant1234", "acme_42", "a_b_c", "b-77"}
	products := []string{"RM", "RM(IT)", "BU", "MM", "MM(IT)"}

	for _, p := range products {
		for _, id := range ids {
			rec := record(t, GenerateAmarilloID(id, p), "", p)
			assert.Equal(t, id, ResolveCanonicalID(rec, fields), "product %s id %s", p, id)
		}
	}
}

func TestColumnResolver(t *testing.T) {
	h := core.MustHeader("Core Product", "Tenant MAXRM", "Tenant MAXBU")
	r := ColumnResolver{
		ProductField: "Core Product",
		Columns: map[string]string{
			"1 - RM":     "Tenant MAXRM",
			"3 - Backup": "Tenant MAXBU",
		},
	}

	rm, err := core.NewRecord(h, []string{"1 - RM", "acme_1", ""})
	require.NoError(t, err)
	bu, err := core.NewRecord(h, []string{"3 - Backup", "", "b-2"})
	require.NoError(t, err)
	other, err := core.NewRecord(h, []string{"9 - Other", "x", "y"})
	require.NoError(t, err)

	assert.Equal(t, "acme_1", r.Resolve(rm))
	assert.Equal(t, "b-2", r.Resolve(bu))
	assert.Empty(t, r.Resolve(other))
}
