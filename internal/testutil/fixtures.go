package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/trialrecon/internal/config"
	"github.com/leapstack-labs/trialrecon/internal/loader"
)

// Sample exports for May 2016. RM tenants:
//
//	t1       in both, valid in both
//	acme_t2  in both, valid only in A, feed trial start in April
//	t3       only in A, valid, unknown to the feed
//	t4       only in A, invalid, attributed to employee testing
//	t5       only in B, listed twice with different validity
//
// A also holds an RM trial created before the range and one BU trial x9
// that B matches.
const (
	SampleA = "Lead ID,Tenant ID,Fixed Product,Is Valid,Marketing Territory,LN Attribution Group,Created\n" +
		"rm:t1,,1 - RM,1,NAM,,2016-05-02\n" +
		"rm:acme:t2,,1 - RM,1,NAM,,2016-05-03\n" +
		"x3,t3,1 - RM,1,NAM,,2016-05-04\n" +
		"rm:t4,,1 - RM,0,NAM,Employee Testing,2016-05-05\n" +
		"rm:old1,,1 - RM,1,NAM,,2016-04-01\n" +
		"backup:x9,,3 - Backup,1,NAM,,2016-05-06\n" +
		"\n" +
		"Total,6\n"

	SampleB = "Lead ID,Tenant MAXRM,Tenant MAXBU,Core Product,Is Valid,Group,Trial Start\n" +
		"L1,t1,,1 - RM,1,NAM,2016-05-02\n" +
		"L2,acme_t2,,1 - RM,0,NAM,2016-05-03\n" +
		"L5,t5,,1 - RM,1,LATAM,2016-05-10\n" +
		"L5b,t5,,1 - RM,0,LATAM,2016-05-11\n" +
		"L9,,x9,3 - Backup,1,NAM,2016-05-06\n"

	SampleFeed = "TenantID,Product,Sub-Region,Trial_Start,Source,OpportunityType\n" +
		"acme_t2,1 - RM,NAM,2016-04-15,Web,New\n" +
		"t4,1 - RM,NAM,2016-05-05,Web,New\n"
)

// Sample export file names, matching the default source patterns.
const (
	SampleAFile    = "amarillo_20160601.csv"
	SampleBFile    = "sfdc_20160601.csv"
	SampleFeedFile = "feed_20160601.csv"
)

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// WriteSampleExports writes the three sample exports into dir.
func WriteSampleExports(t testing.TB, dir string) {
	t.Helper()
	WriteFile(t, dir, SampleAFile, SampleA)
	WriteFile(t, dir, SampleBFile, SampleB)
	WriteFile(t, dir, SampleFeedFile, SampleFeed)
}

// SampleComparisons returns the RM and BU comparisons matching the sample
// exports.
func SampleComparisons() []config.Comparison {
	left := func(product string) config.Side {
		return config.Side{
			ID: "Lead ID", Tenant: "Tenant ID", Product: "Fixed Product", Valid: "Is Valid",
			Cols: []string{"Lead ID", "Generated Tenant", "Is Valid"},
			Filters: config.Filters{
				Include: []loader.FilterRule{{Column: "Fixed Product", Operator: "=", Value: product}},
				Exclude: []loader.FilterRule{{Column: "Created", Operator: "<", Value: "$START_DATE"}},
			},
		}
	}
	right := func(product, tenantCol string) config.Side {
		return config.Side{
			ID: "Lead ID", Tenant: tenantCol, Product: "Core Product", Valid: "Is Valid",
			Cols:     []string{"Lead ID", tenantCol, "Is Valid"},
			ColTypes: map[string]string{"Is Valid": config.ColTypeInteger},
			Filters: config.Filters{
				Include: []loader.FilterRule{{Column: "Core Product", Operator: "=", Value: product}},
			},
		}
	}
	return []config.Comparison{
		{Product: "RM", Left: left("1 - RM"), Right: right("1 - RM", "Tenant MAXRM")},
		{Product: "BU", Left: left("3 - Backup"), Right: right("3 - Backup", "Tenant MAXBU")},
	}
}
