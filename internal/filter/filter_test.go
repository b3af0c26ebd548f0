package filter_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"silant-backend/internal/filter"
	"silant-backend/internal/model"
	"silant-backend/internal/testutil"
)

func machineSerials(t *testing.T, db *gorm.DB, scopes ...func(*gorm.DB) *gorm.DB) []string {
	t.Helper()
	var out []string
	require.NoError(t, db.Model(&model.Machine{}).Scopes(scopes...).Order("serial").Pluck("serial", &out).Error)
	return out
}

func TestMachineCriteriaFrom(t *testing.T) {
	q := url.Values{
		"equipment": {" PD-10 "},
		"serial":    {"abc"},
		"unknown":   {"ignored"},
	}
	c := filter.MachineCriteriaFrom(q)
	assert.Equal(t, filter.MachineCriteria{Equipment: "PD-10", Serial: "abc"}, c)
	assert.Len(t, c.Scopes(), 2)
	assert.Empty(t, filter.MachineCriteria{}.Scopes())
}

func TestMachineCriteria_Scopes(t *testing.T) {
	db := testutil.OpenDB(t)
	f := testutil.Seed(t, db)

	other := model.Engine{}
	other.Title = "D-260"
	require.NoError(t, db.Create(&other).Error)
	m := f.NewMachine("Z-900", f.C2.ID, f.S1.ID, "2023-05-01")
	m.EngineID = other.ID
	require.NoError(t, db.Omit(clause.Associations).Create(&m).Error)

	testCases := []struct {
		name     string
		criteria filter.MachineCriteria
		expected []string
	}{
		{"no criteria", filter.MachineCriteria{}, []string{"ABC-200", "M-100", "XABC-300", "Z-900"}},
		{"engine title", filter.MachineCriteria{Engine: "D-260"}, []string{"Z-900"}},
		{"equipment title", filter.MachineCriteria{Equipment: "PD-10"}, []string{"ABC-200", "M-100", "XABC-300", "Z-900"}},
		{"unknown title", filter.MachineCriteria{Transmission: "nope"}, nil},
		{"serial substring", filter.MachineCriteria{Serial: "abc"}, []string{"ABC-200", "XABC-300"}},
		{"combined", filter.MachineCriteria{Engine: "D-245", Serial: "00"}, []string{"ABC-200", "M-100", "XABC-300"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ElementsMatch(t, tc.expected, machineSerials(t, db, tc.criteria.Scopes()...))
		})
	}
}

func TestPreview(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.Seed(t, db)

	assert.Empty(t, machineSerials(t, db, filter.Preview("")))
	assert.Empty(t, machineSerials(t, db, filter.Preview("   ")))
	assert.Equal(t, []string{"ABC-200", "XABC-300"}, machineSerials(t, db, filter.Preview("ABC")))
	assert.Equal(t, []string{"M-100"}, machineSerials(t, db, filter.Preview("m-1")))
	assert.Empty(t, machineSerials(t, db, filter.Preview("%")))
}

func TestRecordCriteria_Scopes(t *testing.T) {
	db := testutil.OpenDB(t)
	f := testutil.Seed(t, db)

	for _, m := range []model.Machine{f.M100, f.ABC200, f.XABC300} {
		maintenance := f.NewMaintenance(m.ID, "2024-01-10")
		require.NoError(t, db.Omit(clause.Associations).Create(&maintenance).Error)
		claim := f.NewClaim(m.ID, "2024-02-01", "2024-02-03")
		require.NoError(t, db.Omit(clause.Associations).Create(&claim).Error)
	}

	count := func(m any, scopes []func(*gorm.DB) *gorm.DB) int64 {
		var n int64
		require.NoError(t, db.Model(m).Scopes(scopes...).Count(&n).Error)
		return n
	}

	maintenance := filter.MaintenanceCriteriaFrom(url.Values{"service_company": {"S2"}})
	assert.Equal(t, int64(2), count(&model.Maintenance{}, maintenance.Scopes()))

	maintenance = filter.MaintenanceCriteria{Type: "TO-1", Machine: "m-100"}
	assert.Equal(t, int64(1), count(&model.Maintenance{}, maintenance.Scopes()))

	maintenance = filter.MaintenanceCriteria{Type: "TO-2"}
	assert.Equal(t, int64(0), count(&model.Maintenance{}, maintenance.Scopes()))

	claims := filter.ClaimCriteriaFrom(url.Values{"refusal_node": {"Engine"}, "machine": {"ABC"}})
	assert.Equal(t, int64(2), count(&model.Claim{}, claims.Scopes()))

	claims = filter.ClaimCriteria{RecoveryMethod: "Part replacement", ServiceCompany: "S1"}
	assert.Equal(t, int64(1), count(&model.Claim{}, claims.Scopes()))
}
