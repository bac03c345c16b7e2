package recommend_test

import (
	"fmt"
	"testing"

	"trail-orchestrator/internal/domain"
	"trail-orchestrator/internal/usecase/recommend"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int             { return &v }
func floatPtr(v float64) *float64   { return &v }
func openPlan() domain.Plan         { return domain.NewOpenPlan(domain.IntentRecommend, "") }
func names(rs []domain.TrailRecord) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.CourseName
	}
	return out
}

// alternatingCatalog builds 10 trails with appeal scores 9..0 where even
// appeal ranks are tier novice (2) and odd ranks are tier expert (5).
func alternatingCatalog() []domain.TrailRecord {
	records := make([]domain.TrailRecord, 10)
	for i := 0; i < 10; i++ {
		tier := "novice"
		if i%2 == 1 {
			tier = "expert"
		}
		records[i] = domain.TrailRecord{
			MountainName:       fmt.Sprintf("mountain-%02d", i),
			CourseName:         fmt.Sprintf("course-%02d", i),
			DifficultyTier:     tier,
			DifficultyDetail:   tier + "1",
			OverallAppealScore: float64(9 - i),
			InfraScore:         5,
			TotalDistanceKm:    5,
			MaxAltitudeM:       800,
			ParkingDistanceM:   100,
		}
	}
	return records
}

func TestRun_AlternatingTierFilterAndRank(t *testing.T) {
	records := alternatingCatalog()

	plan := openPlan()
	plan.Constraints.DifficultyMin = intPtr(1)
	plan.Constraints.DifficultyMax = intPtr(3)

	got := recommend.Run(records, plan, 3)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"course-00", "course-02", "course-04"}, names(got))
	assert.Equal(t, 9.0, got[0].OverallAppealScore)

	// The full filtered set is the 5 novice records.
	all := recommend.Run(records, plan, 10)
	assert.Len(t, all, 5)
}

func TestRun_Deterministic(t *testing.T) {
	records := alternatingCatalog()
	plan := openPlan()
	plan.Constraints.InfraMin = floatPtr(1)

	first := recommend.Run(records, plan, 5)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, recommend.Run(records, plan, 5))
	}
}

func TestRun_RankingInvariant(t *testing.T) {
	got := recommend.Run(alternatingCatalog(), openPlan(), 10)
	require.NotEmpty(t, got)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].OverallAppealScore, got[i].OverallAppealScore)
	}
}

func TestRun_TopKBound(t *testing.T) {
	records := alternatingCatalog()

	got := recommend.Run(records, openPlan(), 3)
	assert.Len(t, got, 3)

	got = recommend.Run(records, openPlan(), 50)
	assert.Len(t, got, len(records))

	got = recommend.Run(records, openPlan(), 0)
	assert.Empty(t, got)
}

func TestRun_FilterMonotonicity(t *testing.T) {
	records := alternatingCatalog()

	base := openPlan()
	narrowings := []domain.Plan{}

	p := base
	p.ClusterPreference = domain.ClusterHealing
	narrowings = append(narrowings, p)

	p = base
	p.Constraints.DifficultyMax = intPtr(3)
	narrowings = append(narrowings, p)

	p = base
	p.Constraints.DistanceMaxKm = floatPtr(4)
	narrowings = append(narrowings, p)

	p = base
	p.Constraints.AltitudeMinM = floatPtr(900)
	narrowings = append(narrowings, p)

	p = base
	p.Exclude.Mountains = []string{"mountain-00"}
	narrowings = append(narrowings, p)

	baseCount := len(recommend.Run(records, base, len(records)))
	for _, narrowed := range narrowings {
		got := recommend.Run(records, narrowed, len(records))
		assert.LessOrEqual(t, len(got), baseCount)
	}
}

func TestRun_ParkingSentinel(t *testing.T) {
	records := []domain.TrailRecord{
		{MountainName: "A", CourseName: "a", ParkingDistanceM: domain.NoDataSentinel, OverallAppealScore: 9},
		{MountainName: "B", CourseName: "b", ParkingDistanceM: 0, OverallAppealScore: 8},
		{MountainName: "C", CourseName: "c", ParkingDistanceM: 250, OverallAppealScore: 7},
	}

	plan := openPlan()
	plan.Constraints.ParkDistMax = floatPtr(100)

	got := recommend.Run(records, plan, 5)
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].MountainName)
	for _, r := range got {
		assert.NotEqual(t, float64(domain.NoDataSentinel), r.ParkingDistanceM)
	}
}

func TestRun_ContradictoryBoundsReturnEmpty(t *testing.T) {
	plan := openPlan()
	plan.Constraints.InfraMin = floatPtr(8)
	plan.Constraints.InfraMax = floatPtr(2)

	got := recommend.Run(alternatingCatalog(), plan, 5)
	assert.Empty(t, got)
}

func TestRun_AllNullPlanIsIdentityFilter(t *testing.T) {
	records := alternatingCatalog()
	got := recommend.Run(records, openPlan(), len(records))
	assert.Len(t, got, len(records))
}

func TestRun_Exclusions(t *testing.T) {
	records := alternatingCatalog()
	plan := openPlan()
	plan.Exclude.Mountains = []string{"mountain-00"}
	plan.Exclude.Trails = []string{"course-01"}

	got := recommend.Run(records, plan, len(records))
	assert.Len(t, got, len(records)-2)
	for _, r := range got {
		assert.NotEqual(t, "mountain-00", r.MountainName)
		assert.NotEqual(t, "course-01", r.CourseName)
	}
}

func TestRun_TieBreakIsNameOrder(t *testing.T) {
	records := []domain.TrailRecord{
		{MountainName: "Z", CourseName: "z", OverallAppealScore: 5},
		{MountainName: "A", CourseName: "b", OverallAppealScore: 5},
		{MountainName: "A", CourseName: "a", OverallAppealScore: 5},
	}

	got := recommend.Run(records, openPlan(), 3)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].CourseName)
	assert.Equal(t, "b", got[1].CourseName)
	assert.Equal(t, "Z", got[2].MountainName)
}

func TestRun_ClusterFilter(t *testing.T) {
	records := []domain.TrailRecord{
		{MountainName: "A", CourseName: "a", ClusterID: 4, OverallAppealScore: 3},
		{MountainName: "B", CourseName: "b", ClusterID: 2, OverallAppealScore: 9},
	}

	plan := openPlan()
	plan.ClusterPreference = domain.ClusterHealing

	got := recommend.Run(records, plan, 5)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].MountainName)
}

func TestRun_EmptyCatalog(t *testing.T) {
	got := recommend.Run(nil, openPlan(), 5)
	assert.Empty(t, got)
}
