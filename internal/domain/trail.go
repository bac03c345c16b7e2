package domain

import (
	"fmt"
	"sort"
	"strings"
)

// NoDataSentinel marks a distance measurement the catalog has no data for,
// as opposed to a legitimate zero (facility at the trailhead).
const NoDataSentinel = -1

// TrailRecord is one row of the trail catalog. The catalog is loaded once at
// startup and never mutated afterwards, so records are shared freely by value.
type TrailRecord struct {
	MountainName string
	CourseName   string
	RegionLabel  string

	TotalDistanceKm          float64
	MaxAltitudeM             float64
	ElevationGainM           float64
	EstimatedDuration        string
	EstimatedDurationMinutes int

	DifficultyTier   string
	DifficultyDetail string
	DifficultyScore  float64

	InfraScore       float64
	ParkingDistanceM float64
	TransitDistanceM float64
	ParkingName      string
	TransitName      string

	ClusterID          int
	StandoutTrait      string
	StandoutScore      float64
	OverallAppealScore float64

	StartLat float64
	StartLon float64
	EndLat   float64
	EndLon   float64
}

// DisplayName is the (mountain, course) natural key rendered for users.
func (t TrailRecord) DisplayName() string {
	return strings.TrimSpace(t.MountainName + " " + t.CourseName)
}

// Cluster is a trail-affinity theme. ClusterAny means no preference.
type Cluster string

const (
	ClusterSeasonal Cluster = "seasonal"
	ClusterView     Cluster = "view"
	ClusterFamily   Cluster = "family"
	ClusterHealing  Cluster = "healing"
	ClusterHidden   Cluster = "hidden"
	ClusterAny      Cluster = "any"
)

// clusterIDs maps themes to the catalog's cluster column. ID 1 is not
// assigned to any theme in the source data.
var clusterIDs = map[Cluster]int{
	ClusterSeasonal: 0,
	ClusterView:     2,
	ClusterFamily:   3,
	ClusterHealing:  4,
	ClusterHidden:   5,
}

// ParseCluster normalizes a theme name. Unknown values come back as
// ClusterAny with ok=false so callers can decide whether to complain.
func ParseCluster(s string) (Cluster, bool) {
	c := Cluster(strings.ToLower(strings.TrimSpace(s)))
	if c == ClusterAny {
		return ClusterAny, true
	}
	if _, known := clusterIDs[c]; known {
		return c, true
	}
	return ClusterAny, false
}

// ID returns the catalog cluster id for the theme. ok is false for
// ClusterAny, which carries no id.
func (c Cluster) ID() (int, bool) {
	id, ok := clusterIDs[c]
	return id, ok
}

// difficultyTiers lists the seven ordinal difficulty labels from easiest to
// hardest. Ordinal level n (1-based) indexes difficultyTiers[n-1].
var difficultyTiers = []string{
	"beginner",
	"novice",
	"intermediate",
	"advanced",
	"expert",
	"superhuman",
	"godlike",
}

const (
	DifficultyMinLevel = 1
	DifficultyMaxLevel = 7
)

// DifficultyTierLabel returns the base label for an ordinal level, or ""
// when the level is outside 1..7.
func DifficultyTierLabel(level int) string {
	if level < DifficultyMinLevel || level > DifficultyMaxLevel {
		return ""
	}
	return difficultyTiers[level-1]
}

// ExpandDifficultyLevels converts an ordinal bound pair into the concrete
// tier labels the catalog uses, including the numbered sub-variants of each
// tier (e.g. "novice", "novice1", "novice2", "novice3"). Nil bounds default
// to the unconstrained extremes.
func ExpandDifficultyLevels(min, max *int) []string {
	lo := DifficultyMinLevel
	hi := DifficultyMaxLevel
	if min != nil {
		lo = *min
	}
	if max != nil {
		hi = *max
	}
	if lo < DifficultyMinLevel {
		lo = DifficultyMinLevel
	}
	if hi > DifficultyMaxLevel {
		hi = DifficultyMaxLevel
	}

	var labels []string
	for level := lo; level <= hi; level++ {
		base := difficultyTiers[level-1]
		labels = append(labels, base)
		for sub := 1; sub <= 3; sub++ {
			labels = append(labels, fmt.Sprintf("%s%d", base, sub))
		}
	}
	return labels
}

// Catalog is the immutable in-memory trail dataset shared across sessions.
type Catalog struct {
	records   []TrailRecord
	mountains []string
}

// NewCatalog wraps a record slice. The slice is owned by the catalog after
// this call and must not be mutated by the caller.
func NewCatalog(records []TrailRecord) *Catalog {
	seen := make(map[string]struct{}, len(records))
	var mountains []string
	for _, r := range records {
		name := strings.TrimSpace(r.MountainName)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			mountains = append(mountains, name)
		}
	}
	return &Catalog{records: records, mountains: mountains}
}

// Records returns the backing record slice. Callers must treat it as
// read-only; the recommendation engine copies before filtering.
func (c *Catalog) Records() []TrailRecord { return c.records }

func (c *Catalog) Len() int { return len(c.records) }

// MountainNames returns the distinct mountain names in catalog order.
func (c *Catalog) MountainNames() []string { return c.mountains }

// CoursesFor returns every record belonging to the named mountain.
func (c *Catalog) CoursesFor(mountain string) []TrailRecord {
	var out []TrailRecord
	for _, r := range c.records {
		if strings.TrimSpace(r.MountainName) == mountain {
			out = append(out, r)
		}
	}
	return out
}

// fillerTokens are stripped before fuzzy name matching so "Bukhansan trail
// recommendation" still matches the mountain "Bukhansan".
var fillerTokens = []string{
	" ", "등산로", "추천", "코스", "trail", "course", "hike", "hiking",
}

func normalizeForMatch(s string) string {
	s = strings.ToLower(s)
	for _, tok := range fillerTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	return s
}

// ExtractMountain finds a catalog mountain mentioned in free text, using
// whitespace- and filler-normalized containment. Returns ok=false when no
// mountain is mentioned.
func (c *Catalog) ExtractMountain(text string) (string, bool) {
	cleaned := normalizeForMatch(text)
	for _, mountain := range c.mountains {
		m := normalizeForMatch(mountain)
		if m == "" {
			continue
		}
		if strings.Contains(cleaned, m) || strings.Contains(text, mountain) {
			return mountain, true
		}
	}
	return "", false
}

// CatalogSummary aggregates the whole catalog for open-ended questions.
type CatalogSummary struct {
	TrailCount    int
	MountainCount int
	MeanAppeal    float64
	MeanInfra     float64
	Mountains     []string
}

// Summary computes whole-catalog aggregates. Mountains is capped at ten
// names to keep prompt payloads small.
func (c *Catalog) Summary() CatalogSummary {
	s := CatalogSummary{
		TrailCount:    len(c.records),
		MountainCount: len(c.mountains),
	}
	if len(c.records) == 0 {
		return s
	}
	var appeal, infra float64
	for _, r := range c.records {
		appeal += r.OverallAppealScore
		infra += r.InfraScore
	}
	s.MeanAppeal = appeal / float64(len(c.records))
	s.MeanInfra = infra / float64(len(c.records))
	n := len(c.mountains)
	if n > 10 {
		n = 10
	}
	s.Mountains = c.mountains[:n]
	return s
}

// MountainSummary aggregates one mountain for entity questions.
type MountainSummary struct {
	Mountain         string
	Region           string
	CourseCount      int
	CommonDifficulty string
	MeanDistanceKm   float64
	MeanAltitudeM    float64
	StandoutTrait    string
	Courses          []TrailRecord
}

// SummarizeMountain aggregates the courses of one mountain. ok is false
// when the mountain has no records.
func (c *Catalog) SummarizeMountain(mountain string) (MountainSummary, bool) {
	courses := c.CoursesFor(mountain)
	if len(courses) == 0 {
		return MountainSummary{}, false
	}

	var dist, alt float64
	difficulties := make(map[string]int)
	for _, r := range courses {
		dist += r.TotalDistanceKm
		alt += r.MaxAltitudeM
		difficulties[r.DifficultyDetail]++
	}

	// Most common difficulty detail; ties resolved lexicographically so the
	// summary is stable across runs.
	keys := make([]string, 0, len(difficulties))
	for k := range difficulties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	common := ""
	best := 0
	for _, k := range keys {
		if difficulties[k] > best {
			best = difficulties[k]
			common = k
		}
	}

	return MountainSummary{
		Mountain:         mountain,
		Region:           courses[0].RegionLabel,
		CourseCount:      len(courses),
		CommonDifficulty: common,
		MeanDistanceKm:   dist / float64(len(courses)),
		MeanAltitudeM:    alt / float64(len(courses)),
		StandoutTrait:    courses[0].StandoutTrait,
		Courses:          courses,
	}, true
}
