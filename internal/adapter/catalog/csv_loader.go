package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"trail-orchestrator/internal/domain"
)

// headerAliases maps the column names found in catalog exports onto
// canonical field keys. The dashboard export ships Korean headers; hand
// curated files tend to use snake_case English. Both are accepted.
var headerAliases = map[string]string{
	"코스명":       "course_name",
	"산이름":       "mountain_name",
	"위치":        "region",
	"총거리_km":    "total_distance_km",
	"최고고도_m":    "max_altitude_m",
	"누적상승_m":    "elevation_gain_m",
	"예상시간":      "estimated_time",
	"예상시간_분":    "estimated_time_min",
	"난이도":       "difficulty",
	"세부난이도":     "difficulty_detail",
	"난이도점수":     "difficulty_score",
	"관광인프라점수":   "infra_score",
	"주차장거리_m":   "parking_distance_m",
	"정류장거리_m":   "transit_distance_m",
	"주차장명":      "parking_name",
	"정류장명":      "transit_name",
	"cluster":   "cluster",
	"특출매력":      "standout_trait",
	"특출점수":      "standout_score",
	"매력종합점수":    "appeal_score",
	"출발_lat":    "start_lat",
	"출발_lon":    "start_lon",
	"도착_lat":    "end_lat",
	"도착_lon":    "end_lon",

	"course_name":        "course_name",
	"mountain_name":      "mountain_name",
	"region":             "region",
	"total_distance_km":  "total_distance_km",
	"max_altitude_m":     "max_altitude_m",
	"elevation_gain_m":   "elevation_gain_m",
	"estimated_time":     "estimated_time",
	"estimated_time_min": "estimated_time_min",
	"difficulty":         "difficulty",
	"difficulty_detail":  "difficulty_detail",
	"difficulty_score":   "difficulty_score",
	"infra_score":        "infra_score",
	"parking_distance_m": "parking_distance_m",
	"transit_distance_m": "transit_distance_m",
	"parking_name":       "parking_name",
	"transit_name":       "transit_name",
	"standout_trait":     "standout_trait",
	"standout_score":     "standout_score",
	"appeal_score":       "appeal_score",
	"start_lat":          "start_lat",
	"start_lon":          "start_lon",
	"end_lat":            "end_lat",
	"end_lon":            "end_lon",
}

// requiredColumns must all resolve from the header row for a file to be
// usable. The remaining columns degrade to zero values when absent.
var requiredColumns = []string{
	"course_name", "mountain_name", "difficulty", "difficulty_detail", "appeal_score",
}

// difficultyTierNames translates the export's Korean tier labels onto the
// ordinal tier vocabulary. English labels pass through unchanged.
var difficultyTierNames = map[string]string{
	"입문":  "beginner",
	"초급":  "novice",
	"중급":  "intermediate",
	"상급":  "advanced",
	"최상급": "expert",
	"초인":  "superhuman",
	"신":   "godlike",
}

// standoutTraitNames translates the export's Korean trait labels.
var standoutTraitNames = map[string]string{
	"전망":   "view",
	"힐링":   "healing",
	"사진":   "photo",
	"등산로":  "trail",
	"성취감":  "achievement",
	"계절매력": "seasonal",
}

// LoadFile reads a catalog CSV from disk.
func LoadFile(path string) (*domain.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	catalog, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog from %s: %w", path, err)
	}
	return catalog, nil
}

// Load parses catalog CSV content into an immutable catalog. Rows missing
// a mountain or course name are skipped; a file that yields no usable
// rows is an error.
func Load(r io.Reader) (*domain.Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	index, err := resolveHeader(header)
	if err != nil {
		return nil, err
	}

	var records []domain.TrailRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", line, err)
		}

		record := parseRow(row, index)
		if record.MountainName == "" || record.CourseName == "" {
			continue
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("catalog contains no usable rows")
	}
	return domain.NewCatalog(records), nil
}

// resolveHeader maps canonical field keys to column positions.
func resolveHeader(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key, ok := headerAliases[strings.ToLower(strings.TrimSpace(h))]
		if !ok {
			continue
		}
		if _, dup := index[key]; dup {
			return nil, fmt.Errorf("duplicate column %q in header", key)
		}
		index[key] = i
	}

	var missing []string
	for _, key := range requiredColumns {
		if _, ok := index[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("header is missing required columns: %s", strings.Join(missing, ", "))
	}
	return index, nil
}

func parseRow(row []string, index map[string]int) domain.TrailRecord {
	cell := func(key string) string {
		i, ok := index[key]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	num := func(key string, missing float64) float64 {
		v, err := strconv.ParseFloat(cell(key), 64)
		if err != nil {
			return missing
		}
		return v
	}
	name := func(key string) string {
		if v := cell(key); v != "" {
			return v
		}
		return "-"
	}

	minutes, _ := strconv.Atoi(cell("estimated_time_min"))

	return domain.TrailRecord{
		MountainName: cell("mountain_name"),
		CourseName:   cell("course_name"),
		RegionLabel:  name("region"),

		TotalDistanceKm:          num("total_distance_km", 0),
		MaxAltitudeM:             num("max_altitude_m", 0),
		ElevationGainM:           num("elevation_gain_m", 0),
		EstimatedDuration:        cell("estimated_time"),
		EstimatedDurationMinutes: minutes,

		DifficultyTier:   normalizeDifficulty(cell("difficulty")),
		DifficultyDetail: normalizeDifficulty(cell("difficulty_detail")),
		DifficultyScore:  num("difficulty_score", 0),

		InfraScore: num("infra_score", 0),
		// Blank parking distance means "no data", not "at the trailhead";
		// zero is a legitimate value for lots right at the entrance.
		ParkingDistanceM: num("parking_distance_m", domain.NoDataSentinel),
		TransitDistanceM: num("transit_distance_m", domain.NoDataSentinel),
		ParkingName:      name("parking_name"),
		TransitName:      name("transit_name"),

		ClusterID:          int(num("cluster", 0)),
		StandoutTrait:      normalizeTrait(cell("standout_trait")),
		StandoutScore:      num("standout_score", 0),
		OverallAppealScore: num("appeal_score", 0),

		StartLat: num("start_lat", 0),
		StartLon: num("start_lon", 0),
		EndLat:   num("end_lat", 0),
		EndLon:   num("end_lon", 0),
	}
}

// normalizeDifficulty maps a tier or detail label ("초급", "초급2",
// "novice1") onto the English tier vocabulary, preserving the numeric
// sub-variant suffix.
func normalizeDifficulty(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}

	base := v
	suffix := ""
	if i := strings.IndexFunc(v, func(r rune) bool { return r >= '0' && r <= '9' }); i > 0 {
		base, suffix = v[:i], v[i:]
	}

	if english, ok := difficultyTierNames[base]; ok {
		return english + suffix
	}
	return strings.ToLower(base) + suffix
}

func normalizeTrait(v string) string {
	v = strings.TrimSpace(v)
	if english, ok := standoutTraitNames[v]; ok {
		return english
	}
	return strings.ToLower(v)
}
