package testkit

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strconv"

	"studyviz/domain/dataset"
)

// StudentFields are the columns of the generated student habits dataset.
var StudentFields = []string{
	"student_id",
	"age",
	"gender",
	"study_hours_per_day",
	"social_media_hours",
	"netflix_hours",
	"part_time_job",
	"attendance_percentage",
	"sleep_hours",
	"diet_quality",
	"exercise_frequency",
	"parental_education_level",
	"internet_quality",
	"mental_health_rating",
	"extracurricular_participation",
	"exam_score",
}

// StudentGeneratorConfig configures the student data generator
type StudentGeneratorConfig struct {
	StudentCount int   `json:"student_count"`
	Seed         int64 `json:"seed"`
	// MissingRate is the share of numeric cells left empty.
	MissingRate float64 `json:"missing_rate"`
}

// DefaultStudentConfig returns sensible defaults for student data generation
func DefaultStudentConfig() StudentGeneratorConfig {
	return StudentGeneratorConfig{
		StudentCount: 1000,
		Seed:         42,
	}
}

// StudentDataGenerator generates a synthetic student habits and performance
// dataset. The same seed always yields the same table.
type StudentDataGenerator struct {
	config StudentGeneratorConfig
	rng    *rand.Rand
}

// NewStudentDataGenerator creates a new student data generator
func NewStudentDataGenerator(config StudentGeneratorConfig) *StudentDataGenerator {
	if config.StudentCount <= 0 {
		config.StudentCount = DefaultStudentConfig().StudentCount
	}
	return &StudentDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// ReadTable implements ports.DatasetReader.
func (g *StudentDataGenerator) ReadTable(ctx context.Context) (dataset.Table, error) {
	if err := ctx.Err(); err != nil {
		return dataset.Table{}, err
	}
	return g.Generate(), nil
}

// Generate builds the table. Each call restarts from the configured seed.
func (g *StudentDataGenerator) Generate() dataset.Table {
	g.rng = rand.New(rand.NewSource(g.config.Seed))

	rows := make([][]string, g.config.StudentCount)
	for i := range rows {
		rows[i] = g.generateStudent(i)
	}
	return dataset.Table{
		Fields:     append([]string(nil), StudentFields...),
		Rows:       rows,
		LabelField: "student_id",
		Source:     fmt.Sprintf("synthetic:%d@%d", g.config.StudentCount, g.config.Seed),
	}
}

func (g *StudentDataGenerator) generateStudent(i int) []string {
	study := g.clampedNormal(3.5, 1.5, 0, 8.5)
	social := g.clampedNormal(2.5, 1.2, 0, 7)
	netflix := g.clampedNormal(1.8, 1.1, 0, 6)
	attendance := g.clampedNormal(84, 9, 50, 100)
	sleep := g.clampedNormal(6.5, 1.2, 3, 10)
	exercise := g.rng.Intn(7)
	mental := 1 + g.rng.Intn(10)

	partTime := g.pick([]string{"No", "No", "No", "Yes"})
	diet := g.pick([]string{"Fair", "Fair", "Good", "Poor"})
	internet := g.pick([]string{"Good", "Good", "Average", "Poor"})
	extracurricular := g.pick([]string{"No", "Yes"})

	// Study time, attendance, sleep and mental health lift the score;
	// screen time lowers it.
	score := 35 +
		9.5*study +
		0.12*(attendance-80) +
		2.2*(1-math.Abs(sleep-7.5)/2) +
		1.8*float64(mental-5) +
		0.6*float64(exercise) -
		2.6*social -
		2.0*netflix +
		g.rng.NormFloat64()*6
	if internet == "Poor" {
		score -= 3
	}
	score = math.Max(0, math.Min(100, score))

	return []string{
		fmt.Sprintf("S%04d", 1000+i),
		strconv.Itoa(17 + g.rng.Intn(8)),
		g.pick([]string{"Female", "Male", "Female", "Male", "Other"}),
		g.number(study),
		g.number(social),
		g.number(netflix),
		partTime,
		g.number(attendance),
		g.number(sleep),
		diet,
		strconv.Itoa(exercise),
		g.pick([]string{"High School", "Bachelor", "Master", "None"}),
		internet,
		strconv.Itoa(mental),
		extracurricular,
		g.number(score),
	}
}

func (g *StudentDataGenerator) clampedNormal(mean, sd, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, mean+g.rng.NormFloat64()*sd))
}

func (g *StudentDataGenerator) pick(options []string) string {
	return options[g.rng.Intn(len(options))]
}

// number formats a measure with one decimal, leaving a share of cells empty
// when MissingRate is set.
func (g *StudentDataGenerator) number(v float64) string {
	if g.config.MissingRate > 0 && g.rng.Float64() < g.config.MissingRate {
		return ""
	}
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', 1, 64)
}
