package domain

// SeverityCategory is the clinical bucket a blood pressure pair falls into
type SeverityCategory string

const (
	CategoryNormal             SeverityCategory = "normal"
	CategoryElevated           SeverityCategory = "elevated"
	CategoryStage1Hypertension SeverityCategory = "stage1_hypertension"
	CategoryStage2Hypertension SeverityCategory = "stage2_hypertension"
	CategoryHypertensiveCrisis SeverityCategory = "hypertensive_crisis"
	// CategoryUnclassifiable is the fallback when no rule of the table matches.
	// The ordered rules cover every integer pair, so Classify never returns it today.
	CategoryUnclassifiable SeverityCategory = "unclassifiable"
)

// Thresholds in mmHg
const (
	CrisisSystolic   = 180
	CrisisDiastolic  = 120
	Stage2Systolic   = 140
	Stage2Diastolic  = 90
	Stage1Systolic   = 130
	Stage1Diastolic  = 80
	ElevatedSystolic = 120
)

// Categories returns the five clinical categories in display order
func Categories() []SeverityCategory {
	return []SeverityCategory{
		CategoryNormal,
		CategoryElevated,
		CategoryStage1Hypertension,
		CategoryStage2Hypertension,
		CategoryHypertensiveCrisis,
	}
}

// Classify maps a systolic/diastolic pair to a severity category.
// Rules are checked in order and the first match wins. Crisis and both
// hypertension stages escalate on either number alone.
func Classify(systolic, diastolic int) SeverityCategory {
	switch {
	case systolic >= CrisisSystolic || diastolic >= CrisisDiastolic:
		return CategoryHypertensiveCrisis
	case systolic >= Stage2Systolic || diastolic >= Stage2Diastolic:
		return CategoryStage2Hypertension
	case systolic >= Stage1Systolic || diastolic >= Stage1Diastolic:
		return CategoryStage1Hypertension
	case systolic >= ElevatedSystolic && diastolic < Stage1Diastolic:
		return CategoryElevated
	case systolic < ElevatedSystolic && diastolic < Stage1Diastolic:
		return CategoryNormal
	default:
		return CategoryUnclassifiable
	}
}

// Label returns a human readable name for the category
func (c SeverityCategory) Label() string {
	switch c {
	case CategoryNormal:
		return "Normal"
	case CategoryElevated:
		return "Elevated"
	case CategoryStage1Hypertension:
		return "Hypertension Stage 1"
	case CategoryStage2Hypertension:
		return "Hypertension Stage 2"
	case CategoryHypertensiveCrisis:
		return "Hypertensive Crisis"
	default:
		return "Unclassifiable"
	}
}

// RequiresAlert reports whether a reading in this category should raise an alert
func (c SeverityCategory) RequiresAlert() bool {
	return c == CategoryHypertensiveCrisis
}
