package models

// ✅ Genders
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// ✅ Activity Levels (ordinal, sedentary lowest)
const (
	ActivitySedentary  = "sedentary"
	ActivityLight      = "light"
	ActivityModerate   = "moderate"
	ActivityActive     = "active"
	ActivityVeryActive = "very_active"
)

// ✅ Goal Directions
const (
	GoalLose     = "lose"
	GoalMaintain = "maintain"
	GoalGain     = "gain"
)

// ✅ Cooking Levels
const (
	CookingBeginner     = "beginner"
	CookingIntermediate = "intermediate"
	CookingExpert       = "expert"
)

// ✅ Alert Severities
const (
	AlertWarning = "warning"
	AlertInfo    = "info"
	AlertSuccess = "success"
)

// ✅ Supported Languages
const (
	LanguageFrench  = "fr"
	LanguageEnglish = "en"
)
