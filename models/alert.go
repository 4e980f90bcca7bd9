package models

// NutritionalAlert is a rule-engine notification. The ID is derived from
// the triggering condition and date, so the same condition never produces
// two alerts on the same day.
type NutritionalAlert struct {
	ID      string `json:"id" dynamodbav:"alertId"`
	Type    string `json:"type" dynamodbav:"type"` // warning, info, success
	Title   string `json:"title" dynamodbav:"title"`
	Message string `json:"message" dynamodbav:"message"`
	Date    string `json:"date" dynamodbav:"date"` // YYYY-MM-DD, local
	IsRead  bool   `json:"isRead" dynamodbav:"isRead"`
}

// AlertsTable is the DynamoDB table name for nutritional alerts
const AlertsTable = "NutriAlerts"
