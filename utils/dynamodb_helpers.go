package utils

import (
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ExtractString safely extracts a string from a DynamoDB attribute map
func ExtractString(item map[string]types.AttributeValue, field string) string {
	if attr, ok := item[field]; ok {
		if v, ok := attr.(*types.AttributeValueMemberS); ok {
			return v.Value
		}
	}
	return ""
}

// ExtractNumber safely extracts a numeric attribute; returns fallback when
// the field is missing or not a number.
func ExtractNumber(item map[string]types.AttributeValue, field string, fallback float64) float64 {
	if attr, ok := item[field]; ok {
		if v, ok := attr.(*types.AttributeValueMemberN); ok {
			if n, err := strconv.ParseFloat(v.Value, 64); err == nil {
				return n
			}
		}
	}
	return fallback
}
