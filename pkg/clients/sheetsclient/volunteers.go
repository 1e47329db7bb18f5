package sheetsclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/jakechorley/volunteer-hub/internal/config"
)

// Column headers in the volunteer sheet. Grade is optional.
const (
	headerEmail = "Email"
	headerName  = "Name"
	headerGrade = "Grade"
)

var requiredVolunteerFields = []string{headerEmail, headerName}

// VolunteerRow is one volunteer listed in the sheet. Row is the 1-based sheet row.
type VolunteerRow struct {
	Row   int
	Email string
	Name  string
	Grade string
}

// ListVolunteers retrieves and parses volunteers from the configured spreadsheet
func (c *Client) ListVolunteers(ctx context.Context, sheet config.VolunteerSheetConfig) ([]VolunteerRow, error) {
	values, err := c.GetValues(ctx, sheet.SpreadsheetID, sheet.Range)
	if err != nil {
		return nil, fmt.Errorf("failed to get volunteer data: %w", err)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("spreadsheet is empty")
	}

	volunteers, err := parseVolunteers(values)
	if err != nil {
		return nil, fmt.Errorf("failed to parse volunteers: %w", err)
	}

	return volunteers, nil
}

// parseVolunteers converts raw spreadsheet data into volunteer rows.
// Header matching ignores case and surrounding whitespace.
func parseVolunteers(raw [][]interface{}) ([]VolunteerRow, error) {
	if len(raw) < 1 {
		return nil, fmt.Errorf("no header row found")
	}

	// Build field index map from header row
	fieldIndexes := make(map[string]int)
	for i, cell := range raw[0] {
		if cellStr, ok := cell.(string); ok {
			fieldIndexes[strings.ToLower(strings.TrimSpace(cellStr))] = i
		}
	}
	for _, field := range requiredVolunteerFields {
		if _, ok := fieldIndexes[strings.ToLower(field)]; !ok {
			return nil, fmt.Errorf("missing required field in header: %s", field)
		}
	}

	getField := func(field string, row []interface{}) string {
		index, ok := fieldIndexes[strings.ToLower(field)]
		if !ok || index >= len(row) {
			return ""
		}
		if str, ok := row[index].(string); ok {
			return strings.TrimSpace(str)
		}
		return ""
	}

	volunteers := make([]VolunteerRow, 0, len(raw)-1)
	for i := 1; i < len(raw); i++ {
		row := raw[i]

		email := getField(headerEmail, row)
		name := getField(headerName, row)
		// Skip blank rows
		if email == "" && name == "" {
			continue
		}

		volunteers = append(volunteers, VolunteerRow{
			Row:   i + 1,
			Email: email,
			Name:  name,
			Grade: strings.ToUpper(getField(headerGrade, row)),
		})
	}

	return volunteers, nil
}
