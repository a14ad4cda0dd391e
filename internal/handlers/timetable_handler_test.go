package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"meridian-sms/models"
)

func confirmedEntry(id, sectionID uint, teacher string) models.TimetableEntry {
	return models.TimetableEntry{
		Model:     gorm.Model{ID: id},
		SectionID: sectionID,
		Teacher:   teacher,
		DayOfWeek: 1,
		Slot:      1,
		Status:    models.TimetableConfirmed,
	}
}

func TestSlotConflictReason(t *testing.T) {
	tests := []struct {
		name      string
		occupants []models.TimetableEntry
		input     TimetableEntryInput
		excludeID uint
		want      string
	}{
		{
			name:  "empty slot",
			input: TimetableEntryInput{SectionID: 1, Teacher: "Adams", DayOfWeek: 1, Slot: 1},
		},
		{
			name:      "section taken",
			occupants: []models.TimetableEntry{confirmedEntry(5, 1, "Brooks")},
			input:     TimetableEntryInput{SectionID: 1, Teacher: "Adams", DayOfWeek: 1, Slot: 1},
			want:      "Section already has a lesson in this slot",
		},
		{
			name:      "teacher taken in another section",
			occupants: []models.TimetableEntry{confirmedEntry(5, 2, "Adams")},
			input:     TimetableEntryInput{SectionID: 1, Teacher: "Adams", DayOfWeek: 1, Slot: 1},
			want:      "Teacher already has a lesson in this slot",
		},
		{
			name:      "unassigned entries never collide on the teacher",
			occupants: []models.TimetableEntry{confirmedEntry(5, 2, "")},
			input:     TimetableEntryInput{SectionID: 1, Teacher: "", DayOfWeek: 1, Slot: 1},
		},
		{
			name:      "unassigned input ignores named occupants",
			occupants: []models.TimetableEntry{confirmedEntry(5, 2, "Adams")},
			input:     TimetableEntryInput{SectionID: 1, Teacher: "", DayOfWeek: 1, Slot: 1},
		},
		{
			name:      "own row is not a conflict",
			occupants: []models.TimetableEntry{confirmedEntry(5, 1, "Adams")},
			input:     TimetableEntryInput{SectionID: 1, Teacher: "Adams", DayOfWeek: 1, Slot: 1},
			excludeID: 5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slotConflictReason(tt.occupants, tt.input, tt.excludeID))
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "plain object",
			raw:  `{"entries": []}`,
			want: `{"entries": []}`,
		},
		{
			name: "json fenced block",
			raw:  "Here you go:\n```json\n{\"entries\": [{\"slot\": 1}]}\n```\nEnjoy!",
			want: `{"entries": [{"slot": 1}]}`,
		},
		{
			name: "bare fenced block",
			raw:  "```\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "surrounding prose",
			raw:  `The timetable is {"a": 1} as requested.`,
			want: `{"a": 1}`,
		},
		{name: "no object", raw: "sorry, cannot help", want: ""},
		{name: "truncated object", raw: `{"entries": [`, want: ""},
		{name: "malformed object", raw: `{entries: nope}`, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.raw))
		})
	}
}
