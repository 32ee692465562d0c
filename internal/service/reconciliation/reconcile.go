package reconciliation

import (
	"math"
	"sort"

	"github.com/cmlabs-hris/rota-backend-go/internal/domain/roster"
	"github.com/cmlabs-hris/rota-backend-go/internal/domain/timesheet"
)

func sameShift(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Mismatches compares a timesheet's entries with the schedule day by day over
// the union of days present on either side. The result is ordered by day.
func Mismatches(entries []timesheet.Entry, schedule []roster.ScheduleEntry) []timesheet.MismatchDay {
	byDayEntry := make(map[int]timesheet.Entry, len(entries))
	for _, e := range entries {
		byDayEntry[e.Day] = e
	}
	byDaySchedule := make(map[int]roster.ScheduleEntry, len(schedule))
	for _, s := range schedule {
		byDaySchedule[s.Day] = s
	}

	days := make(map[int]struct{}, len(byDayEntry)+len(byDaySchedule))
	for d := range byDayEntry {
		days[d] = struct{}{}
	}
	for d := range byDaySchedule {
		days[d] = struct{}{}
	}

	var out []timesheet.MismatchDay
	for day := range days {
		e, hasEntry := byDayEntry[day]
		s, hasSchedule := byDaySchedule[day]

		m := timesheet.MismatchDay{Day: day}
		if hasEntry {
			hours := e.Hours
			m.TimesheetShift = e.ShiftCode
			m.TimesheetHours = &hours
		}
		if hasSchedule {
			hours := s.Hours
			m.ScheduleShift = s.ShiftCode
			m.ScheduleHours = &hours
		}

		switch {
		case !hasSchedule:
			m.Reason = timesheet.MismatchMissingFromSchedule
		case !hasEntry:
			m.Reason = timesheet.MismatchMissingFromTimesheet
		case !sameShift(e.ShiftCode, s.ShiftCode):
			m.Reason = timesheet.MismatchShift
		case math.Abs(e.Hours-s.Hours) > timesheet.HoursTolerance:
			m.Reason = timesheet.MismatchHours
		default:
			continue
		}
		out = append(out, m)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// Tally sums hours over every entry and counts days per catalog category.
// Entries without a shift code, or whose shift carries no category, add hours only.
func Tally(entries []timesheet.Entry, catalog roster.Catalog) timesheet.Tally {
	var t timesheet.Tally
	for _, e := range entries {
		t.TotalHours += e.Hours

		category := catalog.CategoryOf(e.ShiftCode)
		if category == nil {
			continue
		}
		switch *category {
		case roster.CategorySleepIn:
			t.SleepIn++
		case roster.CategoryAnnualLeave:
			t.AnnualLeave++
		case roster.CategorySickness:
			t.Sickness++
		case roster.CategoryWakingNight:
			t.WakingNight++
		case roster.CategoryOtherLeave:
			t.OtherLeave++
		case roster.CategoryWorked:
			t.WorkedDays++
		}
	}
	return t
}
