package utils

import "time"

// CalculateAge returns the number of whole years between birthDate and now.
// Both are read as calendar dates in their own location, so now should be
// expressed in the zone where the birthday is celebrated.
func CalculateAge(birthDate, now time.Time) int {
	age := now.Year() - birthDate.Year()
	if now.Month() < birthDate.Month() ||
		(now.Month() == birthDate.Month() && now.Day() < birthDate.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}
