// Package billing computes rental charges from elapsed time and a daily
// rate. Durations always round up: any started hour counts as a full hour
// and any started day counts as a full day, so a rental is never billed
// for zero days.
package billing

import "time"

// Hours returns the number of billable hours between pickup and return.
// Sub-minute remainders are ignored; a partial hour rounds up and the
// minimum is one hour.
func Hours(pickedUp, returned time.Time) int64 {
	totalMin := int64(returned.Sub(pickedUp) / time.Minute)
	if totalMin < 0 {
		totalMin = 0
	}
	hours := totalMin / 60
	if totalMin%60 > 0 || hours == 0 {
		hours++
	}
	return hours
}

// Days converts billable hours into billable days. A partial day rounds
// up and the minimum is one day.
func Days(hours int64) int64 {
	days := hours / 24
	if hours%24 > 0 || days == 0 {
		days++
	}
	return days
}

// Base is the undiscounted charge for the given number of billed days.
func Base(days int64, dailyRate float64) float64 {
	return float64(days) * dailyRate
}

// Final applies a discount fraction to the base amount.
func Final(base, fraction float64) float64 {
	return base * (1 - fraction)
}
