// Package stats summarizes a user's therapy sessions for one calendar day.
package stats

import (
	"math"
	"strings"
	"time"

	"github.com/voicebridge/apiv1/models"
)

type Daily struct {
	TotalSessions int `json:"totalSessions"`
	TotalDuration int `json:"totalDuration"`
	TotalWords    int `json:"totalWords"`
	AvgAccuracy   int `json:"avgAccuracy"`
	AvgClarity    int `json:"avgClarity"`
	AvgOverall    int `json:"avgOverall"`
}

// DayWindow returns [midnight, next midnight) in UTC for the day containing now.
func DayWindow(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// Summarize aggregates sessions. Averages are rounded half away from zero and
// stay 0 when there is nothing to average.
func Summarize(sessions []models.TherapySession) Daily {
	var d Daily
	if len(sessions) == 0 {
		return d
	}

	var accuracy, clarity, overall float64
	for _, s := range sessions {
		d.TotalDuration += s.Duration
		d.TotalWords += len(strings.Fields(s.TargetText))
		accuracy += s.Accuracy
		clarity += s.ClarityScore
		overall += s.OverallScore
	}

	n := float64(len(sessions))
	d.TotalSessions = len(sessions)
	d.AvgAccuracy = int(math.Round(accuracy / n))
	d.AvgClarity = int(math.Round(clarity / n))
	d.AvgOverall = int(math.Round(overall / n))
	return d
}
