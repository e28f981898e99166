// Package seed generates demo data for local development.
package seed

import (
	"fmt"
	"math/rand/v2"
	"time"

	"sahayak-backend/internal/models"
)

const AttendanceDays = 30

// Students is the demo class roster; roll numbers are 1-based positions.
var Students = []string{
	"Aarav Sharma", "Vivaan Singh", "Aditya Kumar", "Vihaan Patel", "Arjun Gupta",
	"Sai Reddy", "Reyansh Mishra", "Krishna Verma", "Ishaan Joshi", "Ananya Mehta",
	"Diya Shah", "Saanvi Agarwal", "Myra Das", "Aadhya Nair", "Kiara Iyer",
	"Pari Choudhary", "Zara Khan", "Riya Pillai", "Advait Menon", "Kabir Kumar",
	"Ayaan Tiwari", "Rohan Sharma", "Aryan Patel", "Zoya Gupta", "Navya Reddy",
	"Ira Mishra", "Aarohi Verma", "Ved Joshi", "Neha Mehta", "Arnav Shah",
}

// statusWeights yields Present:Absent:Late at 5:1:1.
var statusWeights = []string{
	models.AttendancePresent, models.AttendancePresent, models.AttendancePresent,
	models.AttendancePresent, models.AttendancePresent,
	models.AttendanceAbsent, models.AttendanceLate,
}

// AttendanceRecords builds one row per student for each of the AttendanceDays
// calendar days ending on today.
func AttendanceRecords(teacherID string, today time.Time, rng *rand.Rand) []*models.AttendanceRecord {
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	records := make([]*models.AttendanceRecord, 0, AttendanceDays*len(Students))
	for i := 0; i < AttendanceDays; i++ {
		date := day.AddDate(0, 0, -i)
		for idx, name := range Students {
			roll := idx + 1
			records = append(records, &models.AttendanceRecord{
				TeacherID:   teacherID,
				StudentID:   roll,
				StudentName: name,
				Date:        date,
				Status:      statusWeights[rng.IntN(len(statusWeights))],
				Grade:       fmt.Sprintf("Grade %d", (roll+9)/10),
			})
		}
	}
	return records
}
