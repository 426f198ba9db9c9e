package models

import (
	"net/url"
	"strconv"
	"time"
)

// Sleep is one night of sleep owned by a user. Hours is derived from
// End-Start at write time and stored, never recomputed on read.
type Sleep struct {
	ID          string    `json:"id"`
	SleeperID   string    `json:"sleeper_id"`
	Rating      int       `json:"rating"`
	Feel        int       `json:"feel"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	SleepDate   time.Time `json:"sleep_date"`
	Hours       float64   `json:"hours"`
	MinsToSleep int       `json:"minstosleep"`
}

type SleepRequest struct {
	Rating      int
	Feel        int
	Start       time.Time
	End         time.Time
	MinsToSleep int
}

// ParseSleepForm combines the date+time field pairs into the two
// timestamps. Parse failures surface as field errors, not request errors.
func ParseSleepForm(form url.Values) (*SleepRequest, map[string]string) {
	errors := make(map[string]string)
	req := &SleepRequest{}

	req.Rating, _ = strconv.Atoi(form.Get("rating"))
	req.Feel, _ = strconv.Atoi(form.Get("feel"))
	req.MinsToSleep, _ = strconv.Atoi(form.Get("minstosleep"))

	start, err := time.Parse("2006-01-02 15:04", form.Get("sleep_date")+" "+form.Get("starttime"))
	if err != nil {
		errors["sleep_date"] = "Enter the date and time you went to sleep"
	}
	end, err := time.Parse("2006-01-02 15:04", form.Get("wake_date")+" "+form.Get("endtime"))
	if err != nil {
		errors["wake_date"] = "Enter the date and time you woke up"
	}
	req.Start = start
	req.End = end

	if len(errors) > 0 {
		return req, errors
	}
	return req, nil
}

func (r *SleepRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Rating < 1 || r.Rating > 5 {
		errors["rating"] = "Rate your sleep from 1 to 5"
	}
	if r.Feel < 1 || r.Feel > 5 {
		errors["feel"] = "Rate how you felt from 1 to 5"
	}
	if r.MinsToSleep < 0 || r.MinsToSleep > 180 {
		errors["minstosleep"] = "Enter a number between 0 and 180."
	}
	if !r.End.After(r.Start) {
		// Keeps the duration positive so the stored hours can never
		// come out negative.
		errors["endtime"] = "Wake time must be after sleep time"
	}

	return errors
}

// Hours returns the derived duration, always end minus start.
func (r *SleepRequest) Hours() float64 {
	return r.End.Sub(r.Start).Hours()
}

// SleepDate is the calendar date the sleep began.
func (r *SleepRequest) SleepDate() time.Time {
	return time.Date(r.Start.Year(), r.Start.Month(), r.Start.Day(), 0, 0, 0, 0, r.Start.Location())
}
