package model

import "strings"

// Status is the request workflow state shared by lab bookings and equipment
// borrowings. Any state may be reached from any other through an explicit update.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

var Statuses = []Status{StatusPending, StatusAccepted, StatusRejected}

func (s Status) Valid() bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

// Title returns the status with its first letter upper-cased ("Accepted").
func (s Status) Title() string {
	if s == "" {
		return ""
	}
	str := string(s)
	return strings.ToUpper(str[:1]) + str[1:]
}

func (s Status) String() string {
	return string(s)
}
