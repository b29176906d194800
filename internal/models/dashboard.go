package models

// DoctorAppointmentCount is one row of the appointments-by-doctor aggregate.
type DoctorAppointmentCount struct {
	DoctorName       string `json:"doctorName"`
	AppointmentCount int    `json:"appointmentCount"`
}

// DashboardStats is the monthly summary shown on the dashboard.
type DashboardStats struct {
	TotalAppointments    int                      `json:"totalAppointments"`
	AvgWaitTime          float64                  `json:"avgWaitTime"`
	AvgConsultTime       float64                  `json:"avgConsultTime"`
	AppointmentsByDoctor []DoctorAppointmentCount `json:"appointmentsByDoctor"`
}

// DailyWaitTime is the average wait in minutes for one day of the month.
type DailyWaitTime struct {
	Day         int     `json:"day"`
	AvgWaitTime float64 `json:"avgWaitTime"`
}

// DailyConsultTime is the average consultation length in minutes for one day.
type DailyConsultTime struct {
	Day            int     `json:"day"`
	AvgConsultTime float64 `json:"avgConsultTime"`
}

// DailyAppointmentCount is the number of appointments on one day.
type DailyAppointmentCount struct {
	Day   int `json:"day"`
	Count int `json:"count"`
}
