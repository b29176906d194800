package models

import (
	"net/url"
	"strconv"
	"strings"
)

// SortDirection is the ordering direction of a listing.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Toggle returns the opposite direction.
func (d SortDirection) Toggle() SortDirection {
	if d == SortDesc {
		return SortAsc
	}
	return SortDesc
}

// Sort keys accepted by GET /appointments.
const (
	SortByAppointmentTime = "appointment_time"
	SortByStatus          = "status"
	SortByPatientName     = "patient.name"
)

// Query parameter names of GET /appointments. List filters are sent as
// repeated keys, which is what the backend reads.
const (
	ParamDate            = "date"
	ParamStatus          = "status"
	ParamDoctorID        = "doctor_id"
	ParamPatientName     = "patient_name"
	ParamExcludeStatuses = "exclude_statuses[]"
	ParamIncludeStatuses = "include_statuses[]"
	ParamSortBy          = "sort_by"
	ParamSortDir         = "sort_dir"
)

// DateLayout is the format of the date filter.
const DateLayout = "2006-01-02"

// AppointmentFilter is the active criteria for an appointment listing
type AppointmentFilter struct {
	Date            string              `json:"date,omitempty"`
	Status          AppointmentStatus   `json:"status,omitempty"`
	DoctorID        int                 `json:"doctor_id,omitempty"`
	PatientName     string              `json:"patient_name,omitempty"`
	ExcludeStatuses []AppointmentStatus `json:"exclude_statuses,omitempty"`
	IncludeStatuses []AppointmentStatus `json:"include_statuses,omitempty"`
	SortBy          string              `json:"sort_by,omitempty"`
	SortDir         SortDirection       `json:"sort_dir,omitempty"`
}

// Values serializes the non-empty criteria into query parameters.
func (f AppointmentFilter) Values() url.Values {
	v := url.Values{}
	if f.Date != "" {
		v.Set(ParamDate, f.Date)
	}
	if f.Status != "" {
		v.Set(ParamStatus, string(f.Status))
	}
	if f.DoctorID > 0 {
		v.Set(ParamDoctorID, strconv.Itoa(f.DoctorID))
	}
	if name := strings.TrimSpace(f.PatientName); name != "" {
		v.Set(ParamPatientName, name)
	}
	for _, s := range f.ExcludeStatuses {
		if s != "" {
			v.Add(ParamExcludeStatuses, string(s))
		}
	}
	for _, s := range f.IncludeStatuses {
		if s != "" {
			v.Add(ParamIncludeStatuses, string(s))
		}
	}
	if f.SortBy != "" {
		v.Set(ParamSortBy, f.SortBy)
	}
	if f.SortDir != "" {
		v.Set(ParamSortDir, string(f.SortDir))
	}
	return v
}

// ParseAppointmentFilter decodes criteria from query parameters. List filters
// are accepted with or without the trailing brackets.
func ParseAppointmentFilter(v url.Values) AppointmentFilter {
	f := AppointmentFilter{
		Date:        v.Get(ParamDate),
		Status:      AppointmentStatus(v.Get(ParamStatus)),
		PatientName: v.Get(ParamPatientName),
		SortBy:      v.Get(ParamSortBy),
		SortDir:     SortDirection(strings.ToLower(v.Get(ParamSortDir))),
	}
	if id, err := strconv.Atoi(v.Get(ParamDoctorID)); err == nil && id > 0 {
		f.DoctorID = id
	}
	f.ExcludeStatuses = statusList(v, ParamExcludeStatuses)
	f.IncludeStatuses = statusList(v, ParamIncludeStatuses)
	return f
}

func statusList(v url.Values, key string) []AppointmentStatus {
	raw := append(append([]string{}, v[key]...), v[strings.TrimSuffix(key, "[]")]...)
	var out []AppointmentStatus
	for _, s := range raw {
		if s != "" {
			out = append(out, AppointmentStatus(s))
		}
	}
	return out
}

// Clone returns a deep copy.
func (f AppointmentFilter) Clone() AppointmentFilter {
	out := f
	out.ExcludeStatuses = append([]AppointmentStatus(nil), f.ExcludeStatuses...)
	out.IncludeStatuses = append([]AppointmentStatus(nil), f.IncludeStatuses...)
	return out
}

// WithoutFilters resets every filter but keeps the date and the sort.
func (f AppointmentFilter) WithoutFilters() AppointmentFilter {
	return AppointmentFilter{Date: f.Date, SortBy: f.SortBy, SortDir: f.SortDir}
}
