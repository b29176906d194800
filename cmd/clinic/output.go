package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/otcheredev/clinic-desk/internal/models"
)

func wantJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printTable writes rows under header, tab separated and aligned
func printTable(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func personName(p *models.PersonRef) string {
	if p == nil {
		return ""
	}
	return p.Name
}

func appointmentRows(items []models.Appointment) [][]string {
	rows := make([][]string, 0, len(items))
	for _, a := range items {
		rows = append(rows, []string{
			fmt.Sprint(a.ID),
			a.AppointmentTime,
			string(a.Status),
			personName(a.Patient),
			personName(a.Doctor),
			str(a.Notes),
		})
	}
	return rows
}

func patientRows(items []models.Patient) [][]string {
	rows := make([][]string, 0, len(items))
	for _, p := range items {
		rows = append(rows, []string{fmt.Sprint(p.ID), p.Name, str(p.ContactInfo), str(p.DateOfBirth)})
	}
	return rows
}
