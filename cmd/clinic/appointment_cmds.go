package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/otcheredev/clinic-desk/internal/apperr"
	"github.com/otcheredev/clinic-desk/internal/models"
	"github.com/otcheredev/clinic-desk/internal/navigation"
)

var appointmentHeader = []string{"ID", "TIME", "STATUS", "PATIENT", "DOCTOR", "NOTES"}

func appointmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "appointments",
		Aliases: []string{"appt"},
		Short:   "List and manage appointments",
	}
	cmd.AddCommand(appointmentsListCmd())
	cmd.AddCommand(appointmentsCreateCmd())
	cmd.AddCommand(appointmentsStatusCmd())
	cmd.AddCommand(appointmentsUpdateCmd())
	cmd.AddCommand(appointmentsDeleteCmd())
	return cmd
}

func toStatuses(values []string) []models.AppointmentStatus {
	out := make([]models.AppointmentStatus, 0, len(values))
	for _, v := range values {
		out = append(out, models.AppointmentStatus(v))
	}
	return out
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

// explain adds the conflicting slot to a scheduling conflict
func explain(err error) error {
	if slot, ok := apperr.ConflictTime(err); ok {
		return fmt.Errorf("%w (conflicting appointment at %s)", err, slot)
	}
	return err
}

func appointmentsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List appointments for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			date, _ := flags.GetString("date")
			status, _ := flags.GetString("status")
			doctor, _ := flags.GetInt("doctor")
			patient, _ := flags.GetString("patient")
			exclude, _ := flags.GetStringSlice("exclude")
			include, _ := flags.GetStringSlice("include")
			sortBy, _ := flags.GetString("sort")
			desc, _ := flags.GetBool("desc")

			dir := models.SortAsc
			if desc {
				dir = models.SortDesc
			}
			filter := models.AppointmentFilter{
				Date:            date,
				Status:          models.AppointmentStatus(status),
				DoctorID:        doctor,
				PatientName:     patient,
				ExcludeStatuses: toStatuses(exclude),
				IncludeStatuses: toStatuses(include),
				SortBy:          sortBy,
				SortDir:         dir,
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.require(ctx, navigation.Appointments); err != nil {
					return err
				}
				if err := a.appointments.ApplyFilter(ctx, filter); err != nil {
					return err
				}
				items := a.appointments.Items()
				if wantJSON(cmd) {
					return printJSON(cmd.OutOrStdout(), items)
				}
				return printTable(cmd.OutOrStdout(), appointmentHeader, appointmentRows(items))
			})
		},
	}
	cmd.Flags().String("date", "", "Day to list, YYYY-MM-DD (default today)")
	cmd.Flags().String("status", "", "Only this status")
	cmd.Flags().Int("doctor", 0, "Only this doctor id")
	cmd.Flags().String("patient", "", "Patient name fragment")
	cmd.Flags().StringSlice("exclude", nil, "Statuses to hide")
	cmd.Flags().StringSlice("include", nil, "Statuses to show")
	cmd.Flags().String("sort", models.SortByAppointmentTime, "Sort by appointment_time, status or patient.name")
	cmd.Flags().Bool("desc", false, "Sort descending")
	return cmd
}

func appointmentsCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Book an appointment",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			patient, _ := flags.GetInt("patient")
			when, _ := flags.GetString("time")
			input := models.AppointmentInput{PatientID: patient, AppointmentTime: when}
			if flags.Changed("doctor") {
				doctor, _ := flags.GetInt("doctor")
				input.DoctorID = &doctor
			}
			if flags.Changed("notes") {
				notes, _ := flags.GetString("notes")
				input.Notes = &notes
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.require(ctx, navigation.Appointments); err != nil {
					return err
				}
				created, err := a.appointments.Create(ctx, input)
				if err != nil {
					return explain(err)
				}
				if wantJSON(cmd) {
					return printJSON(cmd.OutOrStdout(), created)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created appointment %d at %s\n", created.ID, created.AppointmentTime)
				return nil
			})
		},
	}
	cmd.Flags().Int("patient", 0, "Patient id")
	cmd.Flags().Int("doctor", 0, "Doctor id")
	cmd.Flags().String("time", "", "Appointment time, e.g. 2024-03-05T10:30:00")
	cmd.Flags().String("notes", "", "Notes")
	_ = cmd.MarkFlagRequired("patient")
	_ = cmd.MarkFlagRequired("time")
	return cmd
}

func appointmentsStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status ID STATUS",
		Short: "Move an appointment to a new status",
		Long:  "Move an appointment to a new status: Programada, En Espera, En Consulta, Completada or Cancelada.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			status := models.AppointmentStatus(args[1])

			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.require(ctx, navigation.Appointments); err != nil {
					return err
				}
				updated, err := a.appointments.UpdateStatus(ctx, id, status)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Appointment %d is now %s\n", updated.ID, updated.Status)
				return nil
			})
		},
	}
}

func appointmentsUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change an appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			var update models.AppointmentUpdate
			if flags.Changed("patient") {
				v, _ := flags.GetInt("patient")
				update.PatientID = &v
			}
			if flags.Changed("doctor") {
				v, _ := flags.GetInt("doctor")
				update.DoctorID = &v
			}
			if flags.Changed("time") {
				v, _ := flags.GetString("time")
				update.AppointmentTime = &v
			}
			if flags.Changed("notes") {
				v, _ := flags.GetString("notes")
				update.Notes = &v
			}
			if flags.Changed("status") {
				v, _ := flags.GetString("status")
				s := models.AppointmentStatus(v)
				update.Status = &s
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.require(ctx, navigation.Appointments); err != nil {
					return err
				}
				updated, err := a.appointments.Update(ctx, id, update)
				if err != nil {
					return explain(err)
				}
				if wantJSON(cmd) {
					return printJSON(cmd.OutOrStdout(), updated)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated appointment %d\n", updated.ID)
				return nil
			})
		},
	}
	cmd.Flags().Int("patient", 0, "Patient id")
	cmd.Flags().Int("doctor", 0, "Doctor id")
	cmd.Flags().String("time", "", "Appointment time")
	cmd.Flags().String("notes", "", "Notes")
	cmd.Flags().String("status", "", "Status")
	return cmd
}

func appointmentsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.require(ctx, navigation.Appointments); err != nil {
					return err
				}
				if err := a.appointments.Delete(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted appointment %d\n", id)
				return nil
			})
		},
	}
}
