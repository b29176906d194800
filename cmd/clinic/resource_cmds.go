package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/otcheredev/clinic-desk/internal/models"
	"github.com/otcheredev/clinic-desk/internal/navigation"
)

func patientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patients",
		Short: "List and manage patients",
	}
	cmd.AddCommand(patientsListCmd())
	cmd.AddCommand(patientsCreateCmd())
	cmd.AddCommand(patientsUpdateCmd())
	cmd.AddCommand(patientsDeleteCmd())
	return cmd
}

func patientInput(cmd *cobra.Command) models.PatientInput {
	flags := cmd.Flags()
	var input models.PatientInput
	input.Name, _ = flags.GetString("name")
	if flags.Changed("contact") {
		v, _ := flags.GetString("contact")
		input.ContactInfo = &v
	}
	if flags.Changed("dob") {
		v, _ := flags.GetString("dob")
		input.DateOfBirth = &v
	}
	return input
}

func patientFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "Full name")
	cmd.Flags().String("contact", "", "Phone or email")
	cmd.Flags().String("dob", "", "Date of birth, YYYY-MM-DD")
}

func patientsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List patients, sorted by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			search, _ := cmd.Flags().GetString("search")
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.require(ctx, navigation.Patients); err != nil {
					return err
				}
				if err := a.patients.FetchPatients(ctx, true, search); err != nil {
					return err
				}
				items := a.patients.Items()
				if wantJSON(cmd) {
					return printJSON(cmd.OutOrStdout(), items)
				}
				return printTable(cmd.OutOrStdout(), []string{"ID", "NAME", "CONTACT", "BORN"}, patientRows(items))
			})
		},
	}
	cmd.Flags().String("search", "", "Name fragment")
	return cmd
}

func patientsCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a patient",
		RunE: func(cmd *cobra.Command, args []string) error {
			input := patientInput(cmd)
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.require(ctx, navigation.Patients); err != nil {
					return err
				}
				created, err := a.patients.Create(ctx, input)
				if err != nil {
					return err
				}
				if wantJSON(cmd) {
					return printJSON(cmd.OutOrStdout(), created)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created patient %d (%s)\n", created.ID, created.Name)
				return nil
			})
		},
	}
	patientFlags(cmd)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func patientsUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change a patient's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			input := patientInput(cmd)
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.require(ctx, navigation.Patients); err != nil {
					return err
				}
				updated, err := a.patients.Update(ctx, id, input)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated patient %d (%s)\n", updated.ID, updated.Name)
				return nil
			})
		},
	}
	patientFlags(cmd)
	return cmd
}

func patientsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a patient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.require(ctx, navigation.Patients); err != nil {
					return err
				}
				if err := a.patients.Delete(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted patient %d\n", id)
				return nil
			})
		},
	}
}

func doctorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctors",
		Short: "List doctors",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.require(ctx, navigation.Appointments); err != nil {
					return err
				}
				if err := a.doctors.FetchDoctors(ctx, false); err != nil {
					return err
				}
				items := a.doctors.Items()
				if wantJSON(cmd) {
					return printJSON(cmd.OutOrStdout(), items)
				}
				rows := make([][]string, 0, len(items))
				for _, d := range items {
					rows = append(rows, []string{fmt.Sprint(d.ID), d.Name, d.Specialty})
				}
				return printTable(cmd.OutOrStdout(), []string{"ID", "NAME", "SPECIALTY"}, rows)
			})
		},
	}
}

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the monthly statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			month, _ := cmd.Flags().GetInt("month")
			year, _ := cmd.Flags().GetInt("year")
			if month == 0 {
				month = int(now.Month())
			}
			if year == 0 {
				year = now.Year()
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.require(ctx, navigation.Dashboard); err != nil {
					return err
				}
				out := a.dashboard.LoadOverview(ctx, month, year)
				if wantJSON(cmd) {
					return printJSON(cmd.OutOrStdout(), out)
				}

				w := cmd.OutOrStdout()
				if out.StatsErr != nil {
					return out.StatsErr
				}
				fmt.Fprintf(w, "%02d/%d: %d appointments, avg wait %.1f min, avg consultation %.1f min\n\n",
					month, year, out.Stats.TotalAppointments, out.Stats.AvgWaitTime, out.Stats.AvgConsultTime)

				rows := make([][]string, 0, len(out.Stats.AppointmentsByDoctor))
				for _, d := range out.Stats.AppointmentsByDoctor {
					rows = append(rows, []string{d.DoctorName, fmt.Sprint(d.AppointmentCount)})
				}
				if err := printTable(w, []string{"DOCTOR", "APPOINTMENTS"}, rows); err != nil {
					return err
				}

				return errors.Join(out.WaitTimesErr, out.ConsultTimesErr, out.ByDayErr)
			})
		},
	}
	cmd.Flags().Int("month", 0, "Month 1-12 (default current)")
	cmd.Flags().Int("year", 0, "Year (default current)")
	return cmd
}

// auditLister is the read side of the audit repository
type auditLister interface {
	ListRecent(ctx context.Context, userEmail string, limit, offset int) ([]models.AuditLog, error)
	ListByResource(ctx context.Context, resourceType, resourceID string) ([]models.AuditLog, error)
}

type auditQuery struct {
	user     string
	resource string
	id       string
	limit    int
	offset   int
}

// queryAudit lists the history of one resource when --resource is set,
// otherwise the newest entries
func queryAudit(ctx context.Context, l auditLister, q auditQuery) ([]models.AuditLog, error) {
	if q.resource == "" && q.id == "" {
		return l.ListRecent(ctx, q.user, q.limit, q.offset)
	}
	if q.resource == "" || q.id == "" {
		return nil, errors.New("--resource and --id must be used together")
	}
	if q.user != "" {
		return nil, errors.New("--user cannot be combined with --resource")
	}
	return l.ListByResource(ctx, q.resource, q.id)
}

func auditRows(logs []models.AuditLog) [][]string {
	rows := make([][]string, 0, len(logs))
	for _, l := range logs {
		rows = append(rows, []string{
			l.CreatedAt.Format(time.RFC3339),
			l.UserEmail,
			l.Action,
			l.ResourceType,
			l.ResourceID,
			l.Status,
			l.ErrorMessage,
		})
	}
	return rows
}

var auditHeader = []string{"WHEN", "USER", "ACTION", "RESOURCE", "ID", "STATUS", "ERROR"}

func auditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent actions recorded by this client",
		Example: `  clinic audit --user staff@clinic.test
  clinic audit --resource appointments --id 7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var q auditQuery
			q.user, _ = cmd.Flags().GetString("user")
			q.resource, _ = cmd.Flags().GetString("resource")
			q.id, _ = cmd.Flags().GetString("id")
			q.limit, _ = cmd.Flags().GetInt("limit")
			q.offset, _ = cmd.Flags().GetInt("offset")

			return withApp(cmd, func(ctx context.Context, a *app) error {
				if a.audit == nil {
					return errors.New("audit trail is disabled, set AUDIT_ENABLED=true")
				}
				logs, err := queryAudit(ctx, a.audit, q)
				if err != nil {
					return err
				}
				if wantJSON(cmd) {
					return printJSON(cmd.OutOrStdout(), logs)
				}
				return printTable(cmd.OutOrStdout(), auditHeader, auditRows(logs))
			})
		},
	}
	cmd.Flags().String("user", "", "Only actions by this email")
	cmd.Flags().String("resource", "", "Resource type, e.g. appointments or patients")
	cmd.Flags().String("id", "", "Resource id, used with --resource")
	cmd.Flags().Int("limit", 50, "Maximum entries")
	cmd.Flags().Int("offset", 0, "Entries to skip")
	return cmd
}
