package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/theswapneil/school-management-system/pkg/client"
)

func (c *CLI) newAttendanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attendance",
		Short: "Record and view attendance",
	}

	cmd.AddCommand(c.newAttendanceRecordCmd())
	cmd.AddCommand(c.newAttendanceListCmd())

	return cmd
}

func (c *CLI) newAttendanceRecordCmd() *cobra.Command {
	var input client.CreateAttendanceInput
	var remarks string
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record attendance for a student (admin or teacher)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if input.StudentID == "" || input.AttendanceDate == "" || input.Status == "" {
				return errors.New("--student, --date and --status are required")
			}
			if remarks != "" {
				input.Remarks = &remarks
			}
			record, err := c.api.RecordAttendance(cmd.Context(), input)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.printJSON(record)
			}
			c.printf("Recorded %s for student %s on %s\n", record.Status, record.StudentID, record.AttendanceDate)
			return nil
		},
	}
	cmd.Flags().StringVar(&input.StudentID, "student", "", "student id")
	cmd.Flags().StringVar(&input.AttendanceDate, "date", "", "attendance date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&input.Status, "status", "", "present, absent, late or excused")
	cmd.Flags().StringVar(&remarks, "remarks", "", "remarks")
	return cmd
}

func (c *CLI) newAttendanceListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <student-id>",
		Short: "List attendance for a student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := c.api.ListAttendance(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.printJSON(records)
			}
			for _, r := range records {
				c.printf("%s\t%s\n", r.AttendanceDate, r.Status)
			}
			return nil
		},
	}
}
