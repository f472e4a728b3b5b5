package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/theswapneil/school-management-system/pkg/client"
)

func (c *CLI) newStudentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "students",
		Short: "Manage student records",
	}

	cmd.AddCommand(c.newStudentsListCmd())
	cmd.AddCommand(c.newStudentsGetCmd())
	cmd.AddCommand(c.newStudentsCreateCmd())
	cmd.AddCommand(c.newStudentsUpdateCmd())
	cmd.AddCommand(c.newStudentsDeleteCmd())

	return cmd
}

func (c *CLI) newStudentsListCmd() *cobra.Command {
	var filter client.StudentFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List students",
		RunE: func(cmd *cobra.Command, args []string) error {
			students, err := c.api.ListStudents(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.printJSON(students)
			}
			for _, s := range students {
				c.printf("%s\t%s\t%s %s\t%s\t%s\n",
					s.ID, s.RegistrationNumber, s.User.FirstName, s.User.LastName, s.Class.Name, s.Status)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.Status, "status", "", "filter by status")
	cmd.Flags().StringVar(&filter.ClassID, "class", "", "filter by class id")
	return cmd
}

func (c *CLI) newStudentsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <student-id>",
		Short: "Show one student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			student, err := c.api.GetStudent(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.printJSON(student)
		},
	}
}

func (c *CLI) newStudentsCreateCmd() *cobra.Command {
	var input client.CreateStudentInput
	var dateOfBirth, phone, address string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Enroll a student (admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if input.UserID == "" || input.RegistrationNumber == "" || input.ClassID == "" {
				return errors.New("--user, --registration-number and --class are required")
			}
			if dateOfBirth != "" {
				input.DateOfBirth = &dateOfBirth
			}
			if phone != "" {
				input.Phone = &phone
			}
			if address != "" {
				input.Address = &address
			}
			student, err := c.api.CreateStudent(cmd.Context(), input)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.printJSON(student)
			}
			c.printf("Created student %s (%s)\n", student.ID, student.RegistrationNumber)
			return nil
		},
	}
	cmd.Flags().StringVar(&input.UserID, "user", "", "user id of the registered account")
	cmd.Flags().StringVar(&input.RegistrationNumber, "registration-number", "", "registration number")
	cmd.Flags().StringVar(&input.ClassID, "class", "", "class id")
	cmd.Flags().StringVar(&input.Status, "status", "", "enrollment status")
	cmd.Flags().StringVar(&dateOfBirth, "date-of-birth", "", "date of birth (YYYY-MM-DD)")
	cmd.Flags().StringVar(&phone, "phone", "", "contact phone")
	cmd.Flags().StringVar(&address, "address", "", "address")
	return cmd
}

func (c *CLI) newStudentsUpdateCmd() *cobra.Command {
	var classID, status, phone string
	cmd := &cobra.Command{
		Use:   "update <student-id>",
		Short: "Update a student (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input client.UpdateStudentInput
			if classID != "" {
				input.ClassID = &classID
			}
			if status != "" {
				input.Status = &status
			}
			if phone != "" {
				input.Phone = &phone
			}
			student, err := c.api.UpdateStudent(cmd.Context(), args[0], input)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.printJSON(student)
			}
			c.printf("Updated student %s\n", student.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&classID, "class", "", "move to class id")
	cmd.Flags().StringVar(&status, "status", "", "new status")
	cmd.Flags().StringVar(&phone, "phone", "", "new phone")
	return cmd
}

func (c *CLI) newStudentsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <student-id>",
		Short: "Remove a student record (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.api.DeleteStudent(cmd.Context(), args[0]); err != nil {
				return err
			}
			c.printf("Deleted student %s\n", args[0])
			return nil
		},
	}
}
