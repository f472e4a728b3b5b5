package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/theswapneil/school-management-system/pkg/client"
)

func (c *CLI) newClassesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classes",
		Short: "Manage classes",
	}

	cmd.AddCommand(c.newClassesListCmd())
	cmd.AddCommand(c.newClassesGetCmd())
	cmd.AddCommand(c.newClassesCreateCmd())

	return cmd
}

func (c *CLI) newClassesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List classes",
		RunE: func(cmd *cobra.Command, args []string) error {
			classes, err := c.api.ListClasses(cmd.Context())
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.printJSON(classes)
			}
			for _, cl := range classes {
				teacher := "-"
				if cl.Teacher != nil {
					teacher = cl.Teacher.FirstName + " " + cl.Teacher.LastName
				}
				c.printf("%s\t%s\tgrade %s\t%s\n", cl.ID, cl.Name, cl.Grade, teacher)
			}
			return nil
		},
	}
}

func (c *CLI) newClassesGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <class-id>",
		Short: "Show one class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			class, err := c.api.GetClass(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.printJSON(class)
		},
	}
}

func (c *CLI) newClassesCreateCmd() *cobra.Command {
	var input client.CreateClassInput
	var section, teacherID, year string
	var capacity int
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a class (admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if input.Name == "" || input.Grade == "" {
				return errors.New("--name and --grade are required")
			}
			if section != "" {
				input.Section = &section
			}
			if teacherID != "" {
				input.ClassTeacherID = &teacherID
			}
			if year != "" {
				input.AcademicYear = &year
			}
			if capacity > 0 {
				input.Capacity = &capacity
			}
			class, err := c.api.CreateClass(cmd.Context(), input)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.printJSON(class)
			}
			c.printf("Created class %s (%s)\n", class.ID, class.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&input.Name, "name", "", "class name")
	cmd.Flags().StringVar(&input.Grade, "grade", "", "grade")
	cmd.Flags().StringVar(&section, "section", "", "section")
	cmd.Flags().StringVar(&teacherID, "teacher", "", "class teacher user id")
	cmd.Flags().StringVar(&year, "academic-year", "", "academic year")
	cmd.Flags().IntVar(&capacity, "capacity", 0, "capacity")
	return cmd
}
