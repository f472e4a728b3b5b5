package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/theswapneil/school-management-system/pkg/client"
)

func (c *CLI) newFeesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fees",
		Short: "Manage fee transactions",
	}

	cmd.AddCommand(c.newFeesCreateCmd())
	cmd.AddCommand(c.newFeesListCmd())

	return cmd
}

func (c *CLI) newFeesCreateCmd() *cobra.Command {
	var input client.CreateFeeInput
	var dueDate, remarks string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a fee transaction (admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if input.StudentID == "" || input.AcademicYear == "" || input.FeeType == "" || input.Amount <= 0 {
				return errors.New("--student, --year, --type and a positive --amount are required")
			}
			if dueDate != "" {
				input.DueDate = &dueDate
			}
			if remarks != "" {
				input.Remarks = &remarks
			}
			fee, err := c.api.CreateFee(cmd.Context(), input)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.printJSON(fee)
			}
			c.printf("Created fee %s (%s %.2f, %s)\n", fee.ID, fee.FeeType, fee.Amount, fee.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&input.StudentID, "student", "", "student id")
	cmd.Flags().StringVar(&input.AcademicYear, "year", "", "academic year")
	cmd.Flags().StringVar(&input.FeeType, "type", "", "fee type")
	cmd.Flags().Float64Var(&input.Amount, "amount", 0, "amount")
	cmd.Flags().StringVar(&dueDate, "due-date", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&remarks, "remarks", "", "remarks")
	return cmd
}

func (c *CLI) newFeesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <student-id>",
		Short: "List fee transactions for a student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fees, err := c.api.ListFees(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.printJSON(fees)
			}
			for _, f := range fees {
				c.printf("%s\t%s\t%.2f\t%s\n", f.ID, f.FeeType, f.Amount, f.Status)
			}
			return nil
		},
	}
}
