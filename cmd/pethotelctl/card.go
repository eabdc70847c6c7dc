package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pethotel/internal/service"
)

func cardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Card helpers",
	}

	var (
		expiry string
		holder string
		cvv    string
	)

	check := &cobra.Command{
		Use:   "check <number>",
		Short: "Validate a card number, and the full card when --expiry is given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number := args[0]
			out := cmd.OutOrStdout()

			if expiry == "" {
				if !service.ValidateCardNumber(number) {
					return fmt.Errorf("card number fails the checksum")
				}
				fmt.Fprintln(out, "card number: ok")
				return nil
			}

			card := service.CardInput{Number: number, Holder: holder, Expiry: expiry, CVV: cvv}
			if err := service.ValidateCard(card, time.Now()); err != nil {
				return err
			}
			fmt.Fprintf(out, "card ending %s: ok\n", card.Last4())
			return nil
		},
	}

	check.Flags().StringVar(&expiry, "expiry", "", "Expiry as MM/YY")
	check.Flags().StringVar(&holder, "holder", "CARD HOLDER", "Holder name")
	check.Flags().StringVar(&cvv, "cvv", "000", "Security code")

	cmd.AddCommand(check)
	return cmd
}
