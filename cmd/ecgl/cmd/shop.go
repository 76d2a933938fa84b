package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/ecglearn/pkg/shop"
)

var (
	buyName     string
	buyEmail    string
	buyQuantity int
	buyAddress  string
	buyCountry  string
)

var shopCmd = &cobra.Command{
	Use:   "shop",
	Short: "Spend lesson points",
	Long:  `Commands for the points shop: browse the catalog, buy items and check the balance.`,
}

var shopListCmd = &cobra.Command{
	Use:   "list",
	Short: "List items for sale",
	Args:  cobra.NoArgs,
	RunE:  runShopList,
}

var shopBuyCmd = &cobra.Command{
	Use:   "buy <item>",
	Short: "Buy an item with points (or through billing for paid packs)",
	Args:  cobra.ExactArgs(1),
	RunE:  runShopBuy,
}

var shopBalanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the configured user's points and entitlements",
	Args:  cobra.NoArgs,
	RunE:  runShopBalance,
}

var shopRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore entitlements from previous paid purchases",
	Args:  cobra.NoArgs,
	RunE:  runShopRestore,
}

func init() {
	shopBuyCmd.Flags().StringVar(&buyName, "name", "", "buyer name")
	shopBuyCmd.Flags().StringVar(&buyEmail, "email", "", "buyer email")
	shopBuyCmd.Flags().IntVarP(&buyQuantity, "quantity", "n", 1, "quantity")
	shopBuyCmd.Flags().StringVar(&buyAddress, "address", "", "shipping address (physical items)")
	shopBuyCmd.Flags().StringVar(&buyCountry, "country", "", "shipping country, ISO 3166 alpha-2 (physical items)")

	rootCmd.AddCommand(shopCmd)
	shopCmd.AddCommand(shopListCmd)
	shopCmd.AddCommand(shopBuyCmd)
	shopCmd.AddCommand(shopBalanceCmd)
	shopCmd.AddCommand(shopRestoreCmd)
}

func runShopList(cmd *cobra.Command, args []string) error {
	st, err := openStack(cmd.Context(), cmd, "ecgl.shop")
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-14s %-28s %-9s %s\n", "ID", "TITLE", "KIND", "PRICE")
	for _, it := range st.shop.Catalog().Items() {
		price := fmt.Sprintf("%d pts", it.Price)
		if it.Paid() {
			price = "paid (" + it.Package + ")"
		}
		fmt.Fprintf(out, "%-14s %-28s %-9s %s\n", it.ID, it.Title, it.Kind, price)
	}
	return nil
}

func runShopBuy(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStack(ctx, cmd, "ecgl.shop")
	if err != nil {
		return err
	}
	form := shop.OrderForm{
		ItemID:   args[0],
		Name:     buyName,
		Email:    buyEmail,
		Quantity: buyQuantity,
		Address:  buyAddress,
		Country:  strings.ToUpper(buyCountry),
	}
	order, err := st.shop.Checkout(ctx, st.cfg.User, form)
	if err != nil {
		var verr *shop.ValidationError
		if errors.As(err, &verr) {
			for _, f := range verr.Fields {
				fmt.Fprintf(cmd.ErrOrStderr(), "  --%s: %s\n", f.Field, f.Error)
			}
			return fmt.Errorf("order form is invalid")
		}
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Order %s placed for %s x%d\n", order.ID, order.ItemID, order.Quantity)
	if order.Billed {
		fmt.Fprintln(out, "  paid through billing")
	} else {
		fmt.Fprintf(out, "  %d points spent\n", order.Points)
	}
	if len(order.Granted) > 0 {
		fmt.Fprintf(out, "  unlocked: %s\n", strings.Join(order.Granted, ", "))
	}
	return nil
}

func runShopBalance(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStack(ctx, cmd, "ecgl.shop")
	if err != nil {
		return err
	}
	acct, err := st.ledger.Account(ctx, st.cfg.User)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d points\n", st.cfg.User, acct.Points)
	if len(acct.Entitlements) > 0 {
		fmt.Fprintf(out, "unlocked: %s\n", strings.Join(acct.Entitlements, ", "))
	}
	return nil
}

func runShopRestore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStack(ctx, cmd, "ecgl.shop")
	if err != nil {
		return err
	}
	ents, err := st.shop.Restore(ctx, st.cfg.User)
	if err != nil {
		return err
	}
	if len(ents) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to restore")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Restored: %s\n", strings.Join(ents, ", "))
	return nil
}
