package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"phonestore-crm/internal/app"
	"phonestore-crm/internal/core"
	"phonestore-crm/internal/documents"
)

// ErrUsage is returned for unknown subcommands or missing arguments.
var ErrUsage = errors.New("usage: app <debts|debt|orders|order|adjust|invoice|report> [args]")

// Run executes a one-shot CLI command as actor, writing human-readable output to out.
// args is os.Args[1:]; the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, actor app.Actor, args []string, out io.Writer) error {
	if len(args) == 0 {
		return ErrUsage
	}

	switch args[0] {
	case "debts":
		res, err := svc.OutstandingDebts(ctx, actor)
		if err != nil {
			return err
		}
		printOutstanding(out, res.Debts)

	case "debt":
		userID, err := intArg(args, 1, "user id")
		if err != nil {
			return err
		}
		res, err := svc.ListDebtAdjustments(ctx, actor, userID)
		if err != nil {
			return err
		}
		printDebtHistory(out, userID, res)

	case "orders":
		req := app.OrderListRequest{Limit: 100}
		if len(args) > 1 {
			req.Status = args[1]
		}
		res, err := svc.ListOrders(ctx, actor, req)
		if err != nil {
			return err
		}
		printOrders(out, res.Orders)

	case "order":
		orderID, err := intArg(args, 1, "order id")
		if err != nil {
			return err
		}
		res, err := svc.GetOrder(ctx, actor, orderID)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Order)

	case "adjust":
		// adjust <userID> <amount> <EUR|MKD> [notes...]
		userID, err := intArg(args, 1, "user id")
		if err != nil {
			return err
		}
		if len(args) < 4 {
			return fmt.Errorf("%w: adjust <userID> <amount> <EUR|MKD> [notes]", ErrUsage)
		}
		amount, err := decimal.NewFromString(args[2])
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[2], err)
		}
		adj, err := svc.AdjustDebt(ctx, actor, userID, app.AdjustDebtRequest{
			Amount:   amount,
			Currency: args[3],
			Notes:    strings.Join(args[4:], " "),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Recorded adjustment #%d: %s (%s)\n", adj.ID,
			documents.FormatMoney(adj.Amount, string(adj.Currency)), adj.Type)

	case "invoice":
		orderID, err := intArg(args, 1, "order id")
		if err != nil {
			return err
		}
		pdf, err := svc.InvoicePDF(ctx, actor, orderID)
		if err != nil {
			return err
		}
		return writeFile(out, fileArg(args, 2, fmt.Sprintf("invoice-%d.pdf", orderID)), pdf)

	case "report":
		pdf, err := svc.DebtReportPDF(ctx, actor)
		if err != nil {
			return err
		}
		return writeFile(out, fileArg(args, 1, "debts.pdf"), pdf)

	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	return nil
}

func intArg(args []string, i int, name string) (int, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("%w: missing %s", ErrUsage, name)
	}
	n, err := strconv.Atoi(args[i])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, args[i])
	}
	return n, nil
}

func fileArg(args []string, i int, fallback string) string {
	if len(args) > i {
		return args[i]
	}
	return fallback
}

func writeFile(out io.Writer, path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(out, "Wrote %s (%d bytes)\n", path, len(data))
	return nil
}

func printOutstanding(out io.Writer, debts []core.ClientDebt) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 78))
	fmt.Fprintf(out, "  %-74s\n", "OUTSTANDING CLIENT DEBT")
	fmt.Fprintln(out, strings.Repeat("=", 78))
	fmt.Fprintf(out, "  %-6s %-28s %18s %20s\n", "ID", "CLIENT", "EUR", "MKD")
	fmt.Fprintln(out, strings.Repeat("-", 78))
	for _, d := range debts {
		fmt.Fprintf(out, "  %-6d %-28s %18s %20s\n", d.UserID, truncate(d.Name, 28),
			documents.FormatMoney(d.EURDebt, "EUR"), documents.FormatMoney(d.MKDDebt, "MKD"))
	}
	if len(debts) == 0 {
		fmt.Fprintln(out, "  No outstanding debt.")
	}
	fmt.Fprintln(out, strings.Repeat("=", 78))
}

func printDebtHistory(out io.Writer, userID int, res *app.DebtHistoryResult) {
	fmt.Fprintf(out, "User %d: %s, %s\n", userID,
		documents.FormatMoney(res.Summary.EURDebt, "EUR"), documents.FormatMoney(res.Summary.MKDDebt, "MKD"))
	fmt.Fprintln(out, strings.Repeat("-", 78))
	for _, a := range res.Adjustments {
		fmt.Fprintf(out, "  %s  %-16s %20s  %s\n", a.CreatedAt.Format("2006-01-02 15:04"), a.Type,
			documents.FormatMoney(a.Amount, string(a.Currency)), a.Notes)
	}
}

func printOrders(out io.Writer, orders []core.Order) {
	fmt.Fprintf(out, "  %-6s %-24s %-10s %14s %s\n", "ID", "CUSTOMER", "STATUS", "TOTAL", "CREATED")
	fmt.Fprintln(out, strings.Repeat("-", 78))
	for _, o := range orders {
		customer := o.ClientName
		if o.IsGuest() && o.GuestName != nil {
			customer = *o.GuestName + " (guest)"
		}
		fmt.Fprintf(out, "  %-6d %-24s %-10s %14s %s\n", o.ID, truncate(customer, 24), o.Status,
			o.TotalAmount.StringFixed(2), o.CreatedAt.Format("2006-01-02"))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
