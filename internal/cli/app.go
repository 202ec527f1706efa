package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"homebudget/internal/aggregate"
	"homebudget/internal/core"
	"homebudget/internal/ledger"
	"homebudget/internal/sheets"
)

// ErrUsage is returned for unknown subcommands and bad flags.
var ErrUsage = errors.New("usage")

// App is the terminal front-end: one subcommand per ledger operation.
type App struct {
	Store    *ledger.Store
	Out      io.Writer
	Err      io.Writer
	Format   Formatter
	Now      func() time.Time
	Exporter sheets.YearExporter
}

const usage = `Uso: homebudget [-yes] <comando> [opciones]

Comandos:
  add              registra una transacción
  list             lista las transacciones de un mes
  delete <id>      elimina una transacción
  duplicate-bills  copia las facturas del mes anterior
  budget set|delete|list
  goal [importe]   fija el objetivo de ahorro anual
  month            resumen de un mes
  year             resumen del año
  export           exporta el año a la hoja de cálculo
`

// Run executes one subcommand. Ledger notices and declined confirmations
// are printed and are not errors.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.Err, usage)
		return ErrUsage
	}

	var err error
	switch args[0] {
	case "add":
		err = a.add(ctx, args[1:])
	case "list":
		err = a.list(args[1:])
	case "delete":
		err = a.delete(ctx, args[1:])
	case "duplicate-bills":
		err = a.duplicateBills(ctx, args[1:])
	case "budget":
		err = a.budget(ctx, args[1:])
	case "goal":
		err = a.goal(ctx, args[1:])
	case "month":
		err = a.month(args[1:])
	case "year":
		err = a.year()
	case "export":
		err = a.export(ctx)
	case "help", "-h", "--help":
		fmt.Fprint(a.Out, usage)
		return nil
	default:
		fmt.Fprintf(a.Err, "comando desconocido %q\n\n%s", args[0], usage)
		return ErrUsage
	}

	if isNotice(err) {
		fmt.Fprintln(a.Out, ledger.Notice(err))
		return nil
	}
	return err
}

func isNotice(err error) bool {
	return errors.Is(err, ledger.ErrDeclined) ||
		errors.Is(err, ledger.ErrNoPriorMonth) ||
		errors.Is(err, ledger.ErrNoBillsToDuplicate)
}

func (a *App) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.Err)
	return fs
}

func (a *App) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return nil
}

func (a *App) defaultMonth() int {
	return int(core.NewSelection(a.Now(), a.Store.Year()).Month)
}

func (a *App) monthFlag(fs *flag.FlagSet) *int {
	return fs.Int("month", a.defaultMonth(), "mes (1-12)")
}

func checkMonth(m int) (time.Month, error) {
	if m < 1 || m > 12 {
		return 0, &core.ValidationError{Field: "month", Message: fmt.Sprintf("month %d out of range", m), Err: core.ErrInvalidMonth}
	}
	return time.Month(m), nil
}

func (a *App) add(ctx context.Context, args []string) error {
	fs := a.flags("add")
	var d ledger.Draft
	fs.StringVar(&d.Date, "date", "", "fecha YYYY-MM-DD (por defecto hoy)")
	fs.StringVar(&d.Group, "group", "", "ingreso, factura o gasto")
	fs.StringVar(&d.Category, "category", "", "categoría")
	fs.StringVar(&d.CustomCategory, "custom", "", "categoría personalizada")
	fs.StringVar(&d.Description, "desc", "", "descripción")
	fs.StringVar(&d.Amount, "amount", "", "importe")
	fs.StringVar(&d.Notes, "notes", "", "notas")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	tx, err := a.Store.AddTransaction(ctx, d)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Guardado %s: %s %s %s (%s)\n",
		tx.ID, tx.Date, tx.Group, a.Format.Money(tx.Amount), tx.Category)
	return nil
}

func (a *App) list(args []string) error {
	fs := a.flags("list")
	month := a.monthFlag(fs)
	groupFlag := fs.String("group", "", "ingreso, factura o gasto")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	m, err := checkMonth(*month)
	if err != nil {
		return err
	}
	var group core.Group
	if *groupFlag != "" {
		if group, err = core.ParseGroup(*groupFlag); err != nil {
			return err
		}
	}

	sel := core.Selection{Year: a.Store.Year(), Month: m}
	txs := a.Store.TransactionsFor(sel.Year, sel.Month, group)
	fmt.Fprintln(a.Out, sel.Label())
	if len(txs) == 0 {
		fmt.Fprintln(a.Out, "Sin movimientos.")
		return nil
	}

	tw := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Fecha\tGrupo\tCategoría\tDescripción\tImporte\tID\t")
	for _, tx := range txs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			tx.Date, tx.Group, tx.Category, tx.Description, a.Format.Money(tx.Amount), tx.ID)
	}
	return tw.Flush()
}

func (a *App) delete(ctx context.Context, args []string) error {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		fmt.Fprintln(a.Err, "uso: homebudget delete <id>")
		return ErrUsage
	}
	// An unknown id is a silent no-op.
	if _, err := a.Store.DeleteTransaction(ctx, core.ID(strings.TrimSpace(args[0]))); err != nil {
		return err
	}
	fmt.Fprintln(a.Out, "Transacción eliminada.")
	return nil
}

func (a *App) duplicateBills(ctx context.Context, args []string) error {
	fs := a.flags("duplicate-bills")
	month := a.monthFlag(fs)
	if err := a.parse(fs, args); err != nil {
		return err
	}

	copies, err := a.Store.DuplicatePriorMonthBills(ctx, time.Month(*month))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "%d facturas duplicadas en %s.\n", len(copies), core.MonthName(time.Month(*month)))
	return nil
}

func (a *App) budget(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.Err, "uso: homebudget budget set|delete|list")
		return ErrUsage
	}

	fs := a.flags("budget " + args[0])
	kind := fs.String("kind", "gastos", "facturas o gastos")
	category := fs.String("category", "", "categoría")

	switch args[0] {
	case "set":
		custom := fs.String("custom", "", "categoría personalizada")
		amount := fs.String("amount", "", "importe mensual")
		if err := a.parse(fs, args[1:]); err != nil {
			return err
		}
		target, err := a.Store.SetBudget(ctx, *kind, *category, *custom, *amount)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.Out, "Presupuesto de %s: %s\n",
			ledger.ResolveCategory(*category, *custom), a.Format.Money(target))
		return nil

	case "delete":
		if err := a.parse(fs, args[1:]); err != nil {
			return err
		}
		if _, err := a.Store.DeleteBudget(ctx, *kind, *category); err != nil {
			return err
		}
		fmt.Fprintln(a.Out, "Presupuesto eliminado.")
		return nil

	case "list":
		month := a.monthFlag(fs)
		if err := a.parse(fs, args[1:]); err != nil {
			return err
		}
		m, err := checkMonth(*month)
		if err != nil {
			return err
		}
		snap := a.Store.Snapshot()
		a.printBudgets(aggregate.BudgetReport(snap.Transactions, snap.Budgets, snap.Year, m))
		return nil
	}

	fmt.Fprintf(a.Err, "subcomando de budget desconocido %q\n", args[0])
	return ErrUsage
}

func (a *App) printBudgets(lines []core.BudgetLine) {
	if len(lines) == 0 {
		fmt.Fprintln(a.Out, "Sin presupuestos.")
		return
	}
	tw := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Tipo\tCategoría\tPresupuesto\tGastado\tRestante\t")
	for _, l := range lines {
		mark := ""
		if l.Exceeded {
			mark = " !"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s%s\t\n", l.Kind, l.Category,
			a.Format.Money(l.Target), a.Format.Money(l.Spent), a.Format.Money(l.Remaining), mark)
	}
	_ = tw.Flush()
}

// goal sets the savings goal from the argument, or asks for it.
func (a *App) goal(ctx context.Context, args []string) error {
	var (
		goal core.Money
		err  error
	)
	if len(args) > 0 {
		goal, err = a.Store.SetSavingsGoal(ctx, args[0])
	} else {
		goal, err = a.Store.PromptSavingsGoal(ctx)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Objetivo de ahorro: %s\n", a.Format.Money(goal))
	return nil
}

func (a *App) month(args []string) error {
	fs := a.flags("month")
	month := a.monthFlag(fs)
	if err := a.parse(fs, args); err != nil {
		return err
	}
	m, err := checkMonth(*month)
	if err != nil {
		return err
	}

	snap := a.Store.Snapshot()
	d := aggregate.BuildDashboard(snap.Transactions, snap.Budgets, snap.Year, m)

	fmt.Fprintln(a.Out, d.MonthLabel)
	fmt.Fprintf(a.Out, "Ingresos: %s\n", a.Format.Money(d.Stats.Income))
	fmt.Fprintf(a.Out, "Facturas: %s\n", a.Format.Money(d.Stats.Facturas))
	fmt.Fprintf(a.Out, "Gastos:   %s\n", a.Format.Money(d.Stats.Gastos))
	fmt.Fprintf(a.Out, "Balance:  %s\n", a.Format.Money(d.Stats.Balance))

	if len(d.Categories) > 0 {
		fmt.Fprintln(a.Out, "\nGastos por categoría:")
		for _, c := range d.Categories {
			fmt.Fprintf(a.Out, "  %s: %s (%s%%)\n", c.Category, a.Format.Money(c.Amount), c.Percent.StringFixed(1))
		}
	}
	if len(d.Budgets) > 0 {
		fmt.Fprintln(a.Out)
		a.printBudgets(d.Budgets)
	}
	return nil
}

func (a *App) year() error {
	snap := a.Store.Snapshot()
	savings := aggregate.YearSavings(snap.Transactions, snap.Year)
	totals := aggregate.YearTotals(snap.Transactions, snap.Year)
	goal := aggregate.Goal(snap.Budgets.SavingsGoal, totals.TotalBalance)

	fmt.Fprintf(a.Out, "Año %d\n", snap.Year)
	tw := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	for i, s := range savings {
		fmt.Fprintf(tw, "%s\t%s\t\n", core.MonthName(time.Month(i+1)), a.Format.Money(s))
	}
	_ = tw.Flush()

	fmt.Fprintf(a.Out, "Ingresos totales: %s\n", a.Format.Money(totals.TotalIncome))
	fmt.Fprintf(a.Out, "Gastos totales:   %s\n", a.Format.Money(totals.TotalExpenses))
	fmt.Fprintf(a.Out, "Ahorro total:     %s\n", a.Format.Money(totals.TotalBalance))
	if goal.Set {
		fmt.Fprintf(a.Out, "Objetivo: %s (%s%%)\n", a.Format.Money(goal.Goal), goal.Percent.StringFixed(1))
	} else {
		fmt.Fprintln(a.Out, "Sin objetivo de ahorro.")
	}
	return nil
}

func (a *App) export(ctx context.Context) error {
	if a.Exporter == nil {
		return ErrExportDisabled
	}
	report := sheets.BuildYearReport(a.Store.Snapshot())
	if err := a.Exporter.ExportYear(ctx, report); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Fprintf(a.Out, "Exportadas %d transacciones de %d.\n", len(report.Transactions), report.Year)
	return nil
}
